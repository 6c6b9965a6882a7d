package router

import (
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/school-registry-api/internal/handler"
	"github.com/noah-isme/school-registry-api/internal/middleware"
	"github.com/noah-isme/school-registry-api/internal/service"
	"github.com/noah-isme/school-registry-api/pkg/config"
	"github.com/noah-isme/school-registry-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/school-registry-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/school-registry-api/pkg/middleware/requestid"
)

// Services bundles the services the router depends on.
type Services struct {
	Auth    *service.AuthService
	Student *service.StudentService
	Teacher *service.TeacherService
	Subject *service.SubjectService
	Section *service.SectionService
	Metrics *service.MetricsService
}

// New assembles the gin engine with middleware and all routes.
func New(cfg *config.Config, logr *zap.Logger, db *sqlx.DB, svcs Services) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(svcs.Metrics))

	metricsHandler := handler.NewMetricsHandler(svcs.Metrics, db)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authHandler := handler.NewAuthHandler(svcs.Auth)
	auth := r.Group("/authentication")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	protected := r.Group("/")
	protected.Use(middleware.JWT(svcs.Auth))

	studentHandler := handler.NewStudentHandler(svcs.Student)
	students := protected.Group("students")
	{
		students.GET("", studentHandler.List)
		students.POST("", studentHandler.Create)
		students.GET("/:id", studentHandler.Get)
		students.PUT("/:id", studentHandler.Update)
		students.DELETE("/:id", studentHandler.Delete)
	}

	teacherHandler := handler.NewTeacherHandler(svcs.Teacher)
	teachers := protected.Group("teachers")
	{
		teachers.GET("", teacherHandler.List)
		teachers.POST("", teacherHandler.Create)
		teachers.GET("/:id", teacherHandler.Get)
		teachers.PUT("/:id", teacherHandler.Update)
		teachers.DELETE("/:id", teacherHandler.Delete)
		teachers.GET("/:id/subjects", teacherHandler.ListSubjects)
		teachers.POST("/:id/subjects", teacherHandler.AssignSubjects)
	}

	subjectHandler := handler.NewSubjectHandler(svcs.Subject)
	subjects := protected.Group("subjects")
	{
		subjects.GET("", subjectHandler.List)
		subjects.POST("", subjectHandler.Create)
		subjects.GET("/:id", subjectHandler.Get)
		subjects.PUT("/:id", subjectHandler.Update)
		subjects.DELETE("/:id", subjectHandler.Delete)
	}

	sectionHandler := handler.NewSectionHandler(svcs.Section)
	sections := protected.Group("sections")
	{
		sections.GET("", sectionHandler.List)
		sections.POST("", sectionHandler.Create)
		sections.GET("/:id", sectionHandler.Get)
		sections.PUT("/:id", sectionHandler.Update)
		sections.DELETE("/:id", sectionHandler.Delete)
		sections.POST("/:id/subjects", sectionHandler.ReplaceSubjects)
		sections.POST("/:id/students", sectionHandler.ReplaceStudents)
		sections.GET("/:id/roster", sectionHandler.ExportRoster)
	}

	return r
}
