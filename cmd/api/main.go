package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/noah-isme/school-registry-api/api/swagger"
	"github.com/noah-isme/school-registry-api/internal/repository"
	"github.com/noah-isme/school-registry-api/internal/router"
	"github.com/noah-isme/school-registry-api/internal/service"
	"github.com/noah-isme/school-registry-api/internal/validation"
	"github.com/noah-isme/school-registry-api/pkg/cache"
	"github.com/noah-isme/school-registry-api/pkg/config"
	"github.com/noah-isme/school-registry-api/pkg/database"
	"github.com/noah-isme/school-registry-api/pkg/logger"
)

// @title School Registry API
// @version 1.0.0
// @description REST backend for managing students, teachers, subjects and sections
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	cacheRepo := repository.NewCacheRepository(nil, logr)
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		} else {
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
			defer cacheRepo.Close() //nolint:errcheck
		}
	}

	validate := validation.New()
	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, cfg.Cache.Enabled)

	authSvc := service.NewAuthService(repository.NewAccountRepository(db), validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	studentSvc := service.NewStudentService(repository.NewStudentRepository(db), validate, logr)
	teacherSvc := service.NewTeacherService(
		repository.NewTeacherRepository(db),
		repository.NewTeacherSubjectRepository(db),
		validate, logr)
	subjectSvc := service.NewSubjectService(repository.NewSubjectRepository(db), validate, logr)
	sectionSvc := service.NewSectionService(repository.NewSectionRepository(db), cacheSvc, validate, logr)

	engine := router.New(cfg, logr, db, router.Services{
		Auth:    authSvc,
		Student: studentSvc,
		Teacher: teacherSvc,
		Subject: subjectSvc,
		Section: sectionSvc,
		Metrics: metricsSvc,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
}
