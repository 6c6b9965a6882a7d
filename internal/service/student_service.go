package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-registry-api/internal/models"
	"github.com/noah-isme/school-registry-api/internal/validation"
	appErrors "github.com/noah-isme/school-registry-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	SoftDelete(ctx context.Context, id string) (*models.Student, error)
}

// StudentRequest captures the fields accepted when creating or updating
// a student.
type StudentRequest struct {
	FirstName     string  `json:"firstName" validate:"required"`
	MiddleName    *string `json:"middleName,omitempty"`
	LastName      string  `json:"lastName" validate:"required"`
	Gender        string  `json:"gender" validate:"required,oneof=male female other"`
	Age           int     `json:"age" validate:"required,min=4,max=100"`
	Grade         int     `json:"grade" validate:"required,min=1,max=12"`
	Section       *string `json:"section,omitempty"`
	SchoolYear    string  `json:"schoolYear" validate:"required,school_year"`
	SchoolName    *string `json:"schoolName,omitempty"`
	Subject       *string `json:"subject,omitempty"`
	GradingPeriod *string `json:"gradingPeriod,omitempty"`
	Division      *string `json:"division,omitempty"`
}

// StudentService handles student domain workflows.
type StudentService struct {
	repo      studentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService creates a new student service.
func NewStudentService(repo studentRepository, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, validator: validate, logger: logger}
}

// List returns paginated students.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, models.NewPagination(total, filter.Page, filter.Limit), nil
}

// Get returns a student by identifier.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// Create registers a new student.
func (s *StudentService) Create(ctx context.Context, req StudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, validation.Messages(err))
	}

	student := &models.Student{}
	applyStudentRequest(student, req)

	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	return student, nil
}

// Update modifies an existing student.
func (s *StudentService) Update(ctx context.Context, id string, req StudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, validation.Messages(err))
	}

	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	applyStudentRequest(student, req)

	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	return student, nil
}

// Delete deactivates a student and returns the deactivated record.
func (s *StudentService) Delete(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.SoftDelete(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	return student, nil
}

func applyStudentRequest(student *models.Student, req StudentRequest) {
	student.FirstName = req.FirstName
	student.MiddleName = req.MiddleName
	student.LastName = req.LastName
	student.Gender = req.Gender
	student.Age = req.Age
	student.Grade = req.Grade
	student.Section = req.Section
	student.SchoolYear = req.SchoolYear
	student.SchoolName = req.SchoolName
	student.Subject = req.Subject
	student.GradingPeriod = req.GradingPeriod
	student.Division = req.Division
}
