package service

import (
	"context"
	"database/sql"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-registry-api/internal/models"
	"github.com/noah-isme/school-registry-api/internal/validation"
	appErrors "github.com/noah-isme/school-registry-api/pkg/errors"
)

type subjectRepository interface {
	List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, int, error)
	FindByID(ctx context.Context, id string) (*models.Subject, error)
	FindDetailByID(ctx context.Context, id string) (*models.SubjectDetail, error)
	ExistsByCode(ctx context.Context, code string, excludeID string) (bool, error)
	Create(ctx context.Context, subject *models.Subject) error
	Update(ctx context.Context, subject *models.Subject) error
	SoftDelete(ctx context.Context, id string) (*models.Subject, error)
}

// SubjectRequest captures the fields accepted when creating or updating
// a subject.
type SubjectRequest struct {
	Name        string  `json:"name" validate:"required"`
	Code        string  `json:"code" validate:"required,subject_code"`
	Description *string `json:"description,omitempty"`
	Department  *string `json:"department,omitempty"`
}

// SubjectService handles subject domain workflows.
type SubjectService struct {
	repo      subjectRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubjectService creates a new subject service.
func NewSubjectService(repo subjectRepository, validate *validator.Validate, logger *zap.Logger) *SubjectService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubjectService{repo: repo, validator: validate, logger: logger}
}

// List returns paginated subjects.
func (s *SubjectService) List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, *models.Pagination, error) {
	subjects, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}
	return subjects, models.NewPagination(total, filter.Page, filter.Limit), nil
}

// Get returns a subject with the teachers assigned to it.
func (s *SubjectService) Get(ctx context.Context, id string) (*models.SubjectDetail, error) {
	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	return detail, nil
}

// Create adds a new subject ensuring code uniqueness.
func (s *SubjectService) Create(ctx context.Context, req SubjectRequest) (*models.Subject, error) {
	req.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, validation.Messages(err))
	}

	exists, err := s.repo.ExistsByCode(ctx, req.Code, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subject code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "Subject with this code already exists")
	}

	subject := &models.Subject{
		Name:        req.Name,
		Code:        req.Code,
		Description: req.Description,
		Department:  req.Department,
	}
	if err := s.repo.Create(ctx, subject); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create subject")
	}
	return subject, nil
}

// Update modifies an existing subject.
func (s *SubjectService) Update(ctx context.Context, id string, req SubjectRequest) (*models.Subject, error) {
	req.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, validation.Messages(err))
	}

	subject, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}

	exists, err := s.repo.ExistsByCode(ctx, req.Code, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subject code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "Subject with this code already exists")
	}

	subject.Name = req.Name
	subject.Code = req.Code
	subject.Description = req.Description
	subject.Department = req.Department

	if err := s.repo.Update(ctx, subject); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update subject")
	}
	return subject, nil
}

// Delete deactivates a subject and returns the deactivated record.
func (s *SubjectService) Delete(ctx context.Context, id string) (*models.Subject, error) {
	subject, err := s.repo.SoftDelete(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete subject")
	}
	return subject, nil
}
