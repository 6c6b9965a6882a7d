package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-registry-api/internal/models"
	"github.com/noah-isme/school-registry-api/internal/repository"
	"github.com/noah-isme/school-registry-api/internal/validation"
	appErrors "github.com/noah-isme/school-registry-api/pkg/errors"
)

type teacherRepository interface {
	List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error)
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	FindDetailByID(ctx context.Context, id string) (*models.TeacherDetail, error)
	ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error)
	Create(ctx context.Context, teacher *models.Teacher) error
	Update(ctx context.Context, teacher *models.Teacher) error
	SoftDelete(ctx context.Context, id string) (*models.Teacher, error)
}

type teacherSubjectRepository interface {
	ListActiveByTeacher(ctx context.Context, teacherID, schoolYear string) ([]models.AssignedSubject, error)
	ReplaceForSchoolYear(ctx context.Context, teacherID, schoolYear string, subjectIDs []string) ([]models.AssignedSubject, error)
}

// TeacherRequest captures the fields accepted when creating or updating
// a teacher.
type TeacherRequest struct {
	FirstName       string  `json:"firstName" validate:"required"`
	MiddleName      *string `json:"middleName,omitempty"`
	LastName        string  `json:"lastName" validate:"required"`
	Gender          string  `json:"gender" validate:"required,oneof=male female other"`
	Age             int     `json:"age" validate:"required,min=21,max=100"`
	Email           string  `json:"email" validate:"required,email"`
	Phone           *string `json:"phone,omitempty"`
	Department      *string `json:"department,omitempty"`
	Qualification   *string `json:"qualification,omitempty"`
	YearsExperience int     `json:"yearsOfExperience" validate:"min=0"`
	SchoolYear      string  `json:"schoolYear" validate:"required,school_year"`
}

// AssignSubjectsRequest replaces a teacher's subject assignments for
// one school year.
type AssignSubjectsRequest struct {
	SchoolYear string   `json:"schoolYear" validate:"required,school_year"`
	SubjectIDs []string `json:"subjectIds" validate:"required,dive,required"`
}

// TeacherService handles teacher domain workflows.
type TeacherService struct {
	repo        teacherRepository
	assignments teacherSubjectRepository
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewTeacherService creates a new teacher service.
func NewTeacherService(repo teacherRepository, assignments teacherSubjectRepository, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{repo: repo, assignments: assignments, validator: validate, logger: logger}
}

// List returns paginated teachers.
func (s *TeacherService) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, *models.Pagination, error) {
	teachers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}
	return teachers, models.NewPagination(total, filter.Page, filter.Limit), nil
}

// Get returns a teacher with its subject assignments.
func (s *TeacherService) Get(ctx context.Context, id string) (*models.TeacherDetail, error) {
	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	return detail, nil
}

// Create registers a new teacher ensuring email uniqueness.
func (s *TeacherService) Create(ctx context.Context, req TeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, validation.Messages(err))
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := s.repo.ExistsByEmail(ctx, req.Email, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check teacher email")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "Teacher with this email already exists")
	}

	teacher := &models.Teacher{}
	applyTeacherRequest(teacher, req)

	if err := s.repo.Create(ctx, teacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create teacher")
	}
	return teacher, nil
}

// Update modifies an existing teacher.
func (s *TeacherService) Update(ctx context.Context, id string, req TeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, validation.Messages(err))
	}

	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := s.repo.ExistsByEmail(ctx, req.Email, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check teacher email")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "Teacher with this email already exists")
	}

	applyTeacherRequest(teacher, req)

	if err := s.repo.Update(ctx, teacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update teacher")
	}
	return teacher, nil
}

// Delete deactivates a teacher and returns the deactivated record.
func (s *TeacherService) Delete(ctx context.Context, id string) (*models.Teacher, error) {
	teacher, err := s.repo.SoftDelete(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete teacher")
	}
	return teacher, nil
}

// ListSubjects returns the teacher's active subject assignments.
func (s *TeacherService) ListSubjects(ctx context.Context, id, schoolYear string) ([]models.AssignedSubject, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}

	subjects, err := s.assignments.ListActiveByTeacher(ctx, id, schoolYear)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	return subjects, nil
}

// AssignSubjects replaces the teacher's subject assignments for the
// requested school year and returns the teacher with the refreshed
// assignment list.
func (s *TeacherService) AssignSubjects(ctx context.Context, id string, req AssignSubjectsRequest) (*models.TeacherDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, validation.Messages(err))
	}

	subjects, err := s.assignments.ReplaceForSchoolYear(ctx, id, req.SchoolYear, req.SubjectIDs)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrTeacherNotFound):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Teacher not found")
		case errors.Is(err, repository.ErrSubjectNotFound):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "One or more subjects not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to replace assignments")
	}

	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	return &models.TeacherDetail{Teacher: *teacher, Subjects: subjects}, nil
}

func applyTeacherRequest(teacher *models.Teacher, req TeacherRequest) {
	teacher.FirstName = req.FirstName
	teacher.MiddleName = req.MiddleName
	teacher.LastName = req.LastName
	teacher.Gender = req.Gender
	teacher.Age = req.Age
	teacher.Email = req.Email
	teacher.Phone = req.Phone
	teacher.Department = req.Department
	teacher.Qualification = req.Qualification
	teacher.YearsExperience = req.YearsExperience
	teacher.SchoolYear = req.SchoolYear
}
