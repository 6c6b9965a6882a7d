package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-registry-api/internal/models"
	"github.com/noah-isme/school-registry-api/internal/repository"
	"github.com/noah-isme/school-registry-api/internal/validation"
	appErrors "github.com/noah-isme/school-registry-api/pkg/errors"
	"github.com/noah-isme/school-registry-api/pkg/export"
)

const (
	sectionDetailKeyPrefix  = "section:detail:"
	sectionDetailKeyPattern = "section:detail:*"
)

// Roster export formats.
const (
	RosterFormatCSV = "csv"
	RosterFormatPDF = "pdf"
)

type sectionRepository interface {
	List(ctx context.Context, filter models.SectionFilter) ([]models.SectionSummary, int, error)
	FindDetailByID(ctx context.Context, id string) (*models.SectionDetail, error)
	Create(ctx context.Context, section *models.Section, offerings []models.SectionSubject, studentIDs []string) error
	Update(ctx context.Context, section *models.Section, offerings []models.SectionSubject, studentIDs []string) error
	SoftDelete(ctx context.Context, id string) (*models.Section, error)
	ReplaceSubjects(ctx context.Context, sectionID string, offerings []models.SectionSubject) error
	ReplaceStudents(ctx context.Context, sectionID string, studentIDs []string) error
}

// SectionSubjectInput is one requested subject offering.
type SectionSubjectInput struct {
	SubjectID string  `json:"subjectId" validate:"required"`
	TeacherID string  `json:"teacherId" validate:"required"`
	Schedule  *string `json:"schedule,omitempty"`
	Room      *string `json:"room,omitempty"`
}

// CreateSectionRequest creates a section together with its initial
// subject offerings and student enrollments.
type CreateSectionRequest struct {
	Name       string                `json:"name" validate:"required"`
	GradeLevel string                `json:"gradeLevel" validate:"required"`
	SchoolYear string                `json:"schoolYear" validate:"required,school_year"`
	AdviserID  string                `json:"adviserId" validate:"required"`
	Subjects   []SectionSubjectInput `json:"subjects,omitempty" validate:"omitempty,dive"`
	StudentIDs []string              `json:"studentIds,omitempty" validate:"omitempty,dive,required"`
}

// UpdateSectionRequest updates a section. Nil Subjects or StudentIDs
// leave that relation untouched; an empty slice clears it.
type UpdateSectionRequest struct {
	Name       string                `json:"name" validate:"required"`
	GradeLevel string                `json:"gradeLevel" validate:"required"`
	SchoolYear string                `json:"schoolYear" validate:"required,school_year"`
	AdviserID  string                `json:"adviserId" validate:"required"`
	Subjects   []SectionSubjectInput `json:"subjects,omitempty" validate:"omitempty,dive"`
	StudentIDs []string              `json:"studentIds,omitempty" validate:"omitempty,dive,required"`
}

// ReplaceSectionSubjectsRequest replaces all subject offerings.
type ReplaceSectionSubjectsRequest struct {
	Subjects []SectionSubjectInput `json:"subjects" validate:"required,dive"`
}

// ReplaceSectionStudentsRequest replaces all student enrollments.
type ReplaceSectionStudentsRequest struct {
	StudentIDs []string `json:"studentIds" validate:"required,dive,required"`
}

// SectionService orchestrates section workflows, including the
// transactional multi-entity writes and the cached detail reads.
type SectionService struct {
	repo      sectionRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSectionService creates a new section service.
func NewSectionService(repo sectionRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *SectionService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SectionService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns paginated section summaries.
func (s *SectionService) List(ctx context.Context, filter models.SectionFilter) ([]models.SectionSummary, *models.Pagination, error) {
	sections, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sections")
	}
	return sections, models.NewPagination(total, filter.Page, filter.Limit), nil
}

// Get returns the full section detail, served from cache when possible.
func (s *SectionService) Get(ctx context.Context, id string) (*models.SectionDetail, error) {
	key := sectionDetailKeyPrefix + id
	var cached models.SectionDetail
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, nil
	}

	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Section not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
	}

	if err := s.cache.Set(ctx, key, detail, 0); err != nil {
		s.logger.Warn("section detail cache set failed", zap.String("section_id", id), zap.Error(err))
	}
	return detail, nil
}

// Create builds a section along with its offerings and enrollments in
// one transaction and returns the composed detail.
func (s *SectionService) Create(ctx context.Context, req CreateSectionRequest) (*models.SectionDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, validation.Messages(err))
	}

	section := &models.Section{
		Name:       req.Name,
		GradeLevel: req.GradeLevel,
		SchoolYear: req.SchoolYear,
		AdviserID:  req.AdviserID,
	}
	offerings := toOfferings(req.Subjects)
	studentIDs := req.StudentIDs
	if offerings == nil {
		offerings = []models.SectionSubject{}
	}
	if studentIDs == nil {
		studentIDs = []string{}
	}

	if err := s.repo.Create(ctx, section, offerings, studentIDs); err != nil {
		return nil, s.mapWriteError(err, "failed to create section")
	}

	return s.reload(ctx, section.ID)
}

// Update overwrites a section and optionally replaces its offerings and
// enrollments, atomically.
func (s *SectionService) Update(ctx context.Context, id string, req UpdateSectionRequest) (*models.SectionDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, validation.Messages(err))
	}

	section := &models.Section{
		ID:         id,
		Name:       req.Name,
		GradeLevel: req.GradeLevel,
		SchoolYear: req.SchoolYear,
		AdviserID:  req.AdviserID,
	}
	if err := s.repo.Update(ctx, section, toOfferings(req.Subjects), req.StudentIDs); err != nil {
		return nil, s.mapWriteError(err, "failed to update section")
	}

	s.invalidate(ctx, id)
	return s.reload(ctx, id)
}

// Delete deactivates the section and cascades to its offerings and
// enrollments. Returns the deactivated section row.
func (s *SectionService) Delete(ctx context.Context, id string) (*models.Section, error) {
	section, err := s.repo.SoftDelete(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Section not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete section")
	}
	s.invalidate(ctx, id)
	return section, nil
}

// ReplaceSubjects swaps the section's subject offerings and returns the
// refreshed detail.
func (s *SectionService) ReplaceSubjects(ctx context.Context, id string, req ReplaceSectionSubjectsRequest) (*models.SectionDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, validation.Messages(err))
	}

	if err := s.repo.ReplaceSubjects(ctx, id, toOfferings(req.Subjects)); err != nil {
		return nil, s.mapWriteError(err, "failed to replace section subjects")
	}
	s.invalidate(ctx, id)
	return s.reload(ctx, id)
}

// ReplaceStudents swaps the section's enrollments and returns the
// refreshed detail.
func (s *SectionService) ReplaceStudents(ctx context.Context, id string, req ReplaceSectionStudentsRequest) (*models.SectionDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, validation.Messages(err))
	}

	if err := s.repo.ReplaceStudents(ctx, id, req.StudentIDs); err != nil {
		return nil, s.mapWriteError(err, "failed to replace section students")
	}
	s.invalidate(ctx, id)
	return s.reload(ctx, id)
}

// ExportRoster renders the section's active enrollments in the
// requested format and returns the payload with its content type.
func (s *SectionService) ExportRoster(ctx context.Context, id, format string) ([]byte, string, error) {
	detail, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}

	roster := export.Roster{
		SectionName: detail.Name,
		GradeLevel:  detail.GradeLevel,
		SchoolYear:  detail.SchoolYear,
		Rows:        make([]export.RosterRow, 0, len(detail.Students)),
	}
	for _, enrollment := range detail.Students {
		roster.Rows = append(roster.Rows, export.RosterRow{
			LastName:       enrollment.Student.LastName,
			FirstName:      enrollment.Student.FirstName,
			EnrollmentDate: enrollment.EnrollmentDate.Format("2006-01-02"),
			Status:         enrollment.Status,
		})
	}

	switch strings.ToLower(format) {
	case RosterFormatCSV, "":
		payload, err := export.RenderCSV(roster)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster")
		}
		return payload, "text/csv", nil
	case RosterFormatPDF:
		payload, err := export.RenderPDF(roster)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster")
		}
		return payload, "application/pdf", nil
	default:
		return nil, "", appErrors.Validation(
			fmt.Errorf("unsupported roster format %q", format),
			[]string{"format must be one of: csv, pdf"})
	}
}

func (s *SectionService) reload(ctx context.Context, id string) (*models.SectionDetail, error) {
	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
	}
	return detail, nil
}

func (s *SectionService) invalidate(ctx context.Context, id string) {
	if err := s.cache.Invalidate(ctx, sectionDetailKeyPrefix+id); err != nil {
		s.logger.Warn("section cache invalidation failed", zap.String("section_id", id), zap.Error(err))
	}
}

func (s *SectionService) mapWriteError(err error, fallback string) error {
	switch {
	case errors.Is(err, repository.ErrSectionNotFound):
		return appErrors.Clone(appErrors.ErrNotFound, "Section not found")
	case errors.Is(err, repository.ErrAdviserNotFound):
		return appErrors.Clone(appErrors.ErrNotFound, "Adviser not found")
	case errors.Is(err, repository.ErrSubjectNotFound):
		return appErrors.Clone(appErrors.ErrNotFound, "One or more subjects not found")
	case errors.Is(err, repository.ErrTeacherNotFound):
		return appErrors.Clone(appErrors.ErrNotFound, "One or more teachers not found")
	case errors.Is(err, repository.ErrStudentNotFound):
		return appErrors.Clone(appErrors.ErrNotFound, "One or more students not found")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fallback)
}

func toOfferings(inputs []SectionSubjectInput) []models.SectionSubject {
	if inputs == nil {
		return nil
	}
	offerings := make([]models.SectionSubject, 0, len(inputs))
	for _, input := range inputs {
		offerings = append(offerings, models.SectionSubject{
			SubjectID: input.SubjectID,
			TeacherID: input.TeacherID,
			Schedule:  input.Schedule,
			Room:      input.Room,
		})
	}
	return offerings
}
