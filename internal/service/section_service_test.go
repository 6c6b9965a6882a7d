package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-registry-api/internal/models"
	"github.com/noah-isme/school-registry-api/internal/repository"
	"github.com/noah-isme/school-registry-api/internal/validation"
	appErrors "github.com/noah-isme/school-registry-api/pkg/errors"
)

type mockSectionRepo struct {
	detail     *models.SectionDetail
	listed     []models.SectionSummary
	total      int
	createErr  error
	updateErr  error
	replaceErr error

	lastOfferings  []models.SectionSubject
	lastStudentIDs []string
}

func (m *mockSectionRepo) List(ctx context.Context, filter models.SectionFilter) ([]models.SectionSummary, int, error) {
	return m.listed, m.total, nil
}

func (m *mockSectionRepo) FindDetailByID(ctx context.Context, id string) (*models.SectionDetail, error) {
	if m.detail == nil {
		return nil, sql.ErrNoRows
	}
	return m.detail, nil
}

func (m *mockSectionRepo) Create(ctx context.Context, section *models.Section, offerings []models.SectionSubject, studentIDs []string) error {
	if m.createErr != nil {
		return m.createErr
	}
	section.ID = "sec-new"
	m.lastOfferings = offerings
	m.lastStudentIDs = studentIDs
	return nil
}

func (m *mockSectionRepo) Update(ctx context.Context, section *models.Section, offerings []models.SectionSubject, studentIDs []string) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.lastOfferings = offerings
	m.lastStudentIDs = studentIDs
	return nil
}

func (m *mockSectionRepo) SoftDelete(ctx context.Context, id string) (*models.Section, error) {
	if m.detail == nil {
		return nil, sql.ErrNoRows
	}
	section := m.detail.Section
	section.Active = false
	return &section, nil
}

func (m *mockSectionRepo) ReplaceSubjects(ctx context.Context, sectionID string, offerings []models.SectionSubject) error {
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.lastOfferings = offerings
	return nil
}

func (m *mockSectionRepo) ReplaceStudents(ctx context.Context, sectionID string, studentIDs []string) error {
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.lastStudentIDs = studentIDs
	return nil
}

func sampleDetail() *models.SectionDetail {
	return &models.SectionDetail{
		Section: models.Section{
			ID:         "sec-1",
			Name:       "Sampaguita",
			GradeLevel: "6",
			SchoolYear: "2025-2026",
			AdviserID:  "tch-1",
			Active:     true,
		},
		Adviser:  models.TeacherRef{ID: "tch-1", FirstName: "Maria", LastName: "Santos"},
		Subjects: []models.SubjectOffering{},
		Students: []models.SectionEnrollment{
			{
				ID:      "enr-1",
				Student: models.StudentRef{ID: "stu-1", FirstName: "Ana", LastName: "Reyes"},
				Status:  models.EnrollmentStatusActive,
			},
		},
	}
}

func newSectionService(repo *mockSectionRepo) *SectionService {
	cacheSvc := NewCacheService(nil, nil, 0, nil, false)
	return NewSectionService(repo, cacheSvc, validation.New(), nil)
}

func validCreateSectionRequest() CreateSectionRequest {
	return CreateSectionRequest{
		Name:       "Sampaguita",
		GradeLevel: "6",
		SchoolYear: "2025-2026",
		AdviserID:  "tch-1",
		Subjects:   []SectionSubjectInput{{SubjectID: "sub-1", TeacherID: "tch-1"}},
		StudentIDs: []string{"stu-1"},
	}
}

func TestSectionServiceCreateReturnsDetail(t *testing.T) {
	repo := &mockSectionRepo{detail: sampleDetail()}
	svc := newSectionService(repo)

	detail, err := svc.Create(context.Background(), validCreateSectionRequest())
	require.NoError(t, err)
	assert.Equal(t, "sec-1", detail.ID)
	require.Len(t, repo.lastOfferings, 1)
	assert.Equal(t, "sub-1", repo.lastOfferings[0].SubjectID)
	assert.Equal(t, []string{"stu-1"}, repo.lastStudentIDs)
}

func TestSectionServiceCreateValidation(t *testing.T) {
	svc := newSectionService(&mockSectionRepo{})

	_, err := svc.Create(context.Background(), CreateSectionRequest{SchoolYear: "bad"})
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, 400, appErr.Status)
	assert.NotEmpty(t, appErr.Details)
}

func TestSectionServiceCreateMapsSentinels(t *testing.T) {
	cases := []struct {
		err     error
		message string
	}{
		{repository.ErrAdviserNotFound, "Adviser not found"},
		{repository.ErrSubjectNotFound, "One or more subjects not found"},
		{repository.ErrTeacherNotFound, "One or more teachers not found"},
		{repository.ErrStudentNotFound, "One or more students not found"},
	}
	for _, tc := range cases {
		repo := &mockSectionRepo{createErr: tc.err}
		svc := newSectionService(repo)

		_, err := svc.Create(context.Background(), validCreateSectionRequest())
		appErr := appErrors.FromError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, 404, appErr.Status)
		assert.Equal(t, tc.message, appErr.Message)
	}
}

func TestSectionServiceGetNotFound(t *testing.T) {
	svc := newSectionService(&mockSectionRepo{})

	_, err := svc.Get(context.Background(), "missing")
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, 404, appErr.Status)
	assert.Equal(t, "Section not found", appErr.Message)
}

func TestSectionServiceUpdateSkipsNilRelations(t *testing.T) {
	repo := &mockSectionRepo{detail: sampleDetail(), lastOfferings: []models.SectionSubject{}, lastStudentIDs: []string{}}
	svc := newSectionService(repo)

	_, err := svc.Update(context.Background(), "sec-1", UpdateSectionRequest{
		Name:       "Sampaguita",
		GradeLevel: "6",
		SchoolYear: "2025-2026",
		AdviserID:  "tch-1",
	})
	require.NoError(t, err)
	assert.Nil(t, repo.lastOfferings)
	assert.Nil(t, repo.lastStudentIDs)
}

func TestSectionServiceReplaceStudentsMissingSection(t *testing.T) {
	repo := &mockSectionRepo{replaceErr: repository.ErrSectionNotFound}
	svc := newSectionService(repo)

	_, err := svc.ReplaceStudents(context.Background(), "missing", ReplaceSectionStudentsRequest{StudentIDs: []string{"stu-1"}})
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, 404, appErr.Status)
	assert.Equal(t, "Section not found", appErr.Message)
}

func TestSectionServiceExportRosterCSV(t *testing.T) {
	repo := &mockSectionRepo{detail: sampleDetail()}
	svc := newSectionService(repo)

	payload, contentType, err := svc.ExportRoster(context.Background(), "sec-1", "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)

	body := string(payload)
	assert.True(t, strings.HasPrefix(body, "Last Name,First Name,Enrollment Date,Status"))
	assert.Contains(t, body, "Reyes,Ana")
}

func TestSectionServiceExportRosterPDF(t *testing.T) {
	repo := &mockSectionRepo{detail: sampleDetail()}
	svc := newSectionService(repo)

	payload, contentType, err := svc.ExportRoster(context.Background(), "sec-1", "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", contentType)
	assert.True(t, strings.HasPrefix(string(payload), "%PDF"))
}

func TestSectionServiceExportRosterBadFormat(t *testing.T) {
	repo := &mockSectionRepo{detail: sampleDetail()}
	svc := newSectionService(repo)

	_, _, err := svc.ExportRoster(context.Background(), "sec-1", "xlsx")
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, 400, appErr.Status)
}
