package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-registry-api/internal/models"
	"github.com/noah-isme/school-registry-api/internal/repository"
	"github.com/noah-isme/school-registry-api/internal/validation"
	appErrors "github.com/noah-isme/school-registry-api/pkg/errors"
)

type mockTeacherRepo struct {
	teachers    map[string]*models.Teacher
	emailExists bool
}

func newMockTeacherRepo() *mockTeacherRepo {
	return &mockTeacherRepo{teachers: map[string]*models.Teacher{}}
}

func (m *mockTeacherRepo) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error) {
	return nil, 0, nil
}

func (m *mockTeacherRepo) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	teacher, ok := m.teachers[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return teacher, nil
}

func (m *mockTeacherRepo) FindDetailByID(ctx context.Context, id string) (*models.TeacherDetail, error) {
	teacher, ok := m.teachers[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &models.TeacherDetail{Teacher: *teacher, Subjects: []models.AssignedSubject{}}, nil
}

func (m *mockTeacherRepo) ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error) {
	return m.emailExists, nil
}

func (m *mockTeacherRepo) Create(ctx context.Context, teacher *models.Teacher) error {
	teacher.ID = "tch-new"
	m.teachers[teacher.ID] = teacher
	return nil
}

func (m *mockTeacherRepo) Update(ctx context.Context, teacher *models.Teacher) error {
	m.teachers[teacher.ID] = teacher
	return nil
}

func (m *mockTeacherRepo) SoftDelete(ctx context.Context, id string) (*models.Teacher, error) {
	teacher, ok := m.teachers[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	delete(m.teachers, id)
	return teacher, nil
}

type mockAssignmentRepo struct {
	assigned   []models.AssignedSubject
	replaceErr error
	lastIDs    []string
}

func (m *mockAssignmentRepo) ListActiveByTeacher(ctx context.Context, teacherID, schoolYear string) ([]models.AssignedSubject, error) {
	return m.assigned, nil
}

func (m *mockAssignmentRepo) ReplaceForSchoolYear(ctx context.Context, teacherID, schoolYear string, subjectIDs []string) ([]models.AssignedSubject, error) {
	if m.replaceErr != nil {
		return nil, m.replaceErr
	}
	m.lastIDs = subjectIDs
	return m.assigned, nil
}

func validTeacherRequest() TeacherRequest {
	return TeacherRequest{
		FirstName:  "Maria",
		LastName:   "Santos",
		Gender:     "female",
		Age:        35,
		Email:      "maria.santos@school.edu",
		SchoolYear: "2025-2026",
	}
}

func TestTeacherServiceCreate(t *testing.T) {
	repo := newMockTeacherRepo()
	svc := NewTeacherService(repo, &mockAssignmentRepo{}, validation.New(), nil)

	teacher, err := svc.Create(context.Background(), validTeacherRequest())
	require.NoError(t, err)
	assert.Equal(t, "tch-new", teacher.ID)
}

func TestTeacherServiceCreateDuplicateEmail(t *testing.T) {
	repo := newMockTeacherRepo()
	repo.emailExists = true
	svc := NewTeacherService(repo, &mockAssignmentRepo{}, validation.New(), nil)

	_, err := svc.Create(context.Background(), validTeacherRequest())
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, 409, appErr.Status)
}

func TestTeacherServiceCreateUnderage(t *testing.T) {
	svc := NewTeacherService(newMockTeacherRepo(), &mockAssignmentRepo{}, validation.New(), nil)

	req := validTeacherRequest()
	req.Age = 18
	_, err := svc.Create(context.Background(), req)
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, 400, appErr.Status)
	require.Len(t, appErr.Details, 1)
	assert.Contains(t, appErr.Details[0], "age")
}

func TestTeacherServiceGetNotFound(t *testing.T) {
	svc := NewTeacherService(newMockTeacherRepo(), &mockAssignmentRepo{}, validation.New(), nil)

	_, err := svc.Get(context.Background(), "missing")
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, 404, appErr.Status)
	assert.Equal(t, "Teacher not found", appErr.Message)
}

func TestTeacherServiceAssignSubjects(t *testing.T) {
	repo := newMockTeacherRepo()
	repo.teachers["tch-1"] = &models.Teacher{ID: "tch-1", FirstName: "Maria", LastName: "Santos"}
	assignments := &mockAssignmentRepo{
		assigned: []models.AssignedSubject{{ID: "sub-1", Name: "Math", Code: "MATH-6", SchoolYear: "2025-2026"}},
	}
	svc := NewTeacherService(repo, assignments, validation.New(), nil)

	detail, err := svc.AssignSubjects(context.Background(), "tch-1", AssignSubjectsRequest{
		SchoolYear: "2025-2026",
		SubjectIDs: []string{"sub-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "tch-1", detail.ID)
	require.Len(t, detail.Subjects, 1)
	assert.Equal(t, []string{"sub-1"}, assignments.lastIDs)
}

func TestTeacherServiceAssignSubjectsMapsSentinels(t *testing.T) {
	cases := []struct {
		err     error
		message string
	}{
		{repository.ErrTeacherNotFound, "Teacher not found"},
		{repository.ErrSubjectNotFound, "One or more subjects not found"},
	}
	for _, tc := range cases {
		svc := NewTeacherService(newMockTeacherRepo(), &mockAssignmentRepo{replaceErr: tc.err}, validation.New(), nil)

		_, err := svc.AssignSubjects(context.Background(), "tch-1", AssignSubjectsRequest{
			SchoolYear: "2025-2026",
			SubjectIDs: []string{"sub-1"},
		})
		appErr := appErrors.FromError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, 404, appErr.Status)
		assert.Equal(t, tc.message, appErr.Message)
	}
}

func TestTeacherServiceAssignSubjectsBadSchoolYear(t *testing.T) {
	svc := NewTeacherService(newMockTeacherRepo(), &mockAssignmentRepo{}, validation.New(), nil)

	_, err := svc.AssignSubjects(context.Background(), "tch-1", AssignSubjectsRequest{
		SchoolYear: "25-26",
		SubjectIDs: []string{"sub-1"},
	})
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, 400, appErr.Status)
}
