package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-registry-api/internal/models"
	"github.com/noah-isme/school-registry-api/internal/validation"
	appErrors "github.com/noah-isme/school-registry-api/pkg/errors"
)

type mockStudentRepo struct {
	students map[string]*models.Student
	listed   []models.Student
	total    int
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{students: map[string]*models.Student{}}
}

func (m *mockStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	return m.listed, m.total, nil
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	student, ok := m.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return student, nil
}

func (m *mockStudentRepo) Create(ctx context.Context, student *models.Student) error {
	student.ID = "stu-new"
	student.Active = true
	m.students[student.ID] = student
	return nil
}

func (m *mockStudentRepo) Update(ctx context.Context, student *models.Student) error {
	m.students[student.ID] = student
	return nil
}

func (m *mockStudentRepo) SoftDelete(ctx context.Context, id string) (*models.Student, error) {
	student, ok := m.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	student.Active = false
	delete(m.students, id)
	return student, nil
}

func validStudentRequest() StudentRequest {
	return StudentRequest{
		FirstName:  "Ana",
		LastName:   "Reyes",
		Gender:     "female",
		Age:        12,
		Grade:      6,
		SchoolYear: "2025-2026",
	}
}

func TestStudentServiceCreate(t *testing.T) {
	repo := newMockStudentRepo()
	svc := NewStudentService(repo, validation.New(), nil)

	student, err := svc.Create(context.Background(), validStudentRequest())
	require.NoError(t, err)
	assert.Equal(t, "stu-new", student.ID)
	assert.True(t, student.Active)
}

func TestStudentServiceCreateCollectsAllViolations(t *testing.T) {
	svc := NewStudentService(newMockStudentRepo(), validation.New(), nil)

	_, err := svc.Create(context.Background(), StudentRequest{
		Gender:     "unknown",
		Age:        2,
		Grade:      13,
		SchoolYear: "2025",
	})
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, 400, appErr.Status)
	assert.Equal(t, "Validation failed", appErr.Message)
	// firstName, lastName, gender, age, grade, schoolYear all violated
	assert.Len(t, appErr.Details, 6)
}

func TestStudentServiceGetNotFound(t *testing.T) {
	svc := NewStudentService(newMockStudentRepo(), validation.New(), nil)

	_, err := svc.Get(context.Background(), "missing")
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, 404, appErr.Status)
	assert.Equal(t, "Student not found", appErr.Message)
}

func TestStudentServiceUpdateNotFound(t *testing.T) {
	svc := NewStudentService(newMockStudentRepo(), validation.New(), nil)

	_, err := svc.Update(context.Background(), "missing", validStudentRequest())
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, 404, appErr.Status)
}

func TestStudentServiceDeleteReturnsRecord(t *testing.T) {
	repo := newMockStudentRepo()
	repo.students["stu-1"] = &models.Student{ID: "stu-1", Active: true}
	svc := NewStudentService(repo, validation.New(), nil)

	student, err := svc.Delete(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.False(t, student.Active)

	_, err = svc.Delete(context.Background(), "stu-1")
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, 404, appErr.Status)
}

func TestStudentServiceListPagination(t *testing.T) {
	repo := newMockStudentRepo()
	repo.listed = []models.Student{{ID: "stu-1"}}
	repo.total = 21
	svc := NewStudentService(repo, validation.New(), nil)

	students, pagination, err := svc.List(context.Background(), models.StudentFilter{Page: 2, Limit: 10})
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, 21, pagination.Total)
	assert.Equal(t, 2, pagination.Page)
	assert.Equal(t, 10, pagination.Limit)
	assert.Equal(t, 3, pagination.TotalPages)
}
