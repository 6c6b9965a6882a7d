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

type mockSubjectRepo struct {
	subjects   map[string]*models.Subject
	codeExists bool
}

func newMockSubjectRepo() *mockSubjectRepo {
	return &mockSubjectRepo{subjects: map[string]*models.Subject{}}
}

func (m *mockSubjectRepo) List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, int, error) {
	return nil, 0, nil
}

func (m *mockSubjectRepo) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	subject, ok := m.subjects[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return subject, nil
}

func (m *mockSubjectRepo) FindDetailByID(ctx context.Context, id string) (*models.SubjectDetail, error) {
	subject, ok := m.subjects[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &models.SubjectDetail{Subject: *subject, Teachers: []models.TeacherRef{}}, nil
}

func (m *mockSubjectRepo) ExistsByCode(ctx context.Context, code string, excludeID string) (bool, error) {
	return m.codeExists, nil
}

func (m *mockSubjectRepo) Create(ctx context.Context, subject *models.Subject) error {
	subject.ID = "sub-new"
	m.subjects[subject.ID] = subject
	return nil
}

func (m *mockSubjectRepo) Update(ctx context.Context, subject *models.Subject) error {
	m.subjects[subject.ID] = subject
	return nil
}

func (m *mockSubjectRepo) SoftDelete(ctx context.Context, id string) (*models.Subject, error) {
	subject, ok := m.subjects[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	delete(m.subjects, id)
	return subject, nil
}

func TestSubjectServiceCreateNormalizesCode(t *testing.T) {
	repo := newMockSubjectRepo()
	svc := NewSubjectService(repo, validation.New(), nil)

	subject, err := svc.Create(context.Background(), SubjectRequest{Name: "Mathematics", Code: " math-6 "})
	require.NoError(t, err)
	assert.Equal(t, "MATH-6", subject.Code)
}

func TestSubjectServiceCreateRejectsBadCode(t *testing.T) {
	svc := NewSubjectService(newMockSubjectRepo(), validation.New(), nil)

	_, err := svc.Create(context.Background(), SubjectRequest{Name: "Math", Code: "MATH 6!"})
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, 400, appErr.Status)
	require.Len(t, appErr.Details, 1)
	assert.Contains(t, appErr.Details[0], "code")
}

func TestSubjectServiceCreateDuplicateCode(t *testing.T) {
	repo := newMockSubjectRepo()
	repo.codeExists = true
	svc := NewSubjectService(repo, validation.New(), nil)

	_, err := svc.Create(context.Background(), SubjectRequest{Name: "Math", Code: "MATH-6"})
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, 409, appErr.Status)
}

func TestSubjectServiceGetNotFound(t *testing.T) {
	svc := NewSubjectService(newMockSubjectRepo(), validation.New(), nil)

	_, err := svc.Get(context.Background(), "missing")
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, 404, appErr.Status)
	assert.Equal(t, "Subject not found", appErr.Message)
}

func TestSubjectServiceDeleteReturnsRecord(t *testing.T) {
	repo := newMockSubjectRepo()
	repo.subjects["sub-1"] = &models.Subject{ID: "sub-1", Name: "Math", Code: "MATH-6"}
	svc := NewSubjectService(repo, validation.New(), nil)

	subject, err := svc.Delete(context.Background(), "sub-1")
	require.NoError(t, err)
	assert.Equal(t, "sub-1", subject.ID)
}
