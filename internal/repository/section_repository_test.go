package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-registry-api/internal/models"
)

func sectionRows(id string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "grade_level", "school_year", "adviser_id", "active",
		"created_at", "updated_at", "deleted_at",
	}).AddRow(id, "Sampaguita", "6", "2025-2026", "tch-1", true, time.Now(), time.Now(), nil)
}

func TestSectionRepositoryCreateCommitsAllWrites(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSectionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM teachers WHERE id = $1 AND active = true")).
		WithArgs("tch-1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO sections")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	// offerings: batch existence checks, deactivate, upsert
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM subjects WHERE id = ANY($1) AND active = true")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM teachers WHERE id = ANY($1) AND active = true")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE section_subjects")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO section_subjects")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	// enrollments: existence check, deactivate, upsert
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students WHERE id = ANY($1) AND active = true")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE section_students")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO section_students")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO section_students")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	section := &models.Section{
		Name:       "Sampaguita",
		GradeLevel: "6",
		SchoolYear: "2025-2026",
		AdviserID:  "tch-1",
	}
	offerings := []models.SectionSubject{{SubjectID: "sub-1", TeacherID: "tch-1"}}
	err := repo.Create(context.Background(), section, offerings, []string{"stu-1", "stu-2"})
	require.NoError(t, err)
	require.NotEmpty(t, section.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepositoryCreateRollsBackOnMissingStudent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSectionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM teachers WHERE id = $1 AND active = true")).
		WithArgs("tch-1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO sections")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE section_subjects")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	// two requested students but only one resolves to an active row
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students WHERE id = ANY($1) AND active = true")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	section := &models.Section{
		Name:       "Sampaguita",
		GradeLevel: "6",
		SchoolYear: "2025-2026",
		AdviserID:  "tch-1",
	}
	err := repo.Create(context.Background(), section, []models.SectionSubject{}, []string{"stu-1", "missing"})
	require.ErrorIs(t, err, ErrStudentNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepositoryCreateRollsBackOnMissingAdviser(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSectionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM teachers WHERE id = $1 AND active = true")).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))
	mock.ExpectRollback()

	section := &models.Section{Name: "X", GradeLevel: "6", SchoolYear: "2025-2026", AdviserID: "ghost"}
	err := repo.Create(context.Background(), section, []models.SectionSubject{}, []string{})
	require.ErrorIs(t, err, ErrAdviserNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepositorySoftDeleteCascades(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSectionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE sections SET active = false")).
		WillReturnRows(sectionRows("sec-1"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE section_subjects SET active = false")).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE section_students SET active = false")).
		WillReturnResult(sqlmock.NewResult(0, 12))
	mock.ExpectCommit()

	section, err := repo.SoftDelete(context.Background(), "sec-1")
	require.NoError(t, err)
	require.Equal(t, "sec-1", section.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepositoryReplaceStudentsDeduplicates(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSectionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM sections WHERE id = $1 AND active = true")).
		WithArgs("sec-1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	// duplicates collapse to one id so the count check expects one row
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students WHERE id = ANY($1) AND active = true")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE section_students")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO section_students")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.ReplaceStudents(context.Background(), "sec-1", []string{"stu-1", "stu-1"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepositoryReplaceSubjectsMissingSection(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSectionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM sections WHERE id = $1 AND active = true")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))
	mock.ExpectRollback()

	err := repo.ReplaceSubjects(context.Background(), "missing", []models.SectionSubject{})
	require.ErrorIs(t, err, ErrSectionNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDedupe(t *testing.T) {
	require.Equal(t, []string{"a", "b"}, dedupe([]string{"a", "b", "a", "b"}))
	require.Empty(t, dedupe(nil))
}
