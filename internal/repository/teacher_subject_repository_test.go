package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestTeacherSubjectReplaceForSchoolYear(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTeacherSubjectRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM teachers WHERE id = $1 AND active = true")).
		WithArgs("tch-1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM subjects WHERE id = ANY($1) AND active = true")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE teacher_subjects")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO teacher_subjects")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO teacher_subjects")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT s.id, s.name, s.code, ts.school_year")).
		WithArgs("tch-1", "2025-2026").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "code", "school_year"}).
			AddRow("sub-1", "Math", "MATH-6", "2025-2026").
			AddRow("sub-2", "Science", "SCI-6", "2025-2026"))
	mock.ExpectCommit()

	subjects, err := repo.ReplaceForSchoolYear(context.Background(), "tch-1", "2025-2026", []string{"sub-1", "sub-2"})
	require.NoError(t, err)
	require.Len(t, subjects, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherSubjectReplaceMissingTeacher(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTeacherSubjectRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM teachers WHERE id = $1 AND active = true")).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))
	mock.ExpectRollback()

	_, err := repo.ReplaceForSchoolYear(context.Background(), "ghost", "2025-2026", []string{"sub-1"})
	require.ErrorIs(t, err, ErrTeacherNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherSubjectReplaceMissingSubject(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTeacherSubjectRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM teachers WHERE id = $1 AND active = true")).
		WithArgs("tch-1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM subjects WHERE id = ANY($1) AND active = true")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	_, err := repo.ReplaceForSchoolYear(context.Background(), "tch-1", "2025-2026", []string{"sub-1", "missing"})
	require.ErrorIs(t, err, ErrSubjectNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherSubjectReplaceEmptyClearsAssignments(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTeacherSubjectRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM teachers WHERE id = $1 AND active = true")).
		WithArgs("tch-1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE teacher_subjects")).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT s.id, s.name, s.code, ts.school_year")).
		WithArgs("tch-1", "2025-2026").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "code", "school_year"}))
	mock.ExpectCommit()

	subjects, err := repo.ReplaceForSchoolYear(context.Background(), "tch-1", "2025-2026", nil)
	require.NoError(t, err)
	require.Empty(t, subjects)
	require.NoError(t, mock.ExpectationsWereMet())
}
