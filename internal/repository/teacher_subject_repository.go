package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/school-registry-api/internal/models"
)

// TeacherSubjectRepository manages subject assignments for teachers.
type TeacherSubjectRepository struct {
	db *sqlx.DB
}

// NewTeacherSubjectRepository constructs a TeacherSubjectRepository.
func NewTeacherSubjectRepository(db *sqlx.DB) *TeacherSubjectRepository {
	return &TeacherSubjectRepository{db: db}
}

// ListActiveByTeacher returns the teacher's active assignments, joined
// to the subject rows. An empty schoolYear matches all years.
func (r *TeacherSubjectRepository) ListActiveByTeacher(ctx context.Context, teacherID, schoolYear string) ([]models.AssignedSubject, error) {
	query := `SELECT s.id, s.name, s.code, ts.school_year
        FROM teacher_subjects ts
        JOIN subjects s ON s.id = ts.subject_id AND s.active = true
        WHERE ts.teacher_id = $1 AND ts.active = true`
	args := []interface{}{teacherID}
	if schoolYear != "" {
		query += " AND ts.school_year = $2"
		args = append(args, schoolYear)
	}
	query += " ORDER BY s.name"

	subjects := make([]models.AssignedSubject, 0)
	if err := r.db.SelectContext(ctx, &subjects, query, args...); err != nil {
		return nil, fmt.Errorf("list teacher assignments: %w", err)
	}
	return subjects, nil
}

// ReplaceForSchoolYear atomically replaces a teacher's subject
// assignments for one school year. Existing assignments for that year
// are deactivated, then each requested subject is upserted back to
// active. Returns the resulting active assignments.
func (r *TeacherSubjectRepository) ReplaceForSchoolYear(ctx context.Context, teacherID, schoolYear string, subjectIDs []string) (result []models.AssignedSubject, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin replace assignments: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var exists int
	err = tx.GetContext(ctx, &exists, "SELECT 1 FROM teachers WHERE id = $1 AND active = true", teacherID)
	if err != nil {
		if err == sql.ErrNoRows {
			err = ErrTeacherNotFound
		}
		return nil, err
	}

	ids := dedupe(subjectIDs)
	if len(ids) > 0 {
		var count int
		err = tx.GetContext(ctx, &count,
			"SELECT COUNT(*) FROM subjects WHERE id = ANY($1) AND active = true", pq.Array(ids))
		if err != nil {
			return nil, fmt.Errorf("verify subjects: %w", err)
		}
		if count != len(ids) {
			err = ErrSubjectNotFound
			return nil, err
		}
	}

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `UPDATE teacher_subjects
        SET active = false, deleted_at = $3, updated_at = $3
        WHERE teacher_id = $1 AND school_year = $2 AND active = true`,
		teacherID, schoolYear, now)
	if err != nil {
		return nil, fmt.Errorf("deactivate assignments: %w", err)
	}

	for _, subjectID := range ids {
		_, err = tx.ExecContext(ctx, `INSERT INTO teacher_subjects
            (id, teacher_id, subject_id, school_year, active, created_at, updated_at)
            VALUES ($1, $2, $3, $4, true, $5, $5)
            ON CONFLICT (teacher_id, subject_id, school_year)
            DO UPDATE SET active = true, deleted_at = NULL, updated_at = EXCLUDED.updated_at`,
			uuid.NewString(), teacherID, subjectID, schoolYear, now)
		if err != nil {
			return nil, fmt.Errorf("upsert assignment: %w", err)
		}
	}

	subjects := make([]models.AssignedSubject, 0)
	err = tx.SelectContext(ctx, &subjects, `SELECT s.id, s.name, s.code, ts.school_year
        FROM teacher_subjects ts
        JOIN subjects s ON s.id = ts.subject_id
        WHERE ts.teacher_id = $1 AND ts.school_year = $2 AND ts.active = true
        ORDER BY s.name`, teacherID, schoolYear)
	if err != nil {
		return nil, fmt.Errorf("read back assignments: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit replace assignments: %w", err)
	}
	return subjects, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
