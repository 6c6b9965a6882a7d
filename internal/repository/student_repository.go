package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-registry-api/internal/models"
)

const studentColumns = `id, first_name, middle_name, last_name, gender, age, grade, section,
        school_year, school_name, subject, grading_period, division, active, created_at, updated_at, deleted_at`

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns active students matching the provided filters along with
// the total count over the same predicates.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	base := "FROM students WHERE active = true"
	var conditions []string
	var args []interface{}

	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, fmt.Sprintf(
			"(LOWER(first_name) LIKE $%d OR LOWER(last_name) LIKE $%d OR LOWER(COALESCE(middle_name, '')) LIKE $%d)",
			len(args)+1, len(args)+1, len(args)+1))
		args = append(args, search)
	}
	if filter.Grade > 0 {
		conditions = append(conditions, fmt.Sprintf("grade = $%d", len(args)+1))
		args = append(args, filter.Grade)
	}
	if filter.Section != "" {
		conditions = append(conditions, fmt.Sprintf("section = $%d", len(args)+1))
		args = append(args, filter.Section)
	}
	if filter.SchoolYear != "" {
		conditions = append(conditions, fmt.Sprintf("school_year = $%d", len(args)+1))
		args = append(args, filter.SchoolYear)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page, limit := normalizePage(filter.Page, filter.Limit)
	offset := (page - 1) * limit

	query := fmt.Sprintf("SELECT %s %s ORDER BY last_name, first_name LIMIT %d OFFSET %d", studentColumns, base, limit, offset)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByID fetches an active student by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE id = $1 AND active = true", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// Create inserts a new active student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	student.Active = true
	student.CreatedAt = now
	student.UpdatedAt = now
	const query = `INSERT INTO students (id, first_name, middle_name, last_name, gender, age, grade, section,
        school_year, school_name, subject, grading_period, division, active, created_at, updated_at)
        VALUES (:id, :first_name, :middle_name, :last_name, :gender, :age, :grade, :section,
        :school_year, :school_name, :subject, :grading_period, :division, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update overwrites the mutable fields of an active student.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET first_name = :first_name, middle_name = :middle_name, last_name = :last_name,
        gender = :gender, age = :age, grade = :grade, section = :section, school_year = :school_year,
        school_name = :school_name, subject = :subject, grading_period = :grading_period, division = :division,
        updated_at = :updated_at
        WHERE id = :id AND active = true`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// SoftDelete deactivates the active student with the given ID and
// returns the deactivated row.
func (r *StudentRepository) SoftDelete(ctx context.Context, id string) (*models.Student, error) {
	query := fmt.Sprintf(`UPDATE students SET active = false, deleted_at = $2, updated_at = $2
        WHERE id = $1 AND active = true
        RETURNING %s`, studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id, time.Now().UTC()); err != nil {
		return nil, err
	}
	return &student, nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return page, limit
}
