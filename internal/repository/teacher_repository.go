package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-registry-api/internal/models"
)

const teacherColumns = `id, first_name, middle_name, last_name, gender, age, email, phone,
        department, qualification, years_experience, school_year, active, created_at, updated_at, deleted_at`

// TeacherRepository manages persistence for teachers.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// List returns active teachers matching filters along with total count.
func (r *TeacherRepository) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error) {
	base := "FROM teachers WHERE active = true"
	var conditions []string
	var args []interface{}

	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, fmt.Sprintf(
			"(LOWER(first_name) LIKE $%d OR LOWER(last_name) LIKE $%d OR LOWER(email) LIKE $%d)",
			len(args)+1, len(args)+1, len(args)+1))
		args = append(args, search)
	}
	if filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("department = $%d", len(args)+1))
		args = append(args, filter.Department)
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY last_name, first_name LIMIT %d OFFSET %d", teacherColumns, base, limit, offset)
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list teachers: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count teachers: %w", err)
	}

	return teachers, total, nil
}

// FindByID fetches an active teacher by ID.
func (r *TeacherRepository) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	query := fmt.Sprintf("SELECT %s FROM teachers WHERE id = $1 AND active = true", teacherColumns)
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, id); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// FindDetailByID fetches an active teacher with its active subject
// assignments.
func (r *TeacherRepository) FindDetailByID(ctx context.Context, id string) (*models.TeacherDetail, error) {
	teacher, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	const query = `SELECT s.id, s.name, s.code, ts.school_year
        FROM teacher_subjects ts
        JOIN subjects s ON s.id = ts.subject_id AND s.active = true
        WHERE ts.teacher_id = $1 AND ts.active = true
        ORDER BY s.name`
	subjects := make([]models.AssignedSubject, 0)
	if err := r.db.SelectContext(ctx, &subjects, query, id); err != nil {
		return nil, fmt.Errorf("list teacher subjects: %w", err)
	}

	return &models.TeacherDetail{Teacher: *teacher, Subjects: subjects}, nil
}

// ExistsByEmail checks if another teacher uses the same email.
func (r *TeacherRepository) ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM teachers WHERE LOWER(email) = LOWER($1)"
	args := []interface{}{email}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check teacher email: %w", err)
	}
	return true, nil
}

// Create inserts a new active teacher record.
func (r *TeacherRepository) Create(ctx context.Context, teacher *models.Teacher) error {
	if teacher.ID == "" {
		teacher.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	teacher.Active = true
	teacher.CreatedAt = now
	teacher.UpdatedAt = now

	const query = `INSERT INTO teachers (id, first_name, middle_name, last_name, gender, age, email, phone,
        department, qualification, years_experience, school_year, active, created_at, updated_at)
        VALUES (:id, :first_name, :middle_name, :last_name, :gender, :age, :email, :phone,
        :department, :qualification, :years_experience, :school_year, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, teacher); err != nil {
		return fmt.Errorf("create teacher: %w", err)
	}
	return nil
}

// Update overwrites the mutable fields of an active teacher.
func (r *TeacherRepository) Update(ctx context.Context, teacher *models.Teacher) error {
	teacher.UpdatedAt = time.Now().UTC()
	const query = `UPDATE teachers SET first_name = :first_name, middle_name = :middle_name, last_name = :last_name,
        gender = :gender, age = :age, email = :email, phone = :phone, department = :department,
        qualification = :qualification, years_experience = :years_experience, school_year = :school_year,
        updated_at = :updated_at
        WHERE id = :id AND active = true`
	if _, err := r.db.NamedExecContext(ctx, query, teacher); err != nil {
		return fmt.Errorf("update teacher: %w", err)
	}
	return nil
}

// SoftDelete deactivates the active teacher and returns the row.
func (r *TeacherRepository) SoftDelete(ctx context.Context, id string) (*models.Teacher, error) {
	query := fmt.Sprintf(`UPDATE teachers SET active = false, deleted_at = $2, updated_at = $2
        WHERE id = $1 AND active = true
        RETURNING %s`, teacherColumns)
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, id, time.Now().UTC()); err != nil {
		return nil, err
	}
	return &teacher, nil
}
