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

const subjectColumns = `id, name, code, description, department, active, created_at, updated_at, deleted_at`

// SubjectRepository manages persistence for subjects.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository constructs a SubjectRepository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// List returns active subjects matching filters along with total count.
func (r *SubjectRepository) List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, int, error) {
	base := "FROM subjects WHERE active = true"
	var conditions []string
	var args []interface{}

	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, fmt.Sprintf(
			"(LOWER(name) LIKE $%d OR LOWER(code) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, search)
	}
	if filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("department = $%d", len(args)+1))
		args = append(args, filter.Department)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page, limit := normalizePage(filter.Page, filter.Limit)
	offset := (page - 1) * limit

	query := fmt.Sprintf("SELECT %s %s ORDER BY name LIMIT %d OFFSET %d", subjectColumns, base, limit, offset)
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list subjects: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count subjects: %w", err)
	}

	return subjects, total, nil
}

// FindByID fetches an active subject by ID.
func (r *SubjectRepository) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	query := fmt.Sprintf("SELECT %s FROM subjects WHERE id = $1 AND active = true", subjectColumns)
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, id); err != nil {
		return nil, err
	}
	return &subject, nil
}

// FindDetailByID fetches an active subject with the teachers currently
// assigned to it.
func (r *SubjectRepository) FindDetailByID(ctx context.Context, id string) (*models.SubjectDetail, error) {
	subject, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	const query = `SELECT t.id, t.first_name, t.last_name, t.email
        FROM teacher_subjects ts
        JOIN teachers t ON t.id = ts.teacher_id AND t.active = true
        WHERE ts.subject_id = $1 AND ts.active = true
        ORDER BY t.last_name, t.first_name`
	teachers := make([]models.TeacherRef, 0)
	if err := r.db.SelectContext(ctx, &teachers, query, id); err != nil {
		return nil, fmt.Errorf("list subject teachers: %w", err)
	}

	return &models.SubjectDetail{Subject: *subject, Teachers: teachers}, nil
}

// ExistsByCode checks if another subject uses the same code.
func (r *SubjectRepository) ExistsByCode(ctx context.Context, code string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM subjects WHERE code = $1"
	args := []interface{}{code}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check subject code: %w", err)
	}
	return true, nil
}

// Create inserts a new active subject record.
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	if subject.ID == "" {
		subject.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	subject.Active = true
	subject.CreatedAt = now
	subject.UpdatedAt = now

	const query = `INSERT INTO subjects (id, name, code, description, department, active, created_at, updated_at)
        VALUES (:id, :name, :code, :description, :department, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		return fmt.Errorf("create subject: %w", err)
	}
	return nil
}

// Update overwrites the mutable fields of an active subject.
func (r *SubjectRepository) Update(ctx context.Context, subject *models.Subject) error {
	subject.UpdatedAt = time.Now().UTC()
	const query = `UPDATE subjects SET name = :name, code = :code, description = :description,
        department = :department, updated_at = :updated_at
        WHERE id = :id AND active = true`
	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		return fmt.Errorf("update subject: %w", err)
	}
	return nil
}

// SoftDelete deactivates the active subject and returns the row.
func (r *SubjectRepository) SoftDelete(ctx context.Context, id string) (*models.Subject, error) {
	query := fmt.Sprintf(`UPDATE subjects SET active = false, deleted_at = $2, updated_at = $2
        WHERE id = $1 AND active = true
        RETURNING %s`, subjectColumns)
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, id, time.Now().UTC()); err != nil {
		return nil, err
	}
	return &subject, nil
}
