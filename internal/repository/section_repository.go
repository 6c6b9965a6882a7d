package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/school-registry-api/internal/models"
)

const sectionColumns = `id, name, grade_level, school_year, adviser_id, active, created_at, updated_at, deleted_at`

// SectionRepository manages sections and their subject offerings and
// student enrollments. Multi-entity writes run in a single transaction.
type SectionRepository struct {
	db *sqlx.DB
}

// NewSectionRepository constructs a SectionRepository.
func NewSectionRepository(db *sqlx.DB) *SectionRepository {
	return &SectionRepository{db: db}
}

type sectionSummaryRow struct {
	models.Section
	AdviserFirstName string `db:"adviser_first_name"`
	AdviserLastName  string `db:"adviser_last_name"`
	AdviserEmail     string `db:"adviser_email"`
	StudentCount     int    `db:"student_count"`
}

// List returns active sections with adviser info and enrollment counts.
func (r *SectionRepository) List(ctx context.Context, filter models.SectionFilter) ([]models.SectionSummary, int, error) {
	base := `FROM sections sec
        JOIN teachers t ON t.id = sec.adviser_id
        WHERE sec.active = true`
	var conditions []string
	var args []interface{}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(sec.name) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if filter.GradeLevel != "" {
		conditions = append(conditions, fmt.Sprintf("sec.grade_level = $%d", len(args)+1))
		args = append(args, filter.GradeLevel)
	}
	if filter.SchoolYear != "" {
		conditions = append(conditions, fmt.Sprintf("sec.school_year = $%d", len(args)+1))
		args = append(args, filter.SchoolYear)
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page, limit := normalizePage(filter.Page, filter.Limit)
	offset := (page - 1) * limit

	query := fmt.Sprintf(`SELECT sec.id, sec.name, sec.grade_level, sec.school_year, sec.adviser_id,
        sec.active, sec.created_at, sec.updated_at, sec.deleted_at,
        t.first_name AS adviser_first_name, t.last_name AS adviser_last_name, t.email AS adviser_email,
        (SELECT COUNT(*) FROM section_students ss WHERE ss.section_id = sec.id AND ss.active = true) AS student_count
        %s ORDER BY sec.name LIMIT %d OFFSET %d`, base, limit, offset)

	var rows []sectionSummaryRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list sections: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count sections: %w", err)
	}

	summaries := make([]models.SectionSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, models.SectionSummary{
			Section: row.Section,
			Adviser: models.TeacherRef{
				ID:        row.AdviserID,
				FirstName: row.AdviserFirstName,
				LastName:  row.AdviserLastName,
				Email:     row.AdviserEmail,
			},
			StudentCount: row.StudentCount,
		})
	}
	return summaries, total, nil
}

// FindByID fetches an active section by ID.
func (r *SectionRepository) FindByID(ctx context.Context, id string) (*models.Section, error) {
	query := fmt.Sprintf("SELECT %s FROM sections WHERE id = $1 AND active = true", sectionColumns)
	var section models.Section
	if err := r.db.GetContext(ctx, &section, query, id); err != nil {
		return nil, err
	}
	return &section, nil
}

type offeringRow struct {
	ID               string  `db:"id"`
	SubjectID        string  `db:"subject_id"`
	SubjectName      string  `db:"subject_name"`
	SubjectCode      string  `db:"subject_code"`
	TeacherID        string  `db:"teacher_id"`
	TeacherFirstName string  `db:"teacher_first_name"`
	TeacherLastName  string  `db:"teacher_last_name"`
	TeacherEmail     string  `db:"teacher_email"`
	Schedule         *string `db:"schedule"`
	Room             *string `db:"room"`
}

type enrollmentRow struct {
	ID             string    `db:"id"`
	StudentID      string    `db:"student_id"`
	FirstName      string    `db:"first_name"`
	LastName       string    `db:"last_name"`
	EnrollmentDate time.Time `db:"enrollment_date"`
	Status         string    `db:"status"`
}

// FindDetailByID fetches an active section with its adviser, active
// subject offerings and active enrollments.
func (r *SectionRepository) FindDetailByID(ctx context.Context, id string) (*models.SectionDetail, error) {
	section, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var adviser models.TeacherRef
	err = r.db.GetContext(ctx, &adviser,
		"SELECT id, first_name, last_name, email FROM teachers WHERE id = $1", section.AdviserID)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("load adviser: %w", err)
	}

	const offeringsQuery = `SELECT so.id, so.subject_id, s.name AS subject_name, s.code AS subject_code,
        so.teacher_id, t.first_name AS teacher_first_name, t.last_name AS teacher_last_name,
        t.email AS teacher_email, so.schedule, so.room
        FROM section_subjects so
        JOIN subjects s ON s.id = so.subject_id
        JOIN teachers t ON t.id = so.teacher_id
        WHERE so.section_id = $1 AND so.active = true
        ORDER BY s.name`
	var offerings []offeringRow
	if err := r.db.SelectContext(ctx, &offerings, offeringsQuery, id); err != nil {
		return nil, fmt.Errorf("list section subjects: %w", err)
	}

	const enrollmentsQuery = `SELECT ss.id, ss.student_id, st.first_name, st.last_name,
        ss.enrollment_date, ss.status
        FROM section_students ss
        JOIN students st ON st.id = ss.student_id
        WHERE ss.section_id = $1 AND ss.active = true
        ORDER BY st.last_name, st.first_name`
	var enrollments []enrollmentRow
	if err := r.db.SelectContext(ctx, &enrollments, enrollmentsQuery, id); err != nil {
		return nil, fmt.Errorf("list section students: %w", err)
	}

	detail := &models.SectionDetail{
		Section:  *section,
		Adviser:  adviser,
		Subjects: make([]models.SubjectOffering, 0, len(offerings)),
		Students: make([]models.SectionEnrollment, 0, len(enrollments)),
	}
	for _, row := range offerings {
		detail.Subjects = append(detail.Subjects, models.SubjectOffering{
			ID:       row.ID,
			Subject:  models.SubjectRef{ID: row.SubjectID, Name: row.SubjectName, Code: row.SubjectCode},
			Teacher:  models.TeacherRef{ID: row.TeacherID, FirstName: row.TeacherFirstName, LastName: row.TeacherLastName, Email: row.TeacherEmail},
			Schedule: row.Schedule,
			Room:     row.Room,
		})
	}
	for _, row := range enrollments {
		detail.Students = append(detail.Students, models.SectionEnrollment{
			ID:             row.ID,
			Student:        models.StudentRef{ID: row.StudentID, FirstName: row.FirstName, LastName: row.LastName},
			EnrollmentDate: row.EnrollmentDate,
			Status:         row.Status,
		})
	}
	return detail, nil
}

// Create inserts a section together with its initial subject offerings
// and student enrollments in one transaction. Referenced advisers,
// subjects, teachers and students must all resolve to active rows or
// the whole write rolls back.
func (r *SectionRepository) Create(ctx context.Context, section *models.Section, offerings []models.SectionSubject, studentIDs []string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create section: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = verifyAdviserTx(ctx, tx, section.AdviserID); err != nil {
		return err
	}

	if section.ID == "" {
		section.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	section.Active = true
	section.CreatedAt = now
	section.UpdatedAt = now

	const insert = `INSERT INTO sections (id, name, grade_level, school_year, adviser_id, active, created_at, updated_at)
        VALUES (:id, :name, :grade_level, :school_year, :adviser_id, :active, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, insert, section); err != nil {
		return fmt.Errorf("create section: %w", err)
	}

	if err = replaceOfferingsTx(ctx, tx, section.ID, offerings); err != nil {
		return err
	}
	if err = replaceEnrollmentsTx(ctx, tx, section.ID, studentIDs); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create section: %w", err)
	}
	return nil
}

// Update overwrites the section row and, when the slices are non-nil,
// replaces its subject offerings and student enrollments. A nil slice
// leaves that relation untouched.
func (r *SectionRepository) Update(ctx context.Context, section *models.Section, offerings []models.SectionSubject, studentIDs []string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update section: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = verifyAdviserTx(ctx, tx, section.AdviserID); err != nil {
		return err
	}

	section.UpdatedAt = time.Now().UTC()
	const update = `UPDATE sections SET name = $2, grade_level = $3, school_year = $4,
        adviser_id = $5, updated_at = $6
        WHERE id = $1 AND active = true
        RETURNING ` + sectionColumns
	err = tx.GetContext(ctx, section, update,
		section.ID, section.Name, section.GradeLevel, section.SchoolYear, section.AdviserID, section.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			err = ErrSectionNotFound
		}
		return err
	}

	if offerings != nil {
		if err = replaceOfferingsTx(ctx, tx, section.ID, offerings); err != nil {
			return err
		}
	}
	if studentIDs != nil {
		if err = replaceEnrollmentsTx(ctx, tx, section.ID, studentIDs); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit update section: %w", err)
	}
	return nil
}

// SoftDelete deactivates the section and cascades to its offerings and
// enrollments in one transaction. Returns the deactivated section row.
func (r *SectionRepository) SoftDelete(ctx context.Context, id string) (section *models.Section, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin delete section: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	query := fmt.Sprintf(`UPDATE sections SET active = false, deleted_at = $2, updated_at = $2
        WHERE id = $1 AND active = true
        RETURNING %s`, sectionColumns)
	section = &models.Section{}
	if err = tx.GetContext(ctx, section, query, id, now); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `UPDATE section_subjects SET active = false, deleted_at = $2, updated_at = $2
        WHERE section_id = $1 AND active = true`, id, now)
	if err != nil {
		return nil, fmt.Errorf("deactivate section subjects: %w", err)
	}
	_, err = tx.ExecContext(ctx, `UPDATE section_students SET active = false, deleted_at = $2, updated_at = $2
        WHERE section_id = $1 AND active = true`, id, now)
	if err != nil {
		return nil, fmt.Errorf("deactivate section students: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit delete section: %w", err)
	}
	return section, nil
}

// ReplaceSubjects atomically replaces the section's subject offerings.
func (r *SectionRepository) ReplaceSubjects(ctx context.Context, sectionID string, offerings []models.SectionSubject) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace subjects: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = verifySectionTx(ctx, tx, sectionID); err != nil {
		return err
	}
	if err = replaceOfferingsTx(ctx, tx, sectionID, offerings); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit replace subjects: %w", err)
	}
	return nil
}

// ReplaceStudents atomically replaces the section's student enrollments.
func (r *SectionRepository) ReplaceStudents(ctx context.Context, sectionID string, studentIDs []string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace students: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = verifySectionTx(ctx, tx, sectionID); err != nil {
		return err
	}
	if err = replaceEnrollmentsTx(ctx, tx, sectionID, studentIDs); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit replace students: %w", err)
	}
	return nil
}

func verifySectionTx(ctx context.Context, tx *sqlx.Tx, sectionID string) error {
	var exists int
	if err := tx.GetContext(ctx, &exists,
		"SELECT 1 FROM sections WHERE id = $1 AND active = true", sectionID); err != nil {
		if err == sql.ErrNoRows {
			return ErrSectionNotFound
		}
		return fmt.Errorf("verify section: %w", err)
	}
	return nil
}

func verifyAdviserTx(ctx context.Context, tx *sqlx.Tx, adviserID string) error {
	var exists int
	if err := tx.GetContext(ctx, &exists,
		"SELECT 1 FROM teachers WHERE id = $1 AND active = true", adviserID); err != nil {
		if err == sql.ErrNoRows {
			return ErrAdviserNotFound
		}
		return fmt.Errorf("verify adviser: %w", err)
	}
	return nil
}

// replaceOfferingsTx deactivates the section's current offerings and
// upserts the requested ones back to active. Subject and teacher IDs
// are batch-checked against active rows before any write.
func replaceOfferingsTx(ctx context.Context, tx *sqlx.Tx, sectionID string, offerings []models.SectionSubject) error {
	subjectIDs := make([]string, 0, len(offerings))
	teacherIDs := make([]string, 0, len(offerings))
	for _, o := range offerings {
		subjectIDs = append(subjectIDs, o.SubjectID)
		teacherIDs = append(teacherIDs, o.TeacherID)
	}
	subjectIDs = dedupe(subjectIDs)
	teacherIDs = dedupe(teacherIDs)

	if len(subjectIDs) > 0 {
		var count int
		if err := tx.GetContext(ctx, &count,
			"SELECT COUNT(*) FROM subjects WHERE id = ANY($1) AND active = true", pq.Array(subjectIDs)); err != nil {
			return fmt.Errorf("verify subjects: %w", err)
		}
		if count != len(subjectIDs) {
			return ErrSubjectNotFound
		}
	}
	if len(teacherIDs) > 0 {
		var count int
		if err := tx.GetContext(ctx, &count,
			"SELECT COUNT(*) FROM teachers WHERE id = ANY($1) AND active = true", pq.Array(teacherIDs)); err != nil {
			return fmt.Errorf("verify teachers: %w", err)
		}
		if count != len(teacherIDs) {
			return ErrTeacherNotFound
		}
	}

	now := time.Now().UTC()
	_, err := tx.ExecContext(ctx, `UPDATE section_subjects
        SET active = false, deleted_at = $2, updated_at = $2
        WHERE section_id = $1 AND active = true`, sectionID, now)
	if err != nil {
		return fmt.Errorf("deactivate offerings: %w", err)
	}

	for _, o := range offerings {
		_, err = tx.ExecContext(ctx, `INSERT INTO section_subjects
            (id, section_id, subject_id, teacher_id, schedule, room, active, created_at, updated_at)
            VALUES ($1, $2, $3, $4, $5, $6, true, $7, $7)
            ON CONFLICT (section_id, subject_id, teacher_id)
            DO UPDATE SET schedule = EXCLUDED.schedule, room = EXCLUDED.room,
                active = true, deleted_at = NULL, updated_at = EXCLUDED.updated_at`,
			uuid.NewString(), sectionID, o.SubjectID, o.TeacherID, o.Schedule, o.Room, now)
		if err != nil {
			return fmt.Errorf("upsert offering: %w", err)
		}
	}
	return nil
}

// replaceEnrollmentsTx deactivates the section's current enrollments
// and upserts the requested students back to active. Re-activated rows
// keep their original enrollment_date.
func replaceEnrollmentsTx(ctx context.Context, tx *sqlx.Tx, sectionID string, studentIDs []string) error {
	ids := dedupe(studentIDs)

	if len(ids) > 0 {
		var count int
		if err := tx.GetContext(ctx, &count,
			"SELECT COUNT(*) FROM students WHERE id = ANY($1) AND active = true", pq.Array(ids)); err != nil {
			return fmt.Errorf("verify students: %w", err)
		}
		if count != len(ids) {
			return ErrStudentNotFound
		}
	}

	now := time.Now().UTC()
	_, err := tx.ExecContext(ctx, `UPDATE section_students
        SET active = false, deleted_at = $2, updated_at = $2
        WHERE section_id = $1 AND active = true`, sectionID, now)
	if err != nil {
		return fmt.Errorf("deactivate enrollments: %w", err)
	}

	for _, studentID := range ids {
		_, err = tx.ExecContext(ctx, `INSERT INTO section_students
            (id, section_id, student_id, enrollment_date, status, active, created_at, updated_at)
            VALUES ($1, $2, $3, $4, $5, true, $4, $4)
            ON CONFLICT (section_id, student_id)
            DO UPDATE SET status = EXCLUDED.status, active = true, deleted_at = NULL, updated_at = EXCLUDED.updated_at`,
			uuid.NewString(), sectionID, studentID, now, models.EnrollmentStatusActive)
		if err != nil {
			return fmt.Errorf("upsert enrollment: %w", err)
		}
	}
	return nil
}
