package models

import "time"

// Subject represents an academic subject.
type Subject struct {
	ID          string     `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	Code        string     `db:"code" json:"code"`
	Description *string    `db:"description" json:"description,omitempty"`
	Department  *string    `db:"department" json:"department,omitempty"`
	Active      bool       `db:"active" json:"active"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updatedAt"`
	DeletedAt   *time.Time `db:"deleted_at" json:"deletedAt,omitempty"`
}

// SubjectDetail extends Subject with the teachers currently assigned to it.
type SubjectDetail struct {
	Subject
	Teachers []TeacherRef `json:"teachers"`
}

// SubjectFilter captures supported filters for listing subjects.
type SubjectFilter struct {
	Search     string
	Department string
	Page       int
	Limit      int
}

// SubjectRef is the compact subject view embedded in offering payloads.
type SubjectRef struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
	Code string `db:"code" json:"code"`
}

// TeacherSubject links a teacher to a subject for one school year.
type TeacherSubject struct {
	ID         string     `db:"id" json:"id"`
	TeacherID  string     `db:"teacher_id" json:"teacherId"`
	SubjectID  string     `db:"subject_id" json:"subjectId"`
	SchoolYear string     `db:"school_year" json:"schoolYear"`
	Active     bool       `db:"active" json:"active"`
	CreatedAt  time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updatedAt"`
	DeletedAt  *time.Time `db:"deleted_at" json:"deletedAt,omitempty"`
}
