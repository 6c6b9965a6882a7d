package models

import "time"

// Teacher represents an instructor record.
type Teacher struct {
	ID              string     `db:"id" json:"id"`
	FirstName       string     `db:"first_name" json:"firstName"`
	MiddleName      *string    `db:"middle_name" json:"middleName,omitempty"`
	LastName        string     `db:"last_name" json:"lastName"`
	Gender          string     `db:"gender" json:"gender"`
	Age             int        `db:"age" json:"age"`
	Email           string     `db:"email" json:"email"`
	Phone           *string    `db:"phone" json:"phone,omitempty"`
	Department      *string    `db:"department" json:"department,omitempty"`
	Qualification   *string    `db:"qualification" json:"qualification,omitempty"`
	YearsExperience int        `db:"years_experience" json:"yearsOfExperience"`
	SchoolYear      string     `db:"school_year" json:"schoolYear"`
	Active          bool       `db:"active" json:"active"`
	CreatedAt       time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updatedAt"`
	DeletedAt       *time.Time `db:"deleted_at" json:"deletedAt,omitempty"`
}

// TeacherDetail extends Teacher with the active subject assignments.
type TeacherDetail struct {
	Teacher
	Subjects []AssignedSubject `json:"subjects"`
}

// AssignedSubject is a subject row joined through teacher_subjects.
type AssignedSubject struct {
	ID         string `db:"id" json:"id"`
	Name       string `db:"name" json:"name"`
	Code       string `db:"code" json:"code"`
	SchoolYear string `db:"school_year" json:"schoolYear"`
}

// TeacherFilter captures filtering options for listing teachers.
type TeacherFilter struct {
	Search     string
	Department string
	SchoolYear string
	Page       int
	Limit      int
}

// TeacherRef is the compact teacher view embedded in section payloads.
type TeacherRef struct {
	ID        string `db:"id" json:"id"`
	FirstName string `db:"first_name" json:"firstName"`
	LastName  string `db:"last_name" json:"lastName"`
	Email     string `db:"email" json:"email"`
}
