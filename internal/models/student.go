package models

import "time"

// Student represents a learner registered in the institution.
type Student struct {
	ID            string     `db:"id" json:"id"`
	FirstName     string     `db:"first_name" json:"firstName"`
	MiddleName    *string    `db:"middle_name" json:"middleName,omitempty"`
	LastName      string     `db:"last_name" json:"lastName"`
	Gender        string     `db:"gender" json:"gender"`
	Age           int        `db:"age" json:"age"`
	Grade         int        `db:"grade" json:"grade"`
	Section       *string    `db:"section" json:"section,omitempty"`
	SchoolYear    string     `db:"school_year" json:"schoolYear"`
	SchoolName    *string    `db:"school_name" json:"schoolName,omitempty"`
	Subject       *string    `db:"subject" json:"subject,omitempty"`
	GradingPeriod *string    `db:"grading_period" json:"gradingPeriod,omitempty"`
	Division      *string    `db:"division" json:"division,omitempty"`
	Active        bool       `db:"active" json:"active"`
	CreatedAt     time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updatedAt"`
	DeletedAt     *time.Time `db:"deleted_at" json:"deletedAt,omitempty"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search     string
	Grade      int
	Section    string
	SchoolYear string
	Page       int
	Limit      int
}

// StudentRef is the compact student view embedded in enrollment payloads.
type StudentRef struct {
	ID        string `db:"id" json:"id"`
	FirstName string `db:"first_name" json:"firstName"`
	LastName  string `db:"last_name" json:"lastName"`
}
