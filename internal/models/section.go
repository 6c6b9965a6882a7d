package models

import "time"

// EnrollmentStatusActive is the status stamped on (re)activated enrollments.
const EnrollmentStatusActive = "active"

// Section represents a class section advised by one teacher.
type Section struct {
	ID         string     `db:"id" json:"id"`
	Name       string     `db:"name" json:"name"`
	GradeLevel string     `db:"grade_level" json:"gradeLevel"`
	SchoolYear string     `db:"school_year" json:"schoolYear"`
	AdviserID  string     `db:"adviser_id" json:"adviserId"`
	Active     bool       `db:"active" json:"active"`
	CreatedAt  time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updatedAt"`
	DeletedAt  *time.Time `db:"deleted_at" json:"deletedAt,omitempty"`
}

// SectionSummary is the list view: section plus adviser and headcount.
type SectionSummary struct {
	Section
	Adviser      TeacherRef `json:"adviser"`
	StudentCount int        `db:"student_count" json:"studentCount"`
}

// SectionDetail is the composite read-back: adviser, subject offerings
// and enrollments. Empty relations serialize as empty arrays.
type SectionDetail struct {
	Section
	Adviser  TeacherRef          `json:"adviser"`
	Subjects []SubjectOffering   `json:"subjects"`
	Students []SectionEnrollment `json:"students"`
}

// SectionSubject is a subject offered in a section, taught by a teacher.
type SectionSubject struct {
	ID        string     `db:"id" json:"id"`
	SectionID string     `db:"section_id" json:"sectionId"`
	SubjectID string     `db:"subject_id" json:"subjectId"`
	TeacherID string     `db:"teacher_id" json:"teacherId"`
	Schedule  *string    `db:"schedule" json:"schedule,omitempty"`
	Room      *string    `db:"room" json:"room,omitempty"`
	Active    bool       `db:"active" json:"active"`
	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time  `db:"updated_at" json:"updatedAt"`
	DeletedAt *time.Time `db:"deleted_at" json:"deletedAt,omitempty"`
}

// SubjectOffering is the joined view of a section_subjects row.
type SubjectOffering struct {
	ID       string     `json:"id"`
	Subject  SubjectRef `json:"subject"`
	Teacher  TeacherRef `json:"teacher"`
	Schedule *string    `json:"schedule,omitempty"`
	Room     *string    `json:"room,omitempty"`
}

// SectionStudent is an enrollment of a student in a section.
type SectionStudent struct {
	ID             string     `db:"id" json:"id"`
	SectionID      string     `db:"section_id" json:"sectionId"`
	StudentID      string     `db:"student_id" json:"studentId"`
	EnrollmentDate time.Time  `db:"enrollment_date" json:"enrollmentDate"`
	Status         string     `db:"status" json:"status"`
	Active         bool       `db:"active" json:"active"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updatedAt"`
	DeletedAt      *time.Time `db:"deleted_at" json:"deletedAt,omitempty"`
}

// SectionEnrollment is the joined view of a section_students row.
type SectionEnrollment struct {
	ID             string     `json:"id"`
	Student        StudentRef `json:"student"`
	EnrollmentDate time.Time  `json:"enrollmentDate"`
	Status         string     `json:"status"`
}

// SectionFilter defines filter criteria for listing sections.
type SectionFilter struct {
	Search     string
	GradeLevel string
	SchoolYear string
	Page       int
	Limit      int
}
