package repository

import "errors"

// Sentinel errors for referenced rows that do not resolve to an active
// record. Transactional workflows return these so services can map them
// to 404 responses after the rollback has happened.
var (
	ErrSectionNotFound = errors.New("section not found")
	ErrAdviserNotFound = errors.New("adviser not found")
	ErrTeacherNotFound = errors.New("teacher not found")
	ErrSubjectNotFound = errors.New("one or more subjects not found")
	ErrStudentNotFound = errors.New("one or more students not found")
)
