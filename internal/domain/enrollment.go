package domain

import "time"

// Enrollment records the admission of a person into an event. Its identity
// is the (event, person) pair; at most one enrollment exists per pair.
// Enrollments are created by the enrollment workflow and never mutated.
type Enrollment struct {
	EventID    string
	PersonID   string
	EnrolledOn time.Time
	CreatedAt  time.Time
}
