package repository

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by the enrollment ledger's conditional insert.
var (
	ErrEventNotOpen      = errors.New("event not open for enrollment")
	ErrCapacityExhausted = errors.New("no capacity available")
	ErrAlreadyEnrolled   = errors.New("already enrolled")
)

// UniqueViolationError reports a storage-level uniqueness constraint
// violation, naming the conflicting person attribute.
type UniqueViolationError struct {
	Attribute string
}

func (e *UniqueViolationError) Error() string {
	return fmt.Sprintf("%s already in use", e.Attribute)
}

// personConstraintAttributes maps Postgres constraint names from the people
// table to the attribute reported back to callers.
var personConstraintAttributes = map[string]string{
	"people_identifier_key": "identifier",
	"people_handle_idx":     "handle",
	"people_email_idx":      "email",
}
