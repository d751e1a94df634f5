package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

// NewValidationError reports malformed or missing input, naming the field.
func NewValidationError(message, field string) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, map[string]any{"field": field})
}

// NewUniquenessError reports a registration conflicting with an existing
// record on the named attribute.
func NewUniquenessError(attribute string) error {
	return NewDomainError("UNIQUENESS_CONFLICT",
		fmt.Sprintf("%s already in use", attribute),
		http.StatusConflict,
		map[string]any{"attribute": attribute})
}

// NewStateError reports an event outside an enrollment-admissible state.
func NewStateError(state string) error {
	return NewDomainError("EVENT_NOT_OPEN", "event not open for enrollment", http.StatusConflict,
		map[string]any{"state": state})
}

// NewCapacityError reports an event with no remaining capacity.
func NewCapacityError() error {
	return NewDomainError("CAPACITY_EXHAUSTED", "no capacity available", http.StatusConflict, nil)
}

// NewDuplicateError reports an already enrolled person.
func NewDuplicateError() error {
	return NewDomainError("ALREADY_ENROLLED", "person already enrolled in event", http.StatusConflict, nil)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError. Storage faults and
// anything else unrecognized map to INTERNAL_ERROR; they are never softened
// into client-correctable outcomes.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) {
		if de, ok := NewNotFound("resource", nil).(*DomainError); ok {
			return de
		}
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}
