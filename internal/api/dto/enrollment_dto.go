package dto

import (
	"time"

	"github.com/ayto-digital/events-service/internal/domain"
)

// EnrollRequest payload for enrolling a person into an event. PersonID may
// be omitted by authenticated callers enrolling themselves.
type EnrollRequest struct {
	PersonID string `json:"person_id"`
}

// EnrollmentResponse is the outward shape of an enrollment record.
type EnrollmentResponse struct {
	EventID    string    `json:"event_id"`
	PersonID   string    `json:"person_id"`
	EnrolledOn time.Time `json:"enrolled_on"`
}

// NewEnrollmentResponse maps a domain enrollment.
func NewEnrollmentResponse(enrollment *domain.Enrollment) EnrollmentResponse {
	return EnrollmentResponse{
		EventID:    enrollment.EventID,
		PersonID:   enrollment.PersonID,
		EnrolledOn: enrollment.EnrolledOn,
	}
}
