package events

import (
	"time"

	"github.com/ayto-digital/events-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventPersonRegistered  EventType = "person_registered"
	EventEnrollmentCreated EventType = "enrollment_created"
	EventStateChanged      EventType = "event_state_changed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// PersonRegisteredPayload payload.
type PersonRegisteredPayload struct {
	PersonID   string `json:"person_id"`
	Identifier int64  `json:"identifier"`
	Simplified bool   `json:"simplified"`
}

// EnrollmentCreatedPayload payload.
type EnrollmentCreatedPayload struct {
	EventID    string    `json:"event_id"`
	PersonID   string    `json:"person_id"`
	EnrolledOn time.Time `json:"enrolled_on"`
}

// StateChangedPayload payload.
type StateChangedPayload struct {
	EventID  string            `json:"event_id"`
	OldState domain.EventState `json:"old_state"`
	NewState domain.EventState `json:"new_state"`
}
