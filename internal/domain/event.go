package domain

import "time"

// EventState enumerates lifecycle states for municipal events.
type EventState string

const (
	EventStatePending    EventState = "PENDING"
	EventStateConfirmed  EventState = "CONFIRMED"
	EventStateInProgress EventState = "IN_PROGRESS"
	EventStateFinished   EventState = "FINISHED"
	EventStateCancelled  EventState = "CANCELLED"
)

// IsValid reports whether the state belongs to the closed enumeration.
func (s EventState) IsValid() bool {
	switch s {
	case EventStatePending, EventStateConfirmed, EventStateInProgress, EventStateFinished, EventStateCancelled:
		return true
	}
	return false
}

// IsEnrollmentAdmissible is the single source of truth for which states
// accept new enrollments. Review any new state against this function.
func IsEnrollmentAdmissible(state EventState) bool {
	return state == EventStateConfirmed || state == EventStateInProgress
}

// Event is the aggregate for municipal events.
//
// Capacity is nil for events with unlimited admission; otherwise it bounds
// the total number of enrollments the event accepts.
type Event struct {
	ID          string
	Title       string
	Description string
	Location    string
	State       EventState
	Capacity    *int32
	StartsAt    time.Time
	EndsAt      time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Capacitated reports whether admission to the event is bounded.
func (e *Event) Capacitated() bool {
	return e.Capacity != nil
}
