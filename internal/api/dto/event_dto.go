package dto

import (
	"time"

	"github.com/ayto-digital/events-service/internal/domain"
)

// EventCreateRequest payload for event creation.
type EventCreateRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Capacity    *int32    `json:"capacity"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
}

// EventStateUpdateRequest payload for lifecycle transitions.
type EventStateUpdateRequest struct {
	State string `json:"state"`
}

// EventResponse is the outward shape of an event record.
type EventResponse struct {
	ID                string            `json:"id"`
	Title             string            `json:"title"`
	Description       string            `json:"description,omitempty"`
	Location          string            `json:"location,omitempty"`
	State             domain.EventState `json:"state"`
	Capacity          *int32            `json:"capacity,omitempty"`
	RemainingCapacity *int32            `json:"remaining_capacity,omitempty"`
	StartsAt          time.Time         `json:"starts_at"`
	EndsAt            time.Time         `json:"ends_at"`
}

// NewEventResponse maps a domain event.
func NewEventResponse(event *domain.Event) EventResponse {
	return EventResponse{
		ID:          event.ID,
		Title:       event.Title,
		Description: event.Description,
		Location:    event.Location,
		State:       event.State,
		Capacity:    event.Capacity,
		StartsAt:    event.StartsAt,
		EndsAt:      event.EndsAt,
	}
}
