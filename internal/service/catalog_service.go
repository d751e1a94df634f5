package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ayto-digital/events-service/internal/domain"
	"github.com/ayto-digital/events-service/internal/events"
	"github.com/ayto-digital/events-service/internal/persistence"
	"github.com/ayto-digital/events-service/internal/repository"
	"github.com/ayto-digital/events-service/pkg/util"
)

const enrolledCountTTL = 10 * time.Second

// CatalogService owns event records and their lifecycle state. The
// enrollment workflow reads state and capacity through it.
type CatalogService struct {
	events     repository.EventRepository
	ledger     repository.EnrollmentLedger
	cache      *persistence.Redis
	dispatcher events.Dispatcher
}

// CatalogDependencies bundles repositories for the catalog service.
type CatalogDependencies struct {
	EventRepo  repository.EventRepository
	Ledger     repository.EnrollmentLedger
	Cache      *persistence.Redis
	Dispatcher events.Dispatcher
}

// NewCatalogService constructs the service.
func NewCatalogService(deps CatalogDependencies) *CatalogService {
	return &CatalogService{
		events:     deps.EventRepo,
		ledger:     deps.Ledger,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
	}
}

// EventCreateInput describes event creation payload.
type EventCreateInput struct {
	Title       string
	Description string
	Location    string
	Capacity    *int32
	StartsAt    time.Time
	EndsAt      time.Time
}

// CreateEvent creates an event in PENDING state.
func (s *CatalogService) CreateEvent(ctx context.Context, input EventCreateInput) (*domain.Event, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, util.NewValidationError("title is required", "title")
	}
	if input.Capacity != nil && *input.Capacity <= 0 {
		return nil, util.NewValidationError("capacity must be a positive number", "capacity")
	}
	if !input.EndsAt.IsZero() && !input.EndsAt.After(input.StartsAt) {
		return nil, util.NewValidationError("ends_at must be after starts_at", "ends_at")
	}

	event := &domain.Event{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Location:    strings.TrimSpace(input.Location),
		State:       domain.EventStatePending,
		Capacity:    input.Capacity,
		StartsAt:    input.StartsAt,
		EndsAt:      input.EndsAt,
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, util.NewInternalError(err)
	}
	return event, nil
}

// GetEvent fetches an event by id.
func (s *CatalogService) GetEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, util.NewNotFound("event", nil)
	}
	if err != nil {
		return nil, util.NewInternalError(err)
	}
	return event, nil
}

// ListEvents returns a page of events, optionally filtered by state.
func (s *CatalogService) ListEvents(ctx context.Context, states []domain.EventState, limit, offset int) ([]domain.Event, error) {
	for _, state := range states {
		if !state.IsValid() {
			return nil, util.NewValidationError("unknown event state", "state")
		}
	}
	listed, err := s.events.List(ctx, states, limit, offset)
	if err != nil {
		return nil, util.NewInternalError(err)
	}
	return listed, nil
}

// UpdateEventState moves an event to a new lifecycle state.
func (s *CatalogService) UpdateEventState(ctx context.Context, eventID string, newState domain.EventState) (*domain.Event, error) {
	if !newState.IsValid() {
		return nil, util.NewValidationError("unknown event state", "state")
	}

	current, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if current.State == newState {
		return current, nil
	}

	updated, err := s.events.UpdateState(ctx, eventID, newState)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, util.NewNotFound("event", nil)
	}
	if err != nil {
		return nil, util.NewInternalError(err)
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventStateChanged,
			Timestamp: time.Now(),
			Payload: events.StateChangedPayload{
				EventID:  updated.ID,
				OldState: current.State,
				NewState: updated.State,
			},
		})
	}
	return updated, nil
}

// RemainingCapacity reports the open slots for a capacitated event, or nil
// for events with unlimited admission. The value is a snapshot; the ledger
// re-checks under lock when enrolling.
func (s *CatalogService) RemainingCapacity(ctx context.Context, eventID string) (*int32, error) {
	event, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !event.Capacitated() {
		return nil, nil
	}

	cacheKey := "events:" + eventID + ":enrolled"
	enrolled, hit := s.cache.GetInt64(ctx, cacheKey)
	if !hit {
		var err error
		enrolled, err = s.ledger.CountByEvent(ctx, eventID)
		if err != nil {
			return nil, util.NewInternalError(err)
		}
		s.cache.SetInt64(ctx, cacheKey, enrolled, enrolledCountTTL)
	}
	remaining := *event.Capacity - int32(enrolled)
	if remaining < 0 {
		remaining = 0
	}
	return &remaining, nil
}
