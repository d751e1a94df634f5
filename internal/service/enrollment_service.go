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
	"github.com/ayto-digital/events-service/internal/repository"
	"github.com/ayto-digital/events-service/pkg/util"
)

// EnrollmentService orchestrates admission of a person into an event:
// argument validation, event state gate, capacity gate, duplicate guard,
// then a single serialized write against the ledger.
type EnrollmentService struct {
	eventsRepo repository.EventRepository
	people     repository.PersonRepository
	ledger     repository.EnrollmentLedger
	dispatcher events.Dispatcher
}

// EnrollmentDependencies bundles repositories for the enrollment service.
type EnrollmentDependencies struct {
	EventRepo  repository.EventRepository
	PersonRepo repository.PersonRepository
	Ledger     repository.EnrollmentLedger
	Dispatcher events.Dispatcher
}

// NewEnrollmentService constructs the service.
func NewEnrollmentService(deps EnrollmentDependencies) *EnrollmentService {
	return &EnrollmentService{
		eventsRepo: deps.EventRepo,
		people:     deps.PersonRepo,
		ledger:     deps.Ledger,
		dispatcher: deps.Dispatcher,
	}
}

// Enroll admits the person into the event. Every rejection is terminal for
// this call and reports a distinct, user-displayable reason; no partial
// enrollment is ever visible. The ledger serializes the duplicate and
// capacity checks with the write, so concurrent calls cannot overdraw
// capacity or create a second record for the same pair.
func (s *EnrollmentService) Enroll(ctx context.Context, eventID, personID string) (*domain.Enrollment, error) {
	if strings.TrimSpace(eventID) == "" {
		return nil, util.NewValidationError("event is required", "event")
	}
	if strings.TrimSpace(personID) == "" {
		return nil, util.NewValidationError("person is required", "person")
	}

	event, err := s.eventsRepo.GetByID(ctx, eventID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, util.NewNotFound("event", nil)
	}
	if err != nil {
		return nil, util.NewInternalError(err)
	}
	if !domain.IsEnrollmentAdmissible(event.State) {
		return nil, util.NewStateError(string(event.State))
	}

	if _, err := s.people.GetByID(ctx, personID); errors.Is(err, pgx.ErrNoRows) {
		return nil, util.NewNotFound("person", nil)
	} else if err != nil {
		return nil, util.NewInternalError(err)
	}

	enrollment := &domain.Enrollment{
		EventID:    event.ID,
		PersonID:   personID,
		EnrolledOn: time.Now(),
	}
	switch err := s.ledger.Create(ctx, enrollment); {
	case err == nil:
	case errors.Is(err, repository.ErrEventNotOpen):
		return nil, util.NewStateError(string(event.State))
	case errors.Is(err, repository.ErrAlreadyEnrolled):
		return nil, util.NewDuplicateError()
	case errors.Is(err, repository.ErrCapacityExhausted):
		return nil, util.NewCapacityError()
	case errors.Is(err, pgx.ErrNoRows):
		return nil, util.NewNotFound("event", nil)
	default:
		return nil, util.NewInternalError(err)
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventEnrollmentCreated,
			Timestamp: time.Now(),
			Payload: events.EnrollmentCreatedPayload{
				EventID:    enrollment.EventID,
				PersonID:   enrollment.PersonID,
				EnrolledOn: enrollment.EnrolledOn,
			},
		})
	}
	return enrollment, nil
}

// IsEnrolled reports whether an enrollment exists for the pair. Pure read;
// callers may use it as a pre-check, but Enroll carries its own guard.
func (s *EnrollmentService) IsEnrolled(ctx context.Context, eventID, personID string) (bool, error) {
	if strings.TrimSpace(eventID) == "" {
		return false, util.NewValidationError("event is required", "event")
	}
	if strings.TrimSpace(personID) == "" {
		return false, util.NewValidationError("person is required", "person")
	}
	enrolled, err := s.ledger.Exists(ctx, eventID, personID)
	if err != nil {
		return false, util.NewInternalError(err)
	}
	return enrolled, nil
}

// ListEnrollments returns the roster for an event.
func (s *EnrollmentService) ListEnrollments(ctx context.Context, eventID string, limit, offset int) ([]domain.Enrollment, error) {
	if _, err := s.eventsRepo.GetByID(ctx, eventID); errors.Is(err, pgx.ErrNoRows) {
		return nil, util.NewNotFound("event", nil)
	} else if err != nil {
		return nil, util.NewInternalError(err)
	}
	enrollments, err := s.ledger.ListByEvent(ctx, eventID, limit, offset)
	if err != nil {
		return nil, util.NewInternalError(err)
	}
	return enrollments, nil
}
