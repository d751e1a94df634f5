package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ayto-digital/events-service/internal/domain"
)

// In-memory implementations back the service tests and honor the same
// contracts as the Postgres ones: pgx.ErrNoRows for missing rows, unique
// violations by attribute, and enrollment creation serialized per ledger.

// InMemoryPersonRepository keeps people in a map guarded by a mutex.
type InMemoryPersonRepository struct {
	mu     sync.RWMutex
	people map[string]domain.Person
}

func NewInMemoryPersonRepository() *InMemoryPersonRepository {
	return &InMemoryPersonRepository{people: make(map[string]domain.Person)}
}

func (r *InMemoryPersonRepository) Create(_ context.Context, person *domain.Person) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.people {
		if existing.Identifier == person.Identifier {
			return &UniqueViolationError{Attribute: "identifier"}
		}
		if person.Handle != nil && existing.Handle != nil && *existing.Handle == *person.Handle {
			return &UniqueViolationError{Attribute: "handle"}
		}
		if person.Email != nil && existing.Email != nil && *existing.Email == *person.Email {
			return &UniqueViolationError{Attribute: "email"}
		}
	}

	now := time.Now()
	person.ID = uuid.NewString()
	person.CreatedAt = now
	person.UpdatedAt = now
	r.people[person.ID] = *person
	return nil
}

func (r *InMemoryPersonRepository) Update(_ context.Context, person *domain.Person) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.people[person.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	for id, existing := range r.people {
		if id == person.ID {
			continue
		}
		if person.Email != nil && existing.Email != nil && *existing.Email == *person.Email {
			return &UniqueViolationError{Attribute: "email"}
		}
	}
	stored.Name = person.Name
	stored.FamilyName = person.FamilyName
	stored.Email = person.Email
	stored.Phone = person.Phone
	stored.CredentialHash = person.CredentialHash
	stored.UpdatedAt = time.Now()
	r.people[person.ID] = stored
	*person = stored
	return nil
}

func (r *InMemoryPersonRepository) GetByID(_ context.Context, id string) (*domain.Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if person, ok := r.people[id]; ok {
		return &person, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *InMemoryPersonRepository) GetByIdentifier(_ context.Context, identifier int64) (*domain.Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, person := range r.people {
		if person.Identifier == identifier {
			p := person
			return &p, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *InMemoryPersonRepository) GetByHandle(_ context.Context, handle string) (*domain.Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, person := range r.people {
		if person.Handle != nil && *person.Handle == handle {
			p := person
			return &p, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *InMemoryPersonRepository) GetByEmail(_ context.Context, email string) (*domain.Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, person := range r.people {
		if person.Email != nil && *person.Email == email {
			p := person
			return &p, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *InMemoryPersonRepository) List(_ context.Context, limit, offset int) ([]domain.Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	people := make([]domain.Person, 0, len(r.people))
	for _, person := range r.people {
		people = append(people, person)
	}
	sort.Slice(people, func(i, j int) bool {
		if people[i].FamilyName != people[j].FamilyName {
			return people[i].FamilyName < people[j].FamilyName
		}
		return people[i].Name < people[j].Name
	})
	return paginate(people, limit, offset), nil
}

// InMemoryEventRepository keeps events in a map guarded by a mutex.
type InMemoryEventRepository struct {
	mu     sync.RWMutex
	events map[string]domain.Event
}

func NewInMemoryEventRepository() *InMemoryEventRepository {
	return &InMemoryEventRepository{events: make(map[string]domain.Event)}
}

func (r *InMemoryEventRepository) Create(_ context.Context, event *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	event.ID = uuid.NewString()
	event.CreatedAt = now
	event.UpdatedAt = now
	r.events[event.ID] = *event
	return nil
}

func (r *InMemoryEventRepository) GetByID(_ context.Context, id string) (*domain.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if event, ok := r.events[id]; ok {
		return &event, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *InMemoryEventRepository) List(_ context.Context, states []domain.EventState, limit, offset int) ([]domain.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := []domain.Event{}
	for _, event := range r.events {
		if len(states) > 0 && !containsState(states, event.State) {
			continue
		}
		events = append(events, event)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].StartsAt.Before(events[j].StartsAt) })
	return paginate(events, limit, offset), nil
}

func (r *InMemoryEventRepository) UpdateState(_ context.Context, id string, state domain.EventState) (*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	event, ok := r.events[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	event.State = state
	event.UpdatedAt = time.Now()
	r.events[id] = event
	return &event, nil
}

type enrollmentKey struct {
	eventID  string
	personID string
}

// InMemoryEnrollmentLedger serializes enrollment creation with a single
// mutex held across the state, capacity and duplicate checks and the write,
// mirroring the event-row lock the Postgres ledger takes.
type InMemoryEnrollmentLedger struct {
	mu          sync.Mutex
	events      *InMemoryEventRepository
	enrollments map[enrollmentKey]domain.Enrollment
}

func NewInMemoryEnrollmentLedger(events *InMemoryEventRepository) *InMemoryEnrollmentLedger {
	return &InMemoryEnrollmentLedger{
		events:      events,
		enrollments: make(map[enrollmentKey]domain.Enrollment),
	}
}

func (r *InMemoryEnrollmentLedger) Create(ctx context.Context, enrollment *domain.Enrollment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	event, err := r.events.GetByID(ctx, enrollment.EventID)
	if err != nil {
		return err
	}
	if !domain.IsEnrollmentAdmissible(event.State) {
		return ErrEventNotOpen
	}
	key := enrollmentKey{eventID: enrollment.EventID, personID: enrollment.PersonID}
	if _, ok := r.enrollments[key]; ok {
		return ErrAlreadyEnrolled
	}
	if event.Capacity != nil && r.countLocked(enrollment.EventID) >= int64(*event.Capacity) {
		return ErrCapacityExhausted
	}
	enrollment.CreatedAt = time.Now()
	r.enrollments[key] = *enrollment
	return nil
}

func (r *InMemoryEnrollmentLedger) Exists(_ context.Context, eventID, personID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.enrollments[enrollmentKey{eventID: eventID, personID: personID}]
	return ok, nil
}

func (r *InMemoryEnrollmentLedger) CountByEvent(_ context.Context, eventID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.countLocked(eventID), nil
}

func (r *InMemoryEnrollmentLedger) ListByEvent(_ context.Context, eventID string, limit, offset int) ([]domain.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	enrollments := []domain.Enrollment{}
	for key, enrollment := range r.enrollments {
		if key.eventID == eventID {
			enrollments = append(enrollments, enrollment)
		}
	}
	sort.Slice(enrollments, func(i, j int) bool {
		return enrollments[i].CreatedAt.Before(enrollments[j].CreatedAt)
	})
	return paginate(enrollments, limit, offset), nil
}

func (r *InMemoryEnrollmentLedger) countLocked(eventID string) int64 {
	var count int64
	for key := range r.enrollments {
		if key.eventID == eventID {
			count++
		}
	}
	return count
}

func containsState(states []domain.EventState, state domain.EventState) bool {
	for _, s := range states {
		if s == state {
			return true
		}
	}
	return false
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
