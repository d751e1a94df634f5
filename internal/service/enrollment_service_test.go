package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/ayto-digital/events-service/internal/domain"
	"github.com/ayto-digital/events-service/internal/repository"
	"github.com/ayto-digital/events-service/pkg/util"
)

type EnrollmentSuite struct {
	suite.Suite
	ctx         context.Context
	people      *repository.InMemoryPersonRepository
	events      *repository.InMemoryEventRepository
	ledger      *repository.InMemoryEnrollmentLedger
	enrollments *EnrollmentService
}

func (s *EnrollmentSuite) SetupTest() {
	s.ctx = context.Background()
	s.people = repository.NewInMemoryPersonRepository()
	s.events = repository.NewInMemoryEventRepository()
	s.ledger = repository.NewInMemoryEnrollmentLedger(s.events)
	s.enrollments = NewEnrollmentService(EnrollmentDependencies{
		EventRepo:  s.events,
		PersonRepo: s.people,
		Ledger:     s.ledger,
	})
}

func TestEnrollmentSuite(t *testing.T) {
	suite.Run(t, new(EnrollmentSuite))
}

func (s *EnrollmentSuite) newEvent(state domain.EventState, capacity *int32) *domain.Event {
	event := &domain.Event{
		Title:    "Feria del Libro",
		State:    state,
		Capacity: capacity,
		StartsAt: time.Now().Add(24 * time.Hour),
		EndsAt:   time.Now().Add(26 * time.Hour),
	}
	s.Require().NoError(s.events.Create(s.ctx, event))
	return event
}

func (s *EnrollmentSuite) newPerson(identifier int64) *domain.Person {
	person := &domain.Person{
		Identifier: identifier,
		Name:       "Persona",
		FamilyName: fmt.Sprintf("Numero%d", identifier),
	}
	s.Require().NoError(s.people.Create(s.ctx, person))
	return person
}

func capacityOf(n int32) *int32 { return &n }

func (s *EnrollmentSuite) TestEnroll() {
	s.Run("admits into confirmed events", func() {
		event := s.newEvent(domain.EventStateConfirmed, nil)
		person := s.newPerson(100)

		enrollment, err := s.enrollments.Enroll(s.ctx, event.ID, person.ID)
		s.Require().NoError(err)
		s.Equal(event.ID, enrollment.EventID)
		s.Equal(person.ID, enrollment.PersonID)
		s.False(enrollment.EnrolledOn.IsZero())

		enrolled, err := s.enrollments.IsEnrolled(s.ctx, event.ID, person.ID)
		s.Require().NoError(err)
		s.True(enrolled)
	})

	s.Run("admits into in-progress events", func() {
		event := s.newEvent(domain.EventStateInProgress, nil)
		person := s.newPerson(101)

		_, err := s.enrollments.Enroll(s.ctx, event.ID, person.ID)
		s.Require().NoError(err)
	})

	s.Run("rejects non-admissible states regardless of capacity", func() {
		person := s.newPerson(102)
		for _, state := range []domain.EventState{domain.EventStatePending, domain.EventStateFinished, domain.EventStateCancelled} {
			event := s.newEvent(state, capacityOf(100))
			_, err := s.enrollments.Enroll(s.ctx, event.ID, person.ID)
			domainErr := requireDomainError(s.T(), err, "EVENT_NOT_OPEN")
			s.Equal(string(state), domainErr.Details["state"])

			enrolled, err := s.enrollments.IsEnrolled(s.ctx, event.ID, person.ID)
			s.Require().NoError(err)
			s.False(enrolled)
		}
	})

	s.Run("rejects a full event", func() {
		event := s.newEvent(domain.EventStateConfirmed, capacityOf(1))
		first := s.newPerson(103)
		second := s.newPerson(104)

		_, err := s.enrollments.Enroll(s.ctx, event.ID, first.ID)
		s.Require().NoError(err)

		_, err = s.enrollments.Enroll(s.ctx, event.ID, second.ID)
		requireDomainError(s.T(), err, "CAPACITY_EXHAUSTED")

		count, err := s.ledger.CountByEvent(s.ctx, event.ID)
		s.Require().NoError(err)
		s.EqualValues(1, count)
	})

	s.Run("events without capacity admit without limit", func() {
		event := s.newEvent(domain.EventStateConfirmed, nil)
		for i := int64(0); i < 10; i++ {
			person := s.newPerson(200 + i)
			_, err := s.enrollments.Enroll(s.ctx, event.ID, person.ID)
			s.Require().NoError(err)
		}
	})

	s.Run("rejects duplicate enrollment", func() {
		event := s.newEvent(domain.EventStateConfirmed, nil)
		person := s.newPerson(105)

		_, err := s.enrollments.Enroll(s.ctx, event.ID, person.ID)
		s.Require().NoError(err)
		_, err = s.enrollments.Enroll(s.ctx, event.ID, person.ID)
		requireDomainError(s.T(), err, "ALREADY_ENROLLED")

		count, err := s.ledger.CountByEvent(s.ctx, event.ID)
		s.Require().NoError(err)
		s.EqualValues(1, count)
	})

	s.Run("reports the duplicate even when the event is full", func() {
		event := s.newEvent(domain.EventStateConfirmed, capacityOf(1))
		person := s.newPerson(106)

		_, err := s.enrollments.Enroll(s.ctx, event.ID, person.ID)
		s.Require().NoError(err)
		_, err = s.enrollments.Enroll(s.ctx, event.ID, person.ID)
		requireDomainError(s.T(), err, "ALREADY_ENROLLED")
	})

	s.Run("names missing arguments", func() {
		domainErr := func(eventID, personID string) *util.DomainError {
			_, err := s.enrollments.Enroll(s.ctx, eventID, personID)
			return requireDomainError(s.T(), err, "VALIDATION_FAILED")
		}
		s.Equal("event", domainErr("", "p1").Details["field"])
		s.Equal("person", domainErr("e1", "  ").Details["field"])
	})

	s.Run("unknown event or person is not found", func() {
		event := s.newEvent(domain.EventStateConfirmed, nil)
		person := s.newPerson(107)

		_, err := s.enrollments.Enroll(s.ctx, "missing", person.ID)
		requireDomainError(s.T(), err, "NOT_FOUND")
		_, err = s.enrollments.Enroll(s.ctx, event.ID, "missing")
		requireDomainError(s.T(), err, "NOT_FOUND")
	})
}

func (s *EnrollmentSuite) TestIsEnrolledIdempotent() {
	event := s.newEvent(domain.EventStateConfirmed, nil)
	person := s.newPerson(300)

	for i := 0; i < 3; i++ {
		enrolled, err := s.enrollments.IsEnrolled(s.ctx, event.ID, person.ID)
		s.Require().NoError(err)
		s.False(enrolled)
	}

	_, err := s.enrollments.Enroll(s.ctx, event.ID, person.ID)
	s.Require().NoError(err)

	for i := 0; i < 3; i++ {
		enrolled, err := s.enrollments.IsEnrolled(s.ctx, event.ID, person.ID)
		s.Require().NoError(err)
		s.True(enrolled)
	}
}

func (s *EnrollmentSuite) TestListEnrollments() {
	event := s.newEvent(domain.EventStateConfirmed, nil)
	for i := int64(0); i < 3; i++ {
		person := s.newPerson(400 + i)
		_, err := s.enrollments.Enroll(s.ctx, event.ID, person.ID)
		s.Require().NoError(err)
	}

	roster, err := s.enrollments.ListEnrollments(s.ctx, event.ID, 100, 0)
	s.Require().NoError(err)
	s.Len(roster, 3)

	_, err = s.enrollments.ListEnrollments(s.ctx, "missing", 100, 0)
	requireDomainError(s.T(), err, "NOT_FOUND")
}

func (s *EnrollmentSuite) TestConcurrentEnrollmentRespectsCapacity() {
	const callers = 20
	const capacity = 5

	event := s.newEvent(domain.EventStateConfirmed, capacityOf(capacity))
	personIDs := make([]string, callers)
	for i := int64(0); i < callers; i++ {
		personIDs[i] = s.newPerson(500 + i).ID
	}

	results := make(chan error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(personID string) {
			defer wg.Done()
			_, err := s.enrollments.Enroll(s.ctx, event.ID, personID)
			results <- err
		}(personIDs[i])
	}
	wg.Wait()
	close(results)

	var succeeded, exhausted int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		default:
			requireDomainError(s.T(), err, "CAPACITY_EXHAUSTED")
			exhausted++
		}
	}
	s.Equal(capacity, succeeded)
	s.Equal(callers-capacity, exhausted)

	count, err := s.ledger.CountByEvent(s.ctx, event.ID)
	s.Require().NoError(err)
	s.EqualValues(capacity, count)
}

func (s *EnrollmentSuite) TestConcurrentDuplicateEnrollment() {
	const callers = 10

	event := s.newEvent(domain.EventStateConfirmed, nil)
	person := s.newPerson(600)

	results := make(chan error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.enrollments.Enroll(s.ctx, event.ID, person.ID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, duplicated int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		default:
			requireDomainError(s.T(), err, "ALREADY_ENROLLED")
			duplicated++
		}
	}
	s.Equal(1, succeeded)
	s.Equal(callers-1, duplicated)

	count, err := s.ledger.CountByEvent(s.ctx, event.ID)
	s.Require().NoError(err)
	s.EqualValues(1, count)
}

func (s *EnrollmentSuite) TestLastSlotContention() {
	event := s.newEvent(domain.EventStateConfirmed, capacityOf(1))
	first := s.newPerson(700)
	second := s.newPerson(701)

	results := make(chan error, 2)
	var wg sync.WaitGroup
	for _, personID := range []string{first.ID, second.ID} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := s.enrollments.Enroll(s.ctx, event.ID, id)
			results <- err
		}(personID)
	}
	wg.Wait()
	close(results)

	var succeeded int
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			requireDomainError(s.T(), err, "CAPACITY_EXHAUSTED")
		}
	}
	s.Equal(1, succeeded)
}
