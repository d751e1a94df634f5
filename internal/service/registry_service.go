package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ayto-digital/events-service/internal/auth"
	"github.com/ayto-digital/events-service/internal/config"
	"github.com/ayto-digital/events-service/internal/domain"
	"github.com/ayto-digital/events-service/internal/events"
	"github.com/ayto-digital/events-service/internal/repository"
	"github.com/ayto-digital/events-service/pkg/util"
)

// RegistryService is the authoritative source of whether a candidate
// registration is admissible. It enforces field validation and uniqueness
// for the people directory and authenticates people who hold system access.
type RegistryService struct {
	people     repository.PersonRepository
	dispatcher events.Dispatcher
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// RegistryDependencies encapsulates requirements for the registry service.
type RegistryDependencies struct {
	PersonRepo repository.PersonRepository
	Dispatcher events.Dispatcher
}

// NewRegistryService builds the service.
func NewRegistryService(cfg config.Config, deps RegistryDependencies) *RegistryService {
	return &RegistryService{
		people:     deps.PersonRepo,
		dispatcher: deps.Dispatcher,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// PersonRegisterInput describes a full registration candidate.
type PersonRegisterInput struct {
	Identifier int64
	Name       string
	FamilyName string
	Email      string
	Handle     string
	Credential string
	Phone      string
}

// ParticipantRegisterInput describes a simplified registration candidate,
// for participants without system access.
type ParticipantRegisterInput struct {
	Identifier int64
	Name       string
	FamilyName string
	Email      string
	Phone      string
}

// ProfileUpdateInput describes a profile mutation.
type ProfileUpdateInput struct {
	Name       string
	FamilyName string
	Email      string
	Phone      string
}

// RegisterPerson admits a new person with full registration. Checks run in
// a fixed order so the reported failure is deterministic: field presence,
// then formats, then uniqueness (identifier, handle, email). Nothing is
// persisted unless every check passes.
func (s *RegistryService) RegisterPerson(ctx context.Context, input PersonRegisterInput) (*domain.Person, error) {
	presence := []struct {
		field string
		value string
	}{
		{"name", input.Name},
		{"family_name", input.FamilyName},
		{"email", input.Email},
		{"handle", input.Handle},
		{"credential", input.Credential},
		{"phone", input.Phone},
	}
	for _, p := range presence {
		if strings.TrimSpace(p.value) == "" {
			return nil, util.NewValidationError(p.field+" is required", p.field)
		}
	}

	email := strings.TrimSpace(input.Email)
	if !validEmail(email) {
		return nil, util.NewValidationError("email is malformed", "email")
	}
	if input.Identifier <= 0 {
		return nil, util.NewValidationError("identifier must be a positive number", "identifier")
	}

	handle := strings.TrimSpace(input.Handle)
	if err := s.ensureIdentifierUnused(ctx, input.Identifier); err != nil {
		return nil, err
	}
	if _, err := s.people.GetByHandle(ctx, handle); err == nil {
		return nil, util.NewUniquenessError("handle")
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, util.NewInternalError(err)
	}
	if _, err := s.people.GetByEmail(ctx, email); err == nil {
		return nil, util.NewUniquenessError("email")
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, util.NewInternalError(err)
	}

	// The credential is hashed untrimmed; whitespace a person chooses in
	// their secret is preserved.
	hash, err := auth.HashCredential(input.Credential, s.bcryptCost)
	if err != nil {
		return nil, util.NewInternalError(err)
	}

	person := &domain.Person{
		Identifier:     input.Identifier,
		Name:           strings.TrimSpace(input.Name),
		FamilyName:     strings.TrimSpace(input.FamilyName),
		Email:          &email,
		Handle:         &handle,
		CredentialHash: &hash,
		Phone:          strings.TrimSpace(input.Phone),
	}
	if err := s.createPerson(ctx, person, false); err != nil {
		return nil, err
	}
	return person, nil
}

// RegisterParticipant admits a person with simplified registration: only
// name, family name and a positive identifier are required, and uniqueness
// is checked for the identifier alone. The email, when present, is trimmed
// but not format-validated.
func (s *RegistryService) RegisterParticipant(ctx context.Context, input ParticipantRegisterInput) (*domain.Person, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, util.NewValidationError("name is required", "name")
	}
	if strings.TrimSpace(input.FamilyName) == "" {
		return nil, util.NewValidationError("family_name is required", "family_name")
	}
	if input.Identifier <= 0 {
		return nil, util.NewValidationError("identifier must be a positive number", "identifier")
	}
	if err := s.ensureIdentifierUnused(ctx, input.Identifier); err != nil {
		return nil, err
	}

	person := &domain.Person{
		Identifier: input.Identifier,
		Name:       strings.TrimSpace(input.Name),
		FamilyName: strings.TrimSpace(input.FamilyName),
		Phone:      strings.TrimSpace(input.Phone),
	}
	if email := strings.TrimSpace(input.Email); email != "" {
		person.Email = &email
	}
	if err := s.createPerson(ctx, person, true); err != nil {
		return nil, err
	}
	return person, nil
}

// Authenticate looks up the person whose handle and credential match. The
// handle is trimmed before lookup; the credential is compared exactly as
// supplied. A miss is an explicit unauthorized outcome, never a fault.
func (s *RegistryService) Authenticate(ctx context.Context, handle, credential string) (*domain.Person, string, time.Time, error) {
	trimmed := strings.TrimSpace(handle)
	if trimmed == "" {
		return nil, "", time.Time{}, util.NewValidationError("handle is required", "handle")
	}
	if strings.TrimSpace(credential) == "" {
		return nil, "", time.Time{}, util.NewValidationError("credential is required", "credential")
	}

	person, err := s.people.GetByHandle(ctx, trimmed)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, "", time.Time{}, util.NewUnauthorized("invalid credentials")
	}
	if err != nil {
		return nil, "", time.Time{}, util.NewInternalError(err)
	}
	if !person.HasAccess() {
		return nil, "", time.Time{}, util.NewUnauthorized("invalid credentials")
	}
	if err := auth.CompareCredential(*person.CredentialHash, credential); err != nil {
		return nil, "", time.Time{}, util.NewUnauthorized("invalid credentials")
	}

	token, exp, err := s.tokenMgr.GenerateToken(person.ID, trimmed)
	if err != nil {
		return nil, "", time.Time{}, util.NewInternalError(err)
	}
	return person, token, exp, nil
}

// UpdateProfile mutates a person's profile fields, applying the same email
// format and uniqueness rules as full registration when an email is set.
func (s *RegistryService) UpdateProfile(ctx context.Context, personID string, input ProfileUpdateInput) (*domain.Person, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, util.NewValidationError("name is required", "name")
	}
	if strings.TrimSpace(input.FamilyName) == "" {
		return nil, util.NewValidationError("family_name is required", "family_name")
	}

	person, err := s.GetPerson(ctx, personID)
	if err != nil {
		return nil, err
	}

	if email := strings.TrimSpace(input.Email); email != "" {
		if !validEmail(email) {
			return nil, util.NewValidationError("email is malformed", "email")
		}
		if existing, err := s.people.GetByEmail(ctx, email); err == nil {
			if existing.ID != person.ID {
				return nil, util.NewUniquenessError("email")
			}
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewInternalError(err)
		}
		person.Email = &email
	} else {
		person.Email = nil
	}

	person.Name = strings.TrimSpace(input.Name)
	person.FamilyName = strings.TrimSpace(input.FamilyName)
	person.Phone = strings.TrimSpace(input.Phone)

	if err := s.people.Update(ctx, person); err != nil {
		var uniqueErr *repository.UniqueViolationError
		if errors.As(err, &uniqueErr) {
			return nil, util.NewUniquenessError(uniqueErr.Attribute)
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("person", nil)
		}
		return nil, util.NewInternalError(err)
	}
	return person, nil
}

// GetPerson fetches a person by id.
func (s *RegistryService) GetPerson(ctx context.Context, personID string) (*domain.Person, error) {
	person, err := s.people.GetByID(ctx, personID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, util.NewNotFound("person", nil)
	}
	if err != nil {
		return nil, util.NewInternalError(err)
	}
	return person, nil
}

// ListPeople returns a page of the directory.
func (s *RegistryService) ListPeople(ctx context.Context, limit, offset int) ([]domain.Person, error) {
	people, err := s.people.List(ctx, limit, offset)
	if err != nil {
		return nil, util.NewInternalError(err)
	}
	return people, nil
}

func (s *RegistryService) ensureIdentifierUnused(ctx context.Context, identifier int64) error {
	if _, err := s.people.GetByIdentifier(ctx, identifier); err == nil {
		return util.NewUniquenessError("identifier")
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return util.NewInternalError(err)
	}
	return nil
}

// createPerson persists the candidate; the storage unique constraints are
// the final backstop when a concurrent registration wins the race between
// the pre-checks above and this write.
func (s *RegistryService) createPerson(ctx context.Context, person *domain.Person, simplified bool) error {
	if err := s.people.Create(ctx, person); err != nil {
		var uniqueErr *repository.UniqueViolationError
		if errors.As(err, &uniqueErr) {
			return util.NewUniquenessError(uniqueErr.Attribute)
		}
		return util.NewInternalError(err)
	}
	s.publish(ctx, events.Event{
		Type: events.EventPersonRegistered,
		Payload: events.PersonRegisteredPayload{
			PersonID:   person.ID,
			Identifier: person.Identifier,
			Simplified: simplified,
		},
	})
	return nil
}

func (s *RegistryService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now()
	_ = s.dispatcher.Publish(ctx, event)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *RegistryService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// validEmail accepts local-part@domain: at least one '@' with a non-empty
// local part and trailing domain.
func validEmail(email string) bool {
	at := strings.LastIndex(email, "@")
	return at > 0 && at < len(email)-1
}
