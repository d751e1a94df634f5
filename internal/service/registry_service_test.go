package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/ayto-digital/events-service/internal/auth"
	"github.com/ayto-digital/events-service/internal/config"
	"github.com/ayto-digital/events-service/internal/repository"
	"github.com/ayto-digital/events-service/pkg/util"
)

func testConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 5,
			BcryptCost:            4,
		},
	}
}

func fullInput() PersonRegisterInput {
	return PersonRegisterInput{
		Identifier: 12345678,
		Name:       "Ana",
		FamilyName: "Diaz",
		Email:      "ana@example.com",
		Handle:     "adiaz",
		Credential: "x",
		Phone:      "555-1234",
	}
}

type RegistrySuite struct {
	suite.Suite
	ctx      context.Context
	people   *repository.InMemoryPersonRepository
	registry *RegistryService
}

func (s *RegistrySuite) SetupTest() {
	s.ctx = context.Background()
	s.people = repository.NewInMemoryPersonRepository()
	s.registry = NewRegistryService(testConfig(), RegistryDependencies{PersonRepo: s.people})
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func requireDomainError(t *testing.T, err error, code string) *util.DomainError {
	t.Helper()
	var domainErr *util.DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, code, domainErr.Code)
	return domainErr
}

func (s *RegistrySuite) TestFullRegistration() {
	s.Run("persists and returns the trimmed record", func() {
		input := fullInput()
		input.Name = "  Ana "
		input.Email = " ana@example.com "
		input.Handle = " adiaz "

		person, err := s.registry.RegisterPerson(s.ctx, input)
		s.Require().NoError(err)
		s.NotEmpty(person.ID)
		s.Equal(int64(12345678), person.Identifier)
		s.Equal("Ana", person.Name)
		s.Equal("Diaz", person.FamilyName)
		s.Require().NotNil(person.Email)
		s.Equal("ana@example.com", *person.Email)
		s.Require().NotNil(person.Handle)
		s.Equal("adiaz", *person.Handle)
		s.Equal("555-1234", person.Phone)
		s.Require().NotNil(person.CredentialHash)
		s.NotEqual("x", *person.CredentialHash)

		stored, err := s.people.GetByIdentifier(s.ctx, 12345678)
		s.Require().NoError(err)
		s.Equal(person.ID, stored.ID)
	})

	s.Run("reports missing fields in a fixed order", func() {
		cases := []struct {
			field  string
			mutate func(*PersonRegisterInput)
		}{
			{"name", func(in *PersonRegisterInput) { in.Name = "   " }},
			{"family_name", func(in *PersonRegisterInput) { in.FamilyName = "" }},
			{"email", func(in *PersonRegisterInput) { in.Email = "" }},
			{"handle", func(in *PersonRegisterInput) { in.Handle = " " }},
			{"credential", func(in *PersonRegisterInput) { in.Credential = "" }},
			{"phone", func(in *PersonRegisterInput) { in.Phone = "" }},
		}
		for _, tc := range cases {
			input := fullInput()
			tc.mutate(&input)
			_, err := s.registry.RegisterPerson(s.ctx, input)
			domainErr := requireDomainError(s.T(), err, "VALIDATION_FAILED")
			s.Equal(tc.field, domainErr.Details["field"], tc.field)
		}
	})

	s.Run("presence failures outrank format and uniqueness failures", func() {
		input := fullInput()
		input.Name = ""
		input.Email = "not-an-email"
		input.Identifier = -1

		_, err := s.registry.RegisterPerson(s.ctx, input)
		domainErr := requireDomainError(s.T(), err, "VALIDATION_FAILED")
		s.Equal("name", domainErr.Details["field"])
	})

	s.Run("rejects malformed emails", func() {
		for _, email := range []string{"not-an-email", "@example.com", "ana@"} {
			input := fullInput()
			input.Email = email
			_, err := s.registry.RegisterPerson(s.ctx, input)
			domainErr := requireDomainError(s.T(), err, "VALIDATION_FAILED")
			s.Equal("email", domainErr.Details["field"], email)
		}
	})

	s.Run("rejects non-positive identifiers", func() {
		for _, identifier := range []int64{0, -5} {
			input := fullInput()
			input.Identifier = identifier
			_, err := s.registry.RegisterPerson(s.ctx, input)
			domainErr := requireDomainError(s.T(), err, "VALIDATION_FAILED")
			s.Equal("identifier", domainErr.Details["field"])
		}
	})
}

func (s *RegistrySuite) TestUniqueness() {
	_, err := s.registry.RegisterPerson(s.ctx, fullInput())
	s.Require().NoError(err)

	s.Run("identifier conflicts are named", func() {
		input := fullInput()
		input.Email = "other@example.com"
		input.Handle = "other"
		_, err := s.registry.RegisterPerson(s.ctx, input)
		domainErr := requireDomainError(s.T(), err, "UNIQUENESS_CONFLICT")
		s.Equal("identifier", domainErr.Details["attribute"])
	})

	s.Run("handle conflicts are named", func() {
		input := fullInput()
		input.Identifier = 99999999
		input.Email = "other@example.com"
		_, err := s.registry.RegisterPerson(s.ctx, input)
		domainErr := requireDomainError(s.T(), err, "UNIQUENESS_CONFLICT")
		s.Equal("handle", domainErr.Details["attribute"])
	})

	s.Run("email conflicts are named", func() {
		input := fullInput()
		input.Identifier = 99999999
		input.Handle = "other"
		_, err := s.registry.RegisterPerson(s.ctx, input)
		domainErr := requireDomainError(s.T(), err, "UNIQUENESS_CONFLICT")
		s.Equal("email", domainErr.Details["attribute"])
	})

	s.Run("directory retains exactly one record per identifier", func() {
		people, err := s.registry.ListPeople(s.ctx, 100, 0)
		s.Require().NoError(err)
		s.Len(people, 1)
	})
}

func (s *RegistrySuite) TestSimplifiedRegistration() {
	s.Run("requires only name, family name and identifier", func() {
		person, err := s.registry.RegisterParticipant(s.ctx, ParticipantRegisterInput{
			Identifier: 44556677,
			Name:       "Luis",
			FamilyName: "Prado",
		})
		s.Require().NoError(err)
		s.NotEmpty(person.ID)
		s.Nil(person.Email)
		s.Nil(person.Handle)
		s.False(person.HasAccess())
	})

	s.Run("accepts blank email without format checking", func() {
		person, err := s.registry.RegisterParticipant(s.ctx, ParticipantRegisterInput{
			Identifier: 44556678,
			Name:       "Marta",
			FamilyName: "Vega",
			Email:      "   ",
		})
		s.Require().NoError(err)
		s.Nil(person.Email)
	})

	s.Run("keeps a provided email trimmed but unvalidated", func() {
		person, err := s.registry.RegisterParticipant(s.ctx, ParticipantRegisterInput{
			Identifier: 44556679,
			Name:       "Pau",
			FamilyName: "Serra",
			Email:      " whatever ",
		})
		s.Require().NoError(err)
		s.Require().NotNil(person.Email)
		s.Equal("whatever", *person.Email)
	})

	s.Run("enforces identifier uniqueness only", func() {
		_, err := s.registry.RegisterParticipant(s.ctx, ParticipantRegisterInput{
			Identifier: 44556677,
			Name:       "Luis",
			FamilyName: "Prado",
		})
		domainErr := requireDomainError(s.T(), err, "UNIQUENESS_CONFLICT")
		s.Equal("identifier", domainErr.Details["attribute"])
	})

	s.Run("still rejects missing required fields", func() {
		_, err := s.registry.RegisterParticipant(s.ctx, ParticipantRegisterInput{Identifier: 1, Name: "Solo"})
		domainErr := requireDomainError(s.T(), err, "VALIDATION_FAILED")
		s.Equal("family_name", domainErr.Details["field"])

		_, err = s.registry.RegisterParticipant(s.ctx, ParticipantRegisterInput{Identifier: 0, Name: "A", FamilyName: "B"})
		domainErr = requireDomainError(s.T(), err, "VALIDATION_FAILED")
		s.Equal("identifier", domainErr.Details["field"])
	})
}

func (s *RegistrySuite) TestAuthenticate() {
	_, err := s.registry.RegisterPerson(s.ctx, fullInput())
	s.Require().NoError(err)

	s.Run("matches handle and credential", func() {
		person, token, exp, err := s.registry.Authenticate(s.ctx, "adiaz", "x")
		s.Require().NoError(err)
		s.Equal(int64(12345678), person.Identifier)
		s.NotEmpty(token)
		s.False(exp.IsZero())

		claims, err := auth.NewTokenManager("test-secret", 5).ParseToken(token)
		s.Require().NoError(err)
		s.Equal(person.ID, claims.PersonID)
	})

	s.Run("trims the handle but not the credential", func() {
		_, _, _, err := s.registry.Authenticate(s.ctx, "  adiaz  ", "x")
		s.Require().NoError(err)

		_, _, _, err = s.registry.Authenticate(s.ctx, "adiaz", " x ")
		requireDomainError(s.T(), err, "UNAUTHORIZED")
	})

	s.Run("unknown handle is an explicit no-match", func() {
		_, _, _, err := s.registry.Authenticate(s.ctx, "nobody", "x")
		requireDomainError(s.T(), err, "UNAUTHORIZED")
	})

	s.Run("wrong credential is an explicit no-match", func() {
		_, _, _, err := s.registry.Authenticate(s.ctx, "adiaz", "X")
		requireDomainError(s.T(), err, "UNAUTHORIZED")
	})

	s.Run("participants without access cannot authenticate", func() {
		_, err := s.registry.RegisterParticipant(s.ctx, ParticipantRegisterInput{
			Identifier: 777, Name: "No", FamilyName: "Access",
		})
		s.Require().NoError(err)
		_, _, _, err = s.registry.Authenticate(s.ctx, "No", "anything")
		requireDomainError(s.T(), err, "UNAUTHORIZED")
	})

	s.Run("blank inputs fail validation", func() {
		_, _, _, err := s.registry.Authenticate(s.ctx, "  ", "x")
		requireDomainError(s.T(), err, "VALIDATION_FAILED")
		_, _, _, err = s.registry.Authenticate(s.ctx, "adiaz", "")
		requireDomainError(s.T(), err, "VALIDATION_FAILED")
	})
}

func (s *RegistrySuite) TestUpdateProfile() {
	person, err := s.registry.RegisterPerson(s.ctx, fullInput())
	s.Require().NoError(err)

	other := fullInput()
	other.Identifier = 87654321
	other.Email = "bruno@example.com"
	other.Handle = "bmoro"
	_, err = s.registry.RegisterPerson(s.ctx, other)
	s.Require().NoError(err)

	s.Run("updates trimmed profile fields", func() {
		updated, err := s.registry.UpdateProfile(s.ctx, person.ID, ProfileUpdateInput{
			Name:       " Ana Maria ",
			FamilyName: "Diaz",
			Email:      "ana@example.com",
			Phone:      "555-0000",
		})
		s.Require().NoError(err)
		s.Equal("Ana Maria", updated.Name)
		s.Equal("555-0000", updated.Phone)
	})

	s.Run("rejects an email owned by another person", func() {
		_, err := s.registry.UpdateProfile(s.ctx, person.ID, ProfileUpdateInput{
			Name:       "Ana",
			FamilyName: "Diaz",
			Email:      "bruno@example.com",
		})
		domainErr := requireDomainError(s.T(), err, "UNIQUENESS_CONFLICT")
		s.Equal("email", domainErr.Details["attribute"])
	})

	s.Run("rejects malformed replacement emails", func() {
		_, err := s.registry.UpdateProfile(s.ctx, person.ID, ProfileUpdateInput{
			Name:       "Ana",
			FamilyName: "Diaz",
			Email:      "broken",
		})
		requireDomainError(s.T(), err, "VALIDATION_FAILED")
	})

	s.Run("unknown person is not found", func() {
		_, err := s.registry.UpdateProfile(s.ctx, "missing", ProfileUpdateInput{Name: "A", FamilyName: "B"})
		requireDomainError(s.T(), err, "NOT_FOUND")
	})
}
