package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/ayto-digital/events-service/internal/domain"
	"github.com/ayto-digital/events-service/internal/repository"
	apperrors "github.com/ayto-digital/events-service/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	Person *domain.Person
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens *TokenManager
	people repository.PersonRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, people repository.PersonRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, people: people}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	person, err := m.people.GetByID(c.Context(), claims.PersonID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("person not found")
		}
		return apperrors.NewInternalError(err)
	}

	c.Locals(principalKey, &Principal{Person: person})
	return c.Next()
}

// PrincipalFromContext returns the principal stored by the middleware.
func PrincipalFromContext(c *fiber.Ctx) *Principal {
	principal, _ := c.Locals(principalKey).(*Principal)
	return principal
}
