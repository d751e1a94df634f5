package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/ayto-digital/events-service/internal/api/dto"
	"github.com/ayto-digital/events-service/internal/auth"
	"github.com/ayto-digital/events-service/internal/service"
	apperrors "github.com/ayto-digital/events-service/pkg/util"
)

// PeopleHandler exposes registration, authentication and directory endpoints.
type PeopleHandler struct {
	registry *service.RegistryService
}

// NewPeopleHandler constructs handler.
func NewPeopleHandler(registry *service.RegistryService) *PeopleHandler {
	return &PeopleHandler{registry: registry}
}

// Register handles POST /auth/register.
func (h *PeopleHandler) Register(c *fiber.Ctx) error {
	var req dto.PersonRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", "body")
	}

	person, err := h.registry.RegisterPerson(c.UserContext(), service.PersonRegisterInput{
		Identifier: req.Identifier,
		Name:       req.Name,
		FamilyName: req.FamilyName,
		Email:      req.Email,
		Handle:     req.Handle,
		Credential: req.Credential,
		Phone:      req.Phone,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{"person": dto.NewPersonResponse(person)},
	})
}

// RegisterParticipant handles POST /people/participants.
func (h *PeopleHandler) RegisterParticipant(c *fiber.Ctx) error {
	var req dto.ParticipantRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", "body")
	}

	person, err := h.registry.RegisterParticipant(c.UserContext(), service.ParticipantRegisterInput{
		Identifier: req.Identifier,
		Name:       req.Name,
		FamilyName: req.FamilyName,
		Email:      req.Email,
		Phone:      req.Phone,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{"person": dto.NewPersonResponse(person)},
	})
}

// Login handles POST /auth/login.
func (h *PeopleHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", "body")
	}

	person, token, exp, err := h.registry.Authenticate(c.UserContext(), req.Handle, req.Credential)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"person": dto.NewPersonResponse(person),
			"auth":   dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// UpdateProfile handles PUT /people/me.
func (h *PeopleHandler) UpdateProfile(c *fiber.Ctx) error {
	principal := auth.PrincipalFromContext(c)
	if principal == nil {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.ProfileUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", "body")
	}

	person, err := h.registry.UpdateProfile(c.UserContext(), principal.Person.ID, service.ProfileUpdateInput{
		Name:       req.Name,
		FamilyName: req.FamilyName,
		Email:      req.Email,
		Phone:      req.Phone,
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{"person": dto.NewPersonResponse(person)},
	})
}

// Get handles GET /people/:id.
func (h *PeopleHandler) Get(c *fiber.Ctx) error {
	person, err := h.registry.GetPerson(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{"person": dto.NewPersonResponse(person)},
	})
}

// List handles GET /people.
func (h *PeopleHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)

	people, err := h.registry.ListPeople(c.UserContext(), limit, offset)
	if err != nil {
		return err
	}

	responses := make([]dto.PersonResponse, 0, len(people))
	for i := range people {
		responses = append(responses, dto.NewPersonResponse(&people[i]))
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{"people": responses},
	})
}
