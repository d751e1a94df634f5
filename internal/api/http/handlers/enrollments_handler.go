package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/ayto-digital/events-service/internal/api/dto"
	"github.com/ayto-digital/events-service/internal/auth"
	"github.com/ayto-digital/events-service/internal/service"
	apperrors "github.com/ayto-digital/events-service/pkg/util"
)

// EnrollmentsHandler exposes the enrollment workflow endpoints.
type EnrollmentsHandler struct {
	enrollments *service.EnrollmentService
}

// NewEnrollmentsHandler constructs handler.
func NewEnrollmentsHandler(enrollments *service.EnrollmentService) *EnrollmentsHandler {
	return &EnrollmentsHandler{enrollments: enrollments}
}

// Enroll handles POST /events/:id/enrollments. Authenticated callers enroll
// themselves unless the payload names another person, as when a clerk
// enrolls a participant registered without system access.
func (h *EnrollmentsHandler) Enroll(c *fiber.Ctx) error {
	principal := auth.PrincipalFromContext(c)
	if principal == nil {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.EnrollRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", "body")
		}
	}
	personID := req.PersonID
	if personID == "" {
		personID = principal.Person.ID
	}

	enrollment, err := h.enrollments.Enroll(c.UserContext(), c.Params("id"), personID)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{"enrollment": dto.NewEnrollmentResponse(enrollment)},
	})
}

// Status handles GET /events/:id/enrollments/:personId.
func (h *EnrollmentsHandler) Status(c *fiber.Ctx) error {
	enrolled, err := h.enrollments.IsEnrolled(c.UserContext(), c.Params("id"), c.Params("personId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{"enrolled": enrolled},
	})
}

// List handles GET /events/:id/enrollments.
func (h *EnrollmentsHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 100)
	offset := c.QueryInt("offset", 0)

	enrollments, err := h.enrollments.ListEnrollments(c.UserContext(), c.Params("id"), limit, offset)
	if err != nil {
		return err
	}

	responses := make([]dto.EnrollmentResponse, 0, len(enrollments))
	for i := range enrollments {
		responses = append(responses, dto.NewEnrollmentResponse(&enrollments[i]))
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{"enrollments": responses},
	})
}
