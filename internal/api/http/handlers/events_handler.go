package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ayto-digital/events-service/internal/api/dto"
	"github.com/ayto-digital/events-service/internal/domain"
	"github.com/ayto-digital/events-service/internal/service"
	apperrors "github.com/ayto-digital/events-service/pkg/util"
)

// EventsHandler exposes the event catalog endpoints.
type EventsHandler struct {
	catalog *service.CatalogService
}

// NewEventsHandler constructs handler.
func NewEventsHandler(catalog *service.CatalogService) *EventsHandler {
	return &EventsHandler{catalog: catalog}
}

// Create handles POST /events.
func (h *EventsHandler) Create(c *fiber.Ctx) error {
	var req dto.EventCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", "body")
	}

	event, err := h.catalog.CreateEvent(c.UserContext(), service.EventCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Capacity:    req.Capacity,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{"event": dto.NewEventResponse(event)},
	})
}

// Get handles GET /events/:id, including the remaining-capacity snapshot.
func (h *EventsHandler) Get(c *fiber.Ctx) error {
	eventID := c.Params("id")

	event, err := h.catalog.GetEvent(c.UserContext(), eventID)
	if err != nil {
		return err
	}
	remaining, err := h.catalog.RemainingCapacity(c.UserContext(), eventID)
	if err != nil {
		return err
	}

	response := dto.NewEventResponse(event)
	response.RemainingCapacity = remaining
	return c.JSON(fiber.Map{
		"data": fiber.Map{"event": response},
	})
}

// List handles GET /events.
func (h *EventsHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)

	var states []domain.EventState
	if raw := c.Query("state"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			states = append(states, domain.EventState(strings.ToUpper(strings.TrimSpace(s))))
		}
	}

	listed, err := h.catalog.ListEvents(c.UserContext(), states, limit, offset)
	if err != nil {
		return err
	}

	responses := make([]dto.EventResponse, 0, len(listed))
	for i := range listed {
		responses = append(responses, dto.NewEventResponse(&listed[i]))
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{"events": responses},
	})
}

// UpdateState handles PATCH /events/:id/state.
func (h *EventsHandler) UpdateState(c *fiber.Ctx) error {
	var req dto.EventStateUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", "body")
	}

	state := domain.EventState(strings.ToUpper(strings.TrimSpace(req.State)))
	event, err := h.catalog.UpdateEventState(c.UserContext(), c.Params("id"), state)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{"event": dto.NewEventResponse(event)},
	})
}
