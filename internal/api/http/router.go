package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ayto-digital/events-service/internal/api/http/handlers"
	"github.com/ayto-digital/events-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	People         *handlers.PeopleHandler
	Events         *handlers.EventsHandler
	Enrollments    *handlers.EnrollmentsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.People.Register)
	authGroup.Post("/login", cfg.People.Login)

	people := app.Group("/people", cfg.AuthMiddleware.Handle)
	people.Post("/participants", cfg.People.RegisterParticipant)
	people.Put("/me", cfg.People.UpdateProfile)
	people.Get("/:id", cfg.People.Get)
	people.Get("/", cfg.People.List)

	events := app.Group("/events")
	events.Get("/", cfg.Events.List)
	events.Get("/:id", cfg.Events.Get)

	protectedEvents := events.Group("", cfg.AuthMiddleware.Handle)
	protectedEvents.Post("/", cfg.Events.Create)
	protectedEvents.Patch("/:id/state", cfg.Events.UpdateState)
	protectedEvents.Post("/:id/enrollments", cfg.Enrollments.Enroll)
	protectedEvents.Get("/:id/enrollments", cfg.Enrollments.List)
	protectedEvents.Get("/:id/enrollments/:personId", cfg.Enrollments.Status)
}
