package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/contact-service/internal/api/http/handlers"
	"github.com/spec-kit/contact-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Submissions    *handlers.SubmissionsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Auth.Login)

	contacts := app.Group("/contacts")
	contacts.Post("/", cfg.AuthMiddleware.Optional, cfg.Submissions.Create)

	admin := contacts.Group("", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	admin.Get("/", cfg.Submissions.List)
	// registered before /:id so the literal segment wins
	admin.Get("/unprocessed", cfg.Submissions.ListUnprocessed)
	admin.Get("/:id", cfg.Submissions.Get)
	admin.Post("/:id/mark_processed", cfg.Submissions.MarkProcessed)
}
