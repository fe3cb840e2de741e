package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/Sam8709/repair-track-25-08/internal/api/http/handlers"
	"github.com/Sam8709/repair-track-25-08/internal/auth"
	"github.com/Sam8709/repair-track-25-08/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Jobs           *handlers.JobsHandler
	Profile        *handlers.ProfileHandler
	Notifications  *handlers.NotificationsHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))

	app.Post("/auth/register", cfg.Users.Register)
	app.Post("/auth/login", cfg.Users.Login)
	app.Post("/auth/logout", cfg.AuthMiddleware.Handle, cfg.Users.Logout)

	// Public tracking target for the QR code on printed receipts.
	app.Get("/track/:code", cfg.Jobs.Track)

	// Kept open to match the provider-relay contract (405/400/500/200).
	app.Post("/send-whatsapp", cfg.Notifications.Send)

	api := app.Group("/api", cfg.AuthMiddleware.Handle)
	api.Get("/jobs", cfg.Jobs.ListJobs)
	api.Post("/jobs", cfg.Jobs.CreateJob)
	api.Patch("/jobs/:id/status", cfg.Jobs.UpdateStatus)
	api.Get("/profile", cfg.Profile.Get)
	api.Put("/profile", cfg.Profile.Save)
}
