package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-case-service/internal/api/http/handlers"
	"github.com/spec-kit/support-case-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Admins         *handlers.AdminsHandler
	Cases          *handlers.CasesHandler
	Ingestion      *handlers.IngestionHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/admins/login", cfg.Admins.Login)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	admin.Get("/cases", cfg.Cases.ListCases)
	admin.Post("/cases/auto-create", cfg.Ingestion.AutoCreateCases)
	admin.Get("/cases/:id", cfg.Cases.GetCase)
	admin.Patch("/cases/:id/status", cfg.Cases.UpdateStatus)
	admin.Post("/cases/:id/claim", cfg.Cases.ClaimCase)
}
