package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/annotation-auth/internal/api/http/handlers"
	"github.com/spec-kit/annotation-auth/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tokens         *handlers.TokenHandler
	Links          *handlers.LinksHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api", cfg.AuthMiddleware.Handle)
	api.Get("/profile", cfg.Tokens.Profile)
	api.Post("/token", cfg.Tokens.IssueSession)
	api.Post("/links", cfg.Links.Links)
	api.Post("/developer/token", auth.RequireAuthenticated(), cfg.Tokens.CreateAPIToken)
}
