package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/voting-service/internal/api/http/handlers"
	"github.com/spec-kit/voting-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Candidates     *handlers.CandidatesHandler
	AuthMiddleware *auth.AuthMiddleware
	Admins         auth.AdminChecker
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	health := app.Group("/health")
	health.Get("/live", cfg.Health.Live)
	health.Get("/ready", cfg.Health.Ready)
	health.Get("/metrics", cfg.Health.Metrics)

	requireAuth := cfg.AuthMiddleware.Handle

	user := app.Group("/user")
	user.Post("/signup", cfg.Users.Signup)
	user.Post("/login", cfg.Users.Login)
	user.Get("/profile", requireAuth, cfg.Users.Profile)
	user.Put("/profile/password", requireAuth, cfg.Users.ChangePassword)
	user.Get("/profile-list", requireAuth, auth.RequireAdmin(cfg.Admins), cfg.Users.List)

	// Admin checks for candidate mutations happen in the service so the
	// NOT_ADMIN rejection precedes payload validation.
	candidate := app.Group("/candidate")
	candidate.Get("/candidates-list", cfg.Candidates.List)
	candidate.Get("/vote/count", cfg.Candidates.Count)
	candidate.Post("/vote/:id", requireAuth, cfg.Candidates.Vote)
	candidate.Post("/", requireAuth, cfg.Candidates.Create)
	candidate.Put("/:id", requireAuth, cfg.Candidates.Update)
	candidate.Delete("/:id", requireAuth, cfg.Candidates.Delete)
}
