package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/prompt-workshop-api/internal/config"
	"github.com/noah-isme/prompt-workshop-api/internal/handler"
	"github.com/noah-isme/prompt-workshop-api/internal/middleware"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	EvaluationHandler *handler.EvaluationHandler
	SessionHandler    *handler.SessionHandler
	SubmissionHandler *handler.SubmissionHandler
	FeedbackHandler   *handler.FeedbackHandler
	GoalHandler       *handler.GoalHandler
	AnalyticsHandler  *handler.AnalyticsHandler
	HealthHandler     *handler.HealthHandler
	SchemaHandler     *handler.SchemaHandler

	// AdminGuard overrides the guard chain derived from cfg.AdminJWTSecret.
	AdminGuard []fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})

	guard := deps.AdminGuard
	if guard == nil {
		guard = adminGuard(cfg)
	}

	if deps.HealthHandler != nil {
		deps.HealthHandler.Register(api.Group("/health"))
	}

	if deps.EvaluationHandler != nil {
		limiter := middleware.RateLimit("evaluate", cfg.EvaluateRateLimit, time.Minute)
		deps.EvaluationHandler.Register(api.Group("/evaluate"), limiter)
	}

	if deps.SessionHandler != nil {
		deps.SessionHandler.Register(api.Group("/sessions"), guard...)
	}

	if deps.SubmissionHandler != nil {
		deps.SubmissionHandler.Register(api.Group("/submissions"))
		deps.SubmissionHandler.RegisterRating(api.Group("/rate-evaluation"))
	}

	if deps.FeedbackHandler != nil {
		deps.FeedbackHandler.Register(api.Group("/feedback"))
	}

	if deps.GoalHandler != nil {
		deps.GoalHandler.Register(api.Group("/goal"), guard...)
	}

	// Facilitator only
	if deps.AnalyticsHandler != nil {
		deps.AnalyticsHandler.Register(api.Group("/analytics", guard...))
	}

	if deps.SchemaHandler != nil {
		deps.SchemaHandler.Register(api.Group("/admin", guard...))
	}
}

// adminGuard returns no handlers when no admin secret is configured.
func adminGuard(cfg config.Config) []fiber.Handler {
	if cfg.AdminJWTSecret == "" {
		return nil
	}

	return []fiber.Handler{
		middleware.JWTProtected(cfg.AdminJWTSecret),
		middleware.RequireRole("admin", "facilitator"),
	}
}
