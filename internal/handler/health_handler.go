package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/prompt-workshop-api/internal/service"
	"github.com/noah-isme/prompt-workshop-api/internal/utils"
)

// HealthHandler reports database connectivity and schema state.
type HealthHandler struct {
	service service.SchemaService
	logger  zerolog.Logger
}

// NewHealthHandler builds a health handler.
func NewHealthHandler(service service.SchemaService, logger zerolog.Logger) *HealthHandler {
	return &HealthHandler{
		service: service,
		logger:  logger.With().Str("component", "health_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *HealthHandler) Register(router fiber.Router) {
	router.Get("", h.check)
}

func (h *HealthHandler) check(c *fiber.Ctx) error {
	health, err := h.service.Health(c.UserContext())
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Msg("health check failed")
		return c.Status(fiber.StatusServiceUnavailable).JSON(utils.APIResponse{
			Success: false,
			Data:    health,
			Message: "service unhealthy",
			Code:    "database_unavailable",
		})
	}
	return utils.SendSuccess(c, "service "+health.Status, health)
}
