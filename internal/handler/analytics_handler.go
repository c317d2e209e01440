package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/prompt-workshop-api/internal/service"
	"github.com/noah-isme/prompt-workshop-api/internal/utils"
)

// AnalyticsHandler exposes the workshop analytics dashboard data.
type AnalyticsHandler struct {
	service service.AnalyticsService
	logger  zerolog.Logger
}

// NewAnalyticsHandler builds an analytics handler.
func NewAnalyticsHandler(service service.AnalyticsService, logger zerolog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: service,
		logger:  logger.With().Str("component", "analytics_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *AnalyticsHandler) Register(router fiber.Router) {
	router.Get("", h.summary)
}

func (h *AnalyticsHandler) summary(c *fiber.Ctx) error {
	sessionID, err := parseQueryUint(c, "session")
	if err != nil {
		return utils.SendErrorWithCode(c, fiber.StatusBadRequest, CodeValidationFailed, err.Error())
	}

	summary, err := h.service.Summary(c.UserContext(), sessionID)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "analytics generated", summary)
}
