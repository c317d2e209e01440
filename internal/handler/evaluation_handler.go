package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/prompt-workshop-api/internal/dto"
	"github.com/noah-isme/prompt-workshop-api/internal/service"
	"github.com/noah-isme/prompt-workshop-api/internal/utils"
)

// EvaluationHandler serves the prompt evaluation endpoint.
type EvaluationHandler struct {
	service service.EvaluationService
	timeout time.Duration
	logger  zerolog.Logger
}

// NewEvaluationHandler builds an evaluation handler; timeout bounds the whole request.
func NewEvaluationHandler(service service.EvaluationService, timeout time.Duration, logger zerolog.Logger) *EvaluationHandler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &EvaluationHandler{
		service: service,
		timeout: timeout,
		logger:  logger.With().Str("component", "evaluation_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *EvaluationHandler) Register(router fiber.Router, limiters ...fiber.Handler) {
	router.Post("", chain(limiters, h.evaluate)...)
}

func (h *EvaluationHandler) evaluate(c *fiber.Ctx) error {
	var payload dto.EvaluateRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidBody(c)
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	result, err := h.service.Evaluate(ctx, payload)
	if err != nil {
		return writeError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "evaluation completed", result)
}
