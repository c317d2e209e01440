package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/prompt-workshop-api/internal/dto"
	"github.com/noah-isme/prompt-workshop-api/internal/service"
	"github.com/noah-isme/prompt-workshop-api/internal/utils"
)

// FeedbackHandler serves session level feedback.
type FeedbackHandler struct {
	service service.FeedbackService
	logger  zerolog.Logger
}

// NewFeedbackHandler builds a feedback handler instance.
func NewFeedbackHandler(service service.FeedbackService, logger zerolog.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		service: service,
		logger:  logger.With().Str("component", "feedback_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *FeedbackHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.submit)
}

func (h *FeedbackHandler) list(c *fiber.Ctx) error {
	sessionID, err := parseQueryUint(c, "session")
	if err != nil {
		return utils.SendErrorWithCode(c, fiber.StatusBadRequest, CodeValidationFailed, err.Error())
	}

	feedback, err := h.service.List(c.UserContext(), sessionID)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "feedback retrieved", feedback)
}

func (h *FeedbackHandler) submit(c *fiber.Ctx) error {
	var payload dto.FeedbackRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidBody(c)
	}

	feedback, err := h.service.Submit(c.UserContext(), payload)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "Thank you for your feedback!", feedback)
}
