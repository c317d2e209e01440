package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/prompt-workshop-api/internal/dto"
	"github.com/noah-isme/prompt-workshop-api/internal/service"
	"github.com/noah-isme/prompt-workshop-api/internal/utils"
)

// SubmissionHandler manages submission listing, direct inserts and ratings.
type SubmissionHandler struct {
	service service.SubmissionService
	logger  zerolog.Logger
}

// NewSubmissionHandler builds a submission handler instance.
func NewSubmissionHandler(service service.SubmissionService, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service: service,
		logger:  logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register attaches the submission routes to the provided router group.
func (h *SubmissionHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
}

// RegisterRating attaches the rate-evaluation route.
func (h *SubmissionHandler) RegisterRating(router fiber.Router) {
	router.Post("", h.rate)
}

func (h *SubmissionHandler) list(c *fiber.Ctx) error {
	sessionID, err := parseQueryUint(c, "session")
	if err != nil {
		return utils.SendErrorWithCode(c, fiber.StatusBadRequest, CodeValidationFailed, err.Error())
	}

	submissions, err := h.service.List(c.UserContext(), sessionID)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "submissions retrieved", submissions)
}

func (h *SubmissionHandler) create(c *fiber.Ctx) error {
	var payload dto.CreateSubmissionRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidBody(c)
	}

	submission, err := h.service.Create(c.UserContext(), payload)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "submission stored", submission)
}

func (h *SubmissionHandler) rate(c *fiber.Ctx) error {
	var payload dto.RateEvaluationRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidBody(c)
	}

	submission, err := h.service.Rate(c.UserContext(), payload)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "rating saved", submission)
}
