package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/prompt-workshop-api/internal/dto"
	"github.com/noah-isme/prompt-workshop-api/internal/service"
	"github.com/noah-isme/prompt-workshop-api/internal/utils"
)

// GoalHandler serves the legacy goal endpoint.
type GoalHandler struct {
	service service.GoalService
	logger  zerolog.Logger
}

// NewGoalHandler builds a goal handler instance.
func NewGoalHandler(service service.GoalService, logger zerolog.Logger) *GoalHandler {
	return &GoalHandler{
		service: service,
		logger:  logger.With().Str("component", "goal_handler").Logger(),
	}
}

// Register attaches the routes; guard protects updates.
func (h *GoalHandler) Register(router fiber.Router, guard ...fiber.Handler) {
	router.Get("", h.get)
	router.Post("", chain(guard, h.update)...)
}

func (h *GoalHandler) get(c *fiber.Ctx) error {
	goals, err := h.service.Get(c.UserContext())
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "goals retrieved", goals)
}

func (h *GoalHandler) update(c *fiber.Ctx) error {
	var payload dto.UpdateGoalsRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidBody(c)
	}

	goals, err := h.service.Update(c.UserContext(), payload)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "goals updated", goals)
}
