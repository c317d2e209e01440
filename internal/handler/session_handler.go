package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/prompt-workshop-api/internal/dto"
	"github.com/noah-isme/prompt-workshop-api/internal/service"
	"github.com/noah-isme/prompt-workshop-api/internal/utils"
)

// SessionHandler manages workshop session endpoints.
type SessionHandler struct {
	service service.SessionService
	logger  zerolog.Logger
}

// NewSessionHandler builds a session handler instance.
func NewSessionHandler(service service.SessionService, logger zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		service: service,
		logger:  logger.With().Str("component", "session_handler").Logger(),
	}
}

// Register attaches the routes; guard protects the mutating routes.
func (h *SessionHandler) Register(router fiber.Router, guard ...fiber.Handler) {
	router.Get("", h.list)
	router.Get("/active", h.active)
	router.Post("", chain(guard, h.create)...)
	router.Patch("", chain(guard, h.update)...)
}

func (h *SessionHandler) list(c *fiber.Ctx) error {
	sessions, err := h.service.List(c.UserContext())
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "sessions retrieved", sessions)
}

func (h *SessionHandler) active(c *fiber.Ctx) error {
	session, err := h.service.Active(c.UserContext())
	if err != nil {
		return writeError(c, h.logger, err)
	}
	if session == nil {
		return utils.SendSuccess(c, "no open session", nil)
	}
	return utils.SendSuccess(c, "active session retrieved", session)
}

func (h *SessionHandler) create(c *fiber.Ctx) error {
	var payload dto.CreateSessionRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidBody(c)
	}

	session, err := h.service.Create(c.UserContext(), payload)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "session created", session)
}

func (h *SessionHandler) update(c *fiber.Ctx) error {
	var payload dto.UpdateSessionRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidBody(c)
	}

	session, err := h.service.Update(c.UserContext(), payload)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "session updated", session)
}
