package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/prompt-workshop-api/internal/service"
	"github.com/noah-isme/prompt-workshop-api/internal/utils"
)

// SchemaHandler exposes the idempotent schema administration endpoints.
type SchemaHandler struct {
	service service.SchemaService
	logger  zerolog.Logger
}

// NewSchemaHandler builds a schema handler.
func NewSchemaHandler(service service.SchemaService, logger zerolog.Logger) *SchemaHandler {
	return &SchemaHandler{
		service: service,
		logger:  logger.With().Str("component", "schema_handler").Logger(),
	}
}

// Register attaches the routes to the provided admin router group.
func (h *SchemaHandler) Register(router fiber.Router) {
	router.Post("/init-db", h.initDB)
	router.Post("/migrate", h.migrate)
}

func (h *SchemaHandler) initDB(c *fiber.Ctx) error {
	result, err := h.service.Init(c.UserContext())
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return utils.SendSuccess(c, result.Message, result)
}

func (h *SchemaHandler) migrate(c *fiber.Ctx) error {
	result, err := h.service.Migrate(c.UserContext())
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return utils.SendSuccess(c, result.Message, result)
}
