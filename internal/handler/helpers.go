package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/prompt-workshop-api/internal/middleware"
	"github.com/noah-isme/prompt-workshop-api/internal/service"
	"github.com/noah-isme/prompt-workshop-api/internal/utils"
)

// Machine readable error codes carried in error envelopes.
const (
	CodeValidationFailed     = "validation_failed"
	CodeSessionClosed        = "session_closed"
	CodeNotFound             = "not_found"
	CodeAlreadyRated         = "already_rated"
	CodeEvaluationFailed     = "evaluation_failed"
	CodeEvaluatorUnavailable = "evaluator_unavailable"
	CodeInternalError        = "internal_error"
)

const evaluationFailedMessage = "Failed to generate evaluation. Please try again."

func parseQueryUint(c *fiber.Ctx, key string) (*uint, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil || parsed == 0 {
		return nil, fmt.Errorf("invalid %s", key)
	}
	result := uint(parsed)
	return &result, nil
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors) || errors.Is(err, service.ErrValidation)
}

func validationMessage(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		fields := make([]string, 0, len(validationErrors))
		for _, fieldErr := range validationErrors {
			fields = append(fields, fmt.Sprintf("%s is %s", fieldErr.Field(), describeTag(fieldErr)))
		}
		return strings.Join(fields, "; ")
	}
	return strings.TrimPrefix(err.Error(), service.ErrValidation.Error()+": ")
}

func describeTag(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required", "required_without":
		return "required"
	case "oneof":
		return "must be one of " + fieldErr.Param()
	case "gte", "min":
		return "below the minimum of " + fieldErr.Param()
	case "lte", "max":
		return "above the maximum of " + fieldErr.Param()
	default:
		return "invalid"
	}
}

func invalidBody(c *fiber.Ctx) error {
	return utils.SendErrorWithCode(c, fiber.StatusBadRequest, CodeValidationFailed, "invalid request body")
}

// writeError maps service errors onto status codes and stable error codes.
func writeError(c *fiber.Ctx, logger zerolog.Logger, err error) error {
	switch {
	case isValidationError(err):
		return utils.SendErrorWithCode(c, fiber.StatusBadRequest, CodeValidationFailed, validationMessage(err))
	case errors.Is(err, service.ErrSessionClosed):
		return utils.SendErrorWithCode(c, fiber.StatusForbidden, CodeSessionClosed, "Submissions are currently closed. Please wait for the facilitator to open a session.")
	case errors.Is(err, service.ErrSessionNotFound):
		return utils.SendErrorWithCode(c, fiber.StatusNotFound, CodeNotFound, "session not found")
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendErrorWithCode(c, fiber.StatusNotFound, CodeNotFound, "submission not found")
	case errors.Is(err, service.ErrAlreadyRated):
		return utils.SendErrorWithCode(c, fiber.StatusConflict, CodeAlreadyRated, "evaluation already rated")
	case errors.Is(err, service.ErrEvaluatorUnavailable):
		return utils.SendErrorWithCode(c, fiber.StatusServiceUnavailable, CodeEvaluatorUnavailable, "evaluation service is not configured")
	case errors.Is(err, service.ErrEvaluation):
		requestLogger(logger, c).Error().Err(err).Msg("evaluation failed")
		return utils.SendErrorWithCode(c, fiber.StatusInternalServerError, CodeEvaluationFailed, evaluationFailedMessage)
	default:
		requestLogger(logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendErrorWithCode(c, fiber.StatusInternalServerError, CodeInternalError, "internal server error")
	}
}

func chain(guards []fiber.Handler, handler fiber.Handler) []fiber.Handler {
	handlers := make([]fiber.Handler, 0, len(guards)+1)
	for _, guard := range guards {
		if guard != nil {
			handlers = append(handlers, guard)
		}
	}
	return append(handlers, handler)
}
