package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	correlationHeader = "X-Correlation-ID"
	requestIDHeader   = "X-Request-ID"
	correlationLocal  = "correlation_id"
	// maxCorrelationLength bounds client supplied identifiers before they reach the logs.
	maxCorrelationLength = 128
)

type correlationIDKey struct{}

// CorrelationID binds a correlation identifier to every request. Incoming
// X-Correlation-ID or X-Request-ID values are reused, otherwise a uuid is generated.
func CorrelationID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := incomingCorrelationID(c)
		if id == "" {
			id = uuid.NewString()
		}

		c.Locals(correlationLocal, id)
		c.Set(correlationHeader, id)
		c.SetUserContext(context.WithValue(c.UserContext(), correlationIDKey{}, id))

		return c.Next()
	}
}

func incomingCorrelationID(c *fiber.Ctx) string {
	for _, header := range []string{correlationHeader, requestIDHeader} {
		value := strings.TrimSpace(c.Get(header))
		if value != "" && len(value) <= maxCorrelationLength {
			return value
		}
	}
	return ""
}

// CorrelationIDFromContext extracts the correlation identifier from context, if present.
func CorrelationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(correlationIDKey{}).(string)
	return id
}

// GetCorrelationID returns the correlation identifier bound to the active request.
func GetCorrelationID(c *fiber.Ctx) string {
	if c == nil {
		return ""
	}
	if id, ok := c.Locals(correlationLocal).(string); ok {
		return id
	}
	return CorrelationIDFromContext(c.UserContext())
}
