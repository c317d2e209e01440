package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/noah-isme/prompt-workshop-api/internal/utils"
)

// RateLimit creates a per-client rate limiter middleware instance keyed on the
// authenticated subject or the client IP.
func RateLimit(identifier string, max int, window time.Duration) fiber.Handler {
	if max <= 0 {
		max = 10
	}
	if window <= 0 {
		window = time.Second
	}

	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			client := UserIDFromContext(c)
			if client == "" {
				client = c.IP()
			}
			return fmt.Sprintf("%s:%s", identifier, client)
		},
		LimitReached: func(c *fiber.Ctx) error {
			return utils.SendErrorWithCode(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please slow down")
		},
	})
}
