package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/prompt-workshop-api/internal/utils"
)

// RequireRole admits requests whose token role is one of roles. It must run after JWTProtected.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		if normalized := normalizeRole(role); normalized != "" {
			allowed[normalized] = struct{}{}
		}
	}

	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("user_role").(string)
		if role == "" {
			return utils.SendErrorWithCode(c, fiber.StatusForbidden, "forbidden", "token carries no role")
		}
		if _, ok := allowed[strings.ToLower(role)]; !ok {
			return utils.SendErrorWithCode(c, fiber.StatusForbidden, "forbidden", "insufficient permissions")
		}
		return c.Next()
	}
}
