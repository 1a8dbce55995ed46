package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/daniswara/kumpul-api/internal/utils"
)

// Auth role constants used by the WithAuth helper.
const (
	AuthRoleAny   = "any"
	AuthRoleAdmin = "admin"
	AuthRoleUser  = "user"
)

// AuthOptions configures the WithAuth helper.
type AuthOptions struct {
	Role        string
	RequireUser bool
}

// WithAuth wraps a handler with authentication and role guards. JWTProtected
// must run earlier on the route so user_id and user_role are bound.
func WithAuth(handler fiber.Handler, opts AuthOptions) fiber.Handler {
	role := strings.ToLower(strings.TrimSpace(opts.Role))
	if role == "" {
		role = AuthRoleAny
	}

	requireUser := opts.RequireUser
	if !requireUser && role != AuthRoleAny {
		requireUser = true
	}

	return func(c *fiber.Ctx) error {
		userID := c.Locals("user_id")
		if requireUser && userID == nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}

		if role == AuthRoleAny {
			if !requireUser || userID != nil {
				return handler(c)
			}
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}

		currentRole := normalizeRoleValue(c.Locals("user_role"))
		if role == AuthRoleUser {
			// Admins can exercise user surfaces too.
			if currentRole != AuthRoleUser && currentRole != AuthRoleAdmin {
				return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
			}
			return handler(c)
		}
		if currentRole != role {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}

		return handler(c)
	}
}

func normalizeRoleValue(value interface{}) string {
	if value == nil {
		return ""
	}
	if role, ok := value.(string); ok {
		return strings.ToLower(strings.TrimSpace(role))
	}
	return ""
}
