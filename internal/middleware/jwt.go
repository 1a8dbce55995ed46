package middleware

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/daniswara/kumpul-api/internal/utils"
)

// JWTProtected returns a middleware that validates JWT bearer tokens and
// binds the authenticated user to the request.
func JWTProtected(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := c.Get("Authorization")
		if authorization == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		const bearer = "Bearer "
		if !strings.HasPrefix(strings.ToLower(authorization), strings.ToLower(bearer)) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		if tokenString == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token claims")
		}

		userID := subjectFromClaims(claims)
		if userID == nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token subject")
		}
		c.Locals("user_id", *userID)

		if role := roleFromClaims(claims); role != "" {
			c.Locals("user_role", role)
		}

		return c.Next()
	}
}

func subjectFromClaims(claims jwt.MapClaims) *uint {
	for _, key := range []string{"sub", "user_id"} {
		value, ok := claims[key]
		if !ok {
			continue
		}
		if id, err := normalizeSubject(value); err == nil {
			return &id
		}
	}
	return nil
}

func normalizeSubject(value interface{}) (uint, error) {
	switch v := value.(type) {
	case float64:
		if v < 0 {
			return 0, fmt.Errorf("invalid subject")
		}
		return uint(v), nil
	case string:
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, err
		}
		return uint(parsed), nil
	default:
		return 0, fmt.Errorf("unsupported subject type")
	}
}

func roleFromClaims(claims jwt.MapClaims) string {
	value, ok := claims["role"]
	if !ok {
		return ""
	}
	if role, ok := value.(string); ok {
		return strings.ToLower(strings.TrimSpace(role))
	}
	return ""
}
