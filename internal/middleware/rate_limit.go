package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/daniswara/kumpul-api/internal/utils"
)

// RateLimit creates a per-user rate limiter for a route group. Anonymous
// requests are keyed by client IP instead, and limit hits reply with the
// standard response envelope plus a Retry-After hint.
func RateLimit(scope string, max int, window time.Duration) fiber.Handler {
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
			subject := fmt.Sprintf("%v", c.Locals("user_id"))
			if subject == "" || subject == "0" || subject == "<nil>" {
				subject = c.IP()
			}
			return fmt.Sprintf("%s:%s", scope, subject)
		},
		LimitReached: func(c *fiber.Ctx) error {
			c.Set(fiber.HeaderRetryAfter, fmt.Sprintf("%d", int(window.Seconds())))
			return utils.SendError(c, fiber.StatusTooManyRequests, "too many requests")
		},
	})
}
