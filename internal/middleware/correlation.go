package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	headerCorrelationID = "X-Correlation-ID"
	headerRequestID     = "X-Request-ID"
)

type correlationIDKey struct{}

var correlationKey = correlationIDKey{}

// CorrelationID tags every request with a correlation identifier so a request
// can be traced from the HTTP layer through notification fan-out. Clients may
// supply their own via X-Correlation-ID or X-Request-ID.
func CorrelationID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := incomingCorrelationID(c)
		if id == "" {
			id = uuid.NewString()
		}

		c.Locals("correlation_id", id)
		c.Set(headerCorrelationID, id)
		c.SetUserContext(context.WithValue(c.Context(), correlationKey, id))

		return c.Next()
	}
}

func incomingCorrelationID(c *fiber.Ctx) string {
	if id := strings.TrimSpace(c.Get(headerCorrelationID)); id != "" {
		return id
	}
	return strings.TrimSpace(c.Get(headerRequestID))
}

// CorrelationIDFromContext extracts the correlation identifier from context, if present.
func CorrelationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(correlationKey).(string); ok {
		return id
	}
	return ""
}

// GetCorrelationID returns the correlation identifier bound to the active request.
func GetCorrelationID(c *fiber.Ctx) string {
	if c == nil {
		return ""
	}
	if id, ok := c.Locals("correlation_id").(string); ok {
		return id
	}
	return CorrelationIDFromContext(c.Context())
}

// ContextWithCorrelation attaches the correlation identifier to the provided context.
func ContextWithCorrelation(ctx context.Context, correlationID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	correlationID = strings.TrimSpace(correlationID)
	if correlationID == "" {
		return ctx
	}
	return context.WithValue(ctx, correlationKey, correlationID)
}
