package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/daniswara/kumpul-api/internal/middleware"
	"github.com/daniswara/kumpul-api/internal/service"
	"github.com/daniswara/kumpul-api/internal/utils"
)

// NotificationHandler manages SSE notification streams and inbox operations.
type NotificationHandler struct {
	notifications service.NotificationService
	logger        zerolog.Logger
	keepAlive     time.Duration
}

// NewNotificationHandler constructs a handler instance.
func NewNotificationHandler(notifications service.NotificationService, logger zerolog.Logger, keepAlive time.Duration) *NotificationHandler {
	return &NotificationHandler{
		notifications: notifications,
		logger:        logger.With().Str("component", "notification_handler").Logger(),
		keepAlive:     keepAlive,
	}
}

// Register binds the notification routes.
func (h *NotificationHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Get("/stream", h.stream)
	router.Get("/unread", h.unread)
	router.Patch("/read", h.markAllRead)
	router.Patch("/:id/read", h.markRead)
	router.Delete("/:id", h.remove)
}

func (h *NotificationHandler) list(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}
	offset, err := parseQueryInt(c, "offset")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid offset")
	}

	notifications, err := h.notifications.List(requestContext(c), userIDFromContext(c), limit, offset)
	if err != nil {
		return sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "notifications", notifications)
}

func (h *NotificationHandler) stream(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = middleware.ContextWithCorrelation(ctx, middleware.GetCorrelationID(c))
	ctx, cancel := context.WithCancel(ctx)

	stream, cleanup := h.notifications.Subscribe(userID)

	keepAliveInterval := h.keepAlive
	if keepAliveInterval <= 0 {
		keepAliveInterval = 30 * time.Second
	}

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer func() {
			cleanup()
			cancel()
		}()

		ticker := time.NewTicker(keepAliveInterval / 2)
		defer ticker.Stop()

		for {
			select {
			case notification, ok := <-stream:
				if !ok {
					return
				}
				if err := writeNotificationEvent(w, notification); err != nil {
					h.logger.Debug().Err(err).Msg("failed to write notification event")
					return
				}
			case <-ticker.C:
				if err := writeKeepAlive(w); err != nil {
					h.logger.Debug().Err(err).Msg("failed to write notification keepalive")
					return
				}
			case <-ctx.Done():
				return
			}
		}
	})

	return nil
}

func (h *NotificationHandler) unread(c *fiber.Ctx) error {
	count, err := h.notifications.UnreadCount(requestContext(c), userIDFromContext(c))
	if err != nil {
		return sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "unread count", fiber.Map{"unread": count})
}

func (h *NotificationHandler) markRead(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid notification id")
	}

	notification, err := h.notifications.MarkRead(requestContext(c), id, userIDFromContext(c))
	if err != nil {
		return sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "notification updated", notification)
}

func (h *NotificationHandler) markAllRead(c *fiber.Ctx) error {
	updated, err := h.notifications.MarkAllRead(requestContext(c), userIDFromContext(c))
	if err != nil {
		return sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "notifications updated", fiber.Map{"updated": updated})
}

func (h *NotificationHandler) remove(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid notification id")
	}

	if err := h.notifications.Delete(requestContext(c), id, userIDFromContext(c)); err != nil {
		return sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "notification deleted", nil)
}

func writeNotificationEvent(w *bufio.Writer, notification interface{}) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "event: notification\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		return err
	}
	return w.Flush()
}

func writeKeepAlive(w *bufio.Writer) error {
	if _, err := fmt.Fprintf(w, ": keep-alive %s\n\n", time.Now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}
	return w.Flush()
}
