package handler

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/daniswara/kumpul-api/internal/dto"
	"github.com/daniswara/kumpul-api/internal/middleware"
	"github.com/daniswara/kumpul-api/internal/service"
	"github.com/daniswara/kumpul-api/internal/utils"
)

// ChatHandler wires chat endpoints including the websocket upgrade.
type ChatHandler struct {
	chats  service.ChatService
	logger zerolog.Logger
}

// NewChatHandler creates a chat handler instance.
func NewChatHandler(chats service.ChatService, logger zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		chats:  chats,
		logger: logger.With().Str("component", "chat_handler").Logger(),
	}
}

// Register binds chat routes under the provided router group.
func (h *ChatHandler) Register(router fiber.Router) {
	router.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			ctx := c.UserContext()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx = middleware.ContextWithCorrelation(ctx, middleware.GetCorrelationID(c))
			c.Locals("request_ctx", ctx)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	router.Get("/ws", websocket.New(h.handleConnection))

	router.Get("/", h.list)
	router.Post("/private", h.createPrivate)
	router.Post("/group", h.createGroup)
	router.Post("/:chatID/participants", h.addParticipant)
	router.Delete("/:chatID/participants/:userID", h.removeParticipant)
	router.Get("/:chatID/messages", h.history)
	router.Get("/:chatID/messages/latest", h.latest)
	router.Post("/:chatID/messages", h.send)
	router.Post("/:chatID/read", h.markRead)
	router.Get("/:chatID/unread", h.unread)
	router.Delete("/messages/:messageID", h.deleteMessage)
}

func (h *ChatHandler) handleConnection(conn *websocket.Conn) {
	userID := websocketUserID(conn)
	if userID == 0 {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "user id missing"))
		_ = conn.Close()
		return
	}

	chatID, err := strconv.ParseUint(strings.TrimSpace(conn.Query("chat_id")), 10, 64)
	if err != nil || chatID == 0 {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseUnsupportedData, "chat_id required"))
		_ = conn.Close()
		return
	}

	correlation, _ := conn.Locals("correlation_id").(string)
	baseCtx, _ := conn.Locals("request_ctx").(context.Context)

	opts := service.ChatConnectionOptions{
		UserID:        userID,
		ChatID:        uint(chatID),
		CorrelationID: correlation,
		Context:       baseCtx,
	}

	h.logger.Info().Uint("user_id", userID).Uint64("chat_id", chatID).Msg("chat websocket connected")
	h.chats.ServeConnection(conn, opts)
	h.logger.Info().Uint("user_id", userID).Uint64("chat_id", chatID).Msg("chat websocket disconnected")
}

func (h *ChatHandler) list(c *fiber.Ctx) error {
	chats, err := h.chats.ListChats(requestContext(c), userIDFromContext(c))
	if err != nil {
		return sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "chats", chats)
}

func (h *ChatHandler) createPrivate(c *fiber.Ctx) error {
	var payload dto.PrivateChatCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	chat, err := h.chats.CreatePrivateChat(requestContext(c), userIDFromContext(c), payload.OtherUserID)
	if err != nil {
		return sendServiceError(c, err)
	}
	return utils.SendCreated(c, "chat ready", chat)
}

func (h *ChatHandler) createGroup(c *fiber.Ctx) error {
	var payload dto.GroupChatCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	chat, err := h.chats.CreateGroupChat(requestContext(c), userIDFromContext(c), payload)
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Msg("group chat creation failed")
		return sendServiceError(c, err)
	}
	return utils.SendCreated(c, "group chat created", chat)
}

func (h *ChatHandler) addParticipant(c *fiber.Ctx) error {
	chatID, err := parseParamID(c, "chatID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid chat id")
	}

	var payload dto.ParticipantRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.chats.AddParticipant(requestContext(c), chatID, userIDFromContext(c), payload.UserID); err != nil {
		return sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "participant added", nil)
}

func (h *ChatHandler) removeParticipant(c *fiber.Ctx) error {
	chatID, err := parseParamID(c, "chatID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid chat id")
	}
	userID, err := parseParamID(c, "userID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	if err := h.chats.RemoveParticipant(requestContext(c), chatID, userIDFromContext(c), userID); err != nil {
		return sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "participant removed", nil)
}

func (h *ChatHandler) send(c *fiber.Ctx) error {
	chatID, err := parseParamID(c, "chatID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid chat id")
	}

	var payload dto.MessageSendRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	message, err := h.chats.SendMessage(requestContext(c), chatID, userIDFromContext(c), payload)
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Uint("chat_id", chatID).Msg("message send failed")
		return sendServiceError(c, err)
	}
	return utils.SendCreated(c, "message sent", message)
}

func (h *ChatHandler) history(c *fiber.Ctx) error {
	chatID, err := parseParamID(c, "chatID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid chat id")
	}
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	messages, err := h.chats.History(requestContext(c), chatID, userIDFromContext(c), limit)
	if err != nil {
		return sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "chat history", messages)
}

func (h *ChatHandler) latest(c *fiber.Ctx) error {
	chatID, err := parseParamID(c, "chatID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid chat id")
	}
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	var before time.Time
	if raw := c.Query("before"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid before timestamp")
		}
		before = parsed
	}

	messages, err := h.chats.LatestMessages(requestContext(c), chatID, userIDFromContext(c), before, limit)
	if err != nil {
		return sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "latest messages", messages)
}

func (h *ChatHandler) markRead(c *fiber.Ctx) error {
	chatID, err := parseParamID(c, "chatID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid chat id")
	}

	updated, err := h.chats.MarkRead(requestContext(c), chatID, userIDFromContext(c))
	if err != nil {
		return sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "messages marked read", fiber.Map{"updated": updated})
}

func (h *ChatHandler) unread(c *fiber.Ctx) error {
	chatID, err := parseParamID(c, "chatID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid chat id")
	}

	count, err := h.chats.UnreadCount(requestContext(c), chatID, userIDFromContext(c))
	if err != nil {
		return sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "unread count", dto.UnreadCountResponse{ChatID: chatID, Unread: count})
}

func (h *ChatHandler) deleteMessage(c *fiber.Ctx) error {
	messageID, err := parseParamID(c, "messageID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid message id")
	}

	if err := h.chats.DeleteMessage(requestContext(c), messageID, userIDFromContext(c)); err != nil {
		return sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "message deleted", nil)
}

func websocketUserID(conn *websocket.Conn) uint {
	if value := conn.Locals("user_id"); value != nil {
		switch v := value.(type) {
		case uint:
			return v
		case int:
			if v > 0 {
				return uint(v)
			}
		case float64:
			if v > 0 {
				return uint(v)
			}
		}
	}
	return 0
}
