package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/daniswara/kumpul-api/internal/dto"
	"github.com/daniswara/kumpul-api/internal/service"
	"github.com/daniswara/kumpul-api/internal/utils"
)

// FriendshipHandler exposes the relationship state machine over REST.
type FriendshipHandler struct {
	friendships service.FriendshipService
	logger      zerolog.Logger
}

// NewFriendshipHandler constructs a friendship handler instance.
func NewFriendshipHandler(friendships service.FriendshipService, logger zerolog.Logger) *FriendshipHandler {
	return &FriendshipHandler{
		friendships: friendships,
		logger:      logger.With().Str("component", "friendship_handler").Logger(),
	}
}

// Register binds friendship routes under the provided router group.
func (h *FriendshipHandler) Register(router fiber.Router) {
	router.Get("/", h.listFriends)
	router.Get("/suggestions", h.suggestions)
	router.Get("/requests", h.listPending)
	router.Post("/requests", h.sendRequest)
	router.Post("/requests/:userID/accept", h.accept)
	router.Post("/requests/:userID/decline", h.decline)
	router.Post("/:userID/block", h.block)
	router.Delete("/:userID/block", h.unblock)
	router.Delete("/:userID", h.remove)
}

func (h *FriendshipHandler) sendRequest(c *fiber.Ctx) error {
	var payload dto.FriendRequestCreate
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	friendship, err := h.friendships.SendRequest(requestContext(c), userIDFromContext(c), payload.TargetID)
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Uint("target_id", payload.TargetID).Msg("friend request failed")
		return sendServiceError(c, err)
	}

	return utils.SendCreated(c, "friend request sent", friendship)
}

func (h *FriendshipHandler) accept(c *fiber.Ctx) error {
	requesterID, err := parseParamID(c, "userID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	friendship, err := h.friendships.Accept(requestContext(c), userIDFromContext(c), requesterID)
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "friend request accepted", friendship)
}

func (h *FriendshipHandler) decline(c *fiber.Ctx) error {
	requesterID, err := parseParamID(c, "userID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	if err := h.friendships.Decline(requestContext(c), userIDFromContext(c), requesterID); err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "friend request declined", nil)
}

func (h *FriendshipHandler) remove(c *fiber.Ctx) error {
	otherID, err := parseParamID(c, "userID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	if err := h.friendships.Remove(requestContext(c), userIDFromContext(c), otherID); err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "friend removed", nil)
}

func (h *FriendshipHandler) block(c *fiber.Ctx) error {
	targetID, err := parseParamID(c, "userID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	friendship, err := h.friendships.Block(requestContext(c), userIDFromContext(c), targetID)
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "user blocked", friendship)
}

func (h *FriendshipHandler) unblock(c *fiber.Ctx) error {
	targetID, err := parseParamID(c, "userID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	if err := h.friendships.Unblock(requestContext(c), userIDFromContext(c), targetID); err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "user unblocked", nil)
}

func (h *FriendshipHandler) listFriends(c *fiber.Ctx) error {
	friends, err := h.friendships.ListFriends(requestContext(c), userIDFromContext(c))
	if err != nil {
		return sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "friends", friends)
}

func (h *FriendshipHandler) listPending(c *fiber.Ctx) error {
	pending, err := h.friendships.ListPendingIncoming(requestContext(c), userIDFromContext(c))
	if err != nil {
		return sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "pending friend requests", pending)
}

func (h *FriendshipHandler) suggestions(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	suggestions, err := h.friendships.Suggestions(requestContext(c), userIDFromContext(c), limit)
	if err != nil {
		return sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "friend suggestions", suggestions)
}
