package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/daniswara/kumpul-api/internal/dto"
	"github.com/daniswara/kumpul-api/internal/models"
	"github.com/daniswara/kumpul-api/internal/service"
	"github.com/daniswara/kumpul-api/internal/utils"
)

// PostHandler exposes the feed, reactions, comments and shares.
type PostHandler struct {
	posts  service.PostService
	logger zerolog.Logger
}

// NewPostHandler constructs a post handler instance.
func NewPostHandler(posts service.PostService, logger zerolog.Logger) *PostHandler {
	return &PostHandler{
		posts:  posts,
		logger: logger.With().Str("component", "post_handler").Logger(),
	}
}

// Register binds post routes under the provided router group.
func (h *PostHandler) Register(router fiber.Router) {
	router.Get("/", h.feed)
	router.Post("/", h.create)
	router.Get("/:id", h.get)
	router.Delete("/:id", h.remove)
	router.Post("/:id/like", h.like)
	router.Delete("/:id/like", h.unlike)
	router.Get("/:id/comments", h.listComments)
	router.Post("/:id/comments", h.comment)
	router.Post("/:id/share", h.share)
}

func (h *PostHandler) feed(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}
	offset, err := parseQueryInt(c, "offset")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid offset")
	}

	posts, err := h.posts.ListFeed(requestContext(c), limit, offset)
	if err != nil {
		return sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "feed", posts)
}

func (h *PostHandler) create(c *fiber.Ctx) error {
	var payload dto.PostCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	post, err := h.posts.Create(requestContext(c), userIDFromContext(c), payload)
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Msg("post creation failed")
		return sendServiceError(c, err)
	}
	return utils.SendCreated(c, "post created", post)
}

func (h *PostHandler) get(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid post id")
	}

	post, err := h.posts.Get(requestContext(c), id)
	if err != nil {
		return sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "post", post)
}

func (h *PostHandler) remove(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid post id")
	}

	role := models.UserRole(userRoleFromContext(c))
	if err := h.posts.Delete(requestContext(c), id, userIDFromContext(c), role); err != nil {
		return sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "post deleted", nil)
}

func (h *PostHandler) like(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid post id")
	}

	if err := h.posts.Like(requestContext(c), id, userIDFromContext(c)); err != nil {
		return sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "post liked", nil)
}

func (h *PostHandler) unlike(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid post id")
	}

	if err := h.posts.Unlike(requestContext(c), id, userIDFromContext(c)); err != nil {
		return sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "post unliked", nil)
}

func (h *PostHandler) comment(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid post id")
	}

	var payload dto.CommentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	comment, err := h.posts.Comment(requestContext(c), id, userIDFromContext(c), payload)
	if err != nil {
		return sendServiceError(c, err)
	}
	return utils.SendCreated(c, "comment created", comment)
}

func (h *PostHandler) listComments(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid post id")
	}
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}
	offset, err := parseQueryInt(c, "offset")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid offset")
	}

	comments, err := h.posts.ListComments(requestContext(c), id, limit, offset)
	if err != nil {
		return sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "comments", comments)
}

func (h *PostHandler) share(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid post id")
	}

	var payload dto.PostShareRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	post, err := h.posts.Share(requestContext(c), id, userIDFromContext(c), payload)
	if err != nil {
		return sendServiceError(c, err)
	}
	return utils.SendCreated(c, "post shared", post)
}
