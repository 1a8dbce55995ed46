package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/daniswara/kumpul-api/internal/service"
	"github.com/daniswara/kumpul-api/internal/utils"
)

// UploadHandler accepts media uploads for avatars, posts and listings.
type UploadHandler struct {
	media  service.MediaService
	logger zerolog.Logger
}

// NewUploadHandler constructs an upload handler instance.
func NewUploadHandler(media service.MediaService, logger zerolog.Logger) *UploadHandler {
	return &UploadHandler{
		media:  media,
		logger: logger.With().Str("component", "upload_handler").Logger(),
	}
}

// Register binds upload routes under the provided router group.
func (h *UploadHandler) Register(router fiber.Router) {
	router.Post("/", h.upload)
}

func (h *UploadHandler) upload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	result, err := h.media.Upload(requestContext(c), userIDFromContext(c), file)
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Msg("media upload rejected")
		return sendServiceError(c, err)
	}
	return utils.SendCreated(c, "media stored", result)
}
