package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/daniswara/kumpul-api/internal/dto"
	"github.com/daniswara/kumpul-api/internal/service"
	"github.com/daniswara/kumpul-api/internal/utils"
)

// ModerationHandler exposes user-facing report intake.
type ModerationHandler struct {
	moderation service.ModerationService
	logger     zerolog.Logger
}

// NewModerationHandler constructs a moderation handler instance.
func NewModerationHandler(moderation service.ModerationService, logger zerolog.Logger) *ModerationHandler {
	return &ModerationHandler{
		moderation: moderation,
		logger:     logger.With().Str("component", "moderation_handler").Logger(),
	}
}

// Register binds report routes under the provided router group.
func (h *ModerationHandler) Register(router fiber.Router) {
	router.Post("/", h.fileReport)
}

func (h *ModerationHandler) fileReport(c *fiber.Ctx) error {
	var payload dto.ReportCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	report, err := h.moderation.FileReport(requestContext(c), userIDFromContext(c), payload)
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Msg("report intake failed")
		return sendServiceError(c, err)
	}
	return utils.SendCreated(c, "report filed", report)
}
