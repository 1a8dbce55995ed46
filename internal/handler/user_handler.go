package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/daniswara/kumpul-api/internal/dto"
	"github.com/daniswara/kumpul-api/internal/service"
	"github.com/daniswara/kumpul-api/internal/utils"
)

// UserHandler exposes profile and settings endpoints.
type UserHandler struct {
	users  service.UserService
	logger zerolog.Logger
}

// NewUserHandler constructs a user handler instance.
func NewUserHandler(users service.UserService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		logger: logger.With().Str("component", "user_handler").Logger(),
	}
}

// Register binds user routes under the provided router group.
func (h *UserHandler) Register(router fiber.Router) {
	router.Get("/me", h.me)
	router.Put("/me/profile", h.updateProfile)
	router.Get("/me/settings", h.settings)
	router.Put("/me/settings", h.updateSettings)
	router.Get("/:id", h.get)
}

func (h *UserHandler) me(c *fiber.Ctx) error {
	user, err := h.users.Get(requestContext(c), userIDFromContext(c))
	if err != nil {
		return sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "profile", user)
}

func (h *UserHandler) get(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	user, err := h.users.Get(requestContext(c), id)
	if err != nil {
		return sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "profile", user)
}

func (h *UserHandler) updateProfile(c *fiber.Ctx) error {
	var payload dto.ProfileUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.users.UpdateProfile(requestContext(c), userIDFromContext(c), payload)
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Msg("profile update failed")
		return sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "profile updated", user)
}

func (h *UserHandler) settings(c *fiber.Ctx) error {
	settings, err := h.users.GetSettings(requestContext(c), userIDFromContext(c))
	if err != nil {
		return sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "settings", settings)
}

func (h *UserHandler) updateSettings(c *fiber.Ctx) error {
	var payload dto.SettingsUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	settings, err := h.users.UpdateSettings(requestContext(c), userIDFromContext(c), payload)
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Msg("settings update failed")
		return sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "settings updated", settings)
}
