package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/daniswara/kumpul-api/internal/dto"
	"github.com/daniswara/kumpul-api/internal/service"
	"github.com/daniswara/kumpul-api/internal/utils"
)

// AuthHandler exposes account registration and login.
type AuthHandler struct {
	users  service.UserService
	logger zerolog.Logger
}

// NewAuthHandler constructs an auth handler instance.
func NewAuthHandler(users service.UserService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		users:  users,
		logger: logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register binds auth routes under the provided router group.
func (h *AuthHandler) Register(router fiber.Router) {
	router.Post("/register", h.register)
	router.Post("/login", h.login)
}

func (h *AuthHandler) register(c *fiber.Ctx) error {
	var payload dto.RegisterRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	auth, err := h.users.Register(requestContext(c), payload)
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Msg("registration failed")
		return sendServiceError(c, err)
	}

	return utils.SendCreated(c, "account created", auth)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	auth, err := h.users.Login(requestContext(c), payload)
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Msg("login failed")
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "authenticated", auth)
}
