package handler

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/daniswara/kumpul-api/internal/middleware"
	"github.com/daniswara/kumpul-api/internal/service"
	"github.com/daniswara/kumpul-api/internal/utils"
)

// sendServiceError translates a service failure into the standard envelope,
// expanding validation errors into per-field detail.
func sendServiceError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return utils.SendValidationError(c, validationErrors)
	}
	return utils.SendError(c, statusFromError(err), err.Error())
}

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func parseParamID(c *fiber.Ctx, key string) (uint, error) {
	value := strings.TrimSpace(c.Params(key))
	if value == "" {
		return 0, errors.New("missing id parameter")
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(parsed), nil
}

func userIDFromContext(c *fiber.Ctx) uint {
	if v := c.Locals("user_id"); v != nil {
		if id, ok := v.(uint); ok {
			return id
		}
		if id, ok := v.(int); ok && id >= 0 {
			return uint(id)
		}
	}
	return 0
}

func userRoleFromContext(c *fiber.Ctx) string {
	if v := c.Locals("user_role"); v != nil {
		if role, ok := v.(string); ok {
			return role
		}
	}
	return ""
}

// requestContext carries the correlation identifier into the service layer.
func requestContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	return middleware.ContextWithCorrelation(ctx, middleware.GetCorrelationID(c))
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

// statusFromError maps service sentinels onto HTTP status codes so every
// handler reports domain failures the same way.
func statusFromError(err error) int {
	switch {
	case err == nil:
		return fiber.StatusOK
	case isValidationError(err):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, service.ErrInvalidState):
		return fiber.StatusConflict
	case errors.Is(err, service.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, service.ErrSelfReference):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrInvalidOperation):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	case errors.Is(err, service.ErrMediaTooLarge):
		return fiber.StatusRequestEntityTooLarge
	case errors.Is(err, service.ErrMediaTypeNotAllowed):
		return fiber.StatusUnsupportedMediaType
	default:
		return fiber.StatusInternalServerError
	}
}
