package handler

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/daniswara/kumpul-api/internal/dto"
	"github.com/daniswara/kumpul-api/internal/models"
	"github.com/daniswara/kumpul-api/internal/service"
	"github.com/daniswara/kumpul-api/internal/utils"
)

// AdminHandler exposes the dashboard, account controls and the report queue.
type AdminHandler struct {
	analytics  service.AdminAnalyticsService
	users      service.UserService
	moderation service.ModerationService
	logger     zerolog.Logger
}

// NewAdminHandler constructs an admin handler instance.
func NewAdminHandler(analytics service.AdminAnalyticsService, users service.UserService, moderation service.ModerationService, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		analytics:  analytics,
		users:      users,
		moderation: moderation,
		logger:     logger.With().Str("component", "admin_handler").Logger(),
	}
}

// Register binds admin routes under the provided router group.
func (h *AdminHandler) Register(router fiber.Router) {
	router.Get("/dashboard", h.dashboard)
	router.Post("/users/:id/suspend", h.suspend)
	router.Post("/users/:id/reactivate", h.reactivate)
	router.Get("/reports", h.listReports)
	router.Get("/reports/:id", h.getReport)
	router.Post("/reports/:id/resolve", h.resolveReport)
	router.Post("/reports/:id/escalate", h.escalateReport)
	router.Get("/actions", h.listActions)
}

func (h *AdminHandler) dashboard(c *fiber.Ctx) error {
	days, err := parseQueryInt(c, "days")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid days")
	}

	dashboard, err := h.analytics.Dashboard(requestContext(c), days)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("dashboard aggregation failed")
		return sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "dashboard", dashboard)
}

func (h *AdminHandler) suspend(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	if err := h.users.Suspend(requestContext(c), id); err != nil {
		return sendServiceError(c, err)
	}

	requestLogger(h.logger, c).Info().Uint("user_id", id).Uint("admin_id", userIDFromContext(c)).Msg("account suspended")
	return utils.SendSuccess(c, "account suspended", nil)
}

func (h *AdminHandler) reactivate(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	if err := h.users.Reactivate(requestContext(c), id); err != nil {
		return sendServiceError(c, err)
	}

	requestLogger(h.logger, c).Info().Uint("user_id", id).Uint("admin_id", userIDFromContext(c)).Msg("account reactivated")
	return utils.SendSuccess(c, "account reactivated", nil)
}

func (h *AdminHandler) listReports(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}
	offset, err := parseQueryInt(c, "offset")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid offset")
	}

	status := models.ReportStatus(strings.TrimSpace(c.Query("status")))
	reports, err := h.moderation.ListReports(requestContext(c), status, limit, offset)
	if err != nil {
		return sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "reports", reports)
}

func (h *AdminHandler) getReport(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid report id")
	}

	report, err := h.moderation.GetReport(requestContext(c), id)
	if err != nil {
		return sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "report", report)
}

func (h *AdminHandler) resolveReport(c *fiber.Ctx) error {
	return h.decideReport(c, h.moderation.Resolve, "report resolved")
}

func (h *AdminHandler) escalateReport(c *fiber.Ctx) error {
	return h.decideReport(c, h.moderation.Escalate, "report escalated")
}

type reportDecision func(ctx context.Context, reportID, adminID uint, payload dto.ReportDecisionRequest) (dto.ReportResponse, error)

func (h *AdminHandler) decideReport(c *fiber.Ctx, decide reportDecision, message string) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid report id")
	}

	var payload dto.ReportDecisionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	report, err := decide(requestContext(c), id, userIDFromContext(c), payload)
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Uint("report_id", id).Msg("report decision failed")
		return sendServiceError(c, err)
	}
	return utils.SendSuccess(c, message, report)
}

func (h *AdminHandler) listActions(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}
	offset, err := parseQueryInt(c, "offset")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid offset")
	}

	actions, err := h.moderation.ListAdminActions(requestContext(c), limit, offset)
	if err != nil {
		return sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "admin actions", actions)
}
