package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/daniswara/kumpul-api/internal/dto"
	"github.com/daniswara/kumpul-api/internal/models"
	"github.com/daniswara/kumpul-api/internal/repository"
	"github.com/daniswara/kumpul-api/internal/service"
	"github.com/daniswara/kumpul-api/internal/utils"
)

// MarketplaceHandler exposes listing endpoints.
type MarketplaceHandler struct {
	listings service.MarketplaceService
	logger   zerolog.Logger
}

// NewMarketplaceHandler constructs a marketplace handler instance.
func NewMarketplaceHandler(listings service.MarketplaceService, logger zerolog.Logger) *MarketplaceHandler {
	return &MarketplaceHandler{
		listings: listings,
		logger:   logger.With().Str("component", "marketplace_handler").Logger(),
	}
}

// Register binds marketplace routes under the provided router group.
func (h *MarketplaceHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Post("/", h.create)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Post("/:id/sold", h.markSold)
	router.Delete("/:id", h.remove)
}

func (h *MarketplaceHandler) list(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}
	offset, err := parseQueryInt(c, "offset")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid offset")
	}

	filter := repository.MarketplaceFilter{
		Category: strings.TrimSpace(c.Query("category")),
		Status:   models.ListingStatus(strings.TrimSpace(c.Query("status"))),
		Limit:    limit,
		Offset:   offset,
	}
	if sellerRaw := c.Query("seller_id"); sellerRaw != "" {
		sellerID, err := parseQueryInt(c, "seller_id")
		if err != nil || sellerID < 0 {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid seller id")
		}
		filter.SellerID = uint(sellerID)
	}

	items, err := h.listings.List(requestContext(c), filter)
	if err != nil {
		return sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "listings", items)
}

func (h *MarketplaceHandler) create(c *fiber.Ctx) error {
	var payload dto.ListingCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	item, err := h.listings.Create(requestContext(c), userIDFromContext(c), payload)
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Msg("listing creation failed")
		return sendServiceError(c, err)
	}
	return utils.SendCreated(c, "listing created", item)
}

func (h *MarketplaceHandler) get(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid listing id")
	}

	item, err := h.listings.Get(requestContext(c), id)
	if err != nil {
		return sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "listing", item)
}

func (h *MarketplaceHandler) update(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid listing id")
	}

	var payload dto.ListingUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	item, err := h.listings.Update(requestContext(c), id, userIDFromContext(c), payload)
	if err != nil {
		return sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "listing updated", item)
}

func (h *MarketplaceHandler) markSold(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid listing id")
	}

	item, err := h.listings.MarkSold(requestContext(c), id, userIDFromContext(c))
	if err != nil {
		return sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "listing marked sold", item)
}

func (h *MarketplaceHandler) remove(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid listing id")
	}

	role := models.UserRole(userRoleFromContext(c))
	if err := h.listings.Remove(requestContext(c), id, userIDFromContext(c), role); err != nil {
		return sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "listing removed", nil)
}
