package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/daniswara/kumpul-api/internal/dto"
	"github.com/daniswara/kumpul-api/internal/models"
	"github.com/daniswara/kumpul-api/internal/repository"
)

// MarketplaceService manages seller listings.
type MarketplaceService interface {
	Create(ctx context.Context, sellerID uint, payload dto.ListingCreateRequest) (dto.ListingResponse, error)
	Get(ctx context.Context, id uint) (dto.ListingResponse, error)
	List(ctx context.Context, filter repository.MarketplaceFilter) ([]dto.ListingResponse, error)
	Update(ctx context.Context, id, actorID uint, payload dto.ListingUpdateRequest) (dto.ListingResponse, error)
	MarkSold(ctx context.Context, id, actorID uint) (dto.ListingResponse, error)
	Remove(ctx context.Context, id, actorID uint, actorRole models.UserRole) error
}

type marketplaceService struct {
	listings  repository.MarketplaceRepository
	validator *validator.Validate
	logger    zerolog.Logger
	sanitizer *bluemonday.Policy
}

// NewMarketplaceService constructs the marketplace service.
func NewMarketplaceService(listings repository.MarketplaceRepository, validate *validator.Validate, logger zerolog.Logger) MarketplaceService {
	return &marketplaceService{
		listings:  listings,
		validator: validate,
		logger:    logger.With().Str("component", "marketplace_service").Logger(),
		sanitizer: bluemonday.UGCPolicy(),
	}
}

func (s *marketplaceService) Create(ctx context.Context, sellerID uint, payload dto.ListingCreateRequest) (dto.ListingResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ListingResponse{}, err
	}

	currency := strings.ToUpper(strings.TrimSpace(payload.Currency))
	if currency == "" {
		currency = "USD"
	}

	item := models.MarketplaceItem{
		SellerID:    sellerID,
		Title:       strings.TrimSpace(s.sanitizer.Sanitize(payload.Title)),
		Description: strings.TrimSpace(s.sanitizer.Sanitize(payload.Description)),
		PriceCents:  payload.PriceCents,
		Currency:    currency,
		Category:    strings.ToLower(strings.TrimSpace(payload.Category)),
		ImageURL:    payload.ImageURL,
		Status:      models.ListingAvailable,
	}

	if item.Title == "" {
		return dto.ListingResponse{}, errors.New("listing title empty after sanitization")
	}

	if err := s.listings.Create(ctx, &item); err != nil {
		return dto.ListingResponse{}, err
	}

	return dto.NewListingResponse(item), nil
}

func (s *marketplaceService) Get(ctx context.Context, id uint) (dto.ListingResponse, error) {
	item, err := s.findListing(ctx, id)
	if err != nil {
		return dto.ListingResponse{}, err
	}
	return dto.NewListingResponse(item), nil
}

func (s *marketplaceService) List(ctx context.Context, filter repository.MarketplaceFilter) ([]dto.ListingResponse, error) {
	items, err := s.listings.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return dto.NewListingResponseSlice(items), nil
}

func (s *marketplaceService) Update(ctx context.Context, id, actorID uint, payload dto.ListingUpdateRequest) (dto.ListingResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ListingResponse{}, err
	}

	item, err := s.findListing(ctx, id)
	if err != nil {
		return dto.ListingResponse{}, err
	}

	if item.SellerID != actorID {
		return dto.ListingResponse{}, ErrForbidden
	}
	if item.Status == models.ListingRemoved {
		return dto.ListingResponse{}, ErrInvalidState
	}

	if payload.Title != nil {
		item.Title = strings.TrimSpace(s.sanitizer.Sanitize(*payload.Title))
	}
	if payload.Description != nil {
		item.Description = strings.TrimSpace(s.sanitizer.Sanitize(*payload.Description))
	}
	if payload.PriceCents != nil {
		item.PriceCents = *payload.PriceCents
	}
	if payload.Category != nil {
		item.Category = strings.ToLower(strings.TrimSpace(*payload.Category))
	}
	if payload.ImageURL != nil {
		item.ImageURL = *payload.ImageURL
	}

	if err := s.listings.Update(ctx, &item); err != nil {
		return dto.ListingResponse{}, err
	}

	return dto.NewListingResponse(item), nil
}

func (s *marketplaceService) MarkSold(ctx context.Context, id, actorID uint) (dto.ListingResponse, error) {
	item, err := s.findListing(ctx, id)
	if err != nil {
		return dto.ListingResponse{}, err
	}

	if item.SellerID != actorID {
		return dto.ListingResponse{}, ErrForbidden
	}
	if item.Status != models.ListingAvailable {
		return dto.ListingResponse{}, ErrInvalidState
	}

	item.Status = models.ListingSold
	if err := s.listings.Update(ctx, &item); err != nil {
		return dto.ListingResponse{}, err
	}

	return dto.NewListingResponse(item), nil
}

// Remove flips the listing to removed. Sellers remove their own listings;
// admins may remove anything.
func (s *marketplaceService) Remove(ctx context.Context, id, actorID uint, actorRole models.UserRole) error {
	item, err := s.findListing(ctx, id)
	if err != nil {
		return err
	}

	if item.SellerID != actorID && actorRole != models.RoleAdmin {
		return ErrForbidden
	}

	item.Status = models.ListingRemoved
	return s.listings.Update(ctx, &item)
}

func (s *marketplaceService) findListing(ctx context.Context, id uint) (models.MarketplaceItem, error) {
	item, err := s.listings.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.MarketplaceItem{}, ErrNotFound
		}
		return models.MarketplaceItem{}, err
	}
	return item, nil
}
