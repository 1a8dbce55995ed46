package dto

import (
	"time"

	"github.com/daniswara/kumpul-api/internal/models"
)

// ListingCreateRequest publishes a marketplace listing.
type ListingCreateRequest struct {
	Title       string `json:"title" validate:"required,min=2,max=255"`
	Description string `json:"description" validate:"omitempty,max=8000"`
	PriceCents  int64  `json:"price_cents" validate:"required,min=0"`
	Currency    string `json:"currency" validate:"omitempty,len=3"`
	Category    string `json:"category" validate:"required,min=2,max=64"`
	ImageURL    string `json:"image_url" validate:"omitempty,url,max=512"`
}

// ListingUpdateRequest mutates an owned listing. Nil fields stay untouched.
type ListingUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=2,max=255"`
	Description *string `json:"description" validate:"omitempty,max=8000"`
	PriceCents  *int64  `json:"price_cents" validate:"omitempty,min=0"`
	Category    *string `json:"category" validate:"omitempty,min=2,max=64"`
	ImageURL    *string `json:"image_url" validate:"omitempty,url,max=512"`
}

// ListingResponse is the serialized marketplace listing.
type ListingResponse struct {
	ID          uint      `json:"id"`
	SellerID    uint      `json:"seller_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	PriceCents  int64     `json:"price_cents"`
	Currency    string    `json:"currency"`
	Category    string    `json:"category"`
	ImageURL    string    `json:"image_url,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewListingResponse converts a model into a DTO.
func NewListingResponse(item models.MarketplaceItem) ListingResponse {
	return ListingResponse{
		ID:          item.ID,
		SellerID:    item.SellerID,
		Title:       item.Title,
		Description: item.Description,
		PriceCents:  item.PriceCents,
		Currency:    item.Currency,
		Category:    item.Category,
		ImageURL:    item.ImageURL,
		Status:      string(item.Status),
		CreatedAt:   item.CreatedAt,
	}
}

// NewListingResponseSlice converts a slice of models into DTOs.
func NewListingResponseSlice(items []models.MarketplaceItem) []ListingResponse {
	out := make([]ListingResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewListingResponse(item))
	}
	return out
}
