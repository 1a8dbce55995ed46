package models

import "time"

// ListingStatus enumerates marketplace listing lifecycle states.
type ListingStatus string

const (
	ListingAvailable ListingStatus = "available"
	ListingSold      ListingStatus = "sold"
	ListingRemoved   ListingStatus = "removed"
)

// MarketplaceItem is a listing offered by a seller. Removal flips Status
// rather than deleting the row so references stay resolvable.
type MarketplaceItem struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	SellerID    uint          `gorm:"not null;index" json:"seller_id"`
	Title       string        `gorm:"size:255;not null" json:"title"`
	Description string        `gorm:"type:text" json:"description"`
	PriceCents  int64         `gorm:"not null" json:"price_cents"`
	Currency    string        `gorm:"size:8;not null;default:USD" json:"currency"`
	Category    string        `gorm:"size:64;index" json:"category"`
	ImageURL    string        `gorm:"size:512" json:"image_url,omitempty"`
	Status      ListingStatus `gorm:"size:16;not null;default:available" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
