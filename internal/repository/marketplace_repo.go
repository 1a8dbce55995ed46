package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/daniswara/kumpul-api/internal/models"
)

// MarketplaceFilter narrows listing queries.
type MarketplaceFilter struct {
	Category string
	Status   models.ListingStatus
	SellerID uint
	Limit    int
	Offset   int
}

// MarketplaceRepository persists marketplace listings.
type MarketplaceRepository interface {
	Create(ctx context.Context, item *models.MarketplaceItem) error
	FindByID(ctx context.Context, id uint) (models.MarketplaceItem, error)
	Update(ctx context.Context, item *models.MarketplaceItem) error
	List(ctx context.Context, filter MarketplaceFilter) ([]models.MarketplaceItem, error)
}

type marketplaceRepository struct {
	db *gorm.DB
}

// NewMarketplaceRepository constructs a repository backed by GORM.
func NewMarketplaceRepository(db *gorm.DB) MarketplaceRepository {
	return &marketplaceRepository{db: db}
}

func (r *marketplaceRepository) Create(ctx context.Context, item *models.MarketplaceItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *marketplaceRepository) FindByID(ctx context.Context, id uint) (models.MarketplaceItem, error) {
	var item models.MarketplaceItem
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return models.MarketplaceItem{}, err
	}
	return item, nil
}

func (r *marketplaceRepository) Update(ctx context.Context, item *models.MarketplaceItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *marketplaceRepository) List(ctx context.Context, filter MarketplaceFilter) ([]models.MarketplaceItem, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := r.db.WithContext(ctx).Model(&models.MarketplaceItem{})
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.SellerID != 0 {
		query = query.Where("seller_id = ?", filter.SellerID)
	}

	var items []models.MarketplaceItem
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
