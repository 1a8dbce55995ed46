package service

import (
	"context"
	"sort"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/daniswara/kumpul-api/internal/dto"
	"github.com/daniswara/kumpul-api/internal/models"
	"github.com/daniswara/kumpul-api/internal/repository"
)

type stubMarketplaceRepo struct {
	items  map[uint]*models.MarketplaceItem
	nextID uint
}

func newStubMarketplaceRepo() *stubMarketplaceRepo {
	return &stubMarketplaceRepo{items: map[uint]*models.MarketplaceItem{}, nextID: 1}
}

func (s *stubMarketplaceRepo) Create(ctx context.Context, item *models.MarketplaceItem) error {
	item.ID = s.nextID
	s.nextID++
	copied := *item
	s.items[item.ID] = &copied
	return nil
}

func (s *stubMarketplaceRepo) FindByID(ctx context.Context, id uint) (models.MarketplaceItem, error) {
	if item, ok := s.items[id]; ok {
		return *item, nil
	}
	return models.MarketplaceItem{}, gorm.ErrRecordNotFound
}

func (s *stubMarketplaceRepo) Update(ctx context.Context, item *models.MarketplaceItem) error {
	if _, ok := s.items[item.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *item
	s.items[item.ID] = &copied
	return nil
}

func (s *stubMarketplaceRepo) List(ctx context.Context, filter repository.MarketplaceFilter) ([]models.MarketplaceItem, error) {
	var out []models.MarketplaceItem
	for _, item := range s.items {
		if filter.Category != "" && item.Category != filter.Category {
			continue
		}
		if filter.Status != "" && item.Status != filter.Status {
			continue
		}
		if filter.SellerID != 0 && item.SellerID != filter.SellerID {
			continue
		}
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func newMarketplaceFixture() (MarketplaceService, *stubMarketplaceRepo) {
	repo := newStubMarketplaceRepo()
	svc := NewMarketplaceService(repo, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop())
	return svc, repo
}

func TestCreateListingNormalizes(t *testing.T) {
	svc, _ := newMarketplaceFixture()

	listing, err := svc.Create(context.Background(), 1, dto.ListingCreateRequest{
		Title:      "  Vintage Lamp <script>x</script>",
		PriceCents: 4500,
		Currency:   "eur",
		Category:   "  Furniture ",
	})
	require.NoError(t, err)
	require.Equal(t, "Vintage Lamp", listing.Title)
	require.Equal(t, "EUR", listing.Currency)
	require.Equal(t, "furniture", listing.Category)
	require.Equal(t, string(models.ListingAvailable), listing.Status)

	// Currency defaults when omitted.
	listing, err = svc.Create(context.Background(), 1, dto.ListingCreateRequest{
		Title:      "Bike",
		PriceCents: 12000,
		Category:   "sports",
	})
	require.NoError(t, err)
	require.Equal(t, "USD", listing.Currency)
}

func TestUpdateListingSellerOnly(t *testing.T) {
	svc, _ := newMarketplaceFixture()

	listing, err := svc.Create(context.Background(), 1, dto.ListingCreateRequest{
		Title:      "Couch",
		PriceCents: 9900,
		Category:   "furniture",
	})
	require.NoError(t, err)

	price := int64(8800)
	_, err = svc.Update(context.Background(), listing.ID, 2, dto.ListingUpdateRequest{PriceCents: &price})
	require.ErrorIs(t, err, ErrForbidden)

	updated, err := svc.Update(context.Background(), listing.ID, 1, dto.ListingUpdateRequest{PriceCents: &price})
	require.NoError(t, err)
	require.EqualValues(t, 8800, updated.PriceCents)

	_, err = svc.Update(context.Background(), 99, 1, dto.ListingUpdateRequest{PriceCents: &price})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMarkSoldTransitions(t *testing.T) {
	svc, _ := newMarketplaceFixture()

	listing, err := svc.Create(context.Background(), 1, dto.ListingCreateRequest{
		Title:      "Desk",
		PriceCents: 5000,
		Category:   "furniture",
	})
	require.NoError(t, err)

	_, err = svc.MarkSold(context.Background(), listing.ID, 2)
	require.ErrorIs(t, err, ErrForbidden)

	sold, err := svc.MarkSold(context.Background(), listing.ID, 1)
	require.NoError(t, err)
	require.Equal(t, string(models.ListingSold), sold.Status)

	// Sold is terminal with respect to selling again.
	_, err = svc.MarkSold(context.Background(), listing.ID, 1)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestRemoveListingBlocksFurtherUpdates(t *testing.T) {
	svc, _ := newMarketplaceFixture()

	listing, err := svc.Create(context.Background(), 1, dto.ListingCreateRequest{
		Title:      "Chair",
		PriceCents: 2000,
		Category:   "furniture",
	})
	require.NoError(t, err)

	require.ErrorIs(t, svc.Remove(context.Background(), listing.ID, 2, models.RoleUser), ErrForbidden)

	// Admins may remove listings they do not own.
	require.NoError(t, svc.Remove(context.Background(), listing.ID, 2, models.RoleAdmin))

	title := "Chair v2"
	_, err = svc.Update(context.Background(), listing.ID, 1, dto.ListingUpdateRequest{Title: &title})
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestListFilters(t *testing.T) {
	svc, _ := newMarketplaceFixture()

	for _, seed := range []struct {
		seller   uint
		title    string
		category string
	}{
		{1, "Lamp", "furniture"},
		{1, "Ball", "sports"},
		{2, "Rug", "furniture"},
	} {
		_, err := svc.Create(context.Background(), seed.seller, dto.ListingCreateRequest{
			Title:      seed.title,
			PriceCents: 1000,
			Category:   seed.category,
		})
		require.NoError(t, err)
	}

	furniture, err := svc.List(context.Background(), repository.MarketplaceFilter{Category: "furniture"})
	require.NoError(t, err)
	require.Len(t, furniture, 2)

	mine, err := svc.List(context.Background(), repository.MarketplaceFilter{SellerID: 1})
	require.NoError(t, err)
	require.Len(t, mine, 2)

	available, err := svc.List(context.Background(), repository.MarketplaceFilter{Status: models.ListingAvailable})
	require.NoError(t, err)
	require.Len(t, available, 3)
}
