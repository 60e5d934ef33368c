package catalog

import (
	"context"
	"testing"
	"time"

	"storefront-service/internal/analytics"
	"storefront-service/internal/backend"
	"storefront-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	products      []models.Product
	featured      []models.Product
	announcements []models.Announcement
}

func (f *fakeBackend) GetProducts(_ context.Context, _ string) ([]models.Product, error) {
	return f.products, nil
}

func (f *fakeBackend) GetFeaturedProducts(_ context.Context) ([]models.Product, error) {
	return f.featured, nil
}

func (f *fakeBackend) GetProduct(_ context.Context, _ string) (*models.Product, error) {
	return &f.products[0], nil
}

func (f *fakeBackend) GetReviews(_ context.Context, _ string) ([]models.Review, error) {
	return nil, nil
}

func (f *fakeBackend) CreateReview(_ context.Context, _ string, _ *backend.ReviewRequest) error {
	return nil
}

func (f *fakeBackend) GetAnnouncements(_ context.Context) ([]models.Announcement, error) {
	return f.announcements, nil
}

func (f *fakeBackend) GetDeliveryCharges(_ context.Context) ([]models.DeliveryCharge, error) {
	return nil, nil
}

func newCatalogService(fake *fakeBackend) *Service {
	return NewService(fake, analytics.NewPublisher(analytics.NopSink{}, "EGP"))
}

func catalogFixture() []models.Product {
	return []models.Product{
		{
			ID:            "old-sale",
			Name:          "Last Season Hoodie",
			OriginalPrice: 500,
			SalePrice:     350,
			CreatedAt:     time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:            "new-full",
			Name:          "New Drop Tee",
			OriginalPrice: 300,
			CreatedAt:     time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:            "new-sale",
			Name:          "Summer Shorts",
			OriginalPrice: 400,
			SalePrice:     280,
			CreatedAt:     time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		},
	}
}

func TestFeaturedFiltersToOnSale(t *testing.T) {
	svc := newCatalogService(&fakeBackend{featured: catalogFixture()})

	products, err := svc.Featured(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)

	// on-sale subset in backend order, no re-sort
	assert.Equal(t, "old-sale", products[0].ID)
	assert.Equal(t, "new-sale", products[1].ID)
}

func TestBestSellersSortsNewestFirstWithoutFiltering(t *testing.T) {
	svc := newCatalogService(&fakeBackend{featured: catalogFixture()})

	products, err := svc.BestSellers(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 3, "full-price records stay in the best sellers view")

	assert.Equal(t, "new-full", products[0].ID)
	assert.Equal(t, "new-sale", products[1].ID)
	assert.Equal(t, "old-sale", products[2].ID)
}

func TestOffersKeepsCatalogOrder(t *testing.T) {
	svc := newCatalogService(&fakeBackend{products: catalogFixture()})

	products, err := svc.Offers(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)

	// the older sale item comes first because the catalog served it first
	assert.Equal(t, "old-sale", products[0].ID)
	assert.Equal(t, "new-sale", products[1].ID)
}

func TestAnnouncementsFiltersInactive(t *testing.T) {
	svc := newCatalogService(&fakeBackend{announcements: []models.Announcement{
		{Active: true, Text: "Free shipping over 1000 EGP"},
		{Active: false, Text: "Eid sale ended"},
		{Active: true, Text: "New summer drop"},
	}})

	announcements, err := svc.Announcements(context.Background())
	require.NoError(t, err)
	require.Len(t, announcements, 2)
	assert.Equal(t, "Free shipping over 1000 EGP", announcements[0].Text)
	assert.Equal(t, "New summer drop", announcements[1].Text)
}
