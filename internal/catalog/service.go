package catalog

import (
	"context"

	"storefront-service/internal/analytics"
	"storefront-service/internal/backend"
	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"go.uber.org/zap"
)

// BackendAPI is the slice of the backend client the catalog consumes
type BackendAPI interface {
	GetProducts(ctx context.Context, category string) ([]models.Product, error)
	GetFeaturedProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, productID string) (*models.Product, error)
	GetReviews(ctx context.Context, productID string) ([]models.Review, error)
	CreateReview(ctx context.Context, productID string, review *backend.ReviewRequest) error
	GetAnnouncements(ctx context.Context) ([]models.Announcement, error)
	GetDeliveryCharges(ctx context.Context) ([]models.DeliveryCharge, error)
}

// Service serves the listing and detail views. Listing responses are
// flattened fresh on every call; nothing here is cached or persisted.
type Service struct {
	backend BackendAPI
	events  *analytics.Publisher
	logger  *zap.Logger
}

// NewService creates a catalog service
func NewService(backendAPI BackendAPI, events *analytics.Publisher) *Service {
	return &Service{
		backend: backendAPI,
		events:  events,
		logger:  util.GetLogger(),
	}
}

// ListProducts returns the flattened catalog, optionally filtered by category
func (s *Service) ListProducts(ctx context.Context, category string) ([]models.DisplayProduct, error) {
	ctx, span := util.StartSpan(ctx, "Catalog.ListProducts")
	defer span.End()

	products, err := s.backend.GetProducts(ctx, category)
	if err != nil {
		return nil, err
	}
	return Flatten(products), nil
}

// Featured returns the curated subset, flattened and narrowed to records
// carrying a sale price.
func (s *Service) Featured(ctx context.Context) ([]models.DisplayProduct, error) {
	ctx, span := util.StartSpan(ctx, "Catalog.Featured")
	defer span.End()

	products, err := s.backend.GetFeaturedProducts(ctx)
	if err != nil {
		return nil, err
	}
	return OnSale(Flatten(products)), nil
}

// Offers returns every on-sale record across the catalog, in catalog order
func (s *Service) Offers(ctx context.Context) ([]models.DisplayProduct, error) {
	ctx, span := util.StartSpan(ctx, "Catalog.Offers")
	defer span.End()

	products, err := s.backend.GetProducts(ctx, "")
	if err != nil {
		return nil, err
	}
	return OnSale(Flatten(products)), nil
}

// BestSellers returns the full curated subset, flattened and ordered newest
// first. Unlike Featured it does not narrow to on-sale records.
func (s *Service) BestSellers(ctx context.Context) ([]models.DisplayProduct, error) {
	ctx, span := util.StartSpan(ctx, "Catalog.BestSellers")
	defer span.End()

	products, err := s.backend.GetFeaturedProducts(ctx)
	if err != nil {
		return nil, err
	}

	sellers := Flatten(products)
	SortNewestFirst(sellers)
	return sellers, nil
}

// GetProduct fetches a single product and fires the view-product event
func (s *Service) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "Catalog.GetProduct")
	defer span.End()

	product, err := s.backend.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	s.events.ViewProduct(product)
	return product, nil
}

// GetReviews returns the reviews of a product
func (s *Service) GetReviews(ctx context.Context, productID string) ([]models.Review, error) {
	return s.backend.GetReviews(ctx, productID)
}

// AddReview submits a product review
func (s *Service) AddReview(ctx context.Context, productID string, review *backend.ReviewRequest) error {
	return s.backend.CreateReview(ctx, productID, review)
}

// Announcements returns the active banner entries
func (s *Service) Announcements(ctx context.Context) ([]models.Announcement, error) {
	announcements, err := s.backend.GetAnnouncements(ctx)
	if err != nil {
		return nil, err
	}

	active := make([]models.Announcement, 0, len(announcements))
	for _, a := range announcements {
		if a.Active {
			active = append(active, a)
		}
	}
	return active, nil
}

// DeliveryCharges returns the per-city shipping fees
func (s *Service) DeliveryCharges(ctx context.Context) ([]models.DeliveryCharge, error) {
	return s.backend.GetDeliveryCharges(ctx)
}
