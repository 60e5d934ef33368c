package cart

import (
	"context"
	"errors"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"go.uber.org/zap"
)

// Store owns all cart mutations. Every transition that leaves the cart
// non-empty rewrites storage with a refreshed expiry; every transition to an
// empty cart removes the stored record entirely, so no stale empty-cart
// record survives.
type Store struct {
	storage Storage
	ttl     time.Duration
	logger  *zap.Logger
}

// NewStore creates a cart store with the given rolling expiry
func NewStore(storage Storage, ttl time.Duration) *Store {
	return &Store{
		storage: storage,
		ttl:     ttl,
		logger:  util.GetLogger(),
	}
}

// Load returns the current items of a cart. A missing record yields an empty
// cart. A record without an expiry is a legacy cart and loads as-is. An
// expired record is discarded from storage and yields an empty cart.
func (s *Store) Load(ctx context.Context, cartID string) ([]models.CartItem, error) {
	ctx, span := util.StartSpan(ctx, "CartStore.Load")
	defer span.End()

	record, err := s.storage.Load(ctx, cartID)
	if errors.Is(err, ErrNotFound) {
		return []models.CartItem{}, nil
	}
	if err != nil {
		return nil, err
	}

	if record.Expired(time.Now()) {
		util.CartsExpiredTotal.Inc()
		s.logger.Info("Discarding expired cart", zap.String("cart_id", cartID))
		if err := s.storage.Delete(ctx, cartID); err != nil {
			return nil, err
		}
		return []models.CartItem{}, nil
	}

	if record.Items == nil {
		return []models.CartItem{}, nil
	}
	return record.Items, nil
}

// AddItem resolves the variation and size on the product and appends a line
// item, merging with an existing line for the same product, variation and
// size by summing quantities. Unresolvable input is logged and the cart is
// left untouched; callers are expected to have validated stock availability
// already, so no stock check happens here.
func (s *Store) AddItem(ctx context.Context, cartID string, product *models.Product, variationID, sizeID string, qty int) error {
	ctx, span := util.StartSpan(ctx, "CartStore.AddItem")
	defer span.End()

	if product == nil || variationID == "" || sizeID == "" || qty <= 0 {
		s.logger.Error("Cannot add to cart: missing data",
			zap.String("cart_id", cartID),
			zap.String("variation_id", variationID),
			zap.String("size_id", sizeID),
			zap.Int("qty", qty))
		return nil
	}

	var variation *models.Variation
	for i := range product.Variations {
		if product.Variations[i].ID == variationID {
			variation = &product.Variations[i]
			break
		}
	}
	if variation == nil {
		s.logger.Error("Cannot find selected variation",
			zap.String("cart_id", cartID),
			zap.String("product_id", product.ID),
			zap.String("variation_id", variationID))
		return nil
	}

	var size *models.Size
	for i := range variation.Sizes {
		if variation.Sizes[i].ID == sizeID {
			size = &variation.Sizes[i]
			break
		}
	}
	if size == nil {
		s.logger.Error("Cannot find selected size",
			zap.String("cart_id", cartID),
			zap.String("product_id", product.ID),
			zap.String("size_id", sizeID))
		return nil
	}

	newItem := models.CartItem{
		ProductID:   product.ID,
		VariationID: variation.ID,
		SizeID:      size.ID,
		Name:        product.Name,
		Price:       product.UnitPrice(),
		Color:       variation.Color,
		Size:        size.Label,
		Image:       firstImage(variation, product),
		Quantity:    qty,
	}

	items, err := s.Load(ctx, cartID)
	if err != nil {
		return err
	}

	merged := false
	for i := range items {
		if sameLine(&items[i], newItem.ProductID, newItem.VariationID, newItem.SizeID) {
			items[i].Quantity += qty
			merged = true
			break
		}
	}
	if !merged {
		items = append(items, newItem)
	}

	util.CartItemsAddedTotal.Inc()
	util.CartMutationsTotal.WithLabelValues("add").Inc()
	return s.persist(ctx, cartID, items)
}

// UpdateQuantity replaces the quantity of the matching line item. The store
// does not clamp; callers reject quantities below 1 before invoking it.
func (s *Store) UpdateQuantity(ctx context.Context, cartID, productID, variationID, sizeID string, qty int) error {
	ctx, span := util.StartSpan(ctx, "CartStore.UpdateQuantity")
	defer span.End()

	items, err := s.Load(ctx, cartID)
	if err != nil {
		return err
	}

	for i := range items {
		if sameLine(&items[i], productID, variationID, sizeID) {
			items[i].Quantity = qty
		}
	}

	util.CartMutationsTotal.WithLabelValues("update").Inc()
	return s.persist(ctx, cartID, items)
}

// RemoveItem filters out the matching line item
func (s *Store) RemoveItem(ctx context.Context, cartID, productID, variationID, sizeID string) error {
	ctx, span := util.StartSpan(ctx, "CartStore.RemoveItem")
	defer span.End()

	items, err := s.Load(ctx, cartID)
	if err != nil {
		return err
	}

	kept := items[:0]
	for i := range items {
		if !sameLine(&items[i], productID, variationID, sizeID) {
			kept = append(kept, items[i])
		}
	}

	util.CartMutationsTotal.WithLabelValues("remove").Inc()
	return s.persist(ctx, cartID, kept)
}

// Clear empties the cart and removes the stored record immediately
func (s *Store) Clear(ctx context.Context, cartID string) error {
	ctx, span := util.StartSpan(ctx, "CartStore.Clear")
	defer span.End()

	util.CartMutationsTotal.WithLabelValues("clear").Inc()
	return s.storage.Delete(ctx, cartID)
}

func (s *Store) persist(ctx context.Context, cartID string, items []models.CartItem) error {
	if len(items) == 0 {
		return s.storage.Delete(ctx, cartID)
	}

	record := &models.CartRecord{
		Items:  items,
		Expiry: time.Now().Add(s.ttl).UnixMilli(),
	}
	return s.storage.Save(ctx, cartID, record)
}

// sameLine matches on (product, variation, size). The size id alone would be
// unique in practice because sizes are scoped per variation, but the wider
// key keeps two colorways of one product from ever merging.
func sameLine(item *models.CartItem, productID, variationID, sizeID string) bool {
	return item.ProductID == productID &&
		item.VariationID == variationID &&
		item.SizeID == sizeID
}

func firstImage(v *models.Variation, p *models.Product) string {
	if len(v.Images) > 0 {
		return v.Images[0].URL
	}
	if len(p.Images) > 0 {
		return p.Images[0].URL
	}
	return ""
}
