package cart

import (
	"context"
	"testing"
	"time"

	"storefront-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProduct() *models.Product {
	return &models.Product{
		ID:            "p1",
		Name:          "Oversized Hoodie",
		OriginalPrice: 500,
		SalePrice:     400,
		Variations: []models.Variation{
			{
				ID:     "v1",
				Color:  "black",
				Images: []models.Image{{URL: "black.jpg"}},
				Sizes: []models.Size{
					{ID: "s1", Label: "M", Quantity: 3},
					{ID: "s2", Label: "L", Quantity: 1},
				},
			},
		},
	}
}

func newTestStore() (*Store, *MemoryStorage) {
	storage := NewMemoryStorage()
	return NewStore(storage, 24*time.Hour), storage
}

func TestLoadMissingCartIsEmpty(t *testing.T) {
	store, _ := newTestStore()

	items, err := store.Load(context.Background(), "c1")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestLoadExpiredCartDiscardsRecord(t *testing.T) {
	store, storage := newTestStore()
	ctx := context.Background()

	expired := &models.CartRecord{
		Items:  []models.CartItem{{ProductID: "p1", VariationID: "v1", SizeID: "s1", Quantity: 1}},
		Expiry: time.Now().Add(-time.Hour).UnixMilli(),
	}
	require.NoError(t, storage.Save(ctx, "c1", expired))

	items, err := store.Load(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.False(t, storage.Has("c1"), "expired record must be removed from storage")
}

func TestLoadLegacyCartWithoutExpiry(t *testing.T) {
	store, storage := newTestStore()
	ctx := context.Background()

	legacy := &models.CartRecord{
		Items: []models.CartItem{{ProductID: "p1", VariationID: "v1", SizeID: "s1", Quantity: 2}},
	}
	require.NoError(t, storage.Save(ctx, "c1", legacy))

	items, err := store.Load(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.True(t, storage.Has("c1"))
}

func TestAddItemBuildsLineFromVariationAndSize(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	require.NoError(t, store.AddItem(ctx, "c1", testProduct(), "v1", "s1", 1))

	items, err := store.Load(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, "p1", item.ProductID)
	assert.Equal(t, "v1", item.VariationID)
	assert.Equal(t, "s1", item.SizeID)
	assert.Equal(t, "black", item.Color)
	assert.Equal(t, "M", item.Size)
	assert.Equal(t, "black.jpg", item.Image)
	assert.Equal(t, 400.0, item.Price, "sale price wins over original price")
}

func TestAddItemUsesOriginalPriceWithoutSale(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	product := testProduct()
	product.SalePrice = 0
	require.NoError(t, store.AddItem(ctx, "c1", product, "v1", "s1", 1))

	items, err := store.Load(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 500.0, items[0].Price)
}

func TestAddItemMergesDuplicateLines(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	require.NoError(t, store.AddItem(ctx, "c1", testProduct(), "v1", "s1", 2))
	require.NoError(t, store.AddItem(ctx, "c1", testProduct(), "v1", "s1", 3))

	items, err := store.Load(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, items, 1, "same product and size must merge into one line")
	assert.Equal(t, 5, items[0].Quantity)
}

func TestAddItemDifferentSizesStaySeparate(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	require.NoError(t, store.AddItem(ctx, "c1", testProduct(), "v1", "s1", 1))
	require.NoError(t, store.AddItem(ctx, "c1", testProduct(), "v1", "s2", 1))

	items, err := store.Load(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestAddItemUnknownVariationIsSilentNoop(t *testing.T) {
	store, storage := newTestStore()
	ctx := context.Background()

	require.NoError(t, store.AddItem(ctx, "c1", testProduct(), "missing", "s1", 1))
	assert.False(t, storage.Has("c1"), "nothing must be persisted")

	require.NoError(t, store.AddItem(ctx, "c1", testProduct(), "v1", "missing", 1))
	assert.False(t, storage.Has("c1"))
}

func TestAddItemMissingInputIsSilentNoop(t *testing.T) {
	store, storage := newTestStore()
	ctx := context.Background()

	require.NoError(t, store.AddItem(ctx, "c1", nil, "v1", "s1", 1))
	require.NoError(t, store.AddItem(ctx, "c1", testProduct(), "", "s1", 1))
	require.NoError(t, store.AddItem(ctx, "c1", testProduct(), "v1", "s1", 0))
	assert.False(t, storage.Has("c1"))
}

func TestUpdateQuantityReplacesValue(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	require.NoError(t, store.AddItem(ctx, "c1", testProduct(), "v1", "s1", 1))
	require.NoError(t, store.UpdateQuantity(ctx, "c1", "p1", "v1", "s1", 4))

	items, err := store.Load(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 4, items[0].Quantity)
}

func TestRemoveLastItemDeletesRecord(t *testing.T) {
	store, storage := newTestStore()
	ctx := context.Background()

	require.NoError(t, store.AddItem(ctx, "c1", testProduct(), "v1", "s1", 1))
	require.True(t, storage.Has("c1"))

	require.NoError(t, store.RemoveItem(ctx, "c1", "p1", "v1", "s1"))

	assert.False(t, storage.Has("c1"), "empty cart must not leave a stored record")
	items, err := store.Load(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestRemoveKeepsOtherLines(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	require.NoError(t, store.AddItem(ctx, "c1", testProduct(), "v1", "s1", 1))
	require.NoError(t, store.AddItem(ctx, "c1", testProduct(), "v1", "s2", 1))
	require.NoError(t, store.RemoveItem(ctx, "c1", "p1", "v1", "s1"))

	items, err := store.Load(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "s2", items[0].SizeID)
}

func TestClearRemovesRecordImmediately(t *testing.T) {
	store, storage := newTestStore()
	ctx := context.Background()

	require.NoError(t, store.AddItem(ctx, "c1", testProduct(), "v1", "s1", 1))
	require.NoError(t, store.Clear(ctx, "c1"))
	assert.False(t, storage.Has("c1"))
}

func TestMutationRefreshesExpiry(t *testing.T) {
	store, storage := newTestStore()
	ctx := context.Background()

	require.NoError(t, store.AddItem(ctx, "c1", testProduct(), "v1", "s1", 1))

	record, err := storage.Load(ctx, "c1")
	require.NoError(t, err)
	assert.Greater(t, record.Expiry, time.Now().Add(23*time.Hour).UnixMilli())
	assert.LessOrEqual(t, record.Expiry, time.Now().Add(24*time.Hour).UnixMilli())
}
