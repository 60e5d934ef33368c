package cart

import (
	"context"
	"errors"
	"sync"

	"storefront-service/internal/models"
)

// ErrNotFound is returned when no cart record exists for an id
var ErrNotFound = errors.New("cart not found")

// Storage persists cart records keyed by cart id. The record's logical
// expiry lives inside the payload; implementations only store and delete.
type Storage interface {
	Load(ctx context.Context, cartID string) (*models.CartRecord, error)
	Save(ctx context.Context, cartID string, record *models.CartRecord) error
	Delete(ctx context.Context, cartID string) error
}

// MemoryStorage is an in-process Storage used in tests and local development
type MemoryStorage struct {
	mu      sync.RWMutex
	records map[string]models.CartRecord
}

// NewMemoryStorage creates an empty in-memory storage
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{records: make(map[string]models.CartRecord)}
}

func (m *MemoryStorage) Load(_ context.Context, cartID string) (*models.CartRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.records[cartID]
	if !ok {
		return nil, ErrNotFound
	}

	items := make([]models.CartItem, len(record.Items))
	copy(items, record.Items)
	return &models.CartRecord{Items: items, Expiry: record.Expiry}, nil
}

func (m *MemoryStorage) Save(_ context.Context, cartID string, record *models.CartRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := make([]models.CartItem, len(record.Items))
	copy(items, record.Items)
	m.records[cartID] = models.CartRecord{Items: items, Expiry: record.Expiry}
	return nil
}

func (m *MemoryStorage) Delete(_ context.Context, cartID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.records, cartID)
	return nil
}

// Has reports whether a record exists, for tests asserting the persistence
// invariant.
func (m *MemoryStorage) Has(cartID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.records[cartID]
	return ok
}
