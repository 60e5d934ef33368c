package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront-service/internal/models"

	"github.com/go-redis/redis/v8"
)

// cartRetention is a housekeeping TTL on the Redis key so abandoned carts do
// not accumulate forever. The logical 24-hour expiry lives inside the record
// and is enforced by the Store on load.
const cartRetention = 7 * 24 * time.Hour

// RedisStorage persists cart records as JSON blobs in Redis
type RedisStorage struct {
	rdb *redis.Client
}

// NewRedisStorage creates a Redis-backed cart storage
func NewRedisStorage(addr, password string, db int) (*RedisStorage, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisStorage{rdb: rdb}, nil
}

// Close closes the Redis connection
func (r *RedisStorage) Close() error {
	return r.rdb.Close()
}

func cartKey(cartID string) string {
	return fmt.Sprintf("cart:%s", cartID)
}

func (r *RedisStorage) Load(ctx context.Context, cartID string) (*models.CartRecord, error) {
	data, err := r.rdb.Get(ctx, cartKey(cartID)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	var record models.CartRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to decode cart record: %w", err)
	}
	return &record, nil
}

func (r *RedisStorage) Save(ctx context.Context, cartID string, record *models.CartRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode cart record: %w", err)
	}

	if err := r.rdb.Set(ctx, cartKey(cartID), data, cartRetention).Err(); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

func (r *RedisStorage) Delete(ctx context.Context, cartID string) error {
	if err := r.rdb.Del(ctx, cartKey(cartID)).Err(); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}
