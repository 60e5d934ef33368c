package cart

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"storefront-service/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// PostgresStorage persists cart records in a single-payload table, for
// deployments that prefer the relational store over Redis.
type PostgresStorage struct {
	db *sqlx.DB
}

// NewPostgresStorage connects to Postgres and prepares the cart table
func NewPostgresStorage(databaseURL string) (*PostgresStorage, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	s := &PostgresStorage{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresStorage) migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS storefront_carts (
			cart_id    TEXT PRIMARY KEY,
			payload    JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to migrate cart table: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *PostgresStorage) Close() error {
	return s.db.Close()
}

func (s *PostgresStorage) Load(ctx context.Context, cartID string) (*models.CartRecord, error) {
	var payload []byte
	err := s.db.GetContext(ctx, &payload,
		"SELECT payload FROM storefront_carts WHERE cart_id = $1", cartID)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	var record models.CartRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("failed to decode cart record: %w", err)
	}
	return &record, nil
}

func (s *PostgresStorage) Save(ctx context.Context, cartID string, record *models.CartRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode cart record: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO storefront_carts (cart_id, payload, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (cart_id) DO UPDATE SET payload = $2, updated_at = NOW()`,
		cartID, payload)
	if err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

func (s *PostgresStorage) Delete(ctx context.Context, cartID string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM storefront_carts WHERE cart_id = $1", cartID)
	if err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}
