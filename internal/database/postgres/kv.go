package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kozaktomas/face-auth/internal/database"
)

// KVRepository provides PostgreSQL-backed key/value storage.
type KVRepository struct {
	pool *Pool
}

// NewKVRepository creates a new PostgreSQL key/value repository.
func NewKVRepository(pool *Pool) *KVRepository {
	return &KVRepository{pool: pool}
}

// Save stores value under name, replacing any previous value.
func (r *KVRepository) Save(ctx context.Context, name string, value []byte) error {
	query := `
		INSERT INTO kv_entries (name, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at
	`

	if _, err := r.pool.Exec(ctx, query, name, value); err != nil {
		return fmt.Errorf("save entry: %w", err)
	}
	return nil
}

// Load returns the value stored under name, or database.ErrNotFound.
func (r *KVRepository) Load(ctx context.Context, name string) ([]byte, error) {
	var value []byte
	err := r.pool.QueryRow(ctx, "SELECT value FROM kv_entries WHERE name = $1", name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load entry: %w", err)
	}
	return value, nil
}

// Delete removes the entry. Deleting a missing entry is not an error.
func (r *KVRepository) Delete(ctx context.Context, name string) error {
	if _, err := r.pool.Exec(ctx, "DELETE FROM kv_entries WHERE name = $1", name); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return nil
}

// Close releases the underlying pool.
func (r *KVRepository) Close() error {
	return r.pool.Close()
}
