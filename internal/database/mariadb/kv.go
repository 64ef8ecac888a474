package mariadb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kozaktomas/face-auth/internal/database"
)

// KVRepository provides MariaDB-backed key/value storage.
type KVRepository struct {
	pool *Pool
}

func (r *KVRepository) Save(ctx context.Context, name string, value []byte) error {
	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO kv_entries (name, value) VALUES (?, ?)
		ON DUPLICATE KEY UPDATE value = VALUES(value)
	`, name, value)
	if err != nil {
		return fmt.Errorf("save entry: %w", err)
	}
	return nil
}

func (r *KVRepository) Load(ctx context.Context, name string) ([]byte, error) {
	var value []byte
	err := r.pool.db.QueryRowContext(ctx, "SELECT value FROM kv_entries WHERE name = ?", name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load entry: %w", err)
	}
	return value, nil
}

func (r *KVRepository) Delete(ctx context.Context, name string) error {
	if _, err := r.pool.db.ExecContext(ctx, "DELETE FROM kv_entries WHERE name = ?", name); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return nil
}

func (r *KVRepository) Close() error {
	return r.pool.Close()
}
