// Package database holds what the SQL-backed key/value stores share.
package database

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Load when no value is stored under the key.
var ErrNotFound = errors.New("key not found")

// KVStore is a durable map of names to opaque values.
type KVStore interface {
	Load(ctx context.Context, name string) ([]byte, error)
	Save(ctx context.Context, name string, value []byte) error
	Delete(ctx context.Context, name string) error
	Close() error
}
