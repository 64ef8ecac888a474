package session

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/kozaktomas/face-auth/internal/database/mariadb"
	"github.com/kozaktomas/face-auth/internal/database/postgres"
)

// OpenBackend picks a backend from a DSN:
//
//	postgres://, postgresql://  PostgreSQL
//	mysql://                    MySQL / MariaDB
//	redis://, rediss://         Redis
//	file:///path, /path, path   YAML files in a directory
func OpenBackend(ctx context.Context, dsn string) (Backend, error) {
	if dsn == "" {
		return nil, errors.New("session store is not configured")
	}

	scheme, _, _ := strings.Cut(dsn, "://")
	switch strings.ToLower(scheme) {
	case "postgres", "postgresql":
		return postgres.Open(ctx, dsn)
	case "mysql":
		return mariadb.Open(ctx, dsn)
	case "redis", "rediss":
		return NewRedisBackend(ctx, dsn)
	case "file":
		u, err := url.Parse(dsn)
		if err != nil {
			return nil, err
		}
		return NewFileBackend(u.Path)
	default:
		return NewFileBackend(dsn)
	}
}

// Open opens the backend for dsn and restores the session stored under key.
func Open(ctx context.Context, dsn, key string) (*Store, error) {
	backend, err := OpenBackend(ctx, dsn)
	if err != nil {
		return nil, err
	}
	s, err := NewStore(ctx, backend, key)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}
	return s, nil
}
