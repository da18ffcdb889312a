// Package metadata is a small key/value store backed by the local SQLite
// database. The session store keeps the trusted tenant id and flags here so
// they survive restarts and are visible to every client process on the host.
package metadata

import (
	"context"
)

// Repository stores opaque values by key. Get returns (nil, nil) for a
// missing key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	List(ctx context.Context, keys ...string) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
