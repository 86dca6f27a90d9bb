// Package metadata is the client's local key/value store. Values are opaque
// bytes; callers own their encoding.
package metadata

import (
	"context"
	"time"
)

// Entry is a stored value with the time it was last written.
type Entry struct {
	Value     []byte
	UpdatedAt time.Time
}

type Repository interface {
	// Get returns nil, nil when key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	// GetEntry is Get with the write time; nil, nil when key is absent.
	GetEntry(ctx context.Context, key string) (*Entry, error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes the given keys. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error
}
