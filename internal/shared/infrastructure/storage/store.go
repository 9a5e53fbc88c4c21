// Package storage provides the persistent key-value port used for the
// cached customer snapshot and the anonymous identifier, with file, Redis,
// SQLite, Postgres and in-memory backends.
package storage

import (
	"context"
	"errors"
)

// ErrKeyNotFound indicates the key has no stored value.
var ErrKeyNotFound = errors.New("storage: key not found")

// Store is a persistent key-value store of opaque byte blobs. Writes are
// idempotent key overwrites; individual-key operations are expected to be
// atomic in every backend.
type Store interface {
	// Get retrieves the value for key. Returns ErrKeyNotFound when absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
