// Package identity owns the user-identifier lifecycle: anonymous ids are
// minted locally, tagged with a fixed prefix, and persisted across restarts.
package identity

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/felixgeelhaar/entitle/internal/shared/infrastructure/storage"
	"github.com/google/uuid"
)

// AnonymousIDPrefix tags identifiers this library generated itself.
const AnonymousIDPrefix = "$anon:"

// StorageKeyAnonymousID is the fixed key the persisted anonymous id lives
// under.
const StorageKeyAnonymousID = "entitle.anonymous_id"

// Manager resolves and mints anonymous user identifiers.
type Manager struct {
	store  storage.Store
	logger *slog.Logger
}

// NewManager creates an identity manager over the given store.
func NewManager(store storage.Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{store: store, logger: logger}
}

// ResolveAnonymousID returns the persisted anonymous identifier, minting and
// persisting a new one first if none exists yet.
func (m *Manager) ResolveAnonymousID(ctx context.Context) (string, error) {
	data, err := m.store.Get(ctx, StorageKeyAnonymousID)
	if err == nil && len(data) > 0 {
		return string(data), nil
	}
	if err != nil && !errors.Is(err, storage.ErrKeyNotFound) {
		return "", err
	}

	id := m.MintFreshAnonymousID()
	if err := m.store.Set(ctx, StorageKeyAnonymousID, []byte(id)); err != nil {
		return "", err
	}
	m.logger.Debug("minted anonymous identity", "user_id", id)
	return id, nil
}

// MintFreshAnonymousID returns a brand-new tagged anonymous identifier. It
// neither consults nor overwrites the persisted one; logout must not
// silently resume a previous anonymous identity.
func (m *Manager) MintFreshAnonymousID() string {
	return AnonymousIDPrefix + uuid.NewString()
}

// IsAnonymous reports whether the identifier was generated by this library.
func IsAnonymous(userID string) bool {
	return strings.HasPrefix(userID, AnonymousIDPrefix)
}
