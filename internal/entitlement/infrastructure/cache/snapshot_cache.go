// Package cache persists the last known customer snapshot with a
// time-to-live. It is a best-effort mirror of the in-memory state: every
// failure here degrades to a cache miss, never to a caller-visible error.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/felixgeelhaar/entitle/internal/entitlement/domain"
	"github.com/felixgeelhaar/entitle/internal/shared/infrastructure/storage"
)

// DefaultTTL is how long a saved snapshot stays valid.
const DefaultTTL = 5 * time.Minute

// Storage keys for the snapshot and its expiry marker.
const (
	StorageKeySnapshot       = "entitle.customer_snapshot"
	StorageKeySnapshotExpiry = "entitle.customer_snapshot_expiry"
)

// SnapshotCache stores one customer snapshot with an expiry deadline.
type SnapshotCache struct {
	store  storage.Store
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// Option configures the cache.
type Option func(*SnapshotCache)

// WithTTL overrides the default time-to-live.
func WithTTL(ttl time.Duration) Option {
	return func(c *SnapshotCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *SnapshotCache) {
		c.now = now
	}
}

// NewSnapshotCache creates a snapshot cache over the given store.
func NewSnapshotCache(store storage.Store, logger *slog.Logger, opts ...Option) *SnapshotCache {
	if logger == nil {
		logger = slog.Default()
	}
	c := &SnapshotCache{
		store:  store,
		ttl:    DefaultTTL,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Save serializes the snapshot together with a now+ttl expiry. Best-effort:
// failures are logged and swallowed.
func (c *SnapshotCache) Save(ctx context.Context, snapshot *domain.CustomerSnapshot) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		c.logger.Warn("failed to serialize snapshot for cache", "error", err)
		return
	}

	expiry := c.now().Add(c.ttl).UnixMilli()
	if err := c.store.Set(ctx, StorageKeySnapshot, data); err != nil {
		c.logger.Warn("failed to cache snapshot", "error", err)
		return
	}
	if err := c.store.Set(ctx, StorageKeySnapshotExpiry, []byte(strconv.FormatInt(expiry, 10))); err != nil {
		c.logger.Warn("failed to cache snapshot expiry", "error", err)
	}
}

// Load returns the cached snapshot only while it is present, decodable and
// unexpired. Everything else is a miss, returned as nil.
func (c *SnapshotCache) Load(ctx context.Context) *domain.CustomerSnapshot {
	expiryRaw, err := c.store.Get(ctx, StorageKeySnapshotExpiry)
	if err != nil {
		return nil
	}
	expiry, err := strconv.ParseInt(string(expiryRaw), 10, 64)
	if err != nil {
		c.logger.Debug("unreadable cache expiry, treating as miss", "error", err)
		return nil
	}
	if !c.now().Before(time.UnixMilli(expiry)) {
		return nil
	}

	data, err := c.store.Get(ctx, StorageKeySnapshot)
	if err != nil {
		return nil
	}

	var snapshot domain.CustomerSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		c.logger.Debug("undecodable cached snapshot, treating as miss", "error", err)
		return nil
	}
	return &snapshot
}

// Clear unconditionally removes the snapshot and its expiry marker, so a new
// identity never observes a stale identity's cache.
func (c *SnapshotCache) Clear(ctx context.Context) {
	if err := c.store.Delete(ctx, StorageKeySnapshot); err != nil {
		c.logger.Warn("failed to clear cached snapshot", "error", err)
	}
	if err := c.store.Delete(ctx, StorageKeySnapshotExpiry); err != nil {
		c.logger.Warn("failed to clear cached snapshot expiry", "error", err)
	}
}
