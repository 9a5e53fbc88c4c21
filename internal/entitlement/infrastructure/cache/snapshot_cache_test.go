package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/felixgeelhaar/entitle/internal/entitlement/domain"
	"github.com/felixgeelhaar/entitle/internal/entitlement/infrastructure/cache"
	"github.com/felixgeelhaar/entitle/internal/shared/infrastructure/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot(userID string) *domain.CustomerSnapshot {
	expiry := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	return &domain.CustomerSnapshot{
		UserID: userID,
		Entitlements: map[string]domain.Entitlement{
			"premium": {IsActive: true, ProductID: "premium_monthly", ExpiresAt: &expiry},
		},
		ActiveSubscriptionIDs:  []string{"premium_monthly"},
		AllPurchasedProductIDs: []string{"premium_monthly"},
	}
}

func TestSnapshotCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	c := cache.NewSnapshotCache(store, nil)

	saved := testSnapshot("user-1")
	c.Save(ctx, saved)

	loaded := c.Load(ctx)
	require.NotNil(t, loaded)
	assert.Equal(t, saved, loaded)
}

func TestSnapshotCache_ExpiresAfterTTL(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	now := time.Now()
	clock := func() time.Time { return now }
	c := cache.NewSnapshotCache(store, nil, cache.WithTTL(time.Minute), cache.WithClock(clock))

	c.Save(ctx, testSnapshot("user-1"))
	require.NotNil(t, c.Load(ctx))

	now = now.Add(time.Minute + time.Second)
	assert.Nil(t, c.Load(ctx))
}

func TestSnapshotCache_LoadEmpty(t *testing.T) {
	c := cache.NewSnapshotCache(storage.NewMemoryStore(), nil)
	assert.Nil(t, c.Load(context.Background()))
}

func TestSnapshotCache_DecodeFailureIsAMiss(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	c := cache.NewSnapshotCache(store, nil)

	c.Save(ctx, testSnapshot("user-1"))
	require.NoError(t, store.Set(ctx, cache.StorageKeySnapshot, []byte("{not json")))

	assert.Nil(t, c.Load(ctx))
}

func TestSnapshotCache_CorruptExpiryIsAMiss(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	c := cache.NewSnapshotCache(store, nil)

	c.Save(ctx, testSnapshot("user-1"))
	require.NoError(t, store.Set(ctx, cache.StorageKeySnapshotExpiry, []byte("soon")))

	assert.Nil(t, c.Load(ctx))
}

func TestSnapshotCache_Clear(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	c := cache.NewSnapshotCache(store, nil)

	c.Save(ctx, testSnapshot("user-1"))
	c.Clear(ctx)

	assert.Nil(t, c.Load(ctx))

	_, err := store.Get(ctx, cache.StorageKeySnapshot)
	assert.ErrorIs(t, err, storage.ErrKeyNotFound)
	_, err = store.Get(ctx, cache.StorageKeySnapshotExpiry)
	assert.ErrorIs(t, err, storage.ErrKeyNotFound)
}
