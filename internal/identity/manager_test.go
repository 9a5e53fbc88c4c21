package identity_test

import (
	"context"
	"testing"

	"github.com/felixgeelhaar/entitle/internal/identity"
	"github.com/felixgeelhaar/entitle/internal/shared/infrastructure/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_ResolveAnonymousID_MintsAndPersists(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	manager := identity.NewManager(store, nil)

	id, err := manager.ResolveAnonymousID(ctx)
	require.NoError(t, err)
	assert.True(t, identity.IsAnonymous(id))

	persisted, err := store.Get(ctx, identity.StorageKeyAnonymousID)
	require.NoError(t, err)
	assert.Equal(t, id, string(persisted))
}

func TestManager_ResolveAnonymousID_ReusesPersisted(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	manager := identity.NewManager(store, nil)

	first, err := manager.ResolveAnonymousID(ctx)
	require.NoError(t, err)

	second, err := manager.ResolveAnonymousID(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestManager_MintFreshAnonymousID_NeverReuses(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	manager := identity.NewManager(store, nil)

	persisted, err := manager.ResolveAnonymousID(ctx)
	require.NoError(t, err)

	fresh := manager.MintFreshAnonymousID()
	assert.True(t, identity.IsAnonymous(fresh))
	assert.NotEqual(t, persisted, fresh)

	// Minting must not touch the persisted identifier.
	stillPersisted, err := manager.ResolveAnonymousID(ctx)
	require.NoError(t, err)
	assert.Equal(t, persisted, stillPersisted)
}

func TestIsAnonymous(t *testing.T) {
	assert.True(t, identity.IsAnonymous("$anon:123"))
	assert.False(t, identity.IsAnonymous("app-user-42"))
	assert.False(t, identity.IsAnonymous(""))
}
