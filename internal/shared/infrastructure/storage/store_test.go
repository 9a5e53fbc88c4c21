package storage_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/entitle/internal/shared/infrastructure/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBackends(t *testing.T) map[string]storage.Store {
	sqlite, err := storage.NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "entitle.db"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, sqlite.Close()) })

	return map[string]storage.Store{
		"memory": storage.NewMemoryStore(),
		"file":   storage.NewFileStore(t.TempDir()),
		"sqlite": sqlite,
	}
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()

	for name, store := range testBackends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Set(ctx, "snapshot", []byte(`{"userId":"u1"}`)))

			value, err := store.Get(ctx, "snapshot")
			require.NoError(t, err)
			assert.Equal(t, []byte(`{"userId":"u1"}`), value)
		})
	}
}

func TestStore_GetMissingKey(t *testing.T) {
	ctx := context.Background()

	for name, store := range testBackends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get(ctx, "absent")
			assert.ErrorIs(t, err, storage.ErrKeyNotFound)
		})
	}
}

func TestStore_Overwrite(t *testing.T) {
	ctx := context.Background()

	for name, store := range testBackends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Set(ctx, "key", []byte("first")))
			require.NoError(t, store.Set(ctx, "key", []byte("second")))

			value, err := store.Get(ctx, "key")
			require.NoError(t, err)
			assert.Equal(t, []byte("second"), value)
		})
	}
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()

	for name, store := range testBackends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Set(ctx, "key", []byte("value")))
			require.NoError(t, store.Delete(ctx, "key"))

			_, err := store.Get(ctx, "key")
			assert.ErrorIs(t, err, storage.ErrKeyNotFound)

			// Deleting an absent key is not an error.
			assert.NoError(t, store.Delete(ctx, "key"))
		})
	}
}

func TestFileStore_KeyCannotEscapeDirectory(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := storage.NewFileStore(filepath.Join(dir, "data"))

	require.NoError(t, store.Set(ctx, "../escape", []byte("value")))

	value, err := store.Get(ctx, "../escape")
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), value)

	// Nothing may be written outside the base directory.
	_, err = storage.NewFileStore(dir).Get(ctx, "escape")
	assert.ErrorIs(t, err, storage.ErrKeyNotFound)
}
