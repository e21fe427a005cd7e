package kv_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alexanderramin/atelier/internal/kv"
	"github.com/alexanderramin/atelier/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// backends returns a fresh instance of every Store implementation.
func backends(t *testing.T) map[string]kv.Store {
	t.Helper()

	fileStore, err := kv.NewFileStore(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)

	sqliteStore, err := kv.OpenSQLiteStore(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqliteStore.Close() })

	return map[string]kv.Store{
		"memory": kv.NewMemoryStore(),
		"file":   fileStore,
		"sqlite": sqliteStore,
		"s3":     testutil.NewFakeS3Store(t, "atelier-test"),
	}
}

func TestStore_GetMissingKey(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get(context.Background(), "clients")
			assert.ErrorIs(t, err, kv.ErrNotFound)
		})
	}
}

func TestStore_PutThenGet(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Put(ctx, "clients", []byte(`[{"id":"1"}]`)))

			got, err := store.Get(ctx, "clients")
			require.NoError(t, err)
			assert.JSONEq(t, `[{"id":"1"}]`, string(got))
		})
	}
}

func TestStore_PutReplacesWholeValue(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Put(ctx, "notes", []byte(`[{"id":"a"},{"id":"b"}]`)))
			require.NoError(t, store.Put(ctx, "notes", []byte(`[]`)))

			got, err := store.Get(ctx, "notes")
			require.NoError(t, err)
			assert.Equal(t, "[]", string(got))
		})
	}
}

func TestStore_KeysAreIndependent(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Put(ctx, "clients", []byte(`["c"]`)))
			require.NoError(t, store.Put(ctx, "instruments", []byte(`["i"]`)))

			got, err := store.Get(ctx, "clients")
			require.NoError(t, err)
			assert.Equal(t, `["c"]`, string(got))

			_, err = store.Get(ctx, "notes")
			assert.ErrorIs(t, err, kv.ErrNotFound)
		})
	}
}

func TestStore_RejectsInvalidKey(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			err := store.Put(context.Background(), "../escape", []byte(`[]`))
			assert.Error(t, err)
		})
	}
}

func TestFileStore_WritesJSONFilePerKey(t *testing.T) {
	dir := t.TempDir()
	store, err := kv.NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Put(context.Background(), "clients", []byte(`[]`)))

	assert.FileExists(t, filepath.Join(dir, "clients.json"))
	matches, err := filepath.Glob(filepath.Join(dir, "atelier-tmp-*"))
	require.NoError(t, err)
	assert.Empty(t, matches, "temp files should be renamed or removed")
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")
	ctx := context.Background()

	store, err := kv.OpenSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "instruments", []byte(`[{"id":"v"}]`)))
	require.NoError(t, store.Close())

	reopened, err := kv.OpenSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "instruments")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"v"}]`, string(got))
}

func TestValidateKey(t *testing.T) {
	assert.NoError(t, kv.ValidateKey("clients"))
	assert.NoError(t, kv.ValidateKey("notes_v2"))
	assert.Error(t, kv.ValidateKey(""))
	assert.Error(t, kv.ValidateKey("Clients"))
	assert.Error(t, kv.ValidateKey("a/b"))
}
