package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alexanderramin/atelier/internal/config"
	"github.com/alexanderramin/atelier/internal/domain"
	"github.com/alexanderramin/atelier/internal/repository"
	"github.com/alexanderramin/atelier/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig(dir)
	cfg.DBPath = filepath.Join(dir, "atelier.db")
	cfg.DataDir = filepath.Join(dir, "data")
	return cfg
}

// roundTrip creates a client through one store and reads it back through a
// second store opened on the same configuration.
func roundTrip(t *testing.T, cfg config.Config) {
	t.Helper()
	ctx := context.Background()

	first, err := OpenStore(ctx, cfg)
	require.NoError(t, err)
	_, err = first.Repo.Create(ctx, domain.KindClient, "", "Alice")
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := OpenStore(ctx, cfg)
	require.NoError(t, err)
	defer second.Close()

	clients, err := second.Repo.ListChildren(ctx, domain.KindClient, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice"}, testutil.Texts(clients))
}

func TestOpenStore_SQLite(t *testing.T) {
	cfg := testConfig(t)

	store, err := OpenStore(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &repository.SQLiteEntityRepo{}, store.Repo)
	assert.Contains(t, store.Description, "sqlite")
	require.NoError(t, store.Close())

	roundTrip(t, cfg)
}

func TestOpenStore_FlatFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.Backend = config.BackendFlat
	cfg.FlatDriver = config.DriverFile

	roundTrip(t, cfg)
	assert.FileExists(t, filepath.Join(cfg.DataDir, "clients.json"))
}

func TestOpenStore_FlatSQLite(t *testing.T) {
	cfg := testConfig(t)
	cfg.Backend = config.BackendFlat
	cfg.FlatDriver = config.DriverSQLite

	roundTrip(t, cfg)
	assert.FileExists(t, cfg.FlatKVPath())
}

func TestOpenStore_FlatS3(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test-key")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test-secret")

	cfg := testConfig(t)
	cfg.Backend = config.BackendFlat
	cfg.FlatDriver = config.DriverS3
	cfg.S3.Bucket = "workshop"
	cfg.S3.Endpoint = testutil.NewFakeS3Server(t)
	cfg.S3.UsePathStyle = true
	cfg.S3.CreateBucket = true

	roundTrip(t, cfg)
}

func TestOpenStore_FlatMemory(t *testing.T) {
	cfg := testConfig(t)
	cfg.Backend = config.BackendFlat
	cfg.FlatDriver = config.DriverMemory

	store, err := OpenStore(context.Background(), cfg)
	require.NoError(t, err)
	defer store.Close()
	assert.IsType(t, &repository.FlatEntityRepo{}, store.Repo)
}

func TestOpenStore_InvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Backend = "mongo"

	_, err := OpenStore(context.Background(), cfg)
	assert.Error(t, err)
}
