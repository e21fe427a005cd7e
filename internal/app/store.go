// Package app wires a configuration to a concrete persistence variant.
package app

import (
	"context"
	"fmt"

	"github.com/alexanderramin/atelier/internal/config"
	"github.com/alexanderramin/atelier/internal/db"
	"github.com/alexanderramin/atelier/internal/kv"
	"github.com/alexanderramin/atelier/internal/repository"
)

// Store is an opened persistence adapter together with the handle that
// must be released at exit.
type Store struct {
	Repo        repository.EntityRepo
	Description string
	close       func() error
}

// Close releases the underlying database, file set or client.
func (s *Store) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// OpenStore opens the variant cfg selects. Exactly one variant is active per
// process.
func OpenStore(ctx context.Context, cfg config.Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Backend == config.BackendSQLite {
		database, err := db.OpenDB(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		return &Store{
			Repo:        repository.NewSQLiteEntityRepo(database),
			Description: "sqlite " + cfg.DBPath,
			close:       database.Close,
		}, nil
	}

	store, desc, err := openKV(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{
		Repo:        repository.NewFlatEntityRepo(store),
		Description: "flat " + desc,
		close:       store.Close,
	}, nil
}

func openKV(ctx context.Context, cfg config.Config) (kv.Store, string, error) {
	switch cfg.FlatDriver {
	case config.DriverFile:
		store, err := kv.NewFileStore(cfg.DataDir)
		if err != nil {
			return nil, "", err
		}
		return store, "file " + cfg.DataDir, nil
	case config.DriverSQLite:
		store, err := kv.OpenSQLiteStore(cfg.FlatKVPath())
		if err != nil {
			return nil, "", err
		}
		return store, "sqlite " + cfg.FlatKVPath(), nil
	case config.DriverS3:
		store, err := kv.NewS3Store(ctx, kv.S3Config{
			Bucket:       cfg.S3.Bucket,
			Prefix:       cfg.S3.Prefix,
			Region:       cfg.S3.Region,
			Endpoint:     cfg.S3.Endpoint,
			UsePathStyle: cfg.S3.UsePathStyle,
		})
		if err != nil {
			return nil, "", err
		}
		if cfg.S3.CreateBucket {
			if err := store.EnsureBucket(ctx); err != nil {
				return nil, "", err
			}
		}
		return store, "s3 " + cfg.S3.Bucket + "/" + cfg.S3.Prefix, nil
	case config.DriverMemory:
		return kv.NewMemoryStore(), "memory", nil
	}
	return nil, "", fmt.Errorf("unknown flat driver %q", cfg.FlatDriver)
}
