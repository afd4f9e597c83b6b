package config

import (
	"context"
	"fmt"

	"github.com/marmos91/cryptoolstore/internal/logger"
	"github.com/marmos91/cryptoolstore/pkg/blobstore"
	fsblob "github.com/marmos91/cryptoolstore/pkg/blobstore/fs"
	s3blob "github.com/marmos91/cryptoolstore/pkg/blobstore/s3"
	"github.com/marmos91/cryptoolstore/pkg/controlplane/store"
)

// CreateBlobStore creates the configured blob store backend.
func CreateBlobStore(ctx context.Context, cfg BlobsConfig) (blobstore.Store, error) {
	switch cfg.Type {
	case BlobsTypeFS, "":
		logger.Debug("Creating filesystem blob store", "root", cfg.FS.Root)
		s, err := fsblob.New(cfg.FS)
		if err != nil {
			return nil, fmt.Errorf("failed to create fs blob store: %w", err)
		}
		return s, nil
	case BlobsTypeS3:
		logger.Debug("Creating S3 blob store",
			"bucket", cfg.S3.Bucket,
			"region", cfg.S3.Region,
			"endpoint", cfg.S3.Endpoint)
		s, err := s3blob.NewFromConfig(ctx, cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("failed to create s3 blob store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown blob store type: %q", cfg.Type)
	}
}

// OpenStore opens the relational store and makes sure the admin developer
// exists. generatedPassword is non-empty only when the admin was created
// with a random password.
func OpenStore(ctx context.Context, cfg *Config) (s store.Store, generatedPassword string, err error) {
	gs, err := store.New(&cfg.Database)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open database: %w", err)
	}

	password, err := gs.EnsureAdminDeveloper(ctx, cfg.Admin.Username, cfg.Admin.Password)
	if err != nil {
		_ = gs.Close()
		return nil, "", err
	}
	if cfg.Admin.Password != "" {
		password = ""
	}
	return gs, password, nil
}
