package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/longhornrumble/picasso-config-builder/pkg/storage"
	"github.com/longhornrumble/picasso-config-builder/pkg/storage/file"
	"github.com/longhornrumble/picasso-config-builder/pkg/storage/postgresql"
	"github.com/longhornrumble/picasso-config-builder/pkg/storage/redis"
)

var supportedStorageProviders = []string{"file", "postgres", "postgresql", "redis", "rediss"}

// NewStorage creates a storage backend from the connection URL scheme.
// Unrecognized schemes fall back to file storage.
func NewStorage(ctx context.Context, logger *slog.Logger, storageURL string) (storage.Storage, error) {
	switch parseStorageProvider(storageURL) {
	case "postgres", "postgresql":
		return postgresql.NewStorage(ctx, logger, storageURL)
	case "redis", "rediss":
		return redis.NewStorage(storageURL)
	default:
		return file.NewStorage(storageURL), nil
	}
}

func parseStorageProvider(storageURL string) string {
	provider, _, found := strings.Cut(storageURL, "://")
	if !found {
		return "file"
	}

	for _, supported := range supportedStorageProviders {
		if provider == supported {
			return provider
		}
	}

	return "file"
}
