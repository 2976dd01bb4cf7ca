// Package redis provides Redis storage for tenant configuration documents.
// The current document lives at picasso:config:<tenant>; deployment backups
// at picasso:backup:<tenant>:<timestamp>.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/longhornrumble/picasso-config-builder/pkg/models"
	"github.com/longhornrumble/picasso-config-builder/pkg/storage"
)

const (
	configKeyPrefix = "picasso:config:"
	backupKeyPrefix = "picasso:backup:"
	backupKeyLayout = "20060102T150405.000000000"
)

// Storage implements storage.Storage on Redis.
type Storage struct {
	client redis.UniversalClient
	now    func() time.Time
}

// NewStorage creates Redis storage from a redis:// connection URL.
func NewStorage(redisURL string) (*Storage, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	return &Storage{
		client: redis.NewClient(opts),
		now:    time.Now,
	}, nil
}

// NewStorageWithClient wraps an existing client. Used by tests.
func NewStorageWithClient(client redis.UniversalClient) *Storage {
	return &Storage{client: client, now: time.Now}
}

func configKey(tenantID string) string {
	return configKeyPrefix + tenantID
}

func backupKey(tenantID, stamp string) string {
	return backupKeyPrefix + tenantID + ":" + stamp
}

// LoadConfig fetches the tenant's current document.
func (s *Storage) LoadConfig(ctx context.Context, tenantID string) (models.Document, error) {
	data, err := s.client.Get(ctx, configKey(tenantID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, storage.NewStorageError("LoadConfig", tenantID, storage.ErrTenantNotFound)
		}

		return nil, storage.NewStorageError("LoadConfig", tenantID, err)
	}

	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, storage.NewStorageError("LoadConfig", tenantID, fmt.Errorf("failed to parse document: %w", err))
	}

	return doc, nil
}

// SaveConfig persists a draft document without backup semantics.
func (s *Storage) SaveConfig(ctx context.Context, tenantID string, doc models.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return storage.NewStorageError("SaveConfig", tenantID, err)
	}

	if err := s.client.Set(ctx, configKey(tenantID), data, 0).Err(); err != nil {
		return storage.NewStorageError("SaveConfig", tenantID, err)
	}

	return nil
}

// DeployConfig publishes a document. The previous document, when present,
// is copied to a timestamped backup key before the overwrite.
func (s *Storage) DeployConfig(ctx context.Context, tenantID string, doc models.Document, merge bool) error {
	existing, err := s.client.Get(ctx, configKey(tenantID)).Bytes()
	if err != nil && !errors.Is(err, redis.Nil) {
		return storage.NewStorageError("DeployConfig", tenantID, err)
	}

	if existing != nil {
		stamp := s.now().UTC().Format(backupKeyLayout)

		if err := s.client.Set(ctx, backupKey(tenantID, stamp), existing, 0).Err(); err != nil {
			return storage.NewStorageError("DeployConfig", tenantID, fmt.Errorf("failed to write backup: %w", err))
		}

		if merge {
			var base models.Document
			if err := json.Unmarshal(existing, &base); err != nil {
				return storage.NewStorageError("DeployConfig", tenantID, fmt.Errorf("failed to parse existing document: %w", err))
			}

			for name, raw := range doc {
				base[name] = raw
			}

			doc = base
		}
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return storage.NewStorageError("DeployConfig", tenantID, err)
	}

	if err := s.client.Set(ctx, configKey(tenantID), data, 0).Err(); err != nil {
		return storage.NewStorageError("DeployConfig", tenantID, err)
	}

	return nil
}

// ListBackups returns the tenant's deployment backups, newest first.
func (s *Storage) ListBackups(ctx context.Context, tenantID string) ([]storage.Backup, error) {
	prefix := backupKeyPrefix + tenantID + ":"

	keys, err := s.client.Keys(ctx, prefix+"*").Result()
	if err != nil {
		return nil, storage.NewStorageError("ListBackups", tenantID, err)
	}

	backups := make([]storage.Backup, 0, len(keys))

	for _, key := range keys {
		stamp := strings.TrimPrefix(key, prefix)

		createdAt, err := time.Parse(backupKeyLayout, stamp)
		if err != nil {
			continue
		}

		backups = append(backups, storage.Backup{
			Key:       stamp,
			TenantID:  tenantID,
			CreatedAt: createdAt,
		})
	}

	sort.Slice(backups, func(i, j int) bool { return backups[i].CreatedAt.After(backups[j].CreatedAt) })

	return backups, nil
}

// HealthCheck verifies Redis connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}

	return nil
}

// Close closes the Redis connection.
func (s *Storage) Close(_ context.Context) error {
	return s.client.Close()
}
