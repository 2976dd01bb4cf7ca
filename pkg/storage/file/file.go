// Package file provides file-based storage for tenant configuration documents.
//
// Each tenant's current document lives at <root>/configs/<tenant>.json.
// Deployment backups are written to <root>/backups/<tenant>/<timestamp>.json
// before the current document is overwritten.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/longhornrumble/picasso-config-builder/pkg/models"
	"github.com/longhornrumble/picasso-config-builder/pkg/storage"
)

// backupKeyLayout keeps backup filenames lexically sortable by creation time.
const backupKeyLayout = "20060102T150405.000000000"

// Storage implements storage.Storage on the local filesystem.
type Storage struct {
	root string
	now  func() time.Time
}

// NewStorage creates file storage rooted at the given directory. A
// "file://" prefix on the root is accepted and stripped.
func NewStorage(root string) *Storage {
	return &Storage{
		root: strings.Replace(root, "file://", "", 1),
		now:  time.Now,
	}
}

func (s *Storage) configPath(tenantID string) string {
	return filepath.Join(s.root, "configs", tenantID+".json")
}

func (s *Storage) backupDir(tenantID string) string {
	return filepath.Join(s.root, "backups", tenantID)
}

// LoadConfig fetches the tenant's current document.
func (s *Storage) LoadConfig(_ context.Context, tenantID string) (models.Document, error) {
	data, err := os.ReadFile(s.configPath(tenantID))
	if err != nil {
		if os.IsNotExist(err) {
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
func (s *Storage) SaveConfig(_ context.Context, tenantID string, doc models.Document) error {
	return s.write(tenantID, doc)
}

// DeployConfig publishes a document. The previous document, when present, is
// snapshotted under a timestamped backup key before the overwrite.
func (s *Storage) DeployConfig(ctx context.Context, tenantID string, doc models.Document, merge bool) error {
	existing, err := s.LoadConfig(ctx, tenantID)
	if err != nil && !storage.IsTenantNotFound(err) {
		return storage.NewStorageError("DeployConfig", tenantID, err)
	}

	if existing != nil {
		if err := s.writeBackup(tenantID, existing); err != nil {
			return storage.NewStorageError("DeployConfig", tenantID, err)
		}

		if merge {
			merged := existing.Clone()
			for name, raw := range doc {
				merged[name] = raw
			}

			doc = merged
		}
	}

	if err := s.write(tenantID, doc); err != nil {
		return err
	}

	return nil
}

// ListBackups returns the tenant's deployment backups, newest first.
func (s *Storage) ListBackups(_ context.Context, tenantID string) ([]storage.Backup, error) {
	entries, err := os.ReadDir(s.backupDir(tenantID))
	if err != nil {
		if os.IsNotExist(err) {
			return []storage.Backup{}, nil
		}

		return nil, storage.NewStorageError("ListBackups", tenantID, err)
	}

	backups := make([]storage.Backup, 0, len(entries))

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}

		key := strings.TrimSuffix(name, ".json")

		createdAt, err := time.Parse(backupKeyLayout, key)
		if err != nil {
			continue
		}

		backups = append(backups, storage.Backup{
			Key:       key,
			TenantID:  tenantID,
			CreatedAt: createdAt,
		})
	}

	sort.Slice(backups, func(i, j int) bool { return backups[i].CreatedAt.After(backups[j].CreatedAt) })

	return backups, nil
}

// HealthCheck verifies the root directory exists.
func (s *Storage) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(s.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Close performs any necessary cleanup. For file storage there is nothing
// to clean up.
func (s *Storage) Close(_ context.Context) error {
	return nil
}

func (s *Storage) write(tenantID string, doc models.Document) error {
	path := s.configPath(tenantID)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return storage.NewStorageError("SaveConfig", tenantID, err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return storage.NewStorageError("SaveConfig", tenantID, err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return storage.NewStorageError("SaveConfig", tenantID, err)
	}

	return nil
}

func (s *Storage) writeBackup(tenantID string, doc models.Document) error {
	dir := s.backupDir(tenantID)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	key := s.now().UTC().Format(backupKeyLayout)

	return os.WriteFile(filepath.Join(dir, key+".json"), data, 0o644)
}
