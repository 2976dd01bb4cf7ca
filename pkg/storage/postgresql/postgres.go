// Package postgresql provides PostgreSQL storage for tenant configuration
// documents. The current document lives in tenant_configs; deployment
// backups accumulate in config_backups.
package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	// PostgreSQL driver.
	_ "github.com/lib/pq"

	"github.com/longhornrumble/picasso-config-builder/pkg/models"
	"github.com/longhornrumble/picasso-config-builder/pkg/storage"
)

const backupKeyLayout = "20060102T150405.000000000"

// Storage implements storage.Storage on PostgreSQL.
type Storage struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

// NewStorage opens the database, verifies connectivity, and runs migrations.
func NewStorage(ctx context.Context, logger *slog.Logger, databaseURL string) (*Storage, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Storage{db: db, logger: logger, now: time.Now}

	if err := NewMigrationManager(logger, db).RunMigrations(ctx); err != nil {
		_ = db.Close()

		return nil, err
	}

	return s, nil
}

// LoadConfig fetches the tenant's current document.
func (s *Storage) LoadConfig(ctx context.Context, tenantID string) (models.Document, error) {
	var data []byte

	err := s.db.QueryRowContext(ctx,
		"SELECT document FROM tenant_configs WHERE tenant_id = $1", tenantID,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
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

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tenant_configs (tenant_id, document, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (tenant_id)
		DO UPDATE SET document = EXCLUDED.document, updated_at = NOW()
	`, tenantID, data)
	if err != nil {
		return storage.NewStorageError("SaveConfig", tenantID, err)
	}

	return nil
}

// DeployConfig publishes a document. Inside one transaction the previous
// document, when present, is copied into config_backups under a timestamped
// key before the current row is replaced.
func (s *Storage) DeployConfig(ctx context.Context, tenantID string, doc models.Document, merge bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storage.NewStorageError("DeployConfig", tenantID, err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var existing []byte

	err = tx.QueryRowContext(ctx,
		"SELECT document FROM tenant_configs WHERE tenant_id = $1 FOR UPDATE", tenantID,
	).Scan(&existing)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return storage.NewStorageError("DeployConfig", tenantID, err)
	}

	if existing != nil {
		backupKey := tenantID + "/" + s.now().UTC().Format(backupKeyLayout)

		_, err = tx.ExecContext(ctx, `
			INSERT INTO config_backups (backup_key, tenant_id, document, created_at)
			VALUES ($1, $2, $3, NOW())
		`, backupKey, tenantID, existing)
		if err != nil {
			return storage.NewStorageError("DeployConfig", tenantID, fmt.Errorf("failed to write backup: %w", err))
		}

		if merge {
			doc, err = overlayDocument(existing, doc)
			if err != nil {
				return storage.NewStorageError("DeployConfig", tenantID, err)
			}
		}
	}

	var data []byte

	data, err = json.Marshal(doc)
	if err != nil {
		return storage.NewStorageError("DeployConfig", tenantID, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO tenant_configs (tenant_id, document, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (tenant_id)
		DO UPDATE SET document = EXCLUDED.document, updated_at = NOW()
	`, tenantID, data)
	if err != nil {
		return storage.NewStorageError("DeployConfig", tenantID, err)
	}

	err = tx.Commit()
	if err != nil {
		return storage.NewStorageError("DeployConfig", tenantID, err)
	}

	return nil
}

// ListBackups returns the tenant's deployment backups, newest first.
func (s *Storage) ListBackups(ctx context.Context, tenantID string) ([]storage.Backup, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT backup_key, created_at
		FROM config_backups
		WHERE tenant_id = $1
		ORDER BY created_at DESC
	`, tenantID)
	if err != nil {
		return nil, storage.NewStorageError("ListBackups", tenantID, err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			s.logger.Error("failed to close rows", "error", err)
		}
	}()

	backups := make([]storage.Backup, 0)

	for rows.Next() {
		backup := storage.Backup{TenantID: tenantID}

		if err := rows.Scan(&backup.Key, &backup.CreatedAt); err != nil {
			return nil, storage.NewStorageError("ListBackups", tenantID, err)
		}

		backups = append(backups, backup)
	}

	if err := rows.Err(); err != nil {
		return nil, storage.NewStorageError("ListBackups", tenantID, err)
	}

	return backups, nil
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *Storage) Close(_ context.Context) error {
	return s.db.Close()
}

func overlayDocument(existing []byte, doc models.Document) (models.Document, error) {
	var base models.Document
	if err := json.Unmarshal(existing, &base); err != nil {
		return nil, fmt.Errorf("failed to parse existing document: %w", err)
	}

	for name, raw := range doc {
		base[name] = raw
	}

	return base, nil
}
