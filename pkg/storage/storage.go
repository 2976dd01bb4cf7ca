// Package storage provides the durable-document abstraction layer for
// tenant configurations.
package storage

import (
	"context"
	"time"

	"github.com/longhornrumble/picasso-config-builder/pkg/models"
)

// Backup describes one snapshot taken before a deployment overwrote the
// tenant's document.
type Backup struct {
	Key       string    `json:"key"`
	TenantID  string    `json:"tenant_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Storage is the remote configuration store. Each tenant has exactly one
// current document.
//
// DeployConfig with merge=false replaces the document wholesale; the backend
// snapshots the previous document under a timestamped backup key before the
// overwrite, unconditionally. With merge=true the backend overlays the given
// sections onto the stored document instead of replacing it.
type Storage interface {
	// LoadConfig fetches the tenant's current document.
	LoadConfig(ctx context.Context, tenantID string) (models.Document, error)

	// SaveConfig persists a draft document without backup semantics.
	SaveConfig(ctx context.Context, tenantID string, doc models.Document) error

	// DeployConfig publishes a document, backing up the previous one first.
	DeployConfig(ctx context.Context, tenantID string, doc models.Document, merge bool) error

	// ListBackups returns the tenant's deployment backups, newest first.
	ListBackups(ctx context.Context, tenantID string) ([]Backup, error)

	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}
