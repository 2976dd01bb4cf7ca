package deploy

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/longhornrumble/picasso-config-builder/pkg/editor"
	"github.com/longhornrumble/picasso-config-builder/pkg/eventbus"
	"github.com/longhornrumble/picasso-config-builder/pkg/events"
	"github.com/longhornrumble/picasso-config-builder/pkg/models"
	"github.com/longhornrumble/picasso-config-builder/pkg/storage"
)

// Service orchestrates saves and deployments for editing sessions. It is not
// re-entrant per tenant: the session's busy flag rejects a second save or
// deploy while one is in flight.
type Service struct {
	storage storage.Storage
	bus     eventbus.EventBus
	logger  *slog.Logger
	merger  *Merger
}

// NewService creates a deployment service.
func NewService(st storage.Storage, bus eventbus.EventBus, logger *slog.Logger) *Service {
	return &Service{
		storage: st,
		bus:     bus,
		logger:  logger,
		merger:  NewMerger(),
	}
}

// Save persists the session's current draft without deployment semantics:
// no validation gate, no backup, no metadata stamp. Used for draft
// persistence between editing sessions.
func (s *Service) Save(ctx context.Context, session *editor.Session) error {
	if err := session.BeginIO("Save"); err != nil {
		return err
	}
	defer session.EndIO()

	draft, err := s.merger.BuildDraft(session.Store().Baseline(), session.Store().Collections())
	if err != nil {
		return err
	}

	if err := s.storage.SaveConfig(ctx, session.TenantID, draft); err != nil {
		// The document stays dirty; the user may retry.
		return err
	}

	session.Store().MarkClean()

	s.publish(ctx, session.TenantID, events.ConfigSaved{
		BaseEvent: s.baseEvent(events.ConfigSavedEvent, session.TenantID),
	})

	return nil
}

// Deploy validates, merges, and publishes the session's edits as the
// tenant's new configuration document. The storage backend snapshots the
// previous document before the overwrite; merge=false signals full-document
// replacement.
func (s *Service) Deploy(ctx context.Context, session *editor.Session) (models.Document, error) {
	if err := session.BeginIO("Deploy"); err != nil {
		return nil, err
	}
	defer session.EndIO()

	if snapshot := session.Validation(); !snapshot.IsValid {
		return nil, ErrDocumentInvalid
	}

	baseline := session.Store().Baseline()
	if baseline == nil {
		return nil, ErrNoBaseline
	}

	merged, err := s.merger.Prepare(baseline, session.Store().Collections())
	if err != nil {
		return nil, err
	}

	if err := s.storage.DeployConfig(ctx, session.TenantID, merged, false); err != nil {
		s.publish(ctx, session.TenantID, events.ConfigDeployFailed{
			BaseEvent: s.baseEvent(events.ConfigDeployFailedEvent, session.TenantID),
			Reason:    err.Error(),
		})

		// The document stays dirty; the user may retry.
		return nil, err
	}

	session.Store().SetBaseline(merged)
	session.Store().MarkClean()

	meta := decodeMetadata(merged)

	s.logger.InfoContext(ctx, "Configuration deployed",
		"tenant_id", session.TenantID,
		"deployment_id", meta.DeploymentID,
		"version", meta.Version,
	)

	s.publish(ctx, session.TenantID, events.ConfigDeployed{
		BaseEvent:    s.baseEvent(events.ConfigDeployedEvent, session.TenantID),
		DeploymentID: meta.DeploymentID,
		Version:      meta.Version,
	})

	return merged, nil
}

func (s *Service) baseEvent(eventType events.EventType, tenantID string) events.BaseEvent {
	return events.BaseEvent{
		ID:        s.bus.GenerateID(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		TenantID:  tenantID,
	}
}

func (s *Service) publish(ctx context.Context, tenantID string, event eventbus.Event) {
	if err := s.bus.Publish(ctx, tenantID, event); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish lifecycle event",
			"tenant_id", tenantID,
			"event_type", event.GetType(),
			"error", err,
		)
	}
}

func decodeMetadata(doc models.Document) models.Metadata {
	var meta models.Metadata

	if raw, ok := doc[models.SectionMetadata]; ok {
		_ = json.Unmarshal(raw, &meta)
	}

	return meta
}
