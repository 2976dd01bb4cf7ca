package web

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/longhornrumble/picasso-config-builder/pkg/editor"
	"github.com/longhornrumble/picasso-config-builder/pkg/eventbus"
	"github.com/longhornrumble/picasso-config-builder/pkg/events"
	"github.com/longhornrumble/picasso-config-builder/pkg/log"
	"github.com/longhornrumble/picasso-config-builder/pkg/models"
	"github.com/longhornrumble/picasso-config-builder/pkg/schema"
	"github.com/longhornrumble/picasso-config-builder/pkg/storage"
	"github.com/longhornrumble/picasso-config-builder/pkg/store"
)

// SessionManager keeps one editing session per tenant. A session is created
// lazily from the stored document on the first request that touches the
// tenant and lives until it is discarded.
type SessionManager struct {
	storage storage.Storage
	bus     eventbus.EventBus
	logger  *slog.Logger

	mu       sync.Mutex
	sessions map[string]*editor.Session
}

// NewSessionManager builds a manager over the given storage backend.
func NewSessionManager(st storage.Storage, bus eventbus.EventBus, logger *slog.Logger) *SessionManager {
	return &SessionManager{
		storage:  st,
		bus:      bus,
		logger:   logger,
		sessions: make(map[string]*editor.Session),
	}
}

// Session returns the tenant's editing session, loading the tenant's
// document from storage when no session exists yet.
func (m *SessionManager) Session(ctx context.Context, tenantID string) (*editor.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if session, ok := m.sessions[tenantID]; ok {
		return session, nil
	}

	doc, err := m.storage.LoadConfig(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if err := schema.ValidateDocument(doc); err != nil {
		return nil, fmt.Errorf("tenant %s document is malformed: %w", tenantID, err)
	}

	st, err := store.NewFromDocument(doc)
	if err != nil {
		return nil, err
	}

	session := editor.NewSession(tenantID, st, log.WithTenant(m.logger, tenantID))
	m.sessions[tenantID] = session

	m.logger.Info("session loaded", "tenant_id", tenantID, "sections", len(doc))

	event := events.ConfigLoaded{
		BaseEvent: m.baseEvent(events.ConfigLoadedEvent, tenantID),
		Sections:  len(doc),
	}
	if err := m.bus.Publish(ctx, tenantID, event); err != nil {
		m.logger.Warn("failed to publish event", "tenant_id", tenantID, "error", err)
	}

	return session, nil
}

// Discard drops the tenant's session along with any unsaved edits. The next
// request reloads from storage.
func (m *SessionManager) Discard(tenantID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, tenantID)
}

func (m *SessionManager) baseEvent(eventType events.EventType, tenantID string) events.BaseEvent {
	return events.BaseEvent{
		ID:        m.bus.GenerateID(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		TenantID:  tenantID,
	}
}

func (m *SessionManager) publishEntityChanged(ctx context.Context, eventType events.EventType, tenantID string, kind models.EntityKind, entityID string) {
	event := events.EntityChanged{
		BaseEvent: m.baseEvent(eventType, tenantID),
		Kind:      kind,
		EntityID:  entityID,
	}
	if err := m.bus.Publish(ctx, tenantID, event); err != nil {
		m.logger.Warn("failed to publish event", "tenant_id", tenantID, "error", err)
	}
}
