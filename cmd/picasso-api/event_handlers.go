package main

import (
	"context"
	"fmt"

	"github.com/longhornrumble/picasso-config-builder/pkg/events"
)

// registerEventHandlers attaches the audit-log subscriber to every
// configuration lifecycle event and starts consuming the topic.
func (a *API) registerEventHandlers(ctx context.Context) error {
	eventTypes := []events.EventType{
		events.ConfigLoadedEvent,
		events.EntityCreatedEvent,
		events.EntityUpdatedEvent,
		events.EntityDeletedEvent,
		events.ConfigSavedEvent,
		events.ConfigDeployedEvent,
		events.ConfigDeployFailedEvent,
	}

	for _, eventType := range eventTypes {
		if err := a.eventBus.Handle(eventType, a.logEvent); err != nil {
			return fmt.Errorf("failed to register handler for %s: %w", eventType, err)
		}
	}

	return a.eventBus.Subscribe(ctx)
}

func (a *API) logEvent(_ context.Context, event any) error {
	switch evt := event.(type) {
	case *events.ConfigLoaded:
		a.logger.Info("Configuration loaded",
			"tenant_id", evt.TenantID, "sections", evt.Sections)
	case *events.EntityChanged:
		a.logger.Info("Entity changed",
			"event", evt.Type, "tenant_id", evt.TenantID, "kind", evt.Kind, "entity_id", evt.EntityID)
	case *events.ConfigSaved:
		a.logger.Info("Configuration saved", "tenant_id", evt.TenantID)
	case *events.ConfigDeployed:
		a.logger.Info("Configuration deployed",
			"tenant_id", evt.TenantID, "deployment_id", evt.DeploymentID, "version", evt.Version)
	case *events.ConfigDeployFailed:
		a.logger.Warn("Deployment failed",
			"tenant_id", evt.TenantID, "reason", evt.Reason)
	}

	return nil
}
