// Package events defines event types for configuration lifecycle notifications.
package events

import (
	"time"

	"github.com/longhornrumble/picasso-config-builder/pkg/models"
)

type EventType string

// Topic carries every configuration lifecycle event.
const Topic = "picasso.config.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Session lifecycle events.
	ConfigLoadedEvent EventType = "config.loaded"

	// Entity editing events.
	EntityCreatedEvent EventType = "entity.created"
	EntityUpdatedEvent EventType = "entity.updated"
	EntityDeletedEvent EventType = "entity.deleted"

	// Persistence events.
	ConfigSavedEvent        EventType = "config.saved"
	ConfigDeployedEvent     EventType = "config.deployed"
	ConfigDeployFailedEvent EventType = "config.deploy.failed"
)

type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	TenantID  string         `json:"tenant_id"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type ConfigLoaded struct {
	BaseEvent

	Sections int `json:"sections"`
}

func (e ConfigLoaded) GetType() EventType {
	return ConfigLoadedEvent
}

type EntityChanged struct {
	BaseEvent

	Kind     models.EntityKind `json:"kind"`
	EntityID string            `json:"entity_id"`
}

func (e EntityChanged) GetType() EventType {
	return e.Type
}

type ConfigSaved struct {
	BaseEvent
}

func (e ConfigSaved) GetType() EventType {
	return ConfigSavedEvent
}

type ConfigDeployed struct {
	BaseEvent

	DeploymentID string `json:"deployment_id"`
	Version      int    `json:"version"`
}

func (e ConfigDeployed) GetType() EventType {
	return ConfigDeployedEvent
}

type ConfigDeployFailed struct {
	BaseEvent

	Reason string `json:"reason"`
}

func (e ConfigDeployFailed) GetType() EventType {
	return ConfigDeployFailedEvent
}
