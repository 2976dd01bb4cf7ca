package cmd

import (
	"log/slog"

	"github.com/longhornrumble/picasso-config-builder/pkg/eventbus"
)

// NewEventBus creates an event bus instance based on the provider name.
// The in-process gochannel bus is the only provider today.
func NewEventBus(provider string, logger *slog.Logger) eventbus.EventBus {
	switch provider {
	case "gochannel", "":
		return eventbus.NewGoChannelEventBus(logger)
	default:
		logger.Warn("Unknown event bus provider, falling back to gochannel", "provider", provider)

		return eventbus.NewGoChannelEventBus(logger)
	}
}
