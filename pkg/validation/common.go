package validation

import (
	"fmt"
	"strings"

	"github.com/longhornrumble/picasso-config-builder/pkg/models"
)

// vagueLabels are button labels too generic to tell the user what will
// happen. Surfaced as warnings, not errors.
var vagueLabels = map[string]bool{
	"click":      true,
	"click here": true,
	"here":       true,
	"go":         true,
	"more":       true,
	"learn more": true,
	"more info":  true,
	"submit":     true,
	"button":     true,
}

func isVagueLabel(label string) bool {
	return vagueLabels[strings.ToLower(strings.TrimSpace(label))]
}

func isWebURL(raw string) bool {
	return strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://")
}

// checkNewEntityID validates a client-chosen id for a record being created:
// present, well-formed, and unique within its own collection.
func checkNewEntityID(field, id string, existing func(string) bool) []Issue {
	if id == "" {
		return []Issue{{Field: field, Message: "id is required"}}
	}

	if !models.IsValidEntityID(id) {
		return []Issue{{
			Field:   field,
			Message: "id may only contain lowercase letters, digits, '_' and '-', and must start with a letter or digit",
		}}
	}

	if existing(id) {
		return []Issue{{Field: field, Message: fmt.Sprintf("id %q is already in use", id)}}
	}

	return nil
}
