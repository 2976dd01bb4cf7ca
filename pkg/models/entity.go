// Package models defines the core domain models for chatbot configuration editing.
package models

import "regexp"

// EntityKind identifies one of the six editable entity collections.
type EntityKind string

const (
	KindProgram  EntityKind = "programs"
	KindForm     EntityKind = "forms"
	KindCTA      EntityKind = "ctas"
	KindBranch   EntityKind = "conversation_branches"
	KindChip     EntityKind = "action_chips"
	KindShowcase EntityKind = "content_showcase"
)

// AllKinds lists every entity collection in a stable order.
var AllKinds = []EntityKind{
	KindProgram,
	KindForm,
	KindCTA,
	KindBranch,
	KindChip,
	KindShowcase,
}

// Entity is the minimal contract shared by every editable record. The CRUD
// orchestrator is generic over this interface rather than over open maps.
type Entity interface {
	EntityID() string
	DisplayName() string
}

// EntityKey builds the aggregate validation-map key for an entity. Keys are
// prefixed with the collection name so one map can span all collections
// without id collisions.
func EntityKey(kind EntityKind, id string) string {
	return string(kind) + "/" + id
}

var entityIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// IsValidEntityID reports whether id satisfies the character-class rules for
// client-chosen identifiers: lowercase alphanumeric plus `_` and `-`, not
// starting with a separator.
func IsValidEntityID(id string) bool {
	return entityIDPattern.MatchString(id)
}
