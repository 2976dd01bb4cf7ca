// Package store holds the in-memory configuration graph for one editing session.
package store

import (
	"errors"
	"fmt"

	"github.com/longhornrumble/picasso-config-builder/pkg/models"
)

// Standard store error types. These indicate state-synchronization bugs in
// the caller rather than user input errors: the orchestrator validates and
// guards before committing, so a correct caller never sees them.
var (
	// ErrDuplicateID indicates a create with an id that is already present.
	ErrDuplicateID = errors.New("entity id already exists")

	// ErrNotFound indicates an update or read for an id that is not present.
	ErrNotFound = errors.New("entity not found")
)

// EntityError wraps store errors with the operation and entity involved.
type EntityError struct {
	Op   string            // Operation being performed (e.g., "Create", "Update")
	Kind models.EntityKind // Collection the entity belongs to
	ID   string            // Entity ID
	Err  error             // Underlying error
}

func (e *EntityError) Error() string {
	return fmt.Sprintf("%s operation failed for %s %s: %v", e.Op, e.Kind, e.ID, e.Err)
}

func (e *EntityError) Unwrap() error {
	return e.Err
}

func (e *EntityError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsDuplicateID checks if an error indicates an id collision on create.
func IsDuplicateID(err error) bool {
	return errors.Is(err, ErrDuplicateID)
}

// IsNotFound checks if an error indicates a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
