// Package editor implements the generic CRUD orchestration workflow: open a
// create or edit form, validate on every change, submit through the store,
// and guard deletion behind the dependency resolver.
package editor

import (
	"errors"
	"fmt"
)

// Recoverable orchestration errors: the user corrects the situation and
// retries.
var (
	// ErrValidationFailed indicates a submit was rejected because the draft
	// has validation errors. Nothing was committed.
	ErrValidationFailed = errors.New("draft has validation errors")

	// ErrDeleteBlocked indicates a delete was refused because other entities
	// still reference the target. The impact report lists them.
	ErrDeleteBlocked = errors.New("entity has blocking dependents")

	// ErrBusy indicates a save or deployment is in flight; submits, deletes,
	// and further deployments are rejected rather than queued.
	ErrBusy = errors.New("a storage operation is in progress")
)

// Workflow-misuse errors: these indicate the caller drove the state machine
// out of order, not bad user input.
var (
	// ErrNoOpenForm indicates Change or Submit without an open create/edit form.
	ErrNoOpenForm = errors.New("no entity form is open")

	// ErrNoPendingDelete indicates ConfirmDelete without a preceding OpenDelete.
	ErrNoPendingDelete = errors.New("no delete is pending confirmation")

	// ErrIDImmutable indicates an edit submit tried to change the entity id.
	ErrIDImmutable = errors.New("entity id cannot be changed after creation")
)

// OperationError wraps orchestration failures with the operation and entity
// involved.
type OperationError struct {
	Op   string // Operation being performed (e.g., "Submit", "ConfirmDelete")
	Kind string // Collection name
	ID   string // Entity ID if known
	Err  error  // Underlying error
}

func (e *OperationError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s failed for %s: %v", e.Op, e.Kind, e.Err)
	}

	return fmt.Sprintf("%s failed for %s %s: %v", e.Op, e.Kind, e.ID, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

func (e *OperationError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationFailed checks if an error indicates a rejected, correctable submit.
func IsValidationFailed(err error) bool {
	return errors.Is(err, ErrValidationFailed)
}

// IsDeleteBlocked checks if an error indicates a dependency conflict on delete.
func IsDeleteBlocked(err error) bool {
	return errors.Is(err, ErrDeleteBlocked)
}

// IsBusy checks if an error indicates a rejected call during storage I/O.
func IsBusy(err error) bool {
	return errors.Is(err, ErrBusy)
}
