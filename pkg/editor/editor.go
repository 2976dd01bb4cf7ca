package editor

import (
	"github.com/longhornrumble/picasso-config-builder/pkg/deps"
	"github.com/longhornrumble/picasso-config-builder/pkg/models"
	"github.com/longhornrumble/picasso-config-builder/pkg/store"
	"github.com/longhornrumble/picasso-config-builder/pkg/validation"
)

// State is the editing state of one entity-type editor.
type State string

const (
	StateIdle             State = "idle"
	StateCreating         State = "creating"
	StateEditing          State = "editing"
	StateConfirmingDelete State = "confirming_delete"
)

// DeleteMode distinguishes a confirmable delete from a blocked one.
type DeleteMode string

const (
	DeleteModeConfirm DeleteMode = "confirm"
	DeleteModeBlocked DeleteMode = "blocked"
)

// ValidateFunc runs the per-entity and cross-entity rules for one record.
type ValidateFunc[T models.Entity] func(T, validation.Context) (errs, warns []validation.Issue)

// Editor drives the create/edit/delete workflow for one entity type. The
// logic is shared across all six types; only the collection handle, the
// default record, and the validator differ.
//
// Drafts are never persisted on Change; the store is only touched by a
// Submit that passed validation, or by a confirmed delete.
type Editor[T models.Entity] struct {
	session    *Session
	collection store.Collection[T]
	defaults   func() T
	validate   ValidateFunc[T]

	state         State
	deleteMode    DeleteMode
	draft         T
	originalID    string
	pendingDelete string
	impact        *deps.Impact
	lastErrors    []validation.Issue
	lastWarnings  []validation.Issue
}

func newEditor[T models.Entity](
	session *Session,
	collection store.Collection[T],
	defaults func() T,
	validate ValidateFunc[T],
) *Editor[T] {
	return &Editor[T]{
		session:    session,
		collection: collection,
		defaults:   defaults,
		validate:   validate,
		state:      StateIdle,
	}
}

// State returns the editor's current workflow state.
func (e *Editor[T]) State() State {
	return e.state
}

// Issues returns the error and warning lists from the last validation run.
func (e *Editor[T]) Issues() (errs, warns []validation.Issue) {
	return e.lastErrors, e.lastWarnings
}

// Draft returns the current draft record.
func (e *Editor[T]) Draft() T {
	return e.draft
}

// Impact returns the dependency report from the last OpenDelete.
func (e *Editor[T]) Impact() *deps.Impact {
	return e.impact
}

// DeleteMode reports whether a pending delete is confirmable or blocked.
func (e *Editor[T]) DeleteMode() DeleteMode {
	return e.deleteMode
}

// OpenCreate seeds the form with the type's default record.
func (e *Editor[T]) OpenCreate() T {
	e.reset()
	e.state = StateCreating
	e.draft = e.defaults()

	return e.draft
}

// OpenEdit seeds the form with a copy of the existing record.
func (e *Editor[T]) OpenEdit(id string) (T, error) {
	var zero T

	existing, ok := e.collection.Get(id)
	if !ok {
		return zero, &OperationError{Op: "OpenEdit", Kind: string(e.collection.Kind()), ID: id, Err: store.ErrNotFound}
	}

	e.reset()
	e.state = StateEditing
	e.originalID = id
	e.draft = existing

	return existing, nil
}

// Change re-runs validation against the draft without persisting anything.
// Called on every keystroke-equivalent event; the returned issue lists drive
// submit-button enablement.
func (e *Editor[T]) Change(draft T) (errs, warns []validation.Issue, err error) {
	if e.state != StateCreating && e.state != StateEditing {
		return nil, nil, &OperationError{Op: "Change", Kind: string(e.collection.Kind()), Err: ErrNoOpenForm}
	}

	e.draft = draft
	e.lastErrors, e.lastWarnings = e.validate(draft, e.validationContext())

	return e.lastErrors, e.lastWarnings, nil
}

// Submit re-validates the draft and commits it to the store. A draft with
// validation errors is rejected without partial commit; the issues stay
// readable through Issues. Store-level id conflicts at this point indicate a
// state-synchronization bug and abort the operation without a state
// transition.
func (e *Editor[T]) Submit(draft T) error {
	kind := string(e.collection.Kind())

	if e.state != StateCreating && e.state != StateEditing {
		return &OperationError{Op: "Submit", Kind: kind, Err: ErrNoOpenForm}
	}

	if e.session.busy {
		return &OperationError{Op: "Submit", Kind: kind, Err: ErrBusy}
	}

	e.draft = draft
	e.lastErrors, e.lastWarnings = e.validate(draft, e.validationContext())

	if len(e.lastErrors) > 0 {
		return &OperationError{Op: "Submit", Kind: kind, ID: draft.EntityID(), Err: ErrValidationFailed}
	}

	if e.state == StateEditing {
		if draft.EntityID() != e.originalID {
			return &OperationError{Op: "Submit", Kind: kind, ID: e.originalID, Err: ErrIDImmutable}
		}

		if err := e.collection.Update(draft.EntityID(), draft); err != nil {
			// A conflict here means the editor and store disagree about
			// which ids exist. Abort without a state transition.
			e.session.logger.Error("store rejected submit", "kind", kind, "id", draft.EntityID(), "error", err)

			return err
		}
	} else {
		if err := e.collection.Create(draft.EntityID(), draft); err != nil {
			e.session.logger.Error("store rejected submit", "kind", kind, "id", draft.EntityID(), "error", err)

			return err
		}
	}

	e.reset()

	return nil
}

// OpenDelete consults the dependency resolver and enters the confirmation
// state: blocked mode when dependents exist, confirm mode otherwise.
func (e *Editor[T]) OpenDelete(id string) (*deps.Impact, error) {
	if _, ok := e.collection.Get(id); !ok {
		return nil, &OperationError{Op: "OpenDelete", Kind: string(e.collection.Kind()), ID: id, Err: store.ErrNotFound}
	}

	resolver := deps.NewResolver(e.session.store.Collections())
	impact := resolver.DependentsOf(e.collection.Kind(), id)

	e.reset()
	e.state = StateConfirmingDelete
	e.pendingDelete = id
	e.impact = &impact

	if impact.CanDelete {
		e.deleteMode = DeleteModeConfirm
	} else {
		e.deleteMode = DeleteModeBlocked
	}

	return e.impact, nil
}

// ConfirmDelete performs the deletion opened by OpenDelete. Only callable in
// confirm mode; a blocked delete must be resolved by removing the dependents
// first.
func (e *Editor[T]) ConfirmDelete() error {
	kind := string(e.collection.Kind())

	if e.state != StateConfirmingDelete {
		return &OperationError{Op: "ConfirmDelete", Kind: kind, Err: ErrNoPendingDelete}
	}

	if e.session.busy {
		return &OperationError{Op: "ConfirmDelete", Kind: kind, Err: ErrBusy}
	}

	if e.deleteMode != DeleteModeConfirm {
		return &OperationError{Op: "ConfirmDelete", Kind: kind, ID: e.pendingDelete, Err: ErrDeleteBlocked}
	}

	e.collection.Delete(e.pendingDelete)
	e.reset()

	return nil
}

// Cancel abandons the open form or pending delete and returns to idle.
func (e *Editor[T]) Cancel() {
	e.reset()
}

func (e *Editor[T]) validationContext() validation.Context {
	return validation.Context{
		IsEdit:      e.state == StateEditing,
		Collections: e.session.store.Collections(),
	}
}

func (e *Editor[T]) reset() {
	var zero T

	e.state = StateIdle
	e.deleteMode = ""
	e.draft = zero
	e.originalID = ""
	e.pendingDelete = ""
	e.impact = nil
	e.lastErrors = nil
	e.lastWarnings = nil
}
