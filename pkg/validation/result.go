// Package validation implements the per-entity and cross-entity rule set
// that gates submits and deployments.
//
// Validation issues never throw: validators are pure functions returning
// issue lists alongside the (possibly invalid) draft. Errors block submit
// and deployment; warnings are advisory and never block.
package validation

import (
	"github.com/longhornrumble/picasso-config-builder/pkg/models"
)

// Issue is one field-level validation finding.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Context carries what a per-entity validator needs beyond the record
// itself: whether the record is being edited (id uniqueness and format are
// only checked for new records, since ids are immutable after creation) and
// the sibling collections for cross-entity reference checks.
type Context struct {
	IsEdit      bool
	Collections *models.Collections
}

// Result aggregates issues for a whole document, keyed by
// "<collection>/<id>" so one map spans every collection.
type Result struct {
	Errors   map[string][]Issue `json:"errors"`
	Warnings map[string][]Issue `json:"warnings"`
}

// NewResult returns an empty result.
func NewResult() *Result {
	return &Result{
		Errors:   map[string][]Issue{},
		Warnings: map[string][]Issue{},
	}
}

// Valid reports whether the error map is empty for every entity.
func (r *Result) Valid() bool {
	return len(r.Errors) == 0
}

// Add records the issues found for one entity. Empty slices are skipped so
// the maps only carry entities that actually have findings.
func (r *Result) Add(kind models.EntityKind, id string, errs, warns []Issue) {
	key := models.EntityKey(kind, id)

	if len(errs) > 0 {
		r.Errors[key] = errs
	}

	if len(warns) > 0 {
		r.Warnings[key] = warns
	}
}

// Snapshot is the read model handed to UI consumers needing a validation
// summary badge.
type Snapshot struct {
	Errors   map[string][]Issue `json:"errors"`
	Warnings map[string][]Issue `json:"warnings"`
	IsValid  bool               `json:"is_valid"`
}

// Snapshot converts the result into the exposed read model.
func (r *Result) Snapshot() Snapshot {
	return Snapshot{
		Errors:   r.Errors,
		Warnings: r.Warnings,
		IsValid:  r.Valid(),
	}
}
