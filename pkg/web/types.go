// Package web provides the HTTP API for the configuration editor.
package web

import (
	"time"

	"github.com/longhornrumble/picasso-config-builder/pkg/deps"
	"github.com/longhornrumble/picasso-config-builder/pkg/models"
	"github.com/longhornrumble/picasso-config-builder/pkg/validation"
)

// CTARequest carries a call-to-action in a create or update body. The id is
// part of the payload here even though stored records key it by map position.
type CTARequest struct {
	ID string `json:"id" validate:"required"`

	// Field-level rules are the domain validator's concern, not the wire layer's.
	models.CTADefinition `validate:"-"`
}

func (r CTARequest) toModel() models.CTADefinition {
	cta := r.CTADefinition
	cta.ID = r.ID

	return cta
}

// BranchRequest carries a conversation branch in a create or update body.
type BranchRequest struct {
	ID string `json:"id" validate:"required"`

	models.ConversationBranch `validate:"-"`
}

func (r BranchRequest) toModel() models.ConversationBranch {
	branch := r.ConversationBranch
	branch.ID = r.ID

	return branch
}

// ChipRequest carries an action chip in a create or update body.
type ChipRequest struct {
	ID string `json:"id" validate:"required"`

	models.ActionChip `validate:"-"`
}

func (r ChipRequest) toModel() models.ActionChip {
	chip := r.ActionChip
	chip.ID = r.ID

	return chip
}

// IssuesResponse is returned when a submitted record fails validation.
type IssuesResponse struct {
	Errors   []validation.Issue `json:"errors"`
	Warnings []validation.Issue `json:"warnings"`
}

// EntityResponse wraps a committed record together with any non-blocking
// warnings the validator raised against it.
type EntityResponse struct {
	ID       string             `json:"id"`
	Entity   any                `json:"entity"`
	Warnings []validation.Issue `json:"warnings,omitempty"`
}

// ImpactResponse reports what depends on a record ahead of deletion.
type ImpactResponse struct {
	CanDelete     bool                  `json:"can_delete"`
	Blocking      []deps.DependentGroup `json:"blocking"`
	Informational []deps.DependentGroup `json:"informational"`
}

func impactResponse(impact *deps.Impact) ImpactResponse {
	resp := ImpactResponse{
		CanDelete:     impact.CanDelete,
		Blocking:      impact.Blocking,
		Informational: impact.Informational,
	}

	if resp.Blocking == nil {
		resp.Blocking = []deps.DependentGroup{}
	}

	if resp.Informational == nil {
		resp.Informational = []deps.DependentGroup{}
	}

	return resp
}

// SessionResponse summarizes the tenant's in-memory editing session.
type SessionResponse struct {
	TenantID string              `json:"tenant_id"`
	Dirty    bool                `json:"dirty"`
	Busy     bool                `json:"busy"`
	Counts   map[string]int      `json:"counts"`
	Version  int                 `json:"version"`
	Snapshot validation.Snapshot `json:"validation"`
}

// DeployResponse reports the outcome of a successful deployment.
type DeployResponse struct {
	TenantID     string    `json:"tenant_id"`
	DeploymentID string    `json:"deployment_id"`
	Version      int       `json:"version"`
	DeployedAt   time.Time `json:"deployed_at"`
}

// BackupResponse describes one stored deployment backup.
type BackupResponse struct {
	Key       string    `json:"key"`
	TenantID  string    `json:"tenant_id"`
	CreatedAt time.Time `json:"created_at"`
}
