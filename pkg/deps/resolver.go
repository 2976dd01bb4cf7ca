// Package deps computes inbound reference closures used to gate deletion.
package deps

import (
	"slices"
	"sort"

	"github.com/longhornrumble/picasso-config-builder/pkg/models"
)

// DependentGroup lists the records of one collection that reference the
// entity under inspection.
type DependentGroup struct {
	Kind  models.EntityKind `json:"kind"`
	IDs   []string          `json:"ids"`
	Names []string          `json:"names"`
}

// Impact is the result of a deletion-impact query. Blocking dependents must
// be removed by the user before the deletion is allowed; informational
// dependents merely end up with dangling references, which the validation
// engine flags as errors on its next pass rather than silently repairing.
type Impact struct {
	Kind          models.EntityKind `json:"kind"`
	ID            string            `json:"id"`
	CanDelete     bool              `json:"can_delete"`
	Blocking      []DependentGroup  `json:"blocking,omitempty"`
	Informational []DependentGroup  `json:"informational,omitempty"`
}

// Resolver walks the cross-entity reference graph over a snapshot of the
// collections.
type Resolver struct {
	collections *models.Collections
}

// NewResolver creates a resolver over the given collections snapshot.
func NewResolver(collections *models.Collections) *Resolver {
	return &Resolver{collections: collections}
}

// DependentsOf computes which records reference the entity (kind, id).
//
// Blocking rules: programs are blocked by forms, forms by CTAs, CTAs by
// branches that offer them. Branches never block: a CTA or chip routing into
// a deleted branch is left dangling deliberately and surfaces as a
// validation error. Chips and showcase items are leaves.
func (r *Resolver) DependentsOf(kind models.EntityKind, id string) Impact {
	impact := Impact{Kind: kind, ID: id, CanDelete: true}

	switch kind {
	case models.KindProgram:
		impact.addBlocking(r.formsReferencingProgram(id))
		impact.addInformational(r.chipsReferencingProgram(id))
		impact.addInformational(r.showcaseReferencingProgram(id))
	case models.KindForm:
		impact.addBlocking(r.ctasReferencingForm(id))
	case models.KindCTA:
		impact.addBlocking(r.branchesReferencingCTA(id))
		impact.addInformational(r.showcaseReferencingCTA(id))
	case models.KindBranch:
		impact.addInformational(r.ctasReferencingBranch(id))
		impact.addInformational(r.chipsReferencingBranch(id))
	case models.KindChip:
		// Leaf: nothing references chips.
	case models.KindShowcase:
		impact.addInformational(r.chipsReferencingShowcase(id))
	}

	return impact
}

func (i *Impact) addBlocking(group DependentGroup) {
	if len(group.IDs) == 0 {
		return
	}

	i.Blocking = append(i.Blocking, group)
	i.CanDelete = false
}

func (i *Impact) addInformational(group DependentGroup) {
	if len(group.IDs) == 0 {
		return
	}

	i.Informational = append(i.Informational, group)
}

func (r *Resolver) formsReferencingProgram(programID string) DependentGroup {
	group := DependentGroup{Kind: models.KindForm}

	for id, form := range r.collections.Forms {
		if form.Program == programID {
			group.add(id, form.DisplayName())
		}
	}

	group.sort()

	return group
}

func (r *Resolver) ctasReferencingForm(formID string) DependentGroup {
	group := DependentGroup{Kind: models.KindCTA}

	for id, cta := range r.collections.CTAs {
		if cta.FormID == formID {
			group.add(id, cta.DisplayName())
		}
	}

	group.sort()

	return group
}

func (r *Resolver) branchesReferencingCTA(ctaID string) DependentGroup {
	group := DependentGroup{Kind: models.KindBranch}

	for id, branch := range r.collections.Branches {
		if branch.AvailableCTAs.Primary == ctaID || slices.Contains(branch.AvailableCTAs.Secondary, ctaID) {
			group.add(id, branch.DisplayName())
		}
	}

	group.sort()

	return group
}

func (r *Resolver) ctasReferencingBranch(branchID string) DependentGroup {
	group := DependentGroup{Kind: models.KindCTA}

	for id, cta := range r.collections.CTAs {
		if cta.TargetBranch == branchID {
			group.add(id, cta.DisplayName())
		}
	}

	group.sort()

	return group
}

func (r *Resolver) chipsReferencingBranch(branchID string) DependentGroup {
	group := DependentGroup{Kind: models.KindChip}

	for id, chip := range r.collections.Chips {
		if chip.TargetBranch == branchID {
			group.add(id, chip.DisplayName())
		}
	}

	group.sort()

	return group
}

func (r *Resolver) chipsReferencingProgram(programID string) DependentGroup {
	group := DependentGroup{Kind: models.KindChip}

	for id, chip := range r.collections.Chips {
		if chip.ProgramID == programID {
			group.add(id, chip.DisplayName())
		}
	}

	group.sort()

	return group
}

func (r *Resolver) chipsReferencingShowcase(showcaseID string) DependentGroup {
	group := DependentGroup{Kind: models.KindChip}

	for id, chip := range r.collections.Chips {
		if chip.TargetShowcaseID == showcaseID {
			group.add(id, chip.DisplayName())
		}
	}

	group.sort()

	return group
}

func (r *Resolver) showcaseReferencingProgram(programID string) DependentGroup {
	group := DependentGroup{Kind: models.KindShowcase}

	for id, item := range r.collections.Showcase {
		if item.ProgramID == programID {
			group.add(id, item.DisplayName())
		}
	}

	group.sort()

	return group
}

func (r *Resolver) showcaseReferencingCTA(ctaID string) DependentGroup {
	group := DependentGroup{Kind: models.KindShowcase}

	for id, item := range r.collections.Showcase {
		if item.Action != nil && item.Action.Type == models.ShowcaseActionCTA && item.Action.CTAID == ctaID {
			group.add(id, item.DisplayName())
		}
	}

	group.sort()

	return group
}

func (g *DependentGroup) add(id, name string) {
	g.IDs = append(g.IDs, id)
	g.Names = append(g.Names, name)
}

// sort orders ids (with their names) for deterministic output.
func (g *DependentGroup) sort() {
	if len(g.IDs) < 2 {
		return
	}

	indexes := make([]int, len(g.IDs))
	for i := range indexes {
		indexes[i] = i
	}

	sort.Slice(indexes, func(a, b int) bool { return g.IDs[indexes[a]] < g.IDs[indexes[b]] })

	ids := make([]string, len(g.IDs))
	names := make([]string, len(g.Names))

	for pos, idx := range indexes {
		ids[pos] = g.IDs[idx]
		names[pos] = g.Names[idx]
	}

	g.IDs = ids
	g.Names = names
}
