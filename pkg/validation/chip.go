package validation

import (
	"fmt"

	"github.com/longhornrumble/picasso-config-builder/pkg/models"
)

// ValidateChip checks an action chip record. Cross-entity rules: the
// optional target_branch, program_id, and target_showcase_id references
// must each resolve when set.
func ValidateChip(chip models.ActionChip, vctx Context) (errs, warns []Issue) {
	if !vctx.IsEdit {
		errs = append(errs, checkNewEntityID("id", chip.ID, func(id string) bool {
			_, exists := vctx.Collections.Chips[id]

			return exists
		})...)
	}

	if chip.Label == "" {
		errs = append(errs, Issue{Field: "label", Message: "label is required"})
	} else if isVagueLabel(chip.Label) {
		warns = append(warns, Issue{
			Field:   "label",
			Message: fmt.Sprintf("label %q is too generic; say where the chip leads", chip.Label),
		})
	}

	if chip.Value == "" {
		errs = append(errs, Issue{Field: "value", Message: "value is required"})
	}

	if chip.TargetBranch != "" {
		if _, exists := vctx.Collections.Branches[chip.TargetBranch]; !exists {
			errs = append(errs, Issue{
				Field:   "target_branch",
				Message: fmt.Sprintf("branch %q does not exist", chip.TargetBranch),
			})
		}
	}

	if chip.ProgramID != "" {
		if _, exists := vctx.Collections.Programs[chip.ProgramID]; !exists {
			errs = append(errs, Issue{
				Field:   "program_id",
				Message: fmt.Sprintf("program %q does not exist", chip.ProgramID),
			})
		}
	}

	if chip.TargetShowcaseID != "" {
		if _, exists := vctx.Collections.Showcase[chip.TargetShowcaseID]; !exists {
			errs = append(errs, Issue{
				Field:   "target_showcase_id",
				Message: fmt.Sprintf("showcase item %q does not exist", chip.TargetShowcaseID),
			})
		}
	}

	return errs, warns
}
