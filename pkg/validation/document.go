package validation

import "github.com/longhornrumble/picasso-config-builder/pkg/models"

// ValidateDocument runs every per-entity and cross-entity rule over the
// whole configuration graph. Records are treated as existing (IsEdit), so
// id-format rules for new records do not apply; map keys already guarantee
// uniqueness.
//
// Validation is pure and idempotent: validating the same collections twice
// yields identical results.
func ValidateDocument(collections *models.Collections) *Result {
	result := NewResult()
	vctx := Context{IsEdit: true, Collections: collections}

	for id, program := range collections.Programs {
		errs, warns := ValidateProgram(program, vctx)
		result.Add(models.KindProgram, id, errs, warns)
	}

	for id, form := range collections.Forms {
		errs, warns := ValidateForm(form, vctx)
		result.Add(models.KindForm, id, errs, warns)
	}

	for id, cta := range collections.CTAs {
		errs, warns := ValidateCTA(cta, vctx)
		result.Add(models.KindCTA, id, errs, warns)
	}

	for id, branch := range collections.Branches {
		errs, warns := ValidateBranch(branch, vctx)
		result.Add(models.KindBranch, id, errs, warns)
	}

	for id, chip := range collections.Chips {
		errs, warns := ValidateChip(chip, vctx)
		result.Add(models.KindChip, id, errs, warns)
	}

	for id, item := range collections.Showcase {
		errs, warns := ValidateShowcase(item, vctx)
		result.Add(models.KindShowcase, id, errs, warns)
	}

	return result
}
