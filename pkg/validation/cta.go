package validation

import (
	"fmt"

	"github.com/longhornrumble/picasso-config-builder/pkg/models"
)

// ValidateCTA checks a call-to-action record. The action determines which
// payload field is required; payload fields belonging to other actions are
// ignored at runtime, so carrying them is a warning rather than an error.
// Cross-entity rules: formId and target_branch must resolve.
func ValidateCTA(cta models.CTADefinition, vctx Context) (errs, warns []Issue) {
	if !vctx.IsEdit {
		errs = append(errs, checkNewEntityID("id", cta.ID, func(id string) bool {
			_, exists := vctx.Collections.CTAs[id]

			return exists
		})...)
	}

	if cta.Label == "" {
		errs = append(errs, Issue{Field: "label", Message: "label is required"})
	} else if isVagueLabel(cta.Label) {
		warns = append(warns, Issue{
			Field:   "label",
			Message: fmt.Sprintf("label %q is too generic; say what the button does", cta.Label),
		})
	}

	if !models.KnownCTAActions[cta.Action] {
		errs = append(errs, Issue{Field: "action", Message: fmt.Sprintf("unknown action %q", cta.Action)})

		return errs, warns
	}

	requiredField, value := cta.PayloadField()
	if value == "" {
		errs = append(errs, Issue{
			Field:   requiredField,
			Message: fmt.Sprintf("%s is required for action %q", requiredField, cta.Action),
		})
	}

	warns = append(warns, strayPayloadWarnings(cta, requiredField)...)

	if cta.Action == models.CTAActionExternalLink && cta.URL != "" && !isWebURL(cta.URL) {
		warns = append(warns, Issue{Field: "url", Message: "url should start with http:// or https://"})
	}

	// A set formId must resolve no matter which action is selected: form
	// deletion is blocked on any CTA carrying the id, so a dangling one
	// can never ride along as a mere stray-payload warning.
	if cta.FormID != "" {
		if _, exists := vctx.Collections.Forms[cta.FormID]; !exists {
			errs = append(errs, Issue{
				Field:   "formId",
				Message: fmt.Sprintf("form %q does not exist", cta.FormID),
			})
		}
	}

	if cta.TargetBranch != "" {
		if _, exists := vctx.Collections.Branches[cta.TargetBranch]; !exists {
			errs = append(errs, Issue{
				Field:   "target_branch",
				Message: fmt.Sprintf("branch %q does not exist", cta.TargetBranch),
			})
		}
	}

	return errs, warns
}

// strayPayloadWarnings flags payload fields that belong to an action other
// than the one selected.
func strayPayloadWarnings(cta models.CTADefinition, requiredField string) []Issue {
	var warns []Issue

	payloads := []struct {
		field string
		value string
	}{
		{"formId", cta.FormID},
		{"url", cta.URL},
		{"query", cta.Query},
		{"prompt", cta.Prompt},
	}

	for _, p := range payloads {
		field, value := p.field, p.value
		if field != requiredField && value != "" {
			warns = append(warns, Issue{
				Field:   field,
				Message: fmt.Sprintf("%s is ignored for action %q", field, cta.Action),
			})
		}
	}

	return warns
}
