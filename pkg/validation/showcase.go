package validation

import (
	"fmt"

	"github.com/longhornrumble/picasso-config-builder/pkg/models"
)

// ValidateShowcase checks a content showcase card. Cross-entity rules: the
// optional program reference and, for cta-typed actions, the CTA reference
// must resolve.
func ValidateShowcase(item models.ShowcaseItem, vctx Context) (errs, warns []Issue) {
	if !vctx.IsEdit {
		errs = append(errs, checkNewEntityID("id", item.ID, func(id string) bool {
			_, exists := vctx.Collections.Showcase[id]

			return exists
		})...)
	}

	if item.Name == "" {
		errs = append(errs, Issue{Field: "name", Message: "name is required"})
	}

	if len(item.Keywords) == 0 {
		warns = append(warns, Issue{Field: "keywords", Message: "card has no keywords and will not surface in topic matching"})
	}

	if item.ProgramID != "" {
		if _, exists := vctx.Collections.Programs[item.ProgramID]; !exists {
			errs = append(errs, Issue{
				Field:   "program_id",
				Message: fmt.Sprintf("program %q does not exist", item.ProgramID),
			})
		}
	}

	if item.Action != nil {
		errs, warns = validateShowcaseAction(*item.Action, vctx, errs, warns)
	}

	return errs, warns
}

func validateShowcaseAction(action models.ShowcaseAction, vctx Context, errs, warns []Issue) ([]Issue, []Issue) {
	if !models.KnownShowcaseActionTypes[action.Type] {
		errs = append(errs, Issue{
			Field:   "action.type",
			Message: fmt.Sprintf("unknown action type %q", action.Type),
		})

		return errs, warns
	}

	switch action.Type {
	case models.ShowcaseActionPrompt:
		if action.Prompt == "" {
			errs = append(errs, Issue{Field: "action.prompt", Message: "prompt is required for prompt actions"})
		}
	case models.ShowcaseActionURL:
		if action.URL == "" {
			errs = append(errs, Issue{Field: "action.url", Message: "url is required for url actions"})
		} else if !isWebURL(action.URL) {
			warns = append(warns, Issue{Field: "action.url", Message: "url should start with http:// or https://"})
		}
	case models.ShowcaseActionCTA:
		if action.CTAID == "" {
			errs = append(errs, Issue{Field: "action.cta_id", Message: "cta_id is required for cta actions"})
		} else if _, exists := vctx.Collections.CTAs[action.CTAID]; !exists {
			errs = append(errs, Issue{
				Field:   "action.cta_id",
				Message: fmt.Sprintf("CTA %q does not exist", action.CTAID),
			})
		}
	}

	if action.Label != "" && isVagueLabel(action.Label) {
		warns = append(warns, Issue{
			Field:   "action.label",
			Message: fmt.Sprintf("label %q is too generic; say what the card does", action.Label),
		})
	}

	return errs, warns
}
