package validation

import (
	"fmt"
	"strings"

	"github.com/longhornrumble/picasso-config-builder/pkg/models"
)

// ValidateBranch checks a conversation branch record. Cross-entity rules:
// the primary CTA and every secondary CTA must resolve, and secondary
// entries may not repeat the primary.
func ValidateBranch(branch models.ConversationBranch, vctx Context) (errs, warns []Issue) {
	if !vctx.IsEdit {
		errs = append(errs, checkNewEntityID("id", branch.ID, func(id string) bool {
			_, exists := vctx.Collections.Branches[id]

			return exists
		})...)
	}

	errs = append(errs, validateDetectionKeywords(branch.DetectionKeywords)...)

	primary := branch.AvailableCTAs.Primary
	if primary == "" {
		errs = append(errs, Issue{Field: "available_ctas.primary", Message: "a primary CTA is required"})
	} else if _, exists := vctx.Collections.CTAs[primary]; !exists {
		errs = append(errs, Issue{
			Field:   "available_ctas.primary",
			Message: fmt.Sprintf("CTA %q does not exist", primary),
		})
	}

	if len(branch.AvailableCTAs.Secondary) > models.MaxSecondaryCTAs {
		errs = append(errs, Issue{
			Field:   "available_ctas.secondary",
			Message: fmt.Sprintf("at most %d secondary CTAs are allowed", models.MaxSecondaryCTAs),
		})
	}

	seen := make(map[string]bool, len(branch.AvailableCTAs.Secondary))

	for i, id := range branch.AvailableCTAs.Secondary {
		field := fmt.Sprintf("available_ctas.secondary[%d]", i)

		switch {
		case id == "":
			errs = append(errs, Issue{Field: field, Message: "secondary CTA id must not be empty"})

			continue
		case id == primary:
			errs = append(errs, Issue{Field: field, Message: "secondary CTA duplicates the primary CTA"})
		case seen[id]:
			errs = append(errs, Issue{Field: field, Message: fmt.Sprintf("duplicate secondary CTA %q", id)})
		}

		seen[id] = true

		if _, exists := vctx.Collections.CTAs[id]; !exists {
			errs = append(errs, Issue{Field: field, Message: fmt.Sprintf("CTA %q does not exist", id)})
		}
	}

	if total := branch.TotalCTAs(); total > models.MaxBranchCTAs {
		warns = append(warns, Issue{
			Field:   "available_ctas",
			Message: fmt.Sprintf("branch offers %d CTAs; more than %d crowds the chat layout", total, models.MaxBranchCTAs),
		})
	}

	return errs, warns
}

func validateDetectionKeywords(keywords []string) []Issue {
	if len(keywords) == 0 {
		return []Issue{{Field: "detection_keywords", Message: "at least one detection keyword is required"}}
	}

	var errs []Issue

	seen := make(map[string]bool, len(keywords))

	for i, keyword := range keywords {
		field := fmt.Sprintf("detection_keywords[%d]", i)

		normalized := strings.ToLower(strings.TrimSpace(keyword))
		if normalized == "" {
			errs = append(errs, Issue{Field: field, Message: "keyword must not be empty"})

			continue
		}

		if seen[normalized] {
			errs = append(errs, Issue{Field: field, Message: fmt.Sprintf("duplicate keyword %q", keyword)})
		}

		seen[normalized] = true
	}

	return errs
}
