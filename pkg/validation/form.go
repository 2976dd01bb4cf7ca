package validation

import (
	"fmt"
	"slices"

	"github.com/longhornrumble/picasso-config-builder/pkg/models"
)

// maxAdvisedFormFields is the advisory ceiling on questions per form; long
// forms complete poorly in a chat conversation.
const maxAdvisedFormFields = 10

// ValidateForm checks a conversational form record and its ordered fields.
// Cross-entity rule: the program reference must resolve.
func ValidateForm(form models.ConversationalForm, vctx Context) (errs, warns []Issue) {
	if !vctx.IsEdit {
		errs = append(errs, checkNewEntityID("form_id", form.FormID, func(id string) bool {
			_, exists := vctx.Collections.Forms[id]

			return exists
		})...)
	}

	if form.Title == "" {
		errs = append(errs, Issue{Field: "title", Message: "title is required"})
	}

	switch {
	case form.Program == "":
		errs = append(errs, Issue{Field: "program", Message: "form must belong to a program"})
	default:
		if _, exists := vctx.Collections.Programs[form.Program]; !exists {
			errs = append(errs, Issue{
				Field:   "program",
				Message: fmt.Sprintf("program %q does not exist", form.Program),
			})
		}
	}

	errs, warns = validateFormFields(form.Fields, errs, warns)

	return errs, warns
}

func validateFormFields(fields []models.FormField, errs, warns []Issue) ([]Issue, []Issue) {
	if len(fields) == 0 {
		warns = append(warns, Issue{Field: "fields", Message: "form has no fields"})

		return errs, warns
	}

	if len(fields) > maxAdvisedFormFields {
		warns = append(warns, Issue{
			Field:   "fields",
			Message: fmt.Sprintf("form has %d fields; forms longer than %d questions complete poorly", len(fields), maxAdvisedFormFields),
		})
	}

	seen := make(map[string]bool, len(fields))

	for i, field := range fields {
		prefix := fmt.Sprintf("fields[%d]", i)

		switch {
		case field.ID == "":
			errs = append(errs, Issue{Field: prefix + ".id", Message: "field id is required"})
		case seen[field.ID]:
			errs = append(errs, Issue{
				Field:   prefix + ".id",
				Message: fmt.Sprintf("duplicate field id %q within form", field.ID),
			})
		default:
			seen[field.ID] = true
		}

		if field.Label == "" {
			errs = append(errs, Issue{Field: prefix + ".label", Message: "field label is required"})
		}

		if !models.KnownFieldTypes[field.Type] {
			errs = append(errs, Issue{
				Field:   prefix + ".type",
				Message: fmt.Sprintf("unknown field type %q", field.Type),
			})

			continue
		}

		if field.Type == models.FieldTypeSelect && len(field.Options) == 0 {
			// Options are required for select correctness: an error, not a warning.
			errs = append(errs, Issue{Field: prefix + ".options", Message: "select field must have at least one option"})
		}

		if len(field.EligibilityGate) > 0 {
			if field.Type != models.FieldTypeSelect {
				errs = append(errs, Issue{
					Field:   prefix + ".eligibility_gate",
					Message: "eligibility gate is only valid on select fields",
				})
			} else {
				for _, value := range field.EligibilityGate {
					if !slices.Contains(field.Options, value) {
						warns = append(warns, Issue{
							Field:   prefix + ".eligibility_gate",
							Message: fmt.Sprintf("gate value %q is not one of the field's options", value),
						})
					}
				}
			}
		}
	}

	return errs, warns
}
