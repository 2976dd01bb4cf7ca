package validation

import "github.com/longhornrumble/picasso-config-builder/pkg/models"

// ValidateProgram checks a program record. Programs are leaf entities, so
// there are no cross-entity rules; how many forms reference a program is
// informational display data, not a validation concern.
func ValidateProgram(program models.Program, vctx Context) (errs, warns []Issue) {
	if !vctx.IsEdit {
		errs = append(errs, checkNewEntityID("program_id", program.ProgramID, func(id string) bool {
			_, exists := vctx.Collections.Programs[id]

			return exists
		})...)
	}

	if program.ProgramName == "" {
		errs = append(errs, Issue{Field: "program_name", Message: "program name is required"})
	}

	return errs, warns
}
