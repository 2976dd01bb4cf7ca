// Package deploy builds the deployable document from client edits and
// publishes it through the storage layer.
package deploy

import (
	"errors"
	"fmt"
)

var (
	// ErrDocumentInvalid indicates deployment was refused because the global
	// validation pass found errors.
	ErrDocumentInvalid = errors.New("document has validation errors")

	// ErrNoBaseline indicates no server document was loaded for the session,
	// so there is nothing to merge edits into.
	ErrNoBaseline = errors.New("no server document loaded")
)

// ProtectedSectionError indicates a client-side edit to a read-only section
// that differs from the loaded baseline. Deployment is refused entirely
// rather than silently stripping the edit, so the user is never misled about
// what was or wasn't published.
type ProtectedSectionError struct {
	Section string
}

func (e *ProtectedSectionError) Error() string {
	return fmt.Sprintf("section %q is read-only and was modified by the client", e.Section)
}

// IsProtectedSection checks if an error indicates a rejected read-only edit.
func IsProtectedSection(err error) bool {
	var pse *ProtectedSectionError

	return errors.As(err, &pse)
}
