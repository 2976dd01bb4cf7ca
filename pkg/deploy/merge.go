package deploy

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"

	"github.com/longhornrumble/picasso-config-builder/pkg/models"
)

// Merger builds the document to persist from the last-loaded server
// document and the client's in-memory edits. The clock and id source are
// injectable for tests.
type Merger struct {
	now   func() time.Time
	newID func() string
}

// NewMerger creates a merger using the wall clock and random deployment ids.
func NewMerger() *Merger {
	return &Merger{
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
}

// Prepare produces the merged document for deployment:
//
//  1. Start from a deep copy of the server document, so sections the editor
//     does not know about survive unchanged.
//  2. Replace every editable section wholesale with the client collections,
//     converted back to each section's on-wire shape.
//  3. Keep every read-only section verbatim from the server document, and
//     reject with ProtectedSectionError if the client edits differ from the
//     loaded baseline for such a section.
//  4. Stamp document metadata: incremented version, update timestamp, and a
//     fresh deployment id.
//
// Prepare either returns a complete merged document or an error; it never
// returns a partially-merged one.
func (m *Merger) Prepare(server models.Document, edits *models.Collections) (models.Document, error) {
	if server == nil {
		return nil, ErrNoBaseline
	}

	if err := m.checkProtectedSections(server, edits); err != nil {
		return nil, err
	}

	merged := server.Clone()

	for _, name := range models.EditableSections {
		raw, err := edits.EncodeSection(name)
		if err != nil {
			return nil, fmt.Errorf("failed to encode editable section: %w", err)
		}

		merged[name] = raw
	}

	if err := m.stampMetadata(merged); err != nil {
		return nil, err
	}

	return merged, nil
}

// checkProtectedSections verifies the client's view of each read-only
// section still matches the loaded baseline. A mismatch refuses the whole
// deployment rather than silently dropping the edit.
func (m *Merger) checkProtectedSections(server models.Document, edits *models.Collections) error {
	for _, name := range models.ReadOnlySections {
		if name != models.SectionActionChips {
			continue
		}

		baseline, err := models.NormalizeActionChips(server[name])
		if err != nil {
			return fmt.Errorf("failed to decode baseline %s section: %w", name, err)
		}

		if !reflect.DeepEqual(baseline, edits.Chips) {
			return &ProtectedSectionError{Section: name}
		}
	}

	return nil
}

func (m *Merger) stampMetadata(doc models.Document) error {
	var meta models.Metadata

	if raw, ok := doc[models.SectionMetadata]; ok {
		// Tolerate extra metadata keys the editor doesn't know about.
		if err := json.Unmarshal(raw, &meta); err != nil {
			return fmt.Errorf("failed to decode document metadata: %w", err)
		}
	}

	meta.Version++
	meta.UpdatedAt = m.now().UTC().Format(time.RFC3339)
	meta.DeploymentID = m.newID()

	merged, err := mergeMetadata(doc[models.SectionMetadata], meta)
	if err != nil {
		return err
	}

	doc[models.SectionMetadata] = merged

	return nil
}

// mergeMetadata overlays the stamped fields onto the existing metadata
// object so keys owned by other systems are preserved.
func mergeMetadata(existing json.RawMessage, meta models.Metadata) (json.RawMessage, error) {
	out := map[string]any{}

	if len(existing) > 0 {
		if err := json.Unmarshal(existing, &out); err != nil {
			return nil, fmt.Errorf("failed to decode document metadata: %w", err)
		}
	}

	out["version"] = meta.Version
	out["updated_at"] = meta.UpdatedAt
	out["deployment_id"] = meta.DeploymentID

	raw, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document metadata: %w", err)
	}

	return raw, nil
}

// BuildDraft assembles the document for a partial save: editable sections
// come from the edits, everything else (read-only sections included) from
// the baseline, without protected-section checks or metadata stamping.
func (m *Merger) BuildDraft(server models.Document, edits *models.Collections) (models.Document, error) {
	draft := models.Document{}
	if server != nil {
		draft = server.Clone()
	}

	for _, name := range models.EditableSections {
		raw, err := edits.EncodeSection(name)
		if err != nil {
			return nil, fmt.Errorf("failed to encode editable section: %w", err)
		}

		draft[name] = raw
	}

	return draft, nil
}
