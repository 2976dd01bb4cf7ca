package deploy

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/longhornrumble/picasso-config-builder/pkg/models"
)

func testMerger() *Merger {
	return &Merger{
		now:   func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) },
		newID: func() string { return "deploy-0001" },
	}
}

func serverDocument() models.Document {
	return models.Document{
		models.SectionPrograms: json.RawMessage(`{"mentoring": {"program_id": "mentoring", "program_name": "Mentoring"}}`),
		models.SectionActionChips: json.RawMessage(`{
			"get-help": {"label": "Get Help", "value": "help"}
		}`),
		models.SectionMetadata: json.RawMessage(`{"version": 3, "pipeline_run": "abc123"}`),
		"tone_prompts":         json.RawMessage(`{"greeting": "Hello"}`),
	}
}

func editedCollections(t *testing.T) *models.Collections {
	t.Helper()

	c, err := models.DecodeDocument(serverDocument())
	require.NoError(t, err)

	c.Programs["advocacy"] = models.Program{ProgramID: "advocacy", ProgramName: "Advocacy"}

	return c
}

func TestPrepare_MergesEditsOverBaseline(t *testing.T) {
	t.Parallel()

	server := serverDocument()

	merged, err := testMerger().Prepare(server, editedCollections(t))
	require.NoError(t, err)

	// Unknown sections survive byte-for-byte.
	assert.Equal(t, string(server["tone_prompts"]), string(merged["tone_prompts"]))

	// Editable sections carry the edits.
	var programs map[string]models.Program
	require.NoError(t, json.Unmarshal(merged[models.SectionPrograms], &programs))
	assert.Len(t, programs, 2)
	assert.Equal(t, "Advocacy", programs["advocacy"].ProgramName)

	// Every editable section is present even when empty.
	for _, name := range models.EditableSections {
		assert.Contains(t, merged, name)
	}
}

func TestPrepare_StampsMetadata(t *testing.T) {
	t.Parallel()

	merged, err := testMerger().Prepare(serverDocument(), editedCollections(t))
	require.NoError(t, err)

	var meta map[string]any
	require.NoError(t, json.Unmarshal(merged[models.SectionMetadata], &meta))

	assert.EqualValues(t, 4, meta["version"], "version incremented")
	assert.Equal(t, "2025-06-01T12:00:00Z", meta["updated_at"])
	assert.Equal(t, "deploy-0001", meta["deployment_id"])
	assert.Equal(t, "abc123", meta["pipeline_run"], "foreign metadata keys preserved")
}

func TestPrepare_StampsMetadataWhenSectionMissing(t *testing.T) {
	t.Parallel()

	server := serverDocument()
	delete(server, models.SectionMetadata)

	c, err := models.DecodeDocument(server)
	require.NoError(t, err)

	merged, err := testMerger().Prepare(server, c)
	require.NoError(t, err)

	var meta models.Metadata
	require.NoError(t, json.Unmarshal(merged[models.SectionMetadata], &meta))
	assert.Equal(t, 1, meta.Version)
	assert.Equal(t, "deploy-0001", meta.DeploymentID)
}

func TestPrepare_RejectsChipDrift(t *testing.T) {
	t.Parallel()

	edits := editedCollections(t)
	edits.Chips["rogue"] = models.ActionChip{ID: "rogue", Label: "Rogue", Value: "rogue"}

	_, err := testMerger().Prepare(serverDocument(), edits)
	require.Error(t, err)
	assert.True(t, IsProtectedSection(err))
	assert.ErrorContains(t, err, models.SectionActionChips)
}

func TestPrepare_ChipShapeDifferenceIsNotDrift(t *testing.T) {
	t.Parallel()

	// Baseline stores chips in the legacy array shape; the loaded session
	// holds the normalized mapping. Same content, different shape: no drift.
	server := serverDocument()
	server[models.SectionActionChips] = json.RawMessage(`[{"label": "Get Help", "value": "help"}]`)

	c, err := models.DecodeDocument(server)
	require.NoError(t, err)

	_, err = testMerger().Prepare(server, c)
	assert.NoError(t, err)
}

func TestPrepare_NilBaseline(t *testing.T) {
	t.Parallel()

	_, err := testMerger().Prepare(nil, models.NewCollections())
	assert.ErrorIs(t, err, ErrNoBaseline)
}

func TestPrepare_DoesNotMutateServerDocument(t *testing.T) {
	t.Parallel()

	server := serverDocument()
	before := string(server[models.SectionMetadata])

	_, err := testMerger().Prepare(server, editedCollections(t))
	require.NoError(t, err)

	assert.Equal(t, before, string(server[models.SectionMetadata]))
}

func TestBuildDraft(t *testing.T) {
	t.Parallel()

	server := serverDocument()

	draft, err := testMerger().BuildDraft(server, editedCollections(t))
	require.NoError(t, err)

	// No metadata stamp on a draft save.
	assert.Equal(t, string(server[models.SectionMetadata]), string(draft[models.SectionMetadata]))

	// Chips come from the baseline, not the edits.
	assert.Equal(t, string(server[models.SectionActionChips]), string(draft[models.SectionActionChips]))

	var programs map[string]models.Program
	require.NoError(t, json.Unmarshal(draft[models.SectionPrograms], &programs))
	assert.Contains(t, programs, "advocacy")
}

func TestBuildDraft_NoBaseline(t *testing.T) {
	t.Parallel()

	c := models.NewCollections()
	c.Programs["p"] = models.Program{ProgramID: "p", ProgramName: "P"}

	draft, err := testMerger().BuildDraft(nil, c)
	require.NoError(t, err)
	assert.Contains(t, draft, models.SectionPrograms)
	assert.NotContains(t, draft, models.SectionActionChips)
}
