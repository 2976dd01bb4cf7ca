package store_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/longhornrumble/picasso-config-builder/pkg/models"
	"github.com/longhornrumble/picasso-config-builder/pkg/store"
)

func TestCollection_CreateGetList(t *testing.T) {
	t.Parallel()

	s := store.New()
	programs := s.Programs()

	require.NoError(t, programs.Create("mentoring", models.Program{ProgramID: "mentoring", ProgramName: "Mentoring"}))
	require.NoError(t, programs.Create("advocacy", models.Program{ProgramID: "advocacy", ProgramName: "Advocacy"}))

	got, ok := programs.Get("mentoring")
	require.True(t, ok)
	assert.Equal(t, "Mentoring", got.ProgramName)

	list := programs.List()
	require.Len(t, list, 2)
	assert.Equal(t, "advocacy", list[0].ProgramID, "list is sorted by id")
	assert.Equal(t, "mentoring", list[1].ProgramID)

	assert.True(t, s.Dirty())
}

func TestCollection_CreateDuplicateID(t *testing.T) {
	t.Parallel()

	s := store.New()
	programs := s.Programs()

	require.NoError(t, programs.Create("mentoring", models.Program{ProgramID: "mentoring", ProgramName: "Mentoring"}))

	err := programs.Create("mentoring", models.Program{ProgramID: "mentoring", ProgramName: "Other"})
	require.Error(t, err)
	assert.True(t, store.IsDuplicateID(err))

	got, _ := programs.Get("mentoring")
	assert.Equal(t, "Mentoring", got.ProgramName, "existing record untouched")
}

func TestCollection_UpdateMissing(t *testing.T) {
	t.Parallel()

	s := store.New()

	err := s.Programs().Update("ghost", models.Program{ProgramID: "ghost", ProgramName: "Ghost"})
	require.Error(t, err)
	assert.True(t, store.IsNotFound(err))
}

func TestCollection_DeleteIsUnconditional(t *testing.T) {
	t.Parallel()

	s := store.New()
	programs := s.Programs()

	require.NoError(t, programs.Create("mentoring", models.Program{ProgramID: "mentoring", ProgramName: "Mentoring"}))

	programs.Delete("mentoring")
	_, ok := programs.Get("mentoring")
	assert.False(t, ok)

	// Absent id is a no-op, not an error.
	programs.Delete("mentoring")
}

func TestStore_CopyOnWrite(t *testing.T) {
	t.Parallel()

	s := store.New()
	require.NoError(t, s.CTAs().Create("apply", models.CTADefinition{ID: "apply", Label: "Apply", Action: models.CTAActionStartForm}))

	snapshot := s.Collections()

	require.NoError(t, s.CTAs().Update("apply", models.CTADefinition{ID: "apply", Label: "Apply Now", Action: models.CTAActionStartForm}))
	s.CTAs().Delete("apply")

	assert.Equal(t, "Apply", snapshot.CTAs["apply"].Label, "snapshot unaffected by later writes")
}

func TestStore_NewFromDocument(t *testing.T) {
	t.Parallel()

	doc := models.Document{
		models.SectionPrograms: json.RawMessage(`{"mentoring": {"program_id": "mentoring", "program_name": "Mentoring"}}`),
		"tone_prompts":         json.RawMessage(`{"greeting": "hello"}`),
	}

	s, err := store.NewFromDocument(doc)
	require.NoError(t, err)

	assert.False(t, s.Dirty())

	_, ok := s.Programs().Get("mentoring")
	assert.True(t, ok)

	baseline := s.Baseline()
	require.NotNil(t, baseline)
	assert.JSONEq(t, `{"greeting": "hello"}`, string(baseline["tone_prompts"]))

	// Baseline copies are isolated from the caller.
	baseline["tone_prompts"] = json.RawMessage(`{}`)
	assert.JSONEq(t, `{"greeting": "hello"}`, string(s.Baseline()["tone_prompts"]))
}

func TestStore_DirtyLifecycle(t *testing.T) {
	t.Parallel()

	s := store.New()
	assert.False(t, s.Dirty())

	require.NoError(t, s.Programs().Create("p", models.Program{ProgramID: "p", ProgramName: "P"}))
	assert.True(t, s.Dirty())

	s.MarkClean()
	assert.False(t, s.Dirty())

	s.SetCTASettings(map[string]any{"display_mode": "inline"})
	assert.True(t, s.Dirty())
	assert.Equal(t, "inline", s.Collections().CTASettings["display_mode"])
}

func TestStore_EmptyBaseline(t *testing.T) {
	t.Parallel()

	s := store.New()
	assert.Nil(t, s.Baseline())
}
