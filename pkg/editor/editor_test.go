package editor_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/longhornrumble/picasso-config-builder/pkg/editor"
	"github.com/longhornrumble/picasso-config-builder/pkg/models"
	"github.com/longhornrumble/picasso-config-builder/pkg/store"
)

func testSession(t *testing.T) *editor.Session {
	t.Helper()

	s := store.New()
	require.NoError(t, s.Programs().Create("mentoring", models.Program{ProgramID: "mentoring", ProgramName: "Mentoring"}))
	require.NoError(t, s.Forms().Create("intake", models.ConversationalForm{
		FormID: "intake", Title: "Intake", Program: "mentoring",
		Fields: []models.FormField{{ID: "email", Type: models.FieldTypeEmail, Label: "Email"}},
	}))
	require.NoError(t, s.CTAs().Create("apply", models.CTADefinition{
		ID: "apply", Label: "Apply", Action: models.CTAActionStartForm, FormID: "intake",
	}))

	return editor.NewSession("tenant-1", s, slog.Default())
}

func TestEditor_CreateFlow(t *testing.T) {
	t.Parallel()

	session := testSession(t)
	ed := session.Programs()

	assert.Equal(t, editor.StateIdle, ed.State())

	draft := ed.OpenCreate()
	assert.Equal(t, editor.StateCreating, ed.State())
	assert.Empty(t, draft.ProgramID)

	// Change validates without persisting.
	errs, _, err := ed.Change(models.Program{ProgramID: "advocacy"})
	require.NoError(t, err)
	assert.NotEmpty(t, errs, "name still missing")

	_, ok := session.Store().Programs().Get("advocacy")
	assert.False(t, ok, "change must not persist")

	require.NoError(t, ed.Submit(models.Program{ProgramID: "advocacy", ProgramName: "Advocacy"}))
	assert.Equal(t, editor.StateIdle, ed.State())

	created, ok := session.Store().Programs().Get("advocacy")
	require.True(t, ok)
	assert.Equal(t, "Advocacy", created.ProgramName)
}

func TestEditor_SubmitRejectsInvalidDraft(t *testing.T) {
	t.Parallel()

	session := testSession(t)
	ed := session.Programs()

	ed.OpenCreate()

	err := ed.Submit(models.Program{ProgramID: "advocacy"})
	require.Error(t, err)
	assert.True(t, editor.IsValidationFailed(err))
	assert.Equal(t, editor.StateCreating, ed.State(), "form stays open for correction")

	errs, _ := ed.Issues()
	assert.NotEmpty(t, errs)

	_, ok := session.Store().Programs().Get("advocacy")
	assert.False(t, ok)
}

func TestEditor_SubmitWithoutOpenForm(t *testing.T) {
	t.Parallel()

	session := testSession(t)

	err := session.Programs().Submit(models.Program{ProgramID: "x", ProgramName: "X"})
	assert.Error(t, err)
}

func TestEditor_EditFlow(t *testing.T) {
	t.Parallel()

	session := testSession(t)
	ed := session.Programs()

	existing, err := ed.OpenEdit("mentoring")
	require.NoError(t, err)
	assert.Equal(t, "Mentoring", existing.ProgramName)
	assert.Equal(t, editor.StateEditing, ed.State())

	require.NoError(t, ed.Submit(models.Program{ProgramID: "mentoring", ProgramName: "Mentoring Plus"}))

	updated, _ := session.Store().Programs().Get("mentoring")
	assert.Equal(t, "Mentoring Plus", updated.ProgramName)
}

func TestEditor_EditUnknownID(t *testing.T) {
	t.Parallel()

	session := testSession(t)

	_, err := session.Programs().OpenEdit("ghost")
	require.Error(t, err)
	assert.True(t, store.IsNotFound(err))
}

func TestEditor_IDIsImmutableDuringEdit(t *testing.T) {
	t.Parallel()

	session := testSession(t)
	ed := session.Programs()

	_, err := ed.OpenEdit("mentoring")
	require.NoError(t, err)

	err = ed.Submit(models.Program{ProgramID: "renamed", ProgramName: "Renamed"})
	require.Error(t, err)

	_, ok := session.Store().Programs().Get("renamed")
	assert.False(t, ok)
	_, ok = session.Store().Programs().Get("mentoring")
	assert.True(t, ok)
}

func TestEditor_DeleteConfirmFlow(t *testing.T) {
	t.Parallel()

	session := testSession(t)
	ed := session.CTAs()

	// No branch references the CTA, so deletion is confirmable.
	impact, err := ed.OpenDelete("apply")
	require.NoError(t, err)
	assert.True(t, impact.CanDelete)
	assert.Equal(t, editor.StateConfirmingDelete, ed.State())
	assert.Equal(t, editor.DeleteModeConfirm, ed.DeleteMode())

	require.NoError(t, ed.ConfirmDelete())
	assert.Equal(t, editor.StateIdle, ed.State())

	_, ok := session.Store().CTAs().Get("apply")
	assert.False(t, ok)
}

func TestEditor_DeleteBlockedByDependents(t *testing.T) {
	t.Parallel()

	session := testSession(t)
	ed := session.Forms()

	// The "apply" CTA references the form, so deletion is blocked.
	impact, err := ed.OpenDelete("intake")
	require.NoError(t, err)
	assert.False(t, impact.CanDelete)
	assert.Equal(t, editor.DeleteModeBlocked, ed.DeleteMode())

	err = ed.ConfirmDelete()
	require.Error(t, err)
	assert.True(t, editor.IsDeleteBlocked(err))

	_, ok := session.Store().Forms().Get("intake")
	assert.True(t, ok, "blocked delete leaves the record in place")
}

func TestEditor_ConfirmWithoutPendingDelete(t *testing.T) {
	t.Parallel()

	session := testSession(t)

	err := session.Programs().ConfirmDelete()
	assert.Error(t, err)
}

func TestEditor_CancelReturnsToIdle(t *testing.T) {
	t.Parallel()

	session := testSession(t)
	ed := session.Programs()

	ed.OpenCreate()
	ed.Cancel()
	assert.Equal(t, editor.StateIdle, ed.State())

	_, err := ed.OpenDelete("mentoring")
	require.NoError(t, err)
	ed.Cancel()
	assert.Equal(t, editor.StateIdle, ed.State())

	_, ok := session.Store().Programs().Get("mentoring")
	assert.True(t, ok)
}

func TestSession_BusyRejectsMutations(t *testing.T) {
	t.Parallel()

	session := testSession(t)

	require.NoError(t, session.BeginIO("Save"))
	assert.True(t, session.Busy())

	// A second operation is rejected, not queued.
	err := session.BeginIO("Deploy")
	require.Error(t, err)
	assert.True(t, editor.IsBusy(err))

	ed := session.Programs()
	ed.OpenCreate()

	err = ed.Submit(models.Program{ProgramID: "advocacy", ProgramName: "Advocacy"})
	require.Error(t, err)
	assert.True(t, editor.IsBusy(err))

	session.EndIO()
	require.NoError(t, ed.Submit(models.Program{ProgramID: "advocacy", ProgramName: "Advocacy"}))
}

func TestSession_Validation(t *testing.T) {
	t.Parallel()

	session := testSession(t)

	snapshot := session.Validation()
	assert.True(t, snapshot.IsValid)

	// Break a reference: deleting the form leaves the CTA dangling.
	session.Store().Forms().Delete("intake")

	snapshot = session.Validation()
	assert.False(t, snapshot.IsValid)
	assert.Contains(t, snapshot.Errors, "ctas/apply")
}
