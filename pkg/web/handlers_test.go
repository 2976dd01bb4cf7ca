package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/longhornrumble/picasso-config-builder/pkg/deploy"
	"github.com/longhornrumble/picasso-config-builder/pkg/eventbus"
	"github.com/longhornrumble/picasso-config-builder/pkg/models"
	"github.com/longhornrumble/picasso-config-builder/pkg/storage/file"
	"github.com/longhornrumble/picasso-config-builder/pkg/web"
)

func seedDocument() models.Document {
	return models.Document{
		models.SectionPrograms: json.RawMessage(`{"mentoring": {"program_id": "mentoring", "program_name": "Mentoring"}}`),
		models.SectionForms: json.RawMessage(`[
			{"form_id": "intake", "title": "Intake", "program": "mentoring", "enabled": true,
			 "fields": [{"id": "email", "type": "email", "label": "Email"}]}
		]`),
		models.SectionCTAs: json.RawMessage(`{
			"apply": {"label": "Apply", "action": "start_form", "formId": "intake"}
		}`),
		models.SectionMetadata: json.RawMessage(`{"version": 1}`),
		"tone_prompts":         json.RawMessage(`{"greeting": "Hello"}`),
	}
}

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()

	st := file.NewStorage(t.TempDir())
	require.NoError(t, st.SaveConfig(context.Background(), "tenant-1", seedDocument()))

	bus := eventbus.NewGoChannelEventBus(slog.Default())
	t.Cleanup(func() { _ = bus.Close() })

	manager := web.NewSessionManager(st, bus, slog.Default())
	deployer := deploy.NewService(st, bus, slog.Default())
	handlers := web.NewAPIHandlers(manager, deployer,
		validator.New(validator.WithRequiredStructEnabled()), slog.Default())

	app := fiber.New()
	handlers.RegisterRoutes(app)

	return app
}

func doJSON(t *testing.T, app *fiber.App, method, url string, payload any) (*http.Response, []byte) {
	t.Helper()

	var body io.Reader

	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)

		body = bytes.NewBuffer(data)
	}

	req := httptest.NewRequest(method, url, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, raw
}

func TestListPrograms(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/tenants/tenant-1/programs/", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var programs []models.Program
	require.NoError(t, json.Unmarshal(body, &programs))
	require.Len(t, programs, 1)
	assert.Equal(t, "mentoring", programs[0].ProgramID)
}

func TestGetProgram_NotFound(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	resp, _ := doJSON(t, app, http.MethodGet, "/tenants/tenant-1/programs/ghost", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUnknownTenant(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	resp, _ := doJSON(t, app, http.MethodGet, "/tenants/ghost/programs/", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateProgram(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/tenants/tenant-1/programs/",
		models.Program{ProgramID: "advocacy", ProgramName: "Advocacy"})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var created web.EntityResponse
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, "advocacy", created.ID)

	resp, _ = doJSON(t, app, http.MethodGet, "/tenants/tenant-1/programs/advocacy", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateProgram_ValidationErrors(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/tenants/tenant-1/programs/",
		models.Program{ProgramID: "advocacy"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var issues web.IssuesResponse
	require.NoError(t, json.Unmarshal(body, &issues))
	require.NotEmpty(t, issues.Errors)
	assert.Equal(t, "program_name", issues.Errors[0].Field)
}

func TestCreateProgram_DuplicateID(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/tenants/tenant-1/programs/",
		models.Program{ProgramID: "mentoring", ProgramName: "Again"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode,
		"duplicate ids are caught by the id-uniqueness validation rule")
}

func TestUpdateProgram(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	resp, _ := doJSON(t, app, http.MethodPut, "/tenants/tenant-1/programs/mentoring",
		models.Program{ProgramID: "mentoring", ProgramName: "Mentoring Plus"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodGet, "/tenants/tenant-1/programs/mentoring", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var program models.Program
	require.NoError(t, json.Unmarshal(body, &program))
	assert.Equal(t, "Mentoring Plus", program.ProgramName)
}

func TestUpdateProgram_IDMismatch(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	resp, _ := doJSON(t, app, http.MethodPut, "/tenants/tenant-1/programs/mentoring",
		models.Program{ProgramID: "other", ProgramName: "Other"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateCTA_WrappedPayload(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/tenants/tenant-1/ctas/", map[string]any{
		"id":     "donate",
		"label":  "Donate today",
		"action": "send_query",
		"query":  "how do I donate",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var created web.EntityResponse
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, "donate", created.ID)
}

func TestCreateCTA_MissingID(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/tenants/tenant-1/ctas/", map[string]any{
		"label":  "Donate today",
		"action": "send_query",
		"query":  "donate",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeleteProgram_BlockedByForm(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	resp, body := doJSON(t, app, http.MethodDelete, "/tenants/tenant-1/programs/mentoring", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var impact web.ImpactResponse
	require.NoError(t, json.Unmarshal(body, &impact))
	assert.False(t, impact.CanDelete)
	require.NotEmpty(t, impact.Blocking)
	assert.Equal(t, models.KindForm, impact.Blocking[0].Kind)

	// The blocked record is still there.
	resp, _ = doJSON(t, app, http.MethodGet, "/tenants/tenant-1/programs/mentoring", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDeleteCTA_Succeeds(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	resp, _ := doJSON(t, app, http.MethodDelete, "/tenants/tenant-1/ctas/apply", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/tenants/tenant-1/ctas/apply", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestImpactEndpoint(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/tenants/tenant-1/forms/intake/impact", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var impact web.ImpactResponse
	require.NoError(t, json.Unmarshal(body, &impact))
	assert.False(t, impact.CanDelete, "the apply CTA references the form")

	ids := []string{}
	for _, g := range impact.Blocking {
		if g.Kind == models.KindCTA {
			ids = g.IDs
		}
	}

	assert.Equal(t, []string{"apply"}, ids)
}

func TestValidationEndpoint(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/tenants/tenant-1/validation", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var snapshot struct {
		IsValid bool `json:"is_valid"`
	}
	require.NoError(t, json.Unmarshal(body, &snapshot))
	assert.True(t, snapshot.IsValid)
}

func TestSessionEndpoint(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/tenants/tenant-1/session", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var session web.SessionResponse
	require.NoError(t, json.Unmarshal(body, &session))
	assert.Equal(t, "tenant-1", session.TenantID)
	assert.False(t, session.Dirty)
	assert.Equal(t, 1, session.Counts["programs"])
	assert.Equal(t, 1, session.Version)
}

func TestUpdateCTASettings(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	resp, body := doJSON(t, app, http.MethodPut, "/tenants/tenant-1/settings/cta",
		map[string]any{"display_mode": "inline", "max_visible": 3})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result map[string]any
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Equal(t, true, result["dirty"])

	resp, body = doJSON(t, app, http.MethodGet, "/tenants/tenant-1/settings/cta", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var settings map[string]any
	require.NoError(t, json.Unmarshal(body, &settings))
	assert.Equal(t, "inline", settings["display_mode"])
}

func TestUpdateBedrockInstructions(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	resp, _ := doJSON(t, app, http.MethodPut, "/tenants/tenant-1/settings/bedrock",
		map[string]any{"tone": "warm"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodGet, "/tenants/tenant-1/settings/bedrock", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var instructions map[string]any
	require.NoError(t, json.Unmarshal(body, &instructions))
	assert.Equal(t, "warm", instructions["tone"])
}

func TestDiscardSession(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	// Make an unsaved edit, discard, and confirm the edit is gone.
	resp, _ := doJSON(t, app, http.MethodPost, "/tenants/tenant-1/programs/",
		models.Program{ProgramID: "advocacy", ProgramName: "Advocacy"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodDelete, "/tenants/tenant-1/session", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/tenants/tenant-1/programs/advocacy", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSaveEndpoint(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/tenants/tenant-1/programs/",
		models.Program{ProgramID: "advocacy", ProgramName: "Advocacy"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodPost, "/tenants/tenant-1/save", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Dirty bool `json:"dirty"`
	}
	require.NoError(t, json.Unmarshal(body, &result))
	assert.False(t, result.Dirty)

	// The save survives a session discard.
	resp, _ = doJSON(t, app, http.MethodDelete, "/tenants/tenant-1/session", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/tenants/tenant-1/programs/advocacy", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDeployEndpoint(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/tenants/tenant-1/deploy", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result web.DeployResponse
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Equal(t, 2, result.Version)
	assert.NotEmpty(t, result.DeploymentID)

	resp, raw := doJSON(t, app, http.MethodGet, "/tenants/tenant-1/backups", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var backups []web.BackupResponse
	require.NoError(t, json.Unmarshal(raw, &backups))
	assert.Len(t, backups, 1)
}

func TestDeployEndpoint_InvalidDocument(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/tenants/tenant-1/ctas/", map[string]any{
		"id":     "broken",
		"label":  "Broken",
		"action": "start_form",
		"formId": "ghost",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode,
		"the dangling reference is already rejected at submit time")

	// Deployment still succeeds because nothing invalid was committed.
	resp, _ = doJSON(t, app, http.MethodPost, "/tenants/tenant-1/deploy", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "healthy")
}
