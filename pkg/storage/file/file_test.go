package file_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/longhornrumble/picasso-config-builder/pkg/models"
	"github.com/longhornrumble/picasso-config-builder/pkg/storage"
	"github.com/longhornrumble/picasso-config-builder/pkg/storage/file"
)

func testDoc(version int) models.Document {
	meta, _ := json.Marshal(models.Metadata{Version: version})

	return models.Document{
		models.SectionPrograms: json.RawMessage(`{"p": {"program_id": "p", "program_name": "P"}}`),
		models.SectionMetadata: meta,
	}
}

func TestFileStorage_SaveAndLoad(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := file.NewStorage(t.TempDir())

	require.NoError(t, s.SaveConfig(ctx, "tenant-1", testDoc(1)))

	loaded, err := s.LoadConfig(ctx, "tenant-1")
	require.NoError(t, err)
	assert.JSONEq(t, string(testDoc(1)[models.SectionPrograms]), string(loaded[models.SectionPrograms]))
}

func TestFileStorage_LoadMissingTenant(t *testing.T) {
	t.Parallel()

	s := file.NewStorage(t.TempDir())

	_, err := s.LoadConfig(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, storage.IsTenantNotFound(err))
}

func TestFileStorage_FileURLPrefix(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := file.NewStorage("file://" + dir)

	require.NoError(t, s.SaveConfig(context.Background(), "tenant-1", testDoc(1)))
	require.NoError(t, s.HealthCheck(context.Background()))
}

func TestFileStorage_DeployBacksUpPrevious(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := file.NewStorage(t.TempDir())

	require.NoError(t, s.DeployConfig(ctx, "tenant-1", testDoc(1), false))

	// First deployment had nothing to back up.
	backups, err := s.ListBackups(ctx, "tenant-1")
	require.NoError(t, err)
	assert.Empty(t, backups)

	require.NoError(t, s.DeployConfig(ctx, "tenant-1", testDoc(2), false))

	backups, err = s.ListBackups(ctx, "tenant-1")
	require.NoError(t, err)
	require.Len(t, backups, 1)
	assert.Equal(t, "tenant-1", backups[0].TenantID)

	loaded, err := s.LoadConfig(ctx, "tenant-1")
	require.NoError(t, err)

	var meta models.Metadata
	require.NoError(t, json.Unmarshal(loaded[models.SectionMetadata], &meta))
	assert.Equal(t, 2, meta.Version)
}

func TestFileStorage_DeployMergeOverlaysSections(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := file.NewStorage(t.TempDir())

	base := testDoc(1)
	base["tone_prompts"] = json.RawMessage(`{"greeting": "Hello"}`)
	require.NoError(t, s.DeployConfig(ctx, "tenant-1", base, false))

	partial := models.Document{
		models.SectionPrograms: json.RawMessage(`{"q": {"program_id": "q", "program_name": "Q"}}`),
	}
	require.NoError(t, s.DeployConfig(ctx, "tenant-1", partial, true))

	loaded, err := s.LoadConfig(ctx, "tenant-1")
	require.NoError(t, err)

	assert.JSONEq(t, `{"q": {"program_id": "q", "program_name": "Q"}}`, string(loaded[models.SectionPrograms]))
	assert.JSONEq(t, `{"greeting": "Hello"}`, string(loaded["tone_prompts"]), "untouched sections survive a merge deploy")
}

func TestFileStorage_ListBackupsNewestFirst(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := file.NewStorage(t.TempDir())

	for v := 1; v <= 3; v++ {
		require.NoError(t, s.DeployConfig(ctx, "tenant-1", testDoc(v), false))
	}

	backups, err := s.ListBackups(ctx, "tenant-1")
	require.NoError(t, err)
	require.Len(t, backups, 2)
	assert.True(t, !backups[0].CreatedAt.Before(backups[1].CreatedAt))
}

func TestFileStorage_HealthCheck(t *testing.T) {
	t.Parallel()

	s := file.NewStorage(t.TempDir())
	assert.NoError(t, s.HealthCheck(context.Background()))

	missing := file.NewStorage("/nonexistent/picasso-test-root")
	assert.Error(t, missing.HealthCheck(context.Background()))
}
