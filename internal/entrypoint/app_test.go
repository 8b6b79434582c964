package entrypoint

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/diary/internal/config"
	"github.com/mrlokans/diary/internal/settingsstore"
)

func testConfig(t *testing.T) *config.Config {
	t.Setenv(settingsstore.EnvServerMode, "")
	t.Setenv(settingsstore.EnvServerOrigin, "")
	t.Setenv(settingsstore.EnvSyncEnabled, "")
	t.Setenv(settingsstore.EnvSyncSchedule, "")

	return &config.Config{
		Database: config.Database{Path: filepath.Join(t.TempDir(), "diary.db")},
		Sync:     config.Sync{Schedule: "0 * * * *"},
	}
}

func TestOpen_LocalModePersists(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	app, err := Open(ctx, cfg)
	require.NoError(t, err)
	assert.True(t, app.Service.Mode().Initialized)
	assert.False(t, app.Service.Mode().ServerMode)

	_, err = app.Service.AddEntry(ctx, "Hello world.", []string{"calm"})
	require.NoError(t, err)
	app.Close()

	reopened, err := Open(ctx, cfg)
	require.NoError(t, err)
	defer reopened.Close()

	entries, err := reopened.Service.ListEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Hello world.", entries[0].Content)
	assert.Equal(t, []string{"calm"}, entries[0].Keywords)
}

func TestOpen_UnreachableOriginFallsBack(t *testing.T) {
	cfg := testConfig(t)
	cfg.Diary.ServerMode = true
	cfg.Diary.Origin = "http://127.0.0.1:1"

	app, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer app.Close()

	mode := app.Service.Mode()
	assert.True(t, mode.Initialized)
	assert.False(t, mode.ServerMode)
	assert.True(t, mode.Fallback)
}

func TestNewSettings_UsesConfigDefaults(t *testing.T) {
	cfg := testConfig(t)
	cfg.Sync.Enabled = true

	app, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer app.Close()

	info := app.Settings.GetSyncConfigInfo()
	assert.True(t, info.Enabled)
	assert.Equal(t, "0 * * * *", info.Schedule)
	assert.Equal(t, settingsstore.SourceDefault, info.ScheduleSource)
}
