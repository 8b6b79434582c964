package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/diary/internal/diary"
	"github.com/mrlokans/diary/internal/persistence"
	"github.com/mrlokans/diary/internal/scheduler"
	"github.com/mrlokans/diary/internal/settingsstore"
	"github.com/mrlokans/diary/internal/syncer"
)

func remoteNow() time.Time {
	return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
}

func TestSyncController_RunSync(t *testing.T) {
	t.Setenv(settingsstore.EnvSyncEnabled, "")
	t.Setenv(settingsstore.EnvSyncSchedule, "")

	origin, remoteStore := setupTestRemote(t)
	svc := diary.NewService(persistence.New(persistence.NewMemorySlots()), diary.Options{})
	t.Cleanup(func() { svc.Close() })
	_, err := svc.Initialize(context.Background(), true, origin)
	require.NoError(t, err)

	settings := settingsstore.New(setupTestDatabase(t))
	runner := scheduler.NewSyncScheduler(svc, settings, time.Minute)
	router := newTestRouter(t, RouterConfig{Service: svc, Settings: settings, Scheduler: runner})

	w := doJSON(t, router, "POST", "/api/entries", CreateEntryRequest{Content: "Pushed on write."})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, "POST", "/api/sync", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var report syncer.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, 1, report.EntriesChecked)
	assert.Equal(t, 0, report.EntriesPushed)

	remoteEntries, err := remoteStore.ListEntries()
	require.NoError(t, err)
	assert.Len(t, remoteEntries, 1)

	w = doJSON(t, router, "GET", "/api/sync/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var status struct {
		Syncing bool                         `json:"syncing"`
		Mode    diary.Mode                   `json:"mode"`
		Config  settingsstore.SyncConfigInfo `json:"config"`
		Last    settingsstore.SyncStatus     `json:"last"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.False(t, status.Syncing)
	assert.True(t, status.Mode.ServerMode)
	assert.Equal(t, settingsstore.SyncStatusSuccess, status.Last.Status)
	assert.Equal(t, settingsstore.DefaultSyncSchedule, status.Config.Schedule)
}

func TestSyncController_LocalModeIsConflict(t *testing.T) {
	svc := setupTestService(t)
	settings := settingsstore.New(setupTestDatabase(t))
	runner := scheduler.NewSyncScheduler(svc, settings, time.Minute)
	router := newTestRouter(t, RouterConfig{Service: svc, Settings: settings, Scheduler: runner})

	w := doJSON(t, router, "POST", "/api/sync", nil)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), CodeOriginRequired)
	assert.Equal(t, settingsstore.SyncStatusFailed, settings.GetSyncStatus().Status)
}

type fakeQueue struct {
	reasons []string
	err     error
}

func (f *fakeQueue) EnqueueSync(ctx context.Context, reason string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.reasons = append(f.reasons, reason)
	return "task-1", nil
}

func (f *fakeQueue) Status(ctx context.Context, taskID string) (string, error) {
	if taskID == "task-1" {
		return "success", nil
	}
	return "not_found", nil
}

func TestTasksController(t *testing.T) {
	queue := &fakeQueue{}
	controller := NewTasksController(queue)
	router := newTestRouter(t, RouterConfig{})
	router.POST("/api/tasks/sync", controller.EnqueueSync)
	router.GET("/api/tasks/:id", controller.GetTaskStatus)

	w := doJSON(t, router, "POST", "/api/tasks/sync", RunSyncRequest{Reason: "button"})
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), "task-1")
	assert.Equal(t, []string{"button"}, queue.reasons)

	w = doJSON(t, router, "POST", "/api/tasks/sync", nil)
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, []string{"button", "api"}, queue.reasons)

	w = doJSON(t, router, "GET", "/api/tasks/task-1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"success"`)

	queue.err = errors.New("queue closed")
	w = doJSON(t, router, "POST", "/api/tasks/sync", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
