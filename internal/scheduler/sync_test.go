package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/diary/internal/database"
	"github.com/mrlokans/diary/internal/diary"
	"github.com/mrlokans/diary/internal/remote"
	"github.com/mrlokans/diary/internal/settingsstore"
	"github.com/mrlokans/diary/internal/syncer"
)

type fakeSyncer struct {
	calls       atomic.Int32
	sawDeadline atomic.Bool
	report      *syncer.Report
	err         error
	release     chan struct{}
	started     chan struct{}
}

func (f *fakeSyncer) SyncWithServer(ctx context.Context) (*syncer.Report, error) {
	f.calls.Add(1)
	_, ok := ctx.Deadline()
	f.sawDeadline.Store(ok)
	if f.started != nil {
		close(f.started)
	}
	if f.release != nil {
		<-f.release
	}
	return f.report, f.err
}

func setupTestSettings(t *testing.T) *settingsstore.SettingsStore {
	t.Helper()
	t.Setenv(settingsstore.EnvSyncEnabled, "")
	t.Setenv(settingsstore.EnvSyncSchedule, "")

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "settings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return settingsstore.New(db)
}

func TestRunOnce_RecordsSuccess(t *testing.T) {
	settings := setupTestSettings(t)
	fake := &fakeSyncer{report: &syncer.Report{EntriesChecked: 3, EntriesPushed: 2}}
	s := NewSyncScheduler(fake, settings, 0)

	report, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.EntriesPushed)

	status := settings.GetSyncStatus()
	assert.Equal(t, settingsstore.SyncStatusSuccess, status.Status)
	assert.Equal(t, 2, status.EntriesPushed)
	assert.Contains(t, status.Message, "pushed 2")
	assert.NotNil(t, status.LastSyncAt)
	assert.False(t, s.IsSyncing())
}

func TestRunOnce_RecordsFailure(t *testing.T) {
	settings := setupTestSettings(t)
	unavailable := &remote.RemoteUnavailableError{Method: "GET", URL: "http://remote/api/diary", Err: errors.New("connection refused")}
	fake := &fakeSyncer{report: &syncer.Report{EntriesPushed: 1}, err: unavailable}
	s := NewSyncScheduler(fake, settings, 0)

	_, err := s.RunOnce(context.Background())
	assert.ErrorIs(t, err, remote.ErrRemoteUnavailable)

	status := settings.GetSyncStatus()
	assert.Equal(t, settingsstore.SyncStatusFailed, status.Status)
	assert.Equal(t, 1, status.EntriesPushed)
	assert.Contains(t, status.Message, "connection refused")
}

func TestRunOnce_OriginRequired(t *testing.T) {
	settings := setupTestSettings(t)
	s := NewSyncScheduler(&fakeSyncer{err: diary.ErrOriginRequired}, settings, 0)

	_, err := s.RunOnce(context.Background())
	assert.ErrorIs(t, err, diary.ErrOriginRequired)
	assert.Contains(t, settings.GetSyncStatus().Message, "not active")
}

func TestRunOnce_RefusesOverlap(t *testing.T) {
	settings := setupTestSettings(t)
	fake := &fakeSyncer{
		report:  &syncer.Report{},
		release: make(chan struct{}),
		started: make(chan struct{}),
	}
	s := NewSyncScheduler(fake, settings, 0)

	done := make(chan error, 1)
	go func() {
		_, err := s.RunOnce(context.Background())
		done <- err
	}()

	<-fake.started
	assert.True(t, s.IsSyncing())

	_, err := s.RunOnce(context.Background())
	assert.ErrorIs(t, err, ErrSyncInProgress)

	close(fake.release)
	require.NoError(t, <-done)
	assert.Equal(t, int32(1), fake.calls.Load())
}

func TestStart_DisabledDoesNothing(t *testing.T) {
	settings := setupTestSettings(t)
	s := NewSyncScheduler(&fakeSyncer{}, settings, 0)

	require.NoError(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
	assert.Nil(t, s.GetNextRunTime())
}

func TestStart_EnabledSchedulesAndStops(t *testing.T) {
	settings := setupTestSettings(t)
	require.NoError(t, settings.SetSyncEnabled(true))
	require.NoError(t, settings.SetSyncSchedule("0 * * * *"))

	s := NewSyncScheduler(&fakeSyncer{}, settings, time.Minute)
	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())

	next := s.GetNextRunTime()
	require.NotNil(t, next)
	assert.Equal(t, 0, next.Minute())

	require.NoError(t, s.Reschedule())
	assert.True(t, s.IsRunning())

	s.Stop()
	assert.False(t, s.IsRunning())
}

func TestStart_ContextCancelStops(t *testing.T) {
	settings := setupTestSettings(t)
	require.NoError(t, settings.SetSyncEnabled(true))

	s := NewSyncScheduler(&fakeSyncer{}, settings, 0)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))

	cancel()
	assert.Eventually(t, func() bool { return !s.IsRunning() }, time.Second, 10*time.Millisecond)
}

func TestRunScheduled_PassTimeout(t *testing.T) {
	tests := []struct {
		name         string
		passTimeout  time.Duration
		wantDeadline bool
	}{
		{name: "zero leaves the pass unbounded", passTimeout: 0, wantDeadline: false},
		{name: "positive bounds the pass", passTimeout: time.Minute, wantDeadline: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := setupTestSettings(t)
			require.NoError(t, settings.SetSyncEnabled(true))

			fake := &fakeSyncer{report: &syncer.Report{}}
			s := NewSyncScheduler(fake, settings, tt.passTimeout)
			s.runScheduled()

			require.Equal(t, int32(1), fake.calls.Load())
			assert.Equal(t, tt.wantDeadline, fake.sawDeadline.Load())
		})
	}
}
