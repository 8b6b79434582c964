// Package scheduler runs periodic sync passes on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/mrlokans/diary/internal/diary"
	"github.com/mrlokans/diary/internal/settingsstore"
	"github.com/mrlokans/diary/internal/syncer"
)

// ErrSyncInProgress is returned by RunOnce while another pass is running.
var ErrSyncInProgress = errors.New("sync already in progress")

// Syncer runs one sync pass.
type Syncer interface {
	SyncWithServer(ctx context.Context) (*syncer.Report, error)
}

// SyncScheduler manages periodic sync passes against the remote
type SyncScheduler struct {
	service       Syncer
	settingsStore *settingsstore.SettingsStore
	passTimeout   time.Duration

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	isSyncing  bool
	runCtx     context.Context
	cancelFunc context.CancelFunc
}

// NewSyncScheduler creates a new scheduler instance. A positive passTimeout
// bounds each scheduled pass; zero leaves passes unbounded.
func NewSyncScheduler(service Syncer, settingsStore *settingsstore.SettingsStore, passTimeout time.Duration) *SyncScheduler {
	return &SyncScheduler{
		service:       service,
		settingsStore: settingsStore,
		passTimeout:   passTimeout,
		cron:          cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler if sync is enabled
func (s *SyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	config := s.settingsStore.GetSyncConfig()
	if !config.Enabled {
		log.Info("Sync scheduler: disabled")
		return nil
	}

	if err := settingsstore.ValidateCronSchedule(config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", config.Schedule, err)
	}

	entryID, err := s.cron.AddFunc(config.Schedule, s.runScheduled)
	if err != nil {
		return fmt.Errorf("failed to schedule sync job: %w", err)
	}
	s.entryID = entryID

	s.runCtx, s.cancelFunc = context.WithCancel(ctx)
	runCtx := s.runCtx

	s.cron.Start()
	s.isRunning = true

	nextRun, _ := settingsstore.GetNextRunTime(config.Schedule)
	log.WithFields(log.Fields{
		"schedule":    config.Schedule,
		"description": settingsstore.GetCronDescription(config.Schedule),
		"next_run":    nextRun,
	}).Info("Sync scheduler: started")

	go func() {
		<-runCtx.Done()
		s.stop(runCtx)
	}()

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running pass.
func (s *SyncScheduler) Stop() {
	s.stop(nil)
}

// stop shuts the scheduler down. A non-nil runCtx only stops the run it
// belongs to, so a stale cancellation cannot stop a rescheduled run.
func (s *SyncScheduler) stop(runCtx context.Context) {
	s.mu.Lock()
	if !s.isRunning || (runCtx != nil && runCtx != s.runCtx) {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	cancel := s.cancelFunc
	s.cancelFunc = nil
	s.runCtx = nil
	entryID := s.entryID
	s.mu.Unlock()

	// The running job may need the lock to clear isSyncing, so wait unlocked.
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.cron.Remove(entryID)

	if cancel != nil {
		cancel()
	}
	log.Info("Sync scheduler: stopped")
}

// Reschedule applies changed settings.
func (s *SyncScheduler) Reschedule() error {
	s.Stop()
	return s.Start(context.Background())
}

// IsRunning returns whether the scheduler is active
func (s *SyncScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// IsSyncing returns whether a sync is currently in progress
func (s *SyncScheduler) IsSyncing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isSyncing
}

// GetNextRunTime returns when the next sync will occur
func (s *SyncScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

func (s *SyncScheduler) runScheduled() {
	if !s.settingsStore.GetSyncEnabled() {
		log.Info("Sync: skipped (disabled)")
		return
	}

	ctx := context.Background()
	if s.passTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.passTimeout)
		defer cancel()
	}

	if _, err := s.RunOnce(ctx); err != nil && !errors.Is(err, ErrSyncInProgress) {
		log.WithError(err).Warn("Scheduled sync failed")
	}
}

// RunOnce performs one pass and records its outcome in the settings store.
// Concurrent calls get ErrSyncInProgress.
func (s *SyncScheduler) RunOnce(ctx context.Context) (*syncer.Report, error) {
	s.mu.Lock()
	if s.isSyncing {
		s.mu.Unlock()
		log.Info("Sync: skipped (already syncing)")
		return nil, ErrSyncInProgress
	}
	s.isSyncing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isSyncing = false
		s.mu.Unlock()
	}()

	log.Info("Sync: starting pass")
	if err := s.settingsStore.SetSyncStatus(settingsstore.SyncStatusRunning, "", 0); err != nil {
		log.WithError(err).Warn("Failed to record sync status")
	}

	report, err := s.service.SyncWithServer(ctx)
	if err != nil {
		pushed := 0
		if report != nil {
			pushed = report.EntriesPushed
		}
		msg := fmt.Sprintf("Sync failed: %v", err)
		if errors.Is(err, diary.ErrOriginRequired) {
			msg = "Sync skipped: server mode with an origin is not active"
		}
		s.recordStatus(settingsstore.SyncStatusFailed, msg, pushed)
		return report, err
	}

	summary := report.Summary()
	log.WithField("duration", report.Duration.Round(time.Millisecond)).Infof("Sync: %s", summary)
	s.recordStatus(settingsstore.SyncStatusSuccess, summary, report.EntriesPushed)
	return report, nil
}

func (s *SyncScheduler) recordStatus(status, message string, pushed int) {
	if err := s.settingsStore.SetSyncStatus(status, message, pushed); err != nil {
		log.WithError(err).Warn("Failed to record sync status")
	}
}
