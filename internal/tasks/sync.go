package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	log "github.com/sirupsen/logrus"

	"github.com/mrlokans/diary/internal/syncer"
)

// SyncQueueName is the backlite queue for background sync passes.
const SyncQueueName = "diary_sync"

// SyncRunner runs one recorded sync pass.
type SyncRunner interface {
	RunOnce(ctx context.Context) (*syncer.Report, error)
}

// SyncTask requests one sync pass with the remote.
type SyncTask struct {
	Reason string `json:"reason,omitempty"`
}

// Config returns the queue configuration for sync tasks. A failed pass is
// not retried. Timeout is the worker's ceiling for a task; the pass itself is
// bounded only by the processor timeout.
func (t SyncTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        SyncQueueName,
		MaxAttempts: 1,
		Timeout:     30 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// SyncProcessor creates the processor for SyncTask. timeout bounds each pass
// when positive.
func SyncProcessor(runner SyncRunner, timeout time.Duration) backlite.QueueProcessor[SyncTask] {
	return func(ctx context.Context, task SyncTask) error {
		if runner == nil {
			return errors.New("sync runner not configured")
		}
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		report, err := runner.RunOnce(ctx)
		if err != nil {
			return fmt.Errorf("sync (%s): %w", task.Reason, err)
		}

		log.WithFields(log.Fields{
			"reason":   task.Reason,
			"pushed":   report.EntriesPushed,
			"failures": report.PushFailures,
		}).Info("Background sync finished")
		return nil
	}
}

// NewSyncQueue creates a backlite queue for sync tasks.
func NewSyncQueue(runner SyncRunner, timeout time.Duration) backlite.Queue {
	return backlite.NewQueue(SyncProcessor(runner, timeout))
}
