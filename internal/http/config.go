package http

import (
	"github.com/mrlokans/diary/internal/database"
	"github.com/mrlokans/diary/internal/diary"
	"github.com/mrlokans/diary/internal/scheduler"
	"github.com/mrlokans/diary/internal/settingsstore"
	"github.com/mrlokans/diary/internal/tasks"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Service  *diary.Service
	Database *database.Database

	// Settings persistence (optional)
	Settings *settingsstore.SettingsStore

	// Sync runner shared with the cron scheduler (optional)
	Scheduler *scheduler.SyncScheduler

	// Task queue client (optional)
	TaskClient *tasks.Client

	// Application info
	Version string
}
