package interfaces

// Compile-time checks that concrete types satisfy the interfaces their
// consumers declare. Consumers own the interfaces, so a missing method
// shows up here rather than at the wiring site.

import (
	"github.com/mrlokans/diary/internal/database"
	"github.com/mrlokans/diary/internal/diary"
	"github.com/mrlokans/diary/internal/http"
	"github.com/mrlokans/diary/internal/persistence"
	"github.com/mrlokans/diary/internal/remote"
	"github.com/mrlokans/diary/internal/scheduler"
	"github.com/mrlokans/diary/internal/settingsstore"
	"github.com/mrlokans/diary/internal/syncer"
	"github.com/mrlokans/diary/internal/tasks"
)

// =============================================================================
// Persistence
// =============================================================================

var _ persistence.ValueStore = (*database.Database)(nil)
var _ persistence.Slots = (*persistence.SettingsSlots)(nil)
var _ persistence.Slots = (*persistence.MemorySlots)(nil)
var _ syncer.Saver = (*persistence.Adapter)(nil)

// =============================================================================
// Remote
// =============================================================================

var _ diary.Remote = (*remote.Client)(nil)
var _ syncer.Remote = (*remote.Client)(nil)

// =============================================================================
// HTTP API
// =============================================================================

var _ http.EntryService = (*diary.Service)(nil)
var _ http.TagService = (*diary.Service)(nil)
var _ http.ModeService = (*diary.Service)(nil)
var _ http.DatabaseService = (*diary.Service)(nil)
var _ http.SyncRunner = (*scheduler.SyncScheduler)(nil)
var _ http.SyncSettings = (*settingsstore.SettingsStore)(nil)
var _ http.ModeSettings = (*settingsstore.SettingsStore)(nil)
var _ http.TaskQueue = (*tasks.Client)(nil)

// =============================================================================
// Background sync
// =============================================================================

var _ scheduler.Syncer = (*diary.Service)(nil)
var _ tasks.SyncRunner = (*scheduler.SyncScheduler)(nil)
