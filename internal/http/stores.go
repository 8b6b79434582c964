package http

import (
	"context"
	"io"

	"github.com/mrlokans/diary/internal/diary"
	"github.com/mrlokans/diary/internal/entities"
	"github.com/mrlokans/diary/internal/persistence"
	"github.com/mrlokans/diary/internal/settingsstore"
	"github.com/mrlokans/diary/internal/syncer"
)

// Each controller depends on the narrow interface it uses; *diary.Service
// satisfies all of them.

// EntryService provides entry reads and writes.
type EntryService interface {
	ListEntries() ([]entities.EntryWithKeywords, error)
	AddEntry(ctx context.Context, content string, keywords []string) (*entities.EntryWithKeywords, error)
	UpdateEntryKeywords(ctx context.Context, entryID int64, keywords []string) error
	Sentences(entryID int64) ([]string, error)
	TagsForEntry(entryID int64) ([]entities.Tag, error)
}

// TagService provides tag writes.
type TagService interface {
	AddTag(ctx context.Context, entryID int64, sentenceIndex int, tag string) (*entities.Tag, error)
	DeleteTag(ctx context.Context, tagID int64) error
}

// ModeService reports and switches the operating mode.
type ModeService interface {
	Mode() diary.Mode
	Initialize(ctx context.Context, serverMode bool, origin string) (diary.Mode, error)
}

// DatabaseService moves whole databases in and out.
type DatabaseService interface {
	ExportDatabase() (*persistence.ExportFile, error)
	ImportDatabase(ctx context.Context, r io.Reader) (*syncer.Report, error)
}

// SyncRunner runs one recorded sync pass.
type SyncRunner interface {
	RunOnce(ctx context.Context) (*syncer.Report, error)
	IsSyncing() bool
}

// SyncSettings exposes persisted sync configuration and status.
type SyncSettings interface {
	GetSyncConfigInfo() settingsstore.SyncConfigInfo
	GetSyncStatus() settingsstore.SyncStatus
}

// ModeSettings persists the chosen mode for the next start.
type ModeSettings interface {
	SetModeConfig(cfg settingsstore.ModeConfig) error
}

// TaskQueue enqueues background sync passes.
type TaskQueue interface {
	EnqueueSync(ctx context.Context, reason string) (string, error)
	Status(ctx context.Context, taskID string) (string, error)
}
