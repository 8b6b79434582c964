package entrypoint

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/mrlokans/diary/internal/audit"
	"github.com/mrlokans/diary/internal/config"
	"github.com/mrlokans/diary/internal/database"
	"github.com/mrlokans/diary/internal/diary"
	"github.com/mrlokans/diary/internal/persistence"
	"github.com/mrlokans/diary/internal/settingsstore"
)

// App holds the components shared by the HTTP server and the CLI commands.
type App struct {
	Config   *config.Config
	Database *database.Database
	Settings *settingsstore.SettingsStore
	Service  *diary.Service
}

// NewSettings builds a settings store whose defaults come from cfg, so a
// config file value applies unless the database or environment overrides it.
func NewSettings(db *database.Database, cfg *config.Config) *settingsstore.SettingsStore {
	return settingsstore.NewWithDefaults(db, settingsstore.Defaults{
		ServerMode:   cfg.Diary.ServerMode,
		ServerOrigin: cfg.Diary.Origin,
		SyncEnabled:  cfg.Sync.Enabled,
		SyncSchedule: cfg.Sync.Schedule,
	})
}

// Open opens the settings database and initializes the diary service in the
// mode resolved from settings.
func Open(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	opts := diary.Options{
		RemoteTimeout: cfg.Remote.Timeout,
		ReconcileIDs:  cfg.Sync.ReconcileIDs,
	}
	if cfg.Diary.AuditDir != "" {
		opts.Archive = audit.NewAuditor(cfg.Diary.AuditDir)
	}

	settings := NewSettings(db, cfg)
	service := diary.NewService(persistence.New(persistence.NewSettingsSlots(db)), opts)

	modeCfg := settings.GetModeConfig()
	if _, err := service.Initialize(ctx, modeCfg.ServerMode, modeCfg.Origin); err != nil {
		db.Close()
		return nil, err
	}

	return &App{
		Config:   cfg,
		Database: db,
		Settings: settings,
		Service:  service,
	}, nil
}

// Close releases the service and the settings database.
func (a *App) Close() {
	if err := a.Service.Close(); err != nil {
		log.WithError(err).Error("Error closing diary service")
	}
	if err := a.Database.Close(); err != nil {
		log.WithError(err).Error("Error closing database")
	}
}
