// Package settingsstore resolves user-facing settings.
//
// Every value is looked up in priority order: database > environment >
// default. Setters write the database layer only; Clear* removes the override
// and the value reverts to the environment or the default.
package settingsstore

import (
	"os"
	"strconv"
	"strings"

	"github.com/mrlokans/diary/internal/database"
)

const (
	SourceDatabase    = "database"
	SourceEnvironment = "environment"
	SourceDefault     = "default"
)

// Environment variables consulted when the database has no override.
const (
	EnvServerMode   = "DIARY_SERVER_MODE"
	EnvServerOrigin = "DIARY_SERVER_ORIGIN"
	EnvSyncEnabled  = "SYNC_ENABLED"
	EnvSyncSchedule = "SYNC_SCHEDULE"
)

// DefaultSyncSchedule runs a sync pass every 30 minutes.
const DefaultSyncSchedule = "*/30 * * * *"

// Defaults is the lowest priority layer, usually filled from config.
type Defaults struct {
	ServerMode   bool
	ServerOrigin string
	SyncEnabled  bool
	SyncSchedule string
}

type SettingsStore struct {
	db       *database.Database
	defaults Defaults
}

func New(db *database.Database) *SettingsStore {
	return NewWithDefaults(db, Defaults{})
}

// NewWithDefaults creates a SettingsStore whose default layer is d. An empty
// SyncSchedule falls back to DefaultSyncSchedule.
func NewWithDefaults(db *database.Database, d Defaults) *SettingsStore {
	if d.SyncSchedule == "" {
		d.SyncSchedule = DefaultSyncSchedule
	}
	return &SettingsStore{db: db, defaults: d}
}

// lookup returns the effective value of key and where it came from.
func (s *SettingsStore) lookup(key, env, fallback string) (string, string) {
	if value, found, err := s.db.GetValue(key); err == nil && found && value != "" {
		return value, SourceDatabase
	}
	if value := os.Getenv(env); value != "" {
		return value, SourceEnvironment
	}
	return fallback, SourceDefault
}

func (s *SettingsStore) clear(keys ...string) error {
	for _, key := range keys {
		if err := s.db.DeleteSetting(key); err != nil {
			return err
		}
	}
	return nil
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes":
		return true
	}
	return false
}

func formatBool(value bool) string {
	return strconv.FormatBool(value)
}
