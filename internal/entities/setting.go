package entities

import (
	"time"
)

type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:100" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}

// Known setting keys
const (
	// Persistence slots. The values are base64 store snapshots.
	SettingKeyLocalSnapshot  = "diary_local.db"
	SettingKeyServerSnapshot = "diary_server.db"

	// Mode selected by the last Initialize call
	SettingKeyServerMode   = "diary_server_mode"
	SettingKeyServerOrigin = "diary_server_origin"

	// Scheduled sync settings
	SettingKeySyncEnabled       = "sync_enabled"
	SettingKeySyncSchedule      = "sync_schedule"
	SettingKeySyncLastAt        = "sync_last_at"
	SettingKeySyncLastStatus    = "sync_last_status"
	SettingKeySyncLastMessage   = "sync_last_message"
	SettingKeySyncEntriesPushed = "sync_entries_pushed"
)
