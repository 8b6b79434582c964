package settingsstore

import (
	"strconv"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/diary/internal/entities"
)

// Sync status values
const (
	SyncStatusRunning = "running"
	SyncStatusSuccess = "success"
	SyncStatusFailed  = "failed"
)

// SyncConfig represents the effective configuration for scheduled sync
type SyncConfig struct {
	Enabled  bool   `json:"enabled"`
	Schedule string `json:"schedule"`
}

// SyncConfigInfo includes source information for each field
type SyncConfigInfo struct {
	Enabled       bool   `json:"enabled"`
	EnabledSource string `json:"enabled_source"`

	Schedule            string     `json:"schedule"`
	ScheduleSource      string     `json:"schedule_source"`
	ScheduleDescription string     `json:"schedule_description"`
	NextRunAt           *time.Time `json:"next_run_at,omitempty"`
}

// SyncStatus represents the outcome of the last sync pass
type SyncStatus struct {
	LastSyncAt    *time.Time `json:"last_sync_at,omitempty"`
	Status        string     `json:"status,omitempty"`
	Message       string     `json:"message,omitempty"`
	EntriesPushed int        `json:"entries_pushed,omitempty"`
}

func (s *SettingsStore) GetSyncEnabled() bool {
	value, _ := s.lookup(entities.SettingKeySyncEnabled, EnvSyncEnabled, formatBool(s.defaults.SyncEnabled))
	return parseBool(value)
}

func (s *SettingsStore) SetSyncEnabled(enabled bool) error {
	return s.db.SetSetting(entities.SettingKeySyncEnabled, formatBool(enabled))
}

func (s *SettingsStore) GetSyncSchedule() string {
	value, _ := s.lookup(entities.SettingKeySyncSchedule, EnvSyncSchedule, s.defaults.SyncSchedule)
	return value
}

// SetSyncSchedule validates and saves the cron schedule.
func (s *SettingsStore) SetSyncSchedule(schedule string) error {
	if err := ValidateCronSchedule(schedule); err != nil {
		return err
	}
	return s.db.SetSetting(entities.SettingKeySyncSchedule, schedule)
}

func (s *SettingsStore) GetSyncConfig() SyncConfig {
	return SyncConfig{
		Enabled:  s.GetSyncEnabled(),
		Schedule: s.GetSyncSchedule(),
	}
}

func (s *SettingsStore) GetSyncConfigInfo() SyncConfigInfo {
	enabled, enabledSource := s.lookup(entities.SettingKeySyncEnabled, EnvSyncEnabled, formatBool(s.defaults.SyncEnabled))
	schedule, scheduleSource := s.lookup(entities.SettingKeySyncSchedule, EnvSyncSchedule, s.defaults.SyncSchedule)

	info := SyncConfigInfo{
		Enabled:             parseBool(enabled),
		EnabledSource:       enabledSource,
		Schedule:            schedule,
		ScheduleSource:      scheduleSource,
		ScheduleDescription: GetCronDescription(schedule),
	}
	if info.Enabled {
		if next, err := GetNextRunTime(schedule); err == nil {
			info.NextRunAt = next
		}
	}
	return info
}

// ClearSyncSettings clears the database overrides, reverting to env/default
func (s *SettingsStore) ClearSyncSettings() error {
	return s.clear(entities.SettingKeySyncEnabled, entities.SettingKeySyncSchedule)
}

func (s *SettingsStore) GetSyncStatus() SyncStatus {
	status := SyncStatus{}

	if value, found, err := s.db.GetValue(entities.SettingKeySyncLastAt); err == nil && found && value != "" {
		if ts, err := time.Parse(time.RFC3339, value); err == nil {
			status.LastSyncAt = &ts
		}
	}
	if value, found, err := s.db.GetValue(entities.SettingKeySyncLastStatus); err == nil && found {
		status.Status = value
	}
	if value, found, err := s.db.GetValue(entities.SettingKeySyncLastMessage); err == nil && found {
		status.Message = value
	}
	if value, found, err := s.db.GetValue(entities.SettingKeySyncEntriesPushed); err == nil && found && value != "" {
		if count, err := strconv.Atoi(value); err == nil {
			status.EntriesPushed = count
		}
	}
	return status
}

// SetSyncStatus records the outcome of a sync pass, stamped with the current time.
func (s *SettingsStore) SetSyncStatus(status, message string, entriesPushed int) error {
	now := time.Now().UTC().Format(time.RFC3339)

	if err := s.db.SetSetting(entities.SettingKeySyncLastAt, now); err != nil {
		return err
	}
	if err := s.db.SetSetting(entities.SettingKeySyncLastStatus, status); err != nil {
		return err
	}
	if err := s.db.SetSetting(entities.SettingKeySyncLastMessage, message); err != nil {
		return err
	}
	return s.db.SetSetting(entities.SettingKeySyncEntriesPushed, strconv.Itoa(entriesPushed))
}

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateCronSchedule validates a five-field cron schedule string
func ValidateCronSchedule(schedule string) error {
	_, err := cronParser.Parse(schedule)
	return err
}

// GetCronDescription returns a human-readable description of a cron schedule
func GetCronDescription(schedule string) string {
	switch schedule {
	case "*/5 * * * *":
		return "Every 5 minutes"
	case "*/15 * * * *":
		return "Every 15 minutes"
	case "*/30 * * * *":
		return "Every 30 minutes"
	case "0 * * * *":
		return "Every hour at :00"
	case "0 */6 * * *":
		return "Every 6 hours"
	case "0 0 * * *":
		return "Daily at midnight"
	default:
		return "Custom schedule: " + schedule
	}
}

// GetNextRunTime calculates when the next sync will run based on the schedule
func GetNextRunTime(schedule string) (*time.Time, error) {
	sched, err := cronParser.Parse(schedule)
	if err != nil {
		return nil, err
	}
	next := sched.Next(time.Now())
	return &next, nil
}
