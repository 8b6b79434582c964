package settingsstore

import (
	"strings"

	"github.com/mrlokans/diary/internal/entities"
)

// ModeConfig is the mode the next Initialize call should use.
type ModeConfig struct {
	ServerMode bool   `json:"server_mode"`
	Origin     string `json:"origin"`
}

// ModeConfigInfo includes source information for each field
type ModeConfigInfo struct {
	ServerMode       bool   `json:"server_mode"`
	ServerModeSource string `json:"server_mode_source"`

	Origin       string `json:"origin"`
	OriginSource string `json:"origin_source"`
}

func (s *SettingsStore) GetServerMode() bool {
	value, _ := s.lookup(entities.SettingKeyServerMode, EnvServerMode, formatBool(s.defaults.ServerMode))
	return parseBool(value)
}

func (s *SettingsStore) SetServerMode(enabled bool) error {
	return s.db.SetSetting(entities.SettingKeyServerMode, formatBool(enabled))
}

func (s *SettingsStore) GetServerOrigin() string {
	value, _ := s.lookup(entities.SettingKeyServerOrigin, EnvServerOrigin, s.defaults.ServerOrigin)
	return strings.TrimSpace(value)
}

func (s *SettingsStore) SetServerOrigin(origin string) error {
	return s.db.SetSetting(entities.SettingKeyServerOrigin, strings.TrimSpace(origin))
}

func (s *SettingsStore) GetModeConfig() ModeConfig {
	return ModeConfig{
		ServerMode: s.GetServerMode(),
		Origin:     s.GetServerOrigin(),
	}
}

// SetModeConfig records the mode chosen by the user.
func (s *SettingsStore) SetModeConfig(cfg ModeConfig) error {
	if err := s.SetServerMode(cfg.ServerMode); err != nil {
		return err
	}
	return s.SetServerOrigin(cfg.Origin)
}

func (s *SettingsStore) GetModeConfigInfo() ModeConfigInfo {
	mode, modeSource := s.lookup(entities.SettingKeyServerMode, EnvServerMode, formatBool(s.defaults.ServerMode))
	origin, originSource := s.lookup(entities.SettingKeyServerOrigin, EnvServerOrigin, s.defaults.ServerOrigin)
	return ModeConfigInfo{
		ServerMode:       parseBool(mode),
		ServerModeSource: modeSource,
		Origin:           strings.TrimSpace(origin),
		OriginSource:     originSource,
	}
}

// ClearModeConfig reverts mode and origin to environment or default values.
func (s *SettingsStore) ClearModeConfig() error {
	return s.clear(entities.SettingKeyServerMode, entities.SettingKeyServerOrigin)
}
