package config

import (
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Diary
		Remote
		Sync
		Tasks
		RemoteServer
		Log
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	Diary struct {
		ServerMode bool
		Origin     string
		ExportDir  string // Directory for file exports
		AuditDir   string // Replaced stores are archived here on import; empty disables
	}
	Remote struct {
		Timeout time.Duration // Zero disables the client timeout
	}
	Sync struct {
		Enabled      bool
		Schedule     string // Cron format: "*/30 * * * *" = every 30 minutes
		ReconcileIDs bool
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		TaskTimeout     time.Duration
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	RemoteServer struct {
		Port         int32
		Host         string
		DatabasePath string
	}
	Log struct {
		Level      string
		Format     string // "text" or "json"
		File       string
		MaxSizeMB  int
		MaxBackups int
		MaxAgeDays int
	}
)

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	v.SetDefault("diary_server_mode", false)
	v.SetDefault("diary_server_origin", "")
	v.SetDefault("diary_export_dir", ".")
	v.SetDefault("diary_audit_dir", "")
	v.SetDefault("remote_timeout", "0s")

	v.SetDefault("sync_enabled", false)
	v.SetDefault("sync_schedule", "*/30 * * * *")
	v.SetDefault("sync_reconcile_ids", false)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 1)
	v.SetDefault("task_timeout", "5m")
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	// Reference remote server defaults
	v.SetDefault("remote_server_port", 8000)
	v.SetDefault("remote_server_host", "0.0.0.0")
	v.SetDefault("remote_server_database_path", DefaultRemoteDatabasePath)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("log_file", "")
	v.SetDefault("log_max_size_mb", 10)
	v.SetDefault("log_max_backups", 3)
	v.SetDefault("log_max_age_days", 28)
	return v
}

// NewConfig reads configuration from the environment, after an optional
// config file named by DIARY_CONFIG. Environment variables win over the file.
func NewConfig() *Config {
	v := newViper()
	if path := os.Getenv(ConfigFileEnv); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			log.WithError(err).WithField("path", path).Warn("Failed to read config file, using environment only")
		}
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Diary: Diary{
			ServerMode: v.GetBool("DIARY_SERVER_MODE"),
			Origin:     v.GetString("DIARY_SERVER_ORIGIN"),
			ExportDir:  v.GetString("DIARY_EXPORT_DIR"),
			AuditDir:   v.GetString("DIARY_AUDIT_DIR"),
		},
		Remote: Remote{
			Timeout: v.GetDuration("REMOTE_TIMEOUT"),
		},
		Sync: Sync{
			Enabled:      v.GetBool("SYNC_ENABLED"),
			Schedule:     v.GetString("SYNC_SCHEDULE"),
			ReconcileIDs: v.GetBool("SYNC_RECONCILE_IDS"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			TaskTimeout:     v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		RemoteServer: RemoteServer{
			Port:         v.GetInt32("REMOTE_SERVER_PORT"),
			Host:         v.GetString("REMOTE_SERVER_HOST"),
			DatabasePath: v.GetString("REMOTE_SERVER_DATABASE_PATH"),
		},
		Log: Log{
			Level:      v.GetString("LOG_LEVEL"),
			Format:     v.GetString("LOG_FORMAT"),
			File:       v.GetString("LOG_FILE"),
			MaxSizeMB:  v.GetInt("LOG_MAX_SIZE_MB"),
			MaxBackups: v.GetInt("LOG_MAX_BACKUPS"),
			MaxAgeDays: v.GetInt("LOG_MAX_AGE_DAYS"),
		},
	}
}
