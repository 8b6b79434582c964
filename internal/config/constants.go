package config

// Default paths for databases
const (
	// DefaultDatabasePath is the host settings database holding the snapshot slots
	DefaultDatabasePath = "./diary.db"

	// DefaultRemoteDatabasePath is the file-backed store served by serve-remote
	DefaultRemoteDatabasePath = "./diary_server.db"
)

// ConfigFileEnv names the optional config file read before the environment.
const ConfigFileEnv = "DIARY_CONFIG"
