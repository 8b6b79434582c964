// Package database provides the host-side data access layer.
//
// The diary itself lives in an in-memory store (see package store). What
// survives a restart is kept here, in an on-disk SQLite file with a single
// settings table:
//
//	database/
//	├── database.go      # Connection setup and migrations
//	└── settings/        # Key-value settings, including store snapshots
//
// # Usage
//
//	db, err := database.NewDatabase("./diary_host.db")
//	err = db.SetSetting(entities.SettingKeySyncSchedule, "*/30 * * * *")
//	setting, err := db.GetSetting(entities.SettingKeySyncSchedule)
//
// Snapshot slots (diary_local.db, diary_server.db) are ordinary settings rows
// holding base64 text; package persistence owns that encoding.
package database
