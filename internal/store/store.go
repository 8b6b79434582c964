// Package store provides the embedded relational store for diary entries,
// sentence tags and entry keywords.
//
// A Store is a SQLite database opened through gorm. The application keeps its
// working copy in memory and moves it around as an opaque snapshot (see
// snapshot.go); the reference remote service opens the same schema on disk.
//
// # Usage
//
//	st, err := store.New()
//	entry, err := st.AddEntry("Hello world.", time.Time{}, []string{"calm"})
//	entries, err := st.ListEntriesWithKeywords()
//
// The schema is created with plain DDL rather than AutoMigrate so that
// snapshots stay interchangeable with files produced by other clients of the
// same three-table layout.
package store

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	TableEntries  = "entries"
	TableTags     = "tags"
	TableKeywords = "keywords"

	memoryDSN = ":memory:?_foreign_keys=1"
)

var (
	// ErrNotFound is returned when a row addressed by id does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidSnapshot is returned when snapshot bytes are not a SQLite database.
	ErrInvalidSnapshot = errors.New("invalid store snapshot")

	// ErrUnknownTable is returned by EnsureTable for tables outside the schema.
	ErrUnknownTable = errors.New("unknown table")

	// ErrIDConflict is returned by RekeyEntry and RekeyTag when the target id is taken.
	ErrIDConflict = errors.New("id already in use")

	// ErrInvalidSentenceIndex is returned for negative sentence indexes.
	ErrInvalidSentenceIndex = errors.New("sentence index must be non-negative")
)

var tableDDL = map[string]string{
	TableEntries: `
		CREATE TABLE IF NOT EXISTS entries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			content TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	TableTags: `
		CREATE TABLE IF NOT EXISTS tags (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			entry_id INTEGER NOT NULL,
			sentence_index INTEGER NOT NULL,
			tag TEXT NOT NULL,
			FOREIGN KEY (entry_id) REFERENCES entries(id) ON DELETE CASCADE
		)`,
	TableKeywords: `
		CREATE TABLE IF NOT EXISTS keywords (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			entry_id INTEGER NOT NULL,
			keyword TEXT NOT NULL,
			FOREIGN KEY (entry_id) REFERENCES entries(id) ON DELETE CASCADE
		)`,
}

// Entries must be created first because the other tables reference it.
var tableOrder = []string{TableEntries, TableTags, TableKeywords}

// Store is a handle to one embedded database.
type Store struct {
	db   *gorm.DB
	path string
}

// New creates an empty in-memory store with all tables.
func New() (*Store, error) {
	s, err := openDSN(memoryDSN, "")
	if err != nil {
		return nil, err
	}
	if err := s.CreateTables(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Open opens (or creates) a store backed by a file on disk.
func Open(path string) (*Store, error) {
	s, err := openDSN(path+"?_foreign_keys=1", path)
	if err != nil {
		return nil, err
	}
	if err := s.CreateTables(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// openDSN opens a store without touching its schema. The pool is pinned to a
// single connection: an in-memory database lives exactly as long as the
// connection that created it, and snapshot operations need that same
// connection.
func openDSN(dsn, path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get store connection: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)
	sqlDB.SetConnMaxIdleTime(0)

	return &Store{db: db, path: path}, nil
}

// Path returns the backing file, or "" for an in-memory store.
func (s *Store) Path() string {
	return s.path
}

// Close releases the underlying connection. An in-memory store is gone afterwards.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks that the store connection is alive.
func (s *Store) Ping() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// CreateTables creates any missing table. Safe to call repeatedly.
func (s *Store) CreateTables() error {
	for _, name := range tableOrder {
		if err := s.EnsureTable(name); err != nil {
			return err
		}
	}
	return nil
}

// EnsureTable creates one of the known tables if it does not exist yet.
func (s *Store) EnsureTable(name string) error {
	ddl, ok := tableDDL[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTable, name)
	}
	if err := s.db.Exec(ddl).Error; err != nil {
		return fmt.Errorf("failed to create table %s: %w", name, err)
	}
	return nil
}

// Tables lists user tables present in the database.
func (s *Store) Tables() ([]string, error) {
	var names []string
	err := s.db.Raw(`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`).
		Scan(&names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
}

// HasTable reports whether the named table exists.
func (s *Store) HasTable(name string) (bool, error) {
	tables, err := s.Tables()
	if err != nil {
		return false, err
	}
	for _, t := range tables {
		if t == name {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) entryExists(db *gorm.DB, id int64) (bool, error) {
	var count int64
	if err := db.Table(TableEntries).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) entryIDSet(db *gorm.DB) (map[int64]struct{}, error) {
	var ids []int64
	if err := db.Table(TableEntries).Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}
