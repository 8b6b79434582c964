// Package persistence moves embedded store snapshots between the store, the
// host key-value slots and user-facing files.
//
// Each mode has its own slot so switching between local and server mode
// never overwrites the other mode's cache. Exported files use the slot key
// as their file name.
package persistence

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/mrlokans/diary/internal/entities"
	"github.com/mrlokans/diary/internal/store"
)

const (
	LocalFileName  = entities.SettingKeyLocalSnapshot
	ServerFileName = entities.SettingKeyServerSnapshot

	ContentType = "application/x-sqlite3"
)

var (
	// ErrInvalidDatabase is returned when an imported file is not a diary database.
	ErrInvalidDatabase = errors.New("invalid database file")

	// ErrNoFile is returned when Import is called without a reader.
	ErrNoFile = errors.New("no database file provided")
)

// ExportFile is a downloadable store snapshot.
type ExportFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// Adapter persists stores to slots and files.
type Adapter struct {
	slots Slots
}

func New(slots Slots) *Adapter {
	return &Adapter{slots: slots}
}

// SlotKey returns the slot used for the given mode.
func SlotKey(serverMode bool) string {
	if serverMode {
		return entities.SettingKeyServerSnapshot
	}
	return entities.SettingKeyLocalSnapshot
}

// FileName returns the export file name used for the given mode.
func FileName(serverMode bool) string {
	if serverMode {
		return ServerFileName
	}
	return LocalFileName
}

// Save snapshots st into the mode's slot, overwriting what was there.
func (a *Adapter) Save(st *store.Store, serverMode bool) error {
	if st == nil {
		log.Warn("Save skipped: store is not initialized")
		return nil
	}
	data, err := st.Export()
	if err != nil {
		return err
	}
	if err := a.slots.Put(SlotKey(serverMode), data); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"slot":  SlotKey(serverMode),
		"bytes": len(data),
	}).Debug("Store saved")
	return nil
}

// LoadOrCreate restores the mode's slot, or creates an empty store and saves
// it right away so the slot is never left empty once touched.
func (a *Adapter) LoadOrCreate(serverMode bool) (*store.Store, error) {
	key := SlotKey(serverMode)
	data, ok, err := a.slots.Get(key)
	if err != nil {
		return nil, err
	}

	if ok {
		st, err := store.Restore(data)
		if err != nil {
			return nil, fmt.Errorf("failed to restore slot %s: %w", key, err)
		}
		if err := st.CreateTables(); err != nil {
			st.Close()
			return nil, err
		}
		log.WithField("slot", key).Info("Store restored from slot")
		return st, nil
	}

	st, err := store.New()
	if err != nil {
		return nil, err
	}
	if err := a.Save(st, serverMode); err != nil {
		st.Close()
		return nil, err
	}
	log.WithField("slot", key).Info("Created new store")
	return st, nil
}

// Export produces the downloadable artifact for st. A nil store is logged and
// yields a nil file.
func (a *Adapter) Export(st *store.Store, serverMode bool) (*ExportFile, error) {
	if st == nil {
		log.Warn("Export skipped: store is not initialized")
		return nil, nil
	}
	data, err := st.Export()
	if err != nil {
		return nil, err
	}
	return &ExportFile{
		Name:        FileName(serverMode),
		ContentType: ContentType,
		Data:        data,
	}, nil
}

// ExportToDir writes the artifact for st into dir and returns its path.
func (a *Adapter) ExportToDir(st *store.Store, serverMode bool, dir string) (string, error) {
	file, err := a.Export(st, serverMode)
	if err != nil {
		return "", err
	}
	if file == nil {
		return "", nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	path := filepath.Join(dir, file.Name)
	if err := os.WriteFile(path, file.Data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}

// Import parses a snapshot from r and returns a new store. Missing tags or
// keywords tables are created empty; a missing entries table is rejected.
// The caller decides when to swap the new store in.
func (a *Adapter) Import(r io.Reader) (*store.Store, error) {
	if r == nil {
		return nil, ErrNoFile
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read database file: %w", err)
	}

	st, err := store.Restore(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDatabase, err)
	}

	hasEntries, err := st.HasTable(store.TableEntries)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("%w: %v", ErrInvalidDatabase, err)
	}
	if !hasEntries {
		st.Close()
		return nil, fmt.Errorf("%w: missing %s table", ErrInvalidDatabase, store.TableEntries)
	}

	for _, table := range []string{store.TableTags, store.TableKeywords} {
		has, err := st.HasTable(table)
		if err != nil {
			st.Close()
			return nil, err
		}
		if has {
			continue
		}
		if err := st.EnsureTable(table); err != nil {
			st.Close()
			return nil, err
		}
		log.WithField("table", table).Info("Imported database lacked table, created it empty")
	}
	return st, nil
}
