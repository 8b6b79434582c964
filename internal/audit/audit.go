// Package audit archives the stores replaced by database imports.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Record describes one archived import.
type Record struct {
	ID         string    `json:"id"`
	ImportedAt time.Time `json:"imported_at"`
	ServerMode bool      `json:"server_mode"`
	Snapshot   string    `json:"snapshot,omitempty"`
	Report     any       `json:"report,omitempty"`
}

// Auditor writes replaced snapshots and import records into Dir. Files are
// prefixed with a random UUID so repeated imports never collide.
type Auditor struct {
	Dir string
}

func NewAuditor(dir string) *Auditor {
	return &Auditor{Dir: dir}
}

// NewID returns the prefix shared by the files of one import.
func NewID() string {
	return uuid.New().String()
}

// SaveSnapshot writes the bytes of a replaced store as <id>-<name>.
func (a *Auditor) SaveSnapshot(id, name string, data []byte) (string, error) {
	if err := a.ensureDir(); err != nil {
		return "", err
	}
	filename := fmt.Sprintf("%s-%s", id, name)
	if err := os.WriteFile(filepath.Join(a.Dir, filename), data, 0644); err != nil {
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}
	log.WithField("file", filename).Info("Archived replaced store")
	return filename, nil
}

// SaveRecord writes r as <id>.json.
func (a *Auditor) SaveRecord(r Record) (string, error) {
	if err := a.ensureDir(); err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal record: %w", err)
	}
	filename := r.ID + ".json"
	if err := os.WriteFile(filepath.Join(a.Dir, filename), data, 0644); err != nil {
		return "", fmt.Errorf("failed to write record: %w", err)
	}
	return filename, nil
}

func (a *Auditor) ensureDir() error {
	if err := os.MkdirAll(a.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create audit directory: %w", err)
	}
	return nil
}
