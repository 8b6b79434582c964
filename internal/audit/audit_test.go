package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditor(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "audit")
	auditor := NewAuditor(dir)

	t.Run("SaveSnapshot creates directory and file", func(t *testing.T) {
		id := NewID()
		name, err := auditor.SaveSnapshot(id, "diary_local.db", []byte("bytes"))
		require.NoError(t, err)
		assert.Equal(t, id+"-diary_local.db", name)

		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Equal(t, "bytes", string(data))
	})

	t.Run("SaveRecord writes JSON", func(t *testing.T) {
		id := NewID()
		name, err := auditor.SaveRecord(Record{
			ID:         id,
			ImportedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
			ServerMode: true,
			Snapshot:   id + "-diary_server.db",
			Report:     map[string]int{"entries_pushed": 2},
		})
		require.NoError(t, err)
		assert.Equal(t, id+".json", name)

		raw, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)

		var saved map[string]any
		require.NoError(t, json.Unmarshal(raw, &saved))
		assert.Equal(t, id, saved["id"])
		assert.Equal(t, true, saved["server_mode"])
		assert.Equal(t, map[string]any{"entries_pushed": float64(2)}, saved["report"])
	})

	t.Run("NewID is unique", func(t *testing.T) {
		assert.NotEqual(t, NewID(), NewID())
	})
}
