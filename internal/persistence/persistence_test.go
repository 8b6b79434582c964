package persistence

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/diary/internal/database"
	"github.com/mrlokans/diary/internal/store"
)

// buildSQLiteFile creates an on-disk SQLite file with the given DDL and returns its bytes.
func buildSQLiteFile(t *testing.T, statements ...string) []byte {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.db")

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func TestSlotKey_DistinctPerMode(t *testing.T) {
	assert.Equal(t, "diary_local.db", SlotKey(false))
	assert.Equal(t, "diary_server.db", SlotKey(true))
	assert.Equal(t, SlotKey(false), FileName(false))
	assert.Equal(t, SlotKey(true), FileName(true))
}

func TestLoadOrCreate_CreatesAndSavesImmediately(t *testing.T) {
	slots := NewMemorySlots()
	adapter := New(slots)

	st, err := adapter.LoadOrCreate(false)
	require.NoError(t, err)
	defer st.Close()

	_, ok, err := slots.Get(SlotKey(false))
	require.NoError(t, err)
	assert.True(t, ok, "local slot should be written on first load")

	_, ok, err = slots.Get(SlotKey(true))
	require.NoError(t, err)
	assert.False(t, ok, "server slot must stay untouched")
}

func TestSaveThenLoad_RestoresSnapshot(t *testing.T) {
	slots := NewMemorySlots()
	adapter := New(slots)

	st, err := adapter.LoadOrCreate(false)
	require.NoError(t, err)
	_, err = st.AddEntry("Hello world.", time.Time{}, []string{"calm"})
	require.NoError(t, err)
	require.NoError(t, adapter.Save(st, false))
	st.Close()

	reloaded, err := adapter.LoadOrCreate(false)
	require.NoError(t, err)
	defer reloaded.Close()

	entries, err := reloaded.ListEntriesWithKeywords()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Hello world.", entries[0].Content)
	assert.Equal(t, []string{"calm"}, entries[0].Keywords)
}

func TestSave_ModesDoNotClobberEachOther(t *testing.T) {
	slots := NewMemorySlots()
	adapter := New(slots)

	local, err := adapter.LoadOrCreate(false)
	require.NoError(t, err)
	defer local.Close()
	_, err = local.AddEntry("local only", time.Time{}, nil)
	require.NoError(t, err)
	require.NoError(t, adapter.Save(local, false))

	server, err := adapter.LoadOrCreate(true)
	require.NoError(t, err)
	defer server.Close()

	entries, err := server.ListEntries()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSave_NilStoreIsNoop(t *testing.T) {
	slots := NewMemorySlots()
	adapter := New(slots)

	require.NoError(t, adapter.Save(nil, false))

	_, ok, err := slots.Get(SlotKey(false))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExport_NamesByMode(t *testing.T) {
	adapter := New(NewMemorySlots())
	st, err := store.New()
	require.NoError(t, err)
	defer st.Close()

	file, err := adapter.Export(st, true)
	require.NoError(t, err)
	assert.Equal(t, "diary_server.db", file.Name)
	assert.Equal(t, ContentType, file.ContentType)
	assert.NotEmpty(t, file.Data)

	file, err = adapter.Export(st, false)
	require.NoError(t, err)
	assert.Equal(t, "diary_local.db", file.Name)
}

func TestExport_NilStore(t *testing.T) {
	adapter := New(NewMemorySlots())

	file, err := adapter.Export(nil, false)
	assert.NoError(t, err)
	assert.Nil(t, file)
}

func TestExportImport_RoundTrip(t *testing.T) {
	adapter := New(NewMemorySlots())
	st, err := store.New()
	require.NoError(t, err)
	defer st.Close()

	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	a, err := st.AddEntry("First. Second.", base, []string{"calm", "rain"})
	require.NoError(t, err)
	_, err = st.AddEntry("Later.", base.Add(time.Hour), nil)
	require.NoError(t, err)
	_, err = st.AddTag(a.ID, 1, "weather")
	require.NoError(t, err)

	dir := t.TempDir()
	path, err := adapter.ExportToDir(st, false, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "diary_local.db"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	imported, err := adapter.Import(f)
	require.NoError(t, err)
	defer imported.Close()

	want, err := st.ListEntriesWithKeywords()
	require.NoError(t, err)
	got, err := imported.ListEntriesWithKeywords()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	wantTags, err := st.ListTags()
	require.NoError(t, err)
	gotTags, err := imported.ListTags()
	require.NoError(t, err)
	assert.Equal(t, wantTags, gotTags)
}

func TestImport_MissingEntriesTable(t *testing.T) {
	adapter := New(NewMemorySlots())
	data := buildSQLiteFile(t, `CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT)`)

	_, err := adapter.Import(bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrInvalidDatabase)
}

func TestImport_CreatesMissingTables(t *testing.T) {
	adapter := New(NewMemorySlots())
	data := buildSQLiteFile(t,
		`CREATE TABLE entries (id INTEGER PRIMARY KEY AUTOINCREMENT, content TEXT NOT NULL, created_at DATETIME DEFAULT CURRENT_TIMESTAMP)`,
		`INSERT INTO entries (id, content, created_at) VALUES (7, 'From an older client.', '2023-11-02 09:15:00')`,
	)

	st, err := adapter.Import(bytes.NewReader(data))
	require.NoError(t, err)
	defer st.Close()

	tables, err := st.Tables()
	require.NoError(t, err)
	assert.Contains(t, tables, "tags")
	assert.Contains(t, tables, "keywords")

	entries, err := st.ListEntriesWithKeywords()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(7), entries[0].ID)
	assert.Equal(t, 2023, entries[0].CreatedAt.Year())
	assert.Empty(t, entries[0].Keywords)

	_, err = st.AddTag(7, 0, "legacy")
	assert.NoError(t, err)
}

func TestImport_GarbageAndNil(t *testing.T) {
	adapter := New(NewMemorySlots())

	_, err := adapter.Import(bytes.NewReader([]byte("not sqlite")))
	assert.ErrorIs(t, err, ErrInvalidDatabase)

	_, err = adapter.Import(nil)
	assert.ErrorIs(t, err, ErrNoFile)
}

func TestSettingsSlots_PersistAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "host.db")

	db, err := database.NewDatabase(path)
	require.NoError(t, err)
	adapter := New(NewSettingsSlots(db))

	st, err := adapter.LoadOrCreate(true)
	require.NoError(t, err)
	_, err = st.AddEntry("cached from server", time.Time{}, nil)
	require.NoError(t, err)
	require.NoError(t, adapter.Save(st, true))
	st.Close()
	require.NoError(t, db.Close())

	db, err = database.NewDatabase(path)
	require.NoError(t, err)
	defer db.Close()
	adapter = New(NewSettingsSlots(db))

	restored, err := adapter.LoadOrCreate(true)
	require.NoError(t, err)
	defer restored.Close()

	entries, err := restored.ListEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "cached from server", entries[0].Content)
}

func TestSettingsSlots_CorruptValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "host.db")
	db, err := database.NewDatabase(path)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.SetSetting(SlotKey(false), "%%% not base64 %%%"))

	_, _, err = NewSettingsSlots(db).Get(SlotKey(false))
	assert.Error(t, err)
}
