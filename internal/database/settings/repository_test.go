package settings

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/diary/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	dbPath := filepath.Join(t.TempDir(), "settings.db")

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.Setting{})
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	}

	return repo, cleanup
}

func TestRepository_SetSetting_New(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	err := repo.SetSetting(entities.SettingKeyServerMode, "true")
	require.NoError(t, err)

	setting, err := repo.GetSetting(entities.SettingKeyServerMode)
	require.NoError(t, err)
	assert.Equal(t, entities.SettingKeyServerMode, setting.Key)
	assert.Equal(t, "true", setting.Value)
}

func TestRepository_SetSetting_Overwrites(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.SetSetting(entities.SettingKeyLocalSnapshot, "first"))
	require.NoError(t, repo.SetSetting(entities.SettingKeyLocalSnapshot, "second"))

	value, ok, err := repo.GetValue(entities.SettingKeyLocalSnapshot)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "second", value)
}

func TestRepository_SetSetting_LargeValue(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	big := strings.Repeat("A", 1<<20)
	require.NoError(t, repo.SetSetting(entities.SettingKeyServerSnapshot, big))

	value, ok, err := repo.GetValue(entities.SettingKeyServerSnapshot)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, value, len(big))
}

func TestRepository_GetValue_Missing(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	value, ok, err := repo.GetValue("nonexistent")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, value)

	_, err = repo.GetSetting("nonexistent")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_DeleteSetting(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.SetSetting("to-delete", "value"))
	require.NoError(t, repo.DeleteSetting("to-delete"))

	_, ok, err := repo.GetValue("to-delete")
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting again is fine
	assert.NoError(t, repo.DeleteSetting("to-delete"))
}
