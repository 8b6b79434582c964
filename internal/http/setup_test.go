package http

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/diary/internal/database"
	"github.com/mrlokans/diary/internal/diary"
	"github.com/mrlokans/diary/internal/persistence"
	"github.com/mrlokans/diary/internal/server"
	"github.com/mrlokans/diary/internal/store"
)

// setupTestService returns an initialized local-mode service.
func setupTestService(t *testing.T) *diary.Service {
	t.Helper()
	svc := diary.NewService(persistence.New(persistence.NewMemorySlots()), diary.Options{})
	t.Cleanup(func() { svc.Close() })

	_, err := svc.Initialize(context.Background(), false, "")
	require.NoError(t, err)
	return svc
}

func setupTestDatabase(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "diary.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// setupTestRemote starts the reference remote server backed by a fresh store.
func setupTestRemote(t *testing.T) (string, *store.Store) {
	t.Helper()
	st, err := store.New()
	require.NoError(t, err)
	ts := httptest.NewServer(server.New(st).NewRouter())
	t.Cleanup(func() {
		ts.Close()
		st.Close()
	})
	return ts.URL, st
}

func newTestRouter(t *testing.T, cfg RouterConfig) *gin.Engine {
	t.Helper()
	return NewRouter(cfg)
}
