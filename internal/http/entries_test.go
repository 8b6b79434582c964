package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/diary/internal/diary"
	"github.com/mrlokans/diary/internal/entities"
	"github.com/mrlokans/diary/internal/persistence"
	"github.com/mrlokans/diary/internal/server"
	"github.com/mrlokans/diary/internal/store"
)

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestEntriesController_ListEntries(t *testing.T) {
	t.Run("returns empty list when no entries exist", func(t *testing.T) {
		router := newTestRouter(t, RouterConfig{Service: setupTestService(t)})

		w := doJSON(t, router, "GET", "/api/entries", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
	})

	t.Run("returns entries with keywords", func(t *testing.T) {
		router := newTestRouter(t, RouterConfig{Service: setupTestService(t)})

		w := doJSON(t, router, "POST", "/api/entries", CreateEntryRequest{Content: "Hello world.", Keywords: []string{"calm"}})
		require.Equal(t, http.StatusCreated, w.Code)

		w = doJSON(t, router, "GET", "/api/entries", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var entries []entities.EntryWithKeywords
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
		require.Len(t, entries, 1)
		assert.Equal(t, "Hello world.", entries[0].Content)
		assert.Equal(t, []string{"calm"}, entries[0].Keywords)
		assert.False(t, entries[0].CreatedAt.IsZero())
	})
}

func TestEntriesController_CreateEntry(t *testing.T) {
	t.Run("rejects blank content", func(t *testing.T) {
		router := newTestRouter(t, RouterConfig{Service: setupTestService(t)})

		w := doJSON(t, router, "POST", "/api/entries", CreateEntryRequest{Content: "   "})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), CodeValidation)
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		router := newTestRouter(t, RouterConfig{Service: setupTestService(t)})

		req, _ := http.NewRequest("POST", "/api/entries", strings.NewReader("{"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("uninitialized store", func(t *testing.T) {
		svc := diary.NewService(persistence.New(persistence.NewMemorySlots()), diary.Options{})
		router := newTestRouter(t, RouterConfig{Service: svc})

		w := doJSON(t, router, "POST", "/api/entries", CreateEntryRequest{Content: "Lost."})

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), CodeUninitialized)
	})
}

func TestEntriesController_KeywordsSentencesTags(t *testing.T) {
	svc := setupTestService(t)
	router := newTestRouter(t, RouterConfig{Service: svc})

	w := doJSON(t, router, "POST", "/api/entries", CreateEntryRequest{Content: "First one. Second one!"})
	require.Equal(t, http.StatusCreated, w.Code)
	var entry entities.EntryWithKeywords
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entry))

	w = doJSON(t, router, "PUT", "/api/entries/"+itoa(entry.ID)+"/keywords", KeywordsRequest{Keywords: []string{"a", "b", "a"}})
	assert.Equal(t, http.StatusOK, w.Code)

	entries, err := svc.ListEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, []string{"a", "b"}, entries[0].Keywords)

	w = doJSON(t, router, "GET", "/api/entries/"+itoa(entry.ID)+"/sentences", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var sentences struct {
		EntryID   int64    `json:"entry_id"`
		Sentences []string `json:"sentences"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sentences))
	assert.Equal(t, []string{"First one.", "Second one!"}, sentences.Sentences)

	w = doJSON(t, router, "GET", "/api/entries/"+itoa(entry.ID)+"/tags", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))

	w = doJSON(t, router, "PUT", "/api/entries/999/keywords", KeywordsRequest{Keywords: []string{"x"}})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, "GET", "/api/entries/999/sentences", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, "GET", "/api/entries/abc/tags", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEntriesController_RemoteFailureReturnsSavedEntry(t *testing.T) {
	remoteStore, err := store.New()
	require.NoError(t, err)
	defer remoteStore.Close()
	remoteServer := httptest.NewServer(server.New(remoteStore).NewRouter())

	svc := diary.NewService(persistence.New(persistence.NewMemorySlots()), diary.Options{})
	defer svc.Close()
	_, err = svc.Initialize(context.Background(), true, remoteServer.URL)
	require.NoError(t, err)
	require.True(t, svc.Mode().ServerMode)

	router := newTestRouter(t, RouterConfig{Service: svc})
	remoteServer.Close()

	w := doJSON(t, router, "POST", "/api/entries", CreateEntryRequest{Content: "Saved anyway."})

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, CodeRemoteUnavailable, resp.Code)
	assert.NotNil(t, resp.Details)

	entries, err := svc.ListEntries()
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
