// Package server is a reference implementation of the diary remote service.
//
// It serves the /api/diary, /api/tags and /api/keywords resources over a
// store opened on disk (serve-remote) or in memory (tests). Errors use the
// {"detail": "..."} body the client understands.
package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/mrlokans/diary/internal/entities"
	"github.com/mrlokans/diary/internal/remote"
	"github.com/mrlokans/diary/internal/store"
)

// DetailResponse is the error body of every non-2xx response.
type DetailResponse struct {
	Detail string `json:"detail"`
}

// Server exposes a store as the remote HTTP surface.
type Server struct {
	store *store.Store
}

func New(st *store.Store) *Server {
	return &Server{store: st}
}

// NewRouter builds the gin engine with every remote route registered.
func (s *Server) NewRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	s.RegisterRoutes(router)
	return router
}

func (s *Server) RegisterRoutes(router gin.IRouter) {
	router.GET("/health", s.Health)

	api := router.Group("/api")
	api.GET("/diary", s.ListEntries)
	api.GET("/diary/:id", s.GetEntry)
	api.POST("/diary", s.CreateEntry)
	api.PUT("/diary/:id/keywords", s.UpdateEntryKeywords)

	api.GET("/tags", s.ListTags)
	api.GET("/tags/:id", s.ListTagsForEntry)
	api.POST("/tags", s.CreateTag)
	api.DELETE("/tags/:id", s.DeleteTag)

	api.GET("/keywords", s.ListKeywords)
}

func (s *Server) Health(c *gin.Context) {
	if err := s.store.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) ListEntries(c *gin.Context) {
	entries, err := s.store.ListEntriesWithKeywords()
	if err != nil {
		detailInternal(c, err, "list entries")
		return
	}
	out := make([]remote.Entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, toRemoteEntry(e.Entry, e.Keywords))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) GetEntry(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	entry, err := s.store.GetEntry(id)
	if errors.Is(err, store.ErrNotFound) {
		detail(c, http.StatusNotFound, "Entry not found")
		return
	}
	if err != nil {
		detailInternal(c, err, "get entry")
		return
	}
	keywords, err := s.store.KeywordsForEntry(id)
	if err != nil {
		detailInternal(c, err, "get entry keywords")
		return
	}
	c.JSON(http.StatusOK, toRemoteEntry(*entry, keywords))
}

func (s *Server) CreateEntry(c *gin.Context) {
	var req remote.CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusUnprocessableEntity, "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		detail(c, http.StatusUnprocessableEntity, "Content is required")
		return
	}

	var createdAt time.Time
	if req.CreatedAt != nil {
		createdAt = req.CreatedAt.Time
	}
	entry, err := s.store.AddEntry(req.Content, createdAt, req.Keywords)
	if err != nil {
		detailInternal(c, err, "create entry")
		return
	}
	c.JSON(http.StatusCreated, remote.CreateEntryResponse{
		EntryID: entry.ID,
		Message: "Entry created",
	})
}

func (s *Server) UpdateEntryKeywords(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req remote.UpdateKeywordsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusUnprocessableEntity, "Invalid request body: "+err.Error())
		return
	}
	err := s.store.ReplaceEntryKeywords(id, req.Keywords)
	if errors.Is(err, store.ErrNotFound) {
		detail(c, http.StatusNotFound, "Entry not found")
		return
	}
	if err != nil {
		detailInternal(c, err, "update keywords")
		return
	}
	c.JSON(http.StatusOK, remote.Ack{Message: "Keywords updated"})
}

func (s *Server) ListTags(c *gin.Context) {
	tags, err := s.store.ListTags()
	if err != nil {
		detailInternal(c, err, "list tags")
		return
	}
	c.JSON(http.StatusOK, toRemoteTags(tags))
}

func (s *Server) ListTagsForEntry(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	tags, err := s.store.GetTagsForEntry(id)
	if err != nil {
		detailInternal(c, err, "list entry tags")
		return
	}
	c.JSON(http.StatusOK, toRemoteTags(tags))
}

func (s *Server) CreateTag(c *gin.Context) {
	var req remote.CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusUnprocessableEntity, "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Tag) == "" {
		detail(c, http.StatusUnprocessableEntity, "Tag is required")
		return
	}

	tag, err := s.store.AddTag(req.EntryID, req.SentenceIndex, req.Tag)
	switch {
	case errors.Is(err, store.ErrNotFound):
		detail(c, http.StatusNotFound, "Entry not found")
		return
	case errors.Is(err, store.ErrInvalidSentenceIndex):
		detail(c, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		detailInternal(c, err, "create tag")
		return
	}
	c.JSON(http.StatusCreated, remote.CreateTagResponse{
		TagID:   tag.ID,
		Message: "Tag created",
	})
}

func (s *Server) DeleteTag(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	err := s.store.DeleteTag(id)
	if errors.Is(err, store.ErrNotFound) {
		detail(c, http.StatusNotFound, "Tag not found")
		return
	}
	if err != nil {
		detailInternal(c, err, "delete tag")
		return
	}
	c.JSON(http.StatusOK, remote.Ack{Message: "Tag deleted"})
}

func (s *Server) ListKeywords(c *gin.Context) {
	keywords, err := s.store.ListKeywords()
	if err != nil {
		detailInternal(c, err, "list keywords")
		return
	}
	out := make([]remote.Keyword, 0, len(keywords))
	for _, k := range keywords {
		out = append(out, remote.Keyword{ID: k.ID, EntryID: k.EntryID, Keyword: k.Keyword})
	}
	c.JSON(http.StatusOK, out)
}

func toRemoteEntry(e entities.Entry, keywords []string) remote.Entry {
	if keywords == nil {
		keywords = []string{}
	}
	return remote.Entry{
		ID:        e.ID,
		Content:   e.Content,
		CreatedAt: remote.Timestamp{Time: e.CreatedAt},
		Keywords:  keywords,
	}
}

func toRemoteTags(tags []entities.Tag) []remote.Tag {
	out := make([]remote.Tag, 0, len(tags))
	for _, t := range tags {
		out = append(out, remote.Tag{
			ID:            t.ID,
			EntryID:       t.EntryID,
			SentenceIndex: t.SentenceIndex,
			Tag:           t.Tag,
		})
	}
	return out
}

func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		detail(c, http.StatusUnprocessableEntity, "invalid "+name)
		return 0, false
	}
	return id, true
}

func detail(c *gin.Context, status int, message string) {
	c.JSON(status, DetailResponse{Detail: message})
}

func detailInternal(c *gin.Context, err error, context string) {
	log.WithError(err).Errorf("Internal error (%s)", context)
	c.JSON(http.StatusInternalServerError, DetailResponse{Detail: "Internal server error"})
}
