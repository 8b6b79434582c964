package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/diary/internal/diary"
	"github.com/mrlokans/diary/internal/entities"
)

type EntriesController struct {
	service EntryService
}

func NewEntriesController(service EntryService) *EntriesController {
	return &EntriesController{service: service}
}

// CreateEntryRequest is the body of POST /api/entries.
type CreateEntryRequest struct {
	Content  string   `json:"content"`
	Keywords []string `json:"keywords"`
}

// KeywordsRequest is the body of PUT /api/entries/:id/keywords.
type KeywordsRequest struct {
	Keywords []string `json:"keywords"`
}

// ListEntries returns every entry newest first
// GET /api/entries
func (ec *EntriesController) ListEntries(c *gin.Context) {
	entries, err := ec.service.ListEntries()
	if err != nil {
		respondInternalError(c, err, "list entries")
		return
	}
	if entries == nil {
		entries = []entities.EntryWithKeywords{}
	}
	c.JSON(http.StatusOK, entries)
}

// CreateEntry adds an entry
// POST /api/entries
func (ec *EntriesController) CreateEntry(c *gin.Context) {
	var req CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	entry, err := ec.service.AddEntry(c.Request.Context(), req.Content, req.Keywords)
	if err != nil {
		var saved any
		if entry != nil {
			saved = entry
		}
		respondServiceError(c, err, "create entry", saved)
		return
	}
	if entry == nil {
		respondServiceError(c, diary.ErrStoreUninitialized, "create entry", nil)
		return
	}
	respondCreated(c, entry)
}

// UpdateKeywords replaces an entry's keywords
// PUT /api/entries/:id/keywords
func (ec *EntriesController) UpdateKeywords(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req KeywordsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	if err := ec.service.UpdateEntryKeywords(c.Request.Context(), id, req.Keywords); err != nil {
		respondServiceError(c, err, "update keywords", nil)
		return
	}
	respondSuccess(c, "keywords updated")
}

// GetSentences returns an entry split into taggable sentences
// GET /api/entries/:id/sentences
func (ec *EntriesController) GetSentences(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	sentences, err := ec.service.Sentences(id)
	if err != nil {
		respondServiceError(c, err, "get sentences", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"entry_id":  id,
		"sentences": sentences,
	})
}

// GetTags returns the tags of one entry
// GET /api/entries/:id/tags
func (ec *EntriesController) GetTags(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	tags, err := ec.service.TagsForEntry(id)
	if err != nil {
		respondInternalError(c, err, "get entry tags")
		return
	}
	c.JSON(http.StatusOK, tags)
}
