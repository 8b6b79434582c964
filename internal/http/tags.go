package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/diary/internal/diary"
)

type TagsController struct {
	service TagService
}

func NewTagsController(service TagService) *TagsController {
	return &TagsController{service: service}
}

// CreateTagRequest is the body of POST /api/tags.
type CreateTagRequest struct {
	EntryID       int64  `json:"entry_id" binding:"required"`
	SentenceIndex *int   `json:"sentence_index" binding:"required"`
	Tag           string `json:"tag"`
}

// CreateTag tags one sentence of an entry
// POST /api/tags
func (tc *TagsController) CreateTag(c *gin.Context) {
	var req CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "entry_id and sentence_index are required")
		return
	}

	tag, err := tc.service.AddTag(c.Request.Context(), req.EntryID, *req.SentenceIndex, req.Tag)
	if err != nil {
		var saved any
		if tag != nil {
			saved = tag
		}
		respondServiceError(c, err, "create tag", saved)
		return
	}
	if tag == nil {
		respondServiceError(c, diary.ErrStoreUninitialized, "create tag", nil)
		return
	}
	respondCreated(c, tag)
}

// DeleteTag removes a tag
// DELETE /api/tags/:id
func (tc *TagsController) DeleteTag(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := tc.service.DeleteTag(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "delete tag", nil)
		return
	}
	respondSuccess(c, "tag deleted")
}
