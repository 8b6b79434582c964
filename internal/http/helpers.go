package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/mrlokans/diary/internal/diary"
	"github.com/mrlokans/diary/internal/persistence"
	"github.com/mrlokans/diary/internal/remote"
	"github.com/mrlokans/diary/internal/scheduler"
	"github.com/mrlokans/diary/internal/store"
	"github.com/mrlokans/diary/internal/utils"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // additional context, e.g. the locally saved record
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Error codes returned in ErrorResponse.Code
const (
	CodeValidation        = "validation"
	CodeNotFound          = "not_found"
	CodeInvalidDatabase   = "invalid_database"
	CodeOriginRequired    = "origin_required"
	CodeUninitialized     = "uninitialized"
	CodeSyncInProgress    = "sync_in_progress"
	CodeRemoteUnavailable = "remote_unavailable"
	CodeRemoteRejected    = "remote_rejected"
)

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message, Code: CodeValidation})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.WithError(err).WithField("context", context).Error("Internal error")
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// errorStatus maps a core error to an HTTP status and error code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, diary.ErrValidation):
		return http.StatusBadRequest, CodeValidation
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, persistence.ErrInvalidDatabase),
		errors.Is(err, persistence.ErrNoFile),
		errors.Is(err, utils.ErrUnsupportedFileType),
		errors.Is(err, utils.ErrFileTooLarge),
		errors.Is(err, utils.ErrEmptyFile):
		return http.StatusUnprocessableEntity, CodeInvalidDatabase
	case errors.Is(err, diary.ErrOriginRequired):
		return http.StatusConflict, CodeOriginRequired
	case errors.Is(err, diary.ErrStoreUninitialized):
		return http.StatusConflict, CodeUninitialized
	case errors.Is(err, scheduler.ErrSyncInProgress):
		return http.StatusConflict, CodeSyncInProgress
	case errors.Is(err, remote.ErrRemoteUnavailable):
		return http.StatusServiceUnavailable, CodeRemoteUnavailable
	case errors.Is(err, remote.ErrRemoteRejected):
		return http.StatusBadGateway, CodeRemoteRejected
	}
	return http.StatusInternalServerError, ""
}

// respondServiceError sends the status matching err. details carries data
// that was committed locally before the failure.
func respondServiceError(c *gin.Context, err error, context string, details any) {
	status, code := errorStatus(err)
	if status == http.StatusInternalServerError {
		respondInternalError(c, err, context)
		return
	}
	if status >= http.StatusInternalServerError {
		log.WithError(err).WithField("context", context).Warn("Remote call failed")
	}
	c.JSON(status, ErrorResponse{Error: err.Error(), Code: code, Details: details})
}

// --- Success Response Helpers ---

// respondSuccess sends a 200 OK response with a message.
func respondSuccess(c *gin.Context, message string) {
	c.JSON(http.StatusOK, SuccessResponse{Message: message})
}

// respondCreated sends a 201 Created response with data.
func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// respondAccepted sends a 202 Accepted response (for async operations).
func respondAccepted(c *gin.Context, message string, data any) {
	c.JSON(http.StatusAccepted, SuccessResponse{Message: message, Data: data})
}

// --- Parameter Parsing ---

// parseIDParam extracts and validates a positive integer ID from URL parameters.
// Returns the parsed ID or responds with a 400 error and returns 0, false.
func parseIDParam(c *gin.Context, paramName string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(paramName), 10, 64)
	if err != nil || id <= 0 {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return id, true
}
