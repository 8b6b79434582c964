package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/diary/internal/settingsstore"
)

type ModeController struct {
	service  ModeService
	settings ModeSettings
}

// NewModeController creates a ModeController. settings may be nil, in which
// case mode changes last until restart.
func NewModeController(service ModeService, settings ModeSettings) *ModeController {
	return &ModeController{service: service, settings: settings}
}

// ModeRequest is the body of POST /api/mode.
type ModeRequest struct {
	ServerMode bool   `json:"server_mode"`
	Origin     string `json:"origin"`
}

// GetMode reports the effective mode
// GET /api/mode
func (mc *ModeController) GetMode(c *gin.Context) {
	c.JSON(http.StatusOK, mc.service.Mode())
}

// SetMode re-initializes the store in the requested mode. A server that
// cannot be reached is not an error: the response reports the fallback.
// POST /api/mode
func (mc *ModeController) SetMode(c *gin.Context) {
	var req ModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	if mc.settings != nil {
		cfg := settingsstore.ModeConfig{ServerMode: req.ServerMode, Origin: req.Origin}
		if err := mc.settings.SetModeConfig(cfg); err != nil {
			respondInternalError(c, err, "save mode")
			return
		}
	}

	mode, err := mc.service.Initialize(c.Request.Context(), req.ServerMode, req.Origin)
	if err != nil {
		respondServiceError(c, err, "initialize", nil)
		return
	}
	c.JSON(http.StatusOK, mode)
}
