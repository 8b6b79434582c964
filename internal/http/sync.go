package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type SyncController struct {
	runner   SyncRunner
	settings SyncSettings
	modes    ModeService
}

func NewSyncController(runner SyncRunner, settings SyncSettings, modes ModeService) *SyncController {
	return &SyncController{runner: runner, settings: settings, modes: modes}
}

// RunSync runs one sync pass and returns its report
// POST /api/sync
func (sc *SyncController) RunSync(c *gin.Context) {
	report, err := sc.runner.RunOnce(c.Request.Context())
	if err != nil {
		var partial any
		if report != nil {
			partial = report
		}
		respondServiceError(c, err, "sync", partial)
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetStatus reports sync configuration and the outcome of the last pass
// GET /api/sync/status
func (sc *SyncController) GetStatus(c *gin.Context) {
	response := gin.H{
		"mode":    sc.modes.Mode(),
		"syncing": sc.runner.IsSyncing(),
	}
	if sc.settings != nil {
		response["config"] = sc.settings.GetSyncConfigInfo()
		response["last"] = sc.settings.GetSyncStatus()
	}
	c.JSON(http.StatusOK, response)
}
