package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/diary/internal/database"
	"github.com/mrlokans/diary/internal/diary"
)

const (
	healthHealthy   = "healthy"
	healthUnhealthy = "unhealthy"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

// HealthController reports whether the settings database answers and which
// store the diary is running on. Only a database failure is unhealthy.
type HealthController struct {
	db      *database.Database
	modes   ModeService
	version string
}

func NewHealthController(db *database.Database, modes ModeService, version string) *HealthController {
	return &HealthController{db: db, modes: modes, version: version}
}

// Status returns the health report
// GET /health
func (h *HealthController) Status(c *gin.Context) {
	resp := HealthResponse{
		Status:  healthHealthy,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  map[string]string{"database": h.databaseCheck()},
	}
	if h.modes != nil {
		resp.Checks["store"] = describeMode(h.modes.Mode())
	}

	code := http.StatusOK
	if db := resp.Checks["database"]; db != "ok" && db != "not configured" {
		resp.Status = healthUnhealthy
		code = http.StatusServiceUnavailable
	}
	c.IndentedJSON(code, resp)
}

func (h *HealthController) databaseCheck() string {
	if h.db == nil {
		return "not configured"
	}
	sqlDB, err := h.db.DB.DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}

func describeMode(mode diary.Mode) string {
	switch {
	case !mode.Initialized:
		return "not initialized"
	case mode.ServerMode:
		return "server mode"
	case mode.Fallback:
		return "local mode (server unreachable)"
	default:
		return "local mode"
	}
}
