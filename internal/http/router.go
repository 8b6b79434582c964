package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Optional dependencies left nil in cfg disable their routes.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	var modes ModeService
	if cfg.Service != nil {
		modes = cfg.Service
	}

	health := NewHealthController(cfg.Database, modes, cfg.Version)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	if cfg.Service == nil {
		return router
	}

	api := router.Group("/api")

	var modeSettings ModeSettings
	if cfg.Settings != nil {
		modeSettings = cfg.Settings
	}
	modeController := NewModeController(cfg.Service, modeSettings)
	api.GET("/mode", modeController.GetMode)
	api.POST("/mode", modeController.SetMode)

	entries := NewEntriesController(cfg.Service)
	api.GET("/entries", entries.ListEntries)
	api.POST("/entries", entries.CreateEntry)
	api.PUT("/entries/:id/keywords", entries.UpdateKeywords)
	api.GET("/entries/:id/sentences", entries.GetSentences)
	api.GET("/entries/:id/tags", entries.GetTags)

	tags := NewTagsController(cfg.Service)
	api.POST("/tags", tags.CreateTag)
	api.DELETE("/tags/:id", tags.DeleteTag)

	databaseController := NewDatabaseController(cfg.Service)
	api.GET("/database/export", databaseController.Export)
	api.POST("/database/import", databaseController.Import)

	if cfg.Scheduler != nil {
		var syncSettings SyncSettings
		if cfg.Settings != nil {
			syncSettings = cfg.Settings
		}
		syncController := NewSyncController(cfg.Scheduler, syncSettings, cfg.Service)
		api.POST("/sync", syncController.RunSync)
		api.GET("/sync/status", syncController.GetStatus)
	}

	if cfg.TaskClient != nil {
		tasksController := NewTasksController(cfg.TaskClient)
		api.POST("/tasks/sync", tasksController.EnqueueSync)
		api.GET("/tasks/:id", tasksController.GetTaskStatus)
	}

	return router
}
