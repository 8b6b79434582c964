package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// TasksController handles background task endpoints.
type TasksController struct {
	queue TaskQueue
}

// NewTasksController creates a new TasksController.
func NewTasksController(queue TaskQueue) *TasksController {
	return &TasksController{queue: queue}
}

// RunSyncRequest is the optional body of POST /api/tasks/sync.
type RunSyncRequest struct {
	Reason string `json:"reason,omitempty" form:"reason"`
}

// EnqueueSync queues a background sync pass
// POST /api/tasks/sync
func (tc *TasksController) EnqueueSync(c *gin.Context) {
	var req RunSyncRequest
	if c.Request.ContentLength > 0 {
		_ = c.ShouldBindJSON(&req)
	}
	if req.Reason == "" {
		req.Reason = "api"
	}

	taskID, err := tc.queue.EnqueueSync(c.Request.Context(), req.Reason)
	if err != nil {
		respondInternalError(c, err, "enqueue sync")
		return
	}

	respondAccepted(c, "task enqueued", gin.H{
		"task_id": taskID,
		"type":    "sync",
	})
}

// GetTaskStatus returns the status of a specific task
// GET /api/tasks/:id
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	taskID := c.Param("id")
	if taskID == "" {
		respondBadRequest(c, "task ID is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.queue.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, err, "task status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     taskID,
		"status": status,
	})
}
