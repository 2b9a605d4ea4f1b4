package handlers

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/aquaman122/auto-report/pkg/errors"
	"github.com/aquaman122/auto-report/pkg/logger"
	"github.com/aquaman122/auto-report/pkg/queue"
)

// TaskHandler exposes the publication task queue: upload responses carry
// a task_id that can be polled here while the worker publishes.
type TaskHandler struct {
	queue  queue.Queue
	logger logger.Logger
}

func NewTaskHandler(q queue.Queue, log logger.Logger) *TaskHandler {
	return &TaskHandler{queue: q, logger: log}
}

// GetStatus returns the stored status of one publication task.
func (h *TaskHandler) GetStatus(c *gin.Context) {
	if h.queue == nil {
		respondStatus(c, 503, "게시 큐가 비활성화되어 있습니다")
		return
	}

	taskID := c.Param("taskId")
	status, err := h.queue.GetTaskStatus(c.Request.Context(), taskID)
	if err != nil {
		respondError(c, apperrors.Wrap(apperrors.ErrNotFound, "task %s: %v", taskID, err), "작업을 찾을 수 없습니다")
		return
	}
	respondOK(c, "", status)
}

// Cancel removes a pending publication task from the queue.
func (h *TaskHandler) Cancel(c *gin.Context) {
	if h.queue == nil {
		respondStatus(c, 503, "게시 큐가 비활성화되어 있습니다")
		return
	}

	taskID := c.Param("taskId")
	if err := h.queue.CancelTask(c.Request.Context(), taskID); err != nil {
		respondError(c, apperrors.Wrap(apperrors.ErrNotFound, "task %s: %v", taskID, err), "작업 취소에 실패했습니다")
		return
	}

	h.logger.Info("Publication task cancelled", logger.String("task_id", taskID))
	respondOK(c, "작업이 취소되었습니다", nil)
}
