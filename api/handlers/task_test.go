package handlers

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquaman122/auto-report/pkg/logger"
	"github.com/aquaman122/auto-report/pkg/queue"
)

type stubStatusQueue struct {
	statuses  map[string]*queue.TaskStatus
	cancelled []string
	tasks     []*queue.Task
}

func (s *stubStatusQueue) Enqueue(_ context.Context, task *queue.Task) error {
	s.tasks = append(s.tasks, task)
	return nil
}

func (s *stubStatusQueue) GetTaskStatus(_ context.Context, taskID string) (*queue.TaskStatus, error) {
	status, ok := s.statuses[taskID]
	if !ok {
		return nil, fmt.Errorf("task %s not found", taskID)
	}
	return status, nil
}

func (s *stubStatusQueue) CancelTask(_ context.Context, taskID string) error {
	if _, ok := s.statuses[taskID]; !ok {
		return fmt.Errorf("task %s not found", taskID)
	}
	s.cancelled = append(s.cancelled, taskID)
	return nil
}

func (s *stubStatusQueue) SaveFinalStatus(context.Context, *queue.TaskStatus) error { return nil }
func (s *stubStatusQueue) Ping(context.Context) error                              { return nil }
func (s *stubStatusQueue) Close() error                                            { return nil }

func newTaskRouter(t *testing.T, q queue.Queue) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := NewTaskHandler(q, logger.NewTestLogger())
	r := gin.New()
	task := r.Group("/api/task")
	{
		task.GET("/:taskId", h.GetStatus)
		task.DELETE("/:taskId", h.Cancel)
	}
	return r
}

func TestTaskGetStatus(t *testing.T) {
	q := &stubStatusQueue{statuses: map[string]*queue.TaskStatus{
		"task-1": {TaskID: "task-1", Status: "processing", Progress: 50},
	}}
	r := newTaskRouter(t, q)

	w, env := doJSON(t, r, http.MethodGet, "/api/task/task-1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)

	data := env.Data.(map[string]interface{})
	assert.Equal(t, "task-1", data["taskId"])
	assert.Equal(t, "processing", data["status"])
	assert.Equal(t, float64(50), data["progress"])
}

func TestTaskGetStatus_NotFound(t *testing.T) {
	r := newTaskRouter(t, &stubStatusQueue{statuses: map[string]*queue.TaskStatus{}})

	w, env := doJSON(t, r, http.MethodGet, "/api/task/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "작업을 찾을 수 없습니다", env.Message)
}

func TestTaskCancel(t *testing.T) {
	q := &stubStatusQueue{statuses: map[string]*queue.TaskStatus{
		"task-1": {TaskID: "task-1", Status: "pending"},
	}}
	r := newTaskRouter(t, q)

	w, env := doJSON(t, r, http.MethodDelete, "/api/task/task-1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "작업이 취소되었습니다", env.Message)
	require.Len(t, q.cancelled, 1)
	assert.Equal(t, "task-1", q.cancelled[0])
}

func TestTaskCancel_NotFound(t *testing.T) {
	r := newTaskRouter(t, &stubStatusQueue{statuses: map[string]*queue.TaskStatus{}})

	w, env := doJSON(t, r, http.MethodDelete, "/api/task/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "작업 취소에 실패했습니다", env.Message)
}

func TestTask_QueueDisabled(t *testing.T) {
	r := newTaskRouter(t, nil)

	w, env := doJSON(t, r, http.MethodGet, "/api/task/task-1", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "게시 큐가 비활성화되어 있습니다", env.Message)
}
