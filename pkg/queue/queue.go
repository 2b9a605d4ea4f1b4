// Package queue wraps asynq for background publication work. The HTTP
// pipeline answers synchronously; wiki and webhook delivery run on the
// worker so a slow or flaky destination never delays the upload call.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/aquaman122/auto-report/config"
)

// Task types handled by the publication worker.
const (
	TaskTypePublishMeeting = "meeting:publish"
	TaskTypeArchiveCleanup = "archive:cleanup"
)

// Queue interface.
type Queue interface {
	Enqueue(ctx context.Context, task *Task) error
	GetTaskStatus(ctx context.Context, taskID string) (*TaskStatus, error)
	CancelTask(ctx context.Context, taskID string) error
	SaveFinalStatus(ctx context.Context, status *TaskStatus) error
	Ping(ctx context.Context) error
	Close() error
}

// PublishPayload is the body of a meeting:publish task.
type PublishPayload struct {
	MeetingID   int64  `json:"meetingId"`
	MinutesText string `json:"minutesText"`
	AudioName   string `json:"audioName,omitempty"`
}

// Task is the queued unit of work.
type Task struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"createdAt"`
}

// NewPublishTask builds a meeting:publish task with a fresh ID.
func NewPublishTask(payload *PublishPayload) (*Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal publish payload: %w", err)
	}
	return &Task{
		ID:        uuid.NewString(),
		Type:      TaskTypePublishMeeting,
		Payload:   data,
		CreatedAt: time.Now(),
	}, nil
}

// TaskStatus is the persisted task outcome.
type TaskStatus struct {
	TaskID     string    `json:"taskId"`
	Status     string    `json:"status"`
	Progress   float64   `json:"progress"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt,omitempty"`
}

// AsynqQueue implements Queue on asynq with redis-backed task status.
type AsynqQueue struct {
	client    *asynq.Client
	inspector *asynq.Inspector
	redis     *redis.Client
	cfg       *config.QueueConfig
}

func NewAsynqQueue(cfg *config.QueueConfig) (*AsynqQueue, error) {
	redisOpt := asynq.RedisClientOpt{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})

	return &AsynqQueue{
		client:    asynq.NewClient(redisOpt),
		inspector: asynq.NewInspector(redisOpt),
		redis:     redisClient,
		cfg:       cfg,
	}, nil
}

// Enqueue puts the task on the default queue.
func (q *AsynqQueue) Enqueue(ctx context.Context, task *Task) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	opts := []asynq.Option{
		asynq.MaxRetry(q.cfg.MaxRetries),
		asynq.Timeout(q.cfg.ProcessTimeout),
		asynq.TaskID(task.ID),
		asynq.Queue("default"),
	}

	t := asynq.NewTask(task.Type, payload, opts...)
	info, err := q.client.EnqueueContext(ctx, t)
	if err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}
	task.ID = info.ID

	return q.SaveFinalStatus(ctx, &TaskStatus{
		TaskID:    task.ID,
		Status:    "pending",
		StartedAt: time.Now(),
	})
}

// GetTaskStatus reads the saved status, falling back to the queue
// inspector for tasks that never wrote one.
func (q *AsynqQueue) GetTaskStatus(ctx context.Context, taskID string) (*TaskStatus, error) {
	key := fmt.Sprintf("task_status:%s", taskID)
	data, err := q.redis.Get(ctx, key).Bytes()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to get status from redis: %w", err)
	}

	if err == nil {
		var status TaskStatus
		if err := json.Unmarshal(data, &status); err != nil {
			return nil, fmt.Errorf("failed to unmarshal status: %w", err)
		}
		return &status, nil
	}

	info, err := q.inspector.GetTaskInfo("default", taskID)
	if err != nil {
		return nil, fmt.Errorf("task not found: %w", err)
	}
	return convertAsynqStatus(info), nil
}

// CancelTask removes a pending task from the queue.
func (q *AsynqQueue) CancelTask(ctx context.Context, taskID string) error {
	if err := q.inspector.DeleteTask("default", taskID); err != nil {
		return fmt.Errorf("failed to cancel task: %w", err)
	}
	return nil
}

// SaveFinalStatus persists the task status with a 24 hour TTL.
func (q *AsynqQueue) SaveFinalStatus(ctx context.Context, status *TaskStatus) error {
	key := fmt.Sprintf("task_status:%s", status.TaskID)
	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}
	if err := q.redis.Set(ctx, key, data, 24*time.Hour).Err(); err != nil {
		return fmt.Errorf("failed to save status: %w", err)
	}
	return nil
}

// Ping verifies the Redis connection backing the queue.
func (q *AsynqQueue) Ping(ctx context.Context) error {
	if err := q.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	return nil
}

func (q *AsynqQueue) Close() error {
	q.redis.Close()
	return q.client.Close()
}

func convertAsynqStatus(info *asynq.TaskInfo) *TaskStatus {
	status := &TaskStatus{
		TaskID:    info.ID,
		StartedAt: info.NextProcessAt,
	}

	switch info.State {
	case asynq.TaskStatePending:
		status.Status = "pending"
	case asynq.TaskStateActive:
		status.Status = "running"
		status.Progress = 0.5
	case asynq.TaskStateCompleted:
		status.Status = "completed"
		status.Progress = 1.0
		status.FinishedAt = info.CompletedAt
	case asynq.TaskStateRetry, asynq.TaskStateArchived:
		status.Status = "failed"
		status.Error = info.LastErr
	}

	return status
}
