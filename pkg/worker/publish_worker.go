package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/aquaman122/auto-report/internal/models"
	"github.com/aquaman122/auto-report/internal/publisher"
	"github.com/aquaman122/auto-report/internal/store"
	"github.com/aquaman122/auto-report/pkg/logger"
	"github.com/aquaman122/auto-report/pkg/queue"
	"github.com/aquaman122/auto-report/pkg/storage"
)

// PublishWorker consumes meeting:publish tasks: it pushes the finished
// minutes to the wiki and notifies the n8n webhook. It also handles
// periodic archive cleanup tasks.
type PublishWorker struct {
	BaseWorker
	store     store.Store
	wiki      *publisher.WikiPublisher
	notifier  *publisher.Notifier
	statuses  queue.Queue
	archive   storage.Storage // nil when archiving is disabled
	retainFor time.Duration
}

func NewPublishWorker(
	cfg *Config,
	db store.Store,
	wiki *publisher.WikiPublisher,
	notifier *publisher.Notifier,
	statuses queue.Queue,
	archive storage.Storage,
	retainFor time.Duration,
	log logger.Logger,
) (*PublishWorker, error) {
	server := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr, DB: cfg.RedisDB},
		asynq.Config{
			Concurrency: cfg.Concurrency,
			Queues:      cfg.Queues,
			RetryDelayFunc: func(n int, err error, task *asynq.Task) time.Duration {
				return time.Duration(n) * time.Minute
			},
		},
	)

	w := &PublishWorker{
		BaseWorker: BaseWorker{
			server:   server,
			mux:      asynq.NewServeMux(),
			logger:   log,
			stopChan: make(chan struct{}),
		},
		store:     db,
		wiki:      wiki,
		notifier:  notifier,
		statuses:  statuses,
		archive:   archive,
		retainFor: retainFor,
	}

	w.registerHandlers()
	return w, nil
}

func (w *PublishWorker) registerHandlers() {
	w.mux.HandleFunc(queue.TaskTypePublishMeeting, w.handlePublish)
	w.mux.HandleFunc(queue.TaskTypeArchiveCleanup, w.handleCleanup)
}

func (w *PublishWorker) handlePublish(ctx context.Context, t *asynq.Task) error {
	var task queue.Task
	if err := json.Unmarshal(t.Payload(), &task); err != nil {
		w.logger.Error("Failed to unmarshal task",
			logger.Error(err),
			logger.String("payload", string(t.Payload())),
		)
		return fmt.Errorf("failed to unmarshal task: %w", err)
	}

	var payload queue.PublishPayload
	if err := json.Unmarshal(task.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal publish payload: %w", err)
	}

	w.logger.Info("Publishing meeting",
		logger.String("taskId", task.ID),
		logger.Int64("meeting_id", payload.MeetingID),
	)
	w.saveStatus(ctx, task.ID, "running", 0.5, "")

	meeting, err := w.store.GetMeetingByID(ctx, payload.MeetingID)
	if err != nil {
		w.saveStatus(ctx, task.ID, "failed", 0, err.Error())
		return err
	}

	if w.wiki != nil && w.wiki.Enabled() {
		page, err := w.wiki.Publish(ctx, meeting, payload.MinutesText)
		if err != nil {
			w.saveStatus(ctx, task.ID, "failed", 0.5, err.Error())
			return err
		}
		w.logger.Info("Wiki publication done",
			logger.Int64("meeting_id", meeting.ID),
			logger.String("page", page.URL),
		)
	}

	if w.notifier != nil && w.notifier.Enabled() {
		// Webhook delivery is best effort: a dead n8n endpoint must not
		// retry the whole task and recreate wiki pages.
		result := w.notifier.Notify(ctx, buildReportPayload(meeting, &payload))
		if !result.Success {
			w.logger.Warn("Webhook delivery gave up",
				logger.Int64("meeting_id", meeting.ID),
				logger.Int("attempts", result.Attempts),
				logger.String("error", result.Error),
			)
		}
	}

	w.saveStatus(ctx, task.ID, "completed", 1.0, "")
	return nil
}

func (w *PublishWorker) handleCleanup(ctx context.Context, _ *asynq.Task) error {
	if w.archive == nil {
		return nil
	}
	threshold := time.Now().Add(-w.retainFor)
	w.logger.Info("Archive cleanup started", logger.Time("threshold", threshold))
	return w.archive.CleanupBefore(ctx, threshold)
}

func (w *PublishWorker) saveStatus(ctx context.Context, taskID, status string, progress float64, errMsg string) {
	if w.statuses == nil {
		return
	}
	s := &queue.TaskStatus{
		TaskID:    taskID,
		Status:    status,
		Progress:  progress,
		Error:     errMsg,
		StartedAt: time.Now(),
	}
	if status == "completed" || status == "failed" {
		s.FinishedAt = time.Now()
	}
	if err := w.statuses.SaveFinalStatus(ctx, s); err != nil {
		w.logger.Error("Failed to save task status", logger.Error(err))
	}
}

func buildReportPayload(meeting *models.MeetingDetail, payload *queue.PublishPayload) *publisher.ReportPayload {
	names := make([]string, 0, len(meeting.Participants))
	for _, p := range meeting.Participants {
		names = append(names, p.Name)
	}

	report := &publisher.ReportPayload{
		Title:         meeting.Title,
		Date:          meeting.MeetingDate,
		Place:         meeting.Location,
		Participants:  names,
		AudioFileName: payload.AudioName,
		Content:       payload.MinutesText,
		Metadata: publisher.ReportMetadata{
			GeneratedAt:   time.Now().UTC(),
			SystemVersion: "1.0",
		},
	}

	if meeting.Analysis != nil {
		report.Transcription = meeting.Analysis.OriginalText
		report.Summary = meeting.Analysis.SummaryText
		report.Metadata.AudioDuration = meeting.Analysis.ProcessingTimeSeconds
	}
	if meeting.AudioFile != nil {
		report.Metadata.AudioDuration = meeting.AudioFile.DurationSeconds
	}

	structured := &publisher.ReportStructuredData{
		MeetingType: meeting.MeetingType,
	}
	for _, agenda := range meeting.Agendas {
		structured.MainTopics = append(structured.MainTopics, agenda.Title)
		if agenda.Decision != "" {
			structured.Decisions = append(structured.Decisions, agenda.Decision)
		}
		for _, item := range agenda.ActionItems {
			structured.ActionItems = append(structured.ActionItems, item.Task)
		}
	}
	report.StructuredData = structured

	return report
}

func (w *PublishWorker) Start(ctx context.Context) error {
	go func() {
		if err := w.server.Run(w.mux); err != nil {
			w.logger.Error("Worker server stopped", logger.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		w.Stop()
	}()

	return nil
}
