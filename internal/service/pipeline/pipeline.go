// Package pipeline orchestrates the full processing chain: uploaded
// audio is transcribed, structured, narrated, rendered into documents
// and persisted, then handed to the publication queue.
package pipeline

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/aquaman122/auto-report/internal/agent/narrative"
	"github.com/aquaman122/auto-report/internal/agent/structurer"
	"github.com/aquaman122/auto-report/internal/agent/transcriber"
	"github.com/aquaman122/auto-report/internal/models"
	"github.com/aquaman122/auto-report/internal/renderer"
	"github.com/aquaman122/auto-report/internal/store"
	"github.com/aquaman122/auto-report/pkg/logger"
	"github.com/aquaman122/auto-report/pkg/queue"
	"github.com/aquaman122/auto-report/pkg/storage"
)

// UploadInput describes one saved upload ready for processing.
type UploadInput struct {
	FileName     string
	OriginalName string
	FilePath     string
	FileSize     int64
	MimeType     string
	Language     string
	Formats      []string
}

// Result is the outcome of one fully processed upload.
type Result struct {
	AudioFileID    int64
	MeetingID      int64
	Summary        string
	ActionItems    []string
	Participants   string
	ProcessingTime float64

	Documents      map[string]renderer.Artifact
	DocumentErrors map[string]error

	// PublishTaskID is set when a publication task was enqueued; it can
	// be polled or cancelled through the task endpoints.
	PublishTaskID string

	MinutesText string
	Structured  *models.StructuredMeeting
}

// BatchOutcome is the per-file result of a batch run. A failed file
// carries its error; the batch itself never fails.
type BatchOutcome struct {
	File           string  `json:"file"`
	Success        bool    `json:"success"`
	AudioFileID    int64   `json:"audio_file_id,omitempty"`
	MeetingID      int64   `json:"meeting_id,omitempty"`
	Summary        string  `json:"summary,omitempty"`
	ProcessingTime float64 `json:"processing_time,omitempty"`
	DocumentURL    string  `json:"document_url,omitempty"`
	Error          string  `json:"error,omitempty"`
}

type Service struct {
	transcriber transcriber.Transcriber
	structurer  structurer.Structurer
	narrative   *narrative.Generator
	renderer    *renderer.Renderer
	store       store.Store
	queue       queue.Queue     // nil when publication is disabled
	archive     storage.Storage // nil when archiving is disabled
	logger      logger.Logger
	language    string
	modelName   string
}

type Option func(*Service)

// WithQueue wires the publication queue.
func WithQueue(q queue.Queue) Option {
	return func(s *Service) { s.queue = q }
}

// WithArchive wires the artifact archive.
func WithArchive(a storage.Storage) Option {
	return func(s *Service) { s.archive = a }
}

func NewService(
	t transcriber.Transcriber,
	st structurer.Structurer,
	n *narrative.Generator,
	r *renderer.Renderer,
	db store.Store,
	log logger.Logger,
	language, modelName string,
	opts ...Option,
) *Service {
	s := &Service{
		transcriber: t,
		structurer:  st,
		narrative:   n,
		renderer:    r,
		store:       db,
		logger:      log,
		language:    language,
		modelName:   modelName,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProcessUpload runs the full chain for one saved upload. On failure
// the uploaded file is removed and the audio record is marked failed;
// the error is returned for the handler to map.
func (s *Service) ProcessUpload(ctx context.Context, input UploadInput) (*Result, error) {
	start := time.Now()

	audioFile := &models.AudioFile{
		FileName:     input.FileName,
		OriginalName: input.OriginalName,
		FilePath:     input.FilePath,
		FileSize:     input.FileSize,
		MimeType:     input.MimeType,
	}
	if err := s.store.SaveAudioFile(ctx, audioFile); err != nil {
		s.cleanupUpload(input.FilePath)
		return nil, err
	}

	s.logger.Info("Audio processing started",
		logger.Int64("audio_file_id", audioFile.ID),
		logger.String("file", input.OriginalName),
	)

	result, err := s.process(ctx, audioFile, input, start)
	if err != nil {
		s.cleanupUpload(input.FilePath)
		if statusErr := s.store.UpdateAudioFileStatus(ctx, audioFile.ID, models.AudioFailed, err.Error()); statusErr != nil {
			s.logger.Error("Failed to mark audio file as failed",
				logger.Int64("audio_file_id", audioFile.ID),
				logger.Error(statusErr),
			)
		}
		return nil, err
	}
	return result, nil
}

func (s *Service) process(ctx context.Context, audioFile *models.AudioFile, input UploadInput, start time.Time) (*Result, error) {
	if err := s.store.UpdateAudioFileStatus(ctx, audioFile.ID, models.AudioProcessing, ""); err != nil {
		return nil, err
	}

	language := input.Language
	if language == "" {
		language = s.language
	}

	transcription, err := s.transcriber.Transcribe(ctx, input.FilePath, language)
	if err != nil {
		return nil, err
	}

	structured, err := s.structurer.ExtractStructure(ctx, transcription.Text)
	if err != nil {
		// Keyword fallback keeps the pipeline alive when the completion
		// provider is down or returns garbage.
		s.logger.Warn("Structuring failed, using keyword fallback",
			logger.Int64("audio_file_id", audioFile.ID),
			logger.Error(err),
		)
		structured = structurer.Fallback(transcription.Text)
	}

	minutesText := s.narrative.Render(structured)

	meeting, err := s.store.SaveMeeting(ctx, structured, &audioFile.ID)
	if err != nil {
		return nil, err
	}

	processingTime := time.Since(start).Seconds()
	analysis := buildVoiceAnalysis(audioFile.ID, transcription, structured, s.modelName, processingTime)
	if err := s.store.SaveVoiceAnalysis(ctx, analysis); err != nil {
		s.logger.Error("Saving voice analysis failed",
			logger.Int64("audio_file_id", audioFile.ID),
			logger.Error(err),
		)
	}

	formats := renderer.NormalizeFormats(input.Formats)
	artifacts, renderErrs := s.renderer.Render(structured, minutesText, formats)
	if len(artifacts) == 0 && len(renderErrs) > 0 {
		for _, err := range renderErrs {
			return nil, err
		}
	}

	for _, artifact := range artifacts {
		doc := &models.GeneratedDocument{
			MeetingID:    meeting.ID,
			DocumentType: "meeting_minutes",
			FileName:     artifact.FileName,
			FilePath:     artifact.FilePath,
			FileFormat:   artifact.Format,
			TemplateUsed: "default",
		}
		if err := s.store.SaveGeneratedDocument(ctx, doc); err != nil {
			s.logger.Error("Saving document record failed",
				logger.Int64("meeting_id", meeting.ID),
				logger.String("format", artifact.Format),
				logger.Error(err),
			)
		}
	}

	s.archiveArtifacts(ctx, artifacts)

	if err := s.store.UpdateAudioFileStatus(ctx, audioFile.ID, models.AudioCompleted, ""); err != nil {
		return nil, err
	}

	taskID := s.enqueuePublish(ctx, meeting.ID, minutesText, input.OriginalName)

	s.logger.Info("Audio processing completed",
		logger.Int64("audio_file_id", audioFile.ID),
		logger.Int64("meeting_id", meeting.ID),
		logger.Float64("seconds", processingTime),
	)

	actionItems := make([]string, 0)
	for _, item := range structured.AllActionItems() {
		actionItems = append(actionItems, item.Task)
	}

	return &Result{
		AudioFileID:    audioFile.ID,
		MeetingID:      meeting.ID,
		Summary:        summaryText(structured),
		ActionItems:    actionItems,
		Participants:   participantsText(structured),
		ProcessingTime: processingTime,
		Documents:      artifacts,
		DocumentErrors: renderErrs,
		PublishTaskID:  taskID,
		MinutesText:    minutesText,
		Structured:     structured,
	}, nil
}

// ProcessBatch handles files one at a time. Each file gets its own
// outcome; one failure never aborts the rest. Batch runs render HTML
// only to keep turnaround short.
func (s *Service) ProcessBatch(ctx context.Context, inputs []UploadInput) []BatchOutcome {
	outcomes := make([]BatchOutcome, 0, len(inputs))

	for i, input := range inputs {
		s.logger.Info("Batch progress",
			logger.Int("current", i+1),
			logger.Int("total", len(inputs)),
			logger.String("file", input.OriginalName),
		)

		input.Formats = []string{renderer.FormatHTML}
		result, err := s.ProcessUpload(ctx, input)
		if err != nil {
			outcomes = append(outcomes, BatchOutcome{
				File:    input.OriginalName,
				Success: false,
				Error:   err.Error(),
			})
			continue
		}

		outcome := BatchOutcome{
			File:           input.OriginalName,
			Success:        true,
			AudioFileID:    result.AudioFileID,
			MeetingID:      result.MeetingID,
			Summary:        firstDecision(result.Structured),
			ProcessingTime: result.ProcessingTime,
		}
		if artifact, ok := result.Documents[renderer.FormatHTML]; ok {
			outcome.DocumentURL = artifact.URL
		}
		outcomes = append(outcomes, outcome)
	}

	return outcomes
}

// TranscribeOnly runs STT without the rest of the chain. The uploaded
// file is removed afterwards in both outcomes.
func (s *Service) TranscribeOnly(ctx context.Context, audioPath, language string) (*transcriber.Transcription, error) {
	defer s.cleanupUpload(audioPath)

	if language == "" {
		language = s.language
	}
	return s.transcriber.Transcribe(ctx, audioPath, language)
}

// enqueuePublish hands the meeting to the publication queue and returns
// the task ID, or "" when the queue is disabled or enqueueing failed.
func (s *Service) enqueuePublish(ctx context.Context, meetingID int64, minutesText, audioName string) string {
	if s.queue == nil {
		return ""
	}
	task, err := queue.NewPublishTask(&queue.PublishPayload{
		MeetingID:   meetingID,
		MinutesText: minutesText,
		AudioName:   audioName,
	})
	if err != nil {
		s.logger.Error("Building publish task failed", logger.Error(err))
		return ""
	}
	if err := s.queue.Enqueue(ctx, task); err != nil {
		s.logger.Error("Enqueueing publish task failed",
			logger.Int64("meeting_id", meetingID),
			logger.Error(err),
		)
		return ""
	}
	s.logger.Info("Publication enqueued",
		logger.Int64("meeting_id", meetingID),
		logger.String("task_id", task.ID),
	)
	return task.ID
}

func (s *Service) archiveArtifacts(ctx context.Context, artifacts map[string]renderer.Artifact) {
	if s.archive == nil {
		return
	}
	for _, artifact := range artifacts {
		f, err := os.Open(artifact.FilePath)
		if err != nil {
			s.logger.Error("Opening artifact for archive failed",
				logger.String("file", artifact.FileName),
				logger.Error(err),
			)
			continue
		}
		if _, err := s.archive.Store(ctx, f, artifact.FileName); err != nil {
			s.logger.Error("Archiving artifact failed",
				logger.String("file", artifact.FileName),
				logger.Error(err),
			)
		}
		f.Close()
	}
}

func (s *Service) cleanupUpload(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.logger.Error("Removing upload failed",
			logger.String("path", path),
			logger.Error(err),
		)
	}
}

func buildVoiceAnalysis(audioFileID int64, t *transcriber.Transcription, m *models.StructuredMeeting, modelName string, seconds float64) *models.VoiceAnalysis {
	var topics []string
	for _, agenda := range m.Agendas {
		topics = append(topics, agenda.KeyPoints...)
	}
	if len(topics) > 10 {
		topics = topics[:10]
	}

	mainSpeaker := ""
	for _, p := range m.Participants {
		if p.SpeakingFrequency == models.FrequencyHigh {
			mainSpeaker = p.Name
			break
		}
	}
	if mainSpeaker == "" && len(m.Participants) > 0 {
		mainSpeaker = m.Participants[0].Name
	}

	return &models.VoiceAnalysis{
		AudioFileID:           audioFileID,
		OriginalText:          t.Text,
		SummaryText:           strings.Join(m.KeyOutcomes.MainDecisions, "; "),
		KeyTopics:             topics,
		OverallSentiment:      orValue(m.KeyOutcomes.OverallSentiment, "neutral"),
		MeetingEffectiveness:  orValue(m.KeyOutcomes.MeetingEffectiveness, "medium"),
		TotalSpeakers:         len(m.Participants),
		MainSpeaker:           mainSpeaker,
		ConfidenceScore:       m.AnalysisMetadata.ConfidenceScore,
		ModelVersion:          modelName,
		ProcessingTimeSeconds: seconds,
	}
}

func summaryText(m *models.StructuredMeeting) string {
	if len(m.KeyOutcomes.MainDecisions) == 0 {
		return "요약 없음"
	}
	return strings.Join(m.KeyOutcomes.MainDecisions, "; ")
}

func participantsText(m *models.StructuredMeeting) string {
	if len(m.Participants) == 0 {
		return "참석자 없음"
	}
	return m.ParticipantNames()
}

func firstDecision(m *models.StructuredMeeting) string {
	if m == nil || len(m.KeyOutcomes.MainDecisions) == 0 {
		return "요약 없음"
	}
	return m.KeyOutcomes.MainDecisions[0]
}

func orValue(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
