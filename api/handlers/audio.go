package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aquaman122/auto-report/internal/models"
	"github.com/aquaman122/auto-report/internal/service/pipeline"
	"github.com/aquaman122/auto-report/internal/store"
	"github.com/aquaman122/auto-report/internal/utils/validator"
	apperrors "github.com/aquaman122/auto-report/pkg/errors"
	"github.com/aquaman122/auto-report/pkg/logger"
)

type AudioHandler struct {
	pipeline  *pipeline.Service
	store     store.Store
	validator *validator.AudioValidator
	uploadDir string
	logger    logger.Logger
}

func NewAudioHandler(p *pipeline.Service, db store.Store, v *validator.AudioValidator, uploadDir string, log logger.Logger) *AudioHandler {
	return &AudioHandler{
		pipeline:  p,
		store:     db,
		validator: v,
		uploadDir: uploadDir,
		logger:    log,
	}
}

// Upload receives one audio file and runs the full processing chain
// before answering.
func (h *AudioHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("audioFile")
	if err != nil {
		respondStatus(c, 400, "오디오 파일이 필요합니다")
		return
	}

	if err := h.validator.ValidateFile(header); err != nil {
		respondError(c, err, "유효하지 않은 파일입니다")
		return
	}

	input, err := h.saveUpload(header)
	if err != nil {
		respondError(c, err, "파일 저장에 실패했습니다")
		return
	}
	input.Language = c.PostForm("language")
	if format := c.PostForm("format"); format != "" {
		input.Formats = []string{format}
	}

	result, err := h.pipeline.ProcessUpload(c.Request.Context(), *input)
	if err != nil {
		respondError(c, err, "음성 파일 처리 중 오류가 발생했습니다")
		return
	}

	data := gin.H{
		"audio_file_id":   result.AudioFileID,
		"meeting_id":      result.MeetingID,
		"summary":         result.Summary,
		"action_items":    result.ActionItems,
		"participants":    result.Participants,
		"processing_time": result.ProcessingTime,
		"documents":       result.Documents,
		"urls": gin.H{
			"meeting_detail": fmt.Sprintf("/api/meeting/%d", result.MeetingID),
			"audio_file":     "/uploads/" + input.FileName,
		},
	}
	if result.PublishTaskID != "" {
		data["task_id"] = result.PublishTaskID
		data["task_status_url"] = "/api/task/" + result.PublishTaskID
	}
	respondOK(c, "음성 파일 처리가 완료되었습니다", data)
}

// Batch processes up to the configured file count sequentially, one
// outcome per file.
func (h *AudioHandler) Batch(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		respondStatus(c, 400, "최소 1개의 오디오 파일이 필요합니다")
		return
	}
	headers := form.File["audioFiles"]
	if len(headers) == 0 {
		respondStatus(c, 400, "최소 1개의 오디오 파일이 필요합니다")
		return
	}

	if err := h.validator.ValidateBatch(headers); err != nil {
		respondError(c, err, "유효하지 않은 파일입니다")
		return
	}

	language := c.PostForm("language")
	inputs := make([]pipeline.UploadInput, 0, len(headers))
	outcomes := make([]pipeline.BatchOutcome, 0, len(headers))
	for _, header := range headers {
		input, err := h.saveUpload(header)
		if err != nil {
			outcomes = append(outcomes, pipeline.BatchOutcome{
				File:    header.Filename,
				Success: false,
				Error:   err.Error(),
			})
			continue
		}
		input.Language = language
		inputs = append(inputs, *input)
	}

	outcomes = append(outcomes, h.pipeline.ProcessBatch(c.Request.Context(), inputs)...)

	successCount := 0
	for _, outcome := range outcomes {
		if outcome.Success {
			successCount++
		}
	}
	failCount := len(outcomes) - successCount

	respondOK(c,
		fmt.Sprintf("배치 처리 완료: 성공 %d개, 실패 %d개", successCount, failCount),
		gin.H{
			"results": outcomes,
			"summary": gin.H{
				"total":        len(headers),
				"successful":   successCount,
				"failed":       failCount,
				"success_rate": successCount * 100 / len(headers),
			},
		},
	)
}

// Transcribe runs STT only; nothing is persisted and the upload is
// removed afterwards.
func (h *AudioHandler) Transcribe(c *gin.Context) {
	header, err := c.FormFile("audioFile")
	if err != nil {
		respondStatus(c, 400, "오디오 파일이 필요합니다")
		return
	}

	if err := h.validator.ValidateFile(header); err != nil {
		respondError(c, err, "유효하지 않은 파일입니다")
		return
	}

	input, err := h.saveUpload(header)
	if err != nil {
		respondError(c, err, "파일 저장에 실패했습니다")
		return
	}

	result, err := h.pipeline.TranscribeOnly(c.Request.Context(), input.FilePath, c.PostForm("language"))
	if err != nil {
		respondError(c, err, "음성 변환 중 오류가 발생했습니다")
		return
	}

	respondOK(c, "음성 변환이 완료되었습니다", gin.H{
		"text":       result.Text,
		"duration":   result.Duration,
		"language":   result.Language,
		"word_count": result.WordCount(),
	})
}

// ListFiles returns processed meetings with their audio records.
func (h *AudioHandler) ListFiles(c *gin.Context) {
	limit := queryInt(c, "limit", 20)
	offset := queryInt(c, "offset", 0)

	meetings, err := h.store.ListMeetings(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err, "파일 목록 조회에 실패했습니다")
		return
	}

	respondOK(c, "", gin.H{
		"files": meetings,
		"pagination": gin.H{
			"limit":  limit,
			"offset": offset,
			"count":  len(meetings),
		},
	})
}

// GetFile returns one meeting with its audio record.
func (h *AudioHandler) GetFile(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, err, "유효하지 않은 ID입니다")
		return
	}

	meeting, err := h.store.GetMeetingByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "파일 정보 조회에 실패했습니다")
		return
	}

	respondOK(c, "", meeting)
}

// GetStatus reports the audio processing state with a coarse progress
// percentage.
func (h *AudioHandler) GetStatus(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, err, "유효하지 않은 ID입니다")
		return
	}

	meeting, err := h.store.GetMeetingByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "처리 상태 조회에 실패했습니다")
		return
	}

	status := models.AudioStatus("unknown")
	data := gin.H{
		"id":       meeting.ID,
		"status":   status,
		"progress": 0,
	}
	if meeting.AudioFile != nil {
		status = meeting.AudioFile.Status
		data["status"] = status
		data["progress"] = status.Progress()
		data["uploaded_at"] = meeting.AudioFile.UploadedAt
		data["processed_at"] = meeting.AudioFile.ProcessedAt
		if meeting.AudioFile.ErrorMessage != "" {
			data["error_message"] = meeting.AudioFile.ErrorMessage
		}
	}

	respondOK(c, "", data)
}

// GetStats returns processing statistics.
func (h *AudioHandler) GetStats(c *gin.Context) {
	stats, err := h.store.GetStatistics(c.Request.Context())
	if err != nil {
		respondError(c, err, "통계 조회에 실패했습니다")
		return
	}
	respondOK(c, "", stats)
}

// saveUpload writes the multipart file into the upload directory under
// a fresh unique name, keeping the original extension.
func (h *AudioHandler) saveUpload(header *multipart.FileHeader) (*pipeline.UploadInput, error) {
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUpload, "create upload dir: %v", err)
	}

	src, err := header.Open()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUpload, "open upload: %v", err)
	}
	defer src.Close()

	fileName := uuid.NewString() + filepath.Ext(header.Filename)
	path := filepath.Join(h.uploadDir, fileName)

	dst, err := os.Create(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUpload, "create upload file: %v", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return nil, apperrors.Wrap(apperrors.ErrUpload, "write upload file: %v", err)
	}

	return &pipeline.UploadInput{
		FileName:     fileName,
		OriginalName: header.Filename,
		FilePath:     path,
		FileSize:     header.Size,
		MimeType:     header.Header.Get("Content-Type"),
	}, nil
}

func queryInt(c *gin.Context, key string, fallback int) int {
	if v, err := strconv.Atoi(c.Query(key)); err == nil && v >= 0 {
		return v
	}
	return fallback
}

func paramID(c *gin.Context, key string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(key), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.Wrap(apperrors.ErrValidation, "invalid id %q", c.Param(key))
	}
	return id, nil
}
