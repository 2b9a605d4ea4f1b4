package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/aquaman122/auto-report/internal/agent/narrative"
	"github.com/aquaman122/auto-report/internal/models"
	"github.com/aquaman122/auto-report/internal/renderer"
	"github.com/aquaman122/auto-report/internal/store"
	apperrors "github.com/aquaman122/auto-report/pkg/errors"
	"github.com/aquaman122/auto-report/pkg/logger"
	"github.com/aquaman122/auto-report/pkg/storage"
)

type DocumentHandler struct {
	store      store.Store
	narrative  *narrative.Generator
	renderer   *renderer.Renderer
	archive    storage.Storage
	summaryDir string
	logger     logger.Logger
}

func NewDocumentHandler(db store.Store, n *narrative.Generator, r *renderer.Renderer, archive storage.Storage, summaryDir string, log logger.Logger) *DocumentHandler {
	return &DocumentHandler{
		store:      db,
		narrative:  n,
		renderer:   r,
		archive:    archive,
		summaryDir: summaryDir,
		logger:     log,
	}
}

type generateRequest struct {
	MeetingID int64  `json:"meeting_id"`
	Format    string `json:"format"`
}

// Generate re-renders documents for a stored meeting.
func (h *DocumentHandler) Generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.MeetingID == 0 {
		respondStatus(c, 400, "회의 ID가 필요합니다")
		return
	}

	meeting, err := h.store.GetMeetingByID(c.Request.Context(), req.MeetingID)
	if err != nil {
		respondError(c, err, "회의를 찾을 수 없습니다")
		return
	}

	structured := reconstructStructured(meeting)
	minutesText := h.narrative.Render(structured)

	formats := renderer.NormalizeFormats(formatList(req.Format))
	artifacts, renderErrs := h.renderer.Render(structured, minutesText, formats)
	if len(artifacts) == 0 && len(renderErrs) > 0 {
		for _, err := range renderErrs {
			respondError(c, err, "문서 생성에 실패했습니다")
			return
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
		if err := h.store.SaveGeneratedDocument(c.Request.Context(), doc); err != nil {
			h.logger.Error("Saving document record failed",
				logger.Int64("meeting_id", meeting.ID),
				logger.String("format", artifact.Format),
				logger.Error(err),
			)
		}
	}

	respondOK(c, "문서가 생성되었습니다", gin.H{
		"meeting_id": meeting.ID,
		"documents":  artifacts,
	})
}

type documentEntry struct {
	FileName string `json:"fileName"`
	Format   string `json:"format"`
	Size     int64  `json:"size"`
	URL      string `json:"url"`
	Modified string `json:"modified"`
}

// List returns the rendered documents on disk, newest first.
func (h *DocumentHandler) List(c *gin.Context) {
	entries, err := os.ReadDir(h.summaryDir)
	if err != nil {
		if os.IsNotExist(err) {
			respondOK(c, "", gin.H{"documents": []documentEntry{}, "count": 0})
			return
		}
		respondError(c, err, "문서 목록 조회에 실패했습니다")
		return
	}

	docs := make([]documentEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		docs = append(docs, documentEntry{
			FileName: entry.Name(),
			Format:   strings.TrimPrefix(filepath.Ext(entry.Name()), "."),
			Size:     info.Size(),
			URL:      "/summaries/" + entry.Name(),
			Modified: info.ModTime().Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	respondOK(c, "", gin.H{"documents": docs, "count": len(docs)})
}

// Download streams a rendered document as an attachment. Files pruned
// from the summaries directory are served from the archive when one is
// configured.
func (h *DocumentHandler) Download(c *gin.Context) {
	path, fileName, err := h.resolveFile(c.Param("fileName"))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) && h.serveArchived(c, c.Param("fileName")) {
			return
		}
		respondError(c, err, "파일을 찾을 수 없습니다")
		return
	}

	c.Header("Content-Type", contentTypeFor(fileName))
	c.FileAttachment(path, fileName)
}

// serveArchived streams an archived copy of the file, reporting whether
// it handled the request.
func (h *DocumentHandler) serveArchived(c *gin.Context, fileName string) bool {
	if h.archive == nil {
		return false
	}

	rc, err := h.archive.Get(c.Request.Context(), fileName)
	if err != nil {
		return false
	}
	defer rc.Close()

	c.Header("Content-Type", contentTypeFor(fileName))
	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		h.logger.Error("Streaming archived document failed",
			logger.String("file", fileName),
			logger.Error(err),
		)
	}
	return true
}

// Preview renders html inline and json parsed; other formats fall back
// to attachment download.
func (h *DocumentHandler) Preview(c *gin.Context) {
	path, fileName, err := h.resolveFile(c.Param("fileName"))
	if err != nil {
		respondError(c, err, "파일을 찾을 수 없습니다")
		return
	}

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".html":
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.File(path)
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			respondError(c, apperrors.Wrap(apperrors.ErrRender, "read %s: %v", fileName, err), "문서 미리보기에 실패했습니다")
			return
		}
		var parsed json.RawMessage
		if err := json.Unmarshal(data, &parsed); err != nil {
			respondError(c, apperrors.Wrap(apperrors.ErrRender, "parse %s: %v", fileName, err), "문서 미리보기에 실패했습니다")
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", parsed)
	default:
		c.Header("Content-Type", contentTypeFor(fileName))
		c.FileAttachment(path, fileName)
	}
}

// Delete removes a rendered document from disk.
func (h *DocumentHandler) Delete(c *gin.Context) {
	path, _, err := h.resolveFile(c.Param("fileName"))
	if err != nil {
		respondError(c, err, "파일을 찾을 수 없습니다")
		return
	}

	if err := os.Remove(path); err != nil {
		respondError(c, apperrors.Wrap(apperrors.ErrRender, "delete: %v", err), "문서 삭제에 실패했습니다")
		return
	}
	respondOK(c, "문서가 삭제되었습니다", nil)
}

// Templates returns the fixed template descriptor list.
func (h *DocumentHandler) Templates(c *gin.Context) {
	templates := []gin.H{
		{
			"id":          "default",
			"name":        "기본 회의록",
			"description": "표준 한국식 회의록 형식",
			"formats":     []string{"html", "docx", "json"},
		},
		{
			"id":          "executive",
			"name":        "임원 회의록",
			"description": "임원진 회의용 간결한 형식",
			"formats":     []string{"html", "docx"},
		},
		{
			"id":          "technical",
			"name":        "기술 회의록",
			"description": "개발팀용 상세 기술 회의록",
			"formats":     []string{"html", "json"},
		},
	}
	respondOK(c, "", templates)
}

// resolveFile maps a requested file name into the summaries directory,
// rejecting anything that would escape it.
func (h *DocumentHandler) resolveFile(name string) (path, fileName string, err error) {
	fileName = filepath.Base(name)
	if fileName != name || fileName == "." || fileName == ".." || strings.ContainsAny(name, "/\\") {
		return "", "", apperrors.Wrap(apperrors.ErrValidation, "invalid file name %q", name)
	}

	path = filepath.Join(h.summaryDir, fileName)
	if _, err := os.Stat(path); err != nil {
		return "", "", apperrors.Wrap(apperrors.ErrNotFound, "document %s", fileName)
	}
	return path, fileName, nil
}

func contentTypeFor(fileName string) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".html":
		return "text/html; charset=utf-8"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".json":
		return "application/json; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

func formatList(format string) []string {
	if format == "" {
		return nil
	}
	return []string{format}
}

// reconstructStructured rebuilds the structured shape from persisted
// rows so documents can be regenerated without the original transcript.
func reconstructStructured(meeting *models.MeetingDetail) *models.StructuredMeeting {
	structured := &models.StructuredMeeting{
		MeetingInfo: models.MeetingInfo{
			Title:              meeting.Title,
			EstimatedDate:      meeting.MeetingDate,
			EstimatedStartTime: meeting.StartTime,
			EstimatedEndTime:   meeting.EndTime,
			Location:           meeting.Location,
			MeetingType:        meeting.MeetingType,
		},
		KeyOutcomes: models.KeyOutcomes{
			OverallSentiment:     "neutral",
			MeetingEffectiveness: "medium",
		},
	}

	for _, p := range meeting.Participants {
		structured.Participants = append(structured.Participants, models.Participant{
			Name:              p.Name,
			Department:        p.Department,
			Role:              p.RoleInMeeting,
			SpeakingFrequency: speakingFrequencyFor(p.SpeakingTimePercent),
		})
	}

	for _, agenda := range meeting.Agendas {
		a := models.Agenda{
			Order:      agenda.AgendaOrder,
			Title:      agenda.Title,
			Discussion: agenda.Discussion,
			KeyPoints:  agenda.KeyPoints,
			Decisions:  agenda.Decision,
		}
		for _, item := range agenda.ActionItems {
			a.ActionItems = append(a.ActionItems, models.ActionItem{
				Task:     item.Task,
				Assignee: item.Assignee,
				Deadline: item.Deadline,
				Priority: item.Priority,
			})
		}
		structured.Agendas = append(structured.Agendas, a)
		if agenda.Decision != "" {
			structured.KeyOutcomes.MainDecisions = append(structured.KeyOutcomes.MainDecisions, agenda.Decision)
		}
	}

	if meeting.Analysis != nil {
		structured.KeyOutcomes.OverallSentiment = meeting.Analysis.OverallSentiment
		structured.KeyOutcomes.MeetingEffectiveness = meeting.Analysis.MeetingEffectiveness
		structured.AnalysisMetadata.ConfidenceScore = meeting.Analysis.ConfidenceScore
	}

	return structured
}

func speakingFrequencyFor(percent float64) string {
	switch {
	case percent > 0.35:
		return models.FrequencyHigh
	case percent > 0.25:
		return models.FrequencyMedium
	default:
		return models.FrequencyLow
	}
}
