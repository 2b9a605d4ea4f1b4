// Package store persists meeting records. Two drivers exist: postgres
// for a Supabase-hosted database and an in-process memory driver used
// by tests and local runs without a database.
package store

import (
	"context"
	"strings"
	"time"

	"github.com/aquaman122/auto-report/internal/models"
)

// MeetingUpdate carries the mutable meeting fields. Nil pointers leave
// the stored value untouched.
type MeetingUpdate struct {
	Title       *string `json:"meeting_title,omitempty"`
	MeetingDate *string `json:"meeting_date,omitempty"`
	Location    *string `json:"location,omitempty"`
	MeetingType *string `json:"meeting_type,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// ActionItemUpdate carries the mutable action item fields.
type ActionItemUpdate struct {
	Status         *string `json:"status,omitempty"`
	Notes          *string `json:"notes,omitempty"`
	CompletionDate *string `json:"completion_date,omitempty"`
}

// ActionItemSummary is the action item listing for one meeting.
type ActionItemSummary struct {
	MeetingID      int64                     `json:"meeting_id"`
	ActionItems    []models.ActionItemRecord `json:"action_items"`
	TotalCount     int                       `json:"total_count"`
	OpenCount      int                       `json:"open_count"`
	CompletedCount int                       `json:"completed_count"`
}

type Store interface {
	// SaveAudioFile inserts the record and fills ID and UploadedAt.
	SaveAudioFile(ctx context.Context, file *models.AudioFile) error
	UpdateAudioFileStatus(ctx context.Context, id int64, status models.AudioStatus, errorMessage string) error

	// SaveMeeting writes the meeting row and its child rows. The meeting
	// insert must succeed; child row failures are logged and skipped so
	// one bad participant or agenda never loses the whole meeting.
	SaveMeeting(ctx context.Context, m *models.StructuredMeeting, audioFileID *int64) (*models.Meeting, error)
	SaveVoiceAnalysis(ctx context.Context, analysis *models.VoiceAnalysis) error
	SaveGeneratedDocument(ctx context.Context, doc *models.GeneratedDocument) error

	ListMeetings(ctx context.Context, limit, offset int) ([]models.MeetingDetail, error)
	GetMeetingByID(ctx context.Context, id int64) (*models.MeetingDetail, error)
	UpdateMeeting(ctx context.Context, id int64, update MeetingUpdate) (*models.Meeting, error)
	UpdateApproval(ctx context.Context, id int64, status, approvedBy string) (*models.Meeting, error)
	DeleteMeeting(ctx context.Context, id int64) error

	GetActionItems(ctx context.Context, meetingID int64) (*ActionItemSummary, error)
	UpdateActionItem(ctx context.Context, actionID int64, update ActionItemUpdate) (*models.ActionItemRecord, error)

	GetStatistics(ctx context.Context) (*models.Statistics, error)

	Ping(ctx context.Context) error
	Close()
}

// newMeetingRow maps structured output onto the meetings row shape,
// filling the defaults the schema expects for absent fields.
func newMeetingRow(m *models.StructuredMeeting, audioFileID *int64, now time.Time) models.Meeting {
	info := m.MeetingInfo

	title := strings.TrimSpace(info.Title)
	if title == "" {
		title = "제목 없음"
	}
	date := info.EstimatedDate
	if date == "" {
		date = now.Format("2006-01-02")
	}
	meetingType := info.MeetingType
	if meetingType == "" {
		meetingType = "일반회의"
	}

	titles := make([]string, 0, len(m.Agendas))
	for _, a := range m.Agendas {
		titles = append(titles, a.Title)
	}

	return models.Meeting{
		AudioFileID:  audioFileID,
		Title:        title,
		MeetingDate:  date,
		StartTime:    info.EstimatedStartTime,
		EndTime:      info.EstimatedEndTime,
		Location:     info.Location,
		MeetingType:  meetingType,
		AgendaTitles: titles,
		Status:       models.MeetingDraft,
		CreatedBy:    "AI_SYSTEM",
		CreatedAt:    now,
	}
}

func participantRole(role string) string {
	if strings.TrimSpace(role) == "" {
		return "참석자"
	}
	return role
}

func summarizeActions(items []models.ActionItemRecord, meetingID int64) *ActionItemSummary {
	summary := &ActionItemSummary{
		MeetingID:   meetingID,
		ActionItems: items,
		TotalCount:  len(items),
	}
	for _, item := range items {
		switch item.Status {
		case models.ActionOpen:
			summary.OpenCount++
		case models.ActionCompleted:
			summary.CompletedCount++
		}
	}
	if summary.ActionItems == nil {
		summary.ActionItems = []models.ActionItemRecord{}
	}
	return summary
}
