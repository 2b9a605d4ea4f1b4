package models

import "time"

// AudioStatus is the processing lifecycle of an uploaded audio file.
// Transitions are monotonic (uploaded → processing → completed) except
// for failed, which is reachable from any non-terminal state.
type AudioStatus string

const (
	AudioUploaded   AudioStatus = "uploaded"
	AudioProcessing AudioStatus = "processing"
	AudioCompleted  AudioStatus = "completed"
	AudioFailed     AudioStatus = "failed"
)

// Meeting lifecycle statuses.
const (
	MeetingDraft    = "draft"
	MeetingApproved = "approved"
	MeetingRejected = "rejected"
	MeetingArchived = "archived"
)

// Action item statuses.
const (
	ActionOpen      = "open"
	ActionCompleted = "completed"
)

type AudioFile struct {
	ID              int64       `json:"id"`
	FileName        string      `json:"file_name"`
	OriginalName    string      `json:"original_name"`
	FilePath        string      `json:"file_path"`
	FileSize        int64       `json:"file_size"`
	MimeType        string      `json:"mime_type"`
	DurationSeconds float64     `json:"duration_seconds,omitempty"`
	Status          AudioStatus `json:"status"`
	ErrorMessage    string      `json:"error_message,omitempty"`
	UploadedAt      time.Time   `json:"uploaded_at"`
	ProcessedAt     *time.Time  `json:"processed_at,omitempty"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

type Meeting struct {
	ID           int64     `json:"id"`
	AudioFileID  *int64    `json:"audio_file_id,omitempty"`
	Title        string    `json:"meeting_title"`
	MeetingDate  string    `json:"meeting_date"`
	StartTime    string    `json:"start_time,omitempty"`
	EndTime      string    `json:"end_time,omitempty"`
	Location     string    `json:"location,omitempty"`
	MeetingType  string    `json:"meeting_type"`
	AgendaTitles []string  `json:"agenda_items"`
	Status       string    `json:"status"`
	ApprovedBy   string    `json:"approved_by,omitempty"`
	CreatedBy    string    `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
}

type MeetingParticipant struct {
	ID                  int64   `json:"id"`
	MeetingID           int64   `json:"meeting_id"`
	Name                string  `json:"name"`
	Department          string  `json:"department,omitempty"`
	RoleInMeeting       string  `json:"role_in_meeting"`
	SpeakingTimePercent float64 `json:"speaking_time_percent"`
}

type MeetingAgenda struct {
	ID          int64              `json:"id"`
	MeetingID   int64              `json:"meeting_id"`
	AgendaOrder int                `json:"agenda_order"`
	Title       string             `json:"agenda_title"`
	Discussion  string             `json:"discussion_content"`
	KeyPoints   []string           `json:"key_points"`
	Decision    string             `json:"decision,omitempty"`
	Status      string             `json:"status"`
	ActionItems []ActionItemRecord `json:"action_items"`
}

type ActionItemRecord struct {
	ID             int64      `json:"id"`
	MeetingID      int64      `json:"meeting_id"`
	AgendaID       int64      `json:"agenda_id"`
	Task           string     `json:"task_description"`
	Assignee       string     `json:"assignee"`
	Deadline       string     `json:"deadline,omitempty"`
	Priority       string     `json:"priority"`
	Status         string     `json:"status"`
	Notes          string     `json:"notes,omitempty"`
	CompletionDate *time.Time `json:"completion_date,omitempty"`
}

type GeneratedDocument struct {
	ID             int64     `json:"id"`
	MeetingID      int64     `json:"meeting_id"`
	DocumentType   string    `json:"document_type"`
	FileName       string    `json:"file_name"`
	FilePath       string    `json:"file_path"`
	FileFormat     string    `json:"file_format"`
	TemplateUsed   string    `json:"template_used"`
	GeneratedAt    time.Time `json:"generated_at"`
	IsFinal        bool      `json:"is_final"`
	ApprovalStatus string    `json:"approval_status"`
}

// VoiceAnalysis captures the analysis byproducts of a pipeline run,
// stored alongside the audio file record.
type VoiceAnalysis struct {
	ID                    int64     `json:"id"`
	AudioFileID           int64     `json:"audio_file_id"`
	OriginalText          string    `json:"original_text"`
	SummaryText           string    `json:"summary_text"`
	KeyTopics             []string  `json:"key_topics"`
	OverallSentiment      string    `json:"overall_sentiment"`
	MeetingEffectiveness  string    `json:"meeting_effectiveness"`
	TotalSpeakers         int       `json:"total_speakers"`
	MainSpeaker           string    `json:"main_speaker,omitempty"`
	ConfidenceScore       float64   `json:"confidence_score"`
	ModelVersion          string    `json:"ai_model_version"`
	ProcessingTimeSeconds float64   `json:"processing_time_seconds"`
	CreatedAt             time.Time `json:"created_at"`
}

// MeetingDetail is the denormalized read shape: the meeting joined with
// its audio file, participants, agendas (with nested action items),
// generated documents and voice analysis.
type MeetingDetail struct {
	Meeting
	AudioFile    *AudioFile           `json:"audio_file,omitempty"`
	Participants []MeetingParticipant `json:"participants"`
	Agendas      []MeetingAgenda      `json:"agendas"`
	Documents    []GeneratedDocument  `json:"generated_documents"`
	Analysis     *VoiceAnalysis       `json:"voice_analysis,omitempty"`
}

type Statistics struct {
	TotalMeetings   int     `json:"total_meetings"`
	TotalAudioFiles int     `json:"total_audio_files"`
	CompletedFiles  int     `json:"completed_files"`
	RecentMeetings  int     `json:"recent_meetings"`
	SuccessRate     float64 `json:"success_rate"`
}

// SpeakingTimePercent maps a coarse speaking-frequency category to the
// approximate fraction of meeting time persisted with the participant.
func SpeakingTimePercent(frequency string) float64 {
	switch frequency {
	case FrequencyHigh:
		return 0.4
	case FrequencyMedium:
		return 0.3
	case FrequencyLow:
		return 0.2
	default:
		return 0.25
	}
}

// Progress maps an audio status to a coarse progress percentage for the
// status endpoint.
func (s AudioStatus) Progress() int {
	switch s {
	case AudioUploaded:
		return 25
	case AudioProcessing:
		return 75
	case AudioCompleted:
		return 100
	default:
		return 0
	}
}
