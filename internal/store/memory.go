package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/aquaman122/auto-report/internal/models"
	apperrors "github.com/aquaman122/auto-report/pkg/errors"
)

// MemoryStore keeps everything in process memory. It backs tests and
// local runs started without a database URL.
type MemoryStore struct {
	mu sync.Mutex

	nextID       int64
	audioFiles   map[int64]*models.AudioFile
	meetings     map[int64]*models.Meeting
	participants map[int64][]models.MeetingParticipant
	agendas      map[int64][]models.MeetingAgenda
	actions      map[int64]*models.ActionItemRecord
	documents    map[int64][]models.GeneratedDocument
	analyses     map[int64]*models.VoiceAnalysis

	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID:       1,
		audioFiles:   make(map[int64]*models.AudioFile),
		meetings:     make(map[int64]*models.Meeting),
		participants: make(map[int64][]models.MeetingParticipant),
		agendas:      make(map[int64][]models.MeetingAgenda),
		actions:      make(map[int64]*models.ActionItemRecord),
		documents:    make(map[int64][]models.GeneratedDocument),
		analyses:     make(map[int64]*models.VoiceAnalysis),
		now:          time.Now,
	}
}

// WithClock pins record timestamps for tests.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

func (s *MemoryStore) id() int64 {
	id := s.nextID
	s.nextID++
	return id
}

func (s *MemoryStore) SaveAudioFile(_ context.Context, file *models.AudioFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file.ID = s.id()
	file.Status = models.AudioUploaded
	file.UploadedAt = s.now()
	file.UpdatedAt = file.UploadedAt

	stored := *file
	s.audioFiles[file.ID] = &stored
	return nil
}

func (s *MemoryStore) UpdateAudioFileStatus(_ context.Context, id int64, status models.AudioStatus, errorMessage string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, ok := s.audioFiles[id]
	if !ok {
		return apperrors.Wrap(apperrors.ErrNotFound, "audio file %d", id)
	}
	file.Status = status
	file.UpdatedAt = s.now()
	if status == models.AudioCompleted {
		at := s.now()
		file.ProcessedAt = &at
	}
	if errorMessage != "" {
		file.ErrorMessage = errorMessage
	}
	return nil
}

func (s *MemoryStore) SaveMeeting(_ context.Context, m *models.StructuredMeeting, audioFileID *int64) (*models.Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	meeting := newMeetingRow(m, audioFileID, s.now())
	meeting.ID = s.id()
	s.meetings[meeting.ID] = &meeting

	for _, p := range m.Participants {
		s.participants[meeting.ID] = append(s.participants[meeting.ID], models.MeetingParticipant{
			ID:                  s.id(),
			MeetingID:           meeting.ID,
			Name:                p.Name,
			Department:          p.Department,
			RoleInMeeting:       participantRole(p.Role),
			SpeakingTimePercent: models.SpeakingTimePercent(p.SpeakingFrequency),
		})
	}

	for i, agenda := range m.Agendas {
		order := agenda.Order
		if order == 0 {
			order = i + 1
		}
		row := models.MeetingAgenda{
			ID:          s.id(),
			MeetingID:   meeting.ID,
			AgendaOrder: order,
			Title:       agenda.Title,
			Discussion:  agenda.Discussion,
			KeyPoints:   agenda.KeyPoints,
			Decision:    agenda.Decisions,
			Status:      "pending",
		}
		for _, item := range agenda.ActionItems {
			action := models.ActionItemRecord{
				ID:        s.id(),
				MeetingID: meeting.ID,
				AgendaID:  row.ID,
				Task:      item.Task,
				Assignee:  item.Assignee,
				Deadline:  item.Deadline,
				Priority:  item.Priority,
				Status:    models.ActionOpen,
			}
			s.actions[action.ID] = &action
			row.ActionItems = append(row.ActionItems, action)
		}
		s.agendas[meeting.ID] = append(s.agendas[meeting.ID], row)
	}

	result := meeting
	return &result, nil
}

func (s *MemoryStore) SaveVoiceAnalysis(_ context.Context, analysis *models.VoiceAnalysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	analysis.ID = s.id()
	analysis.CreatedAt = s.now()
	stored := *analysis
	s.analyses[analysis.AudioFileID] = &stored
	return nil
}

func (s *MemoryStore) SaveGeneratedDocument(_ context.Context, doc *models.GeneratedDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc.ID = s.id()
	doc.GeneratedAt = s.now()
	if doc.ApprovalStatus == "" {
		doc.ApprovalStatus = "pending"
	}
	stored := *doc
	s.documents[doc.MeetingID] = append(s.documents[doc.MeetingID], stored)
	return nil
}

func (s *MemoryStore) ListMeetings(_ context.Context, limit, offset int) ([]models.MeetingDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]*models.Meeting, 0, len(s.meetings))
	for _, m := range s.meetings {
		all = append(all, m)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	if offset >= len(all) {
		return []models.MeetingDetail{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}

	details := make([]models.MeetingDetail, 0, end-offset)
	for _, m := range all[offset:end] {
		details = append(details, s.detailLocked(m))
	}
	return details, nil
}

func (s *MemoryStore) GetMeetingByID(_ context.Context, id int64) (*models.MeetingDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.meetings[id]
	if !ok {
		return nil, apperrors.Wrap(apperrors.ErrNotFound, "meeting %d", id)
	}
	detail := s.detailLocked(m)
	return &detail, nil
}

func (s *MemoryStore) detailLocked(m *models.Meeting) models.MeetingDetail {
	detail := models.MeetingDetail{
		Meeting:      *m,
		Participants: append([]models.MeetingParticipant{}, s.participants[m.ID]...),
		Agendas:      append([]models.MeetingAgenda{}, s.agendas[m.ID]...),
		Documents:    append([]models.GeneratedDocument{}, s.documents[m.ID]...),
	}
	// Re-read actions so updates show up inside agendas.
	for i := range detail.Agendas {
		for j := range detail.Agendas[i].ActionItems {
			if current, ok := s.actions[detail.Agendas[i].ActionItems[j].ID]; ok {
				detail.Agendas[i].ActionItems[j] = *current
			}
		}
	}
	if m.AudioFileID != nil {
		if file, ok := s.audioFiles[*m.AudioFileID]; ok {
			copied := *file
			detail.AudioFile = &copied
		}
		if analysis, ok := s.analyses[*m.AudioFileID]; ok {
			copied := *analysis
			detail.Analysis = &copied
		}
	}
	return detail
}

func (s *MemoryStore) UpdateMeeting(_ context.Context, id int64, update MeetingUpdate) (*models.Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.meetings[id]
	if !ok {
		return nil, apperrors.Wrap(apperrors.ErrNotFound, "meeting %d", id)
	}
	if update.Title != nil {
		m.Title = *update.Title
	}
	if update.MeetingDate != nil {
		m.MeetingDate = *update.MeetingDate
	}
	if update.Location != nil {
		m.Location = *update.Location
	}
	if update.MeetingType != nil {
		m.MeetingType = *update.MeetingType
	}
	if update.Status != nil {
		m.Status = *update.Status
	}
	result := *m
	return &result, nil
}

func (s *MemoryStore) UpdateApproval(_ context.Context, id int64, status, approvedBy string) (*models.Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.meetings[id]
	if !ok {
		return nil, apperrors.Wrap(apperrors.ErrNotFound, "meeting %d", id)
	}
	m.Status = status
	m.ApprovedBy = approvedBy
	result := *m
	return &result, nil
}

func (s *MemoryStore) DeleteMeeting(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.meetings[id]; !ok {
		return apperrors.Wrap(apperrors.ErrNotFound, "meeting %d", id)
	}
	delete(s.meetings, id)
	delete(s.participants, id)
	delete(s.documents, id)
	for _, agenda := range s.agendas[id] {
		for _, item := range agenda.ActionItems {
			delete(s.actions, item.ID)
		}
	}
	delete(s.agendas, id)
	return nil
}

func (s *MemoryStore) GetActionItems(_ context.Context, meetingID int64) (*ActionItemSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.meetings[meetingID]; !ok {
		return nil, apperrors.Wrap(apperrors.ErrNotFound, "meeting %d", meetingID)
	}

	var items []models.ActionItemRecord
	for _, agenda := range s.agendas[meetingID] {
		for _, item := range agenda.ActionItems {
			if current, ok := s.actions[item.ID]; ok {
				items = append(items, *current)
			}
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return summarizeActions(items, meetingID), nil
}

func (s *MemoryStore) UpdateActionItem(_ context.Context, actionID int64, update ActionItemUpdate) (*models.ActionItemRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.actions[actionID]
	if !ok {
		return nil, apperrors.Wrap(apperrors.ErrNotFound, "action item %d", actionID)
	}
	if update.Status != nil {
		item.Status = *update.Status
	}
	if update.Notes != nil {
		item.Notes = *update.Notes
	}
	if update.CompletionDate != nil {
		if at, err := time.Parse("2006-01-02", *update.CompletionDate); err == nil {
			item.CompletionDate = &at
		}
	}
	result := *item
	return &result, nil
}

func (s *MemoryStore) GetStatistics(_ context.Context) (*models.Statistics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := &models.Statistics{
		TotalMeetings:   len(s.meetings),
		TotalAudioFiles: len(s.audioFiles),
	}
	for _, f := range s.audioFiles {
		if f.Status == models.AudioCompleted {
			stats.CompletedFiles++
		}
	}
	weekAgo := s.now().AddDate(0, 0, -7)
	for _, m := range s.meetings {
		if m.CreatedAt.After(weekAgo) {
			stats.RecentMeetings++
		}
	}
	if stats.TotalAudioFiles > 0 {
		stats.SuccessRate = float64(stats.CompletedFiles) / float64(stats.TotalAudioFiles) * 100
	}
	return stats, nil
}

func (s *MemoryStore) Ping(_ context.Context) error { return nil }

func (s *MemoryStore) Close() {}
