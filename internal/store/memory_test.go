package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquaman122/auto-report/internal/models"
	apperrors "github.com/aquaman122/auto-report/pkg/errors"
)

func structuredFixture() *models.StructuredMeeting {
	return &models.StructuredMeeting{
		MeetingInfo: models.MeetingInfo{
			Title:         "주간 기획 회의",
			EstimatedDate: "2026-03-13",
			Location:      "3층 회의실",
			MeetingType:   "정기회의",
		},
		Participants: []models.Participant{
			{Name: "김철수", Department: "기획팀", Role: "팀장", SpeakingFrequency: models.FrequencyHigh},
			{Name: "이영희", SpeakingFrequency: models.FrequencyLow},
		},
		Agendas: []models.Agenda{
			{
				Title:      "예산 검토",
				Discussion: "분기 예산 초안을 검토했다.",
				Decisions:  "초안 승인",
				ActionItems: []models.ActionItem{
					{Task: "보고서 제출", Assignee: "이영희", Priority: models.PriorityHigh},
					{Task: "외주 견적 요청", Assignee: "김철수", Priority: models.PriorityMedium},
				},
			},
		},
	}
}

func TestSaveMeeting_FillsDefaultsAndChildren(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	meeting, err := s.SaveMeeting(ctx, structuredFixture(), nil)
	require.NoError(t, err)
	assert.Equal(t, "주간 기획 회의", meeting.Title)
	assert.Equal(t, models.MeetingDraft, meeting.Status)
	assert.Equal(t, "AI_SYSTEM", meeting.CreatedBy)

	detail, err := s.GetMeetingByID(ctx, meeting.ID)
	require.NoError(t, err)
	require.Len(t, detail.Participants, 2)
	assert.Equal(t, "팀장", detail.Participants[0].RoleInMeeting)
	assert.Equal(t, "참석자", detail.Participants[1].RoleInMeeting)
	assert.Equal(t, 0.4, detail.Participants[0].SpeakingTimePercent)
	assert.Equal(t, 0.2, detail.Participants[1].SpeakingTimePercent)

	require.Len(t, detail.Agendas, 1)
	assert.Equal(t, 1, detail.Agendas[0].AgendaOrder)
	require.Len(t, detail.Agendas[0].ActionItems, 2)
	assert.Equal(t, models.ActionOpen, detail.Agendas[0].ActionItems[0].Status)
}

func TestSaveMeeting_EmptyStructureDefaults(t *testing.T) {
	s := NewMemoryStore().WithClock(func() time.Time {
		return time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	})

	meeting, err := s.SaveMeeting(context.Background(), &models.StructuredMeeting{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "제목 없음", meeting.Title)
	assert.Equal(t, "2026-03-14", meeting.MeetingDate)
	assert.Equal(t, "일반회의", meeting.MeetingType)
}

func TestGetMeetingByID_NotFound(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.GetMeetingByID(context.Background(), 99)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListMeetings_NewestFirstWithPagination(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	current := base
	s := NewMemoryStore().WithClock(func() time.Time {
		current = current.Add(time.Hour)
		return current
	})
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 3; i++ {
		m, err := s.SaveMeeting(ctx, structuredFixture(), nil)
		require.NoError(t, err)
		ids = append(ids, m.ID)
	}

	page, err := s.ListMeetings(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, ids[2], page[0].ID)
	assert.Equal(t, ids[1], page[1].ID)

	rest, err := s.ListMeetings(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, ids[0], rest[0].ID)

	empty, err := s.ListMeetings(ctx, 2, 10)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestUpdateMeeting_PartialUpdate(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	meeting, err := s.SaveMeeting(ctx, structuredFixture(), nil)
	require.NoError(t, err)

	title := "수정된 제목"
	updated, err := s.UpdateMeeting(ctx, meeting.ID, MeetingUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "수정된 제목", updated.Title)
	// Untouched fields keep their stored values.
	assert.Equal(t, meeting.MeetingDate, updated.MeetingDate)
	assert.Equal(t, meeting.Location, updated.Location)
}

func TestUpdateApproval(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	meeting, err := s.SaveMeeting(ctx, structuredFixture(), nil)
	require.NoError(t, err)

	approved, err := s.UpdateApproval(ctx, meeting.ID, models.MeetingApproved, "박부장")
	require.NoError(t, err)
	assert.Equal(t, models.MeetingApproved, approved.Status)
	assert.Equal(t, "박부장", approved.ApprovedBy)
}

func TestActionItems_UpdateShowsUpEverywhere(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	meeting, err := s.SaveMeeting(ctx, structuredFixture(), nil)
	require.NoError(t, err)

	summary, err := s.GetActionItems(ctx, meeting.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalCount)
	assert.Equal(t, 2, summary.OpenCount)
	assert.Equal(t, 0, summary.CompletedCount)

	status := models.ActionCompleted
	date := "2026-03-20"
	item, err := s.UpdateActionItem(ctx, summary.ActionItems[0].ID, ActionItemUpdate{
		Status:         &status,
		CompletionDate: &date,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ActionCompleted, item.Status)
	require.NotNil(t, item.CompletionDate)
	assert.Equal(t, "2026-03-20", item.CompletionDate.Format("2006-01-02"))

	summary, err = s.GetActionItems(ctx, meeting.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.OpenCount)
	assert.Equal(t, 1, summary.CompletedCount)

	// The nested copy inside the meeting detail reflects the update too.
	detail, err := s.GetMeetingByID(ctx, meeting.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ActionCompleted, detail.Agendas[0].ActionItems[0].Status)
}

func TestDeleteMeeting_Cascades(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	meeting, err := s.SaveMeeting(ctx, structuredFixture(), nil)
	require.NoError(t, err)

	summary, err := s.GetActionItems(ctx, meeting.ID)
	require.NoError(t, err)
	actionID := summary.ActionItems[0].ID

	require.NoError(t, s.DeleteMeeting(ctx, meeting.ID))

	_, err = s.GetMeetingByID(ctx, meeting.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = s.UpdateActionItem(ctx, actionID, ActionItemUpdate{})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.ErrorIs(t, s.DeleteMeeting(ctx, meeting.ID), apperrors.ErrNotFound)
}

func TestAudioFileLifecycle(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	file := &models.AudioFile{FileName: "abc.mp3", OriginalName: "meeting.mp3"}
	require.NoError(t, s.SaveAudioFile(ctx, file))
	assert.NotZero(t, file.ID)
	assert.Equal(t, models.AudioUploaded, file.Status)

	require.NoError(t, s.UpdateAudioFileStatus(ctx, file.ID, models.AudioProcessing, ""))
	require.NoError(t, s.UpdateAudioFileStatus(ctx, file.ID, models.AudioCompleted, ""))

	meeting, err := s.SaveMeeting(ctx, structuredFixture(), &file.ID)
	require.NoError(t, err)

	detail, err := s.GetMeetingByID(ctx, meeting.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.AudioFile)
	assert.Equal(t, models.AudioCompleted, detail.AudioFile.Status)
	assert.NotNil(t, detail.AudioFile.ProcessedAt)
}

func TestGetStatistics(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		file := &models.AudioFile{FileName: "f.mp3"}
		require.NoError(t, s.SaveAudioFile(ctx, file))
		if i < 3 {
			require.NoError(t, s.UpdateAudioFileStatus(ctx, file.ID, models.AudioCompleted, ""))
		}
	}
	_, err := s.SaveMeeting(ctx, structuredFixture(), nil)
	require.NoError(t, err)

	stats, err := s.GetStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalMeetings)
	assert.Equal(t, 4, stats.TotalAudioFiles)
	assert.Equal(t, 3, stats.CompletedFiles)
	assert.Equal(t, 1, stats.RecentMeetings)
	assert.Equal(t, 75.0, stats.SuccessRate)
}
