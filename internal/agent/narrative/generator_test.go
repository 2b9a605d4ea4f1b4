package narrative

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aquaman122/auto-report/internal/models"
)

func fixedClock() func() time.Time {
	at := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func TestRender_FullMeeting(t *testing.T) {
	g := NewGeneratorAt(fixedClock())

	m := &models.StructuredMeeting{
		MeetingInfo: models.MeetingInfo{
			Title:              "주간 기획 회의",
			EstimatedDate:      "2026-03-13",
			EstimatedStartTime: "14:00",
			EstimatedEndTime:   "15:00",
			Location:           "3층 회의실",
			MeetingType:        "정기회의",
		},
		Participants: []models.Participant{
			{Name: "김철수", Department: "기획팀", Role: "팀장"},
			{Name: "이영희"},
		},
		Agendas: []models.Agenda{
			{
				Title:      "예산 검토",
				Discussion: "분기 예산 초안을 검토했다.",
				KeyPoints:  []string{"예산 10% 증액", "외주 비용 절감"},
				Decisions:  "초안 승인",
				ActionItems: []models.ActionItem{
					{Task: "보고서 제출", Assignee: "이영희", Deadline: "2026-03-20"},
				},
			},
		},
		KeyOutcomes: models.KeyOutcomes{
			MainDecisions:    []string{"예산 초안 승인"},
			NextMeetingItems: []string{"집행 현황 점검"},
		},
	}

	text := g.Render(m)

	assert.Contains(t, text, "주간 기획 회의")
	assert.Contains(t, text, "■ 회의 개요")
	assert.Contains(t, text, "일시: 2026-03-13 14:00~15:00")
	assert.Contains(t, text, "장소: 3층 회의실")
	assert.Contains(t, text, "- 김철수 (기획팀) 팀장")
	assert.Contains(t, text, "- 이영희")
	assert.Contains(t, text, "1. 예산 검토")
	assert.Contains(t, text, "주요포인트: 예산 10% 증액, 외주 비용 절감")
	assert.Contains(t, text, "결정사항: 초안 승인")
	assert.Contains(t, text, "- 보고서 제출 (담당: 이영희) [기한: 2026-03-20]")
	assert.Contains(t, text, "■ 주요 결정사항\n  - 예산 초안 승인")
	assert.Contains(t, text, "작성일: 2026-03-14")
	assert.Contains(t, text, "작성자: AI 자동생성 시스템")
}

func TestRender_EmptyMeetingUsesDefaults(t *testing.T) {
	g := NewGeneratorAt(fixedClock())

	text := g.Render(&models.StructuredMeeting{})

	assert.Contains(t, text, "회의 주제: (제목 없음)")
	assert.Contains(t, text, "일시: 2026-03-14")
	assert.Contains(t, text, "장소: (장소 미기재)")
	assert.Contains(t, text, "회의 유형: 일반회의")
	assert.Contains(t, text, "- (참석자 미기재)")
	assert.Contains(t, text, "■ 주요 결정사항\n  - 없음")
	assert.Contains(t, text, "■ 다음 회의 안건\n  - 추후 결정")
}

func TestRender_Deterministic(t *testing.T) {
	g := NewGeneratorAt(fixedClock())
	m := &models.StructuredMeeting{
		MeetingInfo: models.MeetingInfo{Title: "회의"},
	}
	assert.Equal(t, g.Render(m), g.Render(m))
}
