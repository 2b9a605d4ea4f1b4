// Package narrative assembles the plain-text minutes document from a
// structured meeting. The template path is fully local and deterministic;
// no provider round-trip is involved.
package narrative

import (
	"fmt"
	"strings"
	"time"

	"github.com/aquaman122/auto-report/internal/models"
)

const divider = "=============================================="

type Generator struct {
	now func() time.Time
}

func NewGenerator() *Generator {
	return &Generator{now: time.Now}
}

// NewGeneratorAt pins the clock, used by tests and idempotent re-renders.
func NewGeneratorAt(now func() time.Time) *Generator {
	return &Generator{now: now}
}

// Render produces the fixed-section minutes text: overview, participants,
// agenda with decisions and action items, outcomes, footer date.
func (g *Generator) Render(m *models.StructuredMeeting) string {
	info := m.MeetingInfo
	today := g.now().Format("2006-01-02")

	title := info.Title
	if title == "" {
		title = "회의록"
	}

	var b strings.Builder
	b.WriteString(divider + "\n")
	b.WriteString(fmt.Sprintf("            %s\n", title))
	b.WriteString(divider + "\n\n")

	b.WriteString("■ 회의 개요\n")
	b.WriteString(fmt.Sprintf("  - 회의 주제: %s\n", orDefault(info.Title, "(제목 없음)")))
	date := orDefault(info.EstimatedDate, today)
	when := strings.TrimSpace(date + " " + info.EstimatedStartTime)
	if info.EstimatedEndTime != "" {
		when += "~" + info.EstimatedEndTime
	}
	b.WriteString(fmt.Sprintf("  - 일시: %s\n", when))
	b.WriteString(fmt.Sprintf("  - 장소: %s\n", orDefault(info.Location, "(장소 미기재)")))
	b.WriteString(fmt.Sprintf("  - 회의 유형: %s\n\n", orDefault(info.MeetingType, "일반회의")))

	b.WriteString("■ 참석자\n")
	if len(m.Participants) == 0 {
		b.WriteString("  - (참석자 미기재)\n")
	}
	for _, p := range m.Participants {
		line := "  - " + p.Name
		if p.Department != "" {
			line += " (" + p.Department + ")"
		}
		if p.Role != "" {
			line += " " + p.Role
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")

	b.WriteString("■ 회의 내용\n")
	for i, agenda := range m.Agendas {
		b.WriteString(fmt.Sprintf("%d. %s\n", i+1, agenda.Title))
		b.WriteString(fmt.Sprintf("   논의내용: %s\n", agenda.Discussion))
		if len(agenda.KeyPoints) > 0 {
			b.WriteString(fmt.Sprintf("   주요포인트: %s\n", strings.Join(agenda.KeyPoints, ", ")))
		}
		b.WriteString(fmt.Sprintf("   결정사항: %s\n", orDefault(agenda.Decisions, "없음")))
		if len(agenda.ActionItems) > 0 {
			b.WriteString("   액션아이템:\n")
			for _, item := range agenda.ActionItems {
				line := "   - " + item.Task
				if item.Assignee != "" {
					line += " (담당: " + item.Assignee + ")"
				}
				if item.Deadline != "" {
					line += " [기한: " + item.Deadline + "]"
				}
				b.WriteString(line + "\n")
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("■ 주요 결정사항\n")
	writeList(&b, m.KeyOutcomes.MainDecisions, "  - 없음")
	b.WriteString("\n■ 미해결 사항\n")
	writeList(&b, m.KeyOutcomes.UnresolvedIssues, "  - 없음")
	b.WriteString("\n■ 다음 회의 안건\n")
	writeList(&b, m.KeyOutcomes.NextMeetingItems, "  - 추후 결정")

	b.WriteString("\n작성일: " + today + "\n")
	b.WriteString("작성자: AI 자동생성 시스템\n")
	b.WriteString(divider + "\n")

	return b.String()
}

func writeList(b *strings.Builder, items []string, empty string) {
	if len(items) == 0 {
		b.WriteString(empty + "\n")
		return
	}
	for _, item := range items {
		b.WriteString("  - " + item + "\n")
	}
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
