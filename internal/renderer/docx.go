package renderer

import (
	"fmt"
	"strings"
	"time"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"

	"github.com/aquaman122/auto-report/internal/models"
	apperrors "github.com/aquaman122/auto-report/pkg/errors"
)

const (
	docxFont        = "맑은 고딕"
	docxBodySize    = 11
	docxTitleSize   = 16
	docxHeadingSize = 12
	docxFooterSize  = 9
)

// renderDOCX writes the meeting minutes as a Word document. godocx saves
// straight to the target path, so atomicity comes from writing to a temp
// sibling and renaming, same as the other formats.
func (r *Renderer) renderDOCX(m *models.StructuredMeeting, path string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return apperrors.Wrap(apperrors.ErrRender, "create docx: %v", err)
	}

	info := m.MeetingInfo

	title := info.Title
	if title == "" {
		title = "회의록"
	}
	docxLine(doc.AddParagraph(""), title, true, docxTitleSize)
	doc.AddParagraph("")

	docxLine(doc.AddParagraph(""), "■ 회의 개요", true, docxHeadingSize)
	docxLine(doc.AddParagraph(""), "회의 주제: "+orDefault(info.Title, "(제목 없음)"), false, docxBodySize)
	docxLine(doc.AddParagraph(""), "일시: "+meetingWhen(info, r.now), false, docxBodySize)
	docxLine(doc.AddParagraph(""), "장소: "+orDefault(info.Location, "(장소 미기재)"), false, docxBodySize)
	doc.AddParagraph("")

	docxLine(doc.AddParagraph(""), "■ 참석자", true, docxHeadingSize)
	for _, p := range m.Participants {
		line := "• " + p.Name
		if p.Department != "" {
			line += " (" + p.Department + ")"
		}
		if p.Role != "" {
			line += " - " + p.Role
		}
		docxLine(doc.AddParagraph(""), line, false, docxBodySize)
	}
	doc.AddParagraph("")

	docxLine(doc.AddParagraph(""), "■ 회의 내용", true, docxHeadingSize)
	for i, agenda := range m.Agendas {
		docxLine(doc.AddParagraph(""), fmt.Sprintf("%d. %s", i+1, agenda.Title), true, docxBodySize)
		docxLine(doc.AddParagraph(""), "논의내용: "+orDefault(agenda.Discussion, "논의 내용 없음"), false, docxBodySize)
		if agenda.Decisions != "" {
			docxLine(doc.AddParagraph(""), "결정사항: "+agenda.Decisions, false, docxBodySize)
		}
		for _, item := range agenda.ActionItems {
			line := "  • " + item.Task
			if item.Assignee != "" {
				line += " (담당: " + item.Assignee + ")"
			}
			if item.Deadline != "" {
				line += " [기한: " + item.Deadline + "]"
			}
			docxLine(doc.AddParagraph(""), line, false, docxBodySize)
		}
	}

	if len(m.KeyOutcomes.MainDecisions) > 0 {
		doc.AddParagraph("")
		docxLine(doc.AddParagraph(""), "■ 주요 결정사항", true, docxHeadingSize)
		for i, d := range m.KeyOutcomes.MainDecisions {
			docxLine(doc.AddParagraph(""), fmt.Sprintf("%d. %s", i+1, d), false, docxBodySize)
		}
	}

	doc.AddParagraph("")
	docxLine(doc.AddParagraph(""), "작성일: "+r.now().Format("2006-01-02"), false, docxFooterSize)
	docxLine(doc.AddParagraph(""), "작성자: AI 자동생성 시스템", false, docxFooterSize)

	tmp := path + ".tmp"
	if err := doc.SaveTo(tmp); err != nil {
		return apperrors.Wrap(apperrors.ErrRender, "save docx: %v", err)
	}
	return renameArtifact(tmp, path)
}

func docxLine(p *docx.Paragraph, text string, bold bool, size uint64) {
	run := p.AddText(text).Font(docxFont).Size(size).Color("000000")
	if bold {
		run.Bold(true)
	}
}

func meetingWhen(info models.MeetingInfo, now func() time.Time) string {
	date := info.EstimatedDate
	if date == "" {
		date = now().Format("2006-01-02")
	}
	when := date
	if info.EstimatedStartTime != "" {
		when += " " + info.EstimatedStartTime
		if info.EstimatedEndTime != "" {
			when += "~" + info.EstimatedEndTime
		}
	}
	return strings.TrimSpace(when)
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
