package renderer

import (
	"bytes"
	"html/template"

	"github.com/aquaman122/auto-report/internal/models"
	apperrors "github.com/aquaman122/auto-report/pkg/errors"
)

var htmlTmpl = template.Must(template.New("minutes").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(`<!DOCTYPE html>
<html lang="ko">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{if .Info.Title}}{{.Info.Title}}{{else}}회의록{{end}}</title>
    <style>
        body { font-family: 'Malgun Gothic', Arial, sans-serif; line-height: 1.6; margin: 0; padding: 40px; background-color: #f8f9fa; }
        .container { max-width: 800px; margin: 0 auto; background: white; padding: 40px; border-radius: 8px; box-shadow: 0 2px 10px rgba(0,0,0,0.1); }
        .header { text-align: center; border-bottom: 3px solid #007bff; padding-bottom: 20px; margin-bottom: 40px; }
        .header h1 { color: #007bff; margin: 0; font-size: 28px; }
        .section { margin-bottom: 30px; }
        .section-title { background: #007bff; color: white; padding: 10px 15px; margin: 0 0 15px 0; font-size: 16px; font-weight: bold; border-radius: 4px; }
        .info-table { width: 100%; border-collapse: collapse; margin-bottom: 20px; }
        .info-table th, .info-table td { border: 1px solid #dee2e6; padding: 12px; text-align: left; }
        .info-table th { background-color: #f8f9fa; font-weight: bold; width: 150px; }
        .participant { background: #f8f9fa; padding: 8px 12px; margin: 5px 0; border-radius: 4px; border-left: 4px solid #007bff; }
        .agenda { background: #ffffff; border: 1px solid #dee2e6; border-radius: 8px; padding: 20px; margin: 15px 0; }
        .agenda-title { color: #007bff; font-size: 18px; font-weight: bold; margin-bottom: 10px; }
        .agenda-content { margin: 10px 0; }
        .action-item { background: #fff3cd; border: 1px solid #ffeaa7; border-radius: 4px; padding: 10px; margin: 8px 0; }
        .decision-item { background: #d4edda; border: 1px solid #c3e6cb; border-radius: 4px; padding: 10px; margin: 8px 0; }
        .footer { margin-top: 40px; padding-top: 20px; border-top: 1px solid #dee2e6; text-align: right; color: #6c757d; font-size: 14px; }
        @media print { body { background: white; padding: 0; } .container { box-shadow: none; } }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>{{if .Info.Title}}{{.Info.Title}}{{else}}회의록{{end}}</h1>
        </div>

        <div class="section">
            <h2 class="section-title">■ 회의 개요</h2>
            <table class="info-table">
                <tr><th>회의 주제</th><td>{{if .Info.Title}}{{.Info.Title}}{{else}}(제목 없음){{end}}</td></tr>
                <tr><th>일시</th><td>{{if .Info.EstimatedDate}}{{.Info.EstimatedDate}}{{else}}{{.Today}}{{end}} {{.Info.EstimatedStartTime}}{{if .Info.EstimatedEndTime}}~{{.Info.EstimatedEndTime}}{{end}}</td></tr>
                <tr><th>장소</th><td>{{if .Info.Location}}{{.Info.Location}}{{else}}(장소 미기재){{end}}</td></tr>
                <tr><th>회의 유형</th><td>{{if .Info.MeetingType}}{{.Info.MeetingType}}{{else}}일반회의{{end}}</td></tr>
            </table>
        </div>

        <div class="section">
            <h2 class="section-title">■ 참석자</h2>
            {{range .Participants}}
            <div class="participant">
                <strong>{{.Name}}</strong>{{if .Department}} ({{.Department}}){{end}}{{if .Role}} - {{.Role}}{{end}}
            </div>
            {{end}}
        </div>

        <div class="section">
            <h2 class="section-title">■ 회의 내용</h2>
            {{range $i, $agenda := .Agendas}}
            <div class="agenda">
                <div class="agenda-title">{{inc $i}}. {{$agenda.Title}}</div>
                <div class="agenda-content">
                    <strong>논의 내용:</strong><br>
                    {{if $agenda.Discussion}}{{$agenda.Discussion}}{{else}}논의 내용 없음{{end}}
                </div>
                {{if $agenda.KeyPoints}}
                <div class="agenda-content">
                    <strong>핵심 포인트:</strong>
                    <ul>{{range $agenda.KeyPoints}}<li>{{.}}</li>{{end}}</ul>
                </div>
                {{end}}
                {{if $agenda.Decisions}}
                <div class="decision-item"><strong>결정 사항:</strong> {{$agenda.Decisions}}</div>
                {{end}}
                {{if $agenda.ActionItems}}
                <div class="agenda-content">
                    <strong>액션 아이템:</strong>
                    {{range $agenda.ActionItems}}
                    <div class="action-item">
                        <strong>{{.Task}}</strong><br>
                        {{if .Assignee}}담당자: {{.Assignee}}{{end}}{{if .Deadline}} | 기한: {{.Deadline}}{{end}}{{if .Priority}} | 우선순위: {{.Priority}}{{end}}
                    </div>
                    {{end}}
                </div>
                {{end}}
            </div>
            {{end}}
        </div>

        <div class="section">
            <h2 class="section-title">■ 주요 결과</h2>
            {{if .Outcomes.MainDecisions}}
            <div class="agenda-content">
                <strong>주요 결정사항:</strong>
                <ul>{{range .Outcomes.MainDecisions}}<li>{{.}}</li>{{end}}</ul>
            </div>
            {{end}}
            {{if .Outcomes.UnresolvedIssues}}
            <div class="agenda-content">
                <strong>미해결 사항:</strong>
                <ul>{{range .Outcomes.UnresolvedIssues}}<li>{{.}}</li>{{end}}</ul>
            </div>
            {{end}}
            {{if .Outcomes.NextMeetingItems}}
            <div class="agenda-content">
                <strong>다음 회의 안건:</strong>
                <ul>{{range .Outcomes.NextMeetingItems}}<li>{{.}}</li>{{end}}</ul>
            </div>
            {{end}}
        </div>

        <div class="footer">
            <p>작성일: {{.Today}}</p>
            <p>작성자: AI 자동생성 시스템 v{{.Version}}</p>
        </div>
    </div>
</body>
</html>
`))

type htmlData struct {
	Info         models.MeetingInfo
	Participants []models.Participant
	Agendas      []models.Agenda
	Outcomes     models.KeyOutcomes
	Today        string
	Version      string
}

func (r *Renderer) renderHTML(m *models.StructuredMeeting, path string) error {
	data := htmlData{
		Info:         m.MeetingInfo,
		Participants: m.Participants,
		Agendas:      m.Agendas,
		Outcomes:     m.KeyOutcomes,
		Today:        r.now().Format("2006-01-02"),
		Version:      r.version,
	}

	var buf bytes.Buffer
	if err := htmlTmpl.Execute(&buf, data); err != nil {
		return apperrors.Wrap(apperrors.ErrRender, "execute html template: %v", err)
	}
	return writeAtomic(path, buf.Bytes())
}

