package renderer

import (
	"encoding/json"
	"time"

	"github.com/aquaman122/auto-report/internal/models"
	apperrors "github.com/aquaman122/auto-report/pkg/errors"
)

type jsonMetadata struct {
	GeneratedAt   time.Time `json:"generated_at"`
	Generator     string    `json:"generator"`
	FormatVersion string    `json:"format_version"`
}

type jsonDocument struct {
	Metadata         jsonMetadata            `json:"metadata"`
	MeetingInfo      models.MeetingInfo      `json:"meeting_info"`
	Participants     []models.Participant    `json:"participants"`
	Agendas          []models.Agenda         `json:"agendas"`
	KeyOutcomes      models.KeyOutcomes      `json:"key_outcomes"`
	AnalysisMetadata models.AnalysisMetadata `json:"analysis_metadata"`
	GeneratedMinutes string                  `json:"generated_minutes"`
}

// renderJSON writes the structured data plus the narrative minutes as a
// machine-readable backup of the other formats.
func (r *Renderer) renderJSON(m *models.StructuredMeeting, minutesText string, path string) error {
	doc := jsonDocument{
		Metadata: jsonMetadata{
			GeneratedAt:   r.now().UTC(),
			Generator:     "auto-report-v" + r.version,
			FormatVersion: r.version,
		},
		MeetingInfo:      m.MeetingInfo,
		Participants:     m.Participants,
		Agendas:          m.Agendas,
		KeyOutcomes:      m.KeyOutcomes,
		AnalysisMetadata: m.AnalysisMetadata,
		GeneratedMinutes: minutesText,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return apperrors.Wrap(apperrors.ErrRender, "marshal json document: %v", err)
	}
	return writeAtomic(path, data)
}
