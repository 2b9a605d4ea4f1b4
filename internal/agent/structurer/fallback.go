package structurer

import (
	"regexp"
	"sort"
	"strings"

	"github.com/aquaman122/auto-report/internal/models"
)

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}]{2,}`)

var stopWords = map[string]struct{}{
	"그": {}, "이": {}, "저": {}, "것": {}, "네": {}, "아": {}, "음": {},
	"어": {}, "잠시만": {}, "그냥": {}, "좀": {}, "막": {},
	"the": {}, "and": {}, "that": {}, "this": {}, "for": {},
}

// Fallback builds a deterministic minimal structure from the transcript
// when the completion provider output cannot be parsed. Keywords come
// from local frequency counting so the pipeline can proceed without a
// second provider round-trip.
func Fallback(transcript string) *models.StructuredMeeting {
	keywords := extractKeywords(transcript, 10)

	structured := &models.StructuredMeeting{
		MeetingInfo: models.MeetingInfo{
			Title:       "회의록 (자동 분석 실패)",
			MeetingType: "일반회의",
		},
		Agendas: []models.Agenda{
			{
				Order:      1,
				Title:      "회의 내용 분석 필요",
				Discussion: "자동 구조화에 실패하여 수동 검토가 필요합니다.",
				KeyPoints:  keywords,
				ActionItems: []models.ActionItem{
					{
						Task:     "회의록 검토",
						Assignee: "unassigned",
						Priority: models.PriorityMedium,
					},
				},
			},
		},
		KeyOutcomes: models.KeyOutcomes{
			MainDecisions:        []string{"분석 필요"},
			NextMeetingItems:     []string{"이전 회의 후속 논의"},
			OverallSentiment:     "neutral",
			MeetingEffectiveness: models.FrequencyMedium,
		},
		AnalysisMetadata: models.AnalysisMetadata{
			ConfidenceScore: 0,
			ProcessingNotes: "structuring fallback: provider output could not be parsed",
		},
	}
	structured.Normalize()
	return structured
}

// extractKeywords returns the top-n words by frequency, stop words
// excluded, ties broken alphabetically for determinism.
func extractKeywords(text string, n int) []string {
	frequency := make(map[string]int)
	for _, w := range wordPattern.FindAllString(text, -1) {
		w = strings.ToLower(w)
		if _, skip := stopWords[w]; skip {
			continue
		}
		frequency[w]++
	}

	words := make([]string, 0, len(frequency))
	for w := range frequency {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if frequency[words[i]] != frequency[words[j]] {
			return frequency[words[i]] > frequency[words[j]]
		}
		return words[i] < words[j]
	})

	if len(words) > n {
		words = words[:n]
	}
	return words
}
