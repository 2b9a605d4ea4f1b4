package structurer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallback_MinimalStructure(t *testing.T) {
	structured := Fallback("예산 검토 예산 일정 예산 일정 보고")

	require.NoError(t, structured.Validate())
	assert.Equal(t, "회의록 (자동 분석 실패)", structured.MeetingInfo.Title)
	assert.Equal(t, "일반회의", structured.MeetingInfo.MeetingType)

	require.Len(t, structured.Agendas, 1)
	agenda := structured.Agendas[0]
	assert.Equal(t, 1, agenda.Order)
	require.Len(t, agenda.ActionItems, 1)
	assert.Equal(t, "회의록 검토", agenda.ActionItems[0].Task)
	assert.Equal(t, "unassigned", agenda.ActionItems[0].Assignee)

	assert.Equal(t, "neutral", structured.KeyOutcomes.OverallSentiment)
	assert.Zero(t, structured.AnalysisMetadata.ConfidenceScore)
}

func TestFallback_KeywordsByFrequency(t *testing.T) {
	structured := Fallback("예산 검토 예산 일정 예산 일정 보고")

	keywords := structured.Agendas[0].KeyPoints
	require.NotEmpty(t, keywords)
	// Most frequent word first, ties broken alphabetically.
	assert.Equal(t, []string{"예산", "일정", "검토", "보고"}, keywords)
}

func TestFallback_Deterministic(t *testing.T) {
	transcript := "budget review schedule budget report schedule budget"
	first := Fallback(transcript)
	second := Fallback(transcript)
	assert.Equal(t, first, second)
}

func TestExtractKeywords_SkipsStopWords(t *testing.T) {
	keywords := extractKeywords("the budget and the schedule and that report", 10)
	assert.NotContains(t, keywords, "the")
	assert.NotContains(t, keywords, "and")
	assert.NotContains(t, keywords, "that")
	assert.Contains(t, keywords, "budget")
}

func TestExtractKeywords_CapsAtN(t *testing.T) {
	words := []string{
		"alpha", "bravo", "charlie", "delta", "echo", "foxtrot",
		"golf", "hotel", "india", "juliet", "kilo", "lima",
	}
	keywords := extractKeywords(strings.Join(words, " "), 10)
	assert.Len(t, keywords, 10)
}

func TestExtractKeywords_LowercasesAndIgnoresShortTokens(t *testing.T) {
	keywords := extractKeywords("Budget BUDGET b u d", 10)
	assert.Equal(t, []string{"budget"}, keywords)
}
