package models

import (
	"fmt"
	"strings"
)

// Speaking frequency categories returned by the structuring step.
const (
	FrequencyLow    = "low"
	FrequencyMedium = "medium"
	FrequencyHigh   = "high"
)

// Action item priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// StructuredMeeting is the typed result of the structuring step. The JSON
// tags follow the shape the completion provider is prompted to emit.
type StructuredMeeting struct {
	MeetingInfo      MeetingInfo      `json:"meeting_info"`
	Participants     []Participant    `json:"participants"`
	Agendas          []Agenda         `json:"agendas"`
	KeyOutcomes      KeyOutcomes      `json:"key_outcomes"`
	AnalysisMetadata AnalysisMetadata `json:"analysis_metadata"`
}

type MeetingInfo struct {
	Title              string `json:"title"`
	EstimatedDate      string `json:"estimated_date"`
	EstimatedStartTime string `json:"estimated_start_time"`
	EstimatedEndTime   string `json:"estimated_end_time"`
	Location           string `json:"location"`
	MeetingType        string `json:"meeting_type"`
}

type Participant struct {
	Name              string   `json:"name"`
	Department        string   `json:"department"`
	Role              string   `json:"role"`
	SpeakingFrequency string   `json:"speaking_frequency"`
	KeyContributions  []string `json:"key_contributions"`
}

type Agenda struct {
	Order       int          `json:"order"`
	Title       string       `json:"title"`
	Discussion  string       `json:"discussion"`
	KeyPoints   []string     `json:"key_points"`
	Decisions   string       `json:"decisions"`
	ActionItems []ActionItem `json:"action_items"`
}

type ActionItem struct {
	Task     string `json:"task"`
	Assignee string `json:"assignee"`
	Deadline string `json:"deadline"`
	Priority string `json:"priority"`
}

type KeyOutcomes struct {
	MainDecisions        []string `json:"main_decisions"`
	UnresolvedIssues     []string `json:"unresolved_issues"`
	NextMeetingItems     []string `json:"next_meeting_items"`
	OverallSentiment     string   `json:"overall_sentiment"`
	MeetingEffectiveness string   `json:"meeting_effectiveness"`
}

type AnalysisMetadata struct {
	ConfidenceScore       float64  `json:"confidence_score"`
	ProcessingNotes       string   `json:"processing_notes"`
	PotentialImprovements []string `json:"potential_improvements"`
}

// Validate checks that a parsed completion matches the expected shape.
// The structuring adapter rejects anything failing here instead of
// propagating an unchecked object downstream.
func (m *StructuredMeeting) Validate() error {
	if strings.TrimSpace(m.MeetingInfo.Title) == "" && len(m.Agendas) == 0 {
		return fmt.Errorf("missing meeting title and agendas")
	}
	for i, p := range m.Participants {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("participant %d: missing name", i)
		}
	}
	for i, a := range m.Agendas {
		if strings.TrimSpace(a.Title) == "" {
			return fmt.Errorf("agenda %d: missing title", i)
		}
		for j, item := range a.ActionItems {
			if strings.TrimSpace(item.Task) == "" {
				return fmt.Errorf("agenda %d: action item %d: missing task", i, j)
			}
		}
	}
	return nil
}

// Normalize clamps enum-like fields to known values and fills defaults
// so downstream consumers never see free-form variants.
func (m *StructuredMeeting) Normalize() {
	for i := range m.Participants {
		switch m.Participants[i].SpeakingFrequency {
		case FrequencyLow, FrequencyMedium, FrequencyHigh:
		default:
			m.Participants[i].SpeakingFrequency = FrequencyMedium
		}
	}
	for i := range m.Agendas {
		if m.Agendas[i].Order == 0 {
			m.Agendas[i].Order = i + 1
		}
		for j := range m.Agendas[i].ActionItems {
			item := &m.Agendas[i].ActionItems[j]
			switch item.Priority {
			case PriorityLow, PriorityMedium, PriorityHigh:
			default:
				item.Priority = PriorityMedium
			}
			if strings.TrimSpace(item.Assignee) == "" {
				item.Assignee = "unassigned"
			}
		}
	}
}

// AllActionItems flattens action items across agendas in agenda order.
func (m *StructuredMeeting) AllActionItems() []ActionItem {
	var items []ActionItem
	for _, a := range m.Agendas {
		items = append(items, a.ActionItems...)
	}
	return items
}

// ParticipantNames joins participant names for summary responses.
func (m *StructuredMeeting) ParticipantNames() string {
	names := make([]string, 0, len(m.Participants))
	for _, p := range m.Participants {
		names = append(names, p.Name)
	}
	return strings.Join(names, ", ")
}
