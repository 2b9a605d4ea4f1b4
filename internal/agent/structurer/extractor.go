// Package structurer adapts the chat completion provider that turns a raw
// transcript into a typed meeting structure.
package structurer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aquaman122/auto-report/config"
	"github.com/aquaman122/auto-report/internal/models"
	apperrors "github.com/aquaman122/auto-report/pkg/errors"
	"github.com/aquaman122/auto-report/pkg/logger"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	MaxTokens      int           `json:"max_tokens"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Structurer extracts a typed meeting structure from a transcript.
type Structurer interface {
	ExtractStructure(ctx context.Context, transcript string) (*models.StructuredMeeting, error)
}

type Extractor struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     logger.Logger
}

func NewExtractor(cfg *config.OpenAIConfig, log logger.Logger) *Extractor {
	return &Extractor{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.ChatModel,
		httpClient: &http.Client{
			Timeout: cfg.ChatTimeout,
		},
		logger: log,
	}
}

// ExtractStructure requests a JSON-typed completion and validates the
// parsed shape. Any parse or shape failure surfaces as a structuring
// error; callers decide whether to substitute Fallback.
func (e *Extractor) ExtractStructure(ctx context.Context, transcript string) (*models.StructuredMeeting, error) {
	e.logger.Info("Starting meeting structuring",
		logger.Int("transcriptLength", len(transcript)),
	)

	reqBody := chatRequest{
		Model: e.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf(userPromptTemplate, transcript)},
		},
		Temperature: 0.3,
		MaxTokens:   4000,
		ResponseFormat: &struct {
			Type string `json:"type"`
		}{Type: "json_object"},
	}

	content, err := e.complete(ctx, &reqBody)
	if err != nil {
		return nil, err
	}

	var structured models.StructuredMeeting
	if err := json.Unmarshal([]byte(content), &structured); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStructuring, "parse completion: %v", err)
	}
	if err := structured.Validate(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStructuring, "unexpected completion shape: %v", err)
	}
	structured.Normalize()

	e.logger.Info("Meeting structuring completed",
		logger.Int("participants", len(structured.Participants)),
		logger.Int("agendas", len(structured.Agendas)),
		logger.Float64("confidence", structured.AnalysisMetadata.ConfidenceScore),
	)

	return &structured, nil
}

func (e *Extractor) complete(ctx context.Context, body *chatRequest) (string, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrStructuring, "marshal request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		e.baseURL+"/v1/chat/completions", bytes.NewReader(data))
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrStructuring, "create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrStructuring, "request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return "", apperrors.Wrap(apperrors.ErrStructuring, "provider status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", apperrors.Wrap(apperrors.ErrStructuring, "decode response: %v", err)
	}
	if result.Error != nil {
		return "", apperrors.Wrap(apperrors.ErrStructuring, "provider error: %s", result.Error.Message)
	}
	if len(result.Choices) == 0 || strings.TrimSpace(result.Choices[0].Message.Content) == "" {
		return "", apperrors.Wrap(apperrors.ErrStructuring, "provider returned no completion")
	}

	return result.Choices[0].Message.Content, nil
}

var _ Structurer = (*Extractor)(nil)
