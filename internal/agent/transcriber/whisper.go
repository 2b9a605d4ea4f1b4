// Package transcriber adapts the OpenAI Whisper speech-to-text API.
package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/aquaman122/auto-report/config"
	apperrors "github.com/aquaman122/auto-report/pkg/errors"
	"github.com/aquaman122/auto-report/pkg/logger"
)

type Word struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type Segment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcription is the verbose_json transcription result.
type Transcription struct {
	Text     string    `json:"text"`
	Language string    `json:"language"`
	Duration float64   `json:"duration"`
	Words    []Word    `json:"words"`
	Segments []Segment `json:"segments"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Transcriber converts an audio file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, language string) (*Transcription, error)
}

type WhisperClient struct {
	baseURL    string
	apiKey     string
	model      string
	language   string
	httpClient *http.Client
	logger     logger.Logger
}

func NewWhisperClient(cfg *config.OpenAIConfig, log logger.Logger) *WhisperClient {
	return &WhisperClient{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		model:    cfg.WhisperModel,
		language: cfg.Language,
		httpClient: &http.Client{
			Timeout: cfg.TranscribeTimeout,
		},
		logger: log,
	}
}

// Transcribe sends the audio file to the transcription endpoint. An empty
// transcript counts as a failure even when the provider responds 200.
func (c *WhisperClient) Transcribe(ctx context.Context, audioPath, language string) (*Transcription, error) {
	if language == "" {
		language = c.language
	}

	c.logger.Info("Starting transcription",
		logger.String("file", filepath.Base(audioPath)),
		logger.String("language", language),
	)

	f, err := os.Open(audioPath)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrTranscription, "open audio file: %v", err)
	}
	defer f.Close()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	part, err := mw.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrTranscription, "build request: %v", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrTranscription, "read audio file: %v", err)
	}

	fields := map[string]string{
		"model":           c.model,
		"language":        language,
		"response_format": "verbose_json",
		"temperature":     "0.1",
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrTranscription, "build request: %v", err)
		}
	}
	if err := mw.WriteField("timestamp_granularities[]", "word"); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrTranscription, "build request: %v", err)
	}
	if err := mw.Close(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrTranscription, "build request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/audio/transcriptions", body)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrTranscription, "create request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrTranscription, "request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		var apiErr apiError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, apperrors.Wrap(apperrors.ErrTranscription, "provider status %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		return nil, apperrors.Wrap(apperrors.ErrTranscription, "provider status %d", resp.StatusCode)
	}

	var result Transcription
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrTranscription, "decode response: %v", err)
	}

	if strings.TrimSpace(result.Text) == "" {
		return nil, apperrors.Wrap(apperrors.ErrTranscription, "provider returned empty transcript")
	}

	c.logger.Info("Transcription completed",
		logger.String("file", filepath.Base(audioPath)),
		logger.Int("textLength", len(result.Text)),
		logger.Float64("durationSeconds", result.Duration),
	)

	return &result, nil
}

var _ Transcriber = (*WhisperClient)(nil)

// WordCount counts whitespace-separated tokens in the transcript.
func (t *Transcription) WordCount() int {
	return len(strings.Fields(t.Text))
}

func (t *Transcription) String() string {
	return fmt.Sprintf("transcription(%d chars, %.1fs)", len(t.Text), t.Duration)
}
