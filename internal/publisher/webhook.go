package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aquaman122/auto-report/config"
	"github.com/aquaman122/auto-report/pkg/logger"
)

// ReportPayload is the webhook body sent to n8n after a meeting has
// been processed end to end.
type ReportPayload struct {
	Title        string   `json:"title"`
	Date         string   `json:"date"`
	Place        string   `json:"place,omitempty"`
	Participants []string `json:"participants"`

	ReportFileName string `json:"report_filename,omitempty"`
	ReportFilePath string `json:"report_filepath,omitempty"`
	AudioFileName  string `json:"audio_filename,omitempty"`

	Content       string `json:"content"`
	Transcription string `json:"transcription,omitempty"`
	Summary       string `json:"summary,omitempty"`

	Metadata ReportMetadata `json:"metadata"`

	StructuredData *ReportStructuredData `json:"structured_data,omitempty"`
}

type ReportMetadata struct {
	GeneratedAt   time.Time `json:"generated_at"`
	SystemVersion string    `json:"system_version"`
	AudioDuration float64   `json:"audio_duration,omitempty"`
}

type ReportStructuredData struct {
	MainTopics       []string `json:"main_topics"`
	Decisions        []string `json:"decisions"`
	ActionItems      []string `json:"action_items"`
	NextMeetingItems []string `json:"next_meeting_items"`
	MeetingType      string   `json:"meeting_type"`
	SentimentScore   float64  `json:"sentiment_score"`
}

// NotifyResult reports the webhook delivery outcome. Delivery failures
// never fail the pipeline, so errors come back in the result instead of
// an error return.
type NotifyResult struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"status_code,omitempty"`
	Attempts   int    `json:"attempts"`
	Error      string `json:"error,omitempty"`
}

// Notifier delivers report payloads to the configured n8n webhook with
// a fixed retry schedule.
type Notifier struct {
	url        string
	attempts   int
	retryDelay time.Duration
	httpClient *http.Client
	logger     logger.Logger
	sleep      func(time.Duration)
}

func NewNotifier(cfg *config.PublisherConfig, log logger.Logger) *Notifier {
	return &Notifier{
		url:        cfg.WebhookURL,
		attempts:   cfg.RetryAttempts,
		retryDelay: cfg.RetryDelay,
		httpClient: &http.Client{
			Timeout: cfg.WebhookTimeout,
		},
		logger: log,
		sleep:  time.Sleep,
	}
}

// Enabled reports whether a webhook URL is configured.
func (n *Notifier) Enabled() bool {
	return n.url != ""
}

// Notify posts the payload, retrying up to the configured attempt count
// with a fixed delay between tries.
func (n *Notifier) Notify(ctx context.Context, payload *ReportPayload) *NotifyResult {
	if !n.Enabled() {
		n.logger.Warn("Webhook URL not configured, skipping delivery")
		return &NotifyResult{Success: false, Error: "webhook URL not configured"}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return &NotifyResult{Success: false, Error: "encoding payload: " + err.Error()}
	}

	var lastErr string
	for attempt := 1; attempt <= n.attempts; attempt++ {
		status, err := n.post(ctx, body)
		if err == nil {
			n.logger.Info("Webhook delivered",
				logger.Int("attempt", attempt),
				logger.Int("status", status),
			)
			return &NotifyResult{Success: true, StatusCode: status, Attempts: attempt}
		}

		lastErr = err.Error()
		n.logger.Warn("Webhook delivery failed",
			logger.Int("attempt", attempt),
			logger.Int("max_attempts", n.attempts),
			logger.Error(err),
		)

		if attempt < n.attempts {
			select {
			case <-ctx.Done():
				return &NotifyResult{Success: false, Attempts: attempt, Error: ctx.Err().Error()}
			default:
			}
			n.sleep(n.retryDelay)
		}
	}

	return &NotifyResult{Success: false, Attempts: n.attempts, Error: lastErr}
}

// Ping sends a small probe payload for health checks.
func (n *Notifier) Ping(ctx context.Context) *NotifyResult {
	if !n.Enabled() {
		return &NotifyResult{Success: false, Error: "webhook URL not configured"}
	}
	body, _ := json.Marshal(map[string]interface{}{
		"type":      "ping",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
	status, err := n.post(ctx, body)
	if err != nil {
		return &NotifyResult{Success: false, Attempts: 1, Error: err.Error()}
	}
	return &NotifyResult{Success: true, StatusCode: status, Attempts: 1}
}

func (n *Notifier) post(ctx context.Context, body []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "auto-report/1.0")
	req.Header.Set("X-Custom-Source", "auto-report")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return resp.StatusCode, &statusError{code: resp.StatusCode}
	}
	return resp.StatusCode, nil
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("webhook returned status %d", e.code)
}
