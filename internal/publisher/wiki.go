// Package publisher pushes finished meeting minutes to external
// destinations: a wiki space and an n8n automation webhook.
package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aquaman122/auto-report/config"
	"github.com/aquaman122/auto-report/internal/models"
	apperrors "github.com/aquaman122/auto-report/pkg/errors"
	"github.com/aquaman122/auto-report/pkg/logger"
)

// WikiPage is the created page reference returned to callers.
type WikiPage struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	PageID string `json:"page_id"`
}

type WikiPublisher struct {
	baseURL    string
	apiToken   string
	spaceKey   string
	username   string
	httpClient *http.Client
	logger     logger.Logger
}

func NewWikiPublisher(cfg *config.PublisherConfig, log logger.Logger) *WikiPublisher {
	return &WikiPublisher{
		baseURL:  strings.TrimRight(cfg.WikiBaseURL, "/"),
		apiToken: cfg.WikiAPIToken,
		spaceKey: cfg.WikiSpaceKey,
		username: cfg.WikiUsername,
		httpClient: &http.Client{
			Timeout: cfg.WikiTimeout,
		},
		logger: log,
	}
}

// Enabled reports whether the wiki destination is configured.
func (w *WikiPublisher) Enabled() bool {
	return w.baseURL != "" && w.apiToken != ""
}

// Check verifies the wiki endpoint accepts our token.
func (w *WikiPublisher) Check(ctx context.Context) error {
	if !w.Enabled() {
		return apperrors.Wrap(apperrors.ErrPublication, "wiki is not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.baseURL+"/api/spaces", nil)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrPublication, "building wiki request: %v", err)
	}
	w.setHeaders(req)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrPublication, "wiki connection failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apperrors.Wrap(apperrors.ErrPublication, "wiki returned status %d", resp.StatusCode)
	}
	return nil
}

type wikiCreateRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Format  string `json:"format"`
	Author  string `json:"author"`
}

type wikiCreateResponse struct {
	ID      string `json:"id"`
	HTMLURL string `json:"html_url"`
}

// Publish creates a wiki page for the meeting and returns its reference.
func (w *WikiPublisher) Publish(ctx context.Context, meeting *models.MeetingDetail, minutesText string) (*WikiPage, error) {
	if !w.Enabled() {
		return nil, apperrors.Wrap(apperrors.ErrPublication, "wiki is not configured")
	}

	title := fmt.Sprintf("회의록_%s_%d", meeting.MeetingDate, meeting.ID)
	body, err := json.Marshal(wikiCreateRequest{
		Title:   title,
		Content: wikiMarkdown(meeting, minutesText),
		Format:  "markdown",
		Author:  w.username,
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPublication, "encoding wiki page: %v", err)
	}

	url := fmt.Sprintf("%s/api/spaces/%s/pages", w.baseURL, w.spaceKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPublication, "building wiki request: %v", err)
	}
	w.setHeaders(req)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPublication, "creating wiki page: %v", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, apperrors.Wrap(apperrors.ErrPublication, "wiki returned status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var created wikiCreateResponse
	if err := json.Unmarshal(respBody, &created); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPublication, "decoding wiki response: %v", err)
	}

	w.logger.Info("Wiki page created",
		logger.Int64("meeting_id", meeting.ID),
		logger.String("title", title),
		logger.String("url", created.HTMLURL),
	)

	return &WikiPage{Title: title, URL: created.HTMLURL, PageID: created.ID}, nil
}

func (w *WikiPublisher) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+w.apiToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "auto-report/1.0")
}

// wikiMarkdown renders the page body. The layout mirrors the minutes
// document so the wiki copy reads the same as the downloadable one.
func wikiMarkdown(meeting *models.MeetingDetail, minutesText string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", meeting.Title)
	b.WriteString("## 회의 정보\n")
	fmt.Fprintf(&b, "- 날짜: %s\n", meeting.MeetingDate)
	if meeting.Location != "" {
		fmt.Fprintf(&b, "- 장소: %s\n", meeting.Location)
	}
	fmt.Fprintf(&b, "- 유형: %s\n\n", meeting.MeetingType)

	if len(meeting.Participants) > 0 {
		b.WriteString("## 참석자\n")
		for _, p := range meeting.Participants {
			fmt.Fprintf(&b, "- %s", p.Name)
			if p.Department != "" {
				fmt.Fprintf(&b, " (%s)", p.Department)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("## 회의록\n\n")
	b.WriteString(minutesText)
	b.WriteString("\n\n---\n*자동 생성된 회의록입니다.*\n")

	fmt.Fprintf(&b, "*작성일: %s*\n", time.Now().Format("2006-01-02"))
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
