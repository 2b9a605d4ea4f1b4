package publisher

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquaman122/auto-report/config"
	"github.com/aquaman122/auto-report/pkg/logger"
)

func newTestNotifier(url string) *Notifier {
	n := NewNotifier(&config.PublisherConfig{
		WebhookURL:     url,
		WebhookTimeout: 5 * time.Second,
		RetryAttempts:  3,
		RetryDelay:     2 * time.Second,
	}, logger.NewTestLogger())
	n.sleep = func(time.Duration) {}
	return n
}

func testReport() *ReportPayload {
	return &ReportPayload{
		Title:        "주간 회의",
		Date:         "2026-03-13",
		Participants: []string{"김철수", "이영희"},
		Content:      "회의록 본문",
	}
}

func TestNotify_Success(t *testing.T) {
	var got ReportPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "auto-report", r.Header.Get("X-Custom-Source"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	result := newTestNotifier(srv.URL).Notify(context.Background(), testReport())

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, "주간 회의", got.Title)
	assert.Equal(t, []string{"김철수", "이영희"}, got.Participants)
}

func TestNotify_RetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	result := newTestNotifier(srv.URL).Notify(context.Background(), testReport())

	assert.True(t, result.Success)
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, int32(3), calls.Load())
}

func TestNotify_ExhaustedAttemptsReturnsFailureNotError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	result := newTestNotifier(srv.URL).Notify(context.Background(), testReport())

	assert.False(t, result.Success)
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, int32(3), calls.Load())
	assert.Contains(t, result.Error, "status 500")
}

func TestNotify_NotConfigured(t *testing.T) {
	n := newTestNotifier("")
	assert.False(t, n.Enabled())

	result := n.Notify(context.Background(), testReport())
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "not configured")
}

func TestNotify_CancelledContextStopsRetrying(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	n := newTestNotifier(srv.URL)
	n.sleep = func(time.Duration) { cancel() }

	// Cancel lands between the first failure and the second attempt.
	first := n.Notify(ctx, testReport())
	assert.False(t, first.Success)
	assert.LessOrEqual(t, calls.Load(), int32(3))
}

func TestPing_ReportsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ping", body["type"])
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	result := newTestNotifier(srv.URL).Ping(context.Background())
	assert.True(t, result.Success)
}
