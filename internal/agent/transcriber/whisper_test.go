package transcriber

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquaman122/auto-report/config"
	apperrors "github.com/aquaman122/auto-report/pkg/errors"
	"github.com/aquaman122/auto-report/pkg/logger"
)

func newTestClient(baseURL string) *WhisperClient {
	return NewWhisperClient(&config.OpenAIConfig{
		APIKey:            "test-key",
		BaseURL:           baseURL,
		WhisperModel:      "whisper-1",
		Language:          "ko",
		TranscribeTimeout: 5 * time.Second,
	}, logger.NewTestLogger())
}

func writeTempAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "meeting.mp3")
	require.NoError(t, os.WriteFile(path, []byte("fake audio bytes"), 0o644))
	return path
}

func TestTranscribe_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/audio/transcriptions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		assert.Equal(t, "ko", r.FormValue("language"))
		assert.Equal(t, "verbose_json", r.FormValue("response_format"))

		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		assert.Equal(t, "meeting.mp3", header.Filename)

		w.Write([]byte(`{"text": "오늘 회의를 시작하겠습니다", "language": "korean", "duration": 12.5}`))
	}))
	defer srv.Close()

	result, err := newTestClient(srv.URL).Transcribe(context.Background(), writeTempAudio(t), "")
	require.NoError(t, err)

	assert.Equal(t, "오늘 회의를 시작하겠습니다", result.Text)
	assert.Equal(t, 12.5, result.Duration)
	assert.Equal(t, 2, result.WordCount())
}

func TestTranscribe_LanguageOverride(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "en", r.FormValue("language"))
		w.Write([]byte(`{"text": "hello", "duration": 1}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Transcribe(context.Background(), writeTempAudio(t), "en")
	require.NoError(t, err)
}

func TestTranscribe_EmptyTranscriptIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"text": "   ", "duration": 3}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Transcribe(context.Background(), writeTempAudio(t), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrTranscription)
	assert.Contains(t, err.Error(), "empty transcript")
}

func TestTranscribe_ProviderErrorMessageSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"message": "invalid file format", "type": "invalid_request_error"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Transcribe(context.Background(), writeTempAudio(t), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrTranscription)
	assert.Contains(t, err.Error(), "invalid file format")
}

func TestTranscribe_MissingFile(t *testing.T) {
	_, err := newTestClient("http://localhost:1").Transcribe(context.Background(), "/nonexistent/audio.mp3", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrTranscription)
}
