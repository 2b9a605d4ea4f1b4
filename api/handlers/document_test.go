package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquaman122/auto-report/internal/agent/narrative"
	"github.com/aquaman122/auto-report/internal/renderer"
	"github.com/aquaman122/auto-report/internal/store"
	"github.com/aquaman122/auto-report/pkg/logger"
	"github.com/aquaman122/auto-report/pkg/storage/local"
)

func newDocumentRouter(t *testing.T) (*gin.Engine, *store.MemoryStore, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	summaryDir := t.TempDir()
	db := store.NewMemoryStore()
	log := logger.NewTestLogger()
	h := NewDocumentHandler(db, narrative.NewGenerator(), renderer.NewRenderer(summaryDir, log), nil, summaryDir, log)

	r := gin.New()
	document := r.Group("/api/document")
	{
		document.POST("/generate", h.Generate)
		document.GET("", h.List)
		document.GET("/templates", h.Templates)
		document.GET("/download/:fileName", h.Download)
		document.GET("/preview/:fileName", h.Preview)
		document.DELETE("/:fileName", h.Delete)
	}
	return r, db, summaryDir
}

func TestDocumentTemplates(t *testing.T) {
	r, _, _ := newDocumentRouter(t)

	w, env := doJSON(t, r, http.MethodGet, "/api/document/templates", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)

	templates := env.Data.([]interface{})
	require.Len(t, templates, 3)
	first := templates[0].(map[string]interface{})
	assert.Equal(t, "default", first["id"])
	assert.Equal(t, "기본 회의록", first["name"])
}

func TestDocumentGenerate(t *testing.T) {
	r, db, summaryDir := newDocumentRouter(t)
	saved, err := db.SaveMeeting(context.Background(), meetingFixture(), nil)
	require.NoError(t, err)

	w, env := doJSON(t, r, http.MethodPost, "/api/document/generate", gin.H{
		"meeting_id": saved.ID,
		"format":     "html",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "문서가 생성되었습니다", env.Message)

	data := env.Data.(map[string]interface{})
	documents := data["documents"].([]interface{})
	require.Len(t, documents, 1)
	doc := documents[0].(map[string]interface{})
	assert.Equal(t, "html", doc["format"])

	entries, err := os.ReadDir(summaryDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	detail, err := db.GetMeetingByID(context.Background(), saved.ID)
	require.NoError(t, err)
	require.Len(t, detail.Documents, 1)
	assert.Equal(t, "meeting_minutes", detail.Documents[0].DocumentType)
}

func TestDocumentGenerate_MissingID(t *testing.T) {
	r, _, _ := newDocumentRouter(t)

	w, env := doJSON(t, r, http.MethodPost, "/api/document/generate", gin.H{"format": "html"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "회의 ID가 필요합니다", env.Message)
}

func TestDocumentGenerate_UnknownMeeting(t *testing.T) {
	r, _, _ := newDocumentRouter(t)

	w, env := doJSON(t, r, http.MethodPost, "/api/document/generate", gin.H{"meeting_id": 77})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "회의를 찾을 수 없습니다", env.Message)
}

func TestDocumentList(t *testing.T) {
	r, _, summaryDir := newDocumentRouter(t)
	require.NoError(t, os.WriteFile(filepath.Join(summaryDir, "minutes.html"), []byte("<html></html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(summaryDir, "minutes.json"), []byte("{}"), 0o644))

	w, env := doJSON(t, r, http.MethodGet, "/api/document", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	data := env.Data.(map[string]interface{})
	assert.Equal(t, float64(2), data["count"])

	docs := data["documents"].([]interface{})
	require.Len(t, docs, 2)
	first := docs[0].(map[string]interface{})
	assert.Equal(t, "/summaries/"+first["fileName"].(string), first["url"])
}

func TestDocumentPreview_HTML(t *testing.T) {
	r, _, summaryDir := newDocumentRouter(t)
	require.NoError(t, os.WriteFile(filepath.Join(summaryDir, "minutes.html"), []byte("<html><body>회의록</body></html>"), 0o644))

	req := httptest.NewRequest(http.MethodGet, "/api/document/preview/minutes.html", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "회의록")
}

func TestDocumentPreview_JSON(t *testing.T) {
	r, _, summaryDir := newDocumentRouter(t)
	require.NoError(t, os.WriteFile(filepath.Join(summaryDir, "minutes.json"), []byte(`{"title":"회의"}`), 0o644))

	req := httptest.NewRequest(http.MethodGet, "/api/document/preview/minutes.json", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"title":"회의"}`, w.Body.String())
}

func TestDocumentDownload(t *testing.T) {
	r, _, summaryDir := newDocumentRouter(t)
	require.NoError(t, os.WriteFile(filepath.Join(summaryDir, "minutes.html"), []byte("<html></html>"), 0o644))

	req := httptest.NewRequest(http.MethodGet, "/api/document/download/minutes.html", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "minutes.html")
}

func TestDocumentDownload_FallsBackToArchive(t *testing.T) {
	gin.SetMode(gin.TestMode)

	summaryDir := t.TempDir()
	db := store.NewMemoryStore()
	log := logger.NewTestLogger()
	archive, err := local.NewLocalStorage(t.TempDir(), log)
	require.NoError(t, err)
	_, err = archive.Store(context.Background(), strings.NewReader("<html>archived</html>"), "archived.html")
	require.NoError(t, err)

	h := NewDocumentHandler(db, narrative.NewGenerator(), renderer.NewRenderer(summaryDir, log), archive, summaryDir, log)
	r := gin.New()
	r.GET("/api/document/download/:fileName", h.Download)

	req := httptest.NewRequest(http.MethodGet, "/api/document/download/archived.html", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "archived.html")
	assert.Equal(t, "<html>archived</html>", w.Body.String())
}

func TestDocumentDownload_NotFound(t *testing.T) {
	r, _, _ := newDocumentRouter(t)

	w, env := doJSON(t, r, http.MethodGet, "/api/document/download/missing.html", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "파일을 찾을 수 없습니다", env.Message)
}

func TestDocumentDelete(t *testing.T) {
	r, _, summaryDir := newDocumentRouter(t)
	path := filepath.Join(summaryDir, "minutes.html")
	require.NoError(t, os.WriteFile(path, []byte("<html></html>"), 0o644))

	w, env := doJSON(t, r, http.MethodDelete, "/api/document/minutes.html", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "문서가 삭제되었습니다", env.Message)

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestDocumentRejectsTraversal(t *testing.T) {
	r, _, _ := newDocumentRouter(t)

	w, env := doJSON(t, r, http.MethodGet, "/api/document/download/..", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
}
