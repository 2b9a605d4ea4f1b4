package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquaman122/auto-report/internal/store"
	"github.com/aquaman122/auto-report/pkg/logger"
)

func newHealthRouter(t *testing.T, openaiKeySet bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := NewHealthHandler(store.NewMemoryStore(), nil, nil, openaiKeySet, "1.0.0", logger.NewTestLogger())
	r := gin.New()
	r.GET("/health", h.Check)
	r.GET("/health/detailed", h.Detailed)
	return r
}

func TestHealthCheck(t *testing.T) {
	r := newHealthRouter(t, true)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "1.0.0", body["version"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestHealthDetailed(t *testing.T) {
	r := newHealthRouter(t, true)

	req := httptest.NewRequest(http.MethodGet, "/health/detailed", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])

	components := body["components"].(map[string]interface{})
	database := components["database"].(map[string]interface{})
	assert.Equal(t, "up", database["status"])
	assert.Equal(t, "disabled", components["queue"].(map[string]interface{})["status"])
	assert.Equal(t, "disabled", components["wiki"].(map[string]interface{})["status"])
	assert.Equal(t, "configured", components["openai"].(map[string]interface{})["status"])
}

func TestHealthDetailed_MissingAPIKey(t *testing.T) {
	r := newHealthRouter(t, false)

	req := httptest.NewRequest(http.MethodGet, "/health/detailed", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	components := body["components"].(map[string]interface{})
	assert.Equal(t, "missing_api_key", components["openai"].(map[string]interface{})["status"])
}
