package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquaman122/auto-report/internal/models"
	"github.com/aquaman122/auto-report/internal/store"
	"github.com/aquaman122/auto-report/pkg/logger"
)

func meetingFixture() *models.StructuredMeeting {
	return &models.StructuredMeeting{
		MeetingInfo: models.MeetingInfo{
			Title:         "주간 기획 회의",
			EstimatedDate: "2026-03-13",
			Location:      "3층 회의실",
			MeetingType:   "정기회의",
		},
		Participants: []models.Participant{
			{Name: "김철수", Department: "기획팀", Role: "팀장", SpeakingFrequency: models.FrequencyHigh},
			{Name: "이영희", SpeakingFrequency: models.FrequencyLow},
		},
		Agendas: []models.Agenda{
			{
				Title:      "예산 검토",
				Discussion: "분기 예산 초안을 검토했다.",
				Decisions:  "초안 승인",
				ActionItems: []models.ActionItem{
					{Task: "보고서 제출", Assignee: "이영희", Priority: models.PriorityHigh},
					{Task: "외주 견적 요청", Assignee: "김철수", Priority: models.PriorityMedium},
				},
			},
		},
	}
}

func newMeetingRouter(t *testing.T) (*gin.Engine, *store.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := store.NewMemoryStore()
	h := NewMeetingHandler(db, logger.NewTestLogger())

	r := gin.New()
	meeting := r.Group("/api/meeting")
	{
		meeting.GET("", h.List)
		meeting.POST("", h.Create)
		meeting.GET("/stats/overview", h.Stats)
		meeting.GET("/:id", h.Get)
		meeting.PUT("/:id", h.Update)
		meeting.DELETE("/:id", h.Delete)
		meeting.PATCH("/:id/approval", h.UpdateApproval)
		meeting.GET("/:id/actions", h.GetActionItems)
		meeting.PATCH("/actions/:actionId", h.UpdateActionItem)
	}
	return r, db
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, Envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func TestMeetingCreate(t *testing.T) {
	r, db := newMeetingRouter(t)

	w, env := doJSON(t, r, http.MethodPost, "/api/meeting", gin.H{"meeting_data": meetingFixture()})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "회의가 생성되었습니다", env.Message)

	meetings, err := db.ListMeetings(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, meetings, 1)
	assert.Equal(t, "주간 기획 회의", meetings[0].Title)
}

func TestMeetingCreate_MissingData(t *testing.T) {
	r, _ := newMeetingRouter(t)

	w, env := doJSON(t, r, http.MethodPost, "/api/meeting", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "회의 데이터가 필요합니다", env.Message)
}

func TestMeetingCreate_InvalidData(t *testing.T) {
	r, _ := newMeetingRouter(t)

	w, env := doJSON(t, r, http.MethodPost, "/api/meeting", gin.H{
		"meeting_data": &models.StructuredMeeting{},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "유효하지 않은 회의 데이터입니다", env.Message)
}

func TestMeetingGet(t *testing.T) {
	r, db := newMeetingRouter(t)
	saved, err := db.SaveMeeting(context.Background(), meetingFixture(), nil)
	require.NoError(t, err)

	w, env := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/meeting/%d", saved.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)

	data, ok := env.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "주간 기획 회의", data["meeting_title"])
}

func TestMeetingGet_NotFound(t *testing.T) {
	r, _ := newMeetingRouter(t)

	w, env := doJSON(t, r, http.MethodGet, "/api/meeting/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, env.Success)
	assert.NotEmpty(t, env.Error)
}

func TestMeetingGet_InvalidID(t *testing.T) {
	r, _ := newMeetingRouter(t)

	w, env := doJSON(t, r, http.MethodGet, "/api/meeting/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "유효하지 않은 ID입니다", env.Message)
}

func TestMeetingList_PaginationAndFilter(t *testing.T) {
	r, db := newMeetingRouter(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := db.SaveMeeting(ctx, meetingFixture(), nil)
		require.NoError(t, err)
	}

	w, env := doJSON(t, r, http.MethodGet, "/api/meeting?limit=2&offset=0", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	data := env.Data.(map[string]interface{})
	meetings := data["meetings"].([]interface{})
	assert.Len(t, meetings, 2)

	pagination := data["pagination"].(map[string]interface{})
	assert.Equal(t, float64(2), pagination["limit"])
	assert.Equal(t, float64(2), pagination["count"])

	filters := data["filters"].(map[string]interface{})
	assert.Equal(t, "all", filters["status"])

	_, env = doJSON(t, r, http.MethodGet, "/api/meeting?status=approved", nil)
	data = env.Data.(map[string]interface{})
	assert.Len(t, data["meetings"].([]interface{}), 0)
	filters = data["filters"].(map[string]interface{})
	assert.Equal(t, "approved", filters["status"])
}

func TestMeetingUpdate(t *testing.T) {
	r, db := newMeetingRouter(t)
	saved, err := db.SaveMeeting(context.Background(), meetingFixture(), nil)
	require.NoError(t, err)

	w, env := doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/meeting/%d", saved.ID), gin.H{
		"meeting_title": "수정된 회의",
		"location":      "본관 대회의실",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "회의 정보가 업데이트되었습니다", env.Message)

	data := env.Data.(map[string]interface{})
	assert.Equal(t, "수정된 회의", data["meeting_title"])
	assert.Equal(t, "본관 대회의실", data["location"])
}

func TestMeetingApproval(t *testing.T) {
	r, db := newMeetingRouter(t)
	saved, err := db.SaveMeeting(context.Background(), meetingFixture(), nil)
	require.NoError(t, err)

	path := fmt.Sprintf("/api/meeting/%d/approval", saved.ID)

	w, env := doJSON(t, r, http.MethodPatch, path, gin.H{"status": "archived"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "유효하지 않은 승인 상태입니다", env.Message)

	w, env = doJSON(t, r, http.MethodPatch, path, gin.H{
		"status":      models.MeetingApproved,
		"approved_by": "박부장",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "회의가 승인되었습니다", env.Message)

	data := env.Data.(map[string]interface{})
	assert.Equal(t, models.MeetingApproved, data["status"])
	assert.Equal(t, "박부장", data["approved_by"])

	_, env = doJSON(t, r, http.MethodPatch, path, gin.H{"status": models.MeetingRejected})
	assert.Equal(t, "회의가 거부되었습니다", env.Message)
}

func TestMeetingActionItems(t *testing.T) {
	r, db := newMeetingRouter(t)
	saved, err := db.SaveMeeting(context.Background(), meetingFixture(), nil)
	require.NoError(t, err)

	w, env := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/meeting/%d/actions", saved.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	data := env.Data.(map[string]interface{})
	assert.Equal(t, float64(2), data["total_count"])
	assert.Equal(t, float64(2), data["open_count"])
	assert.Equal(t, float64(0), data["completed_count"])

	items := data["action_items"].([]interface{})
	require.Len(t, items, 2)
	first := items[0].(map[string]interface{})
	actionID := int64(first["id"].(float64))

	w, env = doJSON(t, r, http.MethodPatch, fmt.Sprintf("/api/meeting/actions/%d", actionID), gin.H{
		"status": models.ActionCompleted,
		"notes":  "제출 완료",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "액션 아이템이 업데이트되었습니다", env.Message)

	updated := env.Data.(map[string]interface{})
	assert.Equal(t, models.ActionCompleted, updated["status"])
	assert.Equal(t, "제출 완료", updated["notes"])
}

func TestMeetingDelete(t *testing.T) {
	r, db := newMeetingRouter(t)
	ctx := context.Background()
	saved, err := db.SaveMeeting(ctx, meetingFixture(), nil)
	require.NoError(t, err)

	w, env := doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/meeting/%d", saved.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "회의가 삭제되었습니다", env.Message)

	_, err = db.GetMeetingByID(ctx, saved.ID)
	assert.Error(t, err)
}

func TestMeetingStats(t *testing.T) {
	r, db := newMeetingRouter(t)
	_, err := db.SaveMeeting(context.Background(), meetingFixture(), nil)
	require.NoError(t, err)

	w, env := doJSON(t, r, http.MethodGet, "/api/meeting/stats/overview", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	data := env.Data.(map[string]interface{})
	assert.Equal(t, float64(1), data["total_meetings"])
}
