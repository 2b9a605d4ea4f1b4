package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/aquaman122/auto-report/internal/models"
	"github.com/aquaman122/auto-report/internal/store"
	apperrors "github.com/aquaman122/auto-report/pkg/errors"
	"github.com/aquaman122/auto-report/pkg/logger"
)

type MeetingHandler struct {
	store  store.Store
	logger logger.Logger
}

func NewMeetingHandler(db store.Store, log logger.Logger) *MeetingHandler {
	return &MeetingHandler{store: db, logger: log}
}

// List returns meetings newest first with optional status filtering.
func (h *MeetingHandler) List(c *gin.Context) {
	limit := queryInt(c, "limit", 20)
	offset := queryInt(c, "offset", 0)
	status := c.Query("status")

	meetings, err := h.store.ListMeetings(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err, "회의 목록 조회에 실패했습니다")
		return
	}

	if status != "" {
		filtered := meetings[:0]
		for _, m := range meetings {
			if m.Status == status {
				filtered = append(filtered, m)
			}
		}
		meetings = filtered
	}

	filter := status
	if filter == "" {
		filter = "all"
	}

	respondOK(c, "", gin.H{
		"meetings": meetings,
		"pagination": gin.H{
			"limit":  limit,
			"offset": offset,
			"count":  len(meetings),
		},
		"filters": gin.H{"status": filter},
	})
}

// Get returns one meeting with participants, agendas, documents and
// analysis.
func (h *MeetingHandler) Get(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, err, "유효하지 않은 ID입니다")
		return
	}

	meeting, err := h.store.GetMeetingByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "회의 상세 조회에 실패했습니다")
		return
	}
	respondOK(c, "", meeting)
}

type createMeetingRequest struct {
	MeetingData *models.StructuredMeeting `json:"meeting_data"`
}

// Create saves a manually supplied meeting structure without an audio
// file.
func (h *MeetingHandler) Create(c *gin.Context) {
	var req createMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.MeetingData == nil {
		respondStatus(c, 400, "회의 데이터가 필요합니다")
		return
	}

	if err := req.MeetingData.Validate(); err != nil {
		respondError(c, apperrors.Wrap(apperrors.ErrValidation, "%v", err), "유효하지 않은 회의 데이터입니다")
		return
	}
	req.MeetingData.Normalize()

	meeting, err := h.store.SaveMeeting(c.Request.Context(), req.MeetingData, nil)
	if err != nil {
		respondError(c, err, "회의 생성에 실패했습니다")
		return
	}
	respondCreated(c, "회의가 생성되었습니다", meeting)
}

// Update applies partial changes to the meeting row.
func (h *MeetingHandler) Update(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, err, "유효하지 않은 ID입니다")
		return
	}

	var update store.MeetingUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		respondStatus(c, 400, "유효하지 않은 요청입니다")
		return
	}

	meeting, err := h.store.UpdateMeeting(c.Request.Context(), id, update)
	if err != nil {
		respondError(c, err, "회의 수정에 실패했습니다")
		return
	}
	respondOK(c, "회의 정보가 업데이트되었습니다", meeting)
}

// Delete removes the meeting and its child rows.
func (h *MeetingHandler) Delete(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, err, "유효하지 않은 ID입니다")
		return
	}

	if err := h.store.DeleteMeeting(c.Request.Context(), id); err != nil {
		respondError(c, err, "회의 삭제에 실패했습니다")
		return
	}
	respondOK(c, "회의가 삭제되었습니다", nil)
}

type approvalRequest struct {
	Status     string `json:"status"`
	ApprovedBy string `json:"approved_by"`
}

// UpdateApproval moves a meeting to approved or rejected.
func (h *MeetingHandler) UpdateApproval(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, err, "유효하지 않은 ID입니다")
		return
	}

	var req approvalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondStatus(c, 400, "유효하지 않은 요청입니다")
		return
	}
	if req.Status != models.MeetingApproved && req.Status != models.MeetingRejected {
		respondStatus(c, 400, "유효하지 않은 승인 상태입니다")
		return
	}

	meeting, err := h.store.UpdateApproval(c.Request.Context(), id, req.Status, req.ApprovedBy)
	if err != nil {
		respondError(c, err, "승인 상태 업데이트에 실패했습니다")
		return
	}

	message := "회의가 승인되었습니다"
	if req.Status == models.MeetingRejected {
		message = "회의가 거부되었습니다"
	}
	respondOK(c, message, meeting)
}

// GetActionItems returns the meeting's action items with counts.
func (h *MeetingHandler) GetActionItems(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, err, "유효하지 않은 ID입니다")
		return
	}

	summary, err := h.store.GetActionItems(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "액션 아이템 조회에 실패했습니다")
		return
	}
	respondOK(c, "", summary)
}

// UpdateActionItem applies partial changes to one action item.
func (h *MeetingHandler) UpdateActionItem(c *gin.Context) {
	actionID, err := paramID(c, "actionId")
	if err != nil {
		respondError(c, err, "유효하지 않은 ID입니다")
		return
	}

	var update store.ActionItemUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		respondStatus(c, 400, "유효하지 않은 요청입니다")
		return
	}

	item, err := h.store.UpdateActionItem(c.Request.Context(), actionID, update)
	if err != nil {
		respondError(c, err, "액션 아이템 업데이트에 실패했습니다")
		return
	}
	respondOK(c, "액션 아이템이 업데이트되었습니다", item)
}

// Stats returns meeting statistics.
func (h *MeetingHandler) Stats(c *gin.Context) {
	stats, err := h.store.GetStatistics(c.Request.Context())
	if err != nil {
		respondError(c, err, "통계 조회에 실패했습니다")
		return
	}
	respondOK(c, "", stats)
}
