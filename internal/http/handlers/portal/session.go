package portal

import (
	"time"

	"github.com/vrlab-next/internal/http/response"
	"github.com/vrlab-next/internal/repository"
	"github.com/vrlab-next/internal/service"

	"github.com/gin-gonic/gin"
)

// TelemetryEventRequest 上报的单条遥测事件
type TelemetryEventRequest struct {
	EventType  string    `json:"event_type" binding:"required"`
	Payload    string    `json:"payload"`
	OccurredAt time.Time `json:"occurred_at" binding:"required"`
}

// SubmitSessionRequest 训练会话上报请求
type SubmitSessionRequest struct {
	CourseID        uint                    `json:"course_id" binding:"required"`
	ModuleID        uint                    `json:"module_id" binding:"required"`
	DeviceSerialNo  string                  `json:"device_serial_no"`
	StartedAt       time.Time               `json:"started_at" binding:"required"`
	EndedAt         time.Time               `json:"ended_at" binding:"required"`
	DurationSeconds int                     `json:"duration_seconds"`
	Score           string                  `json:"score"`
	Passed          bool                    `json:"passed"`
	Events          []TelemetryEventRequest `json:"events"`
}

// SubmitSession 学员上报训练会话
func (h *Handler) SubmitSession(c *gin.Context) {
	learnerID, ok := getLearnerID(c)
	if !ok {
		return
	}

	var req SubmitSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	events := make([]service.TelemetryEventInput, 0, len(req.Events))
	for _, event := range req.Events {
		events = append(events, service.TelemetryEventInput{
			EventType:  event.EventType,
			Payload:    event.Payload,
			OccurredAt: event.OccurredAt,
		})
	}

	session, err := h.TelemetryService.SubmitSession(service.SubmitSessionInput{
		VirtualUserID:   learnerID,
		CourseID:        req.CourseID,
		ModuleID:        req.ModuleID,
		DeviceSerialNo:  req.DeviceSerialNo,
		StartedAt:       req.StartedAt,
		EndedAt:         req.EndedAt,
		DurationSeconds: req.DurationSeconds,
		Score:           req.Score,
		Passed:          req.Passed,
		Events:          events,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, session)
}

// ListMySessions 分页查询当前学员的训练会话
func (h *Handler) ListMySessions(c *gin.Context) {
	learnerID, ok := getLearnerID(c)
	if !ok {
		return
	}
	page, pageSize := parsePagination(c)

	sessions, total, err := h.TelemetryService.ListSessions(repository.TrainingSessionListFilter{
		VirtualUserID: learnerID,
		Page:          page,
		PageSize:      pageSize,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, sessions, response.NewPagination(page, pageSize, total))
}

// GetMySession 获取当前学员的单个训练会话详情
func (h *Handler) GetMySession(c *gin.Context) {
	learnerID, ok := getLearnerID(c)
	if !ok {
		return
	}
	sessionID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	session, err := h.TelemetryService.GetSession(sessionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if session.VirtualUserID != learnerID {
		respondError(c, response.CodeNotFound, "error.not_found", nil)
		return
	}
	response.Success(c, session)
}
