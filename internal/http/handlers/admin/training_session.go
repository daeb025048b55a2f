package admin

import (
	"time"

	"github.com/vrlab-next/internal/http/response"
	"github.com/vrlab-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListTrainingSessions 获取训练会话列表
func (h *Handler) ListTrainingSessions(c *gin.Context) {
	page, pageSize := parsePagination(c)
	filter := repository.TrainingSessionListFilter{
		Page:          page,
		PageSize:      pageSize,
		VirtualUserID: parseUintQuery(c, "virtual_user_id"),
		CourseID:      parseUintQuery(c, "course_id"),
		ModuleID:      parseUintQuery(c, "module_id"),
		DeviceID:      parseUintQuery(c, "device_id"),
		PassedOnly:    c.Query("passed") == "true",
		FailedOnly:    c.Query("passed") == "false",
		StartedFrom:   parseTimeQuery(c, "started_from"),
		StartedTo:     parseTimeQuery(c, "started_to"),
	}

	sessions, total, err := h.TelemetryService.ListSessions(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, sessions, response.NewPagination(page, pageSize, total))
}

// GetTrainingSession 获取训练会话详情（含遥测事件）
func (h *Handler) GetTrainingSession(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	session, err := h.TelemetryService.GetSession(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, session)
}

func parseTimeQuery(c *gin.Context, name string) *time.Time {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t
	}
	return nil
}
