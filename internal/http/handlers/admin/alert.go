package admin

import (
	"github.com/vrlab-next/internal/http/response"
	"github.com/vrlab-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListAlerts 获取告警列表
func (h *Handler) ListAlerts(c *gin.Context) {
	page, pageSize := parsePagination(c)
	filter := repository.AlertListFilter{
		Page:     page,
		PageSize: pageSize,
		Type:     c.Query("type"),
		Severity: c.Query("severity"),
		Status:   c.Query("status"),
		DeviceID: parseUintQuery(c, "device_id"),
	}

	alerts, total, err := h.AlertService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, alerts, response.NewPagination(page, pageSize, total))
}

// GetAlert 获取告警详情
func (h *Handler) GetAlert(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	alert, err := h.AlertService.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, alert)
}

// AcknowledgeAlert 确认告警
func (h *Handler) AcknowledgeAlert(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	id, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	alert, err := h.AlertService.Acknowledge(id, adminID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, alert)
}

// ResolveAlert 关闭告警
func (h *Handler) ResolveAlert(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	alert, err := h.AlertService.Resolve(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, alert)
}
