package portal

import (
	"github.com/vrlab-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// HeartbeatRequest 设备心跳上报请求
type HeartbeatRequest struct {
	SerialNo        string `json:"serial_no" binding:"required"`
	FirmwareVersion string `json:"firmware_version"`
}

// Heartbeat 设备心跳上报
func (h *Handler) Heartbeat(c *gin.Context) {
	var req HeartbeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	device, err := h.DeviceService.Heartbeat(req.SerialNo, req.FirmwareVersion)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{
		"id":           device.ID,
		"serial_no":    device.SerialNo,
		"status":       device.Status,
		"last_seen_at": device.LastSeenAt,
	})
}
