package admin

import (
	"github.com/vrlab-next/internal/http/response"
	"github.com/vrlab-next/internal/repository"
	"github.com/vrlab-next/internal/service"

	"github.com/gin-gonic/gin"
)

// DeviceRequest 设备登记/更新请求
type DeviceRequest struct {
	SerialNo        string `json:"serial_no" binding:"required"`
	Name            string `json:"name"`
	Model           string `json:"model"`
	FirmwareVersion string `json:"firmware_version"`
	OrganizationID  *uint  `json:"organization_id"`
	Status          string `json:"status"`
}

// ListDevices 获取设备列表
func (h *Handler) ListDevices(c *gin.Context) {
	page, pageSize := parsePagination(c)
	filter := repository.DeviceListFilter{
		Page:           page,
		PageSize:       pageSize,
		OrganizationID: parseUintQuery(c, "organization_id"),
		Keyword:        c.Query("keyword"),
		Status:         c.Query("status"),
	}

	devices, total, err := h.DeviceService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, devices, response.NewPagination(page, pageSize, total))
}

// GetDevice 获取设备详情
func (h *Handler) GetDevice(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	device, err := h.DeviceService.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, device)
}

// CreateDevice 登记设备
func (h *Handler) CreateDevice(c *gin.Context) {
	var req DeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	device, err := h.DeviceService.Create(service.DeviceInput{
		SerialNo:        req.SerialNo,
		Name:            req.Name,
		Model:           req.Model,
		FirmwareVersion: req.FirmwareVersion,
		OrganizationID:  req.OrganizationID,
		Status:          req.Status,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, device)
}

// UpdateDevice 更新设备
func (h *Handler) UpdateDevice(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	var req DeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	device, err := h.DeviceService.Update(id, service.DeviceInput{
		SerialNo:        req.SerialNo,
		Name:            req.Name,
		Model:           req.Model,
		FirmwareVersion: req.FirmwareVersion,
		OrganizationID:  req.OrganizationID,
		Status:          req.Status,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, device)
}

// DeleteDevice 删除设备
func (h *Handler) DeleteDevice(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	if err := h.DeviceService.Delete(id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}
