package admin

import (
	"github.com/vrlab-next/internal/http/response"
	"github.com/vrlab-next/internal/repository"
	"github.com/vrlab-next/internal/service"

	"github.com/gin-gonic/gin"
)

// VirtualUserRequest 学员创建/更新请求
type VirtualUserRequest struct {
	OrganizationID uint   `json:"organization_id" binding:"required"`
	UserCode       string `json:"user_code" binding:"required"`
	Email          string `json:"email" binding:"required"`
	DisplayName    string `json:"display_name"`
	Status         string `json:"status"`
}

// ListVirtualUsers 获取学员列表
func (h *Handler) ListVirtualUsers(c *gin.Context) {
	page, pageSize := parsePagination(c)
	filter := repository.VirtualUserListFilter{
		Page:           page,
		PageSize:       pageSize,
		OrganizationID: parseUintQuery(c, "organization_id"),
		Keyword:        c.Query("keyword"),
		Status:         c.Query("status"),
	}

	users, total, err := h.VirtualUserService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, users, response.NewPagination(page, pageSize, total))
}

// GetVirtualUser 获取学员详情
func (h *Handler) GetVirtualUser(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	user, err := h.VirtualUserService.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, user)
}

// CreateVirtualUser 创建学员
func (h *Handler) CreateVirtualUser(c *gin.Context) {
	var req VirtualUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	user, err := h.VirtualUserService.Create(service.VirtualUserInput{
		OrganizationID: req.OrganizationID,
		UserCode:       req.UserCode,
		Email:          req.Email,
		DisplayName:    req.DisplayName,
		Status:         req.Status,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, user)
}

// UpdateVirtualUser 更新学员
func (h *Handler) UpdateVirtualUser(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	var req VirtualUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	user, err := h.VirtualUserService.Update(id, service.VirtualUserInput{
		OrganizationID: req.OrganizationID,
		UserCode:       req.UserCode,
		Email:          req.Email,
		DisplayName:    req.DisplayName,
		Status:         req.Status,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, user)
}

// DeleteVirtualUser 删除学员
func (h *Handler) DeleteVirtualUser(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	if err := h.VirtualUserService.Delete(id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}
