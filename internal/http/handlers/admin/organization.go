package admin

import (
	"github.com/vrlab-next/internal/http/response"
	"github.com/vrlab-next/internal/repository"
	"github.com/vrlab-next/internal/service"

	"github.com/gin-gonic/gin"
)

// OrganizationRequest 机构创建/更新请求
type OrganizationRequest struct {
	Name         string `json:"name" binding:"required"`
	ContactEmail string `json:"contact_email"`
	Status       string `json:"status"`
}

// ListOrganizations 获取机构列表
func (h *Handler) ListOrganizations(c *gin.Context) {
	page, pageSize := parsePagination(c)
	filter := repository.OrganizationListFilter{
		Page:     page,
		PageSize: pageSize,
		Keyword:  c.Query("keyword"),
		Status:   c.Query("status"),
	}

	orgs, total, err := h.OrganizationService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, orgs, response.NewPagination(page, pageSize, total))
}

// GetOrganization 获取机构详情
func (h *Handler) GetOrganization(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	org, err := h.OrganizationService.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, org)
}

// CreateOrganization 创建机构
func (h *Handler) CreateOrganization(c *gin.Context) {
	var req OrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	org, err := h.OrganizationService.Create(service.OrganizationInput{
		Name:         req.Name,
		ContactEmail: req.ContactEmail,
		Status:       req.Status,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, org)
}

// UpdateOrganization 更新机构
func (h *Handler) UpdateOrganization(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	var req OrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	org, err := h.OrganizationService.Update(id, service.OrganizationInput{
		Name:         req.Name,
		ContactEmail: req.ContactEmail,
		Status:       req.Status,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, org)
}

// DeleteOrganization 删除机构
func (h *Handler) DeleteOrganization(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	if err := h.OrganizationService.Delete(id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}
