package admin

import (
	"github.com/vrlab-next/internal/http/response"
	"github.com/vrlab-next/internal/repository"
	"github.com/vrlab-next/internal/service"

	"github.com/gin-gonic/gin"
)

// AssignCourseRequest 分配课程请求
type AssignCourseRequest struct {
	VirtualUserID uint `json:"virtual_user_id" binding:"required"`
	CourseID      uint `json:"course_id" binding:"required"`
}

// ListEnrollments 获取选课记录列表
func (h *Handler) ListEnrollments(c *gin.Context) {
	page, pageSize := parsePagination(c)
	filter := repository.EnrollmentListFilter{
		Page:          page,
		PageSize:      pageSize,
		VirtualUserID: parseUintQuery(c, "virtual_user_id"),
		CourseID:      parseUintQuery(c, "course_id"),
		Status:        c.Query("status"),
	}

	enrollments, total, err := h.EnrollmentService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, enrollments, response.NewPagination(page, pageSize, total))
}

// GetEnrollment 获取选课记录详情
func (h *Handler) GetEnrollment(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	enrollment, err := h.EnrollmentService.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, enrollment)
}

// AssignCourse 将课程分配给学员
func (h *Handler) AssignCourse(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}

	var req AssignCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	enrollment, err := h.EnrollmentService.Assign(service.AssignInput{
		VirtualUserID: req.VirtualUserID,
		CourseID:      req.CourseID,
		AssignedBy:    &adminID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, enrollment)
}

// RevokeEnrollment 撤销课程分配
func (h *Handler) RevokeEnrollment(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	if err := h.EnrollmentService.Revoke(id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}
