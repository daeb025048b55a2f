package admin

import (
	"github.com/vrlab-next/internal/http/response"
	"github.com/vrlab-next/internal/repository"
	"github.com/vrlab-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CourseRequest 课程创建/更新请求
type CourseRequest struct {
	Title           string `json:"title" binding:"required"`
	Slug            string `json:"slug" binding:"required"`
	Description     string `json:"description"`
	CoverURL        string `json:"cover_url"`
	DurationMinutes int    `json:"duration_minutes"`
	PassingScore    string `json:"passing_score"`
	Status          string `json:"status"`
}

// CourseModuleRequest 课程模块创建/更新请求
type CourseModuleRequest struct {
	Title           string `json:"title" binding:"required"`
	SceneKey        string `json:"scene_key" binding:"required"`
	DurationMinutes int    `json:"duration_minutes"`
}

// ResequenceRequest 模块重排请求
type ResequenceRequest struct {
	ModuleIDs []uint `json:"module_ids" binding:"required"`
}

// ListCourses 获取课程列表
func (h *Handler) ListCourses(c *gin.Context) {
	page, pageSize := parsePagination(c)
	filter := repository.CourseListFilter{
		Page:        page,
		PageSize:    pageSize,
		Keyword:     c.Query("keyword"),
		Status:      c.Query("status"),
		WithModules: c.Query("with_modules") == "true",
	}

	courses, total, err := h.CourseService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, courses, response.NewPagination(page, pageSize, total))
}

// GetCourse 获取课程详情
func (h *Handler) GetCourse(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	course, err := h.CourseService.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, course)
}

// CreateCourse 创建课程
func (h *Handler) CreateCourse(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}

	var req CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	course, err := h.CourseService.Create(service.CourseInput{
		Title:           req.Title,
		Slug:            req.Slug,
		Description:     req.Description,
		CoverURL:        req.CoverURL,
		DurationMinutes: req.DurationMinutes,
		PassingScore:    req.PassingScore,
		Status:          req.Status,
		CreatedBy:       &adminID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, course)
}

// UpdateCourse 更新课程
func (h *Handler) UpdateCourse(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	var req CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	course, err := h.CourseService.Update(id, service.CourseInput{
		Title:           req.Title,
		Slug:            req.Slug,
		Description:     req.Description,
		CoverURL:        req.CoverURL,
		DurationMinutes: req.DurationMinutes,
		PassingScore:    req.PassingScore,
		Status:          req.Status,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, course)
}

// DeleteCourse 删除课程
func (h *Handler) DeleteCourse(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	if err := h.CourseService.Delete(id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

// ListCourseModules 获取课程模块列表
func (h *Handler) ListCourseModules(c *gin.Context) {
	courseID, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	modules, err := h.CourseService.ListModules(courseID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, modules)
}

// CreateCourseModule 创建课程模块
func (h *Handler) CreateCourseModule(c *gin.Context) {
	courseID, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	var req CourseModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	module, err := h.CourseService.CreateModule(courseID, service.CourseModuleInput{
		Title:           req.Title,
		SceneKey:        req.SceneKey,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, module)
}

// ResequenceCourseModules 重排课程模块
func (h *Handler) ResequenceCourseModules(c *gin.Context) {
	courseID, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	var req ResequenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	if err := h.CourseService.ResequenceModules(courseID, req.ModuleIDs); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

// UpdateCourseModule 更新课程模块
func (h *Handler) UpdateCourseModule(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	var req CourseModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	module, err := h.CourseService.UpdateModule(id, service.CourseModuleInput{
		Title:           req.Title,
		SceneKey:        req.SceneKey,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, module)
}

// DeleteCourseModule 删除课程模块
func (h *Handler) DeleteCourseModule(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	if err := h.CourseService.DeleteModule(id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}
