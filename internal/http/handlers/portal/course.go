package portal

import (
	"github.com/vrlab-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ListMyCourses 获取当前学员的全部课程分配
func (h *Handler) ListMyCourses(c *gin.Context) {
	learnerID, ok := getLearnerID(c)
	if !ok {
		return
	}

	enrollments, err := h.EnrollmentRepo.ListByLearner(learnerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, enrollments)
}

// GetMyCourse 获取当前学员的单个课程分配详情
func (h *Handler) GetMyCourse(c *gin.Context) {
	learnerID, ok := getLearnerID(c)
	if !ok {
		return
	}
	courseID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	enrollment, err := h.EnrollmentRepo.GetByLearnerAndCourse(learnerID, courseID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if enrollment == nil {
		respondError(c, response.CodeNotFound, "error.not_found", nil)
		return
	}

	modules, err := h.CourseService.ListModules(courseID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{
		"enrollment": enrollment,
		"modules":    modules,
	})
}
