package admin

import (
	"github.com/vrlab-next/internal/http/response"
	"github.com/vrlab-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListLoginLogs 获取登录日志列表
func (h *Handler) ListLoginLogs(c *gin.Context) {
	page, pageSize := parsePagination(c)
	filter := repository.LoginLogListFilter{
		Page:        page,
		PageSize:    pageSize,
		Subject:     c.Query("subject"),
		SubjectID:   parseUintQuery(c, "subject_id"),
		Email:       c.Query("email"),
		Status:      c.Query("status"),
		CreatedFrom: parseTimeQuery(c, "created_from"),
		CreatedTo:   parseTimeQuery(c, "created_to"),
	}

	logs, total, err := h.LoginLogService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, logs, response.NewPagination(page, pageSize, total))
}
