package shared

import (
	"errors"

	"github.com/vrlab-next/internal/http/response"
	"github.com/vrlab-next/internal/i18n"
	"github.com/vrlab-next/internal/logger"
	"github.com/vrlab-next/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondError 返回国际化错误响应，并在有原始错误时记录日志。
func RespondError(c *gin.Context, code int, key string, err error) {
	locale := i18n.ResolveLocale(c)
	msg := i18n.T(locale, key)
	appErr := response.WrapError(code, msg, err)
	if err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"message", appErr.Message,
			"error", err,
		)
	}
	response.Error(c, appErr.Code, appErr.Message)
}

// RespondErrorWithMsg 返回自定义消息错误响应，并在有原始错误时记录日志。
func RespondErrorWithMsg(c *gin.Context, code int, msg string, err error) {
	appErr := response.WrapError(code, msg, err)
	if err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"message", appErr.Message,
			"error", err,
		)
	}
	response.Error(c, appErr.Code, appErr.Message)
}

// RespondServiceError 将业务哨兵错误映射为统一响应。
func RespondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		RespondError(c, response.CodeNotFound, "error.not_found", nil)
	case errors.Is(err, service.ErrInvalidEmail):
		RespondError(c, response.CodeBadRequest, "error.email_invalid", nil)
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidPassword):
		RespondError(c, response.CodeBadRequest, "error.login_invalid", nil)
	case errors.Is(err, service.ErrWeakPassword):
		respondWeakPassword(c, err)
	case errors.Is(err, service.ErrAccountDisabled):
		RespondError(c, response.CodeForbidden, "error.account_disabled", nil)
	case errors.Is(err, service.ErrEmailNotVerified):
		RespondError(c, response.CodeForbidden, "error.email_not_verified", nil)
	case errors.Is(err, service.ErrEmailExists):
		RespondError(c, response.CodeConflict, "error.email_exists", nil)
	case errors.Is(err, service.ErrOtpCodeInvalid):
		RespondError(c, response.CodeBadRequest, "error.code_invalid", nil)
	case errors.Is(err, service.ErrInvalidOtpPurpose):
		RespondError(c, response.CodeBadRequest, "error.otp_purpose_invalid", nil)
	case errors.Is(err, service.ErrCaptchaRequired):
		RespondError(c, response.CodeBadRequest, "error.captcha_required", nil)
	case errors.Is(err, service.ErrCaptchaInvalid):
		RespondError(c, response.CodeBadRequest, "error.captcha_invalid", nil)
	case errors.Is(err, service.ErrLearnerLoginInvalid):
		RespondError(c, response.CodeBadRequest, "error.learner_login_invalid", nil)
	case errors.Is(err, service.ErrSlugExists):
		RespondError(c, response.CodeConflict, "error.course_slug_exists", nil)
	case errors.Is(err, service.ErrSerialNoExists):
		RespondError(c, response.CodeConflict, "error.device_serial_exists", nil)
	case errors.Is(err, service.ErrOrganizationExists):
		RespondError(c, response.CodeConflict, "error.organization_name_exists", nil)
	case errors.Is(err, service.ErrUserCodeExists):
		RespondError(c, response.CodeConflict, "error.user_code_exists", nil)
	case errors.Is(err, service.ErrAlreadyEnrolled):
		RespondError(c, response.CodeConflict, "error.enrollment_exists", nil)
	case errors.Is(err, service.ErrCourseNotPublished):
		RespondError(c, response.CodeBadRequest, "error.course_not_published", nil)
	case errors.Is(err, service.ErrNotEnrolled):
		RespondError(c, response.CodeForbidden, "error.not_enrolled", nil)
	case errors.Is(err, service.ErrModuleMismatch):
		RespondError(c, response.CodeBadRequest, "error.module_mismatch", nil)
	case errors.Is(err, service.ErrAlertStateInvalid):
		RespondError(c, response.CodeBadRequest, "error.alert_status_invalid", nil)
	case errors.Is(err, service.ErrDeviceRetired):
		RespondError(c, response.CodeForbidden, "error.device_retired", nil)
	case errors.Is(err, service.ErrInUse):
		RespondError(c, response.CodeConflict, "error.record_in_use", nil)
	default:
		RespondError(c, response.CodeInternal, "error.internal", err)
	}
}

func respondWeakPassword(c *gin.Context, err error) {
	locale := i18n.ResolveLocale(c)
	var policyErr interface {
		Key() string
		Args() []interface{}
	}
	if errors.As(err, &policyErr) {
		msg := i18n.Sprintf(locale, policyErr.Key(), policyErr.Args()...)
		response.Error(c, response.CodeBadRequest, msg)
		return
	}
	RespondError(c, response.CodeBadRequest, "error.password_weak", nil)
}
