package portal

import (
	"errors"
	"time"

	"github.com/vrlab-next/internal/constants"
	handlershared "github.com/vrlab-next/internal/http/handlers/shared"
	"github.com/vrlab-next/internal/http/response"
	"github.com/vrlab-next/internal/i18n"
	"github.com/vrlab-next/internal/service"

	"github.com/gin-gonic/gin"
)

// RequestLoginCodeRequest 学员请求登录验证码
type RequestLoginCodeRequest struct {
	OrganizationName string                              `json:"organization_name" binding:"required"`
	UserCode         string                              `json:"user_code" binding:"required"`
	CaptchaPayload   handlershared.CaptchaPayloadRequest `json:"captcha_payload"`
}

// VerifyLoginRequest 学员验证码登录
type VerifyLoginRequest struct {
	Email string `json:"email" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

// LoginCodeResponse 验证码发送结果
type LoginCodeResponse struct {
	MaskedEmail string `json:"masked_email"`
}

// LoginResponse 学员登录响应
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Learner   gin.H     `json:"learner"`
}

// RequestLoginCode 发送学员登录验证码
func (h *Handler) RequestLoginCode(c *gin.Context) {
	var req RequestLoginCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	if h.CaptchaService != nil {
		if captchaErr := h.CaptchaService.Verify(constants.CaptchaSceneOtpSendCode, req.CaptchaPayload.ToServicePayload()); captchaErr != nil {
			h.recordLearnerLogin(c, 0, "", constants.LoginLogStatusFailed, learnerFailReason(captchaErr))
			respondServiceError(c, captchaErr)
			return
		}
	}

	locale := i18n.ResolveLocale(c)
	maskedEmail, err := h.LearnerAuthService.RequestLoginCode(req.OrganizationName, req.UserCode, locale)
	if err != nil {
		h.recordLearnerLogin(c, 0, "", constants.LoginLogStatusFailed, learnerFailReason(err))
		respondServiceError(c, err)
		return
	}
	response.Success(c, LoginCodeResponse{MaskedEmail: maskedEmail})
}

// VerifyLogin 学员验证码登录
func (h *Handler) VerifyLogin(c *gin.Context) {
	var req VerifyLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	learner, token, expiresAt, err := h.LearnerAuthService.VerifyLogin(req.Email, req.Code)
	if err != nil {
		h.recordLearnerLogin(c, 0, req.Email, constants.LoginLogStatusFailed, verifyFailReason(err))
		respondServiceError(c, err)
		return
	}

	h.recordLearnerLogin(c, learner.ID, learner.Email, constants.LoginLogStatusSuccess, "")
	response.Success(c, LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Learner: gin.H{
			"id":           learner.ID,
			"display_name": learner.DisplayName,
			"user_code":    learner.UserCode,
		},
	})
}

// Me 获取当前学员信息
func (h *Handler) Me(c *gin.Context) {
	learnerID, ok := getLearnerID(c)
	if !ok {
		return
	}

	learner, err := h.LearnerAuthService.GetLearnerByID(learnerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if learner == nil {
		respondError(c, response.CodeNotFound, "error.not_found", nil)
		return
	}
	response.Success(c, gin.H{
		"id":            learner.ID,
		"display_name":  learner.DisplayName,
		"user_code":     learner.UserCode,
		"email":         service.MaskEmail(learner.Email),
		"organization":  learner.Organization,
		"last_login_at": learner.LastLoginAt,
	})
}

func (h *Handler) recordLearnerLogin(c *gin.Context, learnerID uint, email, status, failReason string) {
	if h.LoginLogService == nil {
		return
	}
	err := h.LoginLogService.Record(service.RecordLoginInput{
		Subject:    constants.LoginLogSubjectLearner,
		SubjectID:  learnerID,
		Email:      email,
		Status:     status,
		FailReason: failReason,
		ClientIP:   c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	})
	if err != nil {
		requestLog(c).Warnw("learner_login_log_record_failed", "error", err)
	}
}

func verifyFailReason(err error) string {
	if errors.Is(err, service.ErrAccountDisabled) {
		return constants.LoginLogFailReasonAccountDisabled
	}
	return constants.LoginLogFailReasonCodeInvalid
}

func learnerFailReason(err error) string {
	switch {
	case errors.Is(err, service.ErrLearnerLoginInvalid):
		return constants.LoginLogFailReasonInvalidCredentials
	case errors.Is(err, service.ErrAccountDisabled):
		return constants.LoginLogFailReasonAccountDisabled
	case errors.Is(err, service.ErrCaptchaRequired):
		return constants.LoginLogFailReasonCaptchaRequired
	case errors.Is(err, service.ErrCaptchaInvalid):
		return constants.LoginLogFailReasonCaptchaInvalid
	default:
		return constants.LoginLogFailReasonInternalError
	}
}
