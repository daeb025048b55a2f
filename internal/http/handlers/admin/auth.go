package admin

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

// LoginRequest 管理员登录请求
type LoginRequest struct {
	Email          string                              `json:"email" binding:"required"`
	Password       string                              `json:"password" binding:"required"`
	CaptchaPayload handlershared.CaptchaPayloadRequest `json:"captcha_payload"`
}

// VerifyLoginRequest 二步验证请求
type VerifyLoginRequest struct {
	Email string `json:"email" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"display_name"`
}

// ConfirmSignupRequest 注册确认请求
type ConfirmSignupRequest struct {
	Email string `json:"email" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

// ForgotPasswordRequest 找回密码请求
type ForgotPasswordRequest struct {
	Email          string                              `json:"email" binding:"required"`
	CaptchaPayload handlershared.CaptchaPayloadRequest `json:"captcha_payload"`
}

// ResetPasswordRequest 重置密码请求
type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required"`
	Code        string `json:"code" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Pending   bool       `json:"pending"`
	Token     string     `json:"token,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Admin     gin.H      `json:"admin,omitempty"`
}

// Login 管理员登录
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	if h.CaptchaService != nil {
		if captchaErr := h.CaptchaService.Verify(constants.CaptchaSceneAdminLogin, req.CaptchaPayload.ToServicePayload()); captchaErr != nil {
			h.recordAdminLogin(c, 0, req.Email, constants.LoginLogStatusFailed, captchaFailReason(captchaErr))
			respondServiceError(c, captchaErr)
			return
		}
	}

	locale := i18n.ResolveLocale(c)
	result, err := h.AuthService.Login(req.Email, req.Password, locale)
	if err != nil {
		h.recordAdminLogin(c, 0, req.Email, constants.LoginLogStatusFailed, loginFailReason(err))
		respondServiceError(c, err)
		return
	}

	if result.Pending {
		h.recordAdminLogin(c, result.Admin.ID, req.Email, constants.LoginLogStatusPending, "")
		response.Success(c, LoginResponse{Pending: true})
		return
	}

	h.recordAdminLogin(c, result.Admin.ID, req.Email, constants.LoginLogStatusSuccess, "")
	response.Success(c, buildLoginResponse(result))
}

// VerifyLogin 二步验证完成登录
func (h *Handler) VerifyLogin(c *gin.Context) {
	var req VerifyLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	result, err := h.AuthService.VerifyLogin(req.Email, req.Code)
	if err != nil {
		h.recordAdminLogin(c, 0, req.Email, constants.LoginLogStatusFailed, constants.LoginLogFailReasonCodeInvalid)
		respondServiceError(c, err)
		return
	}

	h.recordAdminLogin(c, result.Admin.ID, req.Email, constants.LoginLogStatusSuccess, "")
	response.Success(c, buildLoginResponse(result))
}

// Register 注册管理员账号
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	locale := i18n.ResolveLocale(c)
	admin, err := h.AuthService.Register(req.Email, req.Password, req.DisplayName, locale)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{
		"id":    admin.ID,
		"email": admin.Email,
	})
}

// ConfirmSignup 注册邮箱确认
func (h *Handler) ConfirmSignup(c *gin.Context) {
	var req ConfirmSignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	admin, err := h.AuthService.ConfirmSignup(req.Email, req.Code)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{
		"id":             admin.ID,
		"email":          admin.Email,
		"email_verified": admin.EmailVerifiedAt != nil,
	})
}

// ForgotPassword 发起找回密码，未注册邮箱同样返回成功
func (h *Handler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	if h.CaptchaService != nil {
		if captchaErr := h.CaptchaService.Verify(constants.CaptchaSceneOtpSendCode, req.CaptchaPayload.ToServicePayload()); captchaErr != nil {
			respondServiceError(c, captchaErr)
			return
		}
	}

	locale := i18n.ResolveLocale(c)
	if err := h.AuthService.ForgotPassword(req.Email, locale); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

// ResetPassword 使用验证码重置密码
func (h *Handler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	if err := h.AuthService.ResetPassword(req.Email, req.Code, req.NewPassword); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

// ChangePassword 登录态修改密码
func (h *Handler) ChangePassword(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	if err := h.AuthService.ChangePassword(adminID, req.OldPassword, req.NewPassword); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

// Me 获取当前管理员信息
func (h *Handler) Me(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}

	admin, err := h.AdminRepo.GetByID(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	if admin == nil {
		respondError(c, response.CodeNotFound, "error.not_found", nil)
		return
	}

	roles, err := h.AuthzService.GetAdminRoles(adminID)
	if err != nil {
		requestLog(c).Warnw("admin_me_roles_fetch_failed", "admin_id", adminID, "error", err)
		roles = nil
	}
	response.Success(c, gin.H{
		"id":                 admin.ID,
		"email":              admin.Email,
		"display_name":       admin.DisplayName,
		"is_super":           admin.IsSuper,
		"two_factor_enabled": admin.TwoFactorEnabled,
		"roles":              roles,
	})
}

func buildLoginResponse(result *service.LoginResult) LoginResponse {
	expiresAt := result.ExpiresAt
	return LoginResponse{
		Pending:   false,
		Token:     result.Token,
		ExpiresAt: &expiresAt,
		Admin: gin.H{
			"id":           result.Admin.ID,
			"email":        result.Admin.Email,
			"display_name": result.Admin.DisplayName,
			"is_super":     result.Admin.IsSuper,
		},
	}
}

func (h *Handler) recordAdminLogin(c *gin.Context, adminID uint, email, status, failReason string) {
	if h.LoginLogService == nil {
		return
	}
	err := h.LoginLogService.Record(service.RecordLoginInput{
		Subject:    constants.LoginLogSubjectAdmin,
		SubjectID:  adminID,
		Email:      email,
		Status:     status,
		FailReason: failReason,
		ClientIP:   c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	})
	if err != nil {
		requestLog(c).Warnw("admin_login_log_record_failed", "error", err)
	}
}

func captchaFailReason(err error) string {
	switch {
	case errors.Is(err, service.ErrCaptchaRequired):
		return constants.LoginLogFailReasonCaptchaRequired
	case errors.Is(err, service.ErrCaptchaInvalid):
		return constants.LoginLogFailReasonCaptchaInvalid
	default:
		return constants.LoginLogFailReasonInternalError
	}
}

func loginFailReason(err error) string {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return constants.LoginLogFailReasonInvalidCredentials
	case errors.Is(err, service.ErrAccountDisabled):
		return constants.LoginLogFailReasonAccountDisabled
	case errors.Is(err, service.ErrEmailNotVerified):
		return constants.LoginLogFailReasonEmailNotVerified
	default:
		return constants.LoginLogFailReasonInternalError
	}
}
