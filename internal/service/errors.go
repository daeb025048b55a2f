package service

import "errors"

// 业务语义错误，处理器按 errors.Is 匹配后映射为响应码
var (
	ErrNotFound                  = errors.New("record not found")
	ErrInvalidCredentials        = errors.New("invalid credentials")
	ErrInvalidPassword           = errors.New("invalid password")
	ErrWeakPassword              = errors.New("weak password")
	ErrAccountDisabled           = errors.New("account disabled")
	ErrEmailNotVerified          = errors.New("email not verified")
	ErrEmailExists               = errors.New("email already exists")
	ErrInvalidEmail              = errors.New("invalid email")
	ErrInvalidOtpPurpose         = errors.New("invalid otp purpose")
	ErrOtpCodeInvalid            = errors.New("otp code invalid")
	ErrEmailServiceDisabled      = errors.New("email service disabled")
	ErrEmailServiceNotConfigured = errors.New("email service not configured")
	ErrEmailRecipientRejected    = errors.New("email recipient rejected")
	ErrCaptchaRequired           = errors.New("captcha required")
	ErrCaptchaInvalid            = errors.New("captcha invalid")
	ErrVerificationRequired      = errors.New("verification required")
	ErrLearnerLoginInvalid       = errors.New("learner login invalid")
	ErrSlugExists                = errors.New("slug already exists")
	ErrSerialNoExists            = errors.New("serial no already exists")
	ErrDeviceRetired             = errors.New("device retired")
	ErrOrganizationExists        = errors.New("organization already exists")
	ErrUserCodeExists            = errors.New("user code already exists")
	ErrAlreadyEnrolled           = errors.New("already enrolled")
	ErrCourseNotPublished        = errors.New("course not published")
	ErrNotEnrolled               = errors.New("not enrolled")
	ErrModuleMismatch            = errors.New("module does not belong to course")
	ErrAlertStateInvalid         = errors.New("alert state invalid")
	ErrInUse                     = errors.New("record still referenced")
)
