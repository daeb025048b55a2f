package constants

// 验证码用途常量
const (
	OtpPurposeLogin          = "login"
	OtpPurposeSignup         = "signup"
	OtpPurposeForgotPassword = "forgot_password"
	OtpPurposeVirtualUser    = "virtual_user"
)

// 管理员状态常量
const (
	AdminStatusActive   = "active"
	AdminStatusDisabled = "disabled"
)

// 新注册管理员的默认角色
const DefaultAdminRole = "readonly_auditor"

// 虚拟用户状态常量
const (
	VirtualUserStatusActive   = "active"
	VirtualUserStatusDisabled = "disabled"
)

// 机构状态常量
const (
	OrganizationStatusActive   = "active"
	OrganizationStatusDisabled = "disabled"
)

// 课程状态常量
const (
	CourseStatusDraft     = "draft"
	CourseStatusPublished = "published"
	CourseStatusArchived  = "archived"
)

// 选课状态常量
const (
	EnrollmentStatusAssigned   = "assigned"
	EnrollmentStatusInProgress = "in_progress"
	EnrollmentStatusCompleted  = "completed"
)

// 设备状态常量
const (
	DeviceStatusActive  = "active"
	DeviceStatusOffline = "offline"
	DeviceStatusRetired = "retired"
)

// 告警级别常量
const (
	AlertSeverityInfo     = "info"
	AlertSeverityWarning  = "warning"
	AlertSeverityCritical = "critical"
)

// 告警类型常量
const (
	AlertTypeDeviceOffline = "device_offline"
	AlertTypeLowScore      = "low_score"
	AlertTypeSessionFailed = "session_failed"
)

// 告警状态常量
const (
	AlertStatusOpen         = "open"
	AlertStatusAcknowledged = "acknowledged"
	AlertStatusResolved     = "resolved"
)

// 遥测事件类型常量
const (
	TelemetryEventGaze        = "gaze"
	TelemetryEventInteraction = "interaction"
	TelemetryEventCheckpoint  = "checkpoint"
	TelemetryEventError       = "error"
)

// 登录日志状态常量
const (
	LoginLogStatusSuccess = "success"
	LoginLogStatusPending = "pending_verification"
	LoginLogStatusFailed  = "failed"
)

// 登录日志主体常量
const (
	LoginLogSubjectAdmin   = "admin"
	LoginLogSubjectLearner = "learner"
)

// 登录日志失败原因常量
const (
	LoginLogFailReasonBadRequest         = "bad_request"
	LoginLogFailReasonCaptchaRequired    = "captcha_required"
	LoginLogFailReasonCaptchaInvalid     = "captcha_invalid"
	LoginLogFailReasonInvalidCredentials = "invalid_credentials"
	LoginLogFailReasonEmailNotVerified   = "email_not_verified"
	LoginLogFailReasonAccountDisabled    = "account_disabled"
	LoginLogFailReasonCodeInvalid        = "code_invalid"
	LoginLogFailReasonInternalError      = "internal_error"
)

// 验证码校验场景常量
const (
	CaptchaSceneAdminLogin  = "admin_login"
	CaptchaSceneOtpSendCode = "otp_send_code"
)

// 队列常量
const (
	QueueDefault        = "default"
	TaskAlertEmail      = "alert:email"
	TaskSessionIngested = "session:ingested"
)

// 缓存默认前缀常量
const (
	RedisPrefixDefault = "vl"
)

// 站点语言常量
const (
	LocaleZhCN = "zh-CN"
	LocaleEnUS = "en-US"
)

// 支持的站点语言顺序（含回退顺序）
var SupportedLocales = []string{LocaleZhCN, LocaleEnUS}
