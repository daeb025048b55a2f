package i18n

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

// 语言常量
const (
	LocaleCN = "zh-CN"
	LocaleEN = "en-US"
)

const defaultLocale = LocaleCN

// ResolveLocale 解析请求语言（query lang 优先，其次 Accept-Language）
func ResolveLocale(c *gin.Context) string {
	if c == nil {
		return defaultLocale
	}
	if lang := Normalize(c.Query("lang")); lang != "" {
		return lang
	}
	if lang := Normalize(c.GetHeader("Accept-Language")); lang != "" {
		return lang
	}
	return defaultLocale
}

// Normalize 归一化语言标识；不支持的语言返回空串
func Normalize(locale string) string {
	tag := strings.ToLower(strings.TrimSpace(locale))
	if tag == "" {
		return ""
	}
	if idx := strings.IndexAny(tag, ",;"); idx >= 0 {
		tag = tag[:idx]
	}
	switch {
	case strings.HasPrefix(tag, "zh"):
		return LocaleCN
	case strings.HasPrefix(tag, "en"):
		return LocaleEN
	default:
		return ""
	}
}

// T 按语言取文案；缺失时回退中文，再缺失返回 key 本身
func T(locale, key string) string {
	if table, ok := messages[localeOrDefault(locale)]; ok {
		if msg, ok := table[key]; ok {
			return msg
		}
	}
	if msg, ok := messages[defaultLocale][key]; ok {
		return msg
	}
	return key
}

// Sprintf 带格式参数的文案
func Sprintf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(T(locale, key), args...)
}

func localeOrDefault(locale string) string {
	if normalized := Normalize(locale); normalized != "" {
		return normalized
	}
	return defaultLocale
}

var messages = map[string]map[string]string{
	LocaleCN: {
		"error.bad_request":              "请求参数错误",
		"error.internal":                 "服务器内部错误",
		"error.not_found":                "资源不存在",
		"error.unauthorized":             "未登录或登录已过期",
		"error.forbidden":                "没有操作权限",
		"error.rate_limited":             "操作过于频繁，请 %d 秒后重试",
		"error.rate_limit_unavailable":   "限流服务不可用",
		"error.login_too_many":           "登录尝试过于频繁，请 %d 秒后重试",
		"error.auth_header_missing":      "缺少认证信息",
		"error.auth_header_invalid":      "认证信息格式错误",
		"error.jwt_secret_missing":       "服务端未配置 JWT 密钥",
		"error.token_invalid":            "登录凭证无效",
		"error.token_revoked":            "登录凭证已失效，请重新登录",
		"error.email_invalid":            "邮箱格式不正确",
		"error.login_invalid":            "账号或密码错误",
		"error.account_disabled":         "账号已被禁用",
		"error.email_not_verified":       "邮箱尚未完成验证",
		"error.email_exists":             "该邮箱已被注册",
		"error.code_invalid":             "验证码错误或已失效",
		"error.otp_purpose_invalid":      "验证码用途不合法",
		"error.password_weak":            "密码强度不足",
		"error.password_min_length":      "密码长度不能少于 %d 位",
		"error.password_require_letter":  "密码必须包含字母",
		"error.password_require_digit":   "密码必须包含数字",
		"error.password_require_special": "密码必须包含特殊字符",
		"error.captcha_required":         "请完成图形验证码",
		"error.captcha_invalid":          "图形验证码错误",
		"error.learner_login_invalid":    "机构名称或学员编码错误",
		"error.send_code_failed":         "验证码发送失败",
		"error.login_failed":             "登录失败",
		"error.register_failed":          "注册失败",
		"error.reset_password_failed":    "重置密码失败",
		"error.course_slug_exists":       "课程标识已存在",
		"error.enrollment_exists":        "该学员已被分配此课程",
		"error.device_serial_exists":     "设备序列号已存在",
		"error.organization_name_exists": "机构名称已存在",
		"error.user_code_exists":         "该机构下学员编码已存在",
		"error.session_invalid":          "训练会话数据不合法",
		"error.alert_status_invalid":     "告警状态流转不合法",
		"error.record_in_use":            "存在关联数据，无法删除",
		"error.course_not_published":     "课程未发布，无法分配",
		"error.not_enrolled":             "学员未被分配此课程",
		"error.module_mismatch":          "模块不属于该课程",
		"error.device_retired":           "设备已退役",
		"message.code_sent":              "验证码已发送",
		"email.alert.subject":            "[%s] 平台告警：%s",
		"email.alert.body":               "告警类型：%s\n严重级别：%s\n详情：%s",
		"message.verification_pending":   "请输入邮箱验证码完成登录",
		"message.reset_code_sent":        "如果该邮箱已注册，验证码已发送",
	},
	LocaleEN: {
		"error.bad_request":              "invalid request parameters",
		"error.internal":                 "internal server error",
		"error.not_found":                "resource not found",
		"error.unauthorized":             "not signed in or session expired",
		"error.forbidden":                "permission denied",
		"error.rate_limited":             "too many requests, retry in %d seconds",
		"error.rate_limit_unavailable":   "rate limiter unavailable",
		"error.login_too_many":           "too many login attempts, retry in %d seconds",
		"error.auth_header_missing":      "missing authorization header",
		"error.auth_header_invalid":      "malformed authorization header",
		"error.jwt_secret_missing":       "server JWT secret not configured",
		"error.token_invalid":            "invalid token",
		"error.token_revoked":            "token revoked, please sign in again",
		"error.email_invalid":            "invalid email address",
		"error.login_invalid":            "invalid account or password",
		"error.account_disabled":         "account disabled",
		"error.email_not_verified":       "email not verified yet",
		"error.email_exists":             "email already registered",
		"error.code_invalid":             "verification code invalid or expired",
		"error.otp_purpose_invalid":      "unsupported verification purpose",
		"error.password_weak":            "password too weak",
		"error.password_min_length":      "password must be at least %d characters",
		"error.password_require_letter":  "password must contain a letter",
		"error.password_require_digit":   "password must contain a digit",
		"error.password_require_special": "password must contain a special character",
		"error.captcha_required":         "captcha required",
		"error.captcha_invalid":          "captcha invalid",
		"error.learner_login_invalid":    "unknown organization or user code",
		"error.send_code_failed":         "failed to send verification code",
		"error.login_failed":             "login failed",
		"error.register_failed":          "registration failed",
		"error.reset_password_failed":    "password reset failed",
		"error.course_slug_exists":       "course slug already exists",
		"error.enrollment_exists":        "learner already enrolled in this course",
		"error.device_serial_exists":     "device serial already exists",
		"error.organization_name_exists": "organization name already exists",
		"error.user_code_exists":         "user code already exists in this organization",
		"error.session_invalid":          "invalid training session payload",
		"error.alert_status_invalid":     "invalid alert status transition",
		"error.record_in_use":            "record still referenced, cannot delete",
		"error.course_not_published":     "course not published, cannot assign",
		"error.not_enrolled":             "learner not enrolled in this course",
		"error.module_mismatch":          "module does not belong to this course",
		"error.device_retired":           "device retired",
		"message.code_sent":              "verification code sent",
		"email.alert.subject":            "[%s] Platform alert: %s",
		"email.alert.body":               "Alert type: %s\nSeverity: %s\nDetails: %s",
		"message.verification_pending":   "enter the emailed verification code to finish signing in",
		"message.reset_code_sent":        "if the email is registered, a code has been sent",
	},
}
