package service

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"mime"
	"net/mail"
	"net/smtp"
	"strings"

	"github.com/vrlab-next/internal/config"
	"github.com/vrlab-next/internal/constants"
	"github.com/vrlab-next/internal/i18n"
)

// EmailService 邮件发送服务
type EmailService struct {
	cfg *config.EmailConfig
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// SetConfig 更新运行时邮件配置
func (s *EmailService) SetConfig(cfg *config.EmailConfig) {
	if cfg == nil {
		return
	}
	s.cfg = cfg
}

// SendOtpCode 发送一次性验证码邮件
func (s *EmailService) SendOtpCode(toEmail, code, purpose, locale string) error {
	subject, body := buildOtpCodeContent(code, purpose, locale, s.otpExpireMinutes())
	return s.sendTextEmail(toEmail, subject, body)
}

func (s *EmailService) otpExpireMinutes() int {
	if s != nil && s.cfg != nil && s.cfg.Otp.ExpireMinutes > 0 {
		return s.cfg.Otp.ExpireMinutes
	}
	return 10
}

// AlertEmailInput 告警通知邮件输入
type AlertEmailInput struct {
	Type     string
	Severity string
	Message  string
}

// SendAlertEmail 发送运维告警通知
func (s *EmailService) SendAlertEmail(toEmail string, input AlertEmailInput, locale string) error {
	normalized := normalizeLocale(locale)
	subject := i18n.Sprintf(normalized, "email.alert.subject", strings.ToUpper(input.Severity), input.Type)
	body := i18n.Sprintf(normalized, "email.alert.body", input.Type, input.Severity, input.Message)
	return s.sendTextEmail(toEmail, subject, body)
}

// SendCustomEmail 发送测试邮件或自定义邮件
func (s *EmailService) SendCustomEmail(toEmail, subject, body string) error {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		subject = "SMTP 配置测试邮件"
	}
	body = strings.TrimSpace(body)
	if body == "" {
		body = "这是一封来自 VR 实训平台的 SMTP 测试邮件，说明当前配置可正常发送。"
	}
	return s.sendTextEmail(toEmail, subject, body)
}

func (s *EmailService) sendTextEmail(toEmail, subject, body string) error {
	if s.cfg == nil || !s.cfg.Enabled {
		return ErrEmailServiceDisabled
	}
	if s.cfg.Host == "" || s.cfg.Port == 0 || s.cfg.From == "" {
		return ErrEmailServiceNotConfigured
	}
	if _, err := mail.ParseAddress(toEmail); err != nil {
		return ErrInvalidEmail
	}

	from := buildFromAddress(s.cfg.From, s.cfg.FromName)
	msg := buildEmailMessage(from, toEmail, subject, body)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" || s.cfg.Password != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	if s.cfg.UseSSL {
		return normalizeEmailSendError(sendMailWithSSL(addr, auth, s.cfg.Host, s.cfg.From, []string{toEmail}, []byte(msg)))
	}
	if s.cfg.UseTLS {
		return normalizeEmailSendError(sendMailWithStartTLS(addr, auth, s.cfg.Host, s.cfg.From, []string{toEmail}, []byte(msg)))
	}
	return normalizeEmailSendError(sendMailPlain(addr, auth, s.cfg.Host, s.cfg.From, []string{toEmail}, []byte(msg)))
}

func buildOtpCodeContent(code, purpose, locale string, expireMinutes int) (string, string) {
	normalized := normalizeLocale(locale)
	purposeKey := strings.ToLower(strings.TrimSpace(purpose))
	if normalized == i18n.LocaleEN {
		subject := "Verification Code"
		purposeText := "account verification"
		switch purposeKey {
		case constants.OtpPurposeLogin:
			subject = "Sign-in Code"
			purposeText = "signing in"
		case constants.OtpPurposeSignup:
			subject = "Registration Code"
			purposeText = "registration"
		case constants.OtpPurposeForgotPassword:
			subject = "Password Reset Code"
			purposeText = "password reset"
		case constants.OtpPurposeVirtualUser:
			subject = "Training Sign-in Code"
			purposeText = "starting a training session"
		}
		body := fmt.Sprintf("Your verification code is: %s\n\nThis code is for %s and expires in %d minutes. Do not share it.", code, purposeText, expireMinutes)
		return subject, body
	}

	subject := "邮箱验证码"
	purposeText := "账号验证"
	switch purposeKey {
	case constants.OtpPurposeLogin:
		subject = "登录验证码"
		purposeText = "登录"
	case constants.OtpPurposeSignup:
		subject = "注册验证码"
		purposeText = "注册"
	case constants.OtpPurposeForgotPassword:
		subject = "重置密码验证码"
		purposeText = "重置密码"
	case constants.OtpPurposeVirtualUser:
		subject = "实训登录验证码"
		purposeText = "实训登录"
	}
	body := fmt.Sprintf("您的验证码是：%s\n\n该验证码用于 %s，%d 分钟内有效，请勿泄露。", code, purposeText, expireMinutes)
	return subject, body
}

func normalizeLocale(locale string) string {
	if normalized := i18n.Normalize(locale); normalized != "" {
		return normalized
	}
	return i18n.LocaleCN
}

func buildFromAddress(from, name string) string {
	if strings.TrimSpace(name) == "" {
		return from
	}
	encoded := mime.QEncoding.Encode("UTF-8", name)
	return (&mail.Address{Name: encoded, Address: from}).String()
}

func buildEmailMessage(from, to, subject, body string) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("From: %s\r\n", from))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", to))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", subject)))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(body)
	return buf.String()
}

func sendMailWithSSL(addr string, auth smtp.Auth, host, from string, to []string, msg []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}

	return sendSMTPData(client, from, to, msg)
}

func sendMailWithStartTLS(addr string, auth smtp.Auth, host, from string, to []string, msg []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.StartTLS(&tls.Config{ServerName: host}); err != nil {
		return err
	}

	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}

	return sendSMTPData(client, from, to, msg)
}

func sendMailPlain(addr string, auth smtp.Auth, host, from string, to []string, msg []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}

	return sendSMTPData(client, from, to, msg)
}

func sendSMTPData(client *smtp.Client, from string, to []string, msg []byte) error {
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func normalizeEmailSendError(err error) error {
	if err == nil {
		return nil
	}
	if isEmailRecipientRejected(err) {
		return ErrEmailRecipientRejected
	}
	return err
}

func isEmailRecipientRejected(err error) bool {
	if err == nil {
		return false
	}
	message := strings.ToLower(strings.TrimSpace(err.Error()))
	if message == "" {
		return false
	}
	directKeywords := []string{
		"no such recipient",
		"no such user",
		"recipient not found",
		"recipient address rejected",
		"invalid recipient",
		"user unknown",
		"unknown user",
		"unknown mailbox",
		"mailbox unavailable",
	}
	for _, keyword := range directKeywords {
		if strings.Contains(message, keyword) {
			return true
		}
	}
	if strings.Contains(message, "550") {
		hints := []string{"recipient", "user", "mailbox", "address", "rcpt"}
		for _, hint := range hints {
			if strings.Contains(message, hint) {
				return true
			}
		}
	}
	return false
}
