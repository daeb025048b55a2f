package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/vrlab-next/internal/cache"
	"github.com/vrlab-next/internal/config"
	"github.com/vrlab-next/internal/constants"
	"github.com/vrlab-next/internal/logger"
	"github.com/vrlab-next/internal/models"
	"github.com/vrlab-next/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// RoleAssigner 管理员角色授予接口
type RoleAssigner interface {
	SetAdminRoles(adminID uint, roles []string) error
}

// AuthService 管理员认证服务
type AuthService struct {
	cfg          *config.Config
	adminRepo    repository.AdminRepository
	otpService   *OtpService
	emailService *EmailService
	roleAssigner RoleAssigner
}

// NewAuthService 创建认证服务实例
func NewAuthService(cfg *config.Config, adminRepo repository.AdminRepository, otpService *OtpService, emailService *EmailService, roleAssigner RoleAssigner) *AuthService {
	return &AuthService{
		cfg:          cfg,
		adminRepo:    adminRepo,
		otpService:   otpService,
		emailService: emailService,
		roleAssigner: roleAssigner,
	}
}

// HashPassword 使用 bcrypt 加密密码
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword 验证密码
func (s *AuthService) VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// ValidatePassword 校验密码是否符合策略
func (s *AuthService) ValidatePassword(password string) error {
	if s == nil || s.cfg == nil {
		return nil
	}
	return validatePassword(s.cfg.Security.PasswordPolicy, password)
}

// JWTClaims 管理员 JWT 声明
type JWTClaims struct {
	AdminID      uint   `json:"admin_id"`
	Email        string `json:"email"`
	TokenVersion uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

// GenerateJWT 生成管理员 JWT Token
func (s *AuthService) GenerateJWT(admin *models.Admin) (string, time.Time, error) {
	expireHours := s.cfg.JWT.ExpireHours
	if expireHours <= 0 {
		expireHours = 24
	}
	expiresAt := time.Now().Add(time.Duration(expireHours) * time.Hour)

	claims := JWTClaims{
		AdminID:      admin.ID,
		Email:        admin.Email,
		TokenVersion: admin.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// ParseJWT 解析管理员 JWT Token
func (s *AuthService) ParseJWT(tokenString string) (*JWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("无效的 token")
}

// LoginResult 登录结果
// Pending 为 true 时表示已发送二步验证码，尚未签发令牌
type LoginResult struct {
	Admin     *models.Admin
	Pending   bool
	Token     string
	ExpiresAt time.Time
}

// Login 管理员登录
// 开启二步验证的账号在密码校验通过后发送邮箱验证码，由 VerifyLogin 完成签发
func (s *AuthService) Login(email, password, locale string) (*LoginResult, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	admin, err := s.adminRepo.GetByEmail(normalized)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, ErrInvalidCredentials
	}
	if err := s.VerifyPassword(admin.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if strings.ToLower(admin.Status) != constants.AdminStatusActive {
		return nil, ErrAccountDisabled
	}
	if admin.EmailVerifiedAt == nil {
		return nil, ErrEmailNotVerified
	}

	if admin.TwoFactorEnabled {
		code, err := s.otpService.Issue(normalized, constants.OtpPurposeLogin)
		if err != nil {
			return nil, err
		}
		s.sendOtpBestEffort(normalized, code, constants.OtpPurposeLogin, locale)
		return &LoginResult{Admin: admin, Pending: true}, nil
	}

	return s.issueSession(admin)
}

// VerifyLogin 使用邮箱验证码完成二步登录
func (s *AuthService) VerifyLogin(email, code string) (*LoginResult, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, ErrOtpCodeInvalid
	}
	admin, err := s.adminRepo.GetByEmail(normalized)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, ErrOtpCodeInvalid
	}
	if strings.ToLower(admin.Status) != constants.AdminStatusActive {
		return nil, ErrAccountDisabled
	}

	ok, err := s.otpService.Verify(normalized, constants.OtpPurposeLogin, code)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrOtpCodeInvalid
	}

	return s.issueSession(admin)
}

// Register 注册管理员账号，授予默认角色，注册后需邮箱验证码确认
func (s *AuthService) Register(email, password, displayName, locale string) (*models.Admin, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := s.ValidatePassword(password); err != nil {
		return nil, err
	}

	exist, err := s.adminRepo.GetByEmail(normalized)
	if err != nil {
		return nil, err
	}
	if exist != nil {
		return nil, ErrEmailExists
	}

	hashedPassword, err := s.HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	admin := &models.Admin{
		Email:        normalized,
		PasswordHash: hashedPassword,
		DisplayName:  resolveDisplayName(displayName, normalized),
		Status:       constants.AdminStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.adminRepo.Create(admin); err != nil {
		return nil, err
	}
	if err := s.assignDefaultRole(admin.ID); err != nil {
		return nil, err
	}

	code, err := s.otpService.Issue(normalized, constants.OtpPurposeSignup)
	if err != nil {
		return nil, err
	}
	s.sendOtpBestEffort(normalized, code, constants.OtpPurposeSignup, locale)
	return admin, nil
}

// ConfirmSignup 使用邮箱验证码完成注册确认
func (s *AuthService) ConfirmSignup(email, code string) (*models.Admin, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, ErrOtpCodeInvalid
	}
	admin, err := s.adminRepo.GetByEmail(normalized)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, ErrOtpCodeInvalid
	}
	if admin.EmailVerifiedAt != nil {
		return admin, nil
	}

	ok, err := s.otpService.Verify(normalized, constants.OtpPurposeSignup, code)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrOtpCodeInvalid
	}

	now := time.Now()
	admin.EmailVerifiedAt = &now
	admin.UpdatedAt = now
	if err := s.adminRepo.Update(admin); err != nil {
		return nil, err
	}
	return admin, nil
}

// ForgotPassword 发起找回密码
// 不泄露账号是否存在：未注册邮箱同样返回成功
func (s *AuthService) ForgotPassword(email, locale string) error {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil
	}
	admin, err := s.adminRepo.GetByEmail(normalized)
	if err != nil {
		return err
	}
	if admin == nil {
		logger.Infow("forgot_password_unknown_email")
		return nil
	}
	code, err := s.otpService.Issue(normalized, constants.OtpPurposeForgotPassword)
	if err != nil {
		return err
	}
	s.sendOtpBestEffort(normalized, code, constants.OtpPurposeForgotPassword, locale)
	return nil
}

// ResetPassword 使用验证码重置密码
func (s *AuthService) ResetPassword(email, code, newPassword string) error {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return ErrOtpCodeInvalid
	}
	if err := s.ValidatePassword(newPassword); err != nil {
		return err
	}
	admin, err := s.adminRepo.GetByEmail(normalized)
	if err != nil {
		return err
	}
	if admin == nil {
		return ErrOtpCodeInvalid
	}

	ok, err := s.otpService.Verify(normalized, constants.OtpPurposeForgotPassword, code)
	if err != nil {
		return err
	}
	if !ok {
		return ErrOtpCodeInvalid
	}

	hashedPassword, err := s.HashPassword(newPassword)
	if err != nil {
		return err
	}
	now := time.Now()
	admin.PasswordHash = hashedPassword
	admin.UpdatedAt = now
	admin.TokenVersion++
	admin.TokenInvalidBefore = &now
	if err := s.adminRepo.Update(admin); err != nil {
		return err
	}
	_ = cache.SetAdminAuthState(context.Background(), cache.BuildAdminAuthState(admin))
	return nil
}

// ChangePassword 登录态修改密码
func (s *AuthService) ChangePassword(adminID uint, oldPassword, newPassword string) error {
	admin, err := s.adminRepo.GetByID(adminID)
	if err != nil {
		return err
	}
	if admin == nil {
		return ErrNotFound
	}

	if err := s.VerifyPassword(admin.PasswordHash, oldPassword); err != nil {
		return ErrInvalidPassword
	}
	if err := s.ValidatePassword(newPassword); err != nil {
		return err
	}

	hashedPassword, err := s.HashPassword(newPassword)
	if err != nil {
		return err
	}
	admin.PasswordHash = hashedPassword
	now := time.Now()
	admin.UpdatedAt = now
	admin.TokenVersion++
	admin.TokenInvalidBefore = &now
	if err := s.adminRepo.Update(admin); err != nil {
		return err
	}
	_ = cache.SetAdminAuthState(context.Background(), cache.BuildAdminAuthState(admin))
	return nil
}

// sendOtpBestEffort 邮件失败仅记录日志，不回滚已签发的验证码
func (s *AuthService) sendOtpBestEffort(email, code, purpose, locale string) {
	if s.emailService == nil {
		logger.Warnw("otp_email_service_missing", "purpose", purpose)
		return
	}
	if err := s.emailService.SendOtpCode(email, code, purpose, locale); err != nil {
		logger.Warnw("otp_email_send_failed", "purpose", purpose, "error", err)
	}
}

func (s *AuthService) issueSession(admin *models.Admin) (*LoginResult, error) {
	token, expiresAt, err := s.GenerateJWT(admin)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	admin.LastLoginAt = &now
	if err := s.adminRepo.Update(admin); err != nil {
		return nil, err
	}
	_ = cache.SetAdminAuthState(context.Background(), cache.BuildAdminAuthState(admin))

	return &LoginResult{Admin: admin, Token: token, ExpiresAt: expiresAt}, nil
}

func normalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return "", ErrInvalidEmail
	}
	if _, err := mail.ParseAddress(normalized); err != nil {
		return "", ErrInvalidEmail
	}
	return normalized, nil
}

// NormalizeEmail 统一邮箱格式
func NormalizeEmail(email string) (string, error) {
	return normalizeEmail(email)
}

// assignDefaultRole 新账号无任何角色会被 RBAC 拦在所有管理端路由之外
func (s *AuthService) assignDefaultRole(adminID uint) error {
	if s.roleAssigner == nil {
		logger.Warnw("admin_default_role_assigner_missing", "admin_id", adminID)
		return nil
	}
	return s.roleAssigner.SetAdminRoles(adminID, []string{constants.DefaultAdminRole})
}

func resolveDisplayName(displayName, email string) string {
	if name := strings.TrimSpace(displayName); name != "" {
		return name
	}
	parts := strings.SplitN(email, "@", 2)
	if len(parts) == 2 && strings.TrimSpace(parts[0]) != "" {
		return strings.TrimSpace(parts[0])
	}
	return email
}
