package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/vrlab-next/internal/cache"
	"github.com/vrlab-next/internal/config"
	"github.com/vrlab-next/internal/constants"
	"github.com/vrlab-next/internal/logger"
	"github.com/vrlab-next/internal/models"
	"github.com/vrlab-next/internal/repository"

	"github.com/golang-jwt/jwt/v5"
)

// LearnerAuthService 学员认证服务
// 学员无密码，通过（机构名 + 学员编码）触发邮箱验证码登录
type LearnerAuthService struct {
	cfg          *config.Config
	learnerRepo  repository.VirtualUserRepository
	otpService   *OtpService
	emailService *EmailService
}

// NewLearnerAuthService 创建学员认证服务
func NewLearnerAuthService(cfg *config.Config, learnerRepo repository.VirtualUserRepository, otpService *OtpService, emailService *EmailService) *LearnerAuthService {
	return &LearnerAuthService{
		cfg:          cfg,
		learnerRepo:  learnerRepo,
		otpService:   otpService,
		emailService: emailService,
	}
}

// LearnerJWTClaims 学员 JWT 声明
type LearnerJWTClaims struct {
	LearnerID    uint   `json:"learner_id"`
	Email        string `json:"email"`
	TokenVersion uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

// GenerateLearnerJWT 生成学员 JWT Token
func (s *LearnerAuthService) GenerateLearnerJWT(learner *models.VirtualUser) (string, time.Time, error) {
	expireHours := s.cfg.LearnerJWT.ExpireHours
	if expireHours <= 0 {
		expireHours = 12
	}
	expiresAt := time.Now().Add(time.Duration(expireHours) * time.Hour)
	claims := LearnerJWTClaims{
		LearnerID:    learner.ID,
		Email:        learner.Email,
		TokenVersion: learner.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.LearnerJWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseLearnerJWT 解析学员 JWT Token
func (s *LearnerAuthService) ParseLearnerJWT(tokenString string) (*LearnerJWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &LearnerJWTClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.LearnerJWT.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*LearnerJWTClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("无效的 token")
}

// RequestLoginCode 按机构名与学员编码发起验证码登录，返回掩码邮箱
// 机构名与学员编码均不区分大小写
func (s *LearnerAuthService) RequestLoginCode(orgName, userCode, locale string) (string, error) {
	trimmedOrg := strings.TrimSpace(orgName)
	trimmedCode := strings.TrimSpace(userCode)
	if trimmedOrg == "" || trimmedCode == "" {
		return "", ErrLearnerLoginInvalid
	}

	learner, err := s.learnerRepo.GetByOrgNameAndCode(trimmedOrg, trimmedCode)
	if err != nil {
		return "", err
	}
	if learner == nil {
		return "", ErrLearnerLoginInvalid
	}
	if strings.ToLower(learner.Status) != constants.VirtualUserStatusActive {
		return "", ErrAccountDisabled
	}

	code, err := s.otpService.Issue(learner.Email, constants.OtpPurposeVirtualUser)
	if err != nil {
		return "", err
	}
	if s.emailService != nil {
		if err := s.emailService.SendOtpCode(learner.Email, code, constants.OtpPurposeVirtualUser, locale); err != nil {
			logger.Warnw("learner_otp_email_send_failed", "error", err)
		}
	}
	return MaskEmail(learner.Email), nil
}

// VerifyLogin 使用邮箱验证码完成学员登录
func (s *LearnerAuthService) VerifyLogin(email, code string) (*models.VirtualUser, string, time.Time, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, "", time.Time{}, ErrOtpCodeInvalid
	}
	learner, err := s.learnerRepo.GetByEmail(normalized)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if learner == nil {
		return nil, "", time.Time{}, ErrOtpCodeInvalid
	}
	if strings.ToLower(learner.Status) != constants.VirtualUserStatusActive {
		return nil, "", time.Time{}, ErrAccountDisabled
	}

	ok, err := s.otpService.Verify(normalized, constants.OtpPurposeVirtualUser, code)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if !ok {
		return nil, "", time.Time{}, ErrOtpCodeInvalid
	}

	token, expiresAt, err := s.GenerateLearnerJWT(learner)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	now := time.Now()
	if err := s.learnerRepo.UpdateLastLogin(learner.ID, now); err != nil {
		return nil, "", time.Time{}, err
	}
	learner.LastLoginAt = &now
	_ = cache.SetLearnerAuthState(context.Background(), cache.BuildLearnerAuthState(learner))

	return learner, token, expiresAt, nil
}

// GetLearnerByID 获取学员信息
func (s *LearnerAuthService) GetLearnerByID(id uint) (*models.VirtualUser, error) {
	if id == 0 {
		return nil, ErrNotFound
	}
	return s.learnerRepo.GetByID(id)
}

// MaskEmail 邮箱脱敏（保留前 2 位与域名）
func MaskEmail(email string) string {
	parts := strings.SplitN(email, "@", 2)
	if len(parts) != 2 {
		return "***"
	}
	local := parts[0]
	if local == "" {
		return "***@" + parts[1]
	}
	if len(local) <= 2 {
		return local[:1] + "***@" + parts[1]
	}
	return local[:2] + "***@" + parts[1]
}
