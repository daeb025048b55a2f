package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/vrlab-next/internal/config"
	"github.com/vrlab-next/internal/constants"
	"github.com/vrlab-next/internal/models"
	"github.com/vrlab-next/internal/repository"
)

// OtpService 一次性验证码服务
// 同一（邮箱，用途）下最多存在一条有效验证码，签发即作废旧码。
// 只负责签发与校验，邮件投递由调用方处理
type OtpService struct {
	cfg     *config.Config
	otpRepo repository.OtpCodeRepository
}

// NewOtpService 创建验证码服务
func NewOtpService(cfg *config.Config, otpRepo repository.OtpCodeRepository) *OtpService {
	return &OtpService{
		cfg:     cfg,
		otpRepo: otpRepo,
	}
}

// Issue 签发验证码并返回明文码
func (s *OtpService) Issue(email, purpose string) (string, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return "", err
	}
	normalizedPurpose := strings.ToLower(strings.TrimSpace(purpose))
	if !isOtpPurposeSupported(normalizedPurpose) {
		return "", ErrInvalidOtpPurpose
	}

	code, err := randomOtpCode()
	if err != nil {
		return "", err
	}

	now := time.Now()
	record := &models.OtpCode{
		Email:     normalized,
		Purpose:   normalizedPurpose,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Duration(s.resolveExpireMinutes()) * time.Minute),
	}
	if err := s.otpRepo.Replace(record); err != nil {
		return "", err
	}
	return code, nil
}

// Verify 校验验证码并标记已用
// 返回布尔结果，不区分“码错误/已过期/已使用/不存在”，避免探测
func (s *OtpService) Verify(email, purpose, code string) (bool, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return false, nil
	}
	normalizedPurpose := strings.ToLower(strings.TrimSpace(purpose))
	if !isOtpPurposeSupported(normalizedPurpose) {
		return false, nil
	}
	trimmedCode := strings.TrimSpace(code)
	if trimmedCode == "" {
		return false, nil
	}

	record, err := s.otpRepo.FindActive(normalized, normalizedPurpose, trimmedCode, time.Now())
	if err != nil {
		return false, err
	}
	if record == nil {
		return false, nil
	}
	if err := s.otpRepo.MarkUsed(record.ID); err != nil {
		return false, err
	}
	return true, nil
}

// Invalidate 作废某（邮箱，用途）下的全部验证码
func (s *OtpService) Invalidate(email, purpose string) error {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	_, err = s.otpRepo.DeleteAllFor(normalized, strings.ToLower(strings.TrimSpace(purpose)))
	return err
}

// Cleanup 清理已过期或已使用的验证码，返回删除条数
func (s *OtpService) Cleanup(now time.Time) (int64, error) {
	return s.otpRepo.SweepExpiredOrUsed(now)
}

// CleanupInterval 清理任务执行间隔
func (s *OtpService) CleanupInterval() time.Duration {
	minutes := 30
	if s != nil && s.cfg != nil && s.cfg.Email.Otp.CleanupIntervalMin > 0 {
		minutes = s.cfg.Email.Otp.CleanupIntervalMin
	}
	return time.Duration(minutes) * time.Minute
}

func (s *OtpService) resolveExpireMinutes() int {
	if s == nil || s.cfg == nil || s.cfg.Email.Otp.ExpireMinutes <= 0 {
		return 10
	}
	return s.cfg.Email.Otp.ExpireMinutes
}

func isOtpPurposeSupported(purpose string) bool {
	switch purpose {
	case constants.OtpPurposeLogin, constants.OtpPurposeSignup, constants.OtpPurposeForgotPassword, constants.OtpPurposeVirtualUser:
		return true
	default:
		return false
	}
}

// randomOtpCode 生成 [100000, 999999] 区间内等概率的六位数字码
func randomOtpCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
