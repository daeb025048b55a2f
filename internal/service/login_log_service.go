package service

import (
	"strings"
	"time"

	"github.com/vrlab-next/internal/constants"
	"github.com/vrlab-next/internal/models"
	"github.com/vrlab-next/internal/repository"
)

// LoginLogService 登录日志服务
type LoginLogService struct {
	repo repository.LoginLogRepository
}

// NewLoginLogService 创建登录日志服务
func NewLoginLogService(repo repository.LoginLogRepository) *LoginLogService {
	return &LoginLogService{repo: repo}
}

// RecordLoginInput 登录日志记录输入
type RecordLoginInput struct {
	Subject    string
	SubjectID  uint
	Email      string
	Status     string
	FailReason string
	ClientIP   string
	UserAgent  string
}

// Record 记录登录行为，失败不影响主流程
func (s *LoginLogService) Record(input RecordLoginInput) error {
	if s == nil || s.repo == nil {
		return nil
	}

	email := strings.TrimSpace(input.Email)
	if normalized, err := NormalizeEmail(email); err == nil {
		email = normalized
	}

	subject := strings.ToLower(strings.TrimSpace(input.Subject))
	if subject != constants.LoginLogSubjectLearner {
		subject = constants.LoginLogSubjectAdmin
	}

	status := strings.ToLower(strings.TrimSpace(input.Status))
	switch status {
	case constants.LoginLogStatusSuccess, constants.LoginLogStatusPending:
	default:
		status = constants.LoginLogStatusFailed
	}

	failReason := strings.ToLower(strings.TrimSpace(input.FailReason))
	if status == constants.LoginLogStatusSuccess {
		failReason = ""
	} else if status == constants.LoginLogStatusFailed && failReason == "" {
		failReason = constants.LoginLogFailReasonInternalError
	}

	log := models.LoginLog{
		Subject:    subject,
		SubjectID:  input.SubjectID,
		Email:      email,
		Status:     status,
		FailReason: failReason,
		ClientIP:   strings.TrimSpace(input.ClientIP),
		UserAgent:  strings.TrimSpace(input.UserAgent),
	}
	return s.repo.Create(&log)
}

// List 分页查询登录日志
func (s *LoginLogService) List(filter repository.LoginLogListFilter) ([]models.LoginLog, int64, error) {
	return s.repo.List(filter)
}

// CountFailedSince 统计某邮箱近期失败次数
func (s *LoginLogService) CountFailedSince(email string, since time.Time) (int64, error) {
	return s.repo.CountFailedSince(email, since)
}
