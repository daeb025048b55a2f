package service

import (
	"time"

	"github.com/vrlab-next/internal/constants"
	"github.com/vrlab-next/internal/logger"
	"github.com/vrlab-next/internal/models"
	"github.com/vrlab-next/internal/queue"
	"github.com/vrlab-next/internal/repository"
)

// AlertService 告警业务服务
type AlertService struct {
	repo        repository.AlertRepository
	queueClient *queue.Client
}

// NewAlertService 创建告警服务
func NewAlertService(repo repository.AlertRepository, queueClient *queue.Client) *AlertService {
	return &AlertService{repo: repo, queueClient: queueClient}
}

// RaiseAlertInput 触发告警输入
type RaiseAlertInput struct {
	Type          string
	Severity      string
	Message       string
	DeviceID      *uint
	VirtualUserID *uint
	SessionID     *uint
}

// List 分页查询告警
func (s *AlertService) List(filter repository.AlertListFilter) ([]models.Alert, int64, error) {
	return s.repo.List(filter)
}

// Get 获取告警详情
func (s *AlertService) Get(id uint) (*models.Alert, error) {
	alert, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if alert == nil {
		return nil, ErrNotFound
	}
	return alert, nil
}

// Raise 触发告警；同类未关闭告警存在时去重，不重复入队邮件
func (s *AlertService) Raise(input RaiseAlertInput) (*models.Alert, error) {
	exists, err := s.repo.HasOpenAlert(input.Type, input.DeviceID, input.SessionID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, nil
	}

	alert := models.Alert{
		Type:          input.Type,
		Severity:      resolveAlertSeverity(input.Severity),
		Message:       input.Message,
		Status:        constants.AlertStatusOpen,
		DeviceID:      input.DeviceID,
		VirtualUserID: input.VirtualUserID,
		SessionID:     input.SessionID,
	}
	if err := s.repo.Create(&alert); err != nil {
		return nil, err
	}

	if err := s.queueClient.EnqueueAlertEmail(queue.AlertEmailPayload{AlertID: alert.ID}); err != nil {
		logger.Warnw("alert_email_enqueue_failed", "alert_id", alert.ID, "error", err)
	}
	return &alert, nil
}

// Acknowledge 确认告警，仅允许 open 状态
func (s *AlertService) Acknowledge(id uint, adminID uint) (*models.Alert, error) {
	alert, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if alert == nil {
		return nil, ErrNotFound
	}
	if alert.Status != constants.AlertStatusOpen {
		return nil, ErrAlertStateInvalid
	}
	if err := s.repo.Acknowledge(id, adminID); err != nil {
		return nil, err
	}
	alert.Status = constants.AlertStatusAcknowledged
	alert.AcknowledgedBy = &adminID
	return alert, nil
}

// Resolve 关闭告警，允许 open / acknowledged 状态
func (s *AlertService) Resolve(id uint) (*models.Alert, error) {
	alert, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if alert == nil {
		return nil, ErrNotFound
	}
	if alert.Status != constants.AlertStatusOpen && alert.Status != constants.AlertStatusAcknowledged {
		return nil, ErrAlertStateInvalid
	}
	now := time.Now()
	if err := s.repo.Resolve(id, now); err != nil {
		return nil, err
	}
	alert.Status = constants.AlertStatusResolved
	alert.ResolvedAt = &now
	return alert, nil
}

func resolveAlertSeverity(severity string) string {
	switch severity {
	case constants.AlertSeverityInfo, constants.AlertSeverityWarning, constants.AlertSeverityCritical:
		return severity
	default:
		return constants.AlertSeverityWarning
	}
}
