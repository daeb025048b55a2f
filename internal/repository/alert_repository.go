package repository

import (
	"errors"
	"time"

	"github.com/vrlab-next/internal/constants"
	"github.com/vrlab-next/internal/models"

	"gorm.io/gorm"
)

// AlertRepository 告警数据访问接口
type AlertRepository interface {
	GetByID(id uint) (*models.Alert, error)
	Create(alert *models.Alert) error
	Update(alert *models.Alert) error
	List(filter AlertListFilter) ([]models.Alert, int64, error)
	HasOpenAlert(alertType string, deviceID *uint, sessionID *uint) (bool, error)
	CountOpen() (int64, error)
	Acknowledge(id uint, adminID uint) error
	Resolve(id uint, at time.Time) error
}

// GormAlertRepository GORM 实现
type GormAlertRepository struct {
	db *gorm.DB
}

// NewAlertRepository 创建告警仓库
func NewAlertRepository(db *gorm.DB) *GormAlertRepository {
	return &GormAlertRepository{db: db}
}

// GetByID 根据 ID 获取告警
func (r *GormAlertRepository) GetByID(id uint) (*models.Alert, error) {
	var alert models.Alert
	if err := r.db.First(&alert, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &alert, nil
}

// Create 创建告警
func (r *GormAlertRepository) Create(alert *models.Alert) error {
	return r.db.Create(alert).Error
}

// Update 更新告警
func (r *GormAlertRepository) Update(alert *models.Alert) error {
	return r.db.Save(alert).Error
}

// List 分页查询告警列表
func (r *GormAlertRepository) List(filter AlertListFilter) ([]models.Alert, int64, error) {
	query := r.db.Model(&models.Alert{})
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Severity != "" {
		query = query.Where("severity = ?", filter.Severity)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.DeviceID > 0 {
		query = query.Where("device_id = ?", filter.DeviceID)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var alerts []models.Alert
	if err := applyPagination(query, filter.Page, filter.PageSize).
		Order("id desc").
		Find(&alerts).Error; err != nil {
		return nil, 0, err
	}
	return alerts, total, nil
}

// HasOpenAlert 判断是否已有同类未关闭告警（去重用）
func (r *GormAlertRepository) HasOpenAlert(alertType string, deviceID *uint, sessionID *uint) (bool, error) {
	query := r.db.Model(&models.Alert{}).
		Where("type = ? AND status = ?", alertType, constants.AlertStatusOpen)
	if deviceID != nil {
		query = query.Where("device_id = ?", *deviceID)
	}
	if sessionID != nil {
		query = query.Where("session_id = ?", *sessionID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountOpen 统计未关闭告警数量
func (r *GormAlertRepository) CountOpen() (int64, error) {
	var count int64
	err := r.db.Model(&models.Alert{}).
		Where("status = ?", constants.AlertStatusOpen).
		Count(&count).Error
	return count, err
}

// Acknowledge 确认告警
func (r *GormAlertRepository) Acknowledge(id uint, adminID uint) error {
	return r.db.Model(&models.Alert{}).
		Where("id = ? AND status = ?", id, constants.AlertStatusOpen).
		Updates(map[string]interface{}{
			"status":          constants.AlertStatusAcknowledged,
			"acknowledged_by": adminID,
		}).Error
}

// Resolve 关闭告警
func (r *GormAlertRepository) Resolve(id uint, at time.Time) error {
	return r.db.Model(&models.Alert{}).
		Where("id = ? AND status IN ?", id, []string{constants.AlertStatusOpen, constants.AlertStatusAcknowledged}).
		Updates(map[string]interface{}{
			"status":      constants.AlertStatusResolved,
			"resolved_at": at,
		}).Error
}
