package repository

import (
	"errors"
	"time"

	"github.com/vrlab-next/internal/constants"
	"github.com/vrlab-next/internal/models"

	"gorm.io/gorm"
)

// DeviceRepository 头显设备数据访问接口
type DeviceRepository interface {
	GetByID(id uint) (*models.Device, error)
	GetBySerialNo(serialNo string) (*models.Device, error)
	Create(device *models.Device) error
	Update(device *models.Device) error
	Delete(id uint) error
	List(filter DeviceListFilter) ([]models.Device, int64, error)
	Touch(id uint, at time.Time, firmwareVersion string) error
	FindStale(before time.Time) ([]models.Device, error)
	MarkOffline(ids []uint) (int64, error)
	CountByStatus(status string) (int64, error)
	CountByOrganization(organizationID uint) (int64, error)
}

// GormDeviceRepository GORM 实现
type GormDeviceRepository struct {
	db *gorm.DB
}

// NewDeviceRepository 创建设备仓库
func NewDeviceRepository(db *gorm.DB) *GormDeviceRepository {
	return &GormDeviceRepository{db: db}
}

// GetByID 根据 ID 获取设备
func (r *GormDeviceRepository) GetByID(id uint) (*models.Device, error) {
	var device models.Device
	if err := r.db.First(&device, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &device, nil
}

// GetBySerialNo 根据序列号获取设备
func (r *GormDeviceRepository) GetBySerialNo(serialNo string) (*models.Device, error) {
	var device models.Device
	if err := r.db.Where("serial_no = ?", serialNo).Order("id asc").First(&device).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &device, nil
}

// Create 创建设备
func (r *GormDeviceRepository) Create(device *models.Device) error {
	return r.db.Create(device).Error
}

// Update 更新设备
func (r *GormDeviceRepository) Update(device *models.Device) error {
	return r.db.Save(device).Error
}

// Delete 删除设备
func (r *GormDeviceRepository) Delete(id uint) error {
	return r.db.Delete(&models.Device{}, id).Error
}

// List 分页查询设备列表
func (r *GormDeviceRepository) List(filter DeviceListFilter) ([]models.Device, int64, error) {
	query := r.db.Model(&models.Device{})
	if filter.OrganizationID > 0 {
		query = query.Where("organization_id = ?", filter.OrganizationID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		query = query.Where("serial_no LIKE ? OR name LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var devices []models.Device
	if err := applyPagination(query, filter.Page, filter.PageSize).
		Order("id desc").
		Find(&devices).Error; err != nil {
		return nil, 0, err
	}
	return devices, total, nil
}

// Touch 更新设备心跳时间与固件版本
func (r *GormDeviceRepository) Touch(id uint, at time.Time, firmwareVersion string) error {
	updates := map[string]interface{}{
		"last_seen_at": at,
		"status":       constants.DeviceStatusActive,
	}
	if firmwareVersion != "" {
		updates["firmware_version"] = firmwareVersion
	}
	return r.db.Model(&models.Device{}).Where("id = ?", id).Updates(updates).Error
}

// FindStale 查找心跳超时的在线设备
func (r *GormDeviceRepository) FindStale(before time.Time) ([]models.Device, error) {
	var devices []models.Device
	if err := r.db.Where("status = ? AND (last_seen_at IS NULL OR last_seen_at < ?)",
		constants.DeviceStatusActive, before).
		Order("id asc").
		Find(&devices).Error; err != nil {
		return nil, err
	}
	return devices, nil
}

// MarkOffline 批量标记设备离线
func (r *GormDeviceRepository) MarkOffline(ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.Model(&models.Device{}).
		Where("id IN ? AND status = ?", ids, constants.DeviceStatusActive).
		Update("status", constants.DeviceStatusOffline)
	return result.RowsAffected, result.Error
}

// CountByStatus 按状态统计设备数量
func (r *GormDeviceRepository) CountByStatus(status string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Device{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// CountByOrganization 统计机构下设备数量
func (r *GormDeviceRepository) CountByOrganization(organizationID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Device{}).
		Where("organization_id = ?", organizationID).
		Count(&count).Error
	return count, err
}
