package repository

import (
	"time"

	"github.com/vrlab-next/internal/constants"
	"github.com/vrlab-next/internal/models"

	"gorm.io/gorm"
)

// LoginLogRepository 登录日志数据访问接口
type LoginLogRepository interface {
	Create(log *models.LoginLog) error
	List(filter LoginLogListFilter) ([]models.LoginLog, int64, error)
	CountFailedSince(email string, since time.Time) (int64, error)
}

// GormLoginLogRepository GORM 实现
type GormLoginLogRepository struct {
	db *gorm.DB
}

// NewLoginLogRepository 创建登录日志仓库
func NewLoginLogRepository(db *gorm.DB) *GormLoginLogRepository {
	return &GormLoginLogRepository{db: db}
}

// Create 写入登录日志
func (r *GormLoginLogRepository) Create(log *models.LoginLog) error {
	return r.db.Create(log).Error
}

// List 分页查询登录日志
func (r *GormLoginLogRepository) List(filter LoginLogListFilter) ([]models.LoginLog, int64, error) {
	query := r.db.Model(&models.LoginLog{})
	if filter.Subject != "" {
		query = query.Where("subject = ?", filter.Subject)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.SubjectID > 0 {
		query = query.Where("subject_id = ?", filter.SubjectID)
	}
	if filter.Email != "" {
		query = query.Where("email = ?", filter.Email)
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

	var logs []models.LoginLog
	if err := applyPagination(query, filter.Page, filter.PageSize).
		Order("id desc").
		Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

// CountFailedSince 统计某邮箱近期失败次数
func (r *GormLoginLogRepository) CountFailedSince(email string, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.LoginLog{}).
		Where("email = ? AND status = ? AND created_at >= ?", email, constants.LoginLogStatusFailed, since).
		Count(&count).Error
	return count, err
}
