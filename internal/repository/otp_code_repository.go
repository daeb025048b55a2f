package repository

import (
	"errors"
	"time"

	"github.com/vrlab-next/internal/models"

	"gorm.io/gorm"
)

// OtpCodeRepository 一次性验证码数据访问接口
type OtpCodeRepository interface {
	Replace(record *models.OtpCode) error
	DeleteAllFor(email, purpose string) (int64, error)
	FindActive(email, purpose, code string, now time.Time) (*models.OtpCode, error)
	MarkUsed(id uint) error
	SweepExpiredOrUsed(now time.Time) (int64, error)
}

// GormOtpCodeRepository GORM 实现
type GormOtpCodeRepository struct {
	db *gorm.DB
}

// NewOtpCodeRepository 创建验证码仓库
func NewOtpCodeRepository(db *gorm.DB) *GormOtpCodeRepository {
	return &GormOtpCodeRepository{db: db}
}

// Replace 原子替换（邮箱、用途）下的有效验证码
// 先删后插放在同一事务里，保证并发签发时同一键最多只剩一条记录
func (r *GormOtpCodeRepository) Replace(record *models.OtpCode) error {
	if record == nil {
		return errors.New("otp record is nil")
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ? AND purpose = ?", record.Email, record.Purpose).
			Delete(&models.OtpCode{}).Error; err != nil {
			return err
		}
		return tx.Create(record).Error
	})
}

// DeleteAllFor 删除（邮箱、用途）下的全部验证码，返回删除条数
func (r *GormOtpCodeRepository) DeleteAllFor(email, purpose string) (int64, error) {
	result := r.db.Where("email = ? AND purpose = ?", email, purpose).Delete(&models.OtpCode{})
	return result.RowsAffected, result.Error
}

// FindActive 查找未使用且未过期的匹配验证码
// 过期边界取闭区间：expires_at == now 仍视为有效
// 若存储被破坏出现多条匹配，按插入顺序取最早一条
func (r *GormOtpCodeRepository) FindActive(email, purpose, code string, now time.Time) (*models.OtpCode, error) {
	var record models.OtpCode
	err := r.db.Where("email = ? AND purpose = ? AND code = ? AND used = ? AND expires_at >= ?",
		email, purpose, code, false, now).
		Order("id asc").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// MarkUsed 标记验证码已使用
func (r *GormOtpCodeRepository) MarkUsed(id uint) error {
	return r.db.Model(&models.OtpCode{}).
		Where("id = ?", id).
		Update("used", true).Error
}

// SweepExpiredOrUsed 清理已过期或已使用的验证码，返回删除条数
func (r *GormOtpCodeRepository) SweepExpiredOrUsed(now time.Time) (int64, error) {
	result := r.db.Where("expires_at <= ? OR used = ?", now, true).Delete(&models.OtpCode{})
	return result.RowsAffected, result.Error
}
