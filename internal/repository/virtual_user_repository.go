package repository

import (
	"errors"
	"time"

	"github.com/vrlab-next/internal/models"

	"gorm.io/gorm"
)

// VirtualUserRepository 虚拟学员数据访问接口
type VirtualUserRepository interface {
	GetByID(id uint) (*models.VirtualUser, error)
	GetByEmail(email string) (*models.VirtualUser, error)
	GetByOrgNameAndCode(orgName, userCode string) (*models.VirtualUser, error)
	GetByOrgAndCode(organizationID uint, userCode string) (*models.VirtualUser, error)
	CountByOrganization(organizationID uint) (int64, error)
	Create(user *models.VirtualUser) error
	Update(user *models.VirtualUser) error
	Delete(id uint) error
	UpdateLastLogin(id uint, at time.Time) error
	List(filter VirtualUserListFilter) ([]models.VirtualUser, int64, error)
}

// GormVirtualUserRepository GORM 实现
type GormVirtualUserRepository struct {
	db *gorm.DB
}

// NewVirtualUserRepository 创建虚拟学员仓库
func NewVirtualUserRepository(db *gorm.DB) *GormVirtualUserRepository {
	return &GormVirtualUserRepository{db: db}
}

// GetByID 根据 ID 获取学员
func (r *GormVirtualUserRepository) GetByID(id uint) (*models.VirtualUser, error) {
	var user models.VirtualUser
	if err := r.db.Preload("Organization").First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByEmail 根据邮箱获取学员
func (r *GormVirtualUserRepository) GetByEmail(email string) (*models.VirtualUser, error) {
	var user models.VirtualUser
	if err := r.db.Where("email = ?", email).Order("id asc").First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByOrgNameAndCode 按（机构名、学员编码）获取学员，两者均大小写不敏感
func (r *GormVirtualUserRepository) GetByOrgNameAndCode(orgName, userCode string) (*models.VirtualUser, error) {
	var user models.VirtualUser
	err := r.db.Joins("JOIN organizations ON organizations.id = virtual_users.organization_id").
		Where("LOWER(organizations.name) = LOWER(?) AND LOWER(virtual_users.user_code) = LOWER(?)", orgName, userCode).
		Where("organizations.deleted_at IS NULL").
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByOrgAndCode 按（机构 ID、学员编码）获取学员，编码大小写不敏感
func (r *GormVirtualUserRepository) GetByOrgAndCode(organizationID uint, userCode string) (*models.VirtualUser, error) {
	var user models.VirtualUser
	err := r.db.Where("organization_id = ? AND LOWER(user_code) = LOWER(?)", organizationID, userCode).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// CountByOrganization 统计机构下学员数量
func (r *GormVirtualUserRepository) CountByOrganization(organizationID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.VirtualUser{}).
		Where("organization_id = ?", organizationID).
		Count(&count).Error
	return count, err
}

// Create 创建学员
func (r *GormVirtualUserRepository) Create(user *models.VirtualUser) error {
	return r.db.Create(user).Error
}

// Update 更新学员
func (r *GormVirtualUserRepository) Update(user *models.VirtualUser) error {
	return r.db.Save(user).Error
}

// Delete 删除学员
func (r *GormVirtualUserRepository) Delete(id uint) error {
	return r.db.Delete(&models.VirtualUser{}, id).Error
}

// UpdateLastLogin 更新最后登录时间
func (r *GormVirtualUserRepository) UpdateLastLogin(id uint, at time.Time) error {
	return r.db.Model(&models.VirtualUser{}).
		Where("id = ?", id).
		Update("last_login_at", at).Error
}

// List 学员列表
func (r *GormVirtualUserRepository) List(filter VirtualUserListFilter) ([]models.VirtualUser, int64, error) {
	query := r.db.Model(&models.VirtualUser{})

	if filter.OrganizationID > 0 {
		query = query.Where("organization_id = ?", filter.OrganizationID)
	}
	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		query = query.Where("email LIKE ? OR display_name LIKE ? OR user_code LIKE ?", like, like, like)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var users []models.VirtualUser
	if err := query.Preload("Organization").Order("id DESC").Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}
