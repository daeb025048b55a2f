package repository

import (
	"errors"

	"github.com/vrlab-next/internal/models"

	"gorm.io/gorm"
)

// OrganizationRepository 机构数据访问接口
type OrganizationRepository interface {
	GetByID(id uint) (*models.Organization, error)
	GetByName(name string) (*models.Organization, error)
	Create(org *models.Organization) error
	Update(org *models.Organization) error
	Delete(id uint) error
	List(filter OrganizationListFilter) ([]models.Organization, int64, error)
}

// GormOrganizationRepository GORM 实现
type GormOrganizationRepository struct {
	db *gorm.DB
}

// NewOrganizationRepository 创建机构仓库
func NewOrganizationRepository(db *gorm.DB) *GormOrganizationRepository {
	return &GormOrganizationRepository{db: db}
}

// GetByID 根据 ID 获取机构
func (r *GormOrganizationRepository) GetByID(id uint) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.First(&org, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &org, nil
}

// GetByName 按名称获取机构（大小写不敏感）
func (r *GormOrganizationRepository) GetByName(name string) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.Where("LOWER(name) = LOWER(?)", name).First(&org).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &org, nil
}

// Create 创建机构
func (r *GormOrganizationRepository) Create(org *models.Organization) error {
	return r.db.Create(org).Error
}

// Update 更新机构
func (r *GormOrganizationRepository) Update(org *models.Organization) error {
	return r.db.Save(org).Error
}

// Delete 删除机构
func (r *GormOrganizationRepository) Delete(id uint) error {
	return r.db.Delete(&models.Organization{}, id).Error
}

// List 机构列表
func (r *GormOrganizationRepository) List(filter OrganizationListFilter) ([]models.Organization, int64, error) {
	query := r.db.Model(&models.Organization{})

	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		query = query.Where("name LIKE ? OR contact_email LIKE ?", like, like)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var orgs []models.Organization
	if err := query.Order("id DESC").Find(&orgs).Error; err != nil {
		return nil, 0, err
	}
	return orgs, total, nil
}
