package repository

import (
	"errors"

	"github.com/vrlab-next/internal/models"

	"gorm.io/gorm"
)

// CourseModuleRepository 课程模块数据访问接口
type CourseModuleRepository interface {
	GetByID(id uint) (*models.CourseModule, error)
	ListByCourse(courseID uint) ([]models.CourseModule, error)
	CountByCourse(courseID uint) (int64, error)
	Create(module *models.CourseModule) error
	Update(module *models.CourseModule) error
	Delete(id uint) error
	Resequence(courseID uint, orderedIDs []uint) error
}

// GormCourseModuleRepository GORM 实现
type GormCourseModuleRepository struct {
	db *gorm.DB
}

// NewCourseModuleRepository 创建课程模块仓库
func NewCourseModuleRepository(db *gorm.DB) *GormCourseModuleRepository {
	return &GormCourseModuleRepository{db: db}
}

// GetByID 根据 ID 获取模块
func (r *GormCourseModuleRepository) GetByID(id uint) (*models.CourseModule, error) {
	var module models.CourseModule
	if err := r.db.First(&module, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &module, nil
}

// ListByCourse 按课程获取模块（按顺序）
func (r *GormCourseModuleRepository) ListByCourse(courseID uint) ([]models.CourseModule, error) {
	var modules []models.CourseModule
	if err := r.db.Where("course_id = ?", courseID).
		Order("sequence asc, id asc").
		Find(&modules).Error; err != nil {
		return nil, err
	}
	return modules, nil
}

// CountByCourse 统计课程模块数量
func (r *GormCourseModuleRepository) CountByCourse(courseID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.CourseModule{}).Where("course_id = ?", courseID).Count(&count).Error
	return count, err
}

// Create 创建模块
func (r *GormCourseModuleRepository) Create(module *models.CourseModule) error {
	return r.db.Create(module).Error
}

// Update 更新模块
func (r *GormCourseModuleRepository) Update(module *models.CourseModule) error {
	return r.db.Save(module).Error
}

// Delete 删除模块
func (r *GormCourseModuleRepository) Delete(id uint) error {
	return r.db.Delete(&models.CourseModule{}, id).Error
}

// Resequence 按给定顺序重排课程模块
func (r *GormCourseModuleRepository) Resequence(courseID uint, orderedIDs []uint) error {
	if len(orderedIDs) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		for idx, id := range orderedIDs {
			result := tx.Model(&models.CourseModule{}).
				Where("id = ? AND course_id = ?", id, courseID).
				Update("sequence", idx+1)
			if result.Error != nil {
				return result.Error
			}
		}
		return nil
	})
}
