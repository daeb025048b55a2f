package repository

import (
	"errors"

	"github.com/vrlab-next/internal/models"

	"gorm.io/gorm"
)

// EnrollmentRepository 学习分配数据访问接口
type EnrollmentRepository interface {
	GetByID(id uint) (*models.Enrollment, error)
	GetByLearnerAndCourse(virtualUserID, courseID uint) (*models.Enrollment, error)
	Create(enrollment *models.Enrollment) error
	Update(enrollment *models.Enrollment) error
	Delete(id uint) error
	List(filter EnrollmentListFilter) ([]models.Enrollment, int64, error)
	ListByLearner(virtualUserID uint) ([]models.Enrollment, error)
	CountByStatus(status string) (int64, error)
	CountByCourse(courseID uint) (int64, error)
}

// GormEnrollmentRepository GORM 实现
type GormEnrollmentRepository struct {
	db *gorm.DB
}

// NewEnrollmentRepository 创建分配仓库
func NewEnrollmentRepository(db *gorm.DB) *GormEnrollmentRepository {
	return &GormEnrollmentRepository{db: db}
}

// GetByID 根据 ID 获取分配
func (r *GormEnrollmentRepository) GetByID(id uint) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := r.db.Preload("Course").Preload("VirtualUser").First(&enrollment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &enrollment, nil
}

// GetByLearnerAndCourse 根据学员与课程获取分配
func (r *GormEnrollmentRepository) GetByLearnerAndCourse(virtualUserID, courseID uint) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := r.db.Where("virtual_user_id = ? AND course_id = ?", virtualUserID, courseID).
		Order("id asc").
		First(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &enrollment, nil
}

// Create 创建分配
func (r *GormEnrollmentRepository) Create(enrollment *models.Enrollment) error {
	return r.db.Create(enrollment).Error
}

// Update 更新分配
func (r *GormEnrollmentRepository) Update(enrollment *models.Enrollment) error {
	return r.db.Save(enrollment).Error
}

// Delete 删除分配
func (r *GormEnrollmentRepository) Delete(id uint) error {
	return r.db.Delete(&models.Enrollment{}, id).Error
}

// List 分页查询分配列表
func (r *GormEnrollmentRepository) List(filter EnrollmentListFilter) ([]models.Enrollment, int64, error) {
	query := r.db.Model(&models.Enrollment{})
	if filter.VirtualUserID > 0 {
		query = query.Where("virtual_user_id = ?", filter.VirtualUserID)
	}
	if filter.CourseID > 0 {
		query = query.Where("course_id = ?", filter.CourseID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var enrollments []models.Enrollment
	if err := applyPagination(query, filter.Page, filter.PageSize).
		Preload("Course").Preload("VirtualUser").
		Order("id desc").
		Find(&enrollments).Error; err != nil {
		return nil, 0, err
	}
	return enrollments, total, nil
}

// ListByLearner 获取学员全部分配
func (r *GormEnrollmentRepository) ListByLearner(virtualUserID uint) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	if err := r.db.Where("virtual_user_id = ?", virtualUserID).
		Preload("Course").Preload("Course.Modules", func(db *gorm.DB) *gorm.DB {
		return db.Order("sequence asc, id asc")
	}).
		Order("id desc").
		Find(&enrollments).Error; err != nil {
		return nil, err
	}
	return enrollments, nil
}

// CountByStatus 按状态统计分配数量
func (r *GormEnrollmentRepository) CountByStatus(status string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Enrollment{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// CountByCourse 统计课程下分配数量
func (r *GormEnrollmentRepository) CountByCourse(courseID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Enrollment{}).Where("course_id = ?", courseID).Count(&count).Error
	return count, err
}
