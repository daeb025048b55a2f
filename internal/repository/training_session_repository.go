package repository

import (
	"errors"
	"time"

	"github.com/vrlab-next/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TrainingSessionRepository 训练会话数据访问接口
type TrainingSessionRepository interface {
	GetByID(id uint) (*models.TrainingSession, error)
	GetByIDWithEvents(id uint) (*models.TrainingSession, error)
	Create(session *models.TrainingSession) error
	CreateWithEvents(session *models.TrainingSession, events []models.TelemetryEvent) error
	List(filter TrainingSessionListFilter) ([]models.TrainingSession, int64, error)
	ListByEnrollment(virtualUserID, courseID uint) ([]models.TrainingSession, error)
	CountSince(since time.Time) (int64, error)
	CountPassedByLearnerCourse(virtualUserID, courseID uint) (map[uint]bool, error)
	AverageScoreByCourse(courseID uint) (*models.Score, error)
}

// GormTrainingSessionRepository GORM 实现
type GormTrainingSessionRepository struct {
	db *gorm.DB
}

// NewTrainingSessionRepository 创建训练会话仓库
func NewTrainingSessionRepository(db *gorm.DB) *GormTrainingSessionRepository {
	return &GormTrainingSessionRepository{db: db}
}

// GetByID 根据 ID 获取会话
func (r *GormTrainingSessionRepository) GetByID(id uint) (*models.TrainingSession, error) {
	var session models.TrainingSession
	if err := r.db.First(&session, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

// GetByIDWithEvents 获取会话及遥测事件
func (r *GormTrainingSessionRepository) GetByIDWithEvents(id uint) (*models.TrainingSession, error) {
	var session models.TrainingSession
	if err := r.db.Preload("Events", func(db *gorm.DB) *gorm.DB {
		return db.Order("occurred_at asc, id asc")
	}).First(&session, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

// Create 创建会话
func (r *GormTrainingSessionRepository) Create(session *models.TrainingSession) error {
	return r.db.Create(session).Error
}

// CreateWithEvents 在同一事务内创建会话和遥测事件
func (r *GormTrainingSessionRepository) CreateWithEvents(session *models.TrainingSession, events []models.TelemetryEvent) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(session).Error; err != nil {
			return err
		}
		if len(events) == 0 {
			return nil
		}
		for i := range events {
			events[i].SessionID = session.ID
		}
		return tx.CreateInBatches(events, 100).Error
	})
}

// List 分页查询会话列表
func (r *GormTrainingSessionRepository) List(filter TrainingSessionListFilter) ([]models.TrainingSession, int64, error) {
	query := r.db.Model(&models.TrainingSession{})
	if filter.VirtualUserID > 0 {
		query = query.Where("virtual_user_id = ?", filter.VirtualUserID)
	}
	if filter.CourseID > 0 {
		query = query.Where("course_id = ?", filter.CourseID)
	}
	if filter.ModuleID > 0 {
		query = query.Where("module_id = ?", filter.ModuleID)
	}
	if filter.DeviceID > 0 {
		query = query.Where("device_id = ?", filter.DeviceID)
	}
	if filter.PassedOnly {
		query = query.Where("passed = ?", true)
	}
	if filter.FailedOnly {
		query = query.Where("passed = ?", false)
	}
	if filter.StartedFrom != nil {
		query = query.Where("started_at >= ?", *filter.StartedFrom)
	}
	if filter.StartedTo != nil {
		query = query.Where("started_at <= ?", *filter.StartedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var sessions []models.TrainingSession
	if err := applyPagination(query, filter.Page, filter.PageSize).
		Order("id desc").
		Find(&sessions).Error; err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}

// ListByEnrollment 获取学员在某课程下的全部会话
func (r *GormTrainingSessionRepository) ListByEnrollment(virtualUserID, courseID uint) ([]models.TrainingSession, error) {
	var sessions []models.TrainingSession
	if err := r.db.Where("virtual_user_id = ? AND course_id = ?", virtualUserID, courseID).
		Order("id asc").
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// CountSince 统计某时间之后的会话数量
func (r *GormTrainingSessionRepository) CountSince(since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.TrainingSession{}).Where("started_at >= ?", since).Count(&count).Error
	return count, err
}

// CountPassedByLearnerCourse 返回学员在某课程下各模块是否有通过记录
func (r *GormTrainingSessionRepository) CountPassedByLearnerCourse(virtualUserID, courseID uint) (map[uint]bool, error) {
	type row struct {
		ModuleID uint
	}
	var rows []row
	if err := r.db.Model(&models.TrainingSession{}).
		Select("DISTINCT module_id").
		Where("virtual_user_id = ? AND course_id = ? AND passed = ?", virtualUserID, courseID, true).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	passed := make(map[uint]bool, len(rows))
	for _, rw := range rows {
		passed[rw.ModuleID] = true
	}
	return passed, nil
}

// AverageScoreByCourse 统计课程平均得分
func (r *GormTrainingSessionRepository) AverageScoreByCourse(courseID uint) (*models.Score, error) {
	var result struct {
		Avg float64
	}
	err := r.db.Model(&models.TrainingSession{}).
		Select("COALESCE(AVG(CAST(score AS REAL)), 0) as avg").
		Where("course_id = ?", courseID).
		Scan(&result).Error
	if err != nil {
		return nil, err
	}
	score := models.NewScoreFromDecimal(decimal.NewFromFloat(result.Avg))
	return &score, nil
}
