package models

import (
	"time"

	"gorm.io/gorm"
)

// Course VR 培训课程表
type Course struct {
	ID              uint           `gorm:"primarykey" json:"id"`             // 主键
	Title           string         `gorm:"not null" json:"title"`            // 课程标题
	Slug            string         `gorm:"uniqueIndex;not null" json:"slug"` // 课程标识
	Description     string         `gorm:"type:text" json:"description"`     // 课程简介
	CoverURL        string         `gorm:"default:''" json:"cover_url"`      // 封面图
	DurationMinutes int            `gorm:"default:0" json:"duration_minutes"` // 预计时长（分钟）
	PassingScore    Score          `gorm:"type:decimal(10,2)" json:"passing_score"` // 及格分数线
	Status          string         `gorm:"index;default:'draft'" json:"status"`     // 状态（draft/published/archived）
	CreatedBy       *uint          `gorm:"index" json:"created_by"`          // 创建人（管理员ID）
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`          // 创建时间
	UpdatedAt       time.Time      `gorm:"index" json:"updated_at"`          // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                   // 软删除时间

	Modules []CourseModule `gorm:"foreignKey:CourseID" json:"modules,omitempty"` // 课程模块
}

// TableName 指定表名
func (Course) TableName() string {
	return "courses"
}
