package models

import (
	"time"

	"gorm.io/gorm"
)

// TrainingSession 训练会话表（一次 VR 模块训练的遥测汇总）
type TrainingSession struct {
	ID              uint           `gorm:"primarykey" json:"id"`                   // 主键
	VirtualUserID   uint           `gorm:"index;not null" json:"virtual_user_id"`  // 学员
	CourseID        uint           `gorm:"index;not null" json:"course_id"`        // 课程
	ModuleID        uint           `gorm:"index;not null" json:"module_id"`        // 课程模块
	DeviceID        *uint          `gorm:"index" json:"device_id"`                 // 使用设备
	StartedAt       time.Time      `gorm:"index" json:"started_at"`                // 开始时间
	EndedAt         time.Time      `gorm:"index" json:"ended_at"`                  // 结束时间
	DurationSeconds int            `gorm:"default:0" json:"duration_seconds"`      // 训练时长（秒）
	Score           Score          `gorm:"type:decimal(10,2)" json:"score"`        // 训练得分
	Passed          bool           `gorm:"index;default:false" json:"passed"`      // 是否通过
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                // 创建时间
	UpdatedAt       time.Time      `gorm:"index" json:"updated_at"`                // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                         // 软删除时间

	VirtualUser *VirtualUser     `gorm:"foreignKey:VirtualUserID" json:"virtual_user,omitempty"` // 学员信息
	Course      *Course          `gorm:"foreignKey:CourseID" json:"course,omitempty"`            // 课程信息
	Module      *CourseModule    `gorm:"foreignKey:ModuleID" json:"module,omitempty"`            // 模块信息
	Events      []TelemetryEvent `gorm:"foreignKey:SessionID" json:"events,omitempty"`           // 遥测事件
}

// TableName 指定表名
func (TrainingSession) TableName() string {
	return "training_sessions"
}
