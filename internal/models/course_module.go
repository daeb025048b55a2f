package models

import (
	"time"

	"gorm.io/gorm"
)

// CourseModule 课程模块表（对应一个 VR 训练场景）
type CourseModule struct {
	ID              uint           `gorm:"primarykey" json:"id"`            // 主键
	CourseID        uint           `gorm:"index;not null" json:"course_id"` // 所属课程
	Title           string         `gorm:"not null" json:"title"`           // 模块标题
	SceneKey        string         `gorm:"not null" json:"scene_key"`       // VR 场景标识
	Sequence        int            `gorm:"index;default:0" json:"sequence"` // 模块顺序
	DurationMinutes int            `gorm:"default:0" json:"duration_minutes"` // 预计时长（分钟）
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`         // 创建时间
	UpdatedAt       time.Time      `gorm:"index" json:"updated_at"`         // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                  // 软删除时间
}

// TableName 指定表名
func (CourseModule) TableName() string {
	return "course_modules"
}
