package models

import (
	"time"

	"gorm.io/gorm"
)

// Enrollment 学员选课记录表
type Enrollment struct {
	ID            uint           `gorm:"primarykey" json:"id"`                                               // 主键
	VirtualUserID uint           `gorm:"index;not null" json:"virtual_user_id"` // 学员（学员课程对唯一性由服务层保证，软删除后可重新分配）
	CourseID      uint           `gorm:"index;not null" json:"course_id"`       // 课程
	Status        string         `gorm:"index;default:'assigned'" json:"status"`                             // 状态（assigned/in_progress/completed）
	Progress      int            `gorm:"default:0" json:"progress"`                                          // 进度百分比（0-100）
	AssignedBy    *uint          `gorm:"index" json:"assigned_by"`                                           // 分配人（管理员ID）
	StartedAt     *time.Time     `json:"started_at"`                                                         // 首次训练时间
	CompletedAt   *time.Time     `json:"completed_at"`                                                       // 完成时间
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                                            // 创建时间
	UpdatedAt     time.Time      `gorm:"index" json:"updated_at"`                                            // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                                     // 软删除时间

	VirtualUser *VirtualUser `gorm:"foreignKey:VirtualUserID" json:"virtual_user,omitempty"` // 学员信息
	Course      *Course      `gorm:"foreignKey:CourseID" json:"course,omitempty"`            // 课程信息
}

// TableName 指定表名
func (Enrollment) TableName() string {
	return "enrollments"
}
