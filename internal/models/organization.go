package models

import (
	"time"

	"gorm.io/gorm"
)

// Organization 培训机构表
type Organization struct {
	ID           uint           `gorm:"primarykey" json:"id"`             // 主键
	Name         string         `gorm:"uniqueIndex;not null" json:"name"` // 机构名称
	ContactEmail string         `gorm:"default:''" json:"contact_email"`  // 联系邮箱
	Status       string         `gorm:"default:'active'" json:"status"`   // 机构状态
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`          // 创建时间
	UpdatedAt    time.Time      `gorm:"index" json:"updated_at"`          // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                   // 软删除时间
}

// TableName 指定表名
func (Organization) TableName() string {
	return "organizations"
}
