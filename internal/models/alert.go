package models

import (
	"time"

	"gorm.io/gorm"
)

// Alert 运行告警表
type Alert struct {
	ID             uint           `gorm:"primarykey" json:"id"`               // 主键
	Type           string         `gorm:"index;not null" json:"type"`         // 告警类型（device_offline/low_score/session_failed）
	Severity       string         `gorm:"index;not null" json:"severity"`     // 级别（info/warning/critical）
	Message        string         `gorm:"type:text" json:"message"`           // 告警内容
	Status         string         `gorm:"index;default:'open'" json:"status"` // 状态（open/acknowledged/resolved）
	DeviceID       *uint          `gorm:"index" json:"device_id"`             // 关联设备
	VirtualUserID  *uint          `gorm:"index" json:"virtual_user_id"`       // 关联学员
	SessionID      *uint          `gorm:"index" json:"session_id"`            // 关联训练会话
	AcknowledgedBy *uint          `gorm:"index" json:"acknowledged_by"`       // 确认人（管理员ID）
	ResolvedAt     *time.Time     `json:"resolved_at"`                        // 解决时间
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`            // 创建时间
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`            // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                     // 软删除时间
}

// TableName 指定表名
func (Alert) TableName() string {
	return "alerts"
}
