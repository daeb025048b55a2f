package models

import (
	"time"

	"gorm.io/gorm"
)

// Device VR 头显设备表
type Device struct {
	ID              uint           `gorm:"primarykey" json:"id"`                  // 主键
	SerialNo        string         `gorm:"uniqueIndex;not null" json:"serial_no"` // 设备序列号
	Name            string         `gorm:"default:''" json:"name"`                // 设备名称
	Model           string         `gorm:"default:''" json:"model"`               // 设备型号
	FirmwareVersion string         `gorm:"default:''" json:"firmware_version"`    // 固件版本
	OrganizationID  *uint          `gorm:"index" json:"organization_id"`          // 所属机构
	Status          string         `gorm:"index;default:'active'" json:"status"`  // 状态（active/offline/retired）
	LastSeenAt      *time.Time     `gorm:"index" json:"last_seen_at"`             // 最近心跳时间
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`               // 创建时间
	UpdatedAt       time.Time      `gorm:"index" json:"updated_at"`               // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                        // 软删除时间

	Organization *Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"` // 机构信息
}

// TableName 指定表名
func (Device) TableName() string {
	return "devices"
}
