package models

import (
	"time"

	"gorm.io/gorm"
)

// VirtualUser 虚拟学员表
// 学员不使用密码登录，通过（机构名 + 学员编码）换取邮箱验证码
type VirtualUser struct {
	ID                 uint           `gorm:"primarykey" json:"id"`                                                // 主键
	OrganizationID     uint           `gorm:"index;not null;uniqueIndex:idx_org_user_code" json:"organization_id"` // 所属机构
	UserCode           string         `gorm:"not null;uniqueIndex:idx_org_user_code" json:"user_code"`             // 机构内学员编码
	Email              string         `gorm:"index;not null" json:"email"`                                         // 邮箱（验证码接收）
	DisplayName        string         `gorm:"default:''" json:"display_name"`                                      // 姓名
	Status             string         `gorm:"default:'active'" json:"status"`                                      // 账号状态
	TokenVersion       uint64         `gorm:"default:0" json:"-"`                                                  // 令牌版本（禁用时递增）
	TokenInvalidBefore *time.Time     `json:"-"`                                                                   // 此时间前签发的令牌全部失效
	LastLoginAt        *time.Time     `json:"last_login_at"`                                                       // 最后登录时间
	CreatedAt          time.Time      `gorm:"index" json:"created_at"`                                             // 创建时间
	UpdatedAt          time.Time      `gorm:"index" json:"updated_at"`                                             // 更新时间
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`                                                      // 软删除时间

	Organization *Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"` // 机构信息
}

// TableName 指定表名
func (VirtualUser) TableName() string {
	return "virtual_users"
}
