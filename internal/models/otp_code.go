package models

import "time"

// OtpCode 一次性验证码记录
// 对同一（邮箱、用途）最多只存在一条有效记录；签发新码前先清掉旧码
type OtpCode struct {
	ID        uint      `gorm:"primarykey" json:"id"`          // 主键
	Email     string    `gorm:"index;not null" json:"email"`   // 邮箱（已归一化）
	Purpose   string    `gorm:"index;not null" json:"purpose"` // 用途（login/signup/forgot_password/virtual_user）
	Code      string    `gorm:"not null" json:"-"`             // 6 位数字验证码（不返回给前端）
	Used      bool      `gorm:"index;default:false" json:"-"`  // 是否已使用（单次有效）
	CreatedAt time.Time `gorm:"index" json:"created_at"`       // 签发时间
	ExpiresAt time.Time `gorm:"index" json:"expires_at"`       // 过期时间
}

// TableName 指定表名
func (OtpCode) TableName() string {
	return "otp_codes"
}
