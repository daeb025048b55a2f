package models

import "time"

// LoginLog 登录日志表（管理员与学员共用）
type LoginLog struct {
	ID         uint      `gorm:"primarykey" json:"id"`             // 主键
	Subject    string    `gorm:"index;not null" json:"subject"`    // 主体类型（admin/learner）
	SubjectID  uint      `gorm:"index;default:0" json:"subject_id"` // 主体ID（失败时可能为 0）
	Email      string    `gorm:"index" json:"email"`               // 登录邮箱
	Status     string    `gorm:"index;not null" json:"status"`     // 结果（success/pending_verification/failed）
	FailReason string    `gorm:"index;default:''" json:"fail_reason"` // 失败原因
	ClientIP   string    `gorm:"index;default:''" json:"client_ip"`   // 客户端 IP
	UserAgent  string    `gorm:"default:''" json:"user_agent"`     // User-Agent
	CreatedAt  time.Time `gorm:"index" json:"created_at"`          // 创建时间
}

// TableName 指定表名
func (LoginLog) TableName() string {
	return "login_logs"
}
