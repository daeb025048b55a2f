package models

import "time"

// TelemetryEvent 遥测事件表（头显上报的原始事件）
type TelemetryEvent struct {
	ID         uint      `gorm:"primarykey" json:"id"`              // 主键
	SessionID  uint      `gorm:"index;not null" json:"session_id"`  // 所属训练会话
	EventType  string    `gorm:"index;not null" json:"event_type"`  // 事件类型（gaze/interaction/checkpoint/error）
	Payload    string    `gorm:"type:text" json:"payload"`          // 事件载荷（JSON 字符串）
	OccurredAt time.Time `gorm:"index" json:"occurred_at"`          // 发生时间
	CreatedAt  time.Time `gorm:"index" json:"created_at"`           // 入库时间
}

// TableName 指定表名
func (TelemetryEvent) TableName() string {
	return "telemetry_events"
}
