package queue

import (
	"encoding/json"

	"github.com/vrlab-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskAlertEmail 告警邮件通知任务
	TaskAlertEmail = constants.TaskAlertEmail
	// TaskSessionIngested 训练会话入库后处理任务
	TaskSessionIngested = constants.TaskSessionIngested
)

// AlertEmailPayload 告警邮件任务载荷
type AlertEmailPayload struct {
	AlertID uint `json:"alert_id"`
}

// SessionIngestedPayload 会话后处理任务载荷
type SessionIngestedPayload struct {
	SessionID uint `json:"session_id"`
}

// NewAlertEmailTask 创建告警邮件任务
func NewAlertEmailTask(payload AlertEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAlertEmail, body), nil
}

// NewSessionIngestedTask 创建会话后处理任务
func NewSessionIngestedTask(payload SessionIngestedPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSessionIngested, body), nil
}
