package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/vrlab-next/internal/constants"
	"github.com/vrlab-next/internal/logger"
	"github.com/vrlab-next/internal/models"
	"github.com/vrlab-next/internal/provider"
	"github.com/vrlab-next/internal/queue"
	"github.com/vrlab-next/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskAlertEmail, c.handleAlertEmail)
	mux.HandleFunc(queue.TaskSessionIngested, c.handleSessionIngested)
}

func (c *Consumer) handleAlertEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_alert_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.AlertEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_alert_email_unmarshal_failed", "error", err)
		return err
	}
	if payload.AlertID == 0 {
		logger.Debugw("worker_alert_email_skip_invalid_payload", "alert_id", payload.AlertID)
		return nil
	}
	alert, err := c.AlertRepo.GetByID(payload.AlertID)
	if err != nil {
		logger.Warnw("worker_alert_email_fetch_failed", "alert_id", payload.AlertID, "error", err)
		return err
	}
	if alert == nil {
		logger.Debugw("worker_alert_email_skip_not_found", "alert_id", payload.AlertID)
		return nil
	}
	receiver := strings.TrimSpace(c.Config.Monitoring.OpsAlertEmail)
	if receiver == "" {
		logger.Debugw("worker_alert_email_skip_empty_receiver", "alert_id", alert.ID)
		return nil
	}
	if c.EmailService == nil {
		logger.Warnw("worker_alert_email_skip_email_service_nil", "alert_id", alert.ID)
		return nil
	}
	input := service.AlertEmailInput{
		Type:     alert.Type,
		Severity: alert.Severity,
		Message:  alert.Message,
	}
	if err := c.EmailService.SendAlertEmail(receiver, input, ""); err != nil {
		logger.Warnw("worker_alert_email_send_failed",
			"alert_id", alert.ID,
			"receiver_email", receiver,
			"error", err,
		)
		return err
	}
	return nil
}

func (c *Consumer) handleSessionIngested(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_session_ingested_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.SessionIngestedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_session_ingested_unmarshal_failed", "error", err)
		return err
	}
	if payload.SessionID == 0 {
		logger.Debugw("worker_session_ingested_skip_invalid_payload", "session_id", payload.SessionID)
		return nil
	}
	session, err := c.TrainingSessionRepo.GetByID(payload.SessionID)
	if err != nil {
		logger.Warnw("worker_session_ingested_fetch_failed", "session_id", payload.SessionID, "error", err)
		return err
	}
	if session == nil {
		logger.Debugw("worker_session_ingested_skip_not_found", "session_id", payload.SessionID)
		return nil
	}

	if err := c.recomputeEnrollmentProgress(session.VirtualUserID, session.CourseID, session.StartedAt); err != nil {
		logger.Warnw("worker_session_ingested_progress_failed",
			"session_id", session.ID,
			"virtual_user_id", session.VirtualUserID,
			"course_id", session.CourseID,
			"error", err,
		)
		return err
	}

	c.raiseLowScoreAlert(session.ID, session.VirtualUserID, session.Score.String(), session.Passed)
	return nil
}

// recomputeEnrollmentProgress 按已通过模块数重算进度与状态
func (c *Consumer) recomputeEnrollmentProgress(virtualUserID, courseID uint, startedAt time.Time) error {
	enrollment, err := c.EnrollmentRepo.GetByLearnerAndCourse(virtualUserID, courseID)
	if err != nil {
		return err
	}
	if enrollment == nil {
		logger.Debugw("worker_session_ingested_skip_no_enrollment",
			"virtual_user_id", virtualUserID, "course_id", courseID)
		return nil
	}

	moduleCount, err := c.CourseModuleRepo.CountByCourse(courseID)
	if err != nil {
		return err
	}
	passedModules, err := c.TrainingSessionRepo.CountPassedByLearnerCourse(virtualUserID, courseID)
	if err != nil {
		return err
	}

	progress := 0
	if moduleCount > 0 {
		progress = int(float64(len(passedModules)) / float64(moduleCount) * 100)
		if progress > 100 {
			progress = 100
		}
	}

	enrollment.Progress = progress
	if enrollment.Status == constants.EnrollmentStatusAssigned {
		enrollment.Status = constants.EnrollmentStatusInProgress
		at := startedAt
		enrollment.StartedAt = &at
	}
	if moduleCount > 0 && int64(len(passedModules)) >= moduleCount &&
		enrollment.Status != constants.EnrollmentStatusCompleted {
		now := time.Now()
		enrollment.Status = constants.EnrollmentStatusCompleted
		enrollment.CompletedAt = &now
	}
	return c.EnrollmentRepo.Update(enrollment)
}

// raiseLowScoreAlert 低于阈值且未通过时触发低分告警
func (c *Consumer) raiseLowScoreAlert(sessionID, virtualUserID uint, score string, passed bool) {
	if passed || c.AlertService == nil {
		return
	}
	threshold := strings.TrimSpace(c.Config.Monitoring.LowScoreThreshold)
	if threshold == "" {
		return
	}
	thresholdScore, err := models.ParseScore(threshold)
	if err != nil {
		logger.Warnw("worker_low_score_threshold_invalid", "threshold", threshold, "error", err)
		return
	}
	sessionScore, err := models.ParseScore(score)
	if err != nil {
		return
	}
	if sessionScore.Decimal.GreaterThanOrEqual(thresholdScore.Decimal) {
		return
	}
	_, err = c.AlertService.Raise(service.RaiseAlertInput{
		Type:          constants.AlertTypeLowScore,
		Severity:      constants.AlertSeverityWarning,
		Message:       fmt.Sprintf("training session %d scored %s, below threshold %s", sessionID, score, threshold),
		VirtualUserID: &virtualUserID,
		SessionID:     &sessionID,
	})
	if err != nil {
		logger.Warnw("worker_low_score_alert_failed", "session_id", sessionID, "error", err)
	}
}
