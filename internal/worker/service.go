package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vrlab-next/internal/config"
	"github.com/vrlab-next/internal/constants"
	"github.com/vrlab-next/internal/logger"
	"github.com/vrlab-next/internal/queue"
	"github.com/vrlab-next/internal/service"

	"github.com/hibiken/asynq"
)

// Service 异步队列服务
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil && s.consumer.OtpService != nil {
		go s.runOtpCleanupLoop(ctx)
	}
	if s.consumer != nil && s.consumer.DeviceRepo != nil {
		go s.runDeviceOfflineLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// runOtpCleanupLoop 周期清理过期或已使用的验证码，单次失败不中断循环
func (s *Service) runOtpCleanupLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.OtpService == nil {
		return
	}
	runOnce := func() {
		removed, err := s.consumer.OtpService.Cleanup(time.Now())
		if err != nil {
			logger.Warnw("worker_otp_cleanup_failed", "error", err)
			return
		}
		if removed > 0 {
			logger.Infow("worker_otp_cleanup_done", "removed", removed)
		}
	}
	runSweepLoop(ctx, s.consumer.OtpService.CleanupInterval(), runOnce)
}

// runDeviceOfflineLoop 周期巡检设备在线状态，超阈值标记离线并触发告警
func (s *Service) runDeviceOfflineLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.DeviceRepo == nil {
		return
	}
	offlineAfter := resolveDeviceOfflineAfter(&s.consumer.Config.Monitoring)
	interval := resolveDeviceSweepInterval(&s.consumer.Config.Monitoring)

	runOnce := func() {
		before := time.Now().Add(-offlineAfter)
		stale, err := s.consumer.DeviceRepo.FindStale(before)
		if err != nil {
			logger.Warnw("worker_device_sweep_failed", "error", err)
			return
		}
		if len(stale) == 0 {
			return
		}
		ids := make([]uint, 0, len(stale))
		for _, device := range stale {
			ids = append(ids, device.ID)
		}
		marked, err := s.consumer.DeviceRepo.MarkOffline(ids)
		if err != nil {
			logger.Warnw("worker_device_mark_offline_failed", "error", err)
			return
		}
		logger.Infow("worker_device_marked_offline", "count", marked)

		if s.consumer.AlertService == nil {
			return
		}
		for _, device := range stale {
			deviceID := device.ID
			_, err := s.consumer.AlertService.Raise(service.RaiseAlertInput{
				Type:     constants.AlertTypeDeviceOffline,
				Severity: constants.AlertSeverityWarning,
				Message:  fmt.Sprintf("device %s has not reported for %s", device.SerialNo, offlineAfter),
				DeviceID: &deviceID,
			})
			if err != nil {
				logger.Warnw("worker_device_offline_alert_failed", "device_id", deviceID, "error", err)
			}
		}
	}
	runSweepLoop(ctx, interval, runOnce)
}

// runSweepLoop 周期执行 fn，间隔从上一次执行结束后起算，慢任务不会连发
func runSweepLoop(ctx context.Context, interval time.Duration, fn func()) {
	fn()
	timer := time.NewTimer(interval)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			fn()
			timer.Reset(interval)
		}
	}
}

func resolveDeviceOfflineAfter(cfg *config.MonitoringConfig) time.Duration {
	minutes := 15
	if cfg != nil && cfg.DeviceOfflineMinutes > 0 {
		minutes = cfg.DeviceOfflineMinutes
	}
	return time.Duration(minutes) * time.Minute
}

func resolveDeviceSweepInterval(cfg *config.MonitoringConfig) time.Duration {
	minutes := 5
	if cfg != nil && cfg.DeviceSweepIntervalMin > 0 {
		minutes = cfg.DeviceSweepIntervalMin
	}
	return time.Duration(minutes) * time.Minute
}
