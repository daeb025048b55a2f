package service

import (
	"time"

	"github.com/vrlab-next/internal/logger"
	"github.com/vrlab-next/internal/models"
	"github.com/vrlab-next/internal/queue"
	"github.com/vrlab-next/internal/repository"
)

// TelemetryService 训练遥测业务服务
type TelemetryService struct {
	sessionRepo    repository.TrainingSessionRepository
	enrollmentRepo repository.EnrollmentRepository
	moduleRepo     repository.CourseModuleRepository
	deviceRepo     repository.DeviceRepository
	queueClient    *queue.Client
}

// NewTelemetryService 创建遥测服务
func NewTelemetryService(
	sessionRepo repository.TrainingSessionRepository,
	enrollmentRepo repository.EnrollmentRepository,
	moduleRepo repository.CourseModuleRepository,
	deviceRepo repository.DeviceRepository,
	queueClient *queue.Client,
) *TelemetryService {
	return &TelemetryService{
		sessionRepo:    sessionRepo,
		enrollmentRepo: enrollmentRepo,
		moduleRepo:     moduleRepo,
		deviceRepo:     deviceRepo,
		queueClient:    queueClient,
	}
}

// TelemetryEventInput 上报的遥测事件
type TelemetryEventInput struct {
	EventType  string
	Payload    string
	OccurredAt time.Time
}

// SubmitSessionInput 学员端上报训练会话输入
type SubmitSessionInput struct {
	VirtualUserID   uint
	CourseID        uint
	ModuleID        uint
	DeviceSerialNo  string
	StartedAt       time.Time
	EndedAt         time.Time
	DurationSeconds int
	Score           string
	Passed          bool
	Events          []TelemetryEventInput
}

// ListSessions 分页查询训练会话
func (s *TelemetryService) ListSessions(filter repository.TrainingSessionListFilter) ([]models.TrainingSession, int64, error) {
	return s.sessionRepo.List(filter)
}

// GetSession 获取训练会话详情（含事件）
func (s *TelemetryService) GetSession(id uint) (*models.TrainingSession, error) {
	session, err := s.sessionRepo.GetByIDWithEvents(id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrNotFound
	}
	return session, nil
}

// SubmitSession 持久化训练会话与遥测事件，并入队后处理任务
func (s *TelemetryService) SubmitSession(input SubmitSessionInput) (*models.TrainingSession, error) {
	enrollment, err := s.enrollmentRepo.GetByLearnerAndCourse(input.VirtualUserID, input.CourseID)
	if err != nil {
		return nil, err
	}
	if enrollment == nil {
		return nil, ErrNotEnrolled
	}

	module, err := s.moduleRepo.GetByID(input.ModuleID)
	if err != nil {
		return nil, err
	}
	if module == nil || module.CourseID != input.CourseID {
		return nil, ErrModuleMismatch
	}

	var deviceID *uint
	if input.DeviceSerialNo != "" {
		device, err := s.deviceRepo.GetBySerialNo(input.DeviceSerialNo)
		if err != nil {
			return nil, err
		}
		if device != nil {
			deviceID = &device.ID
		}
	}

	score, err := parsePassingScore(input.Score)
	if err != nil {
		return nil, err
	}

	session := models.TrainingSession{
		VirtualUserID:   input.VirtualUserID,
		CourseID:        input.CourseID,
		ModuleID:        input.ModuleID,
		DeviceID:        deviceID,
		StartedAt:       input.StartedAt,
		EndedAt:         input.EndedAt,
		DurationSeconds: resolveDurationSeconds(input),
		Score:           score,
		Passed:          input.Passed,
	}

	events := make([]models.TelemetryEvent, 0, len(input.Events))
	for _, e := range input.Events {
		events = append(events, models.TelemetryEvent{
			EventType:  e.EventType,
			Payload:    e.Payload,
			OccurredAt: e.OccurredAt,
		})
	}

	if err := s.sessionRepo.CreateWithEvents(&session, events); err != nil {
		return nil, err
	}

	if err := s.queueClient.EnqueueSessionIngested(queue.SessionIngestedPayload{SessionID: session.ID}); err != nil {
		logger.Warnw("session_ingested_enqueue_failed", "session_id", session.ID, "error", err)
	}
	return &session, nil
}

func resolveDurationSeconds(input SubmitSessionInput) int {
	if input.DurationSeconds > 0 {
		return input.DurationSeconds
	}
	if input.EndedAt.After(input.StartedAt) {
		return int(input.EndedAt.Sub(input.StartedAt) / time.Second)
	}
	return 0
}
