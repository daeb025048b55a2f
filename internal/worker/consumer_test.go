package worker

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/vrlab-next/internal/config"
	"github.com/vrlab-next/internal/constants"
	"github.com/vrlab-next/internal/models"
	"github.com/vrlab-next/internal/provider"
	"github.com/vrlab-next/internal/repository"
	"github.com/vrlab-next/internal/service"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupConsumerTest(t *testing.T) (*Consumer, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:worker_consumer_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Organization{}, &models.VirtualUser{},
		&models.Course{}, &models.CourseModule{}, &models.Enrollment{},
		&models.TrainingSession{}, &models.TelemetryEvent{},
		&models.Device{}, &models.Alert{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	cfg := &config.Config{}
	cfg.Monitoring.LowScoreThreshold = "60"

	alertRepo := repository.NewAlertRepository(db)
	container := &provider.Container{
		Config:              cfg,
		EnrollmentRepo:      repository.NewEnrollmentRepository(db),
		CourseModuleRepo:    repository.NewCourseModuleRepository(db),
		TrainingSessionRepo: repository.NewTrainingSessionRepository(db),
		DeviceRepo:          repository.NewDeviceRepository(db),
		AlertRepo:           alertRepo,
		AlertService:        service.NewAlertService(alertRepo, nil),
	}
	return NewConsumer(container), db
}

func seedCourseWithModules(t *testing.T, db *gorm.DB, moduleCount int) (*models.Course, []models.CourseModule) {
	t.Helper()
	course := models.Course{
		Title:        "受限空间应急演练",
		Slug:         fmt.Sprintf("course-%d", time.Now().UnixNano()),
		PassingScore: models.NewScoreFromDecimal(decimal.NewFromInt(80)),
		Status:       constants.CourseStatusPublished,
	}
	if err := db.Create(&course).Error; err != nil {
		t.Fatalf("create course failed: %v", err)
	}
	modules := make([]models.CourseModule, 0, moduleCount)
	for i := 0; i < moduleCount; i++ {
		module := models.CourseModule{
			CourseID: course.ID,
			Title:    fmt.Sprintf("模块 %d", i+1),
			SceneKey: fmt.Sprintf("scene_%d", i+1),
			Sequence: i + 1,
		}
		if err := db.Create(&module).Error; err != nil {
			t.Fatalf("create module failed: %v", err)
		}
		modules = append(modules, module)
	}
	return &course, modules
}

func seedPassedSession(t *testing.T, db *gorm.DB, learnerID, courseID, moduleID uint) {
	t.Helper()
	session := models.TrainingSession{
		VirtualUserID:   learnerID,
		CourseID:        courseID,
		ModuleID:        moduleID,
		StartedAt:       time.Now().Add(-time.Hour),
		EndedAt:         time.Now(),
		DurationSeconds: 3600,
		Score:           models.NewScoreFromDecimal(decimal.NewFromInt(90)),
		Passed:          true,
	}
	if err := db.Create(&session).Error; err != nil {
		t.Fatalf("create session failed: %v", err)
	}
}

func TestRecomputeEnrollmentProgressPartial(t *testing.T) {
	consumer, db := setupConsumerTest(t)
	course, modules := seedCourseWithModules(t, db, 2)
	enrollment := models.Enrollment{VirtualUserID: 7, CourseID: course.ID, Status: constants.EnrollmentStatusAssigned}
	if err := db.Create(&enrollment).Error; err != nil {
		t.Fatalf("create enrollment failed: %v", err)
	}
	seedPassedSession(t, db, 7, course.ID, modules[0].ID)

	if err := consumer.recomputeEnrollmentProgress(7, course.ID, time.Now()); err != nil {
		t.Fatalf("recompute failed: %v", err)
	}

	var updated models.Enrollment
	if err := db.First(&updated, enrollment.ID).Error; err != nil {
		t.Fatalf("reload enrollment failed: %v", err)
	}
	if updated.Status != constants.EnrollmentStatusInProgress {
		t.Fatalf("status want in_progress got %s", updated.Status)
	}
	if updated.Progress != 50 {
		t.Fatalf("progress want 50 got %d", updated.Progress)
	}
	if updated.StartedAt == nil {
		t.Fatalf("started at should be set")
	}
	if updated.CompletedAt != nil {
		t.Fatalf("completed at should not be set yet")
	}
}

func TestRecomputeEnrollmentProgressCompletesCourse(t *testing.T) {
	consumer, db := setupConsumerTest(t)
	course, modules := seedCourseWithModules(t, db, 2)
	enrollment := models.Enrollment{VirtualUserID: 7, CourseID: course.ID, Status: constants.EnrollmentStatusAssigned}
	if err := db.Create(&enrollment).Error; err != nil {
		t.Fatalf("create enrollment failed: %v", err)
	}
	seedPassedSession(t, db, 7, course.ID, modules[0].ID)
	seedPassedSession(t, db, 7, course.ID, modules[1].ID)

	if err := consumer.recomputeEnrollmentProgress(7, course.ID, time.Now()); err != nil {
		t.Fatalf("recompute failed: %v", err)
	}

	var updated models.Enrollment
	if err := db.First(&updated, enrollment.ID).Error; err != nil {
		t.Fatalf("reload enrollment failed: %v", err)
	}
	if updated.Status != constants.EnrollmentStatusCompleted {
		t.Fatalf("status want completed got %s", updated.Status)
	}
	if updated.Progress != 100 {
		t.Fatalf("progress want 100 got %d", updated.Progress)
	}
	if updated.CompletedAt == nil {
		t.Fatalf("completed at should be set")
	}
}

func TestRecomputeEnrollmentProgressNoEnrollment(t *testing.T) {
	consumer, db := setupConsumerTest(t)
	course, _ := seedCourseWithModules(t, db, 1)

	if err := consumer.recomputeEnrollmentProgress(404, course.ID, time.Now()); err != nil {
		t.Fatalf("missing enrollment should be skipped, got %v", err)
	}
}

func TestRaiseLowScoreAlert(t *testing.T) {
	consumer, db := setupConsumerTest(t)

	consumer.raiseLowScoreAlert(11, 7, "42.5", false)

	var alerts []models.Alert
	if err := db.Find(&alerts).Error; err != nil {
		t.Fatalf("load alerts failed: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("alert count want 1 got %d", len(alerts))
	}
	if alerts[0].Type != constants.AlertTypeLowScore {
		t.Fatalf("alert type want low_score got %s", alerts[0].Type)
	}
	if alerts[0].Status != constants.AlertStatusOpen {
		t.Fatalf("alert status want open got %s", alerts[0].Status)
	}
}

func TestRaiseLowScoreAlertSkipsPassedAndAboveThreshold(t *testing.T) {
	consumer, db := setupConsumerTest(t)

	consumer.raiseLowScoreAlert(11, 7, "42.5", true)
	consumer.raiseLowScoreAlert(12, 7, "75", false)

	var count int64
	if err := db.Model(&models.Alert{}).Count(&count).Error; err != nil {
		t.Fatalf("count alerts failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("no alert should be raised, got %d", count)
	}
}

func TestOtpCleanupLoopStopsOnContextCancel(t *testing.T) {
	consumer, db := setupConsumerTest(t)
	if err := db.AutoMigrate(&models.OtpCode{}); err != nil {
		t.Fatalf("migrate otp failed: %v", err)
	}
	cfg := consumer.Config
	cfg.Email.Otp.CleanupIntervalMin = 1
	consumer.OtpService = service.NewOtpService(cfg, repository.NewOtpCodeRepository(db))

	svc := &Service{name: "worker", consumer: consumer}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.runOtpCleanupLoop(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("cleanup loop should stop on context cancel")
	}
}
