package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/vrlab-next/internal/constants"
	"github.com/vrlab-next/internal/models"
	"github.com/vrlab-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type telemetryTestFixture struct {
	svc     *TelemetryService
	db      *gorm.DB
	learner *models.VirtualUser
	course  *models.Course
	module  *models.CourseModule
}

func setupTelemetryServiceTest(t *testing.T) *telemetryTestFixture {
	t.Helper()
	dsn := fmt.Sprintf("file:telemetry_svc_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Organization{}, &models.VirtualUser{}, &models.Course{}, &models.CourseModule{},
		&models.Enrollment{}, &models.Device{}, &models.TrainingSession{}, &models.TelemetryEvent{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	svc := NewTelemetryService(
		repository.NewTrainingSessionRepository(db),
		repository.NewEnrollmentRepository(db),
		repository.NewCourseModuleRepository(db),
		repository.NewDeviceRepository(db),
		nil,
	)

	org := models.Organization{Name: fmt.Sprintf("org-%d", time.Now().UnixNano()), Status: constants.OrganizationStatusActive}
	if err := db.Create(&org).Error; err != nil {
		t.Fatalf("create org failed: %v", err)
	}
	learner := models.VirtualUser{OrganizationID: org.ID, UserCode: "e-1001", Email: "zhang.wei@example.com", Status: constants.VirtualUserStatusActive}
	if err := db.Create(&learner).Error; err != nil {
		t.Fatalf("create learner failed: %v", err)
	}
	course := models.Course{
		Title:        "受限空间作业训练",
		Slug:         fmt.Sprintf("course-%d", time.Now().UnixNano()),
		PassingScore: models.NewScoreFromDecimal(decimal.NewFromInt(80)),
		Status:       constants.CourseStatusPublished,
	}
	if err := db.Create(&course).Error; err != nil {
		t.Fatalf("create course failed: %v", err)
	}
	module := models.CourseModule{CourseID: course.ID, Title: "气体检测", SceneKey: "cs_gas_check", Sequence: 1}
	if err := db.Create(&module).Error; err != nil {
		t.Fatalf("create module failed: %v", err)
	}
	enrollment := models.Enrollment{VirtualUserID: learner.ID, CourseID: course.ID, Status: constants.EnrollmentStatusAssigned}
	if err := db.Create(&enrollment).Error; err != nil {
		t.Fatalf("create enrollment failed: %v", err)
	}

	return &telemetryTestFixture{svc: svc, db: db, learner: &learner, course: &course, module: &module}
}

func (f *telemetryTestFixture) submitInput() SubmitSessionInput {
	started := time.Now().Add(-10 * time.Minute)
	return SubmitSessionInput{
		VirtualUserID: f.learner.ID,
		CourseID:      f.course.ID,
		ModuleID:      f.module.ID,
		StartedAt:     started,
		EndedAt:       started.Add(8 * time.Minute),
		Score:         "86.5",
		Passed:        true,
	}
}

func TestSubmitSessionWithEvents(t *testing.T) {
	f := setupTelemetryServiceTest(t)

	input := f.submitInput()
	input.Events = []TelemetryEventInput{
		{EventType: "scene_enter", OccurredAt: input.StartedAt},
		{EventType: "hazard_found", Payload: `{"hazard_id":3}`, OccurredAt: input.StartedAt.Add(2 * time.Minute)},
	}

	session, err := f.svc.SubmitSession(input)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if session.ID == 0 {
		t.Fatal("session not persisted")
	}
	// 未显式传时长时按起止时间推算
	if session.DurationSeconds != 480 {
		t.Fatalf("duration want 480 got %d", session.DurationSeconds)
	}
	if !session.Passed {
		t.Fatal("passed flag lost")
	}

	var eventCount int64
	if err := f.db.Model(&models.TelemetryEvent{}).Where("session_id = ?", session.ID).Count(&eventCount).Error; err != nil {
		t.Fatalf("count events failed: %v", err)
	}
	if eventCount != 2 {
		t.Fatalf("event count want 2 got %d", eventCount)
	}

	loaded, err := f.svc.GetSession(session.ID)
	if err != nil {
		t.Fatalf("get session failed: %v", err)
	}
	if len(loaded.Events) != 2 {
		t.Fatalf("loaded events want 2 got %d", len(loaded.Events))
	}
}

func TestSubmitSessionRequiresEnrollment(t *testing.T) {
	f := setupTelemetryServiceTest(t)

	other := models.VirtualUser{OrganizationID: f.learner.OrganizationID, UserCode: "e-9999", Email: "li.na@example.com", Status: constants.VirtualUserStatusActive}
	if err := f.db.Create(&other).Error; err != nil {
		t.Fatalf("create learner failed: %v", err)
	}

	input := f.submitInput()
	input.VirtualUserID = other.ID
	if _, err := f.svc.SubmitSession(input); !errors.Is(err, ErrNotEnrolled) {
		t.Fatalf("want ErrNotEnrolled got %v", err)
	}
}

func TestSubmitSessionModuleMismatch(t *testing.T) {
	f := setupTelemetryServiceTest(t)

	otherCourse := models.Course{
		Title:        "消防疏散演练",
		Slug:         fmt.Sprintf("other-%d", time.Now().UnixNano()),
		PassingScore: models.NewScoreFromDecimal(decimal.NewFromInt(60)),
		Status:       constants.CourseStatusPublished,
	}
	if err := f.db.Create(&otherCourse).Error; err != nil {
		t.Fatalf("create course failed: %v", err)
	}
	otherModule := models.CourseModule{CourseID: otherCourse.ID, Title: "逃生路线", SceneKey: "fe_route", Sequence: 1}
	if err := f.db.Create(&otherModule).Error; err != nil {
		t.Fatalf("create module failed: %v", err)
	}

	input := f.submitInput()
	input.ModuleID = otherModule.ID
	if _, err := f.svc.SubmitSession(input); !errors.Is(err, ErrModuleMismatch) {
		t.Fatalf("want ErrModuleMismatch got %v", err)
	}

	input.ModuleID = 404
	if _, err := f.svc.SubmitSession(input); !errors.Is(err, ErrModuleMismatch) {
		t.Fatalf("unknown module want ErrModuleMismatch got %v", err)
	}
}

func TestSubmitSessionToleratesUnknownDevice(t *testing.T) {
	f := setupTelemetryServiceTest(t)

	input := f.submitInput()
	input.DeviceSerialNo = "VR-NOPE-9999"
	session, err := f.svc.SubmitSession(input)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if session.DeviceID != nil {
		t.Fatalf("device should not resolve, got %v", *session.DeviceID)
	}
}

func TestSubmitSessionExplicitDuration(t *testing.T) {
	f := setupTelemetryServiceTest(t)

	input := f.submitInput()
	input.DurationSeconds = 123
	session, err := f.svc.SubmitSession(input)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if session.DurationSeconds != 123 {
		t.Fatalf("duration want 123 got %d", session.DurationSeconds)
	}
}
