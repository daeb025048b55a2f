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

func setupEnrollmentServiceTest(t *testing.T) (*EnrollmentService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:enrollment_svc_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Organization{}, &models.VirtualUser{}, &models.Course{}, &models.CourseModule{}, &models.Enrollment{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	svc := NewEnrollmentService(
		repository.NewEnrollmentRepository(db),
		repository.NewVirtualUserRepository(db),
		repository.NewCourseRepository(db),
	)
	return svc, db
}

func seedEnrollmentFixtures(t *testing.T, db *gorm.DB, courseStatus string) (*models.VirtualUser, *models.Course) {
	t.Helper()
	org := models.Organization{Name: fmt.Sprintf("org-%d", time.Now().UnixNano()), Status: constants.OrganizationStatusActive}
	if err := db.Create(&org).Error; err != nil {
		t.Fatalf("create org failed: %v", err)
	}
	learner := models.VirtualUser{OrganizationID: org.ID, UserCode: "e-1001", Email: "zhang.wei@example.com", Status: constants.VirtualUserStatusActive}
	if err := db.Create(&learner).Error; err != nil {
		t.Fatalf("create learner failed: %v", err)
	}
	course := models.Course{
		Title:        "高空作业安全训练",
		Slug:         fmt.Sprintf("course-%d", time.Now().UnixNano()),
		PassingScore: models.NewScoreFromDecimal(decimal.NewFromInt(80)),
		Status:       courseStatus,
	}
	if err := db.Create(&course).Error; err != nil {
		t.Fatalf("create course failed: %v", err)
	}
	return &learner, &course
}

func TestAssignPublishedCourse(t *testing.T) {
	svc, db := setupEnrollmentServiceTest(t)
	learner, course := seedEnrollmentFixtures(t, db, constants.CourseStatusPublished)

	enrollment, err := svc.Assign(AssignInput{VirtualUserID: learner.ID, CourseID: course.ID})
	if err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	if enrollment.Status != constants.EnrollmentStatusAssigned {
		t.Fatalf("status want assigned got %s", enrollment.Status)
	}
	if enrollment.Progress != 0 {
		t.Fatalf("progress want 0 got %d", enrollment.Progress)
	}

	// 同一学员同一课程只能分配一次
	if _, err := svc.Assign(AssignInput{VirtualUserID: learner.ID, CourseID: course.ID}); !errors.Is(err, ErrAlreadyEnrolled) {
		t.Fatalf("want ErrAlreadyEnrolled got %v", err)
	}
}

func TestAssignRejectsUnpublishedCourse(t *testing.T) {
	svc, db := setupEnrollmentServiceTest(t)
	learner, course := seedEnrollmentFixtures(t, db, constants.CourseStatusDraft)

	if _, err := svc.Assign(AssignInput{VirtualUserID: learner.ID, CourseID: course.ID}); !errors.Is(err, ErrCourseNotPublished) {
		t.Fatalf("want ErrCourseNotPublished got %v", err)
	}
}

func TestAssignUnknownLearnerOrCourse(t *testing.T) {
	svc, db := setupEnrollmentServiceTest(t)
	learner, course := seedEnrollmentFixtures(t, db, constants.CourseStatusPublished)

	if _, err := svc.Assign(AssignInput{VirtualUserID: 404, CourseID: course.ID}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown learner want ErrNotFound got %v", err)
	}
	if _, err := svc.Assign(AssignInput{VirtualUserID: learner.ID, CourseID: 404}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown course want ErrNotFound got %v", err)
	}
}

func TestRevokeEnrollment(t *testing.T) {
	svc, db := setupEnrollmentServiceTest(t)
	learner, course := seedEnrollmentFixtures(t, db, constants.CourseStatusPublished)

	enrollment, err := svc.Assign(AssignInput{VirtualUserID: learner.ID, CourseID: course.ID})
	if err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	if err := svc.Revoke(enrollment.ID); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}

	listed, err := svc.ListByLearner(learner.ID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("enrollment should be revoked, got %d", len(listed))
	}

	// 撤销后可以重新分配
	if _, err := svc.Assign(AssignInput{VirtualUserID: learner.ID, CourseID: course.ID}); err != nil {
		t.Fatalf("re-assign after revoke failed: %v", err)
	}
}
