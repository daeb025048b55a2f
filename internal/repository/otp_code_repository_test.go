package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/vrlab-next/internal/constants"
	"github.com/vrlab-next/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupOtpCodeRepositoryTest(t *testing.T) (*GormOtpCodeRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:otp_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.OtpCode{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewOtpCodeRepository(db), db
}

func TestOtpCodeRepositoryReplaceKeepsSingleActiveRecord(t *testing.T) {
	repo, db := setupOtpCodeRepositoryTest(t)
	now := time.Now().UTC().Truncate(time.Second)

	for i := 0; i < 3; i++ {
		record := models.OtpCode{
			Email:     "learner@example.com",
			Purpose:   constants.OtpPurposeLogin,
			Code:      fmt.Sprintf("10000%d", i),
			CreatedAt: now,
			ExpiresAt: now.Add(10 * time.Minute),
		}
		if err := repo.Replace(&record); err != nil {
			t.Fatalf("replace failed: %v", err)
		}
	}

	var count int64
	if err := db.Model(&models.OtpCode{}).
		Where("email = ? AND purpose = ?", "learner@example.com", constants.OtpPurposeLogin).
		Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("active record count want 1 got %d", count)
	}

	found, err := repo.FindActive("learner@example.com", constants.OtpPurposeLogin, "100002", now)
	if err != nil {
		t.Fatalf("find active failed: %v", err)
	}
	if found == nil {
		t.Fatalf("latest code should be active")
	}

	stale, err := repo.FindActive("learner@example.com", constants.OtpPurposeLogin, "100000", now)
	if err != nil {
		t.Fatalf("find stale failed: %v", err)
	}
	if stale != nil {
		t.Fatalf("superseded code should not verify")
	}
}

func TestOtpCodeRepositoryReplaceDoesNotTouchOtherPurposes(t *testing.T) {
	repo, _ := setupOtpCodeRepositoryTest(t)
	now := time.Now().UTC().Truncate(time.Second)

	loginRecord := models.OtpCode{
		Email:     "learner@example.com",
		Purpose:   constants.OtpPurposeLogin,
		Code:      "111111",
		CreatedAt: now,
		ExpiresAt: now.Add(10 * time.Minute),
	}
	if err := repo.Replace(&loginRecord); err != nil {
		t.Fatalf("replace login failed: %v", err)
	}

	resetRecord := models.OtpCode{
		Email:     "learner@example.com",
		Purpose:   constants.OtpPurposeForgotPassword,
		Code:      "222222",
		CreatedAt: now,
		ExpiresAt: now.Add(10 * time.Minute),
	}
	if err := repo.Replace(&resetRecord); err != nil {
		t.Fatalf("replace forgot_password failed: %v", err)
	}

	found, err := repo.FindActive("learner@example.com", constants.OtpPurposeLogin, "111111", now)
	if err != nil {
		t.Fatalf("find login code failed: %v", err)
	}
	if found == nil {
		t.Fatalf("login code should survive replace under another purpose")
	}

	crossed, err := repo.FindActive("learner@example.com", constants.OtpPurposeLogin, "222222", now)
	if err != nil {
		t.Fatalf("find crossed code failed: %v", err)
	}
	if crossed != nil {
		t.Fatalf("code issued for forgot_password should not verify under login")
	}
}

func TestOtpCodeRepositoryFindActiveExpiryBoundary(t *testing.T) {
	repo, _ := setupOtpCodeRepositoryTest(t)
	now := time.Now().UTC().Truncate(time.Second)

	record := models.OtpCode{
		Email:     "learner@example.com",
		Purpose:   constants.OtpPurposeSignup,
		Code:      "333333",
		CreatedAt: now.Add(-10 * time.Minute),
		ExpiresAt: now,
	}
	if err := repo.Replace(&record); err != nil {
		t.Fatalf("replace failed: %v", err)
	}

	atBoundary, err := repo.FindActive("learner@example.com", constants.OtpPurposeSignup, "333333", now)
	if err != nil {
		t.Fatalf("find at boundary failed: %v", err)
	}
	if atBoundary == nil {
		t.Fatalf("code expiring exactly now should still verify")
	}

	pastBoundary, err := repo.FindActive("learner@example.com", constants.OtpPurposeSignup, "333333", now.Add(time.Second))
	if err != nil {
		t.Fatalf("find past boundary failed: %v", err)
	}
	if pastBoundary != nil {
		t.Fatalf("code should not verify one second after expiry")
	}
}

func TestOtpCodeRepositoryMarkUsedExcludesRecord(t *testing.T) {
	repo, _ := setupOtpCodeRepositoryTest(t)
	now := time.Now().UTC().Truncate(time.Second)

	record := models.OtpCode{
		Email:     "learner@example.com",
		Purpose:   constants.OtpPurposeLogin,
		Code:      "444444",
		CreatedAt: now,
		ExpiresAt: now.Add(10 * time.Minute),
	}
	if err := repo.Replace(&record); err != nil {
		t.Fatalf("replace failed: %v", err)
	}

	found, err := repo.FindActive("learner@example.com", constants.OtpPurposeLogin, "444444", now)
	if err != nil {
		t.Fatalf("find active failed: %v", err)
	}
	if found == nil {
		t.Fatalf("fresh code should verify")
	}
	if err := repo.MarkUsed(found.ID); err != nil {
		t.Fatalf("mark used failed: %v", err)
	}

	reused, err := repo.FindActive("learner@example.com", constants.OtpPurposeLogin, "444444", now)
	if err != nil {
		t.Fatalf("find reused failed: %v", err)
	}
	if reused != nil {
		t.Fatalf("used code should not verify again")
	}
}

func TestOtpCodeRepositorySweepExpiredOrUsed(t *testing.T) {
	repo, db := setupOtpCodeRepositoryTest(t)
	now := time.Now().UTC().Truncate(time.Second)

	records := []models.OtpCode{
		{Email: "a@example.com", Purpose: constants.OtpPurposeLogin, Code: "100001", CreatedAt: now.Add(-time.Hour), ExpiresAt: now.Add(-50 * time.Minute)},
		{Email: "b@example.com", Purpose: constants.OtpPurposeLogin, Code: "100002", CreatedAt: now, ExpiresAt: now.Add(10 * time.Minute), Used: true},
		{Email: "c@example.com", Purpose: constants.OtpPurposeLogin, Code: "100003", CreatedAt: now, ExpiresAt: now.Add(10 * time.Minute)},
	}
	for i := range records {
		if err := db.Create(&records[i]).Error; err != nil {
			t.Fatalf("create record %d failed: %v", i, err)
		}
	}

	removed, err := repo.SweepExpiredOrUsed(now)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if removed != 2 {
		t.Fatalf("removed want 2 got %d", removed)
	}

	var remaining []models.OtpCode
	if err := db.Find(&remaining).Error; err != nil {
		t.Fatalf("load remaining failed: %v", err)
	}
	if len(remaining) != 1 {
		t.Fatalf("remaining want 1 got %d", len(remaining))
	}
	if remaining[0].Email != "c@example.com" {
		t.Fatalf("live code should survive sweep, got %s", remaining[0].Email)
	}
}

func TestOtpCodeRepositoryDeleteAllFor(t *testing.T) {
	repo, _ := setupOtpCodeRepositoryTest(t)
	now := time.Now().UTC().Truncate(time.Second)

	record := models.OtpCode{
		Email:     "learner@example.com",
		Purpose:   constants.OtpPurposeLogin,
		Code:      "555555",
		CreatedAt: now,
		ExpiresAt: now.Add(10 * time.Minute),
	}
	if err := repo.Replace(&record); err != nil {
		t.Fatalf("replace failed: %v", err)
	}

	removed, err := repo.DeleteAllFor("learner@example.com", constants.OtpPurposeLogin)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed want 1 got %d", removed)
	}

	found, err := repo.FindActive("learner@example.com", constants.OtpPurposeLogin, "555555", now)
	if err != nil {
		t.Fatalf("find after delete failed: %v", err)
	}
	if found != nil {
		t.Fatalf("deleted code should not verify")
	}
}
