package service

import (
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/vrlab-next/internal/config"
	"github.com/vrlab-next/internal/constants"
	"github.com/vrlab-next/internal/models"
	"github.com/vrlab-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupOtpServiceTest(t *testing.T) (*OtpService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:otp_svc_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.OtpCode{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	cfg := &config.Config{}
	cfg.Email.Otp.ExpireMinutes = 10
	return NewOtpService(cfg, repository.NewOtpCodeRepository(db)), db
}

func TestOtpServiceIssueReturnsSixDigitCode(t *testing.T) {
	svc, _ := setupOtpServiceTest(t)

	for i := 0; i < 20; i++ {
		code, err := svc.Issue("learner@example.com", constants.OtpPurposeLogin)
		if err != nil {
			t.Fatalf("issue failed: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("code length want 6 got %q", code)
		}
		value, err := strconv.Atoi(code)
		if err != nil {
			t.Fatalf("code not numeric: %q", code)
		}
		if value < 100000 || value > 999999 {
			t.Fatalf("code out of range: %d", value)
		}
	}
}

func TestOtpServiceIssueInvalidatesPreviousCode(t *testing.T) {
	svc, db := setupOtpServiceTest(t)

	first, err := svc.Issue("learner@example.com", constants.OtpPurposeLogin)
	if err != nil {
		t.Fatalf("issue first failed: %v", err)
	}
	second, err := svc.Issue("learner@example.com", constants.OtpPurposeLogin)
	if err != nil {
		t.Fatalf("issue second failed: %v", err)
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

	if first != second {
		ok, err := svc.Verify("learner@example.com", constants.OtpPurposeLogin, first)
		if err != nil {
			t.Fatalf("verify stale failed: %v", err)
		}
		if ok {
			t.Fatalf("stale code should not verify")
		}
	}
	ok, err := svc.Verify("learner@example.com", constants.OtpPurposeLogin, second)
	if err != nil {
		t.Fatalf("verify latest failed: %v", err)
	}
	if !ok {
		t.Fatalf("latest code should verify")
	}
}

func TestOtpServiceVerifyIsSingleUse(t *testing.T) {
	svc, _ := setupOtpServiceTest(t)

	code, err := svc.Issue("learner@example.com", constants.OtpPurposeLogin)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	ok, err := svc.Verify("learner@example.com", constants.OtpPurposeLogin, code)
	if err != nil || !ok {
		t.Fatalf("first verify want success got ok=%v err=%v", ok, err)
	}
	ok, err = svc.Verify("learner@example.com", constants.OtpPurposeLogin, code)
	if err != nil {
		t.Fatalf("second verify failed: %v", err)
	}
	if ok {
		t.Fatalf("used code should not verify again")
	}
}

func TestOtpServiceVerifyIsPurposeScoped(t *testing.T) {
	svc, _ := setupOtpServiceTest(t)

	code, err := svc.Issue("learner@example.com", constants.OtpPurposeLogin)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	ok, err := svc.Verify("learner@example.com", constants.OtpPurposeForgotPassword, code)
	if err != nil {
		t.Fatalf("cross purpose verify failed: %v", err)
	}
	if ok {
		t.Fatalf("code must not verify under another purpose")
	}
	ok, err = svc.Verify("learner@example.com", constants.OtpPurposeLogin, code)
	if err != nil || !ok {
		t.Fatalf("original purpose verify want success got ok=%v err=%v", ok, err)
	}
}

func TestOtpServiceVerifyExpiredCode(t *testing.T) {
	svc, db := setupOtpServiceTest(t)

	code, err := svc.Issue("learner@example.com", constants.OtpPurposeLogin)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	expired := time.Now().Add(-time.Minute)
	if err := db.Model(&models.OtpCode{}).
		Where("email = ?", "learner@example.com").
		Update("expires_at", expired).Error; err != nil {
		t.Fatalf("force expire failed: %v", err)
	}

	ok, err := svc.Verify("learner@example.com", constants.OtpPurposeLogin, code)
	if err != nil {
		t.Fatalf("verify expired failed: %v", err)
	}
	if ok {
		t.Fatalf("expired code should not verify")
	}
}

func TestOtpServiceVerifyCollapsesBadInput(t *testing.T) {
	svc, _ := setupOtpServiceTest(t)

	cases := []struct {
		email   string
		purpose string
		code    string
	}{
		{"not-an-email", constants.OtpPurposeLogin, "123456"},
		{"learner@example.com", "unknown_purpose", "123456"},
		{"learner@example.com", constants.OtpPurposeLogin, ""},
	}
	for _, item := range cases {
		ok, err := svc.Verify(item.email, item.purpose, item.code)
		if err != nil {
			t.Fatalf("verify (%q,%q,%q) returned error: %v", item.email, item.purpose, item.code, err)
		}
		if ok {
			t.Fatalf("verify (%q,%q,%q) should fail closed", item.email, item.purpose, item.code)
		}
	}
}

func TestOtpServiceIssueRejectsUnknownPurpose(t *testing.T) {
	svc, _ := setupOtpServiceTest(t)

	if _, err := svc.Issue("learner@example.com", "unknown_purpose"); err != ErrInvalidOtpPurpose {
		t.Fatalf("want ErrInvalidOtpPurpose got %v", err)
	}
}

func TestOtpServiceCleanupRemovesExpiredAndUsed(t *testing.T) {
	svc, db := setupOtpServiceTest(t)

	code, err := svc.Issue("used@example.com", constants.OtpPurposeLogin)
	if err != nil {
		t.Fatalf("issue used failed: %v", err)
	}
	if ok, err := svc.Verify("used@example.com", constants.OtpPurposeLogin, code); err != nil || !ok {
		t.Fatalf("verify used failed: ok=%v err=%v", ok, err)
	}

	if _, err := svc.Issue("expired@example.com", constants.OtpPurposeLogin); err != nil {
		t.Fatalf("issue expired failed: %v", err)
	}
	if err := db.Model(&models.OtpCode{}).
		Where("email = ?", "expired@example.com").
		Update("expires_at", time.Now().Add(-time.Hour)).Error; err != nil {
		t.Fatalf("force expire failed: %v", err)
	}

	if _, err := svc.Issue("fresh@example.com", constants.OtpPurposeLogin); err != nil {
		t.Fatalf("issue fresh failed: %v", err)
	}

	removed, err := svc.Cleanup(time.Now())
	if err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}
	if removed != 2 {
		t.Fatalf("removed want 2 got %d", removed)
	}

	var remaining int64
	if err := db.Model(&models.OtpCode{}).Count(&remaining).Error; err != nil {
		t.Fatalf("count remaining failed: %v", err)
	}
	if remaining != 1 {
		t.Fatalf("remaining want 1 got %d", remaining)
	}
}
