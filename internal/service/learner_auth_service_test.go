package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/vrlab-next/internal/config"
	"github.com/vrlab-next/internal/constants"
	"github.com/vrlab-next/internal/models"
	"github.com/vrlab-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupLearnerAuthServiceTest(t *testing.T) (*LearnerAuthService, *OtpService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:learner_auth_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Organization{}, &models.VirtualUser{}, &models.OtpCode{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	cfg := &config.Config{}
	cfg.LearnerJWT.SecretKey = "learner-test-secret-key-0123456789abcdef"
	cfg.LearnerJWT.ExpireHours = 1
	cfg.Email.Otp.ExpireMinutes = 10

	learnerRepo := repository.NewVirtualUserRepository(db)
	otpService := NewOtpService(cfg, repository.NewOtpCodeRepository(db))
	svc := NewLearnerAuthService(cfg, learnerRepo, otpService, nil)
	return svc, otpService, db
}

func seedLearner(t *testing.T, db *gorm.DB, orgName, userCode, email, status string) *models.VirtualUser {
	t.Helper()
	org := models.Organization{Name: orgName, Status: constants.OrganizationStatusActive}
	if err := db.Create(&org).Error; err != nil {
		t.Fatalf("create organization failed: %v", err)
	}
	learner := models.VirtualUser{
		OrganizationID: org.ID,
		UserCode:       userCode,
		Email:          email,
		DisplayName:    "测试学员",
		Status:         status,
	}
	if err := db.Create(&learner).Error; err != nil {
		t.Fatalf("create learner failed: %v", err)
	}
	return &learner
}

func TestRequestLoginCodeIsCaseInsensitive(t *testing.T) {
	svc, _, db := setupLearnerAuthServiceTest(t)
	seedLearner(t, db, "East Training Center", "E-1001", "zhang.wei@example.com", constants.VirtualUserStatusActive)

	masked, err := svc.RequestLoginCode("east training CENTER", "e-1001", "zh")
	if err != nil {
		t.Fatalf("request login code failed: %v", err)
	}
	if masked != "zh***@example.com" {
		t.Fatalf("masked email want zh***@example.com got %q", masked)
	}

	var count int64
	if err := db.Model(&models.OtpCode{}).
		Where("email = ? AND purpose = ?", "zhang.wei@example.com", constants.OtpPurposeVirtualUser).
		Count(&count).Error; err != nil {
		t.Fatalf("count otp failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("otp record count want 1 got %d", count)
	}
}

func TestRequestLoginCodeUnknownLearner(t *testing.T) {
	svc, _, db := setupLearnerAuthServiceTest(t)
	seedLearner(t, db, "East Training Center", "E-1001", "zhang.wei@example.com", constants.VirtualUserStatusActive)

	if _, err := svc.RequestLoginCode("East Training Center", "no-such-code", "zh"); !errors.Is(err, ErrLearnerLoginInvalid) {
		t.Fatalf("want ErrLearnerLoginInvalid got %v", err)
	}
	if _, err := svc.RequestLoginCode("No Such Org", "E-1001", "zh"); !errors.Is(err, ErrLearnerLoginInvalid) {
		t.Fatalf("want ErrLearnerLoginInvalid got %v", err)
	}
}

func TestRequestLoginCodeDisabledLearner(t *testing.T) {
	svc, _, db := setupLearnerAuthServiceTest(t)
	seedLearner(t, db, "East Training Center", "E-1001", "zhang.wei@example.com", constants.VirtualUserStatusDisabled)

	if _, err := svc.RequestLoginCode("East Training Center", "E-1001", "zh"); !errors.Is(err, ErrAccountDisabled) {
		t.Fatalf("want ErrAccountDisabled got %v", err)
	}
}

func TestVerifyLoginIssuesTokenAndRecordsLogin(t *testing.T) {
	svc, otpService, db := setupLearnerAuthServiceTest(t)
	seedLearner(t, db, "East Training Center", "E-1001", "zhang.wei@example.com", constants.VirtualUserStatusActive)

	code, err := otpService.Issue("zhang.wei@example.com", constants.OtpPurposeVirtualUser)
	if err != nil {
		t.Fatalf("issue otp failed: %v", err)
	}

	learner, token, expiresAt, err := svc.VerifyLogin("Zhang.Wei@Example.com", code)
	if err != nil {
		t.Fatalf("verify login failed: %v", err)
	}
	if token == "" {
		t.Fatalf("token should not be empty")
	}
	if !expiresAt.After(time.Now()) {
		t.Fatalf("expiry should be in the future")
	}
	if learner.LastLoginAt == nil {
		t.Fatalf("last login should be recorded")
	}

	claims, err := svc.ParseLearnerJWT(token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.LearnerID != learner.ID {
		t.Fatalf("claims learner id want %d got %d", learner.ID, claims.LearnerID)
	}

	// 验证码单次有效
	if _, _, _, err := svc.VerifyLogin("zhang.wei@example.com", code); !errors.Is(err, ErrOtpCodeInvalid) {
		t.Fatalf("reused code want ErrOtpCodeInvalid got %v", err)
	}
}

func TestVerifyLoginWrongCode(t *testing.T) {
	svc, otpService, db := setupLearnerAuthServiceTest(t)
	seedLearner(t, db, "East Training Center", "E-1001", "zhang.wei@example.com", constants.VirtualUserStatusActive)

	if _, err := otpService.Issue("zhang.wei@example.com", constants.OtpPurposeVirtualUser); err != nil {
		t.Fatalf("issue otp failed: %v", err)
	}

	if _, _, _, err := svc.VerifyLogin("zhang.wei@example.com", "000000"); !errors.Is(err, ErrOtpCodeInvalid) {
		t.Fatalf("wrong code want ErrOtpCodeInvalid got %v", err)
	}
}

func TestMaskEmail(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"zhang.wei@example.com", "zh***@example.com"},
		{"ab@example.com", "a***@example.com"},
		{"a@example.com", "a***@example.com"},
		{"@example.com", "***@example.com"},
		{"not-an-email", "***"},
	}
	for _, item := range cases {
		if got := MaskEmail(item.in); got != item.want {
			t.Fatalf("MaskEmail(%q) want %q got %q", item.in, item.want, got)
		}
	}
}
