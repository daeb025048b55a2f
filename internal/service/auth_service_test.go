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

// recordingRoleAssigner 记录授予的角色
type recordingRoleAssigner struct {
	adminID uint
	roles   []string
}

func (r *recordingRoleAssigner) SetAdminRoles(adminID uint, roles []string) error {
	r.adminID = adminID
	r.roles = roles
	return nil
}

func setupAuthServiceTest(t *testing.T) (*AuthService, *OtpService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:auth_svc_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Admin{}, &models.OtpCode{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	cfg := &config.Config{}
	cfg.JWT.SecretKey = "admin-test-secret-key-0123456789abcdef"
	cfg.JWT.ExpireHours = 1
	cfg.Email.Otp.ExpireMinutes = 10
	cfg.Security.PasswordPolicy.MinLength = 8
	cfg.Security.PasswordPolicy.RequireDigit = true
	cfg.Security.PasswordPolicy.RequireLetter = true

	adminRepo := repository.NewAdminRepository(db)
	otpService := NewOtpService(cfg, repository.NewOtpCodeRepository(db))
	svc := NewAuthService(cfg, adminRepo, otpService, nil, &recordingRoleAssigner{})
	return svc, otpService, db
}

func seedAdmin(t *testing.T, svc *AuthService, db *gorm.DB, email, password string, twoFactor bool) *models.Admin {
	t.Helper()
	hash, err := svc.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password failed: %v", err)
	}
	now := time.Now()
	admin := models.Admin{
		Email:            email,
		PasswordHash:     hash,
		DisplayName:      "测试管理员",
		Status:           constants.AdminStatusActive,
		TwoFactorEnabled: twoFactor,
		EmailVerifiedAt:  &now,
	}
	if err := db.Create(&admin).Error; err != nil {
		t.Fatalf("create admin failed: %v", err)
	}
	return &admin
}

func TestLoginWithoutTwoFactorIssuesToken(t *testing.T) {
	svc, _, db := setupAuthServiceTest(t)
	seedAdmin(t, svc, db, "admin@example.com", "passw0rd-ok", false)

	result, err := svc.Login("Admin@Example.com", "passw0rd-ok", "zh")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if result.Pending {
		t.Fatalf("login without 2fa should not be pending")
	}
	if result.Token == "" {
		t.Fatalf("token should be issued")
	}

	claims, err := svc.ParseJWT(result.Token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.AdminID != result.Admin.ID {
		t.Fatalf("claims admin id want %d got %d", result.Admin.ID, claims.AdminID)
	}
}

func TestLoginWithTwoFactorIsPending(t *testing.T) {
	svc, otpService, db := setupAuthServiceTest(t)
	seedAdmin(t, svc, db, "admin@example.com", "passw0rd-ok", true)

	result, err := svc.Login("admin@example.com", "passw0rd-ok", "zh")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if !result.Pending {
		t.Fatalf("login with 2fa should be pending")
	}
	if result.Token != "" {
		t.Fatalf("pending login must not carry a token")
	}

	// 验证码已签发，VerifyLogin 可完成登录
	var record models.OtpCode
	if err := db.Where("email = ? AND purpose = ?", "admin@example.com", constants.OtpPurposeLogin).
		First(&record).Error; err != nil {
		t.Fatalf("otp record should exist: %v", err)
	}
	verified, err := svc.VerifyLogin("admin@example.com", record.Code)
	if err != nil {
		t.Fatalf("verify login failed: %v", err)
	}
	if verified.Token == "" {
		t.Fatalf("verify login should issue token")
	}

	// 单次有效
	if _, err := svc.VerifyLogin("admin@example.com", record.Code); !errors.Is(err, ErrOtpCodeInvalid) {
		t.Fatalf("reused code want ErrOtpCodeInvalid got %v", err)
	}
	_ = otpService
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, db := setupAuthServiceTest(t)
	seedAdmin(t, svc, db, "admin@example.com", "passw0rd-ok", false)

	if _, err := svc.Login("admin@example.com", "wrong-password", "zh"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("want ErrInvalidCredentials got %v", err)
	}
	if _, err := svc.Login("nobody@example.com", "passw0rd-ok", "zh"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email want ErrInvalidCredentials got %v", err)
	}
}

func TestLoginUnverifiedEmail(t *testing.T) {
	svc, _, db := setupAuthServiceTest(t)
	admin := seedAdmin(t, svc, db, "admin@example.com", "passw0rd-ok", false)
	if err := db.Model(admin).Update("email_verified_at", nil).Error; err != nil {
		t.Fatalf("clear verified failed: %v", err)
	}

	if _, err := svc.Login("admin@example.com", "passw0rd-ok", "zh"); !errors.Is(err, ErrEmailNotVerified) {
		t.Fatalf("want ErrEmailNotVerified got %v", err)
	}
}

func TestForgotPasswordDoesNotLeakAccounts(t *testing.T) {
	svc, _, db := setupAuthServiceTest(t)
	seedAdmin(t, svc, db, "admin@example.com", "passw0rd-ok", false)

	if err := svc.ForgotPassword("nobody@example.com", "zh"); err != nil {
		t.Fatalf("forgot password for unknown email should succeed, got %v", err)
	}
	var count int64
	if err := db.Model(&models.OtpCode{}).Count(&count).Error; err != nil {
		t.Fatalf("count otp failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("no otp should be issued for unknown email, got %d", count)
	}

	if err := svc.ForgotPassword("admin@example.com", "zh"); err != nil {
		t.Fatalf("forgot password failed: %v", err)
	}
	if err := db.Model(&models.OtpCode{}).
		Where("email = ? AND purpose = ?", "admin@example.com", constants.OtpPurposeForgotPassword).
		Count(&count).Error; err != nil {
		t.Fatalf("count otp failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("otp record count want 1 got %d", count)
	}
}

func TestResetPasswordRevokesExistingSessions(t *testing.T) {
	svc, _, db := setupAuthServiceTest(t)
	admin := seedAdmin(t, svc, db, "admin@example.com", "passw0rd-ok", false)
	beforeVersion := admin.TokenVersion

	if err := svc.ForgotPassword("admin@example.com", "zh"); err != nil {
		t.Fatalf("forgot password failed: %v", err)
	}
	var record models.OtpCode
	if err := db.Where("email = ? AND purpose = ?", "admin@example.com", constants.OtpPurposeForgotPassword).
		First(&record).Error; err != nil {
		t.Fatalf("otp record should exist: %v", err)
	}

	if err := svc.ResetPassword("admin@example.com", record.Code, "new-passw0rd"); err != nil {
		t.Fatalf("reset password failed: %v", err)
	}

	var updated models.Admin
	if err := db.First(&updated, admin.ID).Error; err != nil {
		t.Fatalf("reload admin failed: %v", err)
	}
	if updated.TokenVersion != beforeVersion+1 {
		t.Fatalf("token version want %d got %d", beforeVersion+1, updated.TokenVersion)
	}
	if updated.TokenInvalidBefore == nil {
		t.Fatalf("token invalid before should be set")
	}
	if err := svc.VerifyPassword(updated.PasswordHash, "new-passw0rd"); err != nil {
		t.Fatalf("new password should verify: %v", err)
	}
	if err := svc.VerifyPassword(updated.PasswordHash, "passw0rd-ok"); err == nil {
		t.Fatalf("old password should no longer verify")
	}
}

func TestResetPasswordRejectsWeakPassword(t *testing.T) {
	svc, _, db := setupAuthServiceTest(t)
	seedAdmin(t, svc, db, "admin@example.com", "passw0rd-ok", false)

	if err := svc.ForgotPassword("admin@example.com", "zh"); err != nil {
		t.Fatalf("forgot password failed: %v", err)
	}
	var record models.OtpCode
	if err := db.Where("email = ? AND purpose = ?", "admin@example.com", constants.OtpPurposeForgotPassword).
		First(&record).Error; err != nil {
		t.Fatalf("otp record should exist: %v", err)
	}

	if err := svc.ResetPassword("admin@example.com", record.Code, "short"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("want ErrWeakPassword got %v", err)
	}
}

func TestRegisterAssignsDefaultRole(t *testing.T) {
	svc, _, db := setupAuthServiceTest(t)
	assigner := svc.roleAssigner.(*recordingRoleAssigner)

	admin, err := svc.Register("new.admin@example.com", "passw0rd-ok", "张伟", "zh")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if admin.DisplayName != "张伟" {
		t.Fatalf("display name want 张伟 got %s", admin.DisplayName)
	}
	if admin.EmailVerifiedAt != nil {
		t.Fatalf("fresh account should be unverified")
	}

	// 无角色的新账号会被 RBAC 拦在所有管理端路由之外
	if assigner.adminID != admin.ID {
		t.Fatalf("role assigned to admin %d, want %d", assigner.adminID, admin.ID)
	}
	if len(assigner.roles) != 1 || assigner.roles[0] != constants.DefaultAdminRole {
		t.Fatalf("roles want [%s] got %v", constants.DefaultAdminRole, assigner.roles)
	}

	var record models.OtpCode
	if err := db.Where("email = ? AND purpose = ?", "new.admin@example.com", constants.OtpPurposeSignup).
		First(&record).Error; err != nil {
		t.Fatalf("signup otp record should exist: %v", err)
	}
	confirmed, err := svc.ConfirmSignup("new.admin@example.com", record.Code)
	if err != nil {
		t.Fatalf("confirm signup failed: %v", err)
	}
	if confirmed.EmailVerifiedAt == nil {
		t.Fatalf("confirm should set email_verified_at")
	}
}

func TestRegisterDerivesDisplayNameFromEmail(t *testing.T) {
	svc, _, _ := setupAuthServiceTest(t)

	admin, err := svc.Register("li.na@example.com", "passw0rd-ok", "  ", "zh")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if admin.DisplayName != "li.na" {
		t.Fatalf("display name want li.na got %s", admin.DisplayName)
	}
}
