package service

import (
	"strings"
	"testing"

	"github.com/vrlab-next/internal/config"
	"github.com/vrlab-next/internal/constants"
)

func TestOtpEmailBodyUsesConfiguredExpiry(t *testing.T) {
	_, body := buildOtpCodeContent("123456", constants.OtpPurposeLogin, "en", 5)
	if !strings.Contains(body, "expires in 5 minutes") {
		t.Fatalf("english body should carry configured expiry, got %q", body)
	}
	if !strings.Contains(body, "123456") {
		t.Fatalf("body should carry the code, got %q", body)
	}

	_, body = buildOtpCodeContent("654321", constants.OtpPurposeVirtualUser, "zh", 15)
	if !strings.Contains(body, "15 分钟内有效") {
		t.Fatalf("chinese body should carry configured expiry, got %q", body)
	}
}

func TestOtpExpireMinutesFallsBackToDefault(t *testing.T) {
	svc := NewEmailService(nil)
	if got := svc.otpExpireMinutes(); got != 10 {
		t.Fatalf("nil config want 10 got %d", got)
	}

	cfg := &config.EmailConfig{}
	cfg.Otp.ExpireMinutes = 3
	svc = NewEmailService(cfg)
	if got := svc.otpExpireMinutes(); got != 3 {
		t.Fatalf("configured expiry want 3 got %d", got)
	}
}
