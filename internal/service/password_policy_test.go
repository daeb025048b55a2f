package service

import (
	"errors"
	"testing"

	"github.com/vrlab-next/internal/config"
)

func TestValidatePasswordPolicy(t *testing.T) {
	policy := config.PasswordPolicyConfig{
		MinLength:     8,
		RequireDigit:  true,
		RequireLetter: true,
	}

	cases := []struct {
		name     string
		password string
		wantKey  string
	}{
		{"ok", "abcdef12", ""},
		{"too short", "a1", "error.password_min_length"},
		{"no digit", "abcdefgh", "error.password_require_digit"},
		{"no letter", "12345678", "error.password_require_letter"},
	}
	for _, item := range cases {
		err := validatePassword(policy, item.password)
		if item.wantKey == "" {
			if err != nil {
				t.Fatalf("%s: want nil got %v", item.name, err)
			}
			continue
		}
		if !errors.Is(err, ErrWeakPassword) {
			t.Fatalf("%s: want ErrWeakPassword got %v", item.name, err)
		}
		var policyErr interface {
			Key() string
			Args() []interface{}
		}
		if !errors.As(err, &policyErr) {
			t.Fatalf("%s: error should carry a message key", item.name)
		}
		if policyErr.Key() != item.wantKey {
			t.Fatalf("%s: key want %q got %q", item.name, item.wantKey, policyErr.Key())
		}
	}
}

func TestValidatePasswordEmptyPolicyAllowsAnything(t *testing.T) {
	if err := validatePassword(config.PasswordPolicyConfig{}, "x"); err != nil {
		t.Fatalf("empty policy should accept any password, got %v", err)
	}
}

func TestValidatePasswordRequireSpecial(t *testing.T) {
	policy := config.PasswordPolicyConfig{RequireSpecial: true}
	if err := validatePassword(policy, "abcdef12"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("want ErrWeakPassword got %v", err)
	}
	if err := validatePassword(policy, "abcdef12!"); err != nil {
		t.Fatalf("special char should satisfy policy, got %v", err)
	}
}
