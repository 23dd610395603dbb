package internal

import (
	"testing"
)

func TestNewDefaultConfig_Validates(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	if cfg.Auth.AuthEnabled() {
		t.Error("auth enabled by default")
	}
}

func TestConfig_InvalidPort(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.App.HTTP.Port = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for port 0")
	}
	cfg.App.HTTP.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for port 70000")
	}
}

func TestConfig_MissingWikiLocation(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Wiki.Location = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty wiki location")
	}
}

func TestAuthConfig_TokenModeRequiresToken(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = AuthModeToken
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for token mode without token")
	}
	cfg.Auth.Token = "secret"
	if err := cfg.Validate(); err != nil {
		t.Errorf("token mode with token invalid: %v", err)
	}
	if !cfg.Auth.AuthEnabled() {
		t.Error("auth not enabled in token mode")
	}
}

func TestAuthConfig_EmptyModeNormalised(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = ""
	if err := cfg.Validate(); err != nil {
		t.Errorf("empty mode invalid: %v", err)
	}
	if cfg.Auth.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want disabled", cfg.Auth.Mode)
	}
}

func TestHTTPConfig_Address(t *testing.T) {
	c := HTTPConfig{Port: 6683}
	if got := c.Address(); got != ":6683" {
		t.Errorf("address = %q", got)
	}
}
