package config

import (
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{
		"JWT_ACCESS_SECRET", "JWT_REFRESH_SECRET", "JWT_ACCESS_TTL", "JWT_REFRESH_TTL",
		"SMTP_HOST", "FRONTEND_URL", "RESET_PASSWORD_URL", "ADMIN_PASSWORD", "REDIS_ENABLED",
	} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.JWT.AccessSecret != "" || cfg.JWT.RefreshSecret != "" {
		t.Error("token secrets must not have defaults")
	}
	if cfg.JWT.AccessTTL != time.Hour || cfg.JWT.RefreshTTL != time.Hour {
		t.Errorf("token TTLs = %v/%v, want 1h/1h", cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	}
	if cfg.Mail.Host != "" {
		t.Errorf("SMTP host default = %q, want empty", cfg.Mail.Host)
	}
	if cfg.Mail.ResetURL != "http://localhost:3000/reset-password/%s" {
		t.Errorf("reset URL = %q", cfg.Mail.ResetURL)
	}
	if cfg.Seed.AdminPassword != "" {
		t.Error("admin password must not have a default")
	}
	if cfg.Redis.Enabled {
		t.Error("redis should be disabled by default")
	}
	if cfg.Jobs.ResetPurgeGrace != 24*time.Hour {
		t.Errorf("purge grace = %v, want 24h", cfg.Jobs.ResetPurgeGrace)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("JWT_ACCESS_SECRET", "a")
	t.Setenv("JWT_REFRESH_SECRET", "r")
	t.Setenv("JWT_REFRESH_TTL", "168h")
	t.Setenv("FRONTEND_URL", "https://site.test")
	t.Setenv("RESET_PASSWORD_URL", "")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_PORT", "not-a-number")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.JWT.AccessSecret != "a" || cfg.JWT.RefreshSecret != "r" {
		t.Error("secrets not read from environment")
	}
	if cfg.JWT.RefreshTTL != 168*time.Hour {
		t.Errorf("refresh TTL = %v, want 168h", cfg.JWT.RefreshTTL)
	}
	if cfg.Mail.ResetURL != "https://site.test/reset-password/%s" {
		t.Errorf("reset URL = %q, want it derived from FRONTEND_URL", cfg.Mail.ResetURL)
	}
	if !cfg.Redis.Enabled {
		t.Error("REDIS_ENABLED=true ignored")
	}
	if cfg.Redis.Port != 6379 {
		t.Errorf("invalid REDIS_PORT should fall back to 6379, got %d", cfg.Redis.Port)
	}
	if got := cfg.RedisAddress(); got != cfg.Redis.Host+":6379" {
		t.Errorf("RedisAddress() = %q", got)
	}
}
