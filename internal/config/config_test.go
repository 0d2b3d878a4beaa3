package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/student_service_test")
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("port = %q", cfg.Port)
	}
	if cfg.JWT.AccessTTL != 24*time.Hour {
		t.Errorf("access ttl = %v", cfg.JWT.AccessTTL)
	}
	if cfg.JWT.RefreshTTL != 7*24*time.Hour {
		t.Errorf("refresh ttl = %v", cfg.JWT.RefreshTTL)
	}
	if cfg.Auth.MinPasswordLength != 8 {
		t.Errorf("min password length = %d", cfg.Auth.MinPasswordLength)
	}
	if cfg.Enrollment.AllowReenrollAfterDrop {
		t.Error("re-enroll after drop should default to false")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/student_service_test")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("JWT_ACCESS_TTL", "15m")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092, broker-2:9092")
	t.Setenv("ENROLLMENT_ALLOW_REENROLL_AFTER_DROP", "true")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load error: %v", err)
	}

	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("log level = %v", cfg.LogLevel)
	}
	if cfg.JWT.AccessTTL != 15*time.Minute {
		t.Errorf("access ttl = %v", cfg.JWT.AccessTTL)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "broker-2:9092" {
		t.Errorf("brokers = %v", cfg.KafkaBrokers)
	}
	if !cfg.Enrollment.AllowReenrollAfterDrop {
		t.Error("expected re-enroll after drop enabled")
	}
}

func TestLoadConfigMissingSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/student_service_test")
	t.Setenv("JWT_SECRET", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for missing JWT_SECRET")
	}
}
