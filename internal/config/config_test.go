package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CHECK_INTERVAL", "")
	t.Setenv("SINK", "")
	t.Setenv("HEALTH_PORT", "")

	cfg := Load()

	if cfg.Interval != 60*time.Second {
		t.Errorf("expected 60s default interval, got %s", cfg.Interval)
	}
	if cfg.SinkKind != SinkFile {
		t.Errorf("expected file sink default, got %s", cfg.SinkKind)
	}
	if cfg.HealthPort != "8080" {
		t.Errorf("expected default health port 8080, got %s", cfg.HealthPort)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CHECK_INTERVAL", "120")
	t.Setenv("SINK", SinkPostgres)
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/matches")

	cfg := Load()

	if cfg.Interval != 120*time.Second {
		t.Errorf("expected 120s interval, got %s", cfg.Interval)
	}
	if cfg.SinkKind != SinkPostgres {
		t.Errorf("expected postgres sink, got %s", cfg.SinkKind)
	}
	if cfg.DatabaseURL != "postgres://localhost:5432/matches" {
		t.Errorf("unexpected database URL: %s", cfg.DatabaseURL)
	}
}

func TestLoadRejectsInvalidInterval(t *testing.T) {
	for _, bad := range []string{"abc", "-5", "0"} {
		t.Setenv("CHECK_INTERVAL", bad)
		if cfg := Load(); cfg.Interval != 60*time.Second {
			t.Errorf("CHECK_INTERVAL=%q: expected default interval, got %s", bad, cfg.Interval)
		}
	}
}
