package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.TodayTTL != time.Hour {
		t.Errorf("TodayTTL default: got %v", cfg.TodayTTL)
	}
	if cfg.ArchiveTTL != 10*time.Minute {
		t.Errorf("ArchiveTTL default: got %v", cfg.ArchiveTTL)
	}
	if cfg.GenerateAttempts != 3 {
		t.Errorf("GenerateAttempts default: got %d", cfg.GenerateAttempts)
	}
	if cfg.CacheDir == "" {
		t.Error("CacheDir should default to the platform cache directory")
	}
	if cfg.SessionID == "" {
		t.Error("SessionID should get a per-process default")
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("MOTIVATE_CACHE_DIR", "/tmp/motivate-test")
	t.Setenv("MOTIVATE_SESSION_ID", "abc123")
	t.Setenv("MOTIVATE_TODAY_TTL", "30m")
	t.Setenv("MOTIVATE_SWEEP_INTERVAL", "1m")
	t.Setenv("MOTIVATE_DEBUG", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.CacheDir != "/tmp/motivate-test" {
		t.Errorf("CacheDir: got %q", cfg.CacheDir)
	}
	if cfg.SessionID != "abc123" {
		t.Errorf("SessionID: got %q", cfg.SessionID)
	}
	if cfg.TodayTTL != 30*time.Minute {
		t.Errorf("TodayTTL: got %v", cfg.TodayTTL)
	}
	if cfg.SweepInterval != time.Minute {
		t.Errorf("SweepInterval: got %v", cfg.SweepInterval)
	}
	if !cfg.Debug {
		t.Error("Debug should be true")
	}
}
