// Package config resolves the toolkit's runtime configuration from the
// environment, with platform-appropriate defaults for paths.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	gap "github.com/muesli/go-app-paths"
)

// Config is the runtime configuration. Per-call options like tier and
// TTL stay per-call; this only covers process-wide settings.
type Config struct {
	// CacheDir is the base directory for the file-backed cache tiers.
	// Empty means the platform user-cache directory.
	CacheDir string `env:"MOTIVATE_CACHE_DIR"`

	// SessionID scopes the session cache tier.
	SessionID string `env:"MOTIVATE_SESSION_ID"`

	// SweepInterval enables the periodic expired-entry sweep of the
	// ephemeral tier when positive.
	SweepInterval time.Duration `env:"MOTIVATE_SWEEP_INTERVAL"`

	// Cache lifetimes for the recurring quote queries.
	TodayTTL   time.Duration `env:"MOTIVATE_TODAY_TTL"   envDefault:"1h"`
	ArchiveTTL time.Duration `env:"MOTIVATE_ARCHIVE_TTL" envDefault:"10m"`
	CountTTL   time.Duration `env:"MOTIVATE_COUNT_TTL"   envDefault:"5m"`

	// Generation tuning.
	GenerateAttempts int           `env:"MOTIVATE_GENERATE_ATTEMPTS" envDefault:"3"`
	GenerateBackoff  time.Duration `env:"MOTIVATE_GENERATE_BACKOFF"  envDefault:"2s"`

	// Debug enables debug-level logging.
	Debug bool `env:"MOTIVATE_DEBUG"`
}

// Load parses the environment and fills in path defaults.
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("error parsing config: %w", err)
	}

	if cfg.CacheDir == "" {
		scope := gap.NewScope(gap.User, "motivate")
		dir, err := scope.CacheDir()
		if err != nil {
			return Config{}, fmt.Errorf("unable to resolve cache directory: %w", err)
		}
		cfg.CacheDir = dir
	}

	if cfg.SessionID == "" {
		cfg.SessionID = fmt.Sprintf("pid-%d", os.Getpid())
	}

	return cfg, nil
}
