// Package main provides the entry point for the motivate CLI, the
// operator tooling around the daily-quote site's cache and narration
// timing utilities.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tranenterprises/MotivationFiles2.0-sub001/internal/cache"
	"github.com/tranenterprises/MotivationFiles2.0-sub001/internal/config"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	debug      bool

	rootCmd = &cobra.Command{
		Use:   "motivate",
		Short: "Tooling for the daily quote site's cache and narration timing",
		Long: paragraph(
			fmt.Sprintf("\nInspect and maintain the quote site's %s, and turn text-to-speech character timings into %s for playback highlighting.",
				keyword("layered cache"), keyword("word timings")),
		),
		SilenceErrors: false,
		SilenceUsage:  true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if viper.GetBool("debug") {
				log.SetLevel(log.DebugLevel)
			}
		},
	}
)

// newCacheManager builds a cache manager from the environment and the
// config file, config file winning where both are set.
func newCacheManager() (*cache.Manager, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if dir := viper.GetString("cache.dir"); dir != "" {
		cfg.CacheDir = dir
	}
	if interval := viper.GetDuration("cache.sweep_interval"); interval > 0 {
		cfg.SweepInterval = interval
	}

	return cache.NewManager(cache.Config{
		Dir:           cfg.CacheDir,
		SessionID:     cfg.SessionID,
		SweepInterval: cfg.SweepInterval,
	})
}

// setupLog configures logging and returns a closer for the optional
// log file named by MOTIVATE_LOG.
func setupLog() (func() error, error) {
	log.SetOutput(os.Stderr)

	if path := os.Getenv("MOTIVATE_LOG"); path != "" {
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("error setting up logging: %w", err)
		}
		log.SetOutput(f)
		log.SetLevel(log.DebugLevel)
		return f.Close, nil
	}

	return func() error { return nil }, nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))

	viper.SetDefault("cache.dir", "")
	viper.SetDefault("cache.sweep_interval", "0s")
	viper.SetDefault("debug", false)

	rootCmd.AddCommand(alignCmd, cacheCmd, configCmd, manCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "motivate")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "motivate")}, dirs...)
	}

	if c := os.Getenv("MOTIVATE_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("motivate")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("motivate")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "motivate.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
