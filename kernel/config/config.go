// Package config loads engine configuration from the environment and
// command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/nmxmxh/inos_caps/kernel/capability"
	"github.com/nmxmxh/inos_caps/kernel/telemetry"
	"github.com/nmxmxh/inos_caps/kernel/utils"
)

var (
	// ErrInvalidHistoryLength is reported for a frame window below one
	ErrInvalidHistoryLength = errors.New("history length must be at least 1")
	// ErrInvalidSampleRate is reported for a non-positive sampling rate
	ErrInvalidSampleRate = errors.New("sample rate must be positive")
)

// Config holds detection and telemetry settings.
type Config struct {
	Enabled         bool   `env:"INOS_TELEMETRY_ENABLED" envDefault:"true"`
	HistoryLength   int    `env:"INOS_HISTORY_LENGTH"    envDefault:"60"`
	ForceRedetect   bool   `env:"INOS_FORCE_REDETECT"`
	TestPerformance bool   `env:"INOS_TEST_PERFORMANCE"  envDefault:"true"`
	LogLevel        string `env:"INOS_LOG_LEVEL"         envDefault:"info"`
	SampleRate      int    `env:"INOS_SAMPLE_HZ"         envDefault:"60"`
	SignalsFile     string `env:"INOS_SIGNALS_FILE"`
}

// Default returns the configuration used when nothing is set
func Default() Config {
	return Config{
		Enabled:         true,
		HistoryLength:   telemetry.DefaultHistoryLength,
		TestPerformance: true,
		LogLevel:        "info",
		SampleRate:      telemetry.DefaultSampleRate,
	}
}

// Load reads the configuration from environment variables
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// RegisterFlags binds the fields to fs, using the current values as defaults
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.Enabled, "telemetry", c.Enabled, "enable frame and timing telemetry")
	fs.IntVar(&c.HistoryLength, "history", c.HistoryLength, "frame intervals kept for FPS smoothing")
	fs.BoolVar(&c.ForceRedetect, "force-redetect", c.ForceRedetect, "ignore any cached capability profile")
	fs.BoolVar(&c.TestPerformance, "benchmark", c.TestPerformance, "run the CPU micro-benchmark during detection")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level (debug, info, warn, error)")
	fs.IntVar(&c.SampleRate, "sample-hz", c.SampleRate, "sampling rate when no display refresh is available")
	fs.StringVar(&c.SignalsFile, "signals", c.SignalsFile, "path to a YAML or JSON signal fixture")
}

// ParseConfig loads the environment, then applies flags from args
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg, err := Load()
	if err != nil {
		return Config{}, err
	}
	cfg.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports settings the engine would have to clamp
func (c Config) Validate() error {
	var errs []error
	if c.HistoryLength < 1 {
		errs = append(errs, fmt.Errorf("%w: got %d", ErrInvalidHistoryLength, c.HistoryLength))
	}
	if c.SampleRate < 1 {
		errs = append(errs, fmt.Errorf("%w: got %d", ErrInvalidSampleRate, c.SampleRate))
	}
	return errors.Join(errs...)
}

// TelemetryConfig is the store configuration for Initialize
func (c Config) TelemetryConfig() telemetry.Config {
	return telemetry.Config{Enabled: c.Enabled, HistoryLength: c.HistoryLength}
}

// DetectOptions is the detector configuration
func (c Config) DetectOptions() capability.DetectOptions {
	return capability.DetectOptions{
		ForceRedetect:   c.ForceRedetect,
		TestPerformance: c.TestPerformance,
	}
}

// Level parses LogLevel, defaulting to INFO
func (c Config) Level() utils.LogLevel {
	return utils.ParseLogLevel(c.LogLevel)
}
