// Package probe implements the inos-probe command.
package probe

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/nmxmxh/inos_caps/kernel/config"
	"github.com/nmxmxh/inos_caps/kernel/monitor"
	"github.com/nmxmxh/inos_caps/kernel/signals"
	"github.com/nmxmxh/inos_caps/kernel/utils"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"

	detectSpan    = "detect"
	shutdownGrace = 2 * time.Second
)

// Config holds probe command configuration.
type Config struct {
	config.Config

	Duration time.Duration `env:"INOS_PROBE_DURATION" envDefault:"1s"`
	Format   string        `env:"INOS_PROBE_FORMAT"   envDefault:"json"`
	MinFPS   float64       `env:"INOS_PROBE_MIN_FPS"  envDefault:"30"`
}

// ParseConfig parses the environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	var noBenchmark bool
	cfg.Config.RegisterFlags(fs)
	fs.DurationVar(&cfg.Duration, "duration", cfg.Duration, "how long to sample frames")
	fs.StringVar(&cfg.Format, "format", cfg.Format, "output format (json, yaml)")
	fs.Float64Var(&cfg.MinFPS, "min-fps", cfg.MinFPS, "frame rate below which adaptive quality steps down")
	fs.BoolVar(&noBenchmark, "no-benchmark", false, "skip the CPU micro-benchmark")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if noBenchmark {
		cfg.TestPerformance = false
	}
	if cfg.Format != FormatJSON && cfg.Format != FormatYAML {
		return Config{}, fmt.Errorf("unsupported format %q", cfg.Format)
	}
	return cfg, nil
}

// Output is what the command prints
type Output struct {
	monitor.Summary `yaml:",inline"`
	DetectMs        float64 `json:"detectMs" yaml:"detectMs"`
}

// Run classifies the host, samples frames for cfg.Duration and writes the
// summary to out. Logs go to errOut.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}

	logger := utils.NewLogger(utils.LoggerConfig{
		Level:     cfg.Level(),
		Component: "probe",
		Output:    errOut,
		Colorize:  true,
	})
	utils.SetGlobalLogger(logger)

	if err := cfg.Validate(); err != nil {
		logger.Warn("Configuration will be clamped", utils.Err(err))
	}

	host, err := loadHost(cfg.SignalsFile)
	if err != nil {
		return err
	}

	m := monitor.NewForHost(host, cfg.Config, logger)
	shutdown := utils.NewGracefulShutdown(shutdownGrace, logger)
	shutdown.Register("logger", func() error {
		_ = logger.Sync()
		return nil
	})
	shutdown.Register("telemetry", func() error {
		m.Stop()
		return nil
	})

	m.Start(cfg.TelemetryConfig())
	store := m.Telemetry()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		store.StartMeasure(detectSpan)
		m.Detect(cfg.DetectOptions())
		store.EndMeasure(detectSpan)
		return nil
	})
	g.Go(func() error {
		timer := time.NewTimer(cfg.Duration)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-gctx.Done():
			logger.Info("Sampling interrupted")
		}
		m.Stop()
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	result := Output{Summary: m.Summary()}
	result.AdaptiveQuality = m.AdaptiveQuality(cfg.MinFPS)
	result.DetectMs, _ = store.MeasureValue(detectSpan)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := shutdown.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Shutdown incomplete", utils.Err(err))
	}

	return write(out, cfg.Format, result)
}

func loadHost(path string) (signals.Host, error) {
	if path == "" {
		return signals.Default(), nil
	}
	src, err := signals.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return src, nil
}

func write(out io.Writer, format string, v Output) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return utils.WrapError(err, "failed to encode yaml")
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return utils.WrapError(err, "failed to encode json")
		}
		return nil
	default:
		return errors.New("unsupported format " + format)
	}
}
