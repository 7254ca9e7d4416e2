// Package monitor composes the capability detector and the telemetry store
// behind one query surface.
package monitor

import (
	"github.com/nmxmxh/inos_caps/kernel/capability"
	"github.com/nmxmxh/inos_caps/kernel/config"
	"github.com/nmxmxh/inos_caps/kernel/signals"
	"github.com/nmxmxh/inos_caps/kernel/telemetry"
	"github.com/nmxmxh/inos_caps/kernel/utils"
)

// DefaultMinFPS is the frame rate below which AdaptiveQuality steps down
const DefaultMinFPS = 30

// Monitor owns one Detector and one Store. The two are independent; only
// AdaptiveQuality and Summary read both.
type Monitor struct {
	detector *capability.Detector
	store    *telemetry.Store
	logger   *utils.Logger
}

// New wraps an existing detector and store
func New(detector *capability.Detector, store *telemetry.Store, logger *utils.Logger) *Monitor {
	if logger == nil {
		logger = utils.DefaultLogger("monitor")
	}
	return &Monitor{detector: detector, store: store, logger: logger}
}

// NewForHost builds the detector and store from a signal host. The store is
// configured but not initialized; call Start to begin sampling.
func NewForHost(host signals.Host, cfg config.Config, logger *utils.Logger) *Monitor {
	if logger == nil {
		logger = utils.NewLogger(utils.LoggerConfig{Level: cfg.Level(), Component: "caps", Colorize: true})
	}
	detector := capability.NewDetector(host,
		capability.WithLogger(logger.Named("capability")),
	)
	store := telemetry.NewStore(
		telemetry.WithClock(telemetry.NewClock(host.PreciseTiming())),
		telemetry.WithScheduler(host.Scheduler(cfg.SampleRate)),
		telemetry.WithMemorySource(host.MemorySource()),
		telemetry.WithLogger(logger.Named("telemetry")),
	)
	return New(detector, store, logger.Named("monitor"))
}

// Start initializes the store with cfg, which starts sampling when enabled
func (m *Monitor) Start(cfg telemetry.Config) {
	m.store.Initialize(cfg)
}

// Stop halts frame sampling
func (m *Monitor) Stop() {
	m.store.StopFrameMonitoring()
}

// Detect classifies the environment, or returns the cached profile
func (m *Monitor) Detect(opts capability.DetectOptions) *capability.Profile {
	return m.detector.Detect(opts)
}

// Profile returns the cached profile, detecting with defaults on first use
func (m *Monitor) Profile() *capability.Profile {
	return m.detector.Profile()
}

// Telemetry exposes the store for marks, measures and counters
func (m *Monitor) Telemetry() *telemetry.Store {
	return m.store
}

func (m *Monitor) IsMobile() bool            { return m.Profile().IsMobile() }
func (m *Monitor) IsTablet() bool            { return m.Profile().IsTablet() }
func (m *Monitor) IsTouch() bool             { return m.Profile().IsTouch() }
func (m *Monitor) HasAdequateGraphics() bool { return m.Profile().HasAdequateGraphics() }
func (m *Monitor) IsSlowConnection() bool    { return m.Profile().IsSlowConnection() }
func (m *Monitor) IsPowerSavingMode() bool   { return m.Profile().IsPowerSavingMode() }

// RecommendedQuality is the static quality from GPU tier and benchmark
func (m *Monitor) RecommendedQuality() capability.Quality {
	return m.Profile().RecommendedQuality()
}

// AdaptiveQuality starts from RecommendedQuality and steps one level down
// while the smoothed frame rate is known and below minFPS. A non-positive
// minFPS uses DefaultMinFPS.
func (m *Monitor) AdaptiveQuality(minFPS float64) capability.Quality {
	if minFPS <= 0 {
		minFPS = DefaultMinFPS
	}
	q := m.RecommendedQuality()
	fps, ok := m.store.FPS()
	if !ok || fps >= minFPS {
		return q
	}
	lowered := q.Lower()
	if lowered != q {
		m.logger.Debug("Frame rate below target, lowering quality",
			utils.Float64("fps", fps),
			utils.Float64("min_fps", minFPS),
			utils.String("from", q.String()),
			utils.String("to", lowered.String()),
		)
	}
	return lowered
}

// Summary is the combined view of the profile and live telemetry
type Summary struct {
	Profile            *capability.Profile `json:"profile" yaml:"profile"`
	RecommendedQuality capability.Quality  `json:"recommendedQuality" yaml:"recommendedQuality"`
	AdaptiveQuality    capability.Quality  `json:"adaptiveQuality" yaml:"adaptiveQuality"`
	Mobile             bool                `json:"mobile" yaml:"mobile"`
	Tablet             bool                `json:"tablet" yaml:"tablet"`
	Touch              bool                `json:"touch" yaml:"touch"`
	AdequateGraphics   bool                `json:"adequateGraphics" yaml:"adequateGraphics"`
	SlowConnection     bool                `json:"slowConnection" yaml:"slowConnection"`
	PowerSaving        bool                `json:"powerSaving" yaml:"powerSaving"`
	Telemetry          telemetry.Report    `json:"telemetry" yaml:"telemetry"`
}

// Summary snapshots every query at once
func (m *Monitor) Summary() Summary {
	p := m.Profile()
	return Summary{
		Profile:            p,
		RecommendedQuality: p.RecommendedQuality(),
		AdaptiveQuality:    m.AdaptiveQuality(DefaultMinFPS),
		Mobile:             p.IsMobile(),
		Tablet:             p.IsTablet(),
		Touch:              p.IsTouch(),
		AdequateGraphics:   p.HasAdequateGraphics(),
		SlowConnection:     p.IsSlowConnection(),
		PowerSaving:        p.IsPowerSavingMode(),
		Telemetry:          m.store.CreateReport(),
	}
}
