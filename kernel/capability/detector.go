package capability

import (
	"sync"
	"time"

	"github.com/nmxmxh/inos_caps/kernel/utils"
)

// DetectOptions controls a Detect call
type DetectOptions struct {
	// ForceRedetect discards the cached profile and classifies again.
	ForceRedetect bool
	// TestPerformance runs the micro-benchmark. When false the profile
	// keeps the medium category and a zero benchmark time.
	TestPerformance bool
}

// DefaultDetectOptions returns the options used by lazy queries
func DefaultDetectOptions() DetectOptions {
	return DetectOptions{TestPerformance: true}
}

// Detector classifies a Source into a Profile and caches the result
type Detector struct {
	mu        sync.Mutex
	source    Source
	logger    *utils.Logger
	benchmark BenchmarkFunc
	now       func() time.Time

	profile *Profile
	runs    int
}

// Option configures a Detector
type Option func(*Detector)

// WithLogger sets the detector logger
func WithLogger(logger *utils.Logger) Option {
	return func(d *Detector) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithBenchmark replaces the micro-benchmark, mainly for tests
func WithBenchmark(fn BenchmarkFunc) Option {
	return func(d *Detector) {
		if fn != nil {
			d.benchmark = fn
		}
	}
}

// WithNow sets the timestamp source for DetectedAt
func WithNow(now func() time.Time) Option {
	return func(d *Detector) {
		if now != nil {
			d.now = now
		}
	}
}

// NewDetector creates a detector over the given signal source
func NewDetector(source Source, opts ...Option) *Detector {
	d := &Detector{
		source:    source,
		logger:    utils.DefaultLogger("capability"),
		benchmark: RunBenchmark,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect returns the cached profile, classifying on first use or when
// ForceRedetect is set. The benchmark runs synchronously inside this call.
func (d *Detector) Detect(opts DetectOptions) *Profile {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.profile != nil && !opts.ForceRedetect {
		return d.profile
	}

	d.profile = d.classify(opts.TestPerformance)
	d.runs++
	return d.profile
}

// Profile returns the cached profile, detecting with defaults if needed
func (d *Detector) Profile() *Profile {
	return d.Detect(DefaultDetectOptions())
}

// Runs reports how many full classifications have happened
func (d *Detector) Runs() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.runs
}

func (d *Detector) classify(testPerformance bool) *Profile {
	signals := d.readSignals()

	p := &Profile{
		Browser:      ClassifyBrowser(signals.UserAgent),
		Device:       ClassifyDevice(signals),
		Screen:       ClassifyScreen(signals.Viewport),
		System:       ClassifySystem(signals),
		GPU:          d.classifyGPU(),
		Capabilities: ProbeAll(d.source, d.logger),
		Connection:   ClassifyConnection(signals.Connection),
		Performance:  PerformanceInfo{Category: PerformanceMedium},
		DetectedAt:   d.now(),
	}

	if testPerformance {
		elapsed := d.benchmark()
		ms := float64(elapsed) / float64(time.Millisecond)
		p.Performance = PerformanceInfo{
			Category:    CategorizeBenchmark(ms),
			BenchmarkMs: ms,
		}
		p.GPU.Tier = NudgeGPUTier(p.GPU.Tier, p.Performance.Category)
	}

	d.logger.Info("Capability detection complete",
		utils.String("browser", string(p.Browser.Name)),
		utils.String("device", string(p.Device.Type)),
		utils.String("os", string(p.System.OS)),
		utils.String("gpu_tier", p.GPU.Tier.String()),
		utils.String("performance", p.Performance.Category.String()),
		utils.Float64("benchmark_ms", p.Performance.BenchmarkMs),
	)
	return p
}

func (d *Detector) readSignals() Signals {
	var s Signals
	err := utils.Guard(func() error {
		s = d.source.Signals()
		return nil
	})
	if err != nil {
		d.logger.Warn("Signal source failed, using defaults", utils.Err(err))
		return Signals{}
	}
	return s
}

func (d *Detector) classifyGPU() GPUInfo {
	var ctx GraphicsContext
	err := utils.Guard(func() error {
		var err error
		ctx, err = d.source.Graphics()
		return err
	})
	if err != nil {
		d.logger.Warn("Graphics context unavailable, assuming low GPU tier", utils.Err(err))
	}
	return ClassifyGPU(ctx, err)
}
