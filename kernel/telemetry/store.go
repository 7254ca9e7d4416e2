package telemetry

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nmxmxh/inos_caps/kernel/utils"
)

var (
	// ErrNoActiveSpan is returned when a span is ended without being started
	ErrNoActiveSpan = errors.New("telemetry: no active span")
	// ErrMissingMark is returned when a measure references an unknown mark
	ErrMissingMark = errors.New("telemetry: mark not found")
	// ErrDisabled is returned by error variants while monitoring is off
	ErrDisabled = errors.New("telemetry: monitoring disabled")
)

// DefaultHistoryLength is the frame window size used when none is configured
const DefaultHistoryLength = 60

const (
	spanStartSuffix = "-start"
	spanEndSuffix   = "-end"
)

// Config is the store configuration applied by Initialize
type Config struct {
	Enabled       bool `json:"enabled" yaml:"enabled"`
	HistoryLength int  `json:"historyLength" yaml:"historyLength"`
}

// DefaultConfig returns monitoring enabled with a 60-frame window
func DefaultConfig() Config {
	return Config{Enabled: true, HistoryLength: DefaultHistoryLength}
}

// Metrics is a snapshot of derived and caller-supplied values. FPS and
// FrameTimeMs stay zero until the first frame is sampled.
type Metrics struct {
	FPS              float64            `json:"fps" yaml:"fps"`
	FrameTimeMs      float64            `json:"frameTimeMs" yaml:"frameTimeMs"`
	CPUTimeMs        float64            `json:"cpuTimeMs" yaml:"cpuTimeMs"`
	GPUTimeMs        float64            `json:"gpuTimeMs" yaml:"gpuTimeMs"`
	MemoryUsageRatio float64            `json:"memoryUsageRatio" yaml:"memoryUsageRatio"`
	Custom           map[string]float64 `json:"custom,omitempty" yaml:"custom,omitempty"`
}

func (m Metrics) clone() Metrics {
	out := m
	if m.Custom != nil {
		out.Custom = make(map[string]float64, len(m.Custom))
		for k, v := range m.Custom {
			out.Custom[k] = v
		}
	}
	return out
}

// Report is a timestamped snapshot of the store
type Report struct {
	ID         string             `json:"id" yaml:"id"`
	Timestamp  time.Time          `json:"timestamp" yaml:"timestamp"`
	Enabled    bool               `json:"enabled" yaml:"enabled"`
	FrameCount uint64             `json:"frameCount" yaml:"frameCount"`
	Metrics    Metrics            `json:"metrics" yaml:"metrics"`
	Measures   map[string]float64 `json:"measures" yaml:"measures"`
	Counters   map[string]int64   `json:"counters" yaml:"counters"`
}

// Store holds marks, measures, counters and the rolling frame window.
// Timestamps are milliseconds since the store was created.
type Store struct {
	mu     sync.Mutex
	clock  Clock
	origin time.Time
	logger *utils.Logger

	scheduler    Scheduler
	memorySource MemorySource
	memory       *MemoryProbe
	sampler      *Sampler

	enabled       bool
	historyLength int

	marks       map[string]float64
	measures    map[string]float64
	counters    map[string]int64
	activeSpans map[string]string
	frames      *FrameWindow
	metrics     Metrics
	hasFPS      bool
	frameCount  uint64
}

// StoreOption configures a Store
type StoreOption func(*Store)

// WithClock sets the time source
func WithClock(c Clock) StoreOption {
	return func(s *Store) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithScheduler sets the display-refresh scheduler driving the sampler
func WithScheduler(sched Scheduler) StoreOption {
	return func(s *Store) {
		if sched != nil {
			s.scheduler = sched
		}
	}
}

// WithMemorySource enables memory usage sampling on each frame
func WithMemorySource(src MemorySource) StoreOption {
	return func(s *Store) {
		s.memorySource = src
	}
}

// WithLogger sets the store logger
func WithLogger(logger *utils.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore creates a store with the default configuration. The sampler is
// not started until Initialize or StartFrameMonitoring.
func NewStore(opts ...StoreOption) *Store {
	cfg := DefaultConfig()
	s := &Store{
		clock:         NewClock(true),
		logger:        utils.DefaultLogger("telemetry"),
		enabled:       cfg.Enabled,
		historyLength: cfg.HistoryLength,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.scheduler == nil {
		s.scheduler = NewTickerScheduler(nil, DefaultSampleRate)
	}
	if s.memorySource != nil {
		s.memory = NewMemoryProbe(s.memorySource, s.logger)
	}
	s.origin = s.clock.Now()
	s.resetLocked()
	s.sampler = NewSampler(s.scheduler, s.Now, s.recordFrame, s.logger)
	return s
}

// Initialize resets all state, applies cfg and starts the sampler when
// enabled. A history length below one is clamped to one.
func (s *Store) Initialize(cfg Config) {
	if cfg.HistoryLength < 1 {
		s.logger.Warn("Invalid history length, clamping to 1", utils.Int("history_length", cfg.HistoryLength))
		cfg.HistoryLength = 1
	}

	s.sampler.Stop()

	s.mu.Lock()
	s.enabled = cfg.Enabled
	s.historyLength = cfg.HistoryLength
	s.resetLocked()
	s.metrics = Metrics{}
	s.mu.Unlock()

	if cfg.Enabled {
		s.sampler.Start()
	}
}

// SetEnabled toggles monitoring. Enabling re-arms the sampler if it is not
// running; disabling stops it. Collected data is kept either way.
func (s *Store) SetEnabled(enabled bool) {
	s.mu.Lock()
	s.enabled = enabled
	s.mu.Unlock()

	if enabled {
		s.sampler.Start()
	} else {
		s.sampler.Stop()
	}
}

func (s *Store) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// Now returns the current store time in milliseconds
func (s *Store) Now() float64 {
	return sinceMs(s.origin, s.clock.Now())
}

// Mark records the current time under name
func (s *Store) Mark(name string) {
	now := s.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled {
		return
	}
	s.marks[name] = now
}

// MarkTime returns the timestamp recorded under name
func (s *Store) MarkTime(name string) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.marks[name]
	return v, ok
}

// Measure stores and returns endMark minus startMark. It returns false and
// stores nothing when either mark is missing.
func (s *Store) Measure(name, startMark, endMark string) (float64, bool) {
	d, err := s.MeasureErr(name, startMark, endMark)
	if err != nil {
		s.logger.Debug("Measure skipped",
			utils.String("name", name),
			utils.Err(err),
		)
		return 0, false
	}
	return d, true
}

// MeasureErr is Measure with the reason for a missing result
func (s *Store) MeasureErr(name, startMark, endMark string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled {
		return 0, ErrDisabled
	}
	return s.measureLocked(name, startMark, endMark)
}

func (s *Store) measureLocked(name, startMark, endMark string) (float64, error) {
	start, ok := s.marks[startMark]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingMark, startMark)
	}
	end, ok := s.marks[endMark]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingMark, endMark)
	}
	d := end - start
	s.measures[name] = d
	return d, nil
}

// MeasureValue returns the stored measure
func (s *Store) MeasureValue(name string) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.measures[name]
	return v, ok
}

// StartMeasure opens a span backed by an implicit start mark
func (s *Store) StartMeasure(name string) {
	now := s.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled {
		return
	}
	startMark := name + spanStartSuffix
	s.marks[startMark] = now
	s.activeSpans[name] = startMark
}

// EndMeasure closes a span and returns its duration. Without a matching
// StartMeasure it logs a warning and returns false.
func (s *Store) EndMeasure(name string) (float64, bool) {
	d, err := s.EndMeasureErr(name)
	if err != nil {
		if errors.Is(err, ErrNoActiveSpan) {
			s.logger.Warn("No active span to end", utils.String("name", name))
		}
		return 0, false
	}
	return d, true
}

// EndMeasureErr is EndMeasure returning ErrNoActiveSpan for an unpaired end
func (s *Store) EndMeasureErr(name string) (float64, error) {
	now := s.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled {
		return 0, ErrDisabled
	}
	startMark, ok := s.activeSpans[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNoActiveSpan, name)
	}
	endMark := name + spanEndSuffix
	s.marks[endMark] = now
	delete(s.activeSpans, name)
	return s.measureLocked(name, startMark, endMark)
}

// ActiveSpans returns the names of spans started but not yet ended
func (s *Store) ActiveSpans() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.activeSpans))
	for name := range s.activeSpans {
		names = append(names, name)
	}
	return names
}

// IncrementCounter adds one to the named counter
func (s *Store) IncrementCounter(name string) {
	s.AddToCounter(name, 1)
}

// AddToCounter adds delta to the named counter. Counters never go below zero.
func (s *Store) AddToCounter(name string, delta int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled {
		return
	}
	v := s.counters[name] + delta
	if v < 0 {
		v = 0
	}
	s.counters[name] = v
}

// GetCounter returns the counter value, zero when unseen
func (s *Store) GetCounter(name string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters[name]
}

func (s *Store) ResetCounter(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.counters, name)
}

// Metrics returns a copy of the current metrics
func (s *Store) Metrics() Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metrics.clone()
}

// FPS returns the smoothed frame rate, false until a frame is sampled
func (s *Store) FPS() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metrics.FPS, s.hasFPS
}

// SetCustomMetric stores a caller-defined metric
func (s *Store) SetCustomMetric(name string, value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled {
		return
	}
	if s.metrics.Custom == nil {
		s.metrics.Custom = make(map[string]float64)
	}
	s.metrics.Custom[name] = value
}

func (s *Store) CustomMetric(name string) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.metrics.Custom[name]
	return v, ok
}

// SetCPUTime records an externally measured CPU frame cost
func (s *Store) SetCPUTime(ms float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enabled {
		s.metrics.CPUTimeMs = ms
	}
}

// SetGPUTime records an externally measured GPU frame cost
func (s *Store) SetGPUTime(ms float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enabled {
		s.metrics.GPUTimeMs = ms
	}
}

// CreateReport snapshots metrics, measures and counters
func (s *Store) CreateReport() Report {
	ts := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	measures := make(map[string]float64, len(s.measures))
	for k, v := range s.measures {
		measures[k] = v
	}
	counters := make(map[string]int64, len(s.counters))
	for k, v := range s.counters {
		counters[k] = v
	}
	return Report{
		ID:         uuid.NewString(),
		Timestamp:  ts,
		Enabled:    s.enabled,
		FrameCount: s.frameCount,
		Metrics:    s.metrics.clone(),
		Measures:   measures,
		Counters:   counters,
	}
}

// Clear drops marks, measures, counters, spans and frame history. The
// enabled flag, history length and caller-set metrics are kept.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Store) resetLocked() {
	s.marks = make(map[string]float64)
	s.measures = make(map[string]float64)
	s.counters = make(map[string]int64)
	s.activeSpans = make(map[string]string)
	s.frames = NewFrameWindow(s.historyLength)
	s.frameCount = 0
	s.hasFPS = false
	s.metrics.FPS = 0
	s.metrics.FrameTimeMs = 0
}

func (s *Store) FrameCount() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frameCount
}

func (s *Store) HistoryLength() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.historyLength
}

// FrameHistory returns the frame intervals in the window, oldest first
func (s *Store) FrameHistory() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames.Values()
}

// StartFrameMonitoring starts the sampler. It returns false when monitoring
// is disabled or the sampler is already running.
func (s *Store) StartFrameMonitoring() bool {
	if !s.Enabled() {
		return false
	}
	return s.sampler.Start()
}

// StopFrameMonitoring stops re-arming after the next refresh callback
func (s *Store) StopFrameMonitoring() bool {
	return s.sampler.Stop()
}

// Sampling reports whether the frame sampler is running
func (s *Store) Sampling() bool {
	return s.sampler.Running()
}

// recordFrame is the sampler sink
func (s *Store) recordFrame(deltaMs float64) {
	ratio, hasMemory := s.memory.Sample()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.frames.Push(deltaMs)
	if mean, ok := s.frames.Mean(); ok {
		s.metrics.FrameTimeMs = mean
		if mean > 0 {
			s.metrics.FPS = 1000 / mean
			s.hasFPS = true
		} else {
			s.metrics.FPS = 0
			s.hasFPS = false
		}
	}
	s.frameCount++
	if hasMemory {
		s.metrics.MemoryUsageRatio = ratio
	}
}
