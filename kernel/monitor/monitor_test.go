package monitor

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/nmxmxh/inos_caps/kernel/capability"
	"github.com/nmxmxh/inos_caps/kernel/config"
	"github.com/nmxmxh/inos_caps/kernel/signals"
	"github.com/nmxmxh/inos_caps/kernel/telemetry"
	"github.com/nmxmxh/inos_caps/kernel/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const desktopUA = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

type harness struct {
	m     *Monitor
	clock *clock.Mock
	sched *telemetry.ManualScheduler
}

func newHarness(t *testing.T, fixture signals.Fixture, bench time.Duration) *harness {
	t.Helper()
	h := &harness{clock: clock.NewMock(), sched: telemetry.NewManualScheduler()}
	detector := capability.NewDetector(signals.NewStaticSource(fixture),
		capability.WithLogger(utils.NewNopLogger()),
		capability.WithBenchmark(func() time.Duration { return bench }),
	)
	store := telemetry.NewStore(
		telemetry.WithClock(h.clock),
		telemetry.WithScheduler(h.sched),
		telemetry.WithLogger(utils.NewNopLogger()),
	)
	h.m = New(detector, store, utils.NewNopLogger())
	return h
}

func (h *harness) frames(n int, ms int) {
	for i := 0; i < n; i++ {
		h.clock.Add(time.Duration(ms) * time.Millisecond)
		h.sched.Step()
	}
}

func highEndFixture() signals.Fixture {
	return signals.Fixture{
		Signals: capability.Signals{
			UserAgent:   desktopUA,
			Viewport:    capability.Viewport{Width: 2560, Height: 1440},
			PixelRatio:  2,
			PointerFine: true,
		},
		Graphics: &capability.GraphicsContext{Vendor: "Apple", Renderer: "Apple M2 Pro", APIVersion: 2},
		Features: map[capability.Feature]bool{
			capability.FeatureWebGL:  true,
			capability.FeatureWebGL2: true,
		},
	}
}

func TestMonitor_QueriesDetectLazily(t *testing.T) {
	h := newHarness(t, highEndFixture(), 20*time.Millisecond)

	assert.False(t, h.m.IsMobile())
	assert.False(t, h.m.IsTablet())
	assert.False(t, h.m.IsTouch())
	assert.True(t, h.m.HasAdequateGraphics())
	assert.False(t, h.m.IsSlowConnection())
	assert.False(t, h.m.IsPowerSavingMode())
	assert.Equal(t, capability.QualityHigh, h.m.RecommendedQuality())

	assert.Same(t, h.m.Profile(), h.m.Detect(capability.DefaultDetectOptions()))
}

func TestMonitor_AdaptiveQuality(t *testing.T) {
	h := newHarness(t, highEndFixture(), 20*time.Millisecond)

	assert.Equal(t, capability.QualityHigh, h.m.AdaptiveQuality(0), "unknown fps keeps the static recommendation")

	h.m.Start(telemetry.Config{Enabled: true, HistoryLength: 10})
	h.frames(10, 16)
	assert.Equal(t, capability.QualityHigh, h.m.AdaptiveQuality(30))

	h.frames(10, 50)
	fps, ok := h.m.Telemetry().FPS()
	require.True(t, ok)
	assert.InDelta(t, 20.0, fps, 1e-9)
	assert.Equal(t, capability.QualityMedium, h.m.AdaptiveQuality(30))
	assert.Equal(t, capability.QualityHigh, h.m.AdaptiveQuality(15))
}

func TestMonitor_AdaptiveQualitySaturatesAtLow(t *testing.T) {
	fixture := highEndFixture()
	fixture.Graphics = nil
	h := newHarness(t, fixture, 20*time.Millisecond)
	h.m.Start(telemetry.DefaultConfig())
	h.frames(5, 100)

	assert.Equal(t, capability.QualityLow, h.m.RecommendedQuality())
	assert.Equal(t, capability.QualityLow, h.m.AdaptiveQuality(30))
}

func TestMonitor_StopHaltsSampling(t *testing.T) {
	h := newHarness(t, highEndFixture(), 0)
	h.m.Start(telemetry.DefaultConfig())
	h.frames(3, 16)
	h.m.Stop()
	h.frames(3, 16)
	assert.Equal(t, uint64(3), h.m.Telemetry().FrameCount())
}

func TestMonitor_Summary(t *testing.T) {
	fixture := highEndFixture()
	fixture.Signals.Connection = &capability.ConnectionSignals{EffectiveType: "2g", SaveData: true}
	h := newHarness(t, fixture, 20*time.Millisecond)
	h.m.Start(telemetry.DefaultConfig())
	h.m.Telemetry().IncrementCounter("draws")
	h.frames(2, 16)

	s := h.m.Summary()
	require.NotNil(t, s.Profile)
	assert.True(t, s.SlowConnection)
	assert.True(t, s.PowerSaving)
	assert.Equal(t, capability.QualityHigh, s.RecommendedQuality)
	assert.Equal(t, int64(1), s.Telemetry.Counters["draws"])
	assert.Equal(t, uint64(2), s.Telemetry.FrameCount)

	raw, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"recommendedQuality":"high"`)

	out, err := yaml.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(out), "recommendedQuality: high")
}

func TestNewForHost(t *testing.T) {
	src := signals.NewStaticSource(highEndFixture())
	cfg := config.Default()
	cfg.TestPerformance = false

	m := NewForHost(src, cfg, utils.NewNopLogger())
	p := m.Detect(cfg.DetectOptions())
	assert.Equal(t, capability.GPUHigh, p.GPU.Tier)
	assert.Equal(t, capability.PerformanceMedium, p.Performance.Category)
	assert.True(t, m.Telemetry().Enabled())
	assert.False(t, m.Telemetry().Sampling(), "sampling waits for Start")
}
