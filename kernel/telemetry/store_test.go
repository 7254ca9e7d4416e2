package telemetry

import (
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/nmxmxh/inos_caps/kernel/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type storeHarness struct {
	store *Store
	clock *clock.Mock
	sched *ManualScheduler
	logs  *observer.ObservedLogs
}

func newStoreHarness(t *testing.T, opts ...StoreOption) *storeHarness {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	h := &storeHarness{
		clock: clock.NewMock(),
		sched: NewManualScheduler(),
		logs:  logs,
	}
	base := []StoreOption{
		WithClock(h.clock),
		WithScheduler(h.sched),
		WithLogger(utils.NewLoggerWithCore(core, "telemetry")),
	}
	h.store = NewStore(append(base, opts...)...)
	return h
}

// frame advances the clock by ms and delivers one refresh callback
func (h *storeHarness) frame(ms int) {
	h.clock.Add(time.Duration(ms) * time.Millisecond)
	h.sched.Step()
}

func TestStore_MeasureRequiresBothMarks(t *testing.T) {
	h := newStoreHarness(t)
	s := h.store

	s.Mark("b")
	_, ok := s.Measure("m", "a", "b")
	assert.False(t, ok)
	_, ok = s.MeasureValue("m")
	assert.False(t, ok, "nothing stored on failure")

	_, err := s.MeasureErr("m", "a", "b")
	assert.ErrorIs(t, err, ErrMissingMark)

	h.clock.Add(5 * time.Millisecond)
	s.Mark("a")
	h.clock.Add(12 * time.Millisecond)
	s.Mark("b")

	d, ok := s.Measure("m", "a", "b")
	require.True(t, ok)
	assert.Equal(t, 12.0, d)

	a, _ := s.MarkTime("a")
	b, _ := s.MarkTime("b")
	assert.Equal(t, b-a, d)

	stored, ok := s.MeasureValue("m")
	assert.True(t, ok)
	assert.Equal(t, d, stored)
}

func TestStore_MarkLastWriteWins(t *testing.T) {
	h := newStoreHarness(t)
	h.store.Mark("x")
	h.clock.Add(3 * time.Millisecond)
	h.store.Mark("x")
	v, ok := h.store.MarkTime("x")
	assert.True(t, ok)
	assert.Equal(t, 3.0, v)
}

func TestStore_Spans(t *testing.T) {
	h := newStoreHarness(t)
	s := h.store

	s.StartMeasure("x")
	assert.Equal(t, []string{"x"}, s.ActiveSpans())
	_, ok := s.MarkTime("x-start")
	assert.True(t, ok, "active span always has its start mark")

	h.clock.Add(8 * time.Millisecond)
	d, ok := s.EndMeasure("x")
	require.True(t, ok)
	assert.GreaterOrEqual(t, d, 0.0)
	assert.Equal(t, 8.0, d)
	assert.Empty(t, s.ActiveSpans())

	_, ok = s.EndMeasure("x")
	assert.False(t, ok, "second end without start")
	assert.Equal(t, 1, h.logs.FilterMessage("No active span to end").Len())

	_, err := s.EndMeasureErr("never")
	assert.ErrorIs(t, err, ErrNoActiveSpan)
}

func TestStore_Counters(t *testing.T) {
	h := newStoreHarness(t)
	s := h.store

	assert.Zero(t, s.GetCounter("hits"))
	s.IncrementCounter("hits")
	s.IncrementCounter("hits")
	s.IncrementCounter("hits")
	assert.Equal(t, int64(3), s.GetCounter("hits"))

	s.ResetCounter("hits")
	assert.Zero(t, s.GetCounter("hits"))

	s.AddToCounter("bytes", 10)
	s.AddToCounter("bytes", -25)
	assert.Zero(t, s.GetCounter("bytes"), "counters never go negative")
}

func TestStore_FPSOverLastWindow(t *testing.T) {
	h := newStoreHarness(t)
	s := h.store
	s.Initialize(Config{Enabled: true, HistoryLength: 3})
	require.True(t, s.Sampling())

	_, ok := s.FPS()
	assert.False(t, ok, "fps undefined before the first frame")

	for _, ms := range []int{10, 20, 30, 40, 50} {
		h.frame(ms)
		assert.LessOrEqual(t, len(s.FrameHistory()), 3)
	}

	assert.Equal(t, []float64{30, 40, 50}, s.FrameHistory())
	fps, ok := s.FPS()
	require.True(t, ok)
	assert.InDelta(t, 1000.0/40.0, fps, 1e-9)

	m := s.Metrics()
	assert.InDelta(t, 40.0, m.FrameTimeMs, 1e-9)
	assert.Equal(t, uint64(5), s.FrameCount())
}

func TestStore_StopFrameMonitoring(t *testing.T) {
	h := newStoreHarness(t)
	s := h.store
	s.Initialize(DefaultConfig())

	h.frame(16)
	require.True(t, s.StopFrameMonitoring())
	h.frame(16)
	h.frame(16)

	assert.Equal(t, uint64(1), s.FrameCount())
	assert.Zero(t, h.sched.Pending())
	assert.False(t, s.Sampling())

	assert.True(t, s.StartFrameMonitoring())
	h.frame(20)
	assert.Equal(t, uint64(2), s.FrameCount())
}

func TestStore_ClearKeepsConfiguration(t *testing.T) {
	h := newStoreHarness(t)
	s := h.store
	s.Initialize(Config{Enabled: true, HistoryLength: 5})

	s.Mark("a")
	s.Mark("b")
	s.Measure("m", "a", "b")
	s.StartMeasure("span")
	s.IncrementCounter("c")
	h.frame(16)
	h.frame(16)

	s.Clear()

	_, ok := s.MarkTime("a")
	assert.False(t, ok)
	_, ok = s.MeasureValue("m")
	assert.False(t, ok)
	assert.Empty(t, s.ActiveSpans())
	assert.Zero(t, s.GetCounter("c"))
	assert.Zero(t, s.FrameCount())
	assert.Empty(t, s.FrameHistory())
	_, ok = s.FPS()
	assert.False(t, ok)

	assert.True(t, s.Enabled())
	assert.Equal(t, 5, s.HistoryLength())
	assert.True(t, s.Sampling(), "clear does not stop the sampler")
}

func TestStore_DisabledIsNoOp(t *testing.T) {
	h := newStoreHarness(t)
	s := h.store
	s.Initialize(Config{Enabled: false, HistoryLength: 10})
	assert.False(t, s.Sampling())
	assert.False(t, s.StartFrameMonitoring())

	s.Mark("a")
	s.StartMeasure("x")
	s.IncrementCounter("hits")
	s.SetCustomMetric("load", 1)

	_, ok := s.MarkTime("a")
	assert.False(t, ok)
	assert.Empty(t, s.ActiveSpans())
	assert.Zero(t, s.GetCounter("hits"))
	_, ok = s.CustomMetric("load")
	assert.False(t, ok)

	_, err := s.EndMeasureErr("x")
	assert.ErrorIs(t, err, ErrDisabled)
	assert.Zero(t, h.logs.FilterMessage("No active span to end").Len())
}

func TestStore_SetEnabledRearmsSampler(t *testing.T) {
	h := newStoreHarness(t)
	s := h.store
	s.Initialize(DefaultConfig())
	s.IncrementCounter("kept")

	s.SetEnabled(false)
	assert.False(t, s.Sampling())
	h.sched.Step()
	assert.Zero(t, h.sched.Pending())
	assert.Equal(t, int64(1), s.GetCounter("kept"), "disabling keeps data")

	s.SetEnabled(true)
	assert.True(t, s.Sampling())
	assert.Equal(t, 1, h.sched.Pending())

	s.SetEnabled(true)
	assert.Equal(t, 1, h.sched.Pending(), "already running is not re-armed twice")
}

func TestStore_InitializeClampsHistory(t *testing.T) {
	h := newStoreHarness(t)
	s := h.store
	s.Initialize(Config{Enabled: true, HistoryLength: 0})

	assert.Equal(t, 1, s.HistoryLength())
	assert.Equal(t, 1, h.logs.FilterMessage("Invalid history length, clamping to 1").Len())

	h.frame(10)
	h.frame(25)
	assert.Equal(t, []float64{25}, s.FrameHistory())
	fps, ok := s.FPS()
	assert.True(t, ok)
	assert.InDelta(t, 40.0, fps, 1e-9)
}

func TestStore_InitializeResetsState(t *testing.T) {
	h := newStoreHarness(t)
	s := h.store
	s.Initialize(DefaultConfig())
	s.IncrementCounter("c")
	s.SetCustomMetric("load", 0.5)
	h.frame(16)

	s.Initialize(Config{Enabled: true, HistoryLength: 30})
	assert.Zero(t, s.GetCounter("c"))
	assert.Zero(t, s.FrameCount())
	assert.Nil(t, s.Metrics().Custom)
	assert.Equal(t, 30, s.HistoryLength())

	h.frame(16)
	assert.Equal(t, uint64(1), s.FrameCount())
	assert.Equal(t, 1, h.sched.Pending(), "reinitializing leaves a single sampling chain")
}

func TestStore_MetricsSnapshotIsolated(t *testing.T) {
	h := newStoreHarness(t)
	s := h.store
	s.SetCustomMetric("load", 0.5)
	s.SetCPUTime(4)
	s.SetGPUTime(6)

	snap := s.Metrics()
	snap.Custom["load"] = 99
	snap.CPUTimeMs = 100

	v, ok := s.CustomMetric("load")
	assert.True(t, ok)
	assert.Equal(t, 0.5, v)
	m := s.Metrics()
	assert.Equal(t, 4.0, m.CPUTimeMs)
	assert.Equal(t, 6.0, m.GPUTimeMs)
}

func TestStore_CreateReport(t *testing.T) {
	h := newStoreHarness(t)
	s := h.store
	s.Initialize(DefaultConfig())

	s.Mark("a")
	h.clock.Add(4 * time.Millisecond)
	s.Mark("b")
	s.Measure("ab", "a", "b")
	s.IncrementCounter("hits")
	h.frame(16)

	r := s.CreateReport()
	_, err := uuid.Parse(r.ID)
	assert.NoError(t, err)
	assert.True(t, r.Enabled)
	assert.Equal(t, uint64(1), r.FrameCount)
	assert.Equal(t, map[string]float64{"ab": 4}, r.Measures)
	assert.Equal(t, map[string]int64{"hits": 1}, r.Counters)
	assert.Equal(t, h.clock.Now(), r.Timestamp)

	r.Counters["hits"] = 50
	assert.Equal(t, int64(1), s.GetCounter("hits"))

	other := s.CreateReport()
	assert.NotEqual(t, r.ID, other.ID)
}

func TestStore_MemorySampledPerFrame(t *testing.T) {
	h := newStoreHarness(t, WithMemorySource(func() (float64, error) { return 0.42, nil }))
	h.store.Initialize(DefaultConfig())
	h.frame(16)
	assert.Equal(t, 0.42, h.store.Metrics().MemoryUsageRatio)
}

func TestStore_MemoryFailureLeavesRatio(t *testing.T) {
	h := newStoreHarness(t, WithMemorySource(func() (float64, error) { return 0, errors.New("no memory api") }))
	h.store.Initialize(DefaultConfig())
	h.frame(16)
	h.frame(16)
	assert.Zero(t, h.store.Metrics().MemoryUsageRatio)
	assert.Equal(t, uint64(2), h.store.FrameCount())
}

func TestCoarseClock_TruncatesToMillisecond(t *testing.T) {
	mock := clock.NewMock()
	mock.Add(1500 * time.Microsecond)
	c := NewCoarseClock(mock)
	assert.Equal(t, mock.Now().Truncate(time.Millisecond), c.Now())

	s := NewStore(WithClock(c), WithScheduler(NewManualScheduler()), WithLogger(utils.NewNopLogger()))
	mock.Add(2700 * time.Microsecond)
	s.Mark("t")
	v, _ := s.MarkTime("t")
	assert.Equal(t, 3.0, v, "coarse marks stay on whole milliseconds")
}
