package telemetry

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type samplerHarness struct {
	sched  *ManualScheduler
	now    float64
	deltas []float64
	s      *Sampler
}

func newSamplerHarness() *samplerHarness {
	h := &samplerHarness{sched: NewManualScheduler()}
	h.s = NewSampler(h.sched,
		func() float64 { return h.now },
		func(d float64) { h.deltas = append(h.deltas, d) },
		nil,
	)
	return h
}

func TestSampler_TickFeedsDeltas(t *testing.T) {
	h := newSamplerHarness()
	h.now = 100

	require.True(t, h.s.Start())
	assert.Equal(t, SamplerRunning, h.s.State())
	assert.Equal(t, 1, h.sched.Pending())

	h.now = 116
	h.sched.Step()
	h.now = 133
	h.sched.Step()

	assert.Equal(t, []float64{16, 17}, h.deltas)
	assert.Equal(t, 1, h.sched.Pending(), "sampler re-arms after each tick")
}

func TestSampler_StopIsCooperative(t *testing.T) {
	h := newSamplerHarness()
	h.s.Start()
	h.now = 16
	h.sched.Step()

	require.True(t, h.s.Stop())
	assert.Equal(t, SamplerIdle, h.s.State())
	assert.Equal(t, 1, h.sched.Pending(), "queued callback is not cancelled")

	h.now = 32
	assert.Equal(t, 1, h.sched.Step())
	assert.Len(t, h.deltas, 1, "stopped sampler does not sample")
	assert.Zero(t, h.sched.Pending(), "stopped sampler does not re-arm")
}

func TestSampler_RestartDoesNotDoubleChain(t *testing.T) {
	h := newSamplerHarness()
	h.s.Start()
	h.s.Stop()
	h.s.Start()
	assert.Equal(t, 2, h.sched.Pending())

	h.now = 16
	h.sched.Step()
	assert.Len(t, h.deltas, 1, "stale callback from the first run is dropped")
	assert.Equal(t, 1, h.sched.Pending())
}

func TestSampler_StartStopIdempotent(t *testing.T) {
	h := newSamplerHarness()
	assert.False(t, h.s.Stop())
	assert.True(t, h.s.Start())
	assert.False(t, h.s.Start())
	assert.Equal(t, 1, h.sched.Pending())
	assert.True(t, h.s.Stop())
	assert.False(t, h.s.Running())
}

func TestSampler_NegativeDeltaClamped(t *testing.T) {
	h := newSamplerHarness()
	h.now = 50
	h.s.Start()
	h.now = 40
	h.sched.Step()
	assert.Equal(t, []float64{0}, h.deltas)
}

func TestSamplerState_String(t *testing.T) {
	assert.Equal(t, "IDLE", SamplerIdle.String())
	assert.Equal(t, "RUNNING", SamplerRunning.String())
	assert.Equal(t, "UNKNOWN", SamplerState(9).String())
}

func TestTickerScheduler_FiresOnClock(t *testing.T) {
	mock := clock.NewMock()
	sched := NewTickerScheduler(mock, 50)
	assert.Equal(t, 20*time.Millisecond, sched.Interval())

	var fired atomic.Int32
	sched.RequestFrame(func() { fired.Add(1) })

	mock.Add(10 * time.Millisecond)
	assert.Zero(t, fired.Load())

	mock.Add(10 * time.Millisecond)
	assert.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, time.Millisecond)
}

func TestTickerScheduler_DefaultRate(t *testing.T) {
	sched := NewTickerScheduler(clock.NewMock(), 0)
	assert.Equal(t, time.Second/DefaultSampleRate, sched.Interval())
}
