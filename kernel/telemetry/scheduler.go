package telemetry

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// DefaultSampleRate is the refresh cadence used when the host has no
// display-refresh primitive
const DefaultSampleRate = 60

// Scheduler runs a callback once, at the next display refresh
type Scheduler interface {
	RequestFrame(fn func())
}

// TickerScheduler approximates display refresh with a timer at a fixed rate
type TickerScheduler struct {
	clock    clock.Clock
	interval time.Duration
}

// NewTickerScheduler creates a scheduler firing hz times per second on c.
// A nil clock uses the host clock.
func NewTickerScheduler(c clock.Clock, hz int) *TickerScheduler {
	if c == nil {
		c = clock.New()
	}
	if hz <= 0 {
		hz = DefaultSampleRate
	}
	return &TickerScheduler{
		clock:    c,
		interval: time.Second / time.Duration(hz),
	}
}

func (s *TickerScheduler) RequestFrame(fn func()) {
	s.clock.AfterFunc(s.interval, fn)
}

// Interval is the time between frames
func (s *TickerScheduler) Interval() time.Duration {
	return s.interval
}

// ManualScheduler queues callbacks until Step is called
type ManualScheduler struct {
	mu      sync.Mutex
	pending []func()
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (m *ManualScheduler) RequestFrame(fn func()) {
	m.mu.Lock()
	m.pending = append(m.pending, fn)
	m.mu.Unlock()
}

// Step runs every callback queued before the call and returns how many ran.
// Callbacks requested while stepping wait for the next Step.
func (m *ManualScheduler) Step() int {
	m.mu.Lock()
	batch := m.pending
	m.pending = nil
	m.mu.Unlock()

	for _, fn := range batch {
		fn()
	}
	return len(batch)
}

// Pending reports queued callbacks
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}
