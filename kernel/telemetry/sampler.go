package telemetry

import (
	"sync"

	"github.com/nmxmxh/inos_caps/kernel/utils"
)

// SamplerState is the frame sampler lifecycle state
type SamplerState int32

const (
	SamplerIdle SamplerState = iota
	SamplerRunning
)

var samplerStateNames = map[SamplerState]string{
	SamplerIdle:    "IDLE",
	SamplerRunning: "RUNNING",
}

func (s SamplerState) String() string {
	if name, ok := samplerStateNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// Sampler re-arms itself on every refresh callback while running and hands
// the interval since the previous callback to sink. Stop is cooperative: a
// callback already queued observes the idle state and does not re-arm.
type Sampler struct {
	mu         sync.Mutex
	scheduler  Scheduler
	now        func() float64
	sink       func(deltaMs float64)
	logger     *utils.Logger
	state      SamplerState
	generation uint64
	lastSample float64
}

// NewSampler creates an idle sampler. now returns milliseconds on the
// same timeline the sink expects.
func NewSampler(scheduler Scheduler, now func() float64, sink func(deltaMs float64), logger *utils.Logger) *Sampler {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &Sampler{
		scheduler: scheduler,
		now:       now,
		sink:      sink,
		logger:    logger,
	}
}

// Start moves idle to running and requests the first frame. It returns
// false when the sampler was already running.
func (s *Sampler) Start() bool {
	s.mu.Lock()
	if s.state == SamplerRunning {
		s.mu.Unlock()
		return false
	}
	s.state = SamplerRunning
	s.generation++
	gen := s.generation
	s.lastSample = s.now()
	s.mu.Unlock()

	s.logger.Info("Frame sampler started")
	s.arm(gen)
	return true
}

// Stop moves running to idle. The pending callback, if any, still fires
// once and exits without sampling.
func (s *Sampler) Stop() bool {
	s.mu.Lock()
	if s.state != SamplerRunning {
		s.mu.Unlock()
		return false
	}
	s.state = SamplerIdle
	s.mu.Unlock()

	s.logger.Info("Frame sampler stopped")
	return true
}

// State returns the current lifecycle state
func (s *Sampler) State() SamplerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Running reports whether the sampler is re-arming
func (s *Sampler) Running() bool {
	return s.State() == SamplerRunning
}

func (s *Sampler) arm(gen uint64) {
	s.scheduler.RequestFrame(func() { s.tick(gen) })
}

// tick is the single transition function driven by the scheduler. A
// callback from an earlier Start/Stop cycle carries a stale generation and
// is dropped, so a quick Stop then Start never doubles the chain.
func (s *Sampler) tick(gen uint64) {
	s.mu.Lock()
	if s.state != SamplerRunning || gen != s.generation {
		s.mu.Unlock()
		return
	}
	now := s.now()
	delta := now - s.lastSample
	s.lastSample = now
	s.mu.Unlock()

	if delta < 0 {
		delta = 0
	}
	s.sink(delta)

	s.mu.Lock()
	rearm := s.state == SamplerRunning && gen == s.generation
	s.mu.Unlock()
	if rearm {
		s.arm(gen)
	}
}
