package telemetry

import (
	"errors"
	"math"
	"time"

	"github.com/nmxmxh/inos_caps/kernel/utils"
	"github.com/sony/gobreaker"
)

// ErrMemoryUnavailable is returned by a MemorySource with no reading
var ErrMemoryUnavailable = errors.New("telemetry: memory usage unavailable")

const (
	memoryFailureThreshold = 3
	memoryRetryTimeout     = 30 * time.Second
)

// MemorySource reports used heap over heap limit, in [0,1]
type MemorySource func() (float64, error)

// MemoryProbe samples a MemorySource behind a circuit breaker so a host
// without the signal is not queried on every frame.
type MemoryProbe struct {
	source  MemorySource
	breaker *gobreaker.CircuitBreaker
}

// NewMemoryProbe wraps src. A nil src yields a probe that never reports.
func NewMemoryProbe(src MemorySource, logger *utils.Logger) *MemoryProbe {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	p := &MemoryProbe{source: src}
	p.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "memory-probe",
		MaxRequests: 1,
		Timeout:     memoryRetryTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= memoryFailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Memory probe breaker state changed",
				utils.String("breaker", name),
				utils.String("from", from.String()),
				utils.String("to", to.String()),
			)
		},
	})
	return p
}

// Sample returns the usage ratio, or false when the source failed or the
// breaker is open
func (p *MemoryProbe) Sample() (float64, bool) {
	if p == nil || p.source == nil {
		return 0, false
	}
	v, err := p.breaker.Execute(func() (interface{}, error) {
		var ratio float64
		err := utils.Guard(func() error {
			var err error
			ratio, err = p.source()
			return err
		})
		if err != nil {
			return nil, err
		}
		if math.IsNaN(ratio) || ratio < 0 {
			return nil, ErrMemoryUnavailable
		}
		return ratio, nil
	})
	if err != nil {
		return 0, false
	}
	return v.(float64), true
}

// State exposes the breaker state
func (p *MemoryProbe) State() gobreaker.State {
	return p.breaker.State()
}
