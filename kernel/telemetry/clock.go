package telemetry

import (
	"time"

	"github.com/benbjohnson/clock"
)

// Clock is the time source behind marks and frame sampling
type Clock interface {
	Now() time.Time
}

// NewClock returns the host clock. When precise timing is unavailable the
// clock degrades to millisecond resolution.
func NewClock(precise bool) Clock {
	c := clock.New()
	if precise {
		return c
	}
	return NewCoarseClock(c)
}

type coarseClock struct {
	base Clock
}

// NewCoarseClock truncates every reading of base to whole milliseconds
func NewCoarseClock(base Clock) Clock {
	return coarseClock{base: base}
}

func (c coarseClock) Now() time.Time {
	return c.base.Now().Truncate(time.Millisecond)
}

// sinceMs converts an instant into milliseconds relative to origin
func sinceMs(origin, t time.Time) float64 {
	return float64(t.Sub(origin)) / float64(time.Millisecond)
}
