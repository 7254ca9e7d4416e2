// Package signals provides the environment signal sources consumed by the
// capability detector and the telemetry store.
package signals

import (
	"github.com/nmxmxh/inos_caps/kernel/capability"
	"github.com/nmxmxh/inos_caps/kernel/telemetry"
)

// Host is a capability source that also feeds telemetry
type Host interface {
	capability.Source

	// PreciseTiming reports whether a sub-millisecond clock is available.
	PreciseTiming() bool
	// MemorySource returns the heap usage reader, or nil when the host
	// has none.
	MemorySource() telemetry.MemorySource
	// Scheduler returns the display-refresh scheduler. hz is only used by
	// hosts without a native refresh primitive.
	Scheduler(hz int) telemetry.Scheduler
}
