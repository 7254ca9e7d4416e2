//go:build !js || !wasm

package signals

import (
	"os"
	"runtime"
	"strings"

	"github.com/nmxmxh/inos_caps/kernel/capability"
	"github.com/nmxmxh/inos_caps/kernel/telemetry"
)

// hostUserAgents gives native processes an identification string the OS
// rules understand. No browser marker is present, so the browser stays
// Unknown.
var hostUserAgents = map[string]string{
	"windows": "inos-probe (Windows NT 10.0; Win64)",
	"darwin":  "inos-probe (Macintosh; Mac OS X)",
	"ios":     "inos-probe (iPhone; like Mac OS X)",
	"android": "inos-probe (Linux; Android; Mobile)",
	"linux":   "inos-probe (X11; Linux)",
}

// HostSource reports the native process environment. There is no
// display, so no graphics context is ever acquired.
type HostSource struct {
	goos    string
	getenv  func(string) string
	signals capability.Signals
}

// NewHostSource inspects the running process
func NewHostSource() *HostSource {
	return newHostSource(runtime.GOOS, os.Getenv)
}

func newHostSource(goos string, getenv func(string) string) *HostSource {
	h := &HostSource{goos: goos, getenv: getenv}
	h.signals = capability.Signals{
		UserAgent:   hostUserAgent(goos),
		PixelRatio:  1,
		PointerFine: true,
		Language:    localeFromEnv(getenv),
	}
	return h
}

func hostUserAgent(goos string) string {
	if ua, ok := hostUserAgents[goos]; ok {
		return ua
	}
	return "inos-probe (" + goos + ")"
}

// localeFromEnv turns LC_ALL/LANG values like en_US.UTF-8 into en-US
func localeFromEnv(getenv func(string) string) string {
	for _, key := range []string{"LC_ALL", "LANG"} {
		v := getenv(key)
		if v == "" || v == "C" || v == "POSIX" {
			continue
		}
		if i := strings.IndexAny(v, ".@"); i >= 0 {
			v = v[:i]
		}
		return strings.ReplaceAll(v, "_", "-")
	}
	return ""
}

func (h *HostSource) Signals() capability.Signals {
	return h.signals
}

func (h *HostSource) Graphics() (capability.GraphicsContext, error) {
	return capability.GraphicsContext{}, capability.ErrGraphicsUnavailable
}

// Probe maps the browser feature set onto what a native process has:
// a monotonic clock and parallel workers
func (h *HostSource) Probe(f capability.Feature) (bool, error) {
	switch f {
	case capability.FeaturePerformanceAPI:
		return true, nil
	case capability.FeatureWebWorkers:
		return runtime.NumCPU() > 1, nil
	default:
		return false, nil
	}
}

func (h *HostSource) PreciseTiming() bool {
	return true
}

// MemorySource reports heap in use over heap obtained from the OS
func (h *HostSource) MemorySource() telemetry.MemorySource {
	return func() (float64, error) {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		if ms.HeapSys == 0 {
			return 0, telemetry.ErrMemoryUnavailable
		}
		return float64(ms.HeapInuse) / float64(ms.HeapSys), nil
	}
}

func (h *HostSource) Scheduler(hz int) telemetry.Scheduler {
	return telemetry.NewTickerScheduler(nil, hz)
}
