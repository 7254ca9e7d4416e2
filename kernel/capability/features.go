package capability

import "github.com/nmxmxh/inos_caps/kernel/utils"

// ProbeResult is the outcome of a single feature probe
type ProbeResult int

const (
	ProbeUnsupported ProbeResult = iota
	ProbeSupported
	// ProbeIndeterminate means the probe failed; it counts as unsupported.
	ProbeIndeterminate
)

func (r ProbeResult) String() string {
	switch r {
	case ProbeSupported:
		return "supported"
	case ProbeUnsupported:
		return "unsupported"
	default:
		return "indeterminate"
	}
}

// Supported collapses the tri-state into a flag
func (r ProbeResult) Supported() bool {
	return r == ProbeSupported
}

// RunProbe asks the source about one feature. Errors and panics raised by
// the source resolve to ProbeIndeterminate.
func RunProbe(src Source, f Feature, logger *utils.Logger) ProbeResult {
	var supported bool
	err := utils.Guard(func() error {
		var err error
		supported, err = src.Probe(f)
		return err
	})
	if err != nil {
		if logger != nil {
			logger.Debug("Feature probe failed", utils.String("feature", string(f)), utils.Err(err))
		}
		return ProbeIndeterminate
	}
	if supported {
		return ProbeSupported
	}
	return ProbeUnsupported
}

// ProbeAll runs every probe in AllFeatures independently.
func ProbeAll(src Source, logger *utils.Logger) Capabilities {
	caps := make(Capabilities, len(AllFeatures))
	for _, f := range AllFeatures {
		caps[f] = RunProbe(src, f, logger).Supported()
	}
	return caps
}
