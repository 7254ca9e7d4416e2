package signals

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nmxmxh/inos_caps/kernel/capability"
	"github.com/nmxmxh/inos_caps/kernel/telemetry"
	"github.com/nmxmxh/inos_caps/kernel/utils"
	"gopkg.in/yaml.v3"
)

// Fixture is a recorded environment. Features not listed are unsupported;
// features listed in ProbeErrors fail their probe.
type Fixture struct {
	Signals     capability.Signals          `json:"signals" yaml:"signals"`
	Graphics    *capability.GraphicsContext `json:"graphics,omitempty" yaml:"graphics,omitempty"`
	Features    map[capability.Feature]bool `json:"features,omitempty" yaml:"features,omitempty"`
	ProbeErrors []capability.Feature        `json:"probeErrors,omitempty" yaml:"probeErrors,omitempty"`

	// MemoryUsage is the fixed heap usage ratio, nil when unreported.
	MemoryUsage *float64 `json:"memoryUsage,omitempty" yaml:"memoryUsage,omitempty"`
	// Coarse forces the millisecond clock.
	Coarse bool `json:"coarseTiming,omitempty" yaml:"coarseTiming,omitempty"`
}

// StaticSource replays a Fixture
type StaticSource struct {
	fixture Fixture
}

// NewStaticSource creates a source over f
func NewStaticSource(f Fixture) *StaticSource {
	return &StaticSource{fixture: f}
}

// LoadYAML parses a YAML fixture
func LoadYAML(data []byte) (*StaticSource, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, utils.WrapError(err, "failed to parse signal fixture")
	}
	return NewStaticSource(f), nil
}

// LoadJSON parses a JSON fixture
func LoadJSON(data []byte) (*StaticSource, error) {
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, utils.WrapError(err, "failed to parse signal fixture")
	}
	return NewStaticSource(f), nil
}

// LoadFile reads a fixture, choosing the decoder by extension. Anything
// other than .json is read as YAML.
func LoadFile(path string) (*StaticSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, utils.WrapError(err, fmt.Sprintf("failed to read signal fixture %s", path))
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return LoadJSON(data)
	}
	return LoadYAML(data)
}

// Fixture returns the replayed fixture
func (s *StaticSource) Fixture() Fixture {
	return s.fixture
}

func (s *StaticSource) Signals() capability.Signals {
	return s.fixture.Signals
}

func (s *StaticSource) Graphics() (capability.GraphicsContext, error) {
	if s.fixture.Graphics == nil {
		return capability.GraphicsContext{}, capability.ErrGraphicsUnavailable
	}
	return *s.fixture.Graphics, nil
}

func (s *StaticSource) Probe(f capability.Feature) (bool, error) {
	for _, failing := range s.fixture.ProbeErrors {
		if failing == f {
			return false, fmt.Errorf("probe %s failed", f)
		}
	}
	return s.fixture.Features[f], nil
}

func (s *StaticSource) PreciseTiming() bool {
	return !s.fixture.Coarse
}

func (s *StaticSource) MemorySource() telemetry.MemorySource {
	if s.fixture.MemoryUsage == nil {
		return nil
	}
	ratio := *s.fixture.MemoryUsage
	return func() (float64, error) { return ratio, nil }
}

func (s *StaticSource) Scheduler(hz int) telemetry.Scheduler {
	return telemetry.NewTickerScheduler(nil, hz)
}
