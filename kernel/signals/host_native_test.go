//go:build !js || !wasm

package signals

import (
	"testing"

	"github.com/nmxmxh/inos_caps/kernel/capability"
	"github.com/nmxmxh/inos_caps/kernel/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestHostSource_OSFromGOOS(t *testing.T) {
	cases := map[string]capability.OS{
		"windows": capability.OSWindows,
		"darwin":  capability.OSMacOS,
		"linux":   capability.OSLinux,
		"android": capability.OSAndroid,
		"ios":     capability.OSIOS,
		"plan9":   capability.OSUnknown,
	}
	for goos, want := range cases {
		h := newHostSource(goos, envMap(nil))
		got := capability.ClassifySystem(h.Signals()).OS
		assert.Equal(t, want, got, goos)
		assert.Equal(t, capability.BrowserUnknown, capability.ClassifyBrowser(h.Signals().UserAgent).Name)
	}
}

func TestLocaleFromEnv(t *testing.T) {
	assert.Equal(t, "en-US", localeFromEnv(envMap(map[string]string{"LANG": "en_US.UTF-8"})))
	assert.Equal(t, "de-DE", localeFromEnv(envMap(map[string]string{"LC_ALL": "de_DE@euro", "LANG": "en_US.UTF-8"})))
	assert.Equal(t, "fr-FR", localeFromEnv(envMap(map[string]string{"LC_ALL": "C", "LANG": "fr_FR"})))
	assert.Equal(t, "", localeFromEnv(envMap(nil)))
}

func TestHostSource_Profile(t *testing.T) {
	h := newHostSource("linux", envMap(map[string]string{"LANG": "en_GB.UTF-8"}))
	d := capability.NewDetector(h, capability.WithLogger(utils.NewNopLogger()))
	p := d.Detect(capability.DetectOptions{})

	assert.Equal(t, capability.DeviceDesktop, p.Device.Type)
	assert.Equal(t, capability.PointerMouse, p.Device.PointerType)
	assert.Equal(t, capability.GPULow, p.GPU.Tier, "no display means no graphics context")
	assert.Equal(t, "en-GB", p.System.Locale)
	assert.True(t, p.Capabilities.Has(capability.FeaturePerformanceAPI))
	assert.False(t, p.Capabilities.Has(capability.FeatureWebGL))
}

func TestHostSource_MemoryAndScheduler(t *testing.T) {
	h := NewHostSource()
	mem := h.MemorySource()
	require.NotNil(t, mem)
	ratio, err := mem()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, ratio, 0.0)
	assert.LessOrEqual(t, ratio, 1.0)

	assert.True(t, h.PreciseTiming())
	assert.NotNil(t, h.Scheduler(60))

	var _ Host = Default()
}
