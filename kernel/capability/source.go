package capability

import "errors"

// ErrGraphicsUnavailable is returned by a Source when no graphics context
// (v2 or v1) can be acquired.
var ErrGraphicsUnavailable = errors.New("graphics context unavailable")

// Feature names a probed runtime capability
type Feature string

const (
	FeatureWebGL             Feature = "webgl"
	FeatureWebGL2            Feature = "webgl2"
	FeatureWebGPU            Feature = "webgpu"
	FeatureCanvas2D          Feature = "canvas2d"
	FeatureWebAudio          Feature = "webAudio"
	FeatureWebWorkers        Feature = "webWorkers"
	FeatureLocalStorage      Feature = "localStorage"
	FeatureIndexedDB         Feature = "indexedDB"
	FeatureWebAssembly       Feature = "webAssembly"
	FeatureSharedArrayBuffer Feature = "sharedArrayBuffer"
	FeatureOffscreenCanvas   Feature = "offscreenCanvas"
	FeaturePerformanceAPI    Feature = "performanceAPI"
	FeatureGeolocation       Feature = "geolocation"
	FeatureBluetooth         Feature = "bluetooth"
	FeatureBattery           Feature = "battery"
)

// AllFeatures lists every probed feature in probe order
var AllFeatures = []Feature{
	FeatureWebGL,
	FeatureWebGL2,
	FeatureWebGPU,
	FeatureCanvas2D,
	FeatureWebAudio,
	FeatureWebWorkers,
	FeatureLocalStorage,
	FeatureIndexedDB,
	FeatureWebAssembly,
	FeatureSharedArrayBuffer,
	FeatureOffscreenCanvas,
	FeaturePerformanceAPI,
	FeatureGeolocation,
	FeatureBluetooth,
	FeatureBattery,
}

// Capabilities maps every feature in AllFeatures to its support flag
type Capabilities map[Feature]bool

// Has reports whether f is supported. Unknown features are unsupported.
func (c Capabilities) Has(f Feature) bool {
	return c[f]
}

// Viewport is the visible area in CSS pixels
type Viewport struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// ConnectionSignals are the raw network-information values
type ConnectionSignals struct {
	EffectiveType string  `json:"effectiveType" yaml:"effectiveType"`
	DownlinkMbps  float64 `json:"downlink" yaml:"downlink"`
	SaveData      bool    `json:"saveData" yaml:"saveData"`
}

// Signals are the already-normalized environment facts a Source supplies.
type Signals struct {
	UserAgent      string   `json:"userAgent" yaml:"userAgent"`
	Viewport       Viewport `json:"viewport" yaml:"viewport"`
	PixelRatio     float64  `json:"pixelRatio" yaml:"pixelRatio"`
	TouchEvents    bool     `json:"touchEvents" yaml:"touchEvents"`
	MaxTouchPoints int      `json:"maxTouchPoints" yaml:"maxTouchPoints"`
	PointerCoarse  bool     `json:"pointerCoarse" yaml:"pointerCoarse"`
	PointerFine    bool     `json:"pointerFine" yaml:"pointerFine"`

	PrefersReducedMotion bool    `json:"prefersReducedMotion" yaml:"prefersReducedMotion"`
	PrefersDarkMode      bool    `json:"prefersDarkMode" yaml:"prefersDarkMode"`
	Language             string  `json:"language" yaml:"language"`
	DeviceMemoryGB       float64 `json:"deviceMemory" yaml:"deviceMemory"`

	// Connection is nil when the host exposes no network information.
	Connection *ConnectionSignals `json:"connection,omitempty" yaml:"connection,omitempty"`
}

// GraphicsContext is what a successful graphics acquisition reports
type GraphicsContext struct {
	Vendor     string `json:"vendor" yaml:"vendor"`
	Renderer   string `json:"renderer" yaml:"renderer"`
	Antialias  bool   `json:"antialias" yaml:"antialias"`
	APIVersion int    `json:"apiVersion" yaml:"apiVersion"`
}

// Source supplies raw environment facts to the Detector.
type Source interface {
	// Signals returns the identification strings, viewport and hints.
	Signals() Signals
	// Graphics acquires a graphics context, preferring API v2 over v1.
	Graphics() (GraphicsContext, error)
	// Probe reports whether a feature is supported. Errors and panics
	// are treated as unsupported.
	Probe(f Feature) (bool, error)
}
