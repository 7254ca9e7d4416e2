package capability

import "time"

// BrowserName identifies the browser family
type BrowserName string

const (
	BrowserEdge             BrowserName = "Edge"
	BrowserChrome           BrowserName = "Chrome"
	BrowserFirefox          BrowserName = "Firefox"
	BrowserSafari           BrowserName = "Safari"
	BrowserInternetExplorer BrowserName = "Internet Explorer"
	BrowserUnknown          BrowserName = "Unknown"
)

// Engine identifies the rendering engine
type Engine string

const (
	EngineBlink   Engine = "Blink"
	EngineGecko   Engine = "Gecko"
	EngineWebKit  Engine = "WebKit"
	EngineTrident Engine = "Trident"
	EngineUnknown Engine = "Unknown"
)

// DeviceType is the coarse device class
type DeviceType string

const (
	DeviceDesktop DeviceType = "desktop"
	DeviceTablet  DeviceType = "tablet"
	DeviceMobile  DeviceType = "mobile"
)

// Orientation of the viewport
type Orientation string

const (
	OrientationLandscape Orientation = "landscape"
	OrientationPortrait  Orientation = "portrait"
)

// PointerType is the primary input precision
type PointerType string

const (
	PointerMouse PointerType = "mouse"
	PointerTouch PointerType = "touch"
	PointerMixed PointerType = "mixed"
)

// OS identifies the operating system family
type OS string

const (
	OSWindows OS = "Windows"
	OSMacOS   OS = "macOS"
	OSIOS     OS = "iOS"
	OSAndroid OS = "Android"
	OSLinux   OS = "Linux"
	OSUnknown OS = "Unknown"
)

// ScreenSize is the viewport area tier
type ScreenSize int

const (
	ScreenSmall ScreenSize = iota
	ScreenMedium
	ScreenLarge
)

func (s ScreenSize) String() string {
	switch s {
	case ScreenSmall:
		return "small"
	case ScreenMedium:
		return "medium"
	case ScreenLarge:
		return "large"
	default:
		return "unknown"
	}
}

func (s ScreenSize) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// GPUTier is the coarse graphics capability tier
type GPUTier int

const (
	GPULow GPUTier = iota
	GPUMid
	GPUHigh
)

func (t GPUTier) String() string {
	switch t {
	case GPULow:
		return "low"
	case GPUMid:
		return "mid"
	case GPUHigh:
		return "high"
	default:
		return "unknown"
	}
}

func (t GPUTier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// PerformanceCategory is the CPU micro-benchmark tier
type PerformanceCategory int

const (
	PerformanceLow PerformanceCategory = iota
	PerformanceMedium
	PerformanceHigh
)

func (c PerformanceCategory) String() string {
	switch c {
	case PerformanceLow:
		return "low"
	case PerformanceMedium:
		return "medium"
	case PerformanceHigh:
		return "high"
	default:
		return "unknown"
	}
}

func (c PerformanceCategory) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Quality is a rendering quality recommendation
type Quality int

const (
	QualityLow Quality = iota
	QualityMedium
	QualityHigh
)

func (q Quality) String() string {
	switch q {
	case QualityLow:
		return "low"
	case QualityMedium:
		return "medium"
	case QualityHigh:
		return "high"
	default:
		return "unknown"
	}
}

func (q Quality) MarshalText() ([]byte, error) {
	return []byte(q.String()), nil
}

// Lower returns the next lower quality, saturating at QualityLow
func (q Quality) Lower() Quality {
	if q <= QualityLow {
		return QualityLow
	}
	return q - 1
}

// BrowserInfo describes the identified browser
type BrowserInfo struct {
	Name      BrowserName `json:"name" yaml:"name"`
	Version   string      `json:"version" yaml:"version"`
	Engine    Engine      `json:"engine" yaml:"engine"`
	Supported bool        `json:"supported" yaml:"supported"`
}

// DeviceInfo describes the device class and input
type DeviceInfo struct {
	Type         DeviceType  `json:"type" yaml:"type"`
	Orientation  Orientation `json:"orientation" yaml:"orientation"`
	PixelRatio   float64     `json:"pixelRatio" yaml:"pixelRatio"`
	TouchCapable bool        `json:"touchCapable" yaml:"touchCapable"`
	PointerType  PointerType `json:"pointerType" yaml:"pointerType"`
}

// ScreenInfo describes the viewport
type ScreenInfo struct {
	Width       int        `json:"width" yaml:"width"`
	Height      int        `json:"height" yaml:"height"`
	Size        ScreenSize `json:"size" yaml:"size"`
	AspectRatio float64    `json:"aspectRatio" yaml:"aspectRatio"`
}

// SystemInfo describes the OS and user preferences
type SystemInfo struct {
	OS                   OS     `json:"os" yaml:"os"`
	OSVersion            string `json:"osVersion" yaml:"osVersion"`
	RAMHint              string `json:"ramHint" yaml:"ramHint"`
	Locale               string `json:"locale" yaml:"locale"`
	PrefersReducedMotion bool   `json:"prefersReducedMotion" yaml:"prefersReducedMotion"`
	PrefersDarkMode      bool   `json:"prefersDarkMode" yaml:"prefersDarkMode"`
}

// GPUInfo describes the graphics context. Vendor and renderer stay empty
// when no context could be acquired.
type GPUInfo struct {
	Vendor       string  `json:"vendor" yaml:"vendor"`
	Renderer     string  `json:"renderer" yaml:"renderer"`
	Tier         GPUTier `json:"tier" yaml:"tier"`
	Antialiasing bool    `json:"antialiasing" yaml:"antialiasing"`
	APIVersion   int     `json:"apiVersion" yaml:"apiVersion"`
}

// ConnectionInfo describes the network link
type ConnectionInfo struct {
	Type         string  `json:"type" yaml:"type"`
	DownlinkMbps float64 `json:"downlinkMbps" yaml:"downlinkMbps"`
	SaveData     bool    `json:"saveData" yaml:"saveData"`
}

// PerformanceInfo carries the micro-benchmark result
type PerformanceInfo struct {
	Category    PerformanceCategory `json:"category" yaml:"category"`
	BenchmarkMs float64             `json:"benchmarkMs" yaml:"benchmarkMs"`
}

// Profile is the full capability classification of the runtime
type Profile struct {
	Browser      BrowserInfo     `json:"browser" yaml:"browser"`
	Device       DeviceInfo      `json:"device" yaml:"device"`
	Screen       ScreenInfo      `json:"screen" yaml:"screen"`
	System       SystemInfo      `json:"system" yaml:"system"`
	GPU          GPUInfo         `json:"gpu" yaml:"gpu"`
	Capabilities Capabilities    `json:"capabilities" yaml:"capabilities"`
	Connection   ConnectionInfo  `json:"connection" yaml:"connection"`
	Performance  PerformanceInfo `json:"performance" yaml:"performance"`
	DetectedAt   time.Time       `json:"detectedAt" yaml:"detectedAt"`
}
