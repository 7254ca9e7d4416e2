package capability

import (
	"regexp"
	"strings"
)

// matcher tests a lower-cased identification string
type matcher func(s string) bool

func containsAny(markers ...string) matcher {
	for i, m := range markers {
		markers[i] = strings.ToLower(m)
	}
	return func(s string) bool {
		for _, m := range markers {
			if strings.Contains(s, m) {
				return true
			}
		}
		return false
	}
}

func matchesPattern(pattern string) matcher {
	re := regexp.MustCompile(pattern)
	return re.MatchString
}

func anyOf(ms ...matcher) matcher {
	return func(s string) bool {
		for _, m := range ms {
			if m(s) {
				return true
			}
		}
		return false
	}
}

func allOf(ms ...matcher) matcher {
	return func(s string) bool {
		for _, m := range ms {
			if !m(s) {
				return false
			}
		}
		return true
	}
}

func not(m matcher) matcher {
	return func(s string) bool { return !m(s) }
}

// browserRule maps an engine marker to a browser family.
// Version patterns run against the original (not lower-cased) string.
type browserRule struct {
	name    BrowserName
	engine  Engine
	match   matcher
	version *regexp.Regexp
}

// browserRules is evaluated in order, first match wins. Edge must precede
// Chrome and Safari because its identifier carries both of their markers,
// and Chrome must precede Safari for the same reason.
var browserRules = []browserRule{
	{
		name:    BrowserEdge,
		engine:  EngineBlink,
		match:   containsAny("Edg/", "Edge/", "EdgA/", "EdgiOS/"),
		version: regexp.MustCompile(`Edg(?:e|A|iOS)?/(\d+(?:\.\d+)?)`),
	},
	{
		name:    BrowserChrome,
		engine:  EngineBlink,
		match:   containsAny("Chrome/", "CriOS/"),
		version: regexp.MustCompile(`(?:Chrome|CriOS)/(\d+(?:\.\d+)?)`),
	},
	{
		name:    BrowserFirefox,
		engine:  EngineGecko,
		match:   containsAny("Firefox/", "FxiOS/"),
		version: regexp.MustCompile(`(?:Firefox|FxiOS)/(\d+(?:\.\d+)?)`),
	},
	{
		name:    BrowserSafari,
		engine:  EngineWebKit,
		match:   containsAny("Safari/"),
		version: regexp.MustCompile(`Version/(\d+(?:\.\d+)?)`),
	},
	{
		name:    BrowserInternetExplorer,
		engine:  EngineTrident,
		match:   containsAny("MSIE ", "Trident/"),
		version: regexp.MustCompile(`(?:MSIE |rv:)(\d+(?:\.\d+)?)`),
	},
}

// osRule maps an identification marker to an OS family
type osRule struct {
	os      OS
	match   matcher
	version *regexp.Regexp
}

var iosMarkers = containsAny("iPhone", "iPad", "iPod")

// osRules is evaluated in order, first match wins. Android precedes Linux
// because Android identifiers carry the Linux marker.
var osRules = []osRule{
	{
		os:      OSWindows,
		match:   containsAny("Windows"),
		version: regexp.MustCompile(`Windows NT (\d+(?:\.\d+)*)`),
	},
	{
		os:      OSMacOS,
		match:   allOf(containsAny("Macintosh", "Mac OS X"), not(iosMarkers)),
		version: regexp.MustCompile(`Mac OS X (\d+(?:[._]\d+)*)`),
	},
	{
		os:      OSIOS,
		match:   iosMarkers,
		version: regexp.MustCompile(`OS (\d+(?:_\d+)*) like Mac OS X`),
	},
	{
		os:      OSAndroid,
		match:   containsAny("Android"),
		version: regexp.MustCompile(`Android (\d+(?:\.\d+)*)`),
	},
	{
		os:    OSLinux,
		match: containsAny("Linux"),
	},
}

// deviceRule maps a device signature to a device class
type deviceRule struct {
	device DeviceType
	match  matcher
}

// deviceRules is evaluated in order. The tablet signature is checked first
// so Android tablets (no "Mobile" marker) never fall through to mobile.
var deviceRules = []deviceRule{
	{
		device: DeviceTablet,
		match: anyOf(
			containsAny("iPad", "Tablet", "PlayBook", "Silk/"),
			allOf(containsAny("Android"), not(containsAny("Mobile"))),
		),
	},
	{
		device: DeviceMobile,
		match:  containsAny("Mobi", "Android", "iPhone", "iPod", "BlackBerry", "IEMobile", "Opera Mini"),
	},
}

// Screen area thresholds in square CSS pixels
const (
	smallScreenMaxArea  = 500_000
	mediumScreenMaxArea = 1_200_000
)

// gpuException overrides a family's base tier
type gpuException struct {
	match matcher
	tier  GPUTier
}

// gpuFamily is one row of the vendor classification table
type gpuFamily struct {
	name       string
	match      matcher
	base       GPUTier
	exceptions []gpuException
}

// gpuFamilies is evaluated in order against the lower-cased renderer, then
// the vendor. The first matching family decides the base tier and the first
// matching exception within it overrides that tier.
var gpuFamilies = []gpuFamily{
	{
		name:  "intel",
		match: containsAny("intel"),
		base:  GPULow,
		exceptions: []gpuException{
			{match: containsAny("iris", "arc", "xe"), tier: GPUMid},
		},
	},
	{
		name:  "nvidia",
		match: containsAny("nvidia", "geforce"),
		base:  GPUHigh,
		exceptions: []gpuException{
			{match: anyOf(matchesPattern(`gt ?\d{3}`), containsAny("mx")), tier: GPUMid},
		},
	},
	{
		name:  "amd",
		match: containsAny("amd", "radeon"),
		base:  GPUHigh,
		exceptions: []gpuException{
			{match: containsAny("vega 3", "vega 6", "vega 8", "radeon graphics", "radeon(tm) graphics", "radeon r5", "radeon r7"), tier: GPUMid},
		},
	},
	{
		name:  "apple",
		match: containsAny("apple"),
		base:  GPUHigh,
		exceptions: []gpuException{
			{match: containsAny("apple gpu"), tier: GPUMid},
		},
	},
	{
		name:  "adreno",
		match: containsAny("adreno"),
		base:  GPUMid,
		exceptions: []gpuException{
			{match: matchesPattern(`adreno\D*[3-5]\d{2}`), tier: GPULow},
			{match: matchesPattern(`adreno\D*7\d{2}`), tier: GPUHigh},
		},
	},
	{
		name:  "mali",
		match: containsAny("mali"),
		base:  GPULow,
		exceptions: []gpuException{
			{match: matchesPattern(`mali-g(7|9)\d`), tier: GPUMid},
		},
	},
	{
		name:  "powervr",
		match: containsAny("powervr"),
		base:  GPULow,
	},
}

// defaultGPUTier applies when a context exists but no family matched
const defaultGPUTier = GPUMid
