package capability

import (
	"fmt"
	"math"
	"strings"
)

const unknownVersion = "Unknown"

// ClassifyBrowser identifies the browser family, engine and version.
func ClassifyBrowser(userAgent string) BrowserInfo {
	lower := strings.ToLower(userAgent)
	for _, rule := range browserRules {
		if !rule.match(lower) {
			continue
		}
		version := unknownVersion
		if m := rule.version.FindStringSubmatch(userAgent); len(m) > 1 {
			version = m[1]
		}
		return BrowserInfo{
			Name:      rule.name,
			Version:   version,
			Engine:    rule.engine,
			Supported: rule.name != BrowserInternetExplorer,
		}
	}
	return BrowserInfo{
		Name:      BrowserUnknown,
		Version:   unknownVersion,
		Engine:    EngineUnknown,
		Supported: true,
	}
}

// ClassifyDevice derives device class, orientation and input type.
func ClassifyDevice(s Signals) DeviceInfo {
	info := DeviceInfo{
		Type:         DeviceDesktop,
		Orientation:  OrientationPortrait,
		PixelRatio:   s.PixelRatio,
		TouchCapable: s.TouchEvents || s.MaxTouchPoints > 0,
		PointerType:  PointerMixed,
	}
	if info.PixelRatio <= 0 {
		info.PixelRatio = 1
	}

	switch {
	case s.PointerCoarse:
		info.PointerType = PointerTouch
	case s.PointerFine:
		info.PointerType = PointerMouse
	}

	lower := strings.ToLower(s.UserAgent)
	for _, rule := range deviceRules {
		if rule.match(lower) {
			info.Type = rule.device
			break
		}
	}

	if s.Viewport.Width > s.Viewport.Height {
		info.Orientation = OrientationLandscape
	}
	return info
}

// ClassifyScreenSize buckets a viewport area into a size tier.
func ClassifyScreenSize(width, height int) ScreenSize {
	area := width * height
	switch {
	case area < smallScreenMaxArea:
		return ScreenSmall
	case area < mediumScreenMaxArea:
		return ScreenMedium
	default:
		return ScreenLarge
	}
}

// ClassifyScreen builds the screen sub-profile from a viewport.
func ClassifyScreen(v Viewport) ScreenInfo {
	info := ScreenInfo{
		Width:  v.Width,
		Height: v.Height,
		Size:   ClassifyScreenSize(v.Width, v.Height),
	}
	if v.Height > 0 {
		info.AspectRatio = math.Round(float64(v.Width)/float64(v.Height)*100) / 100
	}
	return info
}

// ClassifyOS identifies the operating system and its version.
func ClassifyOS(userAgent string) (OS, string) {
	lower := strings.ToLower(userAgent)
	for _, rule := range osRules {
		if !rule.match(lower) {
			continue
		}
		version := unknownVersion
		if rule.version != nil {
			if m := rule.version.FindStringSubmatch(userAgent); len(m) > 1 {
				version = normalizeVersion(m[1])
			}
		}
		return rule.os, version
	}
	return OSUnknown, unknownVersion
}

// normalizeVersion turns "10_15_7" into "10.15.7" and drops one trailing ".0".
func normalizeVersion(v string) string {
	v = strings.ReplaceAll(v, "_", ".")
	return strings.TrimSuffix(v, ".0")
}

// ClassifySystem builds the system sub-profile.
func ClassifySystem(s Signals) SystemInfo {
	os, version := ClassifyOS(s.UserAgent)
	info := SystemInfo{
		OS:                   os,
		OSVersion:            version,
		RAMHint:              "unknown",
		Locale:               s.Language,
		PrefersReducedMotion: s.PrefersReducedMotion,
		PrefersDarkMode:      s.PrefersDarkMode,
	}
	if s.DeviceMemoryGB > 0 {
		info.RAMHint = fmt.Sprintf("%gGB", s.DeviceMemoryGB)
	}
	if info.Locale == "" {
		info.Locale = "unknown"
	}
	return info
}

// ClassifyGPUTier maps vendor and renderer strings onto the family table.
// The renderer is consulted first; the vendor only when no family matches
// the renderer.
func ClassifyGPUTier(vendor, renderer string) GPUTier {
	for _, text := range []string{renderer, vendor} {
		lower := strings.ToLower(text)
		if lower == "" {
			continue
		}
		for _, family := range gpuFamilies {
			if !family.match(lower) {
				continue
			}
			for _, ex := range family.exceptions {
				if ex.match(lower) {
					return ex.tier
				}
			}
			return family.base
		}
	}
	return defaultGPUTier
}

// ClassifyGPU builds the GPU sub-profile from an acquisition result.
// A failed acquisition yields the pessimistic low tier and nothing else.
func ClassifyGPU(ctx GraphicsContext, err error) GPUInfo {
	if err != nil {
		return GPUInfo{Tier: GPULow}
	}
	api := 1
	if ctx.APIVersion >= 2 {
		api = 2
	}
	return GPUInfo{
		Vendor:       ctx.Vendor,
		Renderer:     ctx.Renderer,
		Tier:         ClassifyGPUTier(ctx.Vendor, ctx.Renderer),
		Antialiasing: ctx.Antialias,
		APIVersion:   api,
	}
}

// ClassifyConnection normalizes network information; nil means absent.
func ClassifyConnection(c *ConnectionSignals) ConnectionInfo {
	info := ConnectionInfo{Type: "unknown"}
	if c == nil {
		return info
	}
	if c.EffectiveType != "" {
		info.Type = c.EffectiveType
	}
	if c.DownlinkMbps > 0 {
		info.DownlinkMbps = c.DownlinkMbps
	}
	info.SaveData = c.SaveData
	return info
}
