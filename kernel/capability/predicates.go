package capability

import "strings"

// slowDownlinkMbps is the bandwidth below which a link counts as slow
const slowDownlinkMbps = 0.5

// IsMobile reports a phone-class device
func (p *Profile) IsMobile() bool {
	return p.Device.Type == DeviceMobile
}

// IsTablet reports a tablet-class device
func (p *Profile) IsTablet() bool {
	return p.Device.Type == DeviceTablet
}

// IsTouch reports touch input support
func (p *Profile) IsTouch() bool {
	return p.Device.TouchCapable
}

// HasAdequateGraphics reports whether the graphics API level matches the
// GPU tier: a v1 context suffices for low-tier devices, mid and high tiers
// need v2.
func (p *Profile) HasAdequateGraphics() bool {
	if !p.Capabilities.Has(FeatureWebGL) {
		return false
	}
	if p.GPU.Tier == GPULow {
		return true
	}
	return p.Capabilities.Has(FeatureWebGL2)
}

// RecommendedQuality combines the GPU tier and the benchmark category
func (p *Profile) RecommendedQuality() Quality {
	if p.GPU.Tier == GPULow || p.Performance.Category == PerformanceLow {
		return QualityLow
	}
	if p.GPU.Tier == GPUHigh {
		return QualityHigh
	}
	return QualityMedium
}

// IsSlowConnection reports a 2g-class link or a known downlink under 0.5 Mbps.
// An unreported downlink (zero) does not count as slow.
func (p *Profile) IsSlowConnection() bool {
	switch strings.ToLower(p.Connection.Type) {
	case "2g", "slow-2g":
		return true
	}
	return p.Connection.DownlinkMbps > 0 && p.Connection.DownlinkMbps < slowDownlinkMbps
}

// IsPowerSavingMode reports whether the user or device is likely
// conserving power
func (p *Profile) IsPowerSavingMode() bool {
	if p.Connection.SaveData || p.System.PrefersReducedMotion {
		return true
	}
	return p.IsMobile() && p.Performance.Category == PerformanceLow
}
