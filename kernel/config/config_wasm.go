//go:build js && wasm

package config

import "syscall/js"

// hostConfigGlobal is the page-level object a host sets before loading the module
const hostConfigGlobal = "__INOS_CAPS_CONFIG__"

// ApplyHostOverrides copies typed fields from the host config object
// onto cfg. Missing or mistyped fields are ignored.
func ApplyHostOverrides(cfg *Config) {
	raw := js.Global().Get(hostConfigGlobal)
	if raw.IsUndefined() || raw.IsNull() || raw.Type() != js.TypeObject {
		return
	}

	if v := raw.Get("enabled"); v.Type() == js.TypeBoolean {
		cfg.Enabled = v.Bool()
	}
	if v := raw.Get("historyLength"); v.Type() == js.TypeNumber {
		cfg.HistoryLength = v.Int()
	}
	if v := raw.Get("forceRedetect"); v.Type() == js.TypeBoolean {
		cfg.ForceRedetect = v.Bool()
	}
	if v := raw.Get("testPerformance"); v.Type() == js.TypeBoolean {
		cfg.TestPerformance = v.Bool()
	}
	if v := raw.Get("logLevel"); v.Type() == js.TypeString {
		cfg.LogLevel = v.String()
	}
	if v := raw.Get("sampleRate"); v.Type() == js.TypeNumber {
		cfg.SampleRate = v.Int()
	}
}
