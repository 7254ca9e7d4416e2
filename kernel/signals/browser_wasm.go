//go:build js && wasm

package signals

import (
	"syscall/js"

	"github.com/nmxmxh/inos_caps/kernel/capability"
	"github.com/nmxmxh/inos_caps/kernel/telemetry"
	"github.com/nmxmxh/inos_caps/kernel/utils"
)

// BrowserSource reads signals from the page through syscall/js. JS
// exceptions surface as Go panics; the detector recovers them.
type BrowserSource struct {
	global    js.Value
	navigator js.Value
	document  js.Value
}

func NewBrowserSource() *BrowserSource {
	global := js.Global()
	return &BrowserSource{
		global:    global,
		navigator: global.Get("navigator"),
		document:  global.Get("document"),
	}
}

func (b *BrowserSource) Signals() capability.Signals {
	s := capability.Signals{
		Viewport: capability.Viewport{
			Width:  jsInt(b.global.Get("innerWidth")),
			Height: jsInt(b.global.Get("innerHeight")),
		},
		PixelRatio:           jsFloat(b.global.Get("devicePixelRatio")),
		TouchEvents:          b.hasProperty(b.global, "ontouchstart"),
		PointerCoarse:        b.matchMedia("(pointer: coarse)"),
		PointerFine:          b.matchMedia("(pointer: fine)"),
		PrefersReducedMotion: b.matchMedia("(prefers-reduced-motion: reduce)"),
		PrefersDarkMode:      b.matchMedia("(prefers-color-scheme: dark)"),
	}

	if b.navigator.Truthy() {
		s.UserAgent = jsString(b.navigator.Get("userAgent"))
		s.MaxTouchPoints = jsInt(b.navigator.Get("maxTouchPoints"))
		s.Language = jsString(b.navigator.Get("language"))
		s.DeviceMemoryGB = jsFloat(b.navigator.Get("deviceMemory"))

		if conn := b.navigator.Get("connection"); conn.Type() == js.TypeObject {
			s.Connection = &capability.ConnectionSignals{
				EffectiveType: jsString(conn.Get("effectiveType")),
				DownlinkMbps:  jsFloat(conn.Get("downlink")),
				SaveData:      jsBool(conn.Get("saveData")),
			}
		}
	}
	return s
}

// Graphics prefers a webgl2 context and falls back to webgl
func (b *BrowserSource) Graphics() (capability.GraphicsContext, error) {
	canvas := b.newCanvas()
	if !canvas.Truthy() {
		return capability.GraphicsContext{}, capability.ErrGraphicsUnavailable
	}

	version := 2
	gl := canvas.Call("getContext", "webgl2")
	if !gl.Truthy() {
		version = 1
		gl = canvas.Call("getContext", "webgl")
		if !gl.Truthy() {
			gl = canvas.Call("getContext", "experimental-webgl")
		}
	}
	if !gl.Truthy() {
		return capability.GraphicsContext{}, capability.ErrGraphicsUnavailable
	}

	ctx := capability.GraphicsContext{APIVersion: version}
	if ext := gl.Call("getExtension", "WEBGL_debug_renderer_info"); ext.Truthy() {
		ctx.Vendor = jsString(gl.Call("getParameter", ext.Get("UNMASKED_VENDOR_WEBGL")))
		ctx.Renderer = jsString(gl.Call("getParameter", ext.Get("UNMASKED_RENDERER_WEBGL")))
	} else {
		ctx.Vendor = jsString(gl.Call("getParameter", gl.Get("VENDOR")))
		ctx.Renderer = jsString(gl.Call("getParameter", gl.Get("RENDERER")))
	}
	if attrs := gl.Call("getContextAttributes"); attrs.Truthy() {
		ctx.Antialias = jsBool(attrs.Get("antialias"))
	}
	return ctx, nil
}

func (b *BrowserSource) Probe(f capability.Feature) (bool, error) {
	switch f {
	case capability.FeatureWebGL:
		return b.canvasContext("webgl") || b.canvasContext("experimental-webgl"), nil
	case capability.FeatureWebGL2:
		return b.canvasContext("webgl2"), nil
	case capability.FeatureCanvas2D:
		return b.canvasContext("2d"), nil
	case capability.FeatureWebGPU:
		return b.navigator.Truthy() && b.navigator.Get("gpu").Truthy(), nil
	case capability.FeatureWebAudio:
		return b.global.Get("AudioContext").Truthy() || b.global.Get("webkitAudioContext").Truthy(), nil
	case capability.FeatureWebWorkers:
		return b.global.Get("Worker").Truthy(), nil
	case capability.FeatureLocalStorage:
		return b.probeLocalStorage(), nil
	case capability.FeatureIndexedDB:
		return b.global.Get("indexedDB").Truthy(), nil
	case capability.FeatureWebAssembly:
		wasm := b.global.Get("WebAssembly")
		return wasm.Truthy() && wasm.Get("validate").Type() == js.TypeFunction, nil
	case capability.FeatureSharedArrayBuffer:
		return b.global.Get("SharedArrayBuffer").Truthy(), nil
	case capability.FeatureOffscreenCanvas:
		return b.global.Get("OffscreenCanvas").Truthy(), nil
	case capability.FeaturePerformanceAPI:
		return b.PreciseTiming(), nil
	case capability.FeatureGeolocation:
		return b.navigator.Truthy() && b.navigator.Get("geolocation").Truthy(), nil
	case capability.FeatureBluetooth:
		return b.navigator.Truthy() && b.navigator.Get("bluetooth").Truthy(), nil
	case capability.FeatureBattery:
		return b.navigator.Truthy() && b.navigator.Get("getBattery").Type() == js.TypeFunction, nil
	default:
		return false, nil
	}
}

func (b *BrowserSource) PreciseTiming() bool {
	perf := b.global.Get("performance")
	return perf.Truthy() && perf.Get("now").Type() == js.TypeFunction
}

// MemorySource reads performance.memory, which only Chromium exposes
func (b *BrowserSource) MemorySource() telemetry.MemorySource {
	return func() (float64, error) {
		perf := b.global.Get("performance")
		if !perf.Truthy() {
			return 0, telemetry.ErrMemoryUnavailable
		}
		mem := perf.Get("memory")
		if mem.Type() != js.TypeObject {
			return 0, telemetry.ErrMemoryUnavailable
		}
		limit := jsFloat(mem.Get("jsHeapSizeLimit"))
		if limit <= 0 {
			return 0, telemetry.ErrMemoryUnavailable
		}
		return jsFloat(mem.Get("usedJSHeapSize")) / limit, nil
	}
}

// Scheduler uses requestAnimationFrame, or a timer in contexts without
// one such as workers
func (b *BrowserSource) Scheduler(hz int) telemetry.Scheduler {
	raf := b.global.Get("requestAnimationFrame")
	if raf.Type() != js.TypeFunction {
		utils.Warn("requestAnimationFrame unavailable, sampling on a timer", utils.Int("hz", hz))
		return telemetry.NewTickerScheduler(nil, hz)
	}
	return &AnimationFrameScheduler{global: b.global}
}

func (b *BrowserSource) newCanvas() js.Value {
	if b.document.Truthy() {
		return b.document.Call("createElement", "canvas")
	}
	if ctor := b.global.Get("OffscreenCanvas"); ctor.Truthy() {
		return ctor.New(1, 1)
	}
	return js.Undefined()
}

func (b *BrowserSource) canvasContext(kind string) bool {
	canvas := b.newCanvas()
	if !canvas.Truthy() {
		return false
	}
	return canvas.Call("getContext", kind).Truthy()
}

func (b *BrowserSource) probeLocalStorage() bool {
	storage := b.global.Get("localStorage")
	if !storage.Truthy() {
		return false
	}
	const key = "__inos_caps_probe__"
	storage.Call("setItem", key, key)
	storage.Call("removeItem", key)
	return true
}

func (b *BrowserSource) matchMedia(query string) bool {
	mm := b.global.Get("matchMedia")
	if mm.Type() != js.TypeFunction {
		return false
	}
	return jsBool(b.global.Call("matchMedia", query).Get("matches"))
}

func (b *BrowserSource) hasProperty(obj js.Value, name string) bool {
	reflect := b.global.Get("Reflect")
	if !reflect.Truthy() || !obj.Truthy() {
		return false
	}
	return reflect.Call("has", obj, name).Bool()
}

// AnimationFrameScheduler fires callbacks on requestAnimationFrame
type AnimationFrameScheduler struct {
	global js.Value
}

func (s *AnimationFrameScheduler) RequestFrame(fn func()) {
	var cb js.Func
	cb = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		cb.Release()
		fn()
		return nil
	})
	s.global.Call("requestAnimationFrame", cb)
}

func jsString(v js.Value) string {
	if v.Type() == js.TypeString {
		return v.String()
	}
	return ""
}

func jsFloat(v js.Value) float64 {
	if v.Type() == js.TypeNumber {
		return v.Float()
	}
	return 0
}

func jsInt(v js.Value) int {
	if v.Type() == js.TypeNumber {
		return v.Int()
	}
	return 0
}

func jsBool(v js.Value) bool {
	if v.Type() == js.TypeBoolean {
		return v.Bool()
	}
	return false
}
