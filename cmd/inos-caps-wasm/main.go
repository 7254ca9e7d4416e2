//go:build js && wasm

// Package main exports the capability and telemetry API to JavaScript as
// the inosCaps and inosPerf globals.
package main

import (
	"encoding/json"
	"io"
	"syscall/js"

	"github.com/nmxmxh/inos_caps/kernel/config"
	"github.com/nmxmxh/inos_caps/kernel/monitor"
	"github.com/nmxmxh/inos_caps/kernel/signals"
	"github.com/nmxmxh/inos_caps/kernel/telemetry"
	"github.com/nmxmxh/inos_caps/kernel/utils"
)

var (
	instance *monitor.Monitor
	cfg      config.Config
)

func main() {
	cfg = config.Default()
	config.ApplyHostOverrides(&cfg)

	// Entries reach the browser console through the logger's host hook.
	logger := utils.NewLogger(utils.LoggerConfig{
		Level:     cfg.Level(),
		Component: "caps",
		Output:    io.Discard,
	})
	utils.SetGlobalLogger(logger)

	if err := cfg.Validate(); err != nil {
		logger.Warn("Configuration will be clamped", utils.Err(err))
	}

	instance = monitor.NewForHost(signals.Default(), cfg, logger)
	instance.Start(cfg.TelemetryConfig())

	caps := js.Global().Get("Object").New()
	caps.Set("detect", js.FuncOf(jsDetect))
	caps.Set("profile", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		return toJS(instance.Profile())
	}))
	caps.Set("isMobile", boolFunc(instance.IsMobile))
	caps.Set("isTablet", boolFunc(instance.IsTablet))
	caps.Set("isTouch", boolFunc(instance.IsTouch))
	caps.Set("hasAdequateGraphics", boolFunc(instance.HasAdequateGraphics))
	caps.Set("isSlowConnection", boolFunc(instance.IsSlowConnection))
	caps.Set("isPowerSavingMode", boolFunc(instance.IsPowerSavingMode))
	caps.Set("recommendedQuality", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		return instance.RecommendedQuality().String()
	}))
	caps.Set("adaptiveQuality", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		return instance.AdaptiveQuality(argFloat(args, 0, monitor.DefaultMinFPS)).String()
	}))
	caps.Set("summary", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		return toJS(instance.Summary())
	}))
	js.Global().Set("inosCaps", caps)

	store := instance.Telemetry()
	perf := js.Global().Get("Object").New()
	perf.Set("initialize", js.FuncOf(jsInitialize))
	perf.Set("setEnabled", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		store.SetEnabled(argBool(args, 0, true))
		return nil
	}))
	perf.Set("isEnabled", boolFunc(store.Enabled))
	perf.Set("mark", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		store.Mark(argString(args, 0))
		return nil
	}))
	perf.Set("measure", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		return optional(store.Measure(argString(args, 0), argString(args, 1), argString(args, 2)))
	}))
	perf.Set("startMeasure", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		store.StartMeasure(argString(args, 0))
		return nil
	}))
	perf.Set("endMeasure", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		return optional(store.EndMeasure(argString(args, 0)))
	}))
	perf.Set("incrementCounter", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		store.AddToCounter(argString(args, 0), int64(argFloat(args, 1, 1)))
		return nil
	}))
	perf.Set("getCounter", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		return float64(store.GetCounter(argString(args, 0)))
	}))
	perf.Set("resetCounter", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		store.ResetCounter(argString(args, 0))
		return nil
	}))
	perf.Set("getMetrics", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		return toJS(store.Metrics())
	}))
	perf.Set("setCustomMetric", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		store.SetCustomMetric(argString(args, 0), argFloat(args, 1, 0))
		return nil
	}))
	perf.Set("getCustomMetric", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		return optional(store.CustomMetric(argString(args, 0)))
	}))
	perf.Set("setCPUTime", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		store.SetCPUTime(argFloat(args, 0, 0))
		return nil
	}))
	perf.Set("setGPUTime", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		store.SetGPUTime(argFloat(args, 0, 0))
		return nil
	}))
	perf.Set("createReport", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		return toJS(store.CreateReport())
	}))
	perf.Set("clear", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		store.Clear()
		return nil
	}))
	perf.Set("startFrameMonitoring", boolFunc(store.StartFrameMonitoring))
	perf.Set("stopFrameMonitoring", boolFunc(store.StopFrameMonitoring))
	js.Global().Set("inosPerf", perf)

	window := js.Global().Get("window")
	if !window.IsUndefined() && !window.IsNull() {
		window.Call("addEventListener", "beforeunload", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
			instance.Stop()
			return nil
		}))
	}

	select {}
}

// jsDetect accepts {forceRedetect, testPerformance}
func jsDetect(this js.Value, args []js.Value) interface{} {
	opts := cfg.DetectOptions()
	if len(args) > 0 && args[0].Type() == js.TypeObject {
		if v := args[0].Get("forceRedetect"); v.Type() == js.TypeBoolean {
			opts.ForceRedetect = v.Bool()
		}
		if v := args[0].Get("testPerformance"); v.Type() == js.TypeBoolean {
			opts.TestPerformance = v.Bool()
		}
	}
	return toJS(instance.Detect(opts))
}

// jsInitialize accepts {enabled, historyLength}
func jsInitialize(this js.Value, args []js.Value) interface{} {
	tc := telemetry.DefaultConfig()
	if len(args) > 0 && args[0].Type() == js.TypeObject {
		if v := args[0].Get("enabled"); v.Type() == js.TypeBoolean {
			tc.Enabled = v.Bool()
		}
		if v := args[0].Get("historyLength"); v.Type() == js.TypeNumber {
			tc.HistoryLength = v.Int()
		}
	}
	instance.Start(tc)
	return nil
}

func boolFunc(fn func() bool) js.Func {
	return js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		return fn()
	})
}

// optional maps a missing result to null
func optional(v float64, ok bool) interface{} {
	if !ok {
		return nil
	}
	return v
}

// toJS round-trips v through JSON so enums arrive as their names
func toJS(v interface{}) interface{} {
	data, err := json.Marshal(v)
	if err != nil {
		utils.Error("Failed to encode value for host", utils.Err(err))
		return nil
	}
	return js.Global().Get("JSON").Call("parse", string(data))
}

func argString(args []js.Value, i int) string {
	if i < len(args) && args[i].Type() == js.TypeString {
		return args[i].String()
	}
	return ""
}

func argFloat(args []js.Value, i int, def float64) float64 {
	if i < len(args) && args[i].Type() == js.TypeNumber {
		return args[i].Float()
	}
	return def
}

func argBool(args []js.Value, i int, def bool) bool {
	if i < len(args) && args[i].Type() == js.TypeBoolean {
		return args[i].Bool()
	}
	return def
}
