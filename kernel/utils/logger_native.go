//go:build !js || !wasm

package utils

// redirectLogToBridge is a no-op on native platforms
func redirectLogToBridge(level LogLevel, logLine string) {}
