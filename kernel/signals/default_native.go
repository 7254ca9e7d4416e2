//go:build !js || !wasm

package signals

// Default returns the source for the running platform
func Default() Host {
	return NewHostSource()
}
