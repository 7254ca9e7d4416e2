package utils

import (
	"context"
	"sync"
	"time"
)

// GracefulShutdown runs registered stop hooks in reverse registration order
type GracefulShutdown struct {
	mu      sync.Mutex
	hooks   []shutdownHook
	timeout time.Duration
	logger  *Logger
}

type shutdownHook struct {
	name string
	fn   func() error
}

// NewGracefulShutdown creates a new graceful shutdown manager
func NewGracefulShutdown(timeout time.Duration, logger *Logger) *GracefulShutdown {
	if logger == nil {
		logger = DefaultLogger("shutdown")
	}
	return &GracefulShutdown{timeout: timeout, logger: logger}
}

// Register registers a named shutdown function
func (g *GracefulShutdown) Register(name string, fn func() error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.hooks = append(g.hooks, shutdownHook{name: name, fn: fn})
}

// Shutdown executes all registered hooks (LIFO) and returns the first failure.
// Hooks run sequentially so later components can rely on earlier ones
// still being alive.
func (g *GracefulShutdown) Shutdown(ctx context.Context) error {
	g.mu.Lock()
	hooks := make([]shutdownHook, len(g.hooks))
	copy(hooks, g.hooks)
	g.hooks = nil
	g.mu.Unlock()

	g.logger.Info("Starting graceful shutdown", Int("components", len(hooks)))

	shutdownCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		var firstErr error
		for i := len(hooks) - 1; i >= 0; i-- {
			h := hooks[i]
			if err := Guard(h.fn); err != nil {
				g.logger.Error("Shutdown hook failed", String("hook", h.name), Err(err))
				if firstErr == nil {
					firstErr = WrapError(err, h.name)
				}
			}
		}
		done <- firstErr
	}()

	select {
	case err := <-done:
		g.logger.Info("Graceful shutdown complete")
		return err
	case <-shutdownCtx.Done():
		g.logger.Warn("Graceful shutdown timed out")
		return NewError("shutdown timeout")
	}
}
