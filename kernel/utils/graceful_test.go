package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGracefulShutdown_RunsHooksLIFO(t *testing.T) {
	g := NewGracefulShutdown(time.Second, NewNopLogger())

	var order []string
	g.Register("logger", func() error { order = append(order, "logger"); return nil })
	g.Register("telemetry", func() error { order = append(order, "telemetry"); return nil })

	require.NoError(t, g.Shutdown(context.Background()))
	assert.Equal(t, []string{"telemetry", "logger"}, order)

	order = nil
	require.NoError(t, g.Shutdown(context.Background()))
	assert.Empty(t, order, "hooks run once")
}

func TestGracefulShutdown_FirstErrorAndPanics(t *testing.T) {
	g := NewGracefulShutdown(time.Second, NewNopLogger())
	boom := errors.New("flush failed")

	ran := false
	g.Register("last", func() error { ran = true; return nil })
	g.Register("flaky", func() error { return boom })
	g.Register("panicky", func() error { panic("host gone") })

	err := g.Shutdown(context.Background())
	require.Error(t, err)
	var pe *PanicError
	assert.ErrorAs(t, err, &pe)
	assert.Contains(t, err.Error(), "panicky")
	assert.True(t, ran, "later hooks still run after a failure")
}

func TestGracefulShutdown_Timeout(t *testing.T) {
	g := NewGracefulShutdown(10*time.Millisecond, NewNopLogger())
	release := make(chan struct{})
	defer close(release)
	g.Register("stuck", func() error { <-release; return nil })

	err := g.Shutdown(context.Background())
	assert.EqualError(t, err, "shutdown timeout")
}

func TestGuard(t *testing.T) {
	assert.NoError(t, Guard(func() error { return nil }))

	want := errors.New("probe failed")
	assert.ErrorIs(t, Guard(func() error { return want }), want)

	err := Guard(func() error { panic("boom") })
	var pe *PanicError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "boom", pe.Value)
}

func TestWrapError(t *testing.T) {
	base := errors.New("eof")
	err := WrapError(base, "failed to read fixture")
	assert.ErrorIs(t, err, base)
	assert.Equal(t, "failed to read fixture: eof", err.Error())
	assert.EqualError(t, WrapError(nil, "plain"), "plain")
	assert.EqualError(t, NewError("x"), "x")
}
