package readiness

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSynchronousIndexingReadiness covers §8's "synchronous-indexing
// readiness" scenario: a server (Kotlin) that never opens a progress token
// should reach Ready the moment initialized is sent.
func TestSynchronousIndexingReadiness(t *testing.T) {
	c := New(5 * time.Second)
	c.TransportConnected()
	c.InitializeResponseReceived()
	c.InitializedSent()

	assert.Equal(t, Ready, c.State())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, c.WaitReady(ctx))
}

// TestAsyncIndexingReadiness covers §8's "async-indexing readiness"
// scenario: a progress token opened before initialized is sent must hold
// the coordinator in Indexing until the matching end event arrives.
func TestAsyncIndexingReadiness(t *testing.T) {
	c := New(5 * time.Second)
	c.TransportConnected()
	c.InitializeResponseReceived()
	c.TokenStarted("indexing-1")
	c.InitializedSent()

	assert.Equal(t, Indexing, c.State())

	c.Progress("indexing-1", ProgressReport)
	assert.Equal(t, Indexing, c.State(), "report events must not clear the latch")

	c.TokenEnded("indexing-1")
	assert.Equal(t, Ready, c.State())
}

func TestMultipleTokensAllMustEndBeforeReady(t *testing.T) {
	c := New(5 * time.Second)
	c.TransportConnected()
	c.InitializeResponseReceived()
	c.TokenStarted("a")
	c.TokenStarted("b")
	c.InitializedSent()

	c.TokenEnded("a")
	assert.Equal(t, Indexing, c.State(), "one outstanding token must hold back Ready")

	c.TokenEnded("b")
	assert.Equal(t, Ready, c.State())
}

func TestWaitReadyForcesReadyOnTimeout(t *testing.T) {
	c := New(20 * time.Millisecond)
	c.TransportConnected()
	c.InitializeResponseReceived()
	c.TokenStarted("never-ends")
	c.InitializedSent()
	require.Equal(t, Indexing, c.State())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := c.WaitReady(ctx)
	require.NoError(t, err, "a timed-out indexing wait forces Ready rather than erroring (§7)")
	assert.Equal(t, Ready, c.State())
}

func TestWaitReadyReturnsErrorWhenFailed(t *testing.T) {
	c := New(5 * time.Second)
	c.Fail(assert.AnError)

	err := c.WaitReady(context.Background())
	require.Error(t, err)
}

func TestStopRequestedThenStopped(t *testing.T) {
	c := New(5 * time.Second)
	c.TransportConnected()
	c.InitializeResponseReceived()
	c.InitializedSent()
	require.Equal(t, Ready, c.State())

	c.StopRequested()
	assert.Equal(t, Stopping, c.State())

	c.Stopped()
	assert.Equal(t, Stopped, c.State())
}

func TestAllowedBeforeReady(t *testing.T) {
	assert.True(t, AllowedBeforeReady("initialize"))
	assert.True(t, AllowedBeforeReady("initialized"))
	assert.True(t, AllowedBeforeReady("shutdown"))
	assert.False(t, AllowedBeforeReady("textDocument/documentSymbol"))
}
