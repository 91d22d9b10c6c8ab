package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWarnLimiterSpacing(t *testing.T) {
	w := NewWarnLimiter()

	assert.True(t, w.Allow("colonist/1", 100, 300))
	assert.False(t, w.Allow("colonist/1", 150, 300), "inside window")
	assert.False(t, w.Allow("colonist/1", 399, 300), "still inside window")
	assert.True(t, w.Allow("colonist/1", 400, 300), "window elapsed")
}

func TestWarnLimiterKeysIndependent(t *testing.T) {
	w := NewWarnLimiter()
	assert.True(t, w.Allow("colonist/1", 100, 300))
	assert.True(t, w.Allow("hostile/7", 100, 300))
}

func TestWarnLimiterSweep(t *testing.T) {
	w := NewWarnLimiter()
	w.Allow("stale", 100, 300)
	w.Allow("fresh", 900, 300)

	w.Sweep(1000, 500)

	// The stale key was dropped, so it may warn again immediately.
	assert.True(t, w.Allow("stale", 1001, 300))
	assert.False(t, w.Allow("fresh", 1001, 300))
}
