package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
)

func TestAllowWithinBurst(t *testing.T) {
	limiter := New("test", 10)

	assert.True(t, limiter.Allow())
	assert.Equal(t, "test", limiter.Name())
}

func TestWaitBlocksAtRate(t *testing.T) {
	limiter := NewWithBurst("test", 50, 1)

	ctx := context.Background()
	start := time.Now()
	assert.NoError(t, limiter.Wait(ctx))
	assert.NoError(t, limiter.Wait(ctx))

	// Second request had to wait for the 50/s refill
	if elapsed := time.Since(start); elapsed < 10*time.Millisecond {
		t.Fatalf("expected second wait to block, elapsed %v", elapsed)
	}
}

func TestWaitCancelledContext(t *testing.T) {
	limiter := NewWithBurst("test", 1, 1)
	assert.NoError(t, limiter.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := limiter.Wait(ctx)
	assert.Error(t, err)
}

func TestNilLimiterNeverBlocks(t *testing.T) {
	var limiter *Limiter

	assert.NoError(t, limiter.Wait(context.Background()))
	assert.True(t, limiter.Allow())
	assert.Equal(t, "", limiter.Name())
}

func TestFractionalRate(t *testing.T) {
	limiter := New("slow", 0.5)

	// Burst floor keeps at least one request available
	assert.True(t, limiter.Allow())
	assert.False(t, limiter.Allow())
}
