package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_UnlimitedNeverWaits(t *testing.T) {
	t.Parallel()

	l := New(Config{})
	start := time.Now()
	for range 1000 {
		require.NoError(t, l.Wait(context.Background()))
	}
	assert.Less(t, time.Since(start), time.Second)
}

func TestLimiter_NilIsUnlimited(t *testing.T) {
	t.Parallel()

	var l *Limiter
	require.NoError(t, l.Wait(context.Background()))
	l.Throttled()
	l.Succeeded()
	assert.Equal(t, Stats{}, l.Stats())
}

func TestLimiter_ContextCancelled(t *testing.T) {
	t.Parallel()

	l := New(Config{RequestsPerSecond: 0.001})
	require.NoError(t, l.Wait(context.Background())) // burst token

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, l.Wait(ctx))
}

func TestLimiter_ThrottleAndRecover(t *testing.T) {
	t.Parallel()

	l := New(Config{RequestsPerSecond: 10})
	l.Throttled()
	assert.InDelta(t, 5.0, l.Stats().Rate, 0.001)
	l.Throttled()
	assert.InDelta(t, 2.5, l.Stats().Rate, 0.001)
	assert.Equal(t, 2, l.Stats().Throttles)

	for range 100 {
		l.Succeeded()
	}
	assert.InDelta(t, 10.0, l.Stats().Rate, 0.001, "recovery stops at configured rate")
}

func TestLimiter_ThrottleFloor(t *testing.T) {
	t.Parallel()

	l := New(Config{RequestsPerSecond: 1, MinRate: 0.25})
	for range 20 {
		l.Throttled()
	}
	assert.InDelta(t, 0.25, l.Stats().Rate, 0.001)
}

func TestLimiter_ThrottleFromUnlimited(t *testing.T) {
	t.Parallel()

	l := New(Config{})
	l.Succeeded()
	assert.Equal(t, 0.0, l.Stats().Rate, "no recovery without throttling")
	l.Throttled()
	assert.InDelta(t, 2.0, l.Stats().Rate, 0.001)
}

func TestLimiter_UnlimitedRecoversToInf(t *testing.T) {
	t.Parallel()

	l := New(Config{})
	l.Throttled()
	for range 100 {
		l.Succeeded()
	}
	assert.Equal(t, 0.0, l.Stats().Rate)
}
