package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantage-platform/vantage/internal/ratelimit"
)

func TestLimiter_AllowsUpToCapacity(t *testing.T) {
	l := ratelimit.New(ratelimit.WithMaxRequests(5), ratelimit.WithWindow(60*time.Second))

	for i := 0; i < 5; i++ {
		res := l.Allow("1.2.3.4")
		require.True(t, res.Allowed, "request %d should be allowed", i)
	}

	res := l.Allow("1.2.3.4")
	require.False(t, res.Allowed)
	assert.GreaterOrEqual(t, res.RetryAfter, time.Second)
}

func TestLimiter_PerKeyIsolation(t *testing.T) {
	l := ratelimit.New(ratelimit.WithMaxRequests(1), ratelimit.WithWindow(60*time.Second))

	require.True(t, l.Allow("a").Allowed)
	require.False(t, l.Allow("a").Allowed)
	require.True(t, l.Allow("b").Allowed, "separate key must have its own bucket")
}

func TestLimiter_Refills(t *testing.T) {
	l := ratelimit.New(ratelimit.WithMaxRequests(60), ratelimit.WithWindow(60*time.Second))

	for i := 0; i < 60; i++ {
		l.Allow("k")
	}
	require.False(t, l.Allow("k").Allowed)

	time.Sleep(1100 * time.Millisecond)
	require.True(t, l.Allow("k").Allowed, "one token/second refill should admit after ~1s")
}

func TestLimiter_EvictsIdleBuckets(t *testing.T) {
	l := ratelimit.New(ratelimit.WithMaxRequests(5), ratelimit.WithWindow(10*time.Millisecond))
	l.Allow("stale")
	require.Equal(t, 1, l.Len())

	time.Sleep(30 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	go l.RunEvictor(ctx, 5*time.Millisecond)

	<-ctx.Done()
	assert.Equal(t, 0, l.Len())
}
