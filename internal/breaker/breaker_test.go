package breaker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantage-platform/vantage/internal/breaker"
)

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	b := breaker.New(breaker.WithFailureThreshold(5), breaker.WithTimeout(60*time.Second))

	failing := func(ctx context.Context) error { return errors.New("boom") }

	for i := 0; i < 5; i++ {
		err := b.Do(context.Background(), failing)
		require.Error(t, err)
	}

	assert.Equal(t, breaker.Open, b.State())

	start := time.Now()
	err := b.Do(context.Background(), func(ctx context.Context) error { return nil })
	elapsed := time.Since(start)

	var openErr *breaker.ErrOpen
	require.ErrorAs(t, err, &openErr)
	assert.Less(t, elapsed, time.Millisecond, "open rejection must not perform I/O")
	assert.LessOrEqual(t, openErr.RetryAfter, 60*time.Second)
}

func TestBreaker_HalfOpenAdmitsTrialThenCloses(t *testing.T) {
	b := breaker.New(
		breaker.WithFailureThreshold(2),
		breaker.WithSuccessThreshold(2),
		breaker.WithTimeout(10*time.Millisecond),
		breaker.WithHalfOpenMaxCalls(1),
	)

	failing := func(ctx context.Context) error { return errors.New("boom") }
	for i := 0; i < 2; i++ {
		_ = b.Do(context.Background(), failing)
	}
	require.Equal(t, breaker.Open, b.State())

	time.Sleep(15 * time.Millisecond)

	ok := func(ctx context.Context) error { return nil }
	require.NoError(t, b.Do(context.Background(), ok))
	require.Equal(t, breaker.HalfOpen, b.State())

	require.NoError(t, b.Do(context.Background(), ok))
	assert.Equal(t, breaker.Closed, b.State())
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	b := breaker.New(
		breaker.WithFailureThreshold(1),
		breaker.WithTimeout(10*time.Millisecond),
	)

	_ = b.Do(context.Background(), func(ctx context.Context) error { return errors.New("x") })
	require.Equal(t, breaker.Open, b.State())

	time.Sleep(15 * time.Millisecond)

	_ = b.Do(context.Background(), func(ctx context.Context) error { return errors.New("still failing") })
	assert.Equal(t, breaker.Open, b.State())
}

func TestBreaker_SuccessInClosedResetsFailureCount(t *testing.T) {
	b := breaker.New(breaker.WithFailureThreshold(3))

	_ = b.Do(context.Background(), func(ctx context.Context) error { return errors.New("x") })
	_ = b.Do(context.Background(), func(ctx context.Context) error { return errors.New("x") })
	require.NoError(t, b.Do(context.Background(), func(ctx context.Context) error { return nil }))

	_ = b.Do(context.Background(), func(ctx context.Context) error { return errors.New("x") })
	_ = b.Do(context.Background(), func(ctx context.Context) error { return errors.New("x") })
	assert.Equal(t, breaker.Closed, b.State(), "reset counter means two more failures should not open it")
}
