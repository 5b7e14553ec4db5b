package backpressure_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vantage-platform/vantage/internal/backpressure"
)

func TestBatchSize_Tiers(t *testing.T) {
	c := backpressure.New()

	assert.Equal(t, backpressure.MinBatchSize, c.BatchSize(0))
	assert.Equal(t, backpressure.MinBatchSize, c.BatchSize(2000)) // pressure 0.2
	assert.Equal(t, (backpressure.MinBatchSize+backpressure.MaxBatchSize)/2, c.BatchSize(5000))
	assert.Equal(t, backpressure.MaxBatchSize, c.BatchSize(8000))
}

func TestDelay_ZeroBelowThreshold(t *testing.T) {
	c := backpressure.New()
	assert.Equal(t, int64(0), c.Delay(0).Nanoseconds())
	assert.Equal(t, int64(0), c.Delay(7000).Nanoseconds())
}

func TestDelay_MonotonicAboveThreshold(t *testing.T) {
	c := backpressure.New()

	d1 := c.Delay(8000)
	d2 := c.Delay(9000)
	d3 := c.Delay(10000)

	assert.LessOrEqual(t, d1, d2)
	assert.LessOrEqual(t, d2, d3)
}

func TestShouldThrottle(t *testing.T) {
	c := backpressure.New()
	assert.False(t, c.ShouldThrottle(7999))
	assert.True(t, c.ShouldThrottle(8000))
}

func TestBatchSizeAndDelay_MonotonicityProperty(t *testing.T) {
	c := backpressure.New()
	depths := []int{0, 1000, 3000, 5000, 7000, 8000, 9000, 10000, 12000}

	for i := 1; i < len(depths); i++ {
		assert.GreaterOrEqual(t, c.BatchSize(depths[i]), c.BatchSize(depths[i-1]))
		assert.GreaterOrEqual(t, c.Delay(depths[i]), c.Delay(depths[i-1]))
	}
}
