package downsample

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	assert.Equal(t, float64(6), Percentile(sorted, 50))
	assert.Equal(t, float64(10), Percentile(sorted, 99))
	assert.Equal(t, float64(1), Percentile(sorted, 0))
	assert.Equal(t, float64(0), Percentile(nil, 50))
}

func TestMeanAndVariance(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	m := mean(values)
	assert.InDelta(t, 5.0, m, 1e-9)
	assert.InDelta(t, 4.0, variance(values, m), 1e-9)
}
