package alerting

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeBaseline_TooFewSamplesRejected(t *testing.T) {
	samples := make([]float64, 9)
	for i := range samples {
		samples[i] = 10
	}
	_, ok := ComputeBaseline(samples, DefaultSensitivity)
	assert.False(t, ok)
}

func TestComputeBaseline_OutliersDoNotDistortBounds(t *testing.T) {
	samples := []float64{10, 10, 11, 9, 10, 11, 9, 10, 10, 10, 1000}
	baseline, ok := ComputeBaseline(samples, DefaultSensitivity)
	assert.True(t, ok)
	assert.Less(t, baseline.Upper, 100.0)
}

func TestComputeBaseline_OutlierPairDroppedCoreSurvives(t *testing.T) {
	samples := []float64{1, 1, 1, 1, 1, 1, 1, 1, 1000, 1000}
	baseline, ok := ComputeBaseline(samples, DefaultSensitivity)
	assert.True(t, ok)
	assert.Equal(t, 1.0, baseline.Mean)
}

func TestComputeBaseline_SensitivityNarrowsOrWidensBounds(t *testing.T) {
	samples := []float64{8, 9, 10, 11, 12, 9, 10, 11, 10, 9, 10}

	low, ok := ComputeBaseline(samples, SensitivityLow)
	assert.True(t, ok)
	high, ok := ComputeBaseline(samples, SensitivityVeryHigh)
	assert.True(t, ok)

	assert.Greater(t, low.Upper-low.Lower, high.Upper-high.Lower)
}

func TestComputeBaseline_LowerBoundNeverNegative(t *testing.T) {
	samples := []float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 50}
	baseline, ok := ComputeBaseline(samples, SensitivityLow)
	assert.True(t, ok)
	assert.GreaterOrEqual(t, baseline.Lower, 0.0)
}

func TestSigmaFor_UnknownFallsBackToMedium(t *testing.T) {
	assert.Equal(t, sigmaBySensitivity[DefaultSensitivity], sigmaFor("bogus"))
}
