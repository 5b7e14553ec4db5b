package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samples(n int, base float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = base
	}
	return out
}

func TestCompare_InsufficientData(t *testing.T) {
	c := Compare("http.request_duration", samples(5, 100), samples(20, 100))
	assert.Equal(t, VerdictInsufficientData, c.Verdict)
}

func TestCompare_LatencyImprovementIsBetter(t *testing.T) {
	a := samples(30, 200)
	b := samples(30, 100)
	c := Compare("http.request_duration_ms", a, b)
	assert.Equal(t, VerdictBetter, c.Verdict)
	assert.Less(t, c.ChangePercent, 0.0)
}

func TestCompare_LatencyRegressionIsWorse(t *testing.T) {
	a := samples(30, 100)
	b := samples(30, 300)
	c := Compare("http.request_duration_ms", a, b)
	assert.Equal(t, VerdictWorse, c.Verdict)
}

func TestCompare_ThroughputIncreaseIsBetter(t *testing.T) {
	a := samples(30, 100)
	b := samples(30, 200)
	c := Compare("requests_per_second", a, b)
	assert.Equal(t, VerdictBetter, c.Verdict)
}

func TestCompare_NoChangeIsNeutral(t *testing.T) {
	c := Compare("requests_per_second", samples(30, 100), samples(30, 100))
	assert.Equal(t, VerdictNeutral, c.Verdict)
}

func TestCompare_ReportsDescriptiveStatistics(t *testing.T) {
	a := make([]float64, 30)
	b := make([]float64, 30)
	for i := range a {
		a[i] = 100 + float64(i)
		b[i] = 50 + float64(i)
	}
	c := Compare("http.request_duration_ms", a, b)
	assert.Equal(t, mean(a), c.BaselineMean)
	assert.Equal(t, mean(b), c.CandidateMean)
	require.NotNil(t, c.BaselineP95)
	require.NotNil(t, c.CandidateP95)
}

func TestCompare_P95NilBelowMinSampleCount(t *testing.T) {
	c := Compare("http.request_duration_ms", samples(15, 100), samples(15, 200))
	assert.Nil(t, c.BaselineP95)
	assert.Nil(t, c.CandidateP95)
}

func TestIsLowerBetter_MatchesKeywords(t *testing.T) {
	assert.True(t, isLowerBetter("checkout.latency_p95"))
	assert.True(t, isLowerBetter("payment.error_count"))
	assert.False(t, isLowerBetter("checkout.throughput"))
}
