package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeHealthScore_AllGoodIsHealthy(t *testing.T) {
	hs := ComputeHealthScore(1000, 2, 50, true, 1000, 1000)
	assert.Equal(t, StatusHealthy, hs.Status)
	assert.Equal(t, 100.0, hs.ErrorScore)
}

func TestComputeHealthScore_HighErrorRateAndLatencyIsCritical(t *testing.T) {
	hs := ComputeHealthScore(1000, 100, 600, true, 1000, 1000)
	assert.Equal(t, StatusCritical, hs.Status)
}

func TestComputeHealthScore_NoLatencyDataScoresFifty(t *testing.T) {
	hs := ComputeHealthScore(1000, 0, 0, false, 1000, 1000)
	assert.Equal(t, 50.0, hs.LatencyScore)
}

func TestComputeHealthScore_TrafficDropFloorsAtFifty(t *testing.T) {
	hs := ComputeHealthScore(100, 0, 50, true, 100, 1000)
	assert.Equal(t, 50.0, hs.TrafficScore)
}

func TestComputeHealthScore_ZeroRequestsScoresHundredOnError(t *testing.T) {
	hs := ComputeHealthScore(0, 0, 0, false, 0, 0)
	assert.Equal(t, 100.0, hs.ErrorScore)
	assert.Equal(t, 0.0, hs.ErrorRate)
}

func TestComputeHealthScore_DegradedBand(t *testing.T) {
	hs := ComputeHealthScore(1000, 30, 300, true, 1000, 1000)
	assert.Equal(t, StatusDegraded, hs.Status)
}
