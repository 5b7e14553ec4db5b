package alerting

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vantage-platform/vantage/internal/model"
)

func TestDeviation_AboveUpperBound(t *testing.T) {
	dev := deviation(150, 50, 100)
	assert.InDelta(t, 0.5, dev, 1e-9)
}

func TestDeviation_BelowLowerBound(t *testing.T) {
	dev := deviation(25, 50, 100)
	assert.InDelta(t, 0.5, dev, 1e-9)
}

func TestDeviation_WithinBoundsIsZero(t *testing.T) {
	dev := deviation(75, 50, 100)
	assert.Equal(t, 0.0, dev)
}

func TestDeviation_ZeroBoundsGuarded(t *testing.T) {
	assert.NotPanics(t, func() {
		deviation(10, 0, 0)
	})
}

func TestSeverityFor_Thresholds(t *testing.T) {
	assert.Equal(t, model.SeverityCritical, severityFor(0.6))
	assert.Equal(t, model.SeverityWarning, severityFor(0.35))
	assert.Equal(t, model.SeverityInfo, severityFor(0.1))
}

func TestBreachMessage_DirectionsHighAndLow(t *testing.T) {
	assert.Contains(t, breachMessage(150, 50, 100), "high")
	assert.Contains(t, breachMessage(10, 50, 100), "low")
}
