package alerting

import (
	"fmt"
	"math"

	"github.com/vantage-platform/vantage/internal/model"
)

// deviation measures how far outside [lower, upper] current sits,
// relative to the breached bound; zero-denominator bounds are guarded.
func deviation(current, lower, upper float64) float64 {
	var upperDev, lowerDev float64
	if upper != 0 {
		upperDev = (current - upper) / upper
	}
	if lower != 0 {
		lowerDev = (lower - current) / lower
	}
	dev := math.Max(upperDev, lowerDev)
	if dev < 0 {
		dev = 0
	}
	return dev
}

func severityFor(dev float64) model.Severity {
	switch {
	case dev > 0.5:
		return model.SeverityCritical
	case dev > 0.3:
		return model.SeverityWarning
	default:
		return model.SeverityInfo
	}
}

func breachMessage(current, lower, upper float64) string {
	direction := "high"
	if current < lower {
		direction = "low"
	}
	return fmt.Sprintf("abnormally %s: %.2f (expected %.2f-%.2f)", direction, current, lower, upper)
}
