package downsample

import (
	"math"

	"github.com/vantage-platform/vantage/internal/model"
)

// importance computes the 0-100 score the downsampling rules gate on:
// 0.4*varianceScore + 0.4*errorScore + 0.2*accessScore.
func importance(samples []model.Metric, queryCount7d int) float64 {
	if len(samples) == 0 {
		return 0
	}

	values := make([]float64, len(samples))
	errCount := 0
	for i, m := range samples {
		values[i] = m.Value
		if m.StatusCode >= 500 {
			errCount++
		}
	}

	m := mean(values)
	v := variance(values, m)

	varianceScore := varianceToScore(v, m)
	errorFraction := float64(errCount) / float64(len(samples))
	errorScore := math.Min(200*errorFraction, 100)
	accessScore := math.Min(10*float64(queryCount7d), 100)

	return 0.4*varianceScore + 0.4*errorScore + 0.2*accessScore
}

// varianceToScore maps the ratio variance/|mean| through a logistic
// curve centered at ratio==1, so a batch whose variance equals the
// absolute value of its mean scores exactly 50 -- ratios further in
// either direction saturate toward 0 or 100.
func varianceToScore(v, m float64) float64 {
	denom := math.Abs(m)
	if denom == 0 {
		denom = 1
	}
	ratio := v / denom
	return 100 / (1 + math.Exp(-(ratio - 1)))
}
