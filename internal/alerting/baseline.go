package alerting

import (
	"math"
	"sort"
)

// Sensitivity names the four sigma multipliers §4.9 allows.
type Sensitivity string

const (
	SensitivityLow       Sensitivity = "low"
	SensitivityMedium    Sensitivity = "medium"
	SensitivityHigh      Sensitivity = "high"
	SensitivityVeryHigh  Sensitivity = "very_high"
	DefaultSensitivity               = SensitivityMedium
)

var sigmaBySensitivity = map[Sensitivity]float64{
	SensitivityLow:      3,
	SensitivityMedium:   2.5,
	SensitivityHigh:     2,
	SensitivityVeryHigh: 1.5,
}

func sigmaFor(s Sensitivity) float64 {
	if v, ok := sigmaBySensitivity[s]; ok {
		return v
	}
	return sigmaBySensitivity[DefaultSensitivity]
}

const (
	minBaselineSamples = 10
	minFilteredSamples = 5
)

// Baseline is the mean/std computed from an outlier-filtered window of
// raw samples, plus the derived [lower, upper] bounds a current value
// is checked against.
type Baseline struct {
	Mean  float64
	Std   float64
	Lower float64
	Upper float64
}

// ComputeBaseline implements §4.9's baseline algorithm: require at
// least 10 raw samples, drop IQR outliers, require at least 5 survive,
// then derive mean/std and sigma-scaled bounds. ok is false when either
// sample-count gate fails, meaning the caller should skip evaluation
// for this cycle.
func ComputeBaseline(samples []float64, sensitivity Sensitivity) (Baseline, bool) {
	if len(samples) < minBaselineSamples {
		return Baseline{}, false
	}

	filtered := dropIQROutliers(samples)
	if len(filtered) < minFilteredSamples {
		return Baseline{}, false
	}

	m := meanOf(filtered)
	std := stdDevOf(filtered, m)
	sigma := sigmaFor(sensitivity)

	lower := math.Max(0, m-sigma*std)
	upper := m + sigma*std

	return Baseline{Mean: m, Std: std, Lower: lower, Upper: upper}, true
}

func dropIQROutliers(samples []float64) []float64 {
	sorted := append([]float64(nil), samples...)
	sort.Float64s(sorted)

	q1 := quartile(sorted, 25)
	q3 := quartile(sorted, 75)
	iqr := q3 - q1
	lowFence := q1 - 1.5*iqr
	highFence := q3 + 1.5*iqr

	out := make([]float64, 0, len(sorted))
	for _, v := range sorted {
		if v >= lowFence && v <= highFence {
			out = append(out, v)
		}
	}
	return out
}

// quartile uses the same floor-index percentile definition §4.8 gives
// for downsampling, applied here to the IQR fence calculation.
func quartile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	idx := int(math.Floor(float64(n) * p / 100))
	if idx >= n {
		idx = n - 1
	}
	return sorted[idx]
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stdDevOf(values []float64, m float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sumSq float64
	for _, v := range values {
		d := v - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}
