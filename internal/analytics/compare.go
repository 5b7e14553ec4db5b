// Package analytics is C13: the comparison and health-score endpoints
// the query API exposes on top of raw timeseries data.
package analytics

import (
	"math"
	"sort"
	"strings"
)

const (
	minCompareSamples  = 10
	significanceT      = 2.0
	compareThresholdPc = 5.0
	minP95Samples      = 20
)

// Verdict is the comparison's headline classification.
type Verdict string

const (
	VerdictBetter           Verdict = "better"
	VerdictWorse            Verdict = "worse"
	VerdictNeutral          Verdict = "neutral"
	VerdictInsufficientData Verdict = "insufficient_data"
)

// Comparison is the result of comparing a baseline vector A against a
// candidate vector B for the same metric. BaselineP95/CandidateP95 are
// nil when their source vector has too few samples for a stable tail
// estimate, mirroring the average-always/p95-sometimes split the
// original comparison engine returns to callers.
type Comparison struct {
	Verdict       Verdict
	ChangePercent float64
	Significant   bool
	Confidence    float64
	BaselineMean  float64
	CandidateMean float64
	BaselineP95   *float64
	CandidateP95  *float64
}

// Compare implements §4.11's comparison algorithm. metricName drives
// the latency-like/error-like "lower is better" classification.
func Compare(metricName string, a, b []float64) Comparison {
	if len(a) < minCompareSamples || len(b) < minCompareSamples {
		return Comparison{Verdict: VerdictInsufficientData}
	}

	meanA, meanB := mean(a), mean(b)
	changePercent := 0.0
	if meanA != 0 {
		changePercent = 100 * (meanB - meanA) / meanA
	}

	se := math.Sqrt(variance(a, meanA)/float64(len(a)) + variance(b, meanB)/float64(len(b)))
	var tStat float64
	if se != 0 {
		tStat = math.Abs(meanB-meanA) / se
	} else if meanB != meanA {
		tStat = math.Inf(1)
	}
	significant := tStat > significanceT

	lowerIsBetter := isLowerBetter(metricName)

	descriptive := func(c Comparison) Comparison {
		c.BaselineMean = meanA
		c.CandidateMean = meanB
		c.BaselineP95 = p95IfEnough(a)
		c.CandidateP95 = p95IfEnough(b)
		return c
	}

	if !significant {
		return descriptive(Comparison{Verdict: VerdictNeutral, ChangePercent: changePercent, Significant: false, Confidence: 0.5})
	}

	improved := changePercent < 0
	if !lowerIsBetter {
		improved = changePercent > 0
	}

	beyondThreshold := math.Abs(changePercent) > compareThresholdPc

	if !beyondThreshold {
		return descriptive(Comparison{Verdict: VerdictNeutral, ChangePercent: changePercent, Significant: true, Confidence: 0.7})
	}
	if improved {
		return descriptive(Comparison{Verdict: VerdictBetter, ChangePercent: changePercent, Significant: true, Confidence: 0.9})
	}
	return descriptive(Comparison{Verdict: VerdictWorse, ChangePercent: changePercent, Significant: true, Confidence: 0.9})
}

// p95IfEnough returns the 95th percentile of values, or nil when there
// are too few samples (minP95Samples) for the estimate to be stable.
func p95IfEnough(values []float64) *float64 {
	if len(values) <= minP95Samples {
		return nil
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	idx := int(math.Floor(float64(len(sorted)) * 95 / 100))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	v := sorted[idx]
	return &v
}

var lowerIsBetterTerms = []string{"latency", "duration", "time", "delay", "error"}

func isLowerBetter(metricName string) bool {
	lower := strings.ToLower(metricName)
	for _, term := range lowerIsBetterTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func variance(values []float64, m float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sumSq float64
	for _, v := range values {
		d := v - m
		sumSq += d * d
	}
	return sumSq / float64(len(values))
}
