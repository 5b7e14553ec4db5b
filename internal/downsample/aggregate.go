package downsample

import (
	"sort"
	"time"

	"github.com/vantage-platform/vantage/internal/model"
)

// aggregate buckets raw samples into resolutionMinutes-wide windows and
// emits one aggregated model.Metric per non-empty bucket. Buckets with
// zero samples never appear since they're only created from real data.
func aggregate(samples []model.Metric, resolutionMinutes int) []model.Metric {
	if len(samples) == 0 || resolutionMinutes <= 0 {
		return nil
	}

	bucketWidth := time.Duration(resolutionMinutes) * time.Minute
	buckets := make(map[int64][]model.Metric)
	var order []int64

	for _, s := range samples {
		edge := bucketEdge(s.Timestamp, bucketWidth)
		if _, ok := buckets[edge]; !ok {
			order = append(order, edge)
		}
		buckets[edge] = append(buckets[edge], s)
	}

	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	out := make([]model.Metric, 0, len(order))
	for _, edge := range order {
		out = append(out, summarizeBucket(buckets[edge], time.UnixMilli(edge), resolutionMinutes))
	}
	return out
}

// bucketEdge returns the bucket's lower-edge timestamp in unix millis:
// floor(t / resolution_ms) * resolution_ms.
func bucketEdge(t time.Time, width time.Duration) int64 {
	widthMs := width.Milliseconds()
	return (t.UnixMilli() / widthMs) * widthMs
}

func summarizeBucket(samples []model.Metric, bucketStart time.Time, resolutionMinutes int) model.Metric {
	values := make([]float64, len(samples))
	errCount := 0
	for i, s := range samples {
		values[i] = s.Value
		if s.StatusCode >= 500 {
			errCount++
		}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	first := samples[0]
	return model.Metric{
		Timestamp:   bucketStart,
		ServiceName: first.ServiceName,
		MetricName:  first.MetricName,
		Kind:        first.Kind,
		Value:       mean(values),
		Aggregated:  true,
		Downsample: &model.DownsampleFacet{
			ResolutionMinutes: resolutionMinutes,
			Min:               sorted[0],
			Max:               sorted[len(sorted)-1],
			P50:               Percentile(sorted, 50),
			P95:               Percentile(sorted, 95),
			P99:               Percentile(sorted, 99),
			SampleCount:       len(samples),
			ErrorCount:        errCount,
		},
	}
}
