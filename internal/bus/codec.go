// Package bus implements the log-bus producer (C2) and consumer (C6)
// wrapping segmentio/kafka-go, adapted from the teacher's
// pkg/messaging/kafka/new_producer.go and new_consumer.go. Unlike the
// teacher's generic pub/sub envelope, Record here is a self-describing
// JSON encoding of a single model.Metric (or, for the trace.span facet,
// a metric carrying trace/span correlation), matching §4.1's
// "self-describing text-or-binary envelope" contract.
package bus

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/vantage-platform/vantage/internal/model"
)

// wireMetric is the JSON payload placed on the bus. Field names are
// the wire contract in §6 ("one JSON object per metric").
type wireMetric struct {
	Timestamp   int64             `json:"timestamp"`
	ServiceName string            `json:"service_name"`
	MetricName  string            `json:"metric_name"`
	Kind        string            `json:"kind"`
	Value       float64           `json:"value"`
	Endpoint    string            `json:"endpoint,omitempty"`
	Method      string            `json:"method,omitempty"`
	StatusCode  int               `json:"status_code,omitempty"`
	DurationMs  float64           `json:"duration_ms,omitempty"`
	Tags        map[string]string `json:"tags,omitempty"`
	TraceID     string            `json:"trace_id,omitempty"`
	SpanID      string            `json:"span_id,omitempty"`

	Aggregated        bool    `json:"aggregated,omitempty"`
	ResolutionMinutes int     `json:"resolution_minutes,omitempty"`
	Min               float64 `json:"min,omitempty"`
	Max               float64 `json:"max,omitempty"`
	P50               float64 `json:"p50,omitempty"`
	P95               float64 `json:"p95,omitempty"`
	P99               float64 `json:"p99,omitempty"`
	SampleCount       int     `json:"sample_count,omitempty"`
	ErrorCount        int     `json:"error_count,omitempty"`
}

// Encode serializes a metric to its wire envelope.
func Encode(m model.Metric) ([]byte, error) {
	w := wireMetric{
		Timestamp:   m.Timestamp.UnixMilli(),
		ServiceName: m.ServiceName,
		MetricName:  m.MetricName,
		Kind:        string(m.Kind),
		Value:       m.Value,
		Endpoint:    m.Endpoint,
		Method:      m.Method,
		StatusCode:  m.StatusCode,
		DurationMs:  m.DurationMs,
		Tags:        map[string]string(m.Tags),
		TraceID:     m.TraceID,
		SpanID:      m.SpanID,
		Aggregated:  m.Aggregated,
	}
	if m.Downsample != nil {
		w.ResolutionMinutes = m.Downsample.ResolutionMinutes
		w.Min = m.Downsample.Min
		w.Max = m.Downsample.Max
		w.P50 = m.Downsample.P50
		w.P95 = m.Downsample.P95
		w.P99 = m.Downsample.P99
		w.SampleCount = m.Downsample.SampleCount
		w.ErrorCount = m.Downsample.ErrorCount
	}

	b, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("bus: encode metric: %w", err)
	}
	return b, nil
}

// Decode parses a wire envelope back into a model.Metric. Deserialization
// failures here are what send a bus record straight to the DLQ with raw
// bytes preserved, per §4.5.
func Decode(raw []byte) (model.Metric, error) {
	var w wireMetric
	if err := json.Unmarshal(raw, &w); err != nil {
		return model.Metric{}, fmt.Errorf("bus: decode metric: %w", err)
	}

	m := model.Metric{
		Timestamp:   time.UnixMilli(w.Timestamp),
		ServiceName: w.ServiceName,
		MetricName:  w.MetricName,
		Kind:        model.Kind(w.Kind),
		Value:       w.Value,
		Endpoint:    w.Endpoint,
		Method:      w.Method,
		StatusCode:  w.StatusCode,
		DurationMs:  w.DurationMs,
		Tags:        model.Tags(w.Tags),
		TraceID:     w.TraceID,
		SpanID:      w.SpanID,
		Aggregated:  w.Aggregated,
	}
	if w.Aggregated {
		m.Downsample = &model.DownsampleFacet{
			ResolutionMinutes: w.ResolutionMinutes,
			Min:               w.Min,
			Max:               w.Max,
			P50:               w.P50,
			P95:               w.P95,
			P99:               w.P99,
			SampleCount:       w.SampleCount,
			ErrorCount:        w.ErrorCount,
		}
	}
	return m, nil
}
