// Package model defines the typed, schema-validated records that flow
// through the Vantage data plane: metrics, batches, traces, spans,
// alerts and the query log. Every invariant named in the specification
// is enforced here, once, so downstream components (bus, store,
// executor) can trust a model.Metric without re-validating it.
package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"
)

// Kind enumerates the metric shapes the system accepts on ingest.
// Downsampled rows keep the Kind of their source samples and are marked
// by Metric.Aggregated instead.
type Kind string

const (
	KindCounter   Kind = "counter"
	KindGauge     Kind = "gauge"
	KindHistogram Kind = "histogram"
)

const (
	maxServiceNameLen = 255
	maxMetricNameLen  = 255
	maxEndpointLen    = 500
	maxMethodLen      = 10
)

// Tags is a first-class string-to-string map, resolving the spec's open
// question on tag-map storage: a typed value round-tripping through a
// single JSONB column rather than an untyped dict.
type Tags map[string]string

// Value implements driver.Valuer so Tags can be written to a JSONB
// column directly by database/sql.
func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		return "{}", nil
	}
	b, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner, the read-side half of the round trip.
func (t *Tags) Scan(src any) error {
	if src == nil {
		*t = Tags{}
		return nil
	}

	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("model: cannot scan %T into Tags", src)
	}

	if len(raw) == 0 {
		*t = Tags{}
		return nil
	}

	out := make(Tags)
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("model: invalid tags json: %w", err)
	}
	*t = out
	return nil
}

// DownsampleFacet carries the percentile-bearing summary fields that
// only ever appear together on an aggregated metric.
type DownsampleFacet struct {
	ResolutionMinutes int
	Min               float64
	Max               float64
	P50               float64
	P95               float64
	P99               float64
	SampleCount       int
	ErrorCount        int
}

// Metric is the immutable sample unit of the system.
type Metric struct {
	Timestamp   time.Time
	ServiceName string
	MetricName  string
	Kind        Kind
	Value       float64

	// HTTP facet, optional.
	Endpoint   string
	Method     string
	StatusCode int
	DurationMs float64

	Tags Tags

	TraceID string
	SpanID  string

	// Downsampling facet, only set when Aggregated is true.
	Aggregated bool
	Downsample *DownsampleFacet
}

var identifierErr = errors.New("must be a non-empty identifier-like string")

// Validate enforces every §3 invariant on a single metric. now is
// injected so callers (and tests) control the clock instead of the
// validator reaching for time.Now() itself.
func (m Metric) Validate(now time.Time) error {
	if m.ServiceName == "" || len(m.ServiceName) > maxServiceNameLen {
		return fmt.Errorf("service_name: %w", identifierErr)
	}
	if m.MetricName == "" || len(m.MetricName) > maxMetricNameLen {
		return fmt.Errorf("metric_name: %w", identifierErr)
	}

	switch m.Kind {
	case KindCounter, KindGauge, KindHistogram:
	default:
		return fmt.Errorf("kind: unsupported metric kind %q", m.Kind)
	}

	if math.IsNaN(m.Value) || math.IsInf(m.Value, 0) {
		return errors.New("value: must be a finite number")
	}

	lowerBound := now.Add(-7 * 24 * time.Hour)
	upperBound := now.Add(1 * time.Hour)
	if m.Timestamp.Before(lowerBound) || m.Timestamp.After(upperBound) {
		return fmt.Errorf("timestamp: %v is outside the allowed window [%v, %v]", m.Timestamp, lowerBound, upperBound)
	}

	if len(m.Endpoint) > maxEndpointLen {
		return errors.New("endpoint: exceeds maximum length")
	}
	if len(m.Method) > maxMethodLen {
		return errors.New("method: exceeds maximum length")
	}
	if m.StatusCode < 0 || m.StatusCode > 999 {
		return errors.New("status_code: must be between 0 and 999")
	}
	if m.DurationMs < 0 {
		return errors.New("duration_ms: must be non-negative")
	}

	if m.Aggregated {
		if m.Downsample == nil {
			return errors.New("aggregated metric missing downsample facet")
		}
	} else if m.Downsample != nil {
		return errors.New("raw metric must not carry a downsample facet")
	}

	return nil
}

