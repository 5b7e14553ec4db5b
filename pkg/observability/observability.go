// Package observability defines the facade interfaces injected into every
// Vantage component that needs to log or emit metrics. Concrete providers
// live in sibling packages (pkg/logger for zap-backed logging, this
// package's noop subpackage for tests and disabled-observability builds).
package observability

import "context"

// Observability is the single interface injected into application layers.
type Observability interface {
	Logger() Logger
	Metrics() Metrics
}

// Field represents a key-value pair for structured logging.
type Field struct {
	Key   string
	Value any
}

func String(key, value string) Field   { return Field{Key: key, Value: value} }
func Int(key string, value int) Field  { return Field{Key: key, Value: value} }
func Int64(key string, v int64) Field  { return Field{Key: key, Value: v} }
func Float64(key string, v float64) Field {
	return Field{Key: key, Value: v}
}
func Bool(key string, value bool) Field { return Field{Key: key, Value: value} }
func Error(err error) Field             { return Field{Key: "error", Value: err} }
func Any(key string, value any) Field   { return Field{Key: key, Value: value} }
func Duration(key string, v any) Field  { return Field{Key: key, Value: v} }

// Logger provides structured logging with contextual fields.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...Field)
	Info(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)
	With(fields ...Field) Logger
}

// Metrics provides application metrics instruments backed by a Prometheus
// registry.
type Metrics interface {
	Counter(name, help string) Counter
	Histogram(name, help string, buckets []float64) Histogram
	Gauge(name, help string) Gauge
}

// Counter is a monotonically increasing metric.
type Counter interface {
	Add(value float64, labels ...string)
	Inc(labels ...string)
}

// Histogram records a distribution of observed values.
type Histogram interface {
	Observe(value float64, labels ...string)
}

// Gauge is a metric that can increase and decrease.
type Gauge interface {
	Set(value float64, labels ...string)
	Add(delta float64, labels ...string)
}
