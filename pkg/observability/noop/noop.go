// Package noop provides a zero-overhead observability.Observability
// implementation, adapted from the teacher's pkg/observability/noop —
// used in unit tests where wiring a real zap logger is unnecessary.
package noop

import (
	"context"

	"github.com/vantage-platform/vantage/pkg/observability"
)

// Provider is a no-op observability.Observability.
type Provider struct{}

func New() *Provider { return &Provider{} }

func (p *Provider) Logger() observability.Logger   { return noopLogger{} }
func (p *Provider) Metrics() observability.Metrics { return noopMetrics{} }

type noopLogger struct{}

func (noopLogger) Debug(context.Context, string, ...observability.Field) {}
func (noopLogger) Info(context.Context, string, ...observability.Field)  {}
func (noopLogger) Warn(context.Context, string, ...observability.Field)  {}
func (noopLogger) Error(context.Context, string, ...observability.Field) {}
func (l noopLogger) With(...observability.Field) observability.Logger    { return l }

type noopMetrics struct{}

func (noopMetrics) Counter(string, string) observability.Counter { return noopCounter{} }
func (noopMetrics) Histogram(string, string, []float64) observability.Histogram {
	return noopHistogram{}
}
func (noopMetrics) Gauge(string, string) observability.Gauge { return noopGauge{} }

type noopCounter struct{}

func (noopCounter) Add(float64, ...string) {}
func (noopCounter) Inc(...string)          {}

type noopHistogram struct{}

func (noopHistogram) Observe(float64, ...string) {}

type noopGauge struct{}

func (noopGauge) Set(float64, ...string) {}
func (noopGauge) Add(float64, ...string) {}
