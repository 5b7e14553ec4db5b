// Package promreg implements observability.Metrics on top of a
// prometheus.Registry, grounded on the teacher's use of
// promhttp.Handler() in pkg/http_server/chi_server/server.go.
package promreg

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vantage-platform/vantage/pkg/observability"
)

// Provider owns a dedicated prometheus.Registry, exposed through
// Registry(), so every binary can serve its own independent /metrics
// endpoint instead of relying on the global default registry. It does
// not serve HTTP itself.
type Provider struct {
	registry *prometheus.Registry

	mu         sync.Mutex
	counters   map[string]*prometheus.CounterVec
	histograms map[string]*prometheus.HistogramVec
	gauges     map[string]*prometheus.GaugeVec
}

func New() *Provider {
	return &Provider{
		registry:   prometheus.NewRegistry(),
		counters:   make(map[string]*prometheus.CounterVec),
		histograms: make(map[string]*prometheus.HistogramVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
	}
}

// Registry exposes the underlying registry for promhttp.HandlerFor.
func (p *Provider) Registry() *prometheus.Registry { return p.registry }

func (p *Provider) Counter(name, help string) observability.Counter {
	p.mu.Lock()
	defer p.mu.Unlock()

	vec, ok := p.counters[name]
	if !ok {
		vec = prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help}, []string{"label"})
		p.registry.MustRegister(vec)
		p.counters[name] = vec
	}
	return &counter{vec: vec}
}

func (p *Provider) Histogram(name, help string, buckets []float64) observability.Histogram {
	p.mu.Lock()
	defer p.mu.Unlock()

	vec, ok := p.histograms[name]
	if !ok {
		if len(buckets) == 0 {
			buckets = prometheus.DefBuckets
		}
		vec = prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: name, Help: help, Buckets: buckets}, []string{"label"})
		p.registry.MustRegister(vec)
		p.histograms[name] = vec
	}
	return &histogram{vec: vec}
}

func (p *Provider) Gauge(name, help string) observability.Gauge {
	p.mu.Lock()
	defer p.mu.Unlock()

	vec, ok := p.gauges[name]
	if !ok {
		vec = prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: name, Help: help}, []string{"label"})
		p.registry.MustRegister(vec)
		p.gauges[name] = vec
	}
	return &gauge{vec: vec}
}

type counter struct{ vec *prometheus.CounterVec }

func (c *counter) Add(value float64, labels ...string) { c.vec.WithLabelValues(labelOrEmpty(labels)).Add(value) }
func (c *counter) Inc(labels ...string)                { c.vec.WithLabelValues(labelOrEmpty(labels)).Inc() }

type histogram struct{ vec *prometheus.HistogramVec }

func (h *histogram) Observe(value float64, labels ...string) {
	h.vec.WithLabelValues(labelOrEmpty(labels)).Observe(value)
}

type gauge struct{ vec *prometheus.GaugeVec }

func (g *gauge) Set(value float64, labels ...string) { g.vec.WithLabelValues(labelOrEmpty(labels)).Set(value) }
func (g *gauge) Add(delta float64, labels ...string)  { g.vec.WithLabelValues(labelOrEmpty(labels)).Add(delta) }

func labelOrEmpty(labels []string) string {
	if len(labels) == 0 {
		return ""
	}
	return labels[0]
}
