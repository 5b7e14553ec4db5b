package model

import "fmt"

// MaxBatchMetrics bounds the number of metrics a single MetricBatch may
// carry, per the ingest envelope invariant.
const MaxBatchMetrics = 1000

// MetricBatch is the envelope an agent submits to the ingest API. The
// envelope's ServiceName is the log-bus partition key for every metric
// it carries.
type MetricBatch struct {
	ServiceName  string   `json:"service_name"`
	Environment  string   `json:"environment"`
	AgentVersion string   `json:"agent_version"`
	Metrics      []Metric `json:"metrics"`
}

// Validate checks the envelope invariants. Per-metric validation is the
// caller's responsibility (the ingest pipeline validates and tallies
// each metric independently so a batch can be partially accepted).
func (b MetricBatch) Validate() error {
	if b.ServiceName == "" {
		return fmt.Errorf("service_name: must not be empty")
	}
	if len(b.Metrics) == 0 {
		return fmt.Errorf("metrics: batch must contain at least one metric")
	}
	if len(b.Metrics) > MaxBatchMetrics {
		return fmt.Errorf("metrics: batch exceeds maximum of %d metrics", MaxBatchMetrics)
	}
	return nil
}
