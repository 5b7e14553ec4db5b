package store

// Table and column whitelists shared between the Postgres repository and
// the VQL validator (C11), so the query language's injection defense and
// the store's actual schema can never silently drift apart.

const (
	TableMetrics = "metrics"
	TableTraces  = "traces"
	TableSpans   = "spans"
	TableAlerts  = "alerts"
)

// AllowedTables is the VQL FROM-clause whitelist (§4.10).
var AllowedTables = map[string]bool{
	TableMetrics: true,
	TableTraces:  true,
	TableSpans:   true,
	TableAlerts:  true,
}

// AllowedColumns enumerates queryable columns per table, matching §3's
// field lists.
var AllowedColumns = map[string]map[string]bool{
	TableMetrics: set(
		"timestamp", "service_name", "metric_name", "kind", "value",
		"endpoint", "method", "status_code", "duration_ms",
		"trace_id", "span_id", "aggregated", "resolution_minutes",
		"min", "max", "p50", "p95", "p99", "sample_count", "error_count",
	),
	TableTraces: set(
		"trace_id", "service_name", "start_time", "end_time",
		"duration_ms", "status", "error_flag",
	),
	TableSpans: set(
		"span_id", "trace_id", "parent_span_id", "service_name",
		"operation_name", "start_time", "end_time", "duration_ms",
		"status", "error_flag",
	),
	TableAlerts: set(
		"alert_id", "service_name", "metric_name", "severity", "status",
		"message", "current_value", "expected_min", "expected_max",
		"breach_count", "first_triggered", "last_triggered", "resolved_at",
	),
}

func set(cols ...string) map[string]bool {
	m := make(map[string]bool, len(cols))
	for _, c := range cols {
		m[c] = true
	}
	return m
}
