package model

import "time"

// Severity ranks how far a breach deviates from the expected baseline.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// AlertStatus is the C10 state-machine's two observable states.
type AlertStatus string

const (
	AlertFiring   AlertStatus = "firing"
	AlertResolved AlertStatus = "resolved"
)

// Alert is the persisted record of a threshold breach. At most one
// firing alert exists per (ServiceName, MetricName) at any time.
type Alert struct {
	AlertID        string
	ServiceName    string
	MetricName     string
	Severity       Severity
	Status         AlertStatus
	Message        string
	CurrentValue   float64
	ExpectedMin    float64
	ExpectedMax    float64
	BreachCount    int
	FirstTriggered time.Time
	LastTriggered  time.Time
	ResolvedAt     *time.Time
}

// QueryLog records every read served, including direct timeseries
// reads, so the downsampling importance scorer never has a blind spot.
// The store assigns QueryID when the row is appended. The VQL executor
// (C12) sets QueryText, RowCount, Error and Source "vql"; direct
// timeseries reads set RowCount and Source "direct" and leave QueryText
// and Error empty.
type QueryLog struct {
	QueryID     string
	ServiceName string
	MetricName  string
	Timestamp   time.Time
	DurationMs  float64
	QueryText   string
	RowCount    int
	Error       string
	Source      string
}
