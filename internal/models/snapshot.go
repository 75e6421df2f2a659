package models

import "time"

// Tags are the optional dimensions attached to an outcome event.
type Tags struct {
	Format string `json:"format,omitempty"`
	Intent string `json:"intent,omitempty"`
}

// RecorderSummary is a consistent view of recorder state at one instant.
// Durations are in seconds; rates are percentages in [0, 100].
type RecorderSummary struct {
	TotalRequests     int64            `json:"total_requests"`
	SuccessCount      int64            `json:"success_count"`
	ErrorCount        int64            `json:"error_count"`
	SuccessRate       float64          `json:"success_rate"`
	ErrorRate         float64          `json:"error_rate"`
	AvgResponseTime   float64          `json:"avg_response_time"`
	P50ResponseTime   float64          `json:"p50_response_time"`
	P95ResponseTime   float64          `json:"p95_response_time"`
	P99ResponseTime   float64          `json:"p99_response_time"`
	WindowSize        int              `json:"window_size"`
	UptimeSeconds     float64          `json:"uptime_seconds"`
	RequestsPerMinute float64          `json:"requests_per_minute"`
	RequestsByFormat  map[string]int64 `json:"requests_by_format"`
	RequestsByIntent  map[string]int64 `json:"requests_by_intent"`
}

// ProbeResult is the outcome of a single probe in one evaluation run.
type ProbeResult struct {
	Status Status  `json:"status"`
	Value  Reading `json:"value,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// HealthReport is the folded result of running every registered probe.
type HealthReport struct {
	Timestamp     time.Time              `json:"timestamp"`
	Checks        map[string]ProbeResult `json:"checks"`
	Order         []string               `json:"-"`
	OverallStatus Status                 `json:"overall_status"`
}

// SystemReadings groups host and process gauges sampled for a snapshot.
// A gauge that could not be read is left nil and described in Errors.
type SystemReadings struct {
	CPU     *ScalarReading    `json:"cpu,omitempty"`
	Memory  *UsageReading     `json:"memory,omitempty"`
	Disk    *UsageReading     `json:"disk,omitempty"`
	Network *NetworkReading   `json:"network,omitempty"`
	Process *ProcessReading   `json:"process,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// Snapshot is one immutable collection of gauges, recorder summary and
// health results.
type Snapshot struct {
	ID          string          `json:"id"`
	Timestamp   time.Time       `json:"timestamp"`
	System      SystemReadings  `json:"system"`
	Application RecorderSummary `json:"application"`
	Health      HealthReport    `json:"health"`
}
