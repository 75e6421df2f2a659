package models

// Reading is a point-in-time gauge value produced by a probe. Composite
// readings reduce to their percent-like field; readings without one report 0.
type Reading interface {
	Scalar() float64
}

// ScalarReading is a single numeric gauge such as CPU percent.
type ScalarReading float64

// Scalar returns the reading itself.
func (r ScalarReading) Scalar() float64 { return float64(r) }

// UsageReading describes a capacity-bound resource (memory, disk) in GB.
type UsageReading struct {
	TotalGB     float64 `json:"total"`
	UsedGB      float64 `json:"used"`
	FreeGB      float64 `json:"free,omitempty"`
	AvailableGB float64 `json:"available,omitempty"`
	Percent     float64 `json:"percent"`
}

// Scalar returns the used percentage.
func (r UsageReading) Scalar() float64 { return r.Percent }

// NetworkReading carries cumulative interface counters.
type NetworkReading struct {
	BytesSent   uint64 `json:"bytes_sent"`
	BytesRecv   uint64 `json:"bytes_recv"`
	PacketsSent uint64 `json:"packets_sent"`
	PacketsRecv uint64 `json:"packets_recv"`
}

// Scalar is always 0; network counters have no percent field.
func (NetworkReading) Scalar() float64 { return 0 }

// ProcessReading describes the current process.
type ProcessReading struct {
	PID        int32   `json:"pid"`
	CPUPercent float64 `json:"cpu_percent"`
	MemoryMB   float64 `json:"memory_mb"`
	Threads    int32   `json:"threads"`
	Status     string  `json:"status"`
}

// Scalar is always 0. Process probes should be registered without thresholds.
func (ProcessReading) Scalar() float64 { return 0 }
