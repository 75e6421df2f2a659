package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/miradorstack/docrouter-health/internal/models"
)

const (
	// OutcomeSuccess labels successful exports.
	OutcomeSuccess = "success"
	// OutcomeError labels failed exports.
	OutcomeError = "error"
)

var (
	snapshotsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "docrouter_health",
			Name:      "snapshots_total",
			Help:      "Total number of snapshots collected.",
		},
	)

	collectionDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "docrouter_health",
			Name:      "collection_seconds",
			Help:      "Snapshot collection latency in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 1.5, 2, 3, 5},
		},
	)

	exportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docrouter_health",
			Name:      "exports_total",
			Help:      "Structured snapshot exports, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	probeFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docrouter_health",
			Name:      "probe_failures_total",
			Help:      "Health probes that returned an error, partitioned by probe.",
		},
		[]string{"probe"},
	)

	probeStatus = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "docrouter_health",
			Name:      "probe_status",
			Help:      "Latest probe severity: 0 healthy, 1 degraded, 2 unhealthy or error.",
		},
		[]string{"probe"},
	)

	overallStatus = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "docrouter_health",
			Name:      "overall_status",
			Help:      "Folded health severity: 0 healthy, 1 degraded, 2 unhealthy.",
		},
	)
)

// Register attaches docrouter-health collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer, extra ...prometheus.Collector) error {
	collectors := []prometheus.Collector{
		snapshotsTotal,
		collectionDurationSeconds,
		exportsTotal,
		probeFailuresTotal,
		probeStatus,
		overallStatus,
	}
	collectors = append(collectors, extra...)

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveSnapshot records one collection and the health results it carried.
func ObserveSnapshot(duration time.Duration, report models.HealthReport) {
	snapshotsTotal.Inc()
	if duration < 0 {
		duration = 0
	}
	collectionDurationSeconds.Observe(duration.Seconds())

	for name, result := range report.Checks {
		probeStatus.WithLabelValues(name).Set(float64(result.Status.Severity()))
		if result.Status == models.StatusError {
			probeFailuresTotal.WithLabelValues(name).Inc()
		}
	}
	overallStatus.Set(float64(report.OverallStatus.Severity()))
}

// ObserveExport records a structured export outcome label.
func ObserveExport(outcome string) {
	label := outcome
	if label != OutcomeError {
		label = OutcomeSuccess
	}
	exportsTotal.WithLabelValues(label).Inc()
}
