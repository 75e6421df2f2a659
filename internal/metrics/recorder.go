package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/miradorstack/docrouter-health/internal/models"
)

// SummarySource is anything that can produce a recorder summary on demand.
type SummarySource interface {
	Summary() models.RecorderSummary
}

// RecorderCollector exposes live recorder statistics at scrape time.
type RecorderCollector struct {
	source SummarySource

	requests    *prometheus.Desc
	errors      *prometheus.Desc
	latency     *prometheus.Desc
	avgLatency  *prometheus.Desc
	errorRate   *prometheus.Desc
	perMinute   *prometheus.Desc
	byFormat    *prometheus.Desc
	byIntent    *prometheus.Desc
	uptime      *prometheus.Desc
	windowCount *prometheus.Desc
}

// NewRecorderCollector builds a collector reading from source.
func NewRecorderCollector(source SummarySource) *RecorderCollector {
	ns := "docrouter"
	return &RecorderCollector{
		source:      source,
		requests:    prometheus.NewDesc(prometheus.BuildFQName(ns, "", "requests_total"), "Total number of requests.", nil, nil),
		errors:      prometheus.NewDesc(prometheus.BuildFQName(ns, "", "request_errors_total"), "Total number of failed requests.", nil, nil),
		latency:     prometheus.NewDesc(prometheus.BuildFQName(ns, "", "response_time_seconds"), "Response time percentiles over the rolling window.", []string{"percentile"}, nil),
		avgLatency:  prometheus.NewDesc(prometheus.BuildFQName(ns, "", "response_time_avg_seconds"), "Mean response time over the rolling window.", nil, nil),
		errorRate:   prometheus.NewDesc(prometheus.BuildFQName(ns, "", "error_rate_percent"), "Failed requests as a percentage of all requests.", nil, nil),
		perMinute:   prometheus.NewDesc(prometheus.BuildFQName(ns, "", "requests_per_minute"), "Requests per minute averaged over uptime.", nil, nil),
		byFormat:    prometheus.NewDesc(prometheus.BuildFQName(ns, "", "requests_by_format_total"), "Requests partitioned by document format.", []string{"format"}, nil),
		byIntent:    prometheus.NewDesc(prometheus.BuildFQName(ns, "", "requests_by_intent_total"), "Requests partitioned by classified intent.", []string{"intent"}, nil),
		uptime:      prometheus.NewDesc(prometheus.BuildFQName(ns, "", "uptime_seconds"), "Seconds since the recorder started or was reset.", nil, nil),
		windowCount: prometheus.NewDesc(prometheus.BuildFQName(ns, "", "latency_window_samples"), "Samples currently held in the latency window.", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *RecorderCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.requests
	ch <- c.errors
	ch <- c.latency
	ch <- c.avgLatency
	ch <- c.errorRate
	ch <- c.perMinute
	ch <- c.byFormat
	ch <- c.byIntent
	ch <- c.uptime
	ch <- c.windowCount
}

// Collect implements prometheus.Collector.
func (c *RecorderCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.source.Summary()

	ch <- prometheus.MustNewConstMetric(c.requests, prometheus.CounterValue, float64(s.TotalRequests))
	ch <- prometheus.MustNewConstMetric(c.errors, prometheus.CounterValue, float64(s.ErrorCount))
	ch <- prometheus.MustNewConstMetric(c.latency, prometheus.GaugeValue, s.P50ResponseTime, "50")
	ch <- prometheus.MustNewConstMetric(c.latency, prometheus.GaugeValue, s.P95ResponseTime, "95")
	ch <- prometheus.MustNewConstMetric(c.latency, prometheus.GaugeValue, s.P99ResponseTime, "99")
	ch <- prometheus.MustNewConstMetric(c.avgLatency, prometheus.GaugeValue, s.AvgResponseTime)
	ch <- prometheus.MustNewConstMetric(c.errorRate, prometheus.GaugeValue, s.ErrorRate)
	ch <- prometheus.MustNewConstMetric(c.perMinute, prometheus.GaugeValue, s.RequestsPerMinute)
	for format, n := range s.RequestsByFormat {
		ch <- prometheus.MustNewConstMetric(c.byFormat, prometheus.CounterValue, float64(n), format)
	}
	for intent, n := range s.RequestsByIntent {
		ch <- prometheus.MustNewConstMetric(c.byIntent, prometheus.CounterValue, float64(n), intent)
	}
	ch <- prometheus.MustNewConstMetric(c.uptime, prometheus.GaugeValue, s.UptimeSeconds)
	ch <- prometheus.MustNewConstMetric(c.windowCount, prometheus.GaugeValue, float64(s.WindowSize))
}
