package collector

import (
	"context"
	"strings"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"

	"github.com/miradorstack/docrouter-health/internal/models"
	"github.com/miradorstack/docrouter-health/internal/utils"
)

// ExportLineMetrics renders the headline application and host figures in the
// Prometheus text format, one family per metric in a fixed order.
func (c *Collector) ExportLineMetrics(ctx context.Context) (string, error) {
	const op = "collector.line_metrics"

	var summary models.RecorderSummary
	if c.recorder != nil {
		summary = c.recorder.Summary()
	}

	var cpuPct, memPct float64
	if c.gauges != nil {
		cpu, err := c.gauges.CPUPercent(ctx)
		if err != nil {
			return "", utils.NewAppError(op, "read cpu gauge", err)
		}
		mem, err := c.gauges.Memory(ctx)
		if err != nil {
			return "", utils.NewAppError(op, "read memory gauge", err)
		}
		cpuPct, memPct = cpu.Scalar(), mem.Scalar()
	}

	families := []*dto.MetricFamily{
		counterFamily("requests_total", "Total number of requests", float64(summary.TotalRequests)),
		counterFamily("requests_success", "Total number of successful requests", float64(summary.SuccessCount)),
		counterFamily("requests_error", "Total number of failed requests", float64(summary.ErrorCount)),
		gaugeFamily("response_time_avg", "Average response time in seconds", summary.AvgResponseTime),
		gaugeFamily("cpu_usage_percent", "CPU usage percentage", cpuPct),
		gaugeFamily("memory_usage_percent", "Memory usage percentage", memPct),
	}

	var b strings.Builder
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(&b, mf); err != nil {
			return "", utils.NewAppError(op, "encode "+mf.GetName(), err)
		}
	}
	return b.String(), nil
}

func counterFamily(name, help string, value float64) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name: proto.String(name),
		Help: proto.String(help),
		Type: dto.MetricType_COUNTER.Enum(),
		Metric: []*dto.Metric{
			{Counter: &dto.Counter{Value: proto.Float64(value)}},
		},
	}
}

func gaugeFamily(name, help string, value float64) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name: proto.String(name),
		Help: proto.String(help),
		Type: dto.MetricType_GAUGE.Enum(),
		Metric: []*dto.Metric{
			{Gauge: &dto.Gauge{Value: proto.Float64(value)}},
		},
	}
}
