package collector

import (
	"context"
	"fmt"

	"github.com/miradorstack/docrouter-health/internal/config"
	"github.com/miradorstack/docrouter-health/internal/gauges"
	"github.com/miradorstack/docrouter-health/internal/health"
	"github.com/miradorstack/docrouter-health/internal/models"
)

// Host probe names.
const (
	ProbeCPU    = "cpu_usage"
	ProbeMemory = "memory_usage"
	ProbeDisk   = "disk_usage"
)

// DefaultThresholds are applied to host probes that have no configured bounds.
func DefaultThresholds() map[string]health.Threshold {
	return map[string]health.Threshold{
		ProbeCPU:    health.Bounds(70, 90),
		ProbeMemory: health.Bounds(80, 95),
		ProbeDisk:   health.Bounds(80, 95),
	}
}

// RegisterHostProbes registers the cpu, memory and disk probes backed by gp.
// During Collect the probes reuse the readings the collector already took
// from gp instead of reading the gauges a second time.
// Entries in overrides replace the default bounds for the same probe name.
func RegisterHostProbes(ev *health.Evaluator, gp gauges.Provider, overrides map[string]config.ProbeThreshold) error {
	thresholds := DefaultThresholds()
	for name, t := range overrides {
		if _, ok := thresholds[name]; ok {
			thresholds[name] = health.Threshold{Warning: t.Warning, Max: t.Max}
		}
	}

	probes := []struct {
		name  string
		probe health.Probe
	}{
		{ProbeCPU, health.ProbeFunc(func(ctx context.Context) (models.Reading, error) {
			if hr, ok := cachedReadings(ctx, gp); ok {
				return hr.cpu()
			}
			return gp.CPUPercent(ctx)
		})},
		{ProbeMemory, health.ProbeFunc(func(ctx context.Context) (models.Reading, error) {
			if hr, ok := cachedReadings(ctx, gp); ok {
				return hr.memory()
			}
			return gp.Memory(ctx)
		})},
		{ProbeDisk, health.ProbeFunc(func(ctx context.Context) (models.Reading, error) {
			if hr, ok := cachedReadings(ctx, gp); ok {
				return hr.disk()
			}
			return gp.Disk(ctx)
		})},
	}

	for _, p := range probes {
		if err := ev.Register(p.name, p.probe, thresholds[p.name]); err != nil {
			return fmt.Errorf("register %s: %w", p.name, err)
		}
	}
	return nil
}
