package collector

import (
	"context"

	"github.com/miradorstack/docrouter-health/internal/gauges"
	"github.com/miradorstack/docrouter-health/internal/models"
)

// Gauge names used in SystemReadings.Errors.
const (
	gaugeCPU    = "cpu"
	gaugeMemory = "memory"
	gaugeDisk   = "disk"
)

// hostReadings is the set of gauge values taken once per Collect. The host
// checks consult it so a snapshot's system section and health section agree.
type hostReadings struct {
	source gauges.Provider
	system models.SystemReadings
	errs   map[string]error
}

type hostReadingsKey struct{}

func withHostReadings(ctx context.Context, hr *hostReadings) context.Context {
	return context.WithValue(ctx, hostReadingsKey{}, hr)
}

// cachedReadings returns the readings attached to ctx when they were taken
// from gp.
func cachedReadings(ctx context.Context, gp gauges.Provider) (*hostReadings, bool) {
	hr, ok := ctx.Value(hostReadingsKey{}).(*hostReadings)
	if !ok || hr.source != gp {
		return nil, false
	}
	return hr, true
}

func (hr *hostReadings) cpu() (models.Reading, error) {
	if err := hr.errs[gaugeCPU]; err != nil {
		return nil, err
	}
	return *hr.system.CPU, nil
}

func (hr *hostReadings) memory() (models.Reading, error) {
	if err := hr.errs[gaugeMemory]; err != nil {
		return nil, err
	}
	return *hr.system.Memory, nil
}

func (hr *hostReadings) disk() (models.Reading, error) {
	if err := hr.errs[gaugeDisk]; err != nil {
		return nil, err
	}
	return *hr.system.Disk, nil
}
