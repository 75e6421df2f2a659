// Package health runs named probes against threshold policies and folds the
// per-probe outcomes into one overall status.
package health

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/miradorstack/docrouter-health/internal/models"
)

type registration struct {
	probe      Probe
	threshold  Threshold
	lastStatus models.Status
	lastValue  models.Reading
}

// Evaluator is a registry of health probes. Registration may happen at any
// time; a RunAll already in progress evaluates the probes present when it
// started.
type Evaluator struct {
	logger *slog.Logger

	mu     sync.RWMutex
	order  []string
	probes map[string]*registration

	now func() time.Time
}

// NewEvaluator creates an empty evaluator.
func NewEvaluator(logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{
		logger: logger,
		probes: make(map[string]*registration),
		now:    time.Now,
	}
}

// Register adds or replaces a named probe. A replaced probe keeps its
// position in the evaluation order but loses its cached last result.
func (e *Evaluator) Register(name string, probe Probe, threshold Threshold) error {
	if name == "" {
		return errors.New("probe name is required")
	}
	if probe == nil {
		return fmt.Errorf("probe %q is nil", name)
	}
	if err := threshold.Validate(); err != nil {
		return fmt.Errorf("probe %q: %w", name, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.probes[name]; !exists {
		e.order = append(e.order, name)
	}
	e.probes[name] = &registration{probe: probe, threshold: threshold}
	return nil
}

// Names returns registered probe names in evaluation order.
func (e *Evaluator) Names() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]string(nil), e.order...)
}

// Last returns the cached result of the most recent successful run of name.
func (e *Evaluator) Last(name string) (models.ProbeResult, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	reg, ok := e.probes[name]
	if !ok || reg.lastStatus == "" {
		return models.ProbeResult{}, false
	}
	return models.ProbeResult{Status: reg.lastStatus, Value: reg.lastValue}, true
}

// RunAll invokes every probe sequentially. A probe that errors or panics is
// reported with StatusError and forces the overall status to unhealthy; the
// remaining probes still run.
func (e *Evaluator) RunAll(ctx context.Context) models.HealthReport {
	type pending struct {
		name string
		reg  *registration
	}

	e.mu.RLock()
	batch := make([]pending, 0, len(e.order))
	for _, name := range e.order {
		batch = append(batch, pending{name: name, reg: e.probes[name]})
	}
	e.mu.RUnlock()

	report := models.HealthReport{
		Timestamp:     e.now().UTC(),
		Checks:        make(map[string]models.ProbeResult, len(batch)),
		Order:         make([]string, 0, len(batch)),
		OverallStatus: models.StatusHealthy,
	}

	for _, p := range batch {
		value, err := readProbe(ctx, p.reg.probe)
		if err != nil {
			e.logger.Warn("health probe failed", slog.String("probe", p.name), slog.Any("error", err))
			report.Checks[p.name] = models.ProbeResult{Status: models.StatusError, Error: err.Error()}
			report.Order = append(report.Order, p.name)
			report.OverallStatus = models.StatusUnhealthy
			continue
		}

		status := Evaluate(value, p.reg.threshold)
		report.Checks[p.name] = models.ProbeResult{Status: status, Value: value}
		report.Order = append(report.Order, p.name)
		report.OverallStatus = report.OverallStatus.Worse(status)

		e.mu.Lock()
		// skip the cache update if the probe was replaced mid-run
		if e.probes[p.name] == p.reg {
			p.reg.lastStatus = status
			p.reg.lastValue = value
		}
		e.mu.Unlock()
	}

	if report.OverallStatus == models.StatusError {
		report.OverallStatus = models.StatusUnhealthy
	}
	return report
}

// OverallStatus runs every probe and returns only the folded status.
func (e *Evaluator) OverallStatus(ctx context.Context) models.Status {
	return e.RunAll(ctx).OverallStatus
}

func readProbe(ctx context.Context, probe Probe) (value models.Reading, err error) {
	defer func() {
		if r := recover(); r != nil {
			value = nil
			err = fmt.Errorf("probe panicked: %v", r)
		}
	}()
	return probe.Read(ctx)
}
