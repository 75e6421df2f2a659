// Package collector combines gauge readings, recorder statistics and health
// results into snapshots, and exports them as JSON files or Prometheus text.
package collector

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/miradorstack/docrouter-health/internal/gauges"
	"github.com/miradorstack/docrouter-health/internal/health"
	"github.com/miradorstack/docrouter-health/internal/models"
	"github.com/miradorstack/docrouter-health/internal/recorder"
	"github.com/miradorstack/docrouter-health/internal/utils"
)

// Collector reads from a recorder, an evaluator and a gauge provider. It holds
// no state of its own beyond those references.
type Collector struct {
	logger    *slog.Logger
	recorder  *recorder.Recorder
	evaluator *health.Evaluator
	gauges    gauges.Provider

	now   func() time.Time
	newID func() string
}

// New wires a collector. gp may be nil, in which case system readings are
// omitted from snapshots.
func New(logger *slog.Logger, rec *recorder.Recorder, ev *health.Evaluator, gp gauges.Provider) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{
		logger:    logger,
		recorder:  rec,
		evaluator: ev,
		gauges:    gp,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Collect takes one snapshot. Gauge failures are reported inside the snapshot
// rather than aborting it.
func (c *Collector) Collect(ctx context.Context) models.Snapshot {
	host := c.readSystem(ctx)
	snap := models.Snapshot{
		ID:        c.newID(),
		Timestamp: c.now().UTC(),
		System:    host.system,
	}
	if host.source != nil {
		ctx = withHostReadings(ctx, host)
	}
	if c.recorder != nil {
		snap.Application = c.recorder.Summary()
	}
	if c.evaluator != nil {
		snap.Health = c.evaluator.RunAll(ctx)
	} else {
		snap.Health = models.HealthReport{
			Timestamp:     snap.Timestamp,
			Checks:        map[string]models.ProbeResult{},
			OverallStatus: models.StatusHealthy,
		}
	}

	c.logger.Debug("snapshot collected",
		slog.String("id", snap.ID),
		slog.String("status", string(snap.Health.OverallStatus)),
		slog.Int64("requests", snap.Application.TotalRequests),
	)
	return snap
}

func (c *Collector) readSystem(ctx context.Context) *hostReadings {
	out := &hostReadings{source: c.gauges}
	if c.gauges == nil {
		return out
	}

	fail := func(gauge string, err error) {
		if out.errs == nil {
			out.errs = make(map[string]error)
			out.system.Errors = make(map[string]string)
		}
		out.errs[gauge] = err
		out.system.Errors[gauge] = err.Error()
		c.logger.Warn("gauge read failed", slog.String("gauge", gauge), slog.Any("error", err))
	}

	if v, err := c.gauges.CPUPercent(ctx); err != nil {
		fail(gaugeCPU, err)
	} else {
		out.system.CPU = &v
	}
	if v, err := c.gauges.Memory(ctx); err != nil {
		fail(gaugeMemory, err)
	} else {
		out.system.Memory = &v
	}
	if v, err := c.gauges.Disk(ctx); err != nil {
		fail(gaugeDisk, err)
	} else {
		out.system.Disk = &v
	}
	if v, err := c.gauges.Network(ctx); err != nil {
		fail("network", err)
	} else {
		out.system.Network = &v
	}
	if v, err := c.gauges.Process(ctx); err != nil {
		fail("process", err)
	} else {
		out.system.Process = &v
	}
	return out
}

// ExportStructured collects a snapshot and writes it to path as indented JSON.
// The file is replaced atomically. It returns the snapshot ID.
func (c *Collector) ExportStructured(ctx context.Context, path string) (string, error) {
	snap := c.Collect(ctx)
	if err := WriteSnapshot(path, snap); err != nil {
		return "", err
	}
	c.logger.Info("snapshot exported", slog.String("id", snap.ID), slog.String("path", path))
	return snap.ID, nil
}

// WriteSnapshot persists snap to path through a temp file and rename.
func WriteSnapshot(path string, snap models.Snapshot) error {
	const op = "collector.export"
	if path == "" {
		return utils.NewAppError(op, "export path is empty", nil)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return utils.NewAppError(op, "encode snapshot", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return utils.NewAppError(op, "create temp file in "+dir, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return utils.NewAppError(op, "write "+tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return utils.NewAppError(op, "close "+tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return utils.NewAppError(op, "chmod "+tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return utils.NewAppError(op, "rename to "+path, err)
	}
	return nil
}
