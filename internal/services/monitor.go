package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/miradorstack/docrouter-health/internal/collector"
	"github.com/miradorstack/docrouter-health/internal/metrics"
	"github.com/miradorstack/docrouter-health/internal/models"
	"github.com/miradorstack/docrouter-health/internal/utils"
)

// ErrExportDisabled is returned by Export when no path is configured or given.
var ErrExportDisabled = errors.New("export path not configured")

// StatusPublisher receives the folded health status after every collection.
type StatusPublisher interface {
	SetStatus(status models.Status)
}

// MonitorConfig controls the collection and export cadence.
type MonitorConfig struct {
	Interval       time.Duration
	ExportPath     string
	ExportInterval time.Duration
}

// Monitor periodically collects snapshots, caches the latest one and keeps
// publishers in step with the overall health status.
type Monitor struct {
	logger     *slog.Logger
	collector  *collector.Collector
	cfg        MonitorConfig
	publishers []StatusPublisher

	mu     sync.RWMutex
	latest *models.Snapshot
	status models.Status

	exportMu sync.Mutex
}

// NewMonitor constructs a monitor around an existing collector.
func NewMonitor(logger *slog.Logger, c *collector.Collector, cfg MonitorConfig, publishers ...StatusPublisher) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	return &Monitor{
		logger:     logger,
		collector:  c,
		cfg:        cfg,
		publishers: publishers,
	}
}

// Run collects immediately and then on every interval until ctx is done. When
// an export path is configured the snapshot is also written periodically and
// once more on shutdown.
func (m *Monitor) Run(ctx context.Context) error {
	m.logger.Info("health monitor started",
		slog.Duration("interval", m.cfg.Interval),
		slog.String("export_path", m.cfg.ExportPath),
	)

	m.Tick(ctx)

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	var exportC <-chan time.Time
	if m.cfg.ExportPath != "" && m.cfg.ExportInterval > 0 {
		exportTicker := time.NewTicker(m.cfg.ExportInterval)
		defer exportTicker.Stop()
		exportC = exportTicker.C
	}

	for {
		select {
		case <-ctx.Done():
			if m.cfg.ExportPath != "" {
				finalCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.cfg.Interval)
				_, _ = m.Export(finalCtx, "")
				cancel()
			}
			m.logger.Info("health monitor stopped")
			return nil
		case <-ticker.C:
			m.Tick(ctx)
		case <-exportC:
			_, _ = m.Export(ctx, "")
		}
	}
}

// Tick performs one collection, records self-metrics and publishes status.
func (m *Monitor) Tick(ctx context.Context) models.Snapshot {
	tickCtx, cancel := context.WithTimeout(ctx, m.cfg.Interval)
	defer cancel()

	start := time.Now()
	snap := m.collector.Collect(tickCtx)
	metrics.ObserveSnapshot(time.Since(start), snap.Health)

	status := snap.Health.OverallStatus

	m.mu.Lock()
	previous := m.status
	m.latest = &snap
	m.status = status
	m.mu.Unlock()

	if previous != status {
		attrs := []any{
			slog.String("from", string(previous)),
			slog.String("to", string(status)),
		}
		for _, name := range snap.Health.Order {
			if res := snap.Health.Checks[name]; res.Status != models.StatusHealthy {
				attrs = append(attrs, slog.String(name, string(res.Status)))
			}
		}
		if previous == "" {
			m.logger.Info("health status initialised", attrs...)
		} else {
			m.logger.Warn("health status changed", attrs...)
		}
	}

	for _, p := range m.publishers {
		p.SetStatus(status)
	}
	return snap
}

// Latest returns the most recently collected snapshot.
func (m *Monitor) Latest() (models.Snapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.latest == nil {
		return models.Snapshot{}, false
	}
	return *m.latest, true
}

// Status returns the overall status of the latest snapshot, or healthy before
// the first collection.
func (m *Monitor) Status() models.Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.status == "" {
		return models.StatusHealthy
	}
	return m.status
}

// Export writes a fresh structured snapshot to path, or to the configured
// export path when path is empty.
func (m *Monitor) Export(ctx context.Context, path string) (string, error) {
	if path == "" {
		path = m.cfg.ExportPath
	}
	if path == "" {
		return "", ErrExportDisabled
	}

	m.exportMu.Lock()
	defer m.exportMu.Unlock()

	id, err := m.collector.ExportStructured(ctx, path)
	if err != nil {
		metrics.ObserveExport(metrics.OutcomeError)
		m.logger.Error("snapshot export failed",
			slog.String("path", path),
			slog.String("op", utils.OpOf(err)),
			slog.Any("error", err),
		)
		return "", err
	}
	metrics.ObserveExport(metrics.OutcomeSuccess)
	return id, nil
}
