// Package gauges samples host and process resource readings. The core only
// consumes these values; it never derives them.
package gauges

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/miradorstack/docrouter-health/internal/models"
)

const bytesPerGB = 1024 * 1024 * 1024

// Provider exposes point-in-time host and process readings.
type Provider interface {
	CPUPercent(ctx context.Context) (models.ScalarReading, error)
	Memory(ctx context.Context) (models.UsageReading, error)
	Disk(ctx context.Context) (models.UsageReading, error)
	Network(ctx context.Context) (models.NetworkReading, error)
	Process(ctx context.Context) (models.ProcessReading, error)
}

// HostConfig tunes the gopsutil-backed provider.
type HostConfig struct {
	// CPUSampleInterval is how long CPUPercent measures for. Zero compares
	// against the previous call instead of blocking.
	CPUSampleInterval time.Duration
	// DiskPath is the mount point whose usage is reported.
	DiskPath string
}

// HostProvider reads gauges from the local host through gopsutil.
type HostProvider struct {
	cfg HostConfig
	pid int32

	// Collection functions for mocking
	getCPUPercent func(context.Context, time.Duration, bool) ([]float64, error)
	getMemStats   func(context.Context) (*mem.VirtualMemoryStat, error)
	getDiskUsage  func(context.Context, string) (*disk.UsageStat, error)
	getNetIO      func(context.Context, bool) ([]net.IOCountersStat, error)
	getProcess    func(context.Context, int32) (models.ProcessReading, error)
}

// NewHostProvider constructs a provider for the current process.
func NewHostProvider(cfg HostConfig) *HostProvider {
	if cfg.DiskPath == "" {
		cfg.DiskPath = "/"
	}
	if cfg.CPUSampleInterval < 0 {
		cfg.CPUSampleInterval = 0
	}
	return &HostProvider{
		cfg:           cfg,
		pid:           int32(os.Getpid()),
		getCPUPercent: cpu.PercentWithContext,
		getMemStats:   mem.VirtualMemoryWithContext,
		getDiskUsage:  disk.UsageWithContext,
		getNetIO:      net.IOCountersWithContext,
		getProcess:    readProcess,
	}
}

// CPUPercent returns system-wide CPU utilisation.
func (h *HostProvider) CPUPercent(ctx context.Context) (models.ScalarReading, error) {
	values, err := h.getCPUPercent(ctx, h.cfg.CPUSampleInterval, false)
	if err != nil {
		return 0, fmt.Errorf("cpu percent: %w", err)
	}
	if len(values) == 0 {
		return 0, errors.New("cpu percent: no data returned")
	}
	return models.ScalarReading(values[0]), nil
}

// Memory returns virtual memory usage.
func (h *HostProvider) Memory(ctx context.Context) (models.UsageReading, error) {
	v, err := h.getMemStats(ctx)
	if err != nil {
		return models.UsageReading{}, fmt.Errorf("memory stats: %w", err)
	}
	return models.UsageReading{
		TotalGB:     toGB(v.Total),
		UsedGB:      toGB(v.Used),
		AvailableGB: toGB(v.Available),
		Percent:     v.UsedPercent,
	}, nil
}

// Disk returns usage of the configured mount point.
func (h *HostProvider) Disk(ctx context.Context) (models.UsageReading, error) {
	u, err := h.getDiskUsage(ctx, h.cfg.DiskPath)
	if err != nil {
		return models.UsageReading{}, fmt.Errorf("disk usage %s: %w", h.cfg.DiskPath, err)
	}
	return models.UsageReading{
		TotalGB: toGB(u.Total),
		UsedGB:  toGB(u.Used),
		FreeGB:  toGB(u.Free),
		Percent: u.UsedPercent,
	}, nil
}

// Network returns counters summed across all interfaces.
func (h *HostProvider) Network(ctx context.Context) (models.NetworkReading, error) {
	counters, err := h.getNetIO(ctx, false)
	if err != nil {
		return models.NetworkReading{}, fmt.Errorf("network counters: %w", err)
	}
	var out models.NetworkReading
	for _, c := range counters {
		out.BytesSent += c.BytesSent
		out.BytesRecv += c.BytesRecv
		out.PacketsSent += c.PacketsSent
		out.PacketsRecv += c.PacketsRecv
	}
	return out, nil
}

// Process describes the running engine process.
func (h *HostProvider) Process(ctx context.Context) (models.ProcessReading, error) {
	reading, err := h.getProcess(ctx, h.pid)
	if err != nil {
		return models.ProcessReading{}, fmt.Errorf("process %d: %w", h.pid, err)
	}
	return reading, nil
}

func readProcess(ctx context.Context, pid int32) (models.ProcessReading, error) {
	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return models.ProcessReading{}, err
	}
	reading := models.ProcessReading{PID: pid}

	if pct, err := p.CPUPercentWithContext(ctx); err == nil {
		reading.CPUPercent = pct
	}
	if info, err := p.MemoryInfoWithContext(ctx); err == nil && info != nil {
		reading.MemoryMB = float64(info.RSS) / (1024 * 1024)
	}
	if threads, err := p.NumThreadsWithContext(ctx); err == nil {
		reading.Threads = threads
	}
	if status, err := p.StatusWithContext(ctx); err == nil {
		reading.Status = strings.Join(status, ",")
	}
	return reading, nil
}

func toGB(b uint64) float64 {
	return float64(b) / bytesPerGB
}
