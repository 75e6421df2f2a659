package gauges

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miradorstack/docrouter-health/internal/models"
)

func mockedProvider() *HostProvider {
	h := NewHostProvider(HostConfig{CPUSampleInterval: time.Second, DiskPath: "/data"})
	h.getCPUPercent = func(ctx context.Context, interval time.Duration, percpu bool) ([]float64, error) {
		return []float64{42.5}, nil
	}
	h.getMemStats = func(ctx context.Context) (*mem.VirtualMemoryStat, error) {
		return &mem.VirtualMemoryStat{Total: 16 * bytesPerGB, Used: 12 * bytesPerGB, Available: 4 * bytesPerGB, UsedPercent: 75}, nil
	}
	h.getDiskUsage = func(ctx context.Context, path string) (*disk.UsageStat, error) {
		if path != "/data" {
			return nil, errors.New("unexpected path " + path)
		}
		return &disk.UsageStat{Total: 100 * bytesPerGB, Used: 81 * bytesPerGB, Free: 19 * bytesPerGB, UsedPercent: 81}, nil
	}
	h.getNetIO = func(ctx context.Context, pernic bool) ([]net.IOCountersStat, error) {
		return []net.IOCountersStat{
			{BytesSent: 100, BytesRecv: 200, PacketsSent: 1, PacketsRecv: 2},
			{BytesSent: 10, BytesRecv: 20, PacketsSent: 3, PacketsRecv: 4},
		}, nil
	}
	h.getProcess = func(ctx context.Context, pid int32) (models.ProcessReading, error) {
		return models.ProcessReading{PID: pid, MemoryMB: 64, Threads: 9, Status: "R"}, nil
	}
	return h
}

func TestHostProviderReadings(t *testing.T) {
	h := mockedProvider()
	ctx := context.Background()

	cpuPct, err := h.CPUPercent(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ScalarReading(42.5), cpuPct)

	memory, err := h.Memory(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.UsageReading{TotalGB: 16, UsedGB: 12, AvailableGB: 4, Percent: 75}, memory)
	assert.Equal(t, 75.0, memory.Scalar())

	du, err := h.Disk(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.UsageReading{TotalGB: 100, UsedGB: 81, FreeGB: 19, Percent: 81}, du)

	netIO, err := h.Network(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.NetworkReading{BytesSent: 110, BytesRecv: 220, PacketsSent: 4, PacketsRecv: 6}, netIO)
	assert.Zero(t, netIO.Scalar())

	proc, err := h.Process(ctx)
	require.NoError(t, err)
	assert.Equal(t, h.pid, proc.PID)
	assert.EqualValues(t, 9, proc.Threads)
	assert.Zero(t, proc.Scalar())
}

func TestHostProviderErrors(t *testing.T) {
	h := mockedProvider()
	h.getCPUPercent = func(context.Context, time.Duration, bool) ([]float64, error) {
		return nil, nil
	}
	h.getMemStats = func(context.Context) (*mem.VirtualMemoryStat, error) {
		return nil, errors.New("no /proc")
	}

	_, err := h.CPUPercent(context.Background())
	assert.ErrorContains(t, err, "no data returned")

	_, err = h.Memory(context.Background())
	assert.ErrorContains(t, err, "no /proc")
}

func TestNewHostProviderDefaults(t *testing.T) {
	h := NewHostProvider(HostConfig{CPUSampleInterval: -time.Second})
	assert.Equal(t, "/", h.cfg.DiskPath)
	assert.Zero(t, h.cfg.CPUSampleInterval)
}

func TestStaticProvider(t *testing.T) {
	s := &Static{Mem: models.UsageReading{Percent: 40}}
	s.SetCPU(12)

	cpuPct, err := s.CPUPercent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.ScalarReading(12), cpuPct)

	s.Errors = map[string]error{"memory": errors.New("unavailable")}
	_, err = s.Memory(context.Background())
	assert.EqualError(t, err, "unavailable")
}
