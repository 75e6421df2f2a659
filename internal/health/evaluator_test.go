package health

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miradorstack/docrouter-health/internal/models"
	"github.com/miradorstack/docrouter-health/internal/utils"
)

func constant(v float64) Probe {
	return Scalar(func() float64 { return v })
}

func failing(msg string) Probe {
	return ProbeFunc(func(context.Context) (models.Reading, error) {
		return nil, errors.New(msg)
	})
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name      string
		reading   models.Reading
		threshold Threshold
		want      models.Status
	}{
		{"no bounds", models.ScalarReading(1000), Threshold{}, models.StatusHealthy},
		{"below warning", models.ScalarReading(50), Bounds(70, 90), models.StatusHealthy},
		{"equal to warning", models.ScalarReading(70), Bounds(70, 90), models.StatusHealthy},
		{"above warning", models.ScalarReading(85), Bounds(70, 90), models.StatusDegraded},
		{"equal to max", models.ScalarReading(90), Bounds(70, 90), models.StatusDegraded},
		{"above max", models.ScalarReading(97), Bounds(80, 95), models.StatusUnhealthy},
		{"max only", models.ScalarReading(96), MaxOnly(95), models.StatusUnhealthy},
		{"warning only", models.ScalarReading(1e6), WarningOnly(10), models.StatusDegraded},
		{"composite uses percent", models.UsageReading{TotalGB: 16, UsedGB: 15, Percent: 93.75}, Bounds(80, 95), models.StatusDegraded},
		{"composite without percent", models.ProcessReading{PID: 1, MemoryMB: 4096}, Bounds(1, 2), models.StatusHealthy},
		{"nil reading", nil, Bounds(-2, -1), models.StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.reading, tt.threshold))
		})
	}
}

func TestThresholdValidate(t *testing.T) {
	assert.NoError(t, Threshold{}.Validate())
	assert.NoError(t, Bounds(70, 90).Validate())
	assert.NoError(t, Bounds(90, 90).Validate())
	assert.ErrorIs(t, Bounds(95, 80).Validate(), ErrInvalidThreshold)
}

func TestRegisterRejectsInvalidInput(t *testing.T) {
	ev := NewEvaluator(utils.Discard())

	assert.Error(t, ev.Register("", constant(1), Threshold{}))
	assert.Error(t, ev.Register("cpu", nil, Threshold{}))
	assert.ErrorIs(t, ev.Register("cpu", constant(1), Bounds(90, 70)), ErrInvalidThreshold)
	assert.Empty(t, ev.Names())
}

func TestRunAllDegradedProbe(t *testing.T) {
	ev := NewEvaluator(utils.Discard())
	require.NoError(t, ev.Register("cpu", constant(85), Bounds(70, 90)))

	report := ev.RunAll(context.Background())

	assert.Equal(t, models.StatusDegraded, report.Checks["cpu"].Status)
	assert.Equal(t, models.ScalarReading(85), report.Checks["cpu"].Value)
	assert.Equal(t, models.StatusDegraded, report.OverallStatus)
}

func TestRunAllUnhealthyBeatsDegraded(t *testing.T) {
	ev := NewEvaluator(utils.Discard())
	require.NoError(t, ev.Register("cpu", constant(85), Bounds(70, 90)))
	require.NoError(t, ev.Register("disk", constant(97), Bounds(80, 95)))

	report := ev.RunAll(context.Background())

	assert.Equal(t, models.StatusDegraded, report.Checks["cpu"].Status)
	assert.Equal(t, models.StatusUnhealthy, report.Checks["disk"].Status)
	assert.Equal(t, models.StatusUnhealthy, report.OverallStatus)
	assert.Equal(t, []string{"cpu", "disk"}, report.Order)
}

func TestRunAllNoProbesIsHealthy(t *testing.T) {
	ev := NewEvaluator(nil)
	report := ev.RunAll(context.Background())
	assert.Equal(t, models.StatusHealthy, report.OverallStatus)
	assert.Empty(t, report.Checks)
	assert.Equal(t, models.StatusHealthy, ev.OverallStatus(context.Background()))
}

func TestRunAllIsolatesProbeFailures(t *testing.T) {
	ev := NewEvaluator(utils.Discard())
	require.NoError(t, ev.Register("broken", failing("sensor offline"), Threshold{}))
	require.NoError(t, ev.Register("panicky", ProbeFunc(func(context.Context) (models.Reading, error) {
		panic("boom")
	}), Threshold{}))
	require.NoError(t, ev.Register("memory", constant(10), Bounds(80, 95)))

	report := ev.RunAll(context.Background())

	assert.Equal(t, models.StatusError, report.Checks["broken"].Status)
	assert.Equal(t, "sensor offline", report.Checks["broken"].Error)
	assert.Nil(t, report.Checks["broken"].Value)

	assert.Equal(t, models.StatusError, report.Checks["panicky"].Status)
	assert.Contains(t, report.Checks["panicky"].Error, "boom")

	assert.Equal(t, models.StatusHealthy, report.Checks["memory"].Status, "later probes still run")
	assert.Equal(t, models.StatusUnhealthy, report.OverallStatus)
}

func TestRunAllFoldsToMostSevere(t *testing.T) {
	values := []float64{10, 75, 85, 92, 99}
	for mask := 0; mask < 1<<len(values); mask++ {
		ev := NewEvaluator(utils.Discard())
		want := models.StatusHealthy
		for i, v := range values {
			if mask&(1<<i) == 0 {
				continue
			}
			name := string(rune('a' + i))
			require.NoError(t, ev.Register(name, constant(v), Bounds(70, 90)))
			want = want.Worse(Evaluate(models.ScalarReading(v), Bounds(70, 90)))
		}
		assert.Equal(t, want, ev.OverallStatus(context.Background()), "mask %b", mask)
	}
}

func TestRegisterReplacesProbe(t *testing.T) {
	ev := NewEvaluator(utils.Discard())
	require.NoError(t, ev.Register("cpu", constant(99), Bounds(70, 90)))
	require.NoError(t, ev.Register("queue", constant(1), Threshold{}))
	ev.RunAll(context.Background())

	require.NoError(t, ev.Register("cpu", constant(5), Bounds(70, 90)))
	_, cached := ev.Last("cpu")
	assert.False(t, cached, "replacement drops the cached result")
	assert.Equal(t, []string{"cpu", "queue"}, ev.Names())

	assert.Equal(t, models.StatusHealthy, ev.OverallStatus(context.Background()))
}

func TestLastCachesSuccessfulRuns(t *testing.T) {
	ev := NewEvaluator(utils.Discard())
	value := 50.0
	require.NoError(t, ev.Register("cpu", Scalar(func() float64 { return value }), Bounds(70, 90)))
	require.NoError(t, ev.Register("broken", failing("nope"), Threshold{}))

	_, ok := ev.Last("cpu")
	assert.False(t, ok)

	ev.RunAll(context.Background())
	last, ok := ev.Last("cpu")
	require.True(t, ok)
	assert.Equal(t, models.StatusHealthy, last.Status)
	assert.Equal(t, models.ScalarReading(50), last.Value)

	value = 95
	ev.RunAll(context.Background())
	last, _ = ev.Last("cpu")
	assert.Equal(t, models.StatusUnhealthy, last.Status)

	_, ok = ev.Last("broken")
	assert.False(t, ok, "failed probes do not update the cache")
	_, ok = ev.Last("missing")
	assert.False(t, ok)
}

func TestRegisterDuringRunAll(t *testing.T) {
	ev := NewEvaluator(utils.Discard())
	require.NoError(t, ev.Register("seed", constant(1), Threshold{}))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			ev.RunAll(context.Background())
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_ = ev.Register("dynamic", constant(float64(i)), Bounds(100, 150))
		}
	}()
	wg.Wait()

	assert.Equal(t, []string{"seed", "dynamic"}, ev.Names())
}
