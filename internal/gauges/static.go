package gauges

import (
	"context"
	"sync"

	"github.com/miradorstack/docrouter-health/internal/models"
)

// Static is a Provider that returns fixed readings. Set an entry in Errors to
// make the matching gauge fail ("cpu", "memory", "disk", "network", "process").
type Static struct {
	mu sync.RWMutex

	CPU     models.ScalarReading
	Mem     models.UsageReading
	DiskUse models.UsageReading
	Net     models.NetworkReading
	Proc    models.ProcessReading
	Errors  map[string]error
}

func (s *Static) fail(gauge string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Errors == nil {
		return nil
	}
	return s.Errors[gauge]
}

// SetCPU updates the CPU reading.
func (s *Static) SetCPU(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CPU = models.ScalarReading(v)
}

// CPUPercent implements Provider.
func (s *Static) CPUPercent(context.Context) (models.ScalarReading, error) {
	if err := s.fail("cpu"); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.CPU, nil
}

// Memory implements Provider.
func (s *Static) Memory(context.Context) (models.UsageReading, error) {
	if err := s.fail("memory"); err != nil {
		return models.UsageReading{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Mem, nil
}

// Disk implements Provider.
func (s *Static) Disk(context.Context) (models.UsageReading, error) {
	if err := s.fail("disk"); err != nil {
		return models.UsageReading{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.DiskUse, nil
}

// Network implements Provider.
func (s *Static) Network(context.Context) (models.NetworkReading, error) {
	if err := s.fail("network"); err != nil {
		return models.NetworkReading{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Net, nil
}

// Process implements Provider.
func (s *Static) Process(context.Context) (models.ProcessReading, error) {
	if err := s.fail("process"); err != nil {
		return models.ProcessReading{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Proc, nil
}
