package health

import (
	"context"
	"errors"
	"fmt"

	"github.com/miradorstack/docrouter-health/internal/models"
)

// Probe produces a reading on demand. Implementations may block but should
// honour ctx where they can.
type Probe interface {
	Read(ctx context.Context) (models.Reading, error)
}

// ProbeFunc adapts a function to the Probe interface.
type ProbeFunc func(ctx context.Context) (models.Reading, error)

// Read implements Probe.
func (f ProbeFunc) Read(ctx context.Context) (models.Reading, error) {
	return f(ctx)
}

// Scalar wraps an infallible numeric gauge.
func Scalar(fn func() float64) Probe {
	return ProbeFunc(func(context.Context) (models.Reading, error) {
		return models.ScalarReading(fn()), nil
	})
}

// Threshold classifies a probe's scalar value. A nil bound is not checked;
// with both bounds nil the probe is always healthy.
type Threshold struct {
	Warning *float64 `json:"warning,omitempty" yaml:"warning,omitempty"`
	Max     *float64 `json:"max,omitempty" yaml:"max,omitempty"`
}

// Bounds returns a threshold with both warning and max set.
func Bounds(warning, max float64) Threshold {
	return Threshold{Warning: &warning, Max: &max}
}

// MaxOnly returns a threshold that only distinguishes healthy from unhealthy.
func MaxOnly(max float64) Threshold {
	return Threshold{Max: &max}
}

// WarningOnly returns a threshold that never reports unhealthy.
func WarningOnly(warning float64) Threshold {
	return Threshold{Warning: &warning}
}

// IsZero reports whether no bound is set.
func (t Threshold) IsZero() bool {
	return t.Warning == nil && t.Max == nil
}

// ErrInvalidThreshold is returned when a warning bound exceeds the max bound.
var ErrInvalidThreshold = errors.New("warning bound exceeds max bound")

// Validate rejects thresholds whose warning bound is above max.
func (t Threshold) Validate() error {
	if t.Warning != nil && t.Max != nil && *t.Warning > *t.Max {
		return fmt.Errorf("%w: warning=%g max=%g", ErrInvalidThreshold, *t.Warning, *t.Max)
	}
	return nil
}

// Evaluate classifies a reading against a threshold. Composite readings are
// compared through their percent-like scalar.
func Evaluate(reading models.Reading, t Threshold) models.Status {
	if t.IsZero() {
		return models.StatusHealthy
	}
	var value float64
	if reading != nil {
		value = reading.Scalar()
	}
	if t.Max != nil && value > *t.Max {
		return models.StatusUnhealthy
	}
	if t.Warning != nil && value > *t.Warning {
		return models.StatusDegraded
	}
	return models.StatusHealthy
}
