package models

// Status is the outcome of a health probe or of a whole evaluation run.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
	// StatusError marks a probe that failed to produce a reading at all.
	StatusError Status = "error"
)

// Severity orders statuses for folding. Error and unhealthy rank equally.
func (s Status) Severity() int {
	switch s {
	case StatusUnhealthy, StatusError:
		return 2
	case StatusDegraded:
		return 1
	default:
		return 0
	}
}

// Worse returns whichever of s and other is more severe, preferring s on ties.
func (s Status) Worse(other Status) Status {
	if other.Severity() > s.Severity() {
		return other
	}
	return s
}

// Serving reports whether callers should keep routing traffic here.
func (s Status) Serving() bool {
	return s.Severity() < 2
}
