// Package recorder accumulates request outcomes for the document router and
// derives latency and throughput statistics from them.
package recorder

import (
	"sync"
	"time"

	"github.com/miradorstack/docrouter-health/internal/models"
	"github.com/miradorstack/docrouter-health/internal/utils"
)

// DefaultHistorySize bounds the rolling latency window when none is configured.
const DefaultHistorySize = 1000

// Event is a single completed operation.
type Event struct {
	Duration time.Duration
	Success  bool
	Tags     models.Tags
}

// Recorder is a concurrency-safe accumulator of outcome events. Counters are
// cumulative for the process lifetime (or until Reset); the latency window
// only holds the most recent samples.
type Recorder struct {
	mu sync.Mutex

	window   *window
	total    int64
	success  int64
	errors   int64
	byFormat map[string]int64
	byIntent map[string]int64
	started  time.Time

	now func() time.Time
}

// New creates a recorder whose latency window holds up to capacity samples.
func New(capacity int) *Recorder {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	r := &Recorder{
		window:   newWindow(capacity),
		byFormat: make(map[string]int64),
		byIntent: make(map[string]int64),
		now:      time.Now,
	}
	r.started = r.now()
	return r
}

// Capacity returns the maximum number of samples kept in the window.
func (r *Recorder) Capacity() int {
	return len(r.window.data)
}

// Record accumulates one outcome event.
func (r *Recorder) Record(ev Event) {
	d := ev.Duration
	if d < 0 {
		d = 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.window.add(d)
	r.total++
	if ev.Success {
		r.success++
	} else {
		r.errors++
	}
	if ev.Tags.Format != "" {
		r.byFormat[ev.Tags.Format]++
	}
	if ev.Tags.Intent != "" {
		r.byIntent[ev.Tags.Intent]++
	}
}

// Observe is shorthand for Record.
func (r *Recorder) Observe(d time.Duration, tags models.Tags, success bool) {
	r.Record(Event{Duration: d, Success: success, Tags: tags})
}

// AverageDuration returns the mean of the current window, or 0 when empty.
func (r *Recorder) AverageDuration() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return utils.SecondsToDuration(r.window.meanNanos() / float64(time.Second))
}

// Percentile returns the p-th percentile (0-100) of the current window, or 0
// when empty.
func (r *Recorder) Percentile(p float64) time.Duration {
	r.mu.Lock()
	sorted := r.window.sorted()
	r.mu.Unlock()
	return percentileOf(sorted, p)
}

// ErrorRate returns failed requests as a percentage of all requests.
func (r *Recorder) ErrorRate() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return rate(r.errors, r.total)
}

// SuccessRate returns successful requests as a percentage of all requests.
func (r *Recorder) SuccessRate() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return rate(r.success, r.total)
}

// Uptime is the time since construction or the last Reset.
func (r *Recorder) Uptime() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.now().Sub(r.started)
}

// RequestsPerMinute averages total requests over the uptime.
func (r *Recorder) RequestsPerMinute() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return utils.PerMinute(r.total, r.now().Sub(r.started))
}

// Counts returns total, success and error counters together.
func (r *Recorder) Counts() (total, success, errors int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total, r.success, r.errors
}

// Window returns a copy of the latency window, oldest sample first.
func (r *Recorder) Window() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.window.ordered()
}

// Summary returns every statistic computed under a single lock acquisition,
// so counts and window always describe the same instant.
func (r *Recorder) Summary() models.RecorderSummary {
	r.mu.Lock()
	defer r.mu.Unlock()

	uptime := r.now().Sub(r.started)
	sorted := r.window.sorted()

	return models.RecorderSummary{
		TotalRequests:     r.total,
		SuccessCount:      r.success,
		ErrorCount:        r.errors,
		SuccessRate:       rate(r.success, r.total),
		ErrorRate:         rate(r.errors, r.total),
		AvgResponseTime:   r.window.meanNanos() / float64(time.Second),
		P50ResponseTime:   percentileOf(sorted, 50).Seconds(),
		P95ResponseTime:   percentileOf(sorted, 95).Seconds(),
		P99ResponseTime:   percentileOf(sorted, 99).Seconds(),
		WindowSize:        r.window.len(),
		UptimeSeconds:     uptime.Seconds(),
		RequestsPerMinute: utils.PerMinute(r.total, uptime),
		RequestsByFormat:  copyTallies(r.byFormat),
		RequestsByIntent:  copyTallies(r.byIntent),
	}
}

// Reset clears the window, counters and tallies and restarts the uptime clock.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.window.clear()
	r.total = 0
	r.success = 0
	r.errors = 0
	r.byFormat = make(map[string]int64)
	r.byIntent = make(map[string]int64)
	r.started = r.now()
}

func rate(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

func copyTallies(src map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
