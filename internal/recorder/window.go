package recorder

import (
	"sort"
	"time"
)

// window is a fixed-capacity FIFO of recent durations. It is not safe for
// concurrent use; the Recorder guards it.
type window struct {
	data  []time.Duration
	next  int
	count int
}

func newWindow(capacity int) *window {
	return &window{data: make([]time.Duration, capacity)}
}

// add appends d, overwriting the oldest sample once the window is full.
func (w *window) add(d time.Duration) {
	w.data[w.next] = d
	w.next = (w.next + 1) % len(w.data)
	if w.count < len(w.data) {
		w.count++
	}
}

func (w *window) len() int { return w.count }

func (w *window) clear() {
	w.next = 0
	w.count = 0
}

// ordered returns a copy of the samples, oldest first.
func (w *window) ordered() []time.Duration {
	out := make([]time.Duration, 0, w.count)
	start := 0
	if w.count == len(w.data) {
		start = w.next
	}
	for i := 0; i < w.count; i++ {
		out = append(out, w.data[(start+i)%len(w.data)])
	}
	return out
}

// meanNanos averages the window in float64 nanoseconds. A time.Duration sum
// overflows once the samples add up to about 292 years.
func (w *window) meanNanos() float64 {
	if w.count == 0 {
		return 0
	}
	var total float64
	for i := 0; i < w.count; i++ {
		total += float64(w.data[i])
	}
	return total / float64(w.count)
}

// sorted returns an ascending copy; the live buffer is never reordered.
func (w *window) sorted() []time.Duration {
	out := append([]time.Duration(nil), w.data[:w.count]...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// percentileOf selects index floor(n*p/100) clamped to [0, n-1].
func percentileOf(sorted []time.Duration, p float64) time.Duration {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	index := int(float64(n) * (p / 100.0))
	if index < 0 {
		index = 0
	}
	if index >= n {
		index = n - 1
	}
	return sorted[index]
}
