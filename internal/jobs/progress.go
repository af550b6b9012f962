package jobs

import "sync"

// ProgressFunc is the uniform progress callback handed to every processor.
type ProgressFunc func(percent int, message string)

// SinkFunc adapts a ProgressFunc to the engines' progress-sink interfaces.
type SinkFunc func(percent int, message string)

func (f SinkFunc) Progress(percent int, message string) {
	f(percent, message)
}

// progressBridge enforces the per-job ordering guarantee: percentages are
// monotonic non-decreasing, late or out-of-order updates are dropped.
type progressBridge struct {
	mu   sync.Mutex
	last int
	emit ProgressFunc
}

func newProgressBridge(start int, emit ProgressFunc) *progressBridge {
	return &progressBridge{last: start, emit: emit}
}

func (b *progressBridge) Progress(percent int, message string) {
	b.mu.Lock()
	if percent < b.last {
		b.mu.Unlock()
		return
	}
	b.last = percent
	b.mu.Unlock()

	b.emit(percent, message)
}

// MonotonicProgress wraps emit so percentages never decrease. start seeds
// the floor, letting a retried job resume from its persisted percent.
func MonotonicProgress(start int, emit ProgressFunc) ProgressFunc {
	b := newProgressBridge(start, emit)
	return b.Progress
}
