package telemetry

// FrameWindow is a bounded FIFO of frame intervals in milliseconds.
// It is not safe for concurrent use; the Store serializes access.
type FrameWindow struct {
	values   []float64
	capacity int
}

// NewFrameWindow creates a window holding at most capacity samples.
// Capacities below one are raised to one.
func NewFrameWindow(capacity int) *FrameWindow {
	if capacity < 1 {
		capacity = 1
	}
	return &FrameWindow{
		values:   make([]float64, 0, capacity),
		capacity: capacity,
	}
}

// Push appends a sample, evicting the oldest ones beyond capacity
func (w *FrameWindow) Push(v float64) {
	w.values = append(w.values, v)
	if over := len(w.values) - w.capacity; over > 0 {
		w.values = append(w.values[:0], w.values[over:]...)
	}
}

// Mean returns the arithmetic mean of the held samples. The sum is
// recomputed on every call so long runs do not accumulate drift.
func (w *FrameWindow) Mean() (float64, bool) {
	if len(w.values) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range w.values {
		sum += v
	}
	return sum / float64(len(w.values)), true
}

func (w *FrameWindow) Len() int { return len(w.values) }

func (w *FrameWindow) Cap() int { return w.capacity }

// Values returns a copy of the samples, oldest first
func (w *FrameWindow) Values() []float64 {
	out := make([]float64, len(w.values))
	copy(out, w.values)
	return out
}

// Reset drops all samples and keeps the capacity
func (w *FrameWindow) Reset() {
	w.values = w.values[:0]
}

// Resize changes the capacity, keeping the most recent samples
func (w *FrameWindow) Resize(capacity int) {
	if capacity < 1 {
		capacity = 1
	}
	w.capacity = capacity
	if over := len(w.values) - capacity; over > 0 {
		w.values = append(w.values[:0], w.values[over:]...)
	}
}
