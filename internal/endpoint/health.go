package endpoint

import "sync"

// HealthTracker holds the rolling health profile of a single endpoint:
// an erroring flag, the time of the most recent failure, and a bounded
// latency history with its arithmetic mean. All mutation goes through
// methods holding the mutex; routers read a consistent copy via Snapshot.
type HealthTracker struct {
	mu          sync.RWMutex
	erroring    bool
	lastError   uint64
	latency     float64
	latencyData []float64
}

// HealthSnapshot is a point-in-time copy of a tracker's state, safe to use
// without further locking.
type HealthSnapshot struct {
	Erroring  bool
	LastError uint64
	Latency   float64
	Samples   int
}

// Push appends a latency sample, evicting the oldest samples first when the
// history is at the window bound, then recomputes the moving average. The
// history never exceeds window after a push; shrinking the window between
// calls re-bounds the history on the next push.
func (h *HealthTracker) Push(sample float64, window int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if window > 0 && len(h.latencyData) >= window {
		h.latencyData = h.latencyData[len(h.latencyData)-window+1:]
	}
	h.latencyData = append(h.latencyData, sample)

	var sum float64
	for _, v := range h.latencyData {
		sum += v
	}
	h.latency = sum / float64(len(h.latencyData))
}

// Snapshot returns a consistent copy of the tracker state.
func (h *HealthTracker) Snapshot() HealthSnapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return HealthSnapshot{
		Erroring:  h.erroring,
		LastError: h.lastError,
		Latency:   h.latency,
		Samples:   len(h.latencyData),
	}
}

// History returns a copy of the current latency samples, oldest first.
func (h *HealthTracker) History() []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]float64, len(h.latencyData))
	copy(out, h.latencyData)
	return out
}

func (h *HealthTracker) flagError(ts uint64, erroring bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastError = ts
	if erroring {
		h.erroring = true
	}
}

func (h *HealthTracker) clearErroring() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.erroring = false
}
