package tracker

// PendingDelta is one observed increment awaiting publish to the global
// tracker: the key, the weight added since the last publish, and the
// sketch's latest absolute estimate for it.
type PendingDelta struct {
	Key   uint32
	Delta uint64
	Count uint64
}

// Local is a worker's local heavy-hitter tracker: a bounded indexed
// min-heap (LH) valued by latest observed count, plus a pending-deltas
// buffer (LD) accumulated between publishes to the global tracker (§4.4).
type Local struct {
	heap    *PQueue
	pending []PendingDelta
	theta   float64
}

// NewLocal creates a local tracker bounded to k entries.
func NewLocal(k int, theta float64) *Local {
	return &Local{heap: New(k), theta: theta}
}

// Threshold returns theta * streamSize, the current admission bar.
func (l *Local) Threshold(streamSize uint64) uint64 {
	return uint64(float64(streamSize) * l.theta)
}

// AddIfHeavy records (key, delta, count) if count already clears the
// local threshold; otherwise it is a no-op. The heap entry is set to the
// latest absolute count — equivalent to the spec's update_add(key, delta)
// whenever delta is exactly the increment since the prior call, but
// robust even when it isn't (e.g. the very first observation).
func (l *Local) AddIfHeavy(key uint32, delta, count, streamSize uint64) {
	if count < l.Threshold(streamSize) {
		return
	}
	l.pending = append(l.pending, PendingDelta{Key: key, Delta: delta, Count: count})
	l.heap.Update(key, count)
}

// DrainPending returns and clears the accumulated pending deltas.
func (l *Local) DrainPending() []PendingDelta {
	out := l.pending
	l.pending = nil
	return out
}

// PopBelow evicts every heap entry below threshold, per §4.5's
// pop_all_below and §8 invariant 5.
func (l *Local) PopBelow(threshold uint64) []Entry {
	return l.heap.PopAllBelow(threshold)
}

// Heavy returns every heap entry at or above threshold. Used by
// OWNER_LOCAL query mode (§4.4) to build the worker's contribution to a
// unioned heavy-hitter snapshot.
func (l *Local) Heavy(threshold uint64) []Entry {
	var out []Entry
	for _, e := range l.heap.All() {
		if e.Weight >= threshold {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of entries currently tracked.
func (l *Local) Len() int { return l.heap.Len() }
