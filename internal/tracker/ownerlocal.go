package tracker

import (
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v4"
)

// StreamSize is a small shared atomic counter used in place of Global's
// map-embedded one when the OWNER_LOCAL aggregation mode is active and
// there is no shared map to carry it.
type StreamSize struct {
	v atomic.Uint64
}

// Add adds delta and returns the new total.
func (s *StreamSize) Add(delta uint64) uint64 { return s.v.Add(delta) }

// Load returns the current total.
func (s *StreamSize) Load() uint64 { return s.v.Load() }

// GuardedLocal is one worker's contribution to the OWNER_LOCAL
// aggregation mode (the "QPOPSS" variant, §4.4): the owning worker
// mutates its Local tracker under the writer lock, while a query from
// any other goroutine takes the brief reader lock to snapshot it.
// xsync.RBMutex is a reader-biased mutex (the BRAVO algorithm): readers
// that are never contended by a writer pay no cache-line ping-pong,
// which fits this access pattern — writes (the owner) are frequent but
// each one is tiny, reads (queries) are rare and tolerate the extra cost
// of the slow path. Every access, owner or query, goes through mu: a
// Local holds a plain map and slice, so skipping the lock on the "only
// one goroutine writes" assumption would still race a concurrent reader.
type GuardedLocal struct {
	mu    *xsync.RBMutex
	local *Local
}

// NewGuardedLocal creates an owner-local tracker bounded to k entries.
func NewGuardedLocal(k int, theta float64) *GuardedLocal {
	return &GuardedLocal{mu: xsync.NewRBMutex(), local: NewLocal(k, theta)}
}

// AddIfHeavy is the owner's write path; see Local.AddIfHeavy.
func (g *GuardedLocal) AddIfHeavy(key uint32, delta, count, streamSize uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.local.AddIfHeavy(key, delta, count, streamSize)
}

// DrainPending is the owner's write path; see Local.DrainPending.
func (g *GuardedLocal) DrainPending() []PendingDelta {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.local.DrainPending()
}

// PopBelow is the owner's (or evaluator's) write path; see Local.PopBelow.
func (g *GuardedLocal) PopBelow(threshold uint64) []Entry {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.local.PopBelow(threshold)
}

// Len takes the reader lock and returns the number of entries tracked.
func (g *GuardedLocal) Len() int {
	t := g.mu.RLock()
	defer g.mu.RUnlock(t)
	return g.local.Len()
}

// SnapshotHeavy takes the reader lock and returns every entry in this
// worker's local view at or above threshold, for a query to union across
// all workers.
func (g *GuardedLocal) SnapshotHeavy(threshold uint64) []Entry {
	t := g.mu.RLock()
	defer g.mu.RUnlock(t)
	return g.local.Heavy(threshold)
}
