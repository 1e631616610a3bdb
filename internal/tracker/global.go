package tracker

import (
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v4"
)

// globalEntry is the SHARED_MAP aggregation mode's per-key accumulator.
// A pointer is stored in the map so concurrent publishers can bump the
// counter with a single atomic add instead of a map-level
// compare-and-swap per update.
type globalEntry struct {
	count atomic.Uint64
}

// Global is the SHARED_MAP global heavy-hitter aggregation strategy
// (§4.4): every worker's published deltas upsert into one lock-free
// concurrent map, and a query scans it once under no exclusive lock at
// all, tolerating the rare torn read with a single re-read (§7's
// "query-during-resize race").
type Global struct {
	m          *xsync.Map[uint32, *globalEntry]
	streamSize atomic.Uint64
	theta      float64
}

// NewGlobal creates an empty SHARED_MAP tracker with admission fraction
// theta.
func NewGlobal(theta float64) *Global {
	return &Global{m: xsync.NewMap[uint32, *globalEntry](), theta: theta}
}

// Publish folds a worker's drained pending deltas into the shared map and
// advances the global stream size, returning the new size.
func (g *Global) Publish(deltas []PendingDelta) uint64 {
	var sum uint64
	for _, d := range deltas {
		e, _ := g.m.LoadOrStore(d.Key, &globalEntry{})
		e.count.Add(d.Delta)
		sum += d.Delta
	}
	return g.streamSize.Add(sum)
}

// StreamSize returns the current global stream size.
func (g *Global) StreamSize() uint64 { return g.streamSize.Load() }

// Threshold returns theta * StreamSize, the current heavy-hitter bar.
func (g *Global) Threshold() uint64 {
	return uint64(float64(g.StreamSize()) * g.theta)
}

// Estimate returns key's current globally aggregated count, or 0 if it
// has never been published.
func (g *Global) Estimate(key uint32) uint64 {
	e, ok := g.m.Load(key)
	if !ok {
		return 0
	}
	return e.count.Load()
}

// Erase removes key from the shared map, e.g. once a worker's local
// eviction (PopBelow) determines it has fallen out of contention.
func (g *Global) Erase(key uint32) { g.m.Delete(key) }

// Snapshot returns every key currently at or above the heavy-hitter
// threshold. Each entry's counter is read twice; a mismatch means a
// concurrent publisher landed mid-read, and the second read is used,
// matching the single-retry tolerance the scan is allowed under §7.
func (g *Global) Snapshot() []Entry {
	threshold := g.Threshold()
	var out []Entry
	g.m.Range(func(key uint32, e *globalEntry) bool {
		c := e.count.Load()
		if c2 := e.count.Load(); c2 != c {
			c = c2
		}
		if c >= threshold {
			out = append(out, Entry{Key: key, Weight: c})
		}
		return true
	})
	return out
}
