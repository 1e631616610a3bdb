// Package delegation implements the sharded per-owner delegation fabric:
// micro-filters that batch keys destined for a peer worker, double
// buffering so a source never blocks on a full filter handoff, owner
// assignment, and the MPSC inbox workers drain on the owner side.
package delegation

import "sync/atomic"

// Filter is a small per-(source, owner) batching buffer holding distinct
// (key, count) pairs up to Capacity. It is mutated by its source only,
// except for Locked, which the source sets to hand the filter to its
// owner and the owner clears after draining.
//
// NOTE: manual lock/unlock-free field access (no mutex) mirrors the
// teacher's hot-path style of trading a little unsafety for avoiding any
// synchronization on a structure only one goroutine ever writes.
type Filter struct {
	keys     []uint32
	counts   []uint32
	size     int32 // occupied slots; mutated by the source only
	Locked   atomic.Bool
	Capacity int
}

// NewFilter allocates a filter of the given capacity, which must be a
// multiple of 4 (the probe width).
func NewFilter(capacity int) *Filter {
	if capacity <= 0 || capacity%4 != 0 {
		panic("delegation: filter capacity must be a positive multiple of 4")
	}
	return &Filter{
		keys:     make([]uint32, capacity),
		counts:   make([]uint32, capacity),
		Capacity: capacity,
	}
}

// Size returns the number of occupied slots.
func (f *Filter) Size() int { return int(f.size) }

// Full reports whether the filter has reached capacity.
func (f *Filter) Full() bool { return int(f.size) == f.Capacity }

// Reset clears the filter for reuse by its source. Must only be called
// by the owner after it has drained the filter and is handing it back.
func (f *Filter) Reset() {
	f.size = 0
	f.Locked.Store(false)
}

// UpdateOrInsert probes keys[0:size) in blocks of 4 ("SIMD-compare four
// keys at a time, report the first-match index" — on platforms without a
// 128-bit vector compare a portable scalar loop is a correct, merely
// slower, substitute). On a hit it increments the matching count and
// returns the new value; on a miss, if there is room, it appends (key,1)
// and returns 1. ok is false only if the filter is already full and the
// key isn't present — the caller must have checked Full() beforehand.
func (f *Filter) UpdateOrInsert(key uint32) (postCount uint32, ok bool) {
	n := int(f.size)
	i := 0
	for ; i+4 <= n; i += 4 {
		switch key {
		case f.keys[i]:
			f.counts[i]++
			return f.counts[i], true
		case f.keys[i+1]:
			f.counts[i+1]++
			return f.counts[i+1], true
		case f.keys[i+2]:
			f.counts[i+2]++
			return f.counts[i+2], true
		case f.keys[i+3]:
			f.counts[i+3]++
			return f.counts[i+3], true
		}
	}
	for ; i < n; i++ {
		if f.keys[i] == key {
			f.counts[i]++
			return f.counts[i], true
		}
	}
	if n == f.Capacity {
		return 0, false
	}
	f.keys[n] = key
	f.counts[n] = 1
	f.size = int32(n + 1)
	return 1, true
}

// Entries returns the occupied (key, count) pairs for draining. The
// caller (the owner, after observing Locked) must not retain the slices
// past the next Reset.
func (f *Filter) Entries() (keys, counts []uint32) {
	n := int(f.size)
	return f.keys[:n], f.counts[:n]
}

// Pair is the double-buffered pair of filters a source uses to target one
// owner: while one buffer is handed off (Locked) the source keeps
// writing into the other.
type Pair struct {
	bufs   [2]*Filter
	active atomic.Int32 // index into bufs, mutated only by the owning source
}

// NewPair allocates a fresh double-buffered filter pair of the given
// per-buffer capacity.
func NewPair(capacity int) *Pair {
	return &Pair{bufs: [2]*Filter{NewFilter(capacity), NewFilter(capacity)}}
}

// Current returns the buffer the source should currently write into.
func (p *Pair) Current() *Filter {
	return p.bufs[p.active.Load()]
}

// Swap flips which buffer is current. Only the source goroutine owning
// this pair ever calls it.
func (p *Pair) Swap() {
	p.active.Store(1 - p.active.Load())
}
