// Package tracker implements the heavy-hitter views: a bounded indexed
// min-heap per worker, and the two global aggregation strategies
// (SHARED_MAP and OWNER_LOCAL) that turn per-worker local views into one
// globally consistent heavy-hitter set.
package tracker

// Entry is a (key, weight) pair returned from bulk heap operations.
type Entry struct {
	Key    uint32
	Weight uint64
}

// PQueue is an indexed, optionally size-bounded min-heap keyed by weight.
// The {key -> heap index} map is kept in sync with the array on every
// mutation so Update/Contains are O(1) lookup + O(log n) sift, matching
// spec's "indexed min-heap array plus a {key -> index} map" (§4.5).
type PQueue struct {
	items   []Entry
	index   map[uint32]int
	maxSize int // 0 means unbounded
}

// New creates an empty queue. maxSize <= 0 means unbounded; on overflow
// the minimum entry is dropped to make room (§4.5: "on overflow, drop the
// minimum").
func New(maxSize int) *PQueue {
	return &PQueue{index: make(map[uint32]int), maxSize: maxSize}
}

// Len returns the number of entries currently held.
func (q *PQueue) Len() int { return len(q.items) }

// Contains reports whether key has an entry, in O(1).
func (q *PQueue) Contains(key uint32) bool {
	_, ok := q.index[key]
	return ok
}

// Get returns key's current weight.
func (q *PQueue) Get(key uint32) (uint64, bool) {
	i, ok := q.index[key]
	if !ok {
		return 0, false
	}
	return q.items[i].Weight, true
}

// Top returns the minimum-weight entry without removing it.
func (q *PQueue) Top() (Entry, bool) {
	if len(q.items) == 0 {
		return Entry{}, false
	}
	return q.items[0], true
}

// Push inserts key with weight w, or updates it if already present. If
// the queue is bounded and this insert would exceed maxSize, the new
// minimum is dropped (which may be the just-inserted entry itself).
func (q *PQueue) Push(key uint32, w uint64) {
	if i, ok := q.index[key]; ok {
		q.setWeight(i, w)
		return
	}
	q.items = append(q.items, Entry{Key: key, Weight: w})
	i := len(q.items) - 1
	q.index[key] = i
	q.siftUp(i)

	if q.maxSize > 0 && len(q.items) > q.maxSize {
		q.PopMin()
	}
}

// Update sets key's weight to w, inserting it if absent (subject to the
// same bound as Push).
func (q *PQueue) Update(key uint32, w uint64) {
	q.Push(key, w)
}

// UpdateAdd adds delta to key's weight, inserting it as delta if absent.
func (q *PQueue) UpdateAdd(key uint32, delta uint64) uint64 {
	if i, ok := q.index[key]; ok {
		nw := q.items[i].Weight + delta
		q.setWeight(i, nw)
		return nw
	}
	q.Push(key, delta)
	return delta
}

// PopMin removes and returns the minimum entry.
func (q *PQueue) PopMin() (Entry, bool) {
	if len(q.items) == 0 {
		return Entry{}, false
	}
	min := q.items[0]
	last := len(q.items) - 1
	q.swap(0, last)
	q.items = q.items[:last]
	delete(q.index, min.Key)
	if len(q.items) > 0 {
		q.siftDown(0)
	}
	return min, true
}

// PopAllBelow repeatedly pops the minimum while it is below threshold,
// returning every popped entry. §8 invariant 5: afterward every remaining
// entry has weight >= threshold.
func (q *PQueue) PopAllBelow(threshold uint64) []Entry {
	var popped []Entry
	for {
		top, ok := q.Top()
		if !ok || top.Weight >= threshold {
			return popped
		}
		e, _ := q.PopMin()
		popped = append(popped, e)
	}
}

// All returns a copy of every entry currently held, in no particular
// order.
func (q *PQueue) All() []Entry {
	out := make([]Entry, len(q.items))
	copy(out, q.items)
	return out
}

// Remove deletes key if present.
func (q *PQueue) Remove(key uint32) bool {
	i, ok := q.index[key]
	if !ok {
		return false
	}
	last := len(q.items) - 1
	q.swap(i, last)
	q.items = q.items[:last]
	delete(q.index, key)
	if i < len(q.items) {
		q.siftDown(i)
		q.siftUp(i)
	}
	return true
}

func (q *PQueue) setWeight(i int, w uint64) {
	old := q.items[i].Weight
	q.items[i].Weight = w
	if w < old {
		q.siftUp(i)
	} else if w > old {
		q.siftDown(i)
	}
}

func (q *PQueue) swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
	q.index[q.items[i].Key] = i
	q.index[q.items[j].Key] = j
}

func (q *PQueue) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if q.items[parent].Weight <= q.items[i].Weight {
			break
		}
		q.swap(parent, i)
		i = parent
	}
}

func (q *PQueue) siftDown(i int) {
	n := len(q.items)
	for {
		left, right := 2*i+1, 2*i+2
		smallest := i
		if left < n && q.items[left].Weight < q.items[smallest].Weight {
			smallest = left
		}
		if right < n && q.items[right].Weight < q.items[smallest].Weight {
			smallest = right
		}
		if smallest == i {
			return
		}
		q.swap(i, smallest)
		i = smallest
	}
}
