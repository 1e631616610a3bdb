package delegation

// modTableSize is the width of the precomputed owner table: it speeds up
// owner = key mod T for the common case of T <= 512 by reducing on the
// key's low 9 bits instead of doing a full 32-bit integer division. The
// table is exact whenever T divides modTableSize (true for every power
// of two thread count up to 512, the configurations this system targets);
// for other T <= 512 it is the same approximation the source algorithm
// uses, traded for speed over a full modulo on the hot routing path.
const modTableSize = 512

// Router assigns each key a single owner and routes non-local keys
// through per-(source, owner) delegation filters into the owner's inbox.
type Router struct {
	numThreads int
	pairs      [][]*Pair // pairs[src][dst], nil on the diagonal
	inboxes    []*Inbox  // one per owner
	modTable   [modTableSize]int32
}

// NewRouter builds the full [T][T] filter-pair grid and one inbox per
// worker. filterCapacity is the per-buffer capacity C (§3), typically 16.
func NewRouter(numThreads, filterCapacity int) *Router {
	r := &Router{
		numThreads: numThreads,
		pairs:      make([][]*Pair, numThreads),
		inboxes:    make([]*Inbox, numThreads),
	}
	for i := 0; i < modTableSize; i++ {
		r.modTable[i] = int32(i % numThreads)
	}
	for s := 0; s < numThreads; s++ {
		r.pairs[s] = make([]*Pair, numThreads)
		for o := 0; o < numThreads; o++ {
			if o == s {
				continue
			}
			r.pairs[s][o] = NewPair(filterCapacity)
		}
	}
	for o := 0; o < numThreads; o++ {
		r.inboxes[o] = NewInbox()
	}
	return r
}

// Owner returns the unique worker that owns key. For numThreads <= 512 it
// is (key mod 512) mod numThreads via modTable, which equals key mod
// numThreads whenever numThreads divides 512; above 512 it is key mod
// numThreads. Deterministic and stateless.
func (r *Router) Owner(key uint32) int {
	if r.numThreads <= modTableSize {
		return int(r.modTable[key&(modTableSize-1)])
	}
	return int(key % uint32(r.numThreads))
}

// Inbox returns the MPSC inbox for owner o.
func (r *Router) Inbox(o int) *Inbox { return r.inboxes[o] }

// RouteResult reports what Route did, for per-worker statistics.
type RouteResult struct {
	Routed           bool // false means both buffers were locked; caller must drain and retry
	HandedOff        bool // the active buffer reached capacity and was enqueued
	DoubleBufferSwap bool // the source had to flip to the alternate buffer
}

// Route delivers key from source src to its owner's delegation filter.
// If the owner is src itself, callers should update the local sketch
// directly instead of calling Route.
func (r *Router) Route(src int, key uint32) RouteResult {
	o := r.Owner(key)
	pair := r.pairs[src][o]
	f := pair.Current()

	var res RouteResult
	if f.Locked.Load() {
		pair.Swap()
		res.DoubleBufferSwap = true
		f = pair.Current()
		if f.Locked.Load() {
			// Both buffers handed off; the owner hasn't drained yet.
			// Caller must drain its own inbox to guarantee progress and
			// retry — it is never safe to block here.
			return res
		}
	}

	res.Routed = true
	if _, ok := f.UpdateOrInsert(key); !ok {
		// Capacity was checked by Full() below in the normal flow; this
		// only trips if the caller raced the buffer swap, in which case
		// there is nothing more to do than report no progress this call.
		res.Routed = false
		return res
	}
	if f.Full() {
		f.Locked.Store(true)
		r.inboxes[o].Push(f)
		pair.Swap()
		res.HandedOff = true
	}
	return res
}
