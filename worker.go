package dsketch

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/qpopss/dsketch/internal/sketch"
	"github.com/qpopss/dsketch/internal/tracker"
)

// inboxPollInterval bounds how long a peer's handed-off filter can sit
// unconsumed when this worker isn't itself actively calling Feed.
const inboxPollInterval = 2 * time.Millisecond

// workerState is one worker's slice of the engine: its own frequency
// estimator, its local heavy-hitter view, and its lifetime counters.
// §5(b) requires every sketch to be mutated by exactly one goroutine at
// a time; since both Feed (driven by the caller's own stream-shard
// goroutine) and the background runWorker loop started by Start touch
// the same sketch and inbox, mu serializes them — whichever one is
// processing a batch holds mu for its duration. The counters are atomic
// because Stats() reads them from the caller's goroutine without taking
// mu.
type workerState struct {
	id     int
	sketch sketch.Estimator
	local  *tracker.GuardedLocal

	// mu guards every call into ingestLocal/drainInbox/publish for this
	// worker, across both Feed and runWorker.
	mu sync.Mutex

	itemsReceived        atomic.Uint64
	receivedFromStream   atomic.Uint64
	selfUpdates          atomic.Uint64
	queriesProcessed     atomic.Uint64
	delegatedToItems     atomic.Uint64
	delegatedToFilters   atomic.Uint64
	fullFilterHandoffs   atomic.Uint64
	blockedAttempts      atomic.Uint64
	doubleBufferSwaps    atomic.Uint64
	delegatedFromItems   atomic.Uint64
	delegatedFromFilters atomic.Uint64
}

// seedFor derives a per-worker hash seed so fingerprint collisions
// decorrelate across workers' independent sketches. Uses the splitmix64
// constant purely as a cheap avalanche step, not for any cryptographic
// property.
func seedFor(workerID int) uint64 {
	return uint64(workerID)*0x9E3779B97F4A7C15 + 1
}

// ingestLocal applies weight to key directly against w's own sketch and
// feeds the result into w's local heavy-hitter tracker. Callers must
// hold w.mu: it runs from both Feed's self-update path and drainInbox's
// peer-delegated path, and those must never touch the sketch
// concurrently.
func (e *Engine) ingestLocal(w *workerState, key uint32, weight uint32) {
	w.itemsReceived.Add(1)
	count := w.sketch.UpdateAndEstimate(key, weight)
	w.local.AddIfHeavy(key, uint64(weight), count, e.streamSizeValue())
	e.publish(w)
}

// drainInbox pops every filter peers have handed off to w and applies
// each batched (key, count) pair to w's sketch, then returns the filter
// to circulation. Callers must hold w.mu.
func (e *Engine) drainInbox(w *workerState) {
	inbox := e.router.Inbox(w.id)
	for {
		f, ok := inbox.Pop()
		if !ok {
			return
		}
		keys, counts := f.Entries()
		for i, k := range keys {
			e.ingestLocal(w, k, counts[i])
		}
		w.delegatedFromItems.Add(uint64(len(keys)))
		w.delegatedFromFilters.Add(1)
		f.Reset()
	}
}

// publish drains w's accumulated pending heavy-key deltas into whichever
// global aggregation strategy is configured.
func (e *Engine) publish(w *workerState) {
	deltas := w.local.DrainPending()
	if len(deltas) == 0 {
		return
	}
	if e.global != nil {
		e.global.Publish(deltas)
		return
	}
	var sum uint64
	for _, d := range deltas {
		sum += d.Delta
	}
	e.streamSz.Add(sum)
}

// streamSizeValue returns the current global stream size regardless of
// aggregation mode.
func (e *Engine) streamSizeValue() uint64 {
	if e.global != nil {
		return e.global.StreamSize()
	}
	return e.streamSz.Load()
}

// runWorker is the background half of the owner processing loop (§4.3):
// Feed does the synchronous ingest-and-route work when the caller drives
// it directly, but peers can hand filters to this worker's inbox at any
// time, so a background goroutine keeps draining it even when nothing is
// calling Feed right now. It holds w.mu for every drain/publish so it
// never races a concurrent Feed call for the same worker (§5(b)).
func (e *Engine) runWorker(ctx context.Context, w *workerState) error {
	pinWorker()
	<-e.barrier

	ticker := time.NewTicker(inboxPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			e.drainInbox(w)
			e.publish(w)
			w.mu.Unlock()
			return nil
		case <-ticker.C:
			w.mu.Lock()
			e.drainInbox(w)
			e.publish(w)
			w.mu.Unlock()
		}
	}
}
