// Package dsketch implements a parallel, approximate heavy-hitter
// detector over uint32 key streams: T worker threads each own a private
// Cuckoo-Heavy-Keeper sketch, a sharded delegation fabric routes
// non-local keys to their owner without a shared lock on the hot path,
// and a pluggable global aggregation strategy reconciles per-worker
// views into one heavy-hitter set.
package dsketch

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/qpopss/dsketch/internal/delegation"
	"github.com/qpopss/dsketch/internal/sketch"
	"github.com/qpopss/dsketch/internal/tracker"
)

// Engine is a running (or not-yet-started) heavy-hitter detector. The
// zero value is not usable; construct one with New.
type Engine struct {
	cfg      Config
	router   *delegation.Router
	workers  []*workerState
	global   *tracker.Global     // non-nil iff Aggregation == SharedMap
	streamSz *tracker.StreamSize // non-nil iff Aggregation == OwnerLocal
	logger   *slog.Logger

	run     atomic.Bool
	barrier chan struct{}
	group   *errgroup.Group
	cancel  context.CancelFunc
}

// New validates opts against defaultConfig and builds an Engine: one CHK
// sketch and one local tracker per worker, the full delegation fabric,
// and whichever global aggregation strategy was selected. The engine is
// not yet running; call Start.
func New(opts ...Option) (*Engine, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	sketchCfg := sketch.Config{
		Buckets:            cfg.BucketCount,
		Theta:              cfg.Theta,
		PromotionThreshold: cfg.PromotionThreshold,
		DecayBase:          cfg.DecayBase,
		MaxKickDepth:       cfg.MaxKickDepth,
	}

	workers := make([]*workerState, cfg.Threads)
	for i := range workers {
		workers[i] = &workerState{
			id:     i,
			sketch: sketch.New(sketchCfg, seedFor(i)),
			local:  tracker.NewGuardedLocal(cfg.LocalTrackerSize, cfg.Theta),
		}
	}

	e := &Engine{
		cfg:     *cfg,
		router:  delegation.NewRouter(cfg.Threads, cfg.FilterCapacity),
		workers: workers,
		logger:  cfg.Logger,
	}
	switch cfg.Aggregation {
	case SharedMap:
		e.global = tracker.NewGlobal(cfg.Theta)
	case OwnerLocal:
		e.streamSz = &tracker.StreamSize{}
	}
	return e, nil
}

// Start launches T worker goroutines and one evaluator goroutine, all
// gated behind a shared start barrier, and returns once they have been
// launched (not once they have reached the barrier). Calling Start twice
// without an intervening Stop returns ErrAlreadyStarted.
func (e *Engine) Start(ctx context.Context) error {
	if !e.run.CompareAndSwap(false, true) {
		return fmt.Errorf("start: %w", ErrAlreadyStarted)
	}

	ctx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.barrier = make(chan struct{})

	g, gctx := errgroup.WithContext(ctx)
	for _, w := range e.workers {
		g.Go(func() error { return e.runWorker(gctx, w) })
	}
	g.Go(func() error { return e.runEvaluator(gctx) })
	e.group = g

	close(e.barrier)
	e.logger.Info("dsketch engine started",
		"threads", e.cfg.Threads,
		"aggregation", e.cfg.Aggregation,
		"evaluation", e.cfg.Evaluation)
	return nil
}

// Stop cancels the worker/evaluator context and waits for every
// goroutine to return. Calling Stop before Start (or twice) returns
// ErrNotStarted.
func (e *Engine) Stop() error {
	if !e.run.CompareAndSwap(true, false) {
		return fmt.Errorf("stop: %w", ErrNotStarted)
	}
	e.cancel()
	err := e.group.Wait()
	e.logger.Info("dsketch engine stopped")
	if err != nil && err != context.Canceled {
		return err
	}
	return nil
}

// Feed drives worker_feed for workerID: every key is ingested directly
// if this worker owns it, or routed through the delegation fabric
// otherwise. Call it from the goroutine that represents that worker's
// own stream shard. Concurrent Feed calls for the same workerID are
// still not safe (matching the single-source-per-filter invariant,
// §4.3), but Feed is safe to call while Start is driving the same
// worker's background inbox-drain loop: w.mu serializes the two against
// the sketch and inbox (§5(b)).
func (e *Engine) Feed(workerID int, keys iter.Seq[uint32]) {
	w := e.workers[workerID]
	for key := range keys {
		w.receivedFromStream.Add(1)
		if owner := e.router.Owner(key); owner == workerID {
			w.selfUpdates.Add(1)
			w.mu.Lock()
			e.ingestLocal(w, key, 1)
			w.mu.Unlock()
			continue
		}
		e.route(w, key)
	}
	w.mu.Lock()
	e.drainInbox(w)
	w.mu.Unlock()
}

// route delivers key to its owner, draining w's own inbox and retrying
// whenever Route reports no progress (both buffers of the (w, owner)
// pair were locked) — the only way a source guarantees liveness without
// ever blocking (§4.3, §5).
func (e *Engine) route(w *workerState, key uint32) {
	for {
		res := e.router.Route(w.id, key)
		if res.DoubleBufferSwap {
			w.doubleBufferSwaps.Add(1)
		}
		if res.HandedOff {
			w.delegatedToFilters.Add(1)
			w.fullFilterHandoffs.Add(1)
		}
		if res.Routed {
			w.delegatedToItems.Add(1)
			return
		}
		w.blockedAttempts.Add(1)
		w.mu.Lock()
		e.drainInbox(w)
		w.mu.Unlock()
	}
}

// QueryEstimate returns key's current estimated count from its owning
// worker's sketch. The read is not synchronized against concurrent
// writes from the owner — a torn read of one (fingerprint, counter) slot
// is possible but self-corrects on the next update, the same benign-race
// tolerance this module's sketch hot path already accepts elsewhere.
func (e *Engine) QueryEstimate(key uint32) uint64 {
	w := e.workers[e.router.Owner(key)]
	w.queriesProcessed.Add(1)
	return w.sketch.Estimate(key)
}

// QueryHeavyHitters returns every key currently at or above the global
// heavy-hitter threshold, using whichever aggregation strategy is
// configured.
func (e *Engine) QueryHeavyHitters() map[uint32]uint64 {
	out := make(map[uint32]uint64)
	if e.global != nil {
		for _, ent := range e.global.Snapshot() {
			out[ent.Key] = ent.Weight
		}
		return out
	}

	threshold := uint64(float64(e.streamSz.Load()) * e.cfg.Theta)
	for _, w := range e.workers {
		for _, ent := range w.local.SnapshotHeavy(threshold) {
			if prev, ok := out[ent.Key]; !ok || ent.Weight > prev {
				out[ent.Key] = ent.Weight
			}
		}
	}
	return out
}

// Stats returns a point-in-time snapshot of every worker's lifetime
// counters.
func (e *Engine) Stats() []WorkerStats {
	out := make([]WorkerStats, len(e.workers))
	for i, w := range e.workers {
		out[i] = WorkerStats{
			WorkerID:             w.id,
			ItemsReceived:        w.itemsReceived.Load(),
			ReceivedFromStream:   w.receivedFromStream.Load(),
			SelfUpdates:          w.selfUpdates.Load(),
			QueriesProcessed:     w.queriesProcessed.Load(),
			DelegatedToItems:     w.delegatedToItems.Load(),
			DelegatedToFilters:   w.delegatedToFilters.Load(),
			FullFilterHandoffs:   w.fullFilterHandoffs.Load(),
			BlockedAttempts:      w.blockedAttempts.Load(),
			DoubleBufferSwaps:    w.doubleBufferSwaps.Load(),
			DelegatedFromItems:   w.delegatedFromItems.Load(),
			DelegatedFromFilters: w.delegatedFromFilters.Load(),
		}
	}
	return out
}
