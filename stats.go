package dsketch

// WorkerStats is a snapshot of one worker's lifetime counters, field for
// field against the source algorithm's per-thread stat collector: items
// ingested, delegation traffic broken down by direction and cause, and
// hand-off/contention counts.
type WorkerStats struct {
	WorkerID int `json:"worker_id"`

	// ItemsReceived is every key applied to this worker's own sketch,
	// whether it arrived via a self-update (this worker owns the key)
	// or a peer's delegated hand-off: it equals SelfUpdates +
	// DelegatedFromItems, with each drained filter entry counted once
	// whatever its batched count.
	ItemsReceived uint64 `json:"items_received"`
	// ReceivedFromStream is every key Feed was given for this worker's
	// own stream shard, regardless of whether it was kept locally or
	// routed to another owner.
	ReceivedFromStream uint64 `json:"received_from_stream"`
	// SelfUpdates is the subset of ReceivedFromStream this worker owns
	// and ingested directly, without delegation. ReceivedFromStream -
	// SelfUpdates equals the number of keys routed away, so summing
	// DelegatedToItems across every worker o must equal
	// Σ ReceivedFromStream[o] - Σ SelfUpdates[o] (§8).
	SelfUpdates uint64 `json:"self_updates"`
	// QueriesProcessed is every QueryEstimate call for a key this worker
	// owns. QueryHeavyHitters calls are not counted.
	QueriesProcessed uint64 `json:"queries_processed"`

	// DelegatedToItems is the number of keys this worker routed to a
	// peer owner (summed across all peers).
	DelegatedToItems uint64 `json:"delegated_to_items"`
	// DelegatedToFilters is the number of delegation filters handed off
	// to peers.
	DelegatedToFilters uint64 `json:"delegated_to_filters"`
	// FullFilterHandoffs counts hand-offs triggered by a filter reaching
	// capacity. The source distinguishes capacity-driven from
	// size-driven hand-offs; this module collapses that into one
	// counter (see DESIGN.md).
	FullFilterHandoffs uint64 `json:"full_filter_handoffs"`
	// BlockedAttempts counts Route calls that found both of a peer's
	// buffers locked and made no progress.
	BlockedAttempts uint64 `json:"blocked_attempts"`
	// DoubleBufferSwaps counts times this worker flipped to the
	// alternate buffer of a (source, owner) pair.
	DoubleBufferSwaps uint64 `json:"double_buffer_swaps"`

	// DelegatedFromItems is the number of keys this worker received as
	// an owner, across all peers.
	DelegatedFromItems uint64 `json:"delegated_from_items"`
	// DelegatedFromFilters is the number of filters this worker drained
	// from its inbox.
	DelegatedFromFilters uint64 `json:"delegated_from_filters"`
}
