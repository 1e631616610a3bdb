package delegation

import "sync/atomic"

// inboxNode is a Michael-Scott-style queue node carrying one handed-off
// filter. This is a purpose-built MPSC queue of filter handles, not a
// general-purpose lock-free queue package.
type inboxNode struct {
	filter *Filter
	next   atomic.Pointer[inboxNode]
}

// Inbox is the multi-producer single-consumer unbounded FIFO an owner
// drains for filters handed off by peer sources (Q[o] in the spec).
// Enqueue is lock-free (CAS loop); Dequeue assumes a single consumer and
// needs no synchronization beyond the shared head/tail pointers.
type Inbox struct {
	head atomic.Pointer[inboxNode]
	tail atomic.Pointer[inboxNode]
}

// NewInbox creates an empty inbox.
func NewInbox() *Inbox {
	dummy := &inboxNode{}
	q := &Inbox{}
	q.head.Store(dummy)
	q.tail.Store(dummy)
	return q
}

// Push enqueues a handed-off filter. Safe for concurrent use by any
// number of source goroutines.
func (q *Inbox) Push(f *Filter) {
	n := &inboxNode{filter: f}
	for {
		tail := q.tail.Load()
		next := tail.next.Load()
		if next == nil {
			if tail.next.CompareAndSwap(nil, n) {
				q.tail.CompareAndSwap(tail, n)
				return
			}
			continue
		}
		// Tail fell behind a completed enqueue; help it along.
		q.tail.CompareAndSwap(tail, next)
	}
}

// Pop removes and returns one filter, or false if the inbox was empty at
// the moment of the check. Must only be called by the single consumer
// (the owner).
func (q *Inbox) Pop() (*Filter, bool) {
	head := q.head.Load()
	next := head.next.Load()
	if next == nil {
		return nil, false
	}
	q.head.Store(next)
	f := next.filter
	next.filter = nil
	return f, true
}

// Empty is a best-effort hint; the result can be stale the instant it is
// returned under concurrent pushes.
func (q *Inbox) Empty() bool {
	return q.head.Load().next.Load() == nil
}
