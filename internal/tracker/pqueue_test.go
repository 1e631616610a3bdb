package tracker

import "testing"

func TestPushAndTop(t *testing.T) {
	q := New(0)
	q.Push(1, 10)
	q.Push(2, 5)
	q.Push(3, 20)

	top, ok := q.Top()
	if !ok || top.Key != 2 || top.Weight != 5 {
		t.Fatalf("Top() = (%v, %v), want (key=2, weight=5)", top, ok)
	}
}

func TestPushUpdatesExisting(t *testing.T) {
	q := New(0)
	q.Push(1, 10)
	q.Push(1, 50)
	if q.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 after re-pushing the same key", q.Len())
	}
	w, ok := q.Get(1)
	if !ok || w != 50 {
		t.Fatalf("Get(1) = (%d, %v), want (50, true)", w, ok)
	}
}

func TestUpdateAddAccumulates(t *testing.T) {
	q := New(0)
	if got := q.UpdateAdd(1, 5); got != 5 {
		t.Fatalf("UpdateAdd on new key = %d, want 5", got)
	}
	if got := q.UpdateAdd(1, 3); got != 8 {
		t.Fatalf("UpdateAdd on existing key = %d, want 8", got)
	}
}

func TestBoundedQueueDropsMinimumOnOverflow(t *testing.T) {
	q := New(3)
	q.Push(1, 10)
	q.Push(2, 5)
	q.Push(3, 20)
	q.Push(4, 15) // should evict key 2 (weight 5), the current minimum

	if q.Len() != 3 {
		t.Fatalf("Len() = %d, want 3 (bounded)", q.Len())
	}
	if q.Contains(2) {
		t.Fatalf("expected key 2 (minimum weight) to have been evicted")
	}
	for _, key := range []uint32{1, 3, 4} {
		if !q.Contains(key) {
			t.Fatalf("expected key %d to survive the overflow", key)
		}
	}
}

func TestPopAllBelowRemovesOnlyUnderThreshold(t *testing.T) {
	q := New(0)
	q.Push(1, 1)
	q.Push(2, 5)
	q.Push(3, 10)
	q.Push(4, 2)

	popped := q.PopAllBelow(5)
	if len(popped) != 2 {
		t.Fatalf("PopAllBelow(5) popped %d entries, want 2", len(popped))
	}
	for _, e := range popped {
		if e.Weight >= 5 {
			t.Fatalf("popped entry %v should have weight < 5", e)
		}
	}
	for _, e := range q.All() {
		if e.Weight < 5 {
			t.Fatalf("remaining entry %v has weight < threshold", e)
		}
	}
}

func TestRemove(t *testing.T) {
	q := New(0)
	q.Push(1, 1)
	q.Push(2, 2)
	q.Push(3, 3)

	if !q.Remove(2) {
		t.Fatalf("Remove(2) = false, want true")
	}
	if q.Contains(2) {
		t.Fatalf("key 2 still present after Remove")
	}
	if q.Remove(2) {
		t.Fatalf("Remove(2) a second time should report false")
	}
	if q.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", q.Len())
	}
}

func TestHeapInvariantHoldsAfterManyOps(t *testing.T) {
	q := New(0)
	weights := []uint64{50, 10, 40, 20, 30, 5, 60, 1}
	for i, w := range weights {
		q.Push(uint32(i), w)
	}
	var prev uint64
	first := true
	for q.Len() > 0 {
		e, _ := q.PopMin()
		if !first && e.Weight < prev {
			t.Fatalf("PopMin returned out-of-order weight %d after %d", e.Weight, prev)
		}
		prev = e.Weight
		first = false
	}
}
