package delegation

import (
	"sync"
	"testing"
)

func TestInboxFIFO(t *testing.T) {
	q := NewInbox()
	if !q.Empty() {
		t.Fatalf("new inbox should be empty")
	}
	a, b, c := NewFilter(4), NewFilter(4), NewFilter(4)
	q.Push(a)
	q.Push(b)
	q.Push(c)

	for _, want := range []*Filter{a, b, c} {
		got, ok := q.Pop()
		if !ok || got != want {
			t.Fatalf("Pop() = (%v, %v), want (%v, true)", got, ok, want)
		}
	}
	if !q.Empty() {
		t.Fatalf("inbox should be empty after draining every push")
	}
	if _, ok := q.Pop(); ok {
		t.Fatalf("Pop on empty inbox should report false")
	}
}

func TestInboxConcurrentProducers(t *testing.T) {
	q := NewInbox()
	const producers = 8
	const perProducer = 200

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Go(func() {
			for i := 0; i < perProducer; i++ {
				q.Push(NewFilter(4))
			}
		})
	}
	wg.Wait()

	count := 0
	for {
		if _, ok := q.Pop(); !ok {
			break
		}
		count++
	}
	if want := producers * perProducer; count != want {
		t.Fatalf("drained %d filters, want %d", count, want)
	}
}
