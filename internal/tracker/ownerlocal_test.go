package tracker

import (
	"sync"
	"testing"
)

func TestStreamSizeAdd(t *testing.T) {
	var s StreamSize
	if got := s.Add(5); got != 5 {
		t.Fatalf("Add(5) = %d, want 5", got)
	}
	if got := s.Add(3); got != 8 {
		t.Fatalf("Add(3) = %d, want 8", got)
	}
	if got := s.Load(); got != 8 {
		t.Fatalf("Load() = %d, want 8", got)
	}
}

func TestGuardedLocalOwnerWritesVisibleToSnapshot(t *testing.T) {
	g := NewGuardedLocal(10, 0.01)
	g.AddIfHeavy(1, 500, 500, 1000)

	heavy := g.SnapshotHeavy(100)
	if len(heavy) != 1 || heavy[0].Key != 1 {
		t.Fatalf("SnapshotHeavy(100) = %v, want only key 1", heavy)
	}
}

func TestGuardedLocalConcurrentOwnerAndSnapshot(t *testing.T) {
	g := NewGuardedLocal(64, 0.01)
	var wg sync.WaitGroup
	wg.Go(func() {
		for i := uint32(0); i < 2000; i++ {
			g.AddIfHeavy(i, 500, 500, 1000)
		}
	})
	wg.Go(func() {
		for i := 0; i < 200; i++ {
			_ = g.SnapshotHeavy(100)
		}
	})
	wg.Wait()
}
