package delegation

import "testing"

func TestOwnerIsDeterministicAndInRange(t *testing.T) {
	r := NewRouter(8, 16)
	for key := uint32(0); key < 10_000; key++ {
		o := r.Owner(key)
		if o < 0 || o >= 8 {
			t.Fatalf("Owner(%d) = %d, out of range [0, 8)", key, o)
		}
		if r.Owner(key) != o {
			t.Fatalf("Owner(%d) not deterministic", key)
		}
	}
}

func TestOwnerMatchesModuloForPowerOfTwoThreads(t *testing.T) {
	r := NewRouter(4, 16)
	for key := uint32(0); key < 1000; key++ {
		want := int(key % 4)
		if got := r.Owner(key); got != want {
			t.Fatalf("Owner(%d) = %d, want %d", key, got, want)
		}
	}
}

func TestRouteHandsOffAtCapacity(t *testing.T) {
	r := NewRouter(2, 4)
	src, owner := 0, 1
	// Find enough distinct keys owned by 1 to fill one filter.
	var keys []uint32
	for key := uint32(0); len(keys) < 4; key++ {
		if r.Owner(key) == owner {
			keys = append(keys, key)
		}
	}

	var sawHandoff bool
	for _, k := range keys {
		res := r.Route(src, k)
		if !res.Routed {
			t.Fatalf("Route(%d) unexpectedly reported no progress", k)
		}
		if res.HandedOff {
			sawHandoff = true
		}
	}
	if !sawHandoff {
		t.Fatalf("expected a hand-off once the filter reached capacity")
	}
	if r.Inbox(owner).Empty() {
		t.Fatalf("expected the owner's inbox to hold the handed-off filter")
	}
}

func TestRouteDrainedFilterIsUsable(t *testing.T) {
	r := NewRouter(2, 4)
	src, owner := 0, 1
	var keys []uint32
	for key := uint32(0); len(keys) < 4; key++ {
		if r.Owner(key) == owner {
			keys = append(keys, key)
		}
	}
	for _, k := range keys {
		r.Route(src, k)
	}

	f, ok := r.Inbox(owner).Pop()
	if !ok {
		t.Fatalf("expected a filter in the owner's inbox")
	}
	gotKeys, gotCounts := f.Entries()
	if len(gotKeys) != 4 {
		t.Fatalf("drained filter has %d entries, want 4", len(gotKeys))
	}
	for _, c := range gotCounts {
		if c != 1 {
			t.Fatalf("expected each distinct key counted once, got count %d", c)
		}
	}
}
