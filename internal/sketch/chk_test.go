package sketch

import "testing"

func newTestCHK(t *testing.T) *CHK {
	t.Helper()
	cfg := Config{
		Buckets:            64,
		Theta:              0.01,
		PromotionThreshold: 8,
		DecayBase:          1.08,
		MaxKickDepth:       10,
	}
	return New(cfg, 1)
}

func TestNewPanicsOnNonPowerOfTwoBuckets(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected New to panic on a non-power-of-two bucket count")
		}
	}()
	New(Config{Buckets: 100}, 1)
}

func TestUpdateAndEstimateBasic(t *testing.T) {
	c := newTestCHK(t)
	c.Update(1, 5)
	if got := c.Estimate(1); got < 5 {
		t.Fatalf("Estimate(1) = %d, want >= 5", got)
	}
	if got := c.Estimate(2); got != 0 {
		t.Fatalf("Estimate(2) = %d, want 0 for an unseen key", got)
	}
}

func TestTotalTracksAllWeight(t *testing.T) {
	c := newTestCHK(t)
	var want uint64
	for key := uint32(0); key < 200; key++ {
		c.Update(key, 3)
		want += 3
	}
	if got := c.Total(); got != want {
		t.Fatalf("Total() = %d, want %d", got, want)
	}
}

func TestUpdateAndEstimateMatchesSeparateCalls(t *testing.T) {
	c := newTestCHK(t)
	got := c.UpdateAndEstimate(7, 4)
	want := c.Estimate(7)
	if got != want {
		t.Fatalf("UpdateAndEstimate = %d, Estimate after = %d", got, want)
	}
}

func TestRepeatedHeavyKeySurvivesNoise(t *testing.T) {
	c := newTestCHK(t)
	// Key 1 takes an empty heavy slot on its first update and keeps
	// accumulating there, interleaved with 500 distinct noise keys that
	// fill the remaining heavy slots and contend for the lobbies.
	for i := 0; i < 500; i++ {
		c.Update(1, 1)
		c.Update(uint32(1000+i), 1)
	}
	got := c.Estimate(1)
	if got < 400 {
		t.Fatalf("Estimate(1) = %d after 500 updates, want a count close to true frequency", got)
	}
}

func TestEstimateNeverUnderVsKnownSingleUpdate(t *testing.T) {
	c := newTestCHK(t)
	c.Update(42, 10)
	// A key seen exactly once can't have a smaller true count than what
	// was just inserted — collisions only ever inflate the estimate.
	if got := c.Estimate(42); got < 10 {
		t.Fatalf("Estimate(42) = %d, want >= 10", got)
	}
}

func TestBucketCount(t *testing.T) {
	c := newTestCHK(t)
	if got := c.BucketCount(); got != 64 {
		t.Fatalf("BucketCount() = %d, want 64", got)
	}
}
