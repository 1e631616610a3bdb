package sketch

import "sort"

// decayTable precomputes de[k] = sum_{i=1..k} b^i for k in [0, maxCounter],
// the expected cumulative decay weight of b (the exponential decay base,
// typically 1.08). Applying w units of weight to a lobby counter c decays
// it to the smallest k such that de[k]+w >= de[c] — computed by binary
// search instead of simulating w sequential probabilistic decays.
type decayTable struct {
	de []float64
}

// newDecayTable builds de[0..max] for decay base b.
func newDecayTable(b float64, max uint32) *decayTable {
	de := make([]float64, max+1)
	pow := 1.0
	for k := uint32(1); k <= max; k++ {
		pow *= b
		de[k] = de[k-1] + pow
	}
	return &decayTable{de: de}
}

// apply decays counter c by weight w, returning the resulting counter and
// any surplus weight left over once c has fully decayed to zero.
// remainder is nonzero only when newCounter == 0.
func (d *decayTable) apply(c, w uint32) (newCounter, remainder uint32) {
	if c == 0 {
		return 0, w
	}
	if int(c) >= len(d.de) {
		c = uint32(len(d.de) - 1)
	}
	target := d.de[c]
	// Smallest k in [0, c] such that de[k] + w >= target.
	k := sort.Search(int(c)+1, func(k int) bool {
		return d.de[k]+float64(w) >= target
	})
	if k == 0 {
		// de[0] == 0, so w >= target: the counter fully decays and the
		// surplus weight seeds whatever replaces it.
		surplus := float64(w) - target
		if surplus < 0 {
			surplus = 0
		}
		return 0, uint32(surplus + 0.5)
	}
	return uint32(k), 0
}
