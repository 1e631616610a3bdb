// Package sketch implements the Cuckoo-Heavy-Keeper frequency estimator:
// a two-table cuckoo hash of fingerprinted buckets with a lobby slot per
// bucket, probabilistic exponential-decay admission, promotion to heavy
// slots, and bounded kick-out chains.
package sketch

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// kickMultiplier spreads the alternate bucket index away from the primary
// index. Matches the 0x5bd1e995 MurmurHash2 multiplier used for index
// mixing in the source algorithm.
const kickMultiplier = 0x5bd1e995

// hash64 returns a 64-bit avalanche hash of key mixed with seed.
//
// xxhash is used here rather than a hand-rolled Bob hash: the corpus
// already standardizes on it for exactly this "hash a fixed-size key into
// a 64-bit value for fingerprint+index derivation" role (cuckoo filters,
// sharded maps), so there is no reason to hand-roll one.
func hash64(key uint32, seed uint64) uint64 {
	var buf [12]byte
	binary.LittleEndian.PutUint32(buf[0:4], key)
	binary.LittleEndian.PutUint64(buf[4:12], seed)
	return xxhash.Sum64(buf[:])
}

// fingerprint is the low 16 bits derived from a key's hash.
// A zero fingerprint is a legitimate tag: slots are distinguished as
// empty by their counter being zero, never by the fingerprint value.
type fingerprint = uint16

// indices returns the fingerprint and the two candidate bucket indices
// (one per table) for key, given bucketMask = buckets-1 for a power-of-two
// bucket count.
func indices(key uint32, seed uint64, bucketMask uint64) (fp fingerprint, i1, i2 uint64) {
	h := hash64(key, seed)
	fp = fingerprint(h & 0xFFFF)
	i1 = (h >> 32) & bucketMask
	i2 = (i1 ^ (kickMultiplier * uint64(fp))) & bucketMask
	return fp, i1, i2
}
