package kmerindex

// Hash computes the DJB2 hash of a packed key: starting state h=5381, and
// for each byte c, h = h*33 + c, in wraparound unsigned 64-bit arithmetic.
// It is pure and deterministic (P3), and does not look at lExt/rExt. The
// algorithm is pinned by the spec for reproducibility across processes and
// runs, not chosen for hash quality, so it is never swapped for a
// higher-quality ecosystem hash (see DESIGN.md).
func Hash(packed []byte) uint64 {
	h := uint64(5381)
	for _, c := range packed {
		h = h*33 + uint64(c)
	}
	return h
}

// BucketOf reduces a DJB2 hash modulo the bucket count B, satisfying P4
// (0 <= result < B).
func BucketOf(h uint64, numBuckets int64) int64 {
	return int64(h % uint64(numBuckets))
}
