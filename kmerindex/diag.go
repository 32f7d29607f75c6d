package kmerindex

import farm "github.com/dgryski/go-farm"

// DebugFingerprint farm-hashes a packed key for log correlation across runs
// and processes (e.g. to tie together "which rank inserted this k-mer"
// messages without printing the full packed bytes). It is never used as the
// index's own bucket hash: I6 pins that to DJB2, so farmhash only appears
// here, on a path the ingest/query protocol never calls, grounded on
// fusion/kmer_index.go's hashKmer (same library, same Hash64WithSeed call).
func DebugFingerprint(packed []byte) uint64 {
	return farm.Hash64WithSeed(packed, 0)
}
