// Package traversal implements a minimal contig walker over a kmerindex
// Index: starting from each of a worker's registered seed k-mers, it walks
// single-letter extensions until it hits a fork, a dead end, or the
// configured size cap.
//
// This is the "downstream consumer" spec.md §1 calls out as external to the
// indexing core; it is included here only so the index's C5 Lookup and C6
// StartKmerList are exercised by a real consumer, the way
// github.com/grailbio/bio/fusion pairs its kmer index with DetectFusion.
package traversal

// Opts configures a traversal run.
type Opts struct {
	// KmerLength must match the Opts.KmerLength the index was built with.
	KmerLength int
	// MaxContigSize bounds how many bases a single contig walk may emit
	// before stopping, carried over from the original assembler's
	// MAXIMUM_CONTIG_SIZE (commonDefaults_upc.h).
	MaxContigSize int
}

// DefaultMaxContigSize mirrors kmerindex.DefaultMaxContigSize so callers that
// only import traversal don't need to pull in kmerindex's constant by hand.
const DefaultMaxContigSize = 20000
