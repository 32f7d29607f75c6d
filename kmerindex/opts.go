// Package kmerindex implements a distributed, parallel de Bruijn graph k-mer
// index: a globally partitioned, chained hash table of fixed-length DNA
// k-mers, the 2-bit packed representation of those k-mers, and the
// concurrent insertion protocol that populates the table from many
// cooperating workers.
package kmerindex

// Opts collects the configuration constants that govern an Index's shape and
// the SPMD worker fan-out used to build it.
type Opts struct {
	// KmerLength is K, the length in bases of every indexed k-mer.
	KmerLength int

	// LoadFactor determines the bucket-table size: B = ceil(ExpectedKmers *
	// LoadFactor). 1.0 is the reference value.
	LoadFactor float64

	// ExpectedKmers is an upper bound on the number of distinct k-mers that
	// will be inserted. It sizes the bucket table; the table never resizes.
	ExpectedKmers int64

	// HeapBlockSize is the number of KmerRecord slots each worker's heap
	// stripe reserves. It must be large enough that no worker's local insert
	// count ever exceeds it (see HeapExhausted in errors.go).
	HeapBlockSize int64

	// Workers is W, the number of SPMD ranks cooperating on the index. After
	// a single Create, each rank calls InitRank, then Add/RegisterStart, with
	// a distinct rank in [0, Workers); any rank may then call Lookup.
	Workers int

	// UseHugePages requests that the heap's backing storage be allocated via
	// mmap+MADV_HUGEPAGE instead of a plain Go slice, matching the layout
	// fusion.kmerIndex.initShard uses for its own append-only kmer table.
	// Has no effect on non-Linux platforms.
	UseHugePages bool
}

// DefaultMaxContigSize bounds how far a traversal may walk before giving up; it is
// not interpreted by kmerindex itself (see the traversal package) but is
// carried here because it shares the UFX/index configuration surface, the
// same way C's commonDefaults_upc.h defines it alongside KMER_LENGTH.
const DefaultMaxContigSize = 20000

// DefaultOpts holds the reference configuration: K=51 (the historical
// default from the original UPC assembler), load factor 1, and a single
// worker. Callers scale ExpectedKmers/HeapBlockSize/Workers to their input.
var DefaultOpts = Opts{
	KmerLength:    51,
	LoadFactor:    1.0,
	ExpectedKmers: 1 << 20,
	HeapBlockSize: 1 << 20,
	Workers:       1,
	UseHugePages:  false,
}

// PackedLength returns P = ceil(K/4), the packed byte width of a k-mer under
// these options.
func (o Opts) PackedLength() int {
	return (o.KmerLength + 3) / 4
}

// NumBuckets returns B = ceil(ExpectedKmers * LoadFactor).
func (o Opts) NumBuckets() int64 {
	b := int64(float64(o.ExpectedKmers)*o.LoadFactor + 0.999999)
	if b < 1 {
		b = 1
	}
	return b
}
