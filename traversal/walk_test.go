package traversal

import (
	"testing"

	"github.com/grailbio/bio-kmerindex/kmerindex"
	"github.com/grailbio/testutil/expect"
)

// buildChainIndex inserts every K-length window of seq into a fresh index,
// with LExt/RExt set to the actual preceding/following base (or 'X' at the
// sequence's own ends), and returns the index plus the heap handle of the
// window starting at position 0 -- the seed a walk should reconstruct the
// whole sequence from.
func buildChainIndex(t *testing.T, seq string, k int) (*kmerindex.Index, int64) {
	opts := kmerindex.Opts{
		KmerLength:    k,
		LoadFactor:    1.0,
		ExpectedKmers: int64(len(seq)),
		HeapBlockSize: int64(len(seq)) + 1,
		Workers:       1,
	}
	idx, err := kmerindex.Create(opts)
	expect.NoError(t, err)
	expect.NoError(t, idx.InitRank(0))

	var seed int64
	for i := 0; i+k <= len(seq); i++ {
		lExt := byte('X')
		if i > 0 {
			lExt = seq[i-1]
		}
		rExt := byte('X')
		if i+k < len(seq) {
			rExt = seq[i+k]
		}
		h, err := idx.Add(0, []byte(seq[i:i+k]), lExt, rExt)
		expect.NoError(t, err)
		if i == 0 {
			seed = h
		}
	}
	return idx, seed
}

func TestWalkFromSeedReconstructsSequence(t *testing.T) {
	const seq = "ACGTTCAGGATC"
	const k = 4
	idx, seed := buildChainIndex(t, seq, k)

	contig := WalkFromSeed(idx, seed, Opts{KmerLength: k, MaxContigSize: 1000})
	expect.EQ(t, string(contig.Seq), seq)
}

func TestWalkFromSeedStopsAtMaxContigSize(t *testing.T) {
	const seq = "ACGTTCAGGATC"
	const k = 4
	idx, seed := buildChainIndex(t, seq, k)

	contig := WalkFromSeed(idx, seed, Opts{KmerLength: k, MaxContigSize: 6})
	if len(contig.Seq) > 6 {
		t.Fatalf("WalkFromSeed produced %d bases, want <= 6", len(contig.Seq))
	}
	// The cap applies to the forward walk only up to its own bound; the
	// prefix up to the cap must still match the true sequence.
	expect.EQ(t, string(contig.Seq[:6]), seq[:6])
}

func TestWalkFromSeedStopsAtForkAndMiss(t *testing.T) {
	const k = 4
	opts := kmerindex.Opts{
		KmerLength:    k,
		LoadFactor:    1.0,
		ExpectedKmers: 8,
		HeapBlockSize: 8,
		Workers:       1,
	}
	idx, err := kmerindex.Create(opts)
	expect.NoError(t, err)
	expect.NoError(t, idx.InitRank(0))

	// "ACGT" forks right (ambiguous extension); its left extension points at
	// a k-mer deliberately left out of the index, so backward must stop on
	// a lookup miss rather than a fork.
	seed, err := idx.Add(0, []byte("ACGT"), 'T', 'F')
	expect.NoError(t, err)

	contig := WalkFromSeed(idx, seed, Opts{KmerLength: k, MaxContigSize: 100})
	expect.EQ(t, string(contig.Seq), "ACGT")
}
