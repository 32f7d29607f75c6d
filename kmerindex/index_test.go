package kmerindex

import (
	"testing"

	"github.com/grailbio/base/traverse"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T, workers int) *Index {
	opts := Opts{
		KmerLength:    8,
		LoadFactor:    1.0,
		ExpectedKmers: 64,
		HeapBlockSize: 256,
		Workers:       workers,
	}
	idx, err := Create(opts)
	expect.NoError(t, err)
	for rank := 0; rank < workers; rank++ {
		expect.NoError(t, idx.InitRank(rank))
	}
	return idx
}

// baseKey encodes n as an 8-base k-mer, two bits per base with the most
// significant base first, so distinct n < 4^8 give distinct keys.
func baseKey(n int) string {
	const bases = "ACGT"
	b := make([]byte, 8)
	for j := 7; j >= 0; j-- {
		b[j] = bases[n&3]
		n >>= 2
	}
	return string(b)
}

func TestAddLookupRoundTrip(t *testing.T) {
	idx := newTestIndex(t, 1)
	_, err := idx.Add(0, []byte("ACGTACGT"), 'A', 'C')
	expect.NoError(t, err)

	var rec KmerRecord
	expect.True(t, idx.Lookup([]byte("ACGTACGT"), &rec))
	expect.EQ(t, rec.LExt, byte('A'))
	expect.EQ(t, rec.RExt, byte('C'))
}

func TestLookupMiss(t *testing.T) {
	idx := newTestIndex(t, 1)
	_, err := idx.Add(0, []byte("ACGTACGT"), 'A', 'C')
	expect.NoError(t, err)

	var rec KmerRecord
	expect.False(t, idx.Lookup([]byte("TTTTTTTT"), &rec))
}

func TestChainPreservesAllInserts(t *testing.T) {
	// Force bucket collisions by using a single-bucket table, then confirm
	// every distinct key inserted is still independently reachable: each
	// prepend onto the shared chain keeps every earlier entry (P6/P7).
	opts := Opts{
		KmerLength:    8,
		LoadFactor:    0.0001,
		ExpectedKmers: 1,
		HeapBlockSize: 64,
		Workers:       1,
	}
	idx, err := Create(opts)
	expect.NoError(t, err)
	expect.NoError(t, idx.InitRank(0))
	expect.EQ(t, idx.Buckets.NumBuckets(), int64(1))

	keys := []string{"AAAAAAAA", "CCCCCCCC", "GGGGGGGG", "TTTTTTTT", "ACGTACGT", "TGCATGCA"}
	for i, k := range keys {
		_, err := idx.Add(0, []byte(k), byte('A'+i), byte('C'+i))
		expect.NoError(t, err)
	}
	for i, k := range keys {
		var rec KmerRecord
		if !idx.Lookup([]byte(k), &rec) {
			t.Fatalf("key %q not found after inserting %d colliding keys", k, len(keys))
		}
		expect.EQ(t, rec.LExt, byte('A'+i))
		expect.EQ(t, rec.RExt, byte('C'+i))
	}
}

func TestChainHasNoCycle(t *testing.T) {
	opts := Opts{
		KmerLength:    8,
		LoadFactor:    0.0001,
		ExpectedKmers: 1,
		HeapBlockSize: 64,
		Workers:       1,
	}
	idx, err := Create(opts)
	expect.NoError(t, err)
	expect.NoError(t, idx.InitRank(0))

	keys := []string{"AAAAAAAA", "CCCCCCCC", "GGGGGGGG", "TTTTTTTT"}
	for _, k := range keys {
		_, err := idx.Add(0, []byte(k), 'F', 'F')
		expect.NoError(t, err)
	}

	seen := map[int64]bool{}
	g := idx.Buckets.Head(0)
	for g != NoNext {
		if seen[g] {
			t.Fatalf("bucket chain cycles back to handle %d", g)
		}
		seen[g] = true
		g = idx.Heap.readNext(g)
	}
	expect.EQ(t, len(seen), len(keys))
}

func TestConcurrentInsertAllWorkersVisible(t *testing.T) {
	const workers = 8
	const perWorker = 50
	opts := Opts{
		KmerLength:    8,
		LoadFactor:    1.0,
		ExpectedKmers: int64(workers * perWorker),
		HeapBlockSize: perWorker * 2,
		Workers:       workers,
	}
	idx, err := Create(opts)
	expect.NoError(t, err)
	for rank := 0; rank < workers; rank++ {
		expect.NoError(t, idx.InitRank(rank))
	}

	err = traverse.Each(workers, func(rank int) error {
		for i := 0; i < perWorker; i++ {
			key := baseKey(rank*perWorker + i)
			if _, err := idx.Add(rank, []byte(key), 'F', 'F'); err != nil {
				return err
			}
		}
		return nil
	})
	expect.NoError(t, err)

	var found []string
	for rank := 0; rank < workers; rank++ {
		for i := 0; i < perWorker; i++ {
			key := baseKey(rank*perWorker + i)
			var rec KmerRecord
			if idx.Lookup([]byte(key), &rec) {
				found = append(found, key)
			}
		}
	}

	var want []string
	for rank := 0; rank < workers; rank++ {
		for i := 0; i < perWorker; i++ {
			want = append(want, baseKey(rank*perWorker+i))
		}
	}
	require.ElementsMatch(t, want, found)
}

func TestOwnerAndLocalOffsetAddressing(t *testing.T) {
	const workers = 4
	for g := int64(0); g < 40; g++ {
		owner := Owner(g, workers)
		off := LocalOffset(g, workers)
		expect.EQ(t, owner >= 0 && owner < workers, true)
		expect.EQ(t, off*int64(workers)+int64(owner), g)
	}
}

func TestRegisterStartOrdering(t *testing.T) {
	idx := newTestIndex(t, 1)
	h1, err := idx.Add(0, []byte("AAAAAAAA"), 'X', 'F')
	expect.NoError(t, err)
	h2, err := idx.Add(0, []byte("CCCCCCCC"), 'X', 'F')
	expect.NoError(t, err)
	h3, err := idx.Add(0, []byte("GGGGGGGG"), 'X', 'F')
	expect.NoError(t, err)

	idx.RegisterStart(0, h1)
	idx.RegisterStart(0, h2)
	idx.RegisterStart(0, h3)

	expect.EQ(t, idx.StartKmers(0).Slice(), []int64{h3, h2, h1})
}

func TestHeapExhaustionReturnsError(t *testing.T) {
	opts := Opts{
		KmerLength:    8,
		LoadFactor:    1.0,
		ExpectedKmers: 4,
		HeapBlockSize: 2,
		Workers:       1,
	}
	idx, err := Create(opts)
	expect.NoError(t, err)
	expect.NoError(t, idx.InitRank(0))

	_, err = idx.Add(0, []byte("AAAAAAAA"), 'F', 'F')
	expect.NoError(t, err)
	_, err = idx.Add(0, []byte("CCCCCCCC"), 'F', 'F')
	expect.NoError(t, err)
	_, err = idx.Add(0, []byte("GGGGGGGG"), 'F', 'F')
	if err == nil {
		t.Fatal("Add beyond HeapBlockSize did not return an error")
	}
	if _, ok := err.(*HeapExhaustedError); !ok {
		t.Fatalf("Add beyond HeapBlockSize returned %T, want *HeapExhaustedError", err)
	}
}
