package kmerindex

// Index is C5: the concurrent insert/lookup protocol wired over a Heap (C3)
// and a BucketTable (C4), plus one StartKmerList (C6) per worker.
//
// Lifecycle (spec.md §4.6, §5): Create, then each rank calls InitRank under
// a barrier, then each rank calls Add/RegisterStart an arbitrary number of
// times during ingest, then a barrier, then any rank may call Lookup during
// query. No further Add calls may occur once query has begun.
type Index struct {
	Opts    Opts
	Heap    *Heap
	Buckets *BucketTable
	starts  []StartKmerList
}

// Create allocates C3 and C4 (but does not yet initialize bucket heads;
// call InitRank once per rank, e.g. via traverse.Each, before first use).
func Create(opts Opts) (*Index, error) {
	heap, err := NewHeap(opts)
	if err != nil {
		return nil, err
	}
	buckets, err := NewBucketTable(opts)
	if err != nil {
		return nil, err
	}
	return &Index{
		Opts:    opts,
		Heap:    heap,
		Buckets: buckets,
		starts:  make([]StartKmerList, opts.Workers),
	}, nil
}

// InitRank initializes the buckets this rank owns. Every rank must call
// this, and the driver must barrier after all ranks return, before any Add
// or Lookup call is made.
func (idx *Index) InitRank(rank int) error {
	idx.Buckets.Init(rank, idx.Opts.Workers)
	return nil
}

// Add implements the insert algorithm of spec.md §4.5.1: pack the key, hash
// it, reserve a heap slot on rank's stripe, then CAS-prepend the new handle
// onto the appropriate bucket chain, retrying (and rewriting Next) on lost
// races. It returns the global handle of the inserted record.
func (idx *Index) Add(rank int, key []byte, lExt, rExt byte) (int64, error) {
	packed := make([]byte, idx.Opts.PackedLength())
	PackInto(key, packed)
	h := BucketOf(Hash(packed), idx.Buckets.NumBuckets())

	pos, err := idx.Heap.Reserve(rank)
	if err != nil {
		return 0, err
	}

	old := idx.Buckets.Head(h)
	for {
		// Publish the record (store) before the CAS: once the CAS succeeds, a
		// concurrent Lookup on another worker may follow the chain straight
		// into pos and must see a fully-written record.
		idx.Heap.Write(pos, packed, lExt, rExt, old)
		actual := idx.Buckets.CAS(h, old, pos)
		if actual == old {
			break
		}
		old = actual
	}
	return pos, nil
}

// Lookup implements spec.md §4.5.2. It is single-threaded per call, assumes
// ingest has completed (a barrier must separate the last Add from the first
// Lookup), and performs no writes. out, when non-nil and the key is found,
// receives the matching record.
func (idx *Index) Lookup(key []byte, out *KmerRecord) bool {
	packed := make([]byte, idx.Opts.PackedLength())
	PackInto(key, packed)
	h := BucketOf(Hash(packed), idx.Buckets.NumBuckets())

	candidate := make([]byte, idx.Opts.PackedLength())
	g := idx.Buckets.Head(h)
	for g != NoNext {
		idx.Heap.readPackedInto(g, candidate)
		if Compare(packed, candidate) == 0 {
			if out != nil {
				*out = idx.Heap.Read(g)
			}
			return true
		}
		g = idx.Heap.readNext(g)
	}
	return false
}

// RegisterStart prepends handle to rank's local StartKmerList (C6; spec.md
// §4.5.3). Call after an Add whose extension marks it as a traversal seed.
func (idx *Index) RegisterStart(rank int, handle int64) {
	idx.starts[rank] = idx.starts[rank].Push(handle)
}

// StartKmers returns rank's local start-kmer list.
func (idx *Index) StartKmers(rank int) StartKmerList {
	return idx.starts[rank]
}

// Close releases the index: it munmaps the heap's huge-page arenas (when
// UseHugePages is set) and drops its references to the heap, bucket table
// and per-worker StartKmerLists so the GC can reclaim the ordinary Go
// memory.
func (idx *Index) Close() error {
	err := idx.Heap.Close(idx.Opts)
	idx.Heap = nil
	idx.Buckets = nil
	idx.starts = nil
	return err
}
