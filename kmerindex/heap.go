package kmerindex

// KmerRecord is the fixed-shape element stored in the heap (C3): a packed
// k-mer key, its left/right extension bytes, and the handle of the next
// record in its bucket chain (-1 for end-of-chain). Once written, Packed,
// LExt and RExt never change (I5); Next is rewritten by the owning worker on
// each CAS retry in Add and never changes after the record's handle is
// linked into a bucket.
type KmerRecord struct {
	Packed []byte
	LExt   byte
	RExt   byte
	Next   int64
}

// NoNext is the sentinel "end of chain" value stored in KmerRecord.Next and
// returned by BucketTable.Head for an empty bucket. -1 is required (not a
// nil/NULL representation) because it doubles as the CAS "no previous
// entry" comparand.
const NoNext = int64(-1)

// heapStripe is the portion of the heap owned by one worker: a flat arena of
// packed keys (packedLen bytes per slot) plus one extension/next triple per
// slot. Only the owning worker ever writes into its own stripe; other
// workers may only Read a slot after reaching it through a bucket chain,
// which cannot happen until this worker's CAS has published the handle.
type heapStripe struct {
	arena  []byte  // len == packedLen * capacity
	lExt   []byte  // len == capacity
	rExt   []byte  // len == capacity
	next   []int64 // len == capacity
	cursor int64   // posLocal; touched only by the owning worker
}

// Heap is C3: a globally addressable, block-cycled array of KmerRecord
// slots, striped round-robin across Opts.Workers ranks. Global index g lives
// on worker g%W at local offset g/W (Owner, LocalOffset below).
//
// This is the single-process realization spec.md §9 permits ("implementers
// in shared-memory targets may collapse the stripe to a single contiguous
// array"): each stripe here is a real, separately addressed Go slice so the
// Owner/LocalOffset addressing math is still exercised, but Read/Write never
// need a remote-memory round trip because every stripe lives in the same
// address space.
type Heap struct {
	packedLen int
	workers   int
	capacity  int64
	stripes   []heapStripe
}

// NewHeap allocates C3 with total capacity Workers*HeapBlockSize slots, one
// stripe per worker.
func NewHeap(opts Opts) (*Heap, error) {
	packedLen := opts.PackedLength()
	h := &Heap{
		packedLen: packedLen,
		workers:   opts.Workers,
		capacity:  opts.HeapBlockSize,
		stripes:   make([]heapStripe, opts.Workers),
	}
	for r := range h.stripes {
		arena, err := allocArena(opts.HeapBlockSize*int64(packedLen), opts.UseHugePages)
		if err != nil {
			return nil, &AllocationFailureError{
				What:         "heap",
				RequestBytes: int64(opts.Workers) * opts.HeapBlockSize * int64(packedLen),
				Err:          err,
			}
		}
		h.stripes[r] = heapStripe{
			arena: arena,
			lExt:  make([]byte, opts.HeapBlockSize),
			rExt:  make([]byte, opts.HeapBlockSize),
			next:  make([]int64, opts.HeapBlockSize),
		}
	}
	return h, nil
}

// Owner returns the rank that owns global heap index g (I1).
func Owner(g int64, workers int) int { return int(g % int64(workers)) }

// LocalOffset returns the within-stripe offset of global heap index g.
func LocalOffset(g int64, workers int) int64 { return g / int64(workers) }

// Reserve atomically advances rank's local cursor and returns the global
// handle for the reserved slot. It is purely thread-local: only the calling
// worker ever touches its own cursor, so no cross-worker coordination is
// required (spec.md §4.3).
func (h *Heap) Reserve(rank int) (int64, error) {
	s := &h.stripes[rank]
	if s.cursor >= h.capacity {
		return 0, &HeapExhaustedError{Rank: rank, HeapBlockSize: h.capacity}
	}
	pos := s.cursor
	s.cursor++
	return pos*int64(h.workers) + int64(rank), nil
}

// Write publishes a fully-initialized record to slot g. The caller must own
// g (i.e. g was returned by this worker's own Reserve call); writing a slot
// owned by another rank violates I1 and is not detected here; it is the
// caller's responsibility to call Write only for handles it reserved.
func (h *Heap) Write(g int64, packed []byte, lExt, rExt byte, next int64) {
	r := Owner(g, h.workers)
	off := LocalOffset(g, h.workers)
	s := &h.stripes[r]
	copy(s.arena[off*int64(h.packedLen):(off+1)*int64(h.packedLen)], packed)
	s.lExt[off] = lExt
	s.rExt[off] = rExt
	s.next[off] = next
}

// SetNext rewrites just the Next field of slot g. (Add's CAS retry loop does
// not call it; it rewrites the whole record with Write on each attempt.) As
// long as g is owned by the calling worker and not yet linked into a chain,
// rewriting Next races with nobody (other workers can only reach g through
// a chain, and they cannot reach it until the CAS succeeds).
func (h *Heap) SetNext(g int64, next int64) {
	r := Owner(g, h.workers)
	off := LocalOffset(g, h.workers)
	h.stripes[r].next[off] = next
}

// Read fetches a copy of the record at global handle g. Safe to call from
// any worker once g has been obtained by following a bucket chain: the
// store-before-CAS order in Add guarantees the record is fully visible by
// the time any reader can reach it.
func (h *Heap) Read(g int64) KmerRecord {
	r := Owner(g, h.workers)
	off := LocalOffset(g, h.workers)
	s := &h.stripes[r]
	packed := make([]byte, h.packedLen)
	copy(packed, s.arena[off*int64(h.packedLen):(off+1)*int64(h.packedLen)])
	return KmerRecord{
		Packed: packed,
		LExt:   s.lExt[off],
		RExt:   s.rExt[off],
		Next:   s.next[off],
	}
}

// readPackedInto is like Read but fetches only the packed key, avoiding an
// allocation of the unused LExt/RExt/Next fields on the Lookup hot path
// where only Compare is needed against a candidate.
func (h *Heap) readPackedInto(g int64, out []byte) {
	r := Owner(g, h.workers)
	off := LocalOffset(g, h.workers)
	s := &h.stripes[r]
	copy(out, s.arena[off*int64(h.packedLen):(off+1)*int64(h.packedLen)])
}

func (h *Heap) readNext(g int64) int64 {
	r := Owner(g, h.workers)
	off := LocalOffset(g, h.workers)
	return h.stripes[r].next[off]
}

// Close releases every stripe's arena. Required when the heap was allocated
// with huge pages (UseHugePages); harmless no-op otherwise.
func (h *Heap) Close(opts Opts) error {
	for i := range h.stripes {
		if err := releaseArena(h.stripes[i].arena, opts.UseHugePages); err != nil {
			return err
		}
	}
	return nil
}
