package traversal

import "github.com/grailbio/bio-kmerindex/kmerindex"

// extension sentinels, preserved byte-for-byte from the index per spec.md
// §3 (the core never interprets them, but traversal -- the consumer that
// does -- must).
const (
	extFork = 'F' // ambiguous: more than one valid extension
	extNone = 'X' // no extension: end of contig
)

// Contig is one assembled contig: the concatenated base sequence produced by
// walking single-letter extensions out from a seed k-mer in both
// directions.
type Contig struct {
	Seq []byte
}

// WalkFromSeed extends a single contig forward (following RExt) and
// backward (following LExt) from the k-mer at heap handle seed, stopping at
// a fork, a dead end, a k-mer not present in idx, or opts.MaxContigSize.
//
// This exercises Index.Lookup and the KmerRecord.LExt/RExt fields the
// indexing core stores but never itself interprets (spec.md §3: "the core
// does not interpret them, but preserves byte identity").
func WalkFromSeed(idx *kmerindex.Index, seed int64, opts Opts) Contig {
	start := idx.Heap.Read(seed)
	seq := kmerindex.Unpack(start.Packed, opts.KmerLength)
	contig := Contig{Seq: append([]byte(nil), seq...)}

	extendForward(idx, &contig, start, opts)
	extendBackward(idx, &contig, start, opts)
	return contig
}

// extendForward repeatedly appends cur's right extension and re-looks-up
// the resulting K-base window, stopping at a fork/none extension, a miss,
// or the size cap.
func extendForward(idx *kmerindex.Index, contig *Contig, cur kmerindex.KmerRecord, opts Opts) {
	for len(contig.Seq) < opts.MaxContigSize {
		if cur.RExt == extFork || cur.RExt == extNone {
			return
		}
		window := nextWindow(contig.Seq[len(contig.Seq)-opts.KmerLength+1:], cur.RExt)
		var next kmerindex.KmerRecord
		if !idx.Lookup(window, &next) {
			return
		}
		contig.Seq = append(contig.Seq, cur.RExt)
		cur = next
	}
}

// extendBackward is extendForward's mirror image, prepending cur's left
// extension instead.
func extendBackward(idx *kmerindex.Index, contig *Contig, cur kmerindex.KmerRecord, opts Opts) {
	for len(contig.Seq) < opts.MaxContigSize {
		if cur.LExt == extFork || cur.LExt == extNone {
			return
		}
		window := prevWindow(cur.LExt, contig.Seq[:opts.KmerLength-1])
		var prev kmerindex.KmerRecord
		if !idx.Lookup(window, &prev) {
			return
		}
		contig.Seq = append([]byte{cur.LExt}, contig.Seq...)
		cur = prev
	}
}

func nextWindow(tail []byte, ext byte) []byte {
	return append(append([]byte(nil), tail...), ext)
}

func prevWindow(ext byte, head []byte) []byte {
	return append([]byte{ext}, head...)
}
