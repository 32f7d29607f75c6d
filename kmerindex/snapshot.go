package kmerindex

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/golang/snappy"
)

// snapshotMagic identifies the snappy-compressed snapshot format below.
const snapshotMagic = "KIDXSNAP1"

// Snapshot serializes idx's bucket heads and the live (cursor-bounded)
// portion of every heap stripe to w, snappy-compressed, grounded on
// sorter/sortshard.go's snappy-compressed block writer.
//
// This exists purely as a test/debug fixture aid (e.g. to save a small
// index built in one test and reload it in another without re-running
// ingest) — it is deliberately kept off the production ingest path, since
// spec.md's non-goals explicitly exclude persistence of the index itself.
func Snapshot(idx *Index, w io.Writer) error {
	var buf bytes.Buffer
	buf.WriteString(snapshotMagic)
	writeInt64(&buf, int64(idx.Opts.KmerLength))
	writeInt64(&buf, int64(idx.Opts.Workers))
	writeInt64(&buf, idx.Opts.HeapBlockSize)

	heads := idx.Buckets.heads
	writeInt64(&buf, int64(len(heads)))
	for _, h := range heads {
		writeInt64(&buf, h)
	}

	packedLen := int64(idx.Opts.PackedLength())
	for r := range idx.Heap.stripes {
		s := &idx.Heap.stripes[r]
		writeInt64(&buf, s.cursor)
		buf.Write(s.arena[:s.cursor*packedLen])
		buf.Write(s.lExt[:s.cursor])
		buf.Write(s.rExt[:s.cursor])
		for i := int64(0); i < s.cursor; i++ {
			writeInt64(&buf, s.next[i])
		}
	}

	compressed := snappy.Encode(nil, buf.Bytes())
	_, err := w.Write(compressed)
	return err
}

// Restore reconstructs an Index from a Snapshot. KmerLength, Workers and
// HeapBlockSize are read from the snapshot and override those in opts;
// ExpectedKmers and LoadFactor are set so the bucket count equals the
// snapshot's own bucket-table size, and UseHugePages is always off.
func Restore(r io.Reader, opts Opts) (*Index, error) {
	compressed, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	raw, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, err
	}
	buf := bytes.NewReader(raw)
	magic := make([]byte, len(snapshotMagic))
	if _, err := io.ReadFull(buf, magic); err != nil {
		return nil, err
	}
	if string(magic) != snapshotMagic {
		return nil, fmt.Errorf("kmerindex: bad snapshot magic %q", magic)
	}
	kmerLength, _ := readInt64(buf)
	workers, _ := readInt64(buf)
	heapBlockSize, _ := readInt64(buf)
	opts.KmerLength = int(kmerLength)
	opts.Workers = int(workers)
	opts.HeapBlockSize = heapBlockSize
	opts.UseHugePages = false

	numBuckets, _ := readInt64(buf)
	opts.ExpectedKmers = numBuckets
	opts.LoadFactor = 1.0

	idx, err := Create(opts)
	if err != nil {
		return nil, err
	}
	for i := int64(0); i < numBuckets; i++ {
		v, _ := readInt64(buf)
		idx.Buckets.heads[i] = v
	}

	packedLen := int64(opts.PackedLength())
	for r := range idx.Heap.stripes {
		s := &idx.Heap.stripes[r]
		cursor, _ := readInt64(buf)
		s.cursor = cursor
		if _, err := io.ReadFull(buf, s.arena[:cursor*packedLen]); err != nil {
			return nil, err
		}
		if _, err := io.ReadFull(buf, s.lExt[:cursor]); err != nil {
			return nil, err
		}
		if _, err := io.ReadFull(buf, s.rExt[:cursor]); err != nil {
			return nil, err
		}
		for i := int64(0); i < cursor; i++ {
			v, err := readInt64(buf)
			if err != nil {
				return nil, err
			}
			s.next[i] = v
		}
	}
	return idx, nil
}

func writeInt64(buf *bytes.Buffer, v int64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(v))
	buf.Write(b[:])
}

func readInt64(r io.Reader) (int64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}
