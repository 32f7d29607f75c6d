// Package ufx reads the fixed-width UFX text format used as input to a
// kmerindex: each record is K bases, a single space or tab, lExt, rExt, and
// a newline -- K+4 bytes total. File size must be an exact multiple of K+4.
//
// This parser is the "external producer" spec.md treats as out of scope for
// the index's own invariants, but it is included here so the whole pipeline
// -- read UFX, Add to the index, Lookup during traversal -- can actually be
// driven end to end, the same way github.com/grailbio/bio/encoding/fastq
// sits next to (not inside) the fusion-detection core it feeds.
package ufx

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
)

// Record is one (kmer, left extension, right extension) triple as read from
// a UFX file.
type Record struct {
	Kmer []byte // K bases, owned by the reader; copy before the next Scan call
	LExt byte
	RExt byte
}

// Reader scans fixed-width UFX records from a single file. Thread
// compatible: create one Reader per worker, each reading a disjoint
// record range (see Open's startRecord/numRecords parameters).
type Reader struct {
	r          *bufio.Reader
	closer     file.File
	kmerLength int
	recordLen  int
	buf        []byte
	rec        Record
	err        error
	remaining  int64 // records left to read; < 0 means unbounded (read to EOF)
}

// recordLen returns K+4: K bases, a separator, lExt, rExt, newline.
func recordLen(kmerLength int) int { return kmerLength + 4 }

// Open opens path and positions the reader at the record boundary for the
// [startRecord, startRecord+numRecords) range, so that Workers independent
// Readers over the same file (one per rank, as UFX's per-worker ingest
// counts require) can each claim a disjoint slice without overlapping or
// double-counting any record. numRecords < 0 means "read to EOF".
func Open(ctx context.Context, path string, kmerLength int, startRecord, numRecords int64) (*Reader, error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.E(err, "ufx: open", path)
	}
	rl := recordLen(kmerLength)
	rc := f.Reader(ctx)
	if startRecord > 0 {
		if _, err := rc.Seek(startRecord*int64(rl), io.SeekStart); err != nil {
			return nil, errors.E(err, "ufx: seek", path)
		}
	}
	return &Reader{
		r:          bufio.NewReaderSize(rc, 1<<20),
		closer:     f,
		kmerLength: kmerLength,
		recordLen:  rl,
		buf:        make([]byte, rl),
		remaining:  numRecords,
	}, nil
}

// CountRecords returns fileSize/(K+4), or an InputFormatError-equivalent if
// the file size is not an exact multiple of K+4.
func CountRecords(ctx context.Context, path string, kmerLength int) (int64, error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return 0, errors.E(err, "ufx: open", path)
	}
	defer f.Close(ctx)
	info, err := f.Stat(ctx)
	if err != nil {
		return 0, errors.E(err, "ufx: stat", path)
	}
	rl := int64(recordLen(kmerLength))
	size := info.Size()
	if size%rl != 0 {
		return 0, fmt.Errorf("ufx: %s: size %d is not a multiple of record length %d (K=%d)",
			path, size, rl, kmerLength)
	}
	return size / rl, nil
}

// Scan reads the next record. It returns false at EOF or on error; callers
// must check Err after a false return to distinguish the two.
func (r *Reader) Scan() bool {
	if r.err != nil || r.remaining == 0 {
		return false
	}
	if r.remaining > 0 {
		r.remaining--
	}
	n, err := io.ReadFull(r.r, r.buf)
	if err == io.EOF && n == 0 {
		return false
	}
	if err != nil {
		r.err = fmt.Errorf("ufx: malformed record (read %d of %d bytes): %w", n, r.recordLen, err)
		return false
	}
	if r.buf[r.recordLen-1] != '\n' {
		r.err = fmt.Errorf("ufx: record not newline-terminated: %q", r.buf)
		return false
	}
	sep := r.buf[r.kmerLength]
	if sep != ' ' && sep != '\t' {
		r.err = fmt.Errorf("ufx: expected space/tab separator after kmer, got %q", sep)
		return false
	}
	r.rec = Record{
		Kmer: r.buf[:r.kmerLength],
		LExt: r.buf[r.kmerLength+1],
		RExt: r.buf[r.kmerLength+2],
	}
	return true
}

// Record returns the most recently scanned record. The returned Kmer slice
// aliases the Reader's internal buffer and is only valid until the next
// Scan call.
func (r *Reader) Record() Record { return r.rec }

// Err returns the first error encountered by Scan, if any.
func (r *Reader) Err() error { return r.err }

// Close releases the underlying file.
func (r *Reader) Close(ctx context.Context) error {
	return r.closer.Close(ctx)
}
