package kmerindex

import "fmt"

// ErrNotFound is available to callers that want an error value for a missed
// lookup (e.g. when wrapping Lookup's bool result behind an error-returning
// API); kmerindex.Lookup itself reports a miss via its bool return, not by
// returning this.
var ErrNotFound = fmt.Errorf("kmerindex: kmer not found")

// AllocationFailureError reports that the heap could not be allocated
// (NewHeap returns it when a huge-page mmap fails). NewBucketTable never
// returns it: the bucket table is a plain Go allocation. It is always fatal;
// the caller should abort the process after logging it, per the "abort or
// propagate fatal" contract for core invariant failures.
type AllocationFailureError struct {
	What         string // "heap"
	RequestBytes int64
	Err          error
}

func (e *AllocationFailureError) Error() string {
	return fmt.Sprintf("kmerindex: could not allocate memory for the %s: %d bytes requested: %v "+
		"(are you sure KmerLength and ExpectedKmers/HeapBlockSize are configured correctly for this input?)",
		e.What, e.RequestBytes, e.Err)
}

func (e *AllocationFailureError) Unwrap() error { return e.Err }

// HeapExhaustedError reports that a worker's local cursor has advanced past
// its heap stripe. It indicates Opts.HeapBlockSize was set too small for the
// number of k-mers this rank was asked to insert.
type HeapExhaustedError struct {
	Rank          int
	HeapBlockSize int64
}

func (e *HeapExhaustedError) Error() string {
	return fmt.Sprintf("kmerindex: rank %d exhausted its heap stripe (HeapBlockSize=%d); "+
		"increase Opts.HeapBlockSize", e.Rank, e.HeapBlockSize)
}
