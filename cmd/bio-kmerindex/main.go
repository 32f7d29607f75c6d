// Command bio-kmerindex builds a de Bruijn k-mer index from one or more UFX
// files and reports the contigs reachable from its registered start k-mers.
//
// Example:
//
//	bio-kmerindex -k 51 -ufx reads1.ufx,reads2.ufx,reads3.ufx,reads4.ufx
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/bio-kmerindex/kmerindex"
	"github.com/grailbio/bio-kmerindex/kmerindex/ufx"
	"github.com/grailbio/bio-kmerindex/traversal"
)

func usage() {
	fmt.Fprintln(os.Stderr, `
bio-kmerindex builds a distributed, parallel de Bruijn k-mer index from UFX
input files and walks contigs from the k-mers it registers as traversal
seeds.

Each worker rank reads one UFX shard (-ufx is a comma-separated list, one
path per rank); table-init, ingest, and query are separated by barriers,
matching the SPMD contract the index requires.

Example:

    bio-kmerindex -k 51 -ufx shard0.ufx,shard1.ufx,shard2.ufx,shard3.ufx
`)
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage

	opts := kmerindex.DefaultOpts
	var (
		ufxPaths         string
		expectedKmers    int64
		heapBlockSize    int64
		maxContigSize    int
		seedExt          string
		debugFingerprint bool
	)
	flag.IntVar(&opts.KmerLength, "k", kmerindex.DefaultOpts.KmerLength, "k-mer length")
	flag.Float64Var(&opts.LoadFactor, "load-factor", kmerindex.DefaultOpts.LoadFactor, "bucket table load factor")
	flag.Int64Var(&expectedKmers, "expected-kmers", kmerindex.DefaultOpts.ExpectedKmers,
		"upper bound on distinct k-mers to be inserted; sizes the bucket table")
	flag.Int64Var(&heapBlockSize, "heap-block-size", kmerindex.DefaultOpts.HeapBlockSize,
		"per-worker heap stripe capacity; must be at least the largest UFX shard's record count")
	flag.BoolVar(&opts.UseHugePages, "huge-pages", kmerindex.DefaultOpts.UseHugePages,
		"allocate the heap with mmap+MADV_HUGEPAGE (Linux only)")
	flag.StringVar(&ufxPaths, "ufx", "", "comma-separated list of UFX input files, one per worker rank")
	flag.IntVar(&maxContigSize, "max-contig-size", traversal.DefaultMaxContigSize, "max bases per assembled contig")
	flag.StringVar(&seedExt, "seed-ext", "F", "lExt value (byte) that marks a k-mer as a traversal seed")
	flag.BoolVar(&debugFingerprint, "debug-fingerprint", false,
		"log a farmhash fingerprint per inserted k-mer (log.Debug level); for diagnosing packing/insert bugs, not the index's own hash")

	cleanup := grail.Init()
	defer cleanup()
	ctx := vcontext.Background()

	if ufxPaths == "" {
		log.Fatal("-ufx is required")
	}
	paths := strings.Split(ufxPaths, ",")
	opts.Workers = len(paths)
	opts.ExpectedKmers = expectedKmers
	opts.HeapBlockSize = heapBlockSize

	start := time.Now()
	idx, err := run(ctx, paths, opts, seedExt[0], debugFingerprint)
	if err != nil {
		log.Fatalf("bio-kmerindex: %v", err)
	}
	log.Printf("ingest complete in %s", time.Since(start))

	travOpts := traversal.Opts{KmerLength: opts.KmerLength, MaxContigSize: maxContigSize}
	nContigs, nBases := 0, 0
	for rank := 0; rank < opts.Workers; rank++ {
		idx.StartKmers(rank).Each(func(handle int64) bool {
			contig := traversal.WalkFromSeed(idx, handle, travOpts)
			nContigs++
			nBases += len(contig.Seq)
			return true
		})
	}
	log.Printf("assembled %d contigs, %d total bases, across %d workers", nContigs, nBases, opts.Workers)
}

// run drives the table-init and ingest phases over opts.Workers ranks, one
// per UFX path, using traverse.Each as the SPMD barrier after each phase
// (grounded on pileup/snp.pileupSNPMain's traverse.Each(parallelism, ...)
// fan-out). The query phase (contig walking) runs in main once run returns.
func run(ctx context.Context, paths []string, opts kmerindex.Opts, seedExt byte, debugFingerprint bool) (*kmerindex.Index, error) {
	idx, err := kmerindex.Create(opts)
	if err != nil {
		return nil, err
	}

	if err := traverse.Each(opts.Workers, func(rank int) error {
		return idx.InitRank(rank)
	}); err != nil {
		return nil, errors.E(err, "bio-kmerindex: bucket table init")
	}

	if err := traverse.Each(opts.Workers, func(rank int) error {
		return ingestOne(ctx, idx, rank, paths[rank], seedExt, debugFingerprint)
	}); err != nil {
		return nil, errors.E(err, "bio-kmerindex: ingest")
	}
	return idx, nil
}

func ingestOne(ctx context.Context, idx *kmerindex.Index, rank int, path string, seedExt byte, debugFingerprint bool) error {
	r, err := ufx.Open(ctx, path, idx.Opts.KmerLength, 0, -1)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := r.Close(ctx); cerr != nil {
			log.Error.Printf("rank %d: close %s: %v", rank, path, cerr)
		}
	}()

	packed := make([]byte, idx.Opts.PackedLength())
	n := 0
	for r.Scan() {
		rec := r.Record()
		pos, err := idx.Add(rank, rec.Kmer, rec.LExt, rec.RExt)
		if err != nil {
			return errors.E(err, fmt.Sprintf("rank %d: %s: record %d", rank, path, n))
		}
		if debugFingerprint {
			kmerindex.PackInto(rec.Kmer, packed)
			log.Debug.Printf("rank %d: handle %d fingerprint %x", rank, pos, kmerindex.DebugFingerprint(packed))
		}
		if rec.LExt == seedExt {
			idx.RegisterStart(rank, pos)
		}
		n++
	}
	if err := r.Err(); err != nil {
		return err
	}
	log.Printf("rank %d: ingested %d k-mers from %s", rank, n, path)
	return nil
}
