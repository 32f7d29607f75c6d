//go:build linux

package kmerindex

import (
	"github.com/grailbio/base/log"
	"golang.org/x/sys/unix"
)

// allocArena allocates an n-byte region. When huge is set it is mmap'd
// anonymously and madvise'd MADV_HUGEPAGE, matching the treatment
// fusion/kmer_index.go's initShard gives its own append-only kmer table: the
// heap is large, written once per slot, and never resized, so the same
// huge-page argument applies here.
func allocArena(n int64, huge bool) ([]byte, error) {
	if !huge || n == 0 {
		return make([]byte, n), nil
	}
	const hugePageSize = 2 << 20
	buf, err := unix.Mmap(-1, 0, int(n)+hugePageSize,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, err
	}
	if err := unix.Madvise(buf, unix.MADV_HUGEPAGE); err != nil {
		log.Error.Printf("kmerindex: madvise(MADV_HUGEPAGE) failed, continuing without it: %v", err)
	}
	return buf[:n], nil
}

// releaseArena unmaps an arena allocated by allocArena with huge=true; huge
// page arenas are not ordinary Go memory and must be explicitly released.
func releaseArena(buf []byte, huge bool) error {
	if !huge || len(buf) == 0 {
		return nil
	}
	return unix.Munmap(buf[:cap(buf)])
}
