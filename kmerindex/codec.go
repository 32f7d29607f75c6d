package kmerindex

import "fmt"

// baseCode maps each ASCal base to its 2-bit code; invalidBase marks any
// other byte. Built once at init time and treated as an immutable static
// thereafter, matching the asciiToKmerMap convention in fusion/kmer.go.
const invalidBase = uint8(0xff)

var baseCode [256]uint8

// fourMerASCII maps a packed byte (4 bases, 2 bits each, big-end-first) back
// to its 4 ASCII bytes, laid out so unpack can copy them out in one shot.
// This is the Go analogue of packingDNAseq.h's packedCodeToFourMer table.
var fourMerASCII [256][4]byte

func init() {
	for i := range baseCode {
		baseCode[i] = invalidBase
	}
	baseCode['A'] = 0
	baseCode['C'] = 1
	baseCode['G'] = 2
	baseCode['T'] = 3

	const bases = "ACGT"
	for code := 0; code < 256; code++ {
		fourMerASCII[code] = [4]byte{
			bases[(code>>6)&3],
			bases[(code>>4)&3],
			bases[(code>>2)&3],
			bases[code&3],
		}
	}
}

// Pack encodes a K-base text sequence into its P=ceil(K/4)-byte 2-bit form,
// returned as a newly allocated slice of length opts.PackedLength(). Bases are
// packed 4 per byte, big-end-first: the byte for bases b0 b1 b2 b3 is
// 64*c(b0) + 16*c(b1) + 4*c(b2) + c(b3). When K is not a multiple of 4, the
// final byte is padded with A (code 0) in its low-order bits.
//
// Pack asserts that text contains only A, C, G, T; malformed input is a
// producer bug (the UFX parser is responsible for rejecting it) and is
// reported as a panic rather than an error return.
func Pack(text []byte, opts Opts) []byte {
	out := make([]byte, opts.PackedLength())
	PackInto(text, out)
	return out
}

// PackInto is the allocation-free counterpart of Pack: it writes the packed
// form into a caller-supplied buffer of length opts.PackedLength(). Add and
// Lookup call it on a buffer they allocate per call; the CLI's fingerprint
// logging reuses one buffer across records.
func PackInto(text []byte, out []byte) {
	p := 0
	i := 0
	for ; i+4 <= len(text); i += 4 {
		out[p] = code(text[i])<<6 | code(text[i+1])<<4 | code(text[i+2])<<2 | code(text[i+3])
		p++
	}
	if rem := len(text) - i; rem > 0 {
		var b [4]byte
		b[0], b[1], b[2], b[3] = 'A', 'A', 'A', 'A'
		copy(b[:rem], text[i:])
		out[p] = code(b[0])<<6 | code(b[1])<<4 | code(b[2])<<2 | code(b[3])
	}
}

func code(ch byte) byte {
	c := baseCode[ch]
	if c == invalidBase {
		panic(fmt.Sprintf("kmerindex: invalid base %q in k-mer text (expected A, C, G, or T)", ch))
	}
	return c
}

// Unpack decodes a packed P-byte sequence back into its K-base text form,
// using the fourMerASCII lookup table to expand each packed byte into four
// ASCII bytes at once. The trailing pad bases introduced by Pack (if K is
// not a multiple of 4) are not part of the returned slice.
func Unpack(packed []byte, k int) []byte {
	out := make([]byte, ((k+3)/4)*4)
	j := 0
	for _, b := range packed {
		four := fourMerASCII[b]
		copy(out[j:j+4], four[:])
		j += 4
	}
	return out[:k]
}

// Compare lexicographically compares two packed keys of equal width; it
// returns 0 iff the underlying k-mers are equal. Because the encoding is
// injective and length-preserving, byte-wise comparison of the packed form
// is equivalent to comparing the original base strings.
func Compare(a, b []byte) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}
