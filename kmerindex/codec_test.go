package kmerindex

import (
	"testing"

	"github.com/grailbio/testutil/expect"
)

func TestPackUnpackRoundTrip(t *testing.T) {
	opts := Opts{KmerLength: 9}
	for _, seq := range []string{
		"AAAAAAAAA",
		"TTTTTTTTT",
		"ACGTACGTA",
		"GATTACAGA",
		"CCCCCCCCC",
	} {
		packed := Pack([]byte(seq), opts)
		expect.EQ(t, len(packed), opts.PackedLength())
		expect.EQ(t, string(Unpack(packed, opts.KmerLength)), seq)
	}
}

func TestPackUnpackNonMultipleOfFour(t *testing.T) {
	// K=6 is not a multiple of 4: the final packed byte pads with A in its
	// low bits, but Unpack must still only return the first K bases.
	opts := Opts{KmerLength: 6}
	seq := "ACGTAC"
	packed := Pack([]byte(seq), opts)
	expect.EQ(t, len(packed), 2)
	expect.EQ(t, string(Unpack(packed, 6)), seq)
}

func TestPackEquality(t *testing.T) {
	opts := Opts{KmerLength: 12}
	a := Pack([]byte("ACGTACGTACGT"), opts)
	b := Pack([]byte("ACGTACGTACGT"), opts)
	c := Pack([]byte("ACGTACGTACGA"), opts)
	expect.EQ(t, Compare(a, b), 0)
	if Compare(a, c) == 0 {
		t.Fatalf("Compare(%v, %v) = 0, want nonzero for distinct kmers", a, c)
	}
}

func TestPackInvalidBasePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Pack with invalid base did not panic")
		}
	}()
	Pack([]byte("ACGN"), Opts{KmerLength: 4})
}

func TestCompareOrdering(t *testing.T) {
	opts := Opts{KmerLength: 4}
	lo := Pack([]byte("AAAA"), opts)
	hi := Pack([]byte("TTTT"), opts)
	if Compare(lo, hi) >= 0 {
		t.Fatalf("Compare(AAAA, TTTT) = %d, want < 0", Compare(lo, hi))
	}
	if Compare(hi, lo) <= 0 {
		t.Fatalf("Compare(TTTT, AAAA) = %d, want > 0", Compare(hi, lo))
	}
}
