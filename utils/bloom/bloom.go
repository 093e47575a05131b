package bloom

import (
	"math"

	"github.com/bits-and-blooms/bitset"
	"github.com/twmb/murmur3"
)

// Filter is a fixed-size bloom filter over strings, used as a cheap
// pre-screen in front of exact keyword matching: a negative answer is
// definitive, a positive answer must be confirmed by the caller.
//
// The filter is immutable after construction, so concurrent reads need
// no locking. False positives only cost an extra exact check and never
// change classification results.
type Filter struct {
	bits   *bitset.BitSet
	m      uint64 // number of bits
	hashes uint64 // number of hash functions
}

// New creates a filter sized for the expected number of items and the
// target false-positive rate, then adds all items.
func New(items []string, falsePositiveRate float64) *Filter {
	n := len(items)
	if n == 0 {
		n = 1
	}
	if falsePositiveRate <= 0 || falsePositiveRate >= 1 {
		falsePositiveRate = 0.01
	}

	// Standard sizing: m = -n*ln(p)/ln(2)^2, k = m/n*ln(2)
	m := uint64(math.Ceil(-float64(n) * math.Log(falsePositiveRate) / (math.Ln2 * math.Ln2)))
	if m == 0 {
		m = 64
	}
	k := uint64(math.Round(float64(m) / float64(n) * math.Ln2))
	if k == 0 {
		k = 1
	}

	f := &Filter{
		bits:   bitset.New(uint(m)),
		m:      m,
		hashes: k,
	}
	for _, item := range items {
		f.add(item)
	}
	return f
}

// positions derives k bit positions from two murmur3 hashes
// (Kirsch-Mitzenmacher double hashing).
func (f *Filter) positions(s string) []uint {
	h1, h2 := murmur3.SeedSum128(0, 0, []byte(s))
	out := make([]uint, f.hashes)
	for i := uint64(0); i < f.hashes; i++ {
		out[i] = uint((h1 + i*h2) % f.m)
	}
	return out
}

func (f *Filter) add(s string) {
	for _, pos := range f.positions(s) {
		f.bits.Set(pos)
	}
}

// MayContain reports whether s may have been added to the filter.
// False means definitely absent.
func (f *Filter) MayContain(s string) bool {
	for _, pos := range f.positions(s) {
		if !f.bits.Test(pos) {
			return false
		}
	}
	return true
}

// Bits returns the size of the underlying bitset, for diagnostics.
func (f *Filter) Bits() uint64 {
	return f.m
}
