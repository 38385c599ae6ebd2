// Package xorfilter implements a static membership filter with three-block
// XOR fingerprinting.
//
// A filter is built once over a fixed key set and never mutated afterwards:
// construction maps every key to one slot in each of three equal blocks and
// peels the resulting 3-uniform hypergraph until it is empty, retrying with
// a fresh seed when the graph is not acyclic. Queries have no false
// negatives for construction keys and a false-positive probability of about
// 2^-w for a fingerprint width of w bits, at roughly 1.23*w bits per key.
//
// A built filter is immutable and safe for concurrent readers.
package xorfilter

import (
	"math/bits"

	"github.com/hupe1980/sketchgo/filter"
	"github.com/hupe1980/sketchgo/hasher"
)

// Compile time check to ensure Filter satisfies the capability interfaces.
var (
	_ filter.Membership = (*Xor8)(nil)
	_ filter.Exporter   = (*Xor8)(nil)
)

// Fingerprint is the set of supported fingerprint widths.
type Fingerprint interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Filter is an immutable XOR filter with fingerprints of type F. The
// fingerprint array is the concatenation of three equal blocks; each key
// owns one fixed slot per block and satisfies
//
//	fingerprint(key) == fp[h0] ^ fp[h1] ^ fp[h2]
//
// for its slots h0, h1, h2.
type Filter[F Fingerprint] struct {
	seed         uint64
	blockLength  uint32
	fingerprints []F
}

// Convenience aliases for the supported widths.
type (
	Xor8  = Filter[uint8]
	Xor16 = Filter[uint16]
	Xor32 = Filter[uint32]
	Xor64 = Filter[uint64]
)

// Seed returns the construction seed.
func (f *Filter[F]) Seed() uint64 { return f.seed }

// Len returns the total number of fingerprint slots (all three blocks).
func (f *Filter[F]) Len() int { return len(f.fingerprints) }

// Width returns the fingerprint width in bits.
func (f *Filter[F]) Width() int { return widthOf[F]() }

// Has reports whether key is likely a member. Keys used at construction are
// always reported present.
func (f *Filter[F]) Has(key []byte) bool {
	if f.blockLength == 0 {
		return false
	}
	hash := mixKey(keyHash(key), f.seed)
	h0, h1, h2 := f.slots(hash)
	return fingerprintOf[F](hash) == f.fingerprints[h0]^f.fingerprints[h1]^f.fingerprints[h2]
}

// Equal reports whether two filters are identical: same seed and the same
// fingerprint array, element by element. Filters built over the same keys
// are not equal unless they also share the seed, since construction is
// randomized.
func (f *Filter[F]) Equal(other *Filter[F]) bool {
	if other == nil || f.seed != other.seed || len(f.fingerprints) != len(other.fingerprints) {
		return false
	}
	for i, fp := range f.fingerprints {
		if fp != other.fingerprints[i] {
			return false
		}
	}
	return true
}

// slots returns the key's three global slot indices, one per block. They
// depend only on the mixed key hash and the block length, never on peel
// order.
func (f *Filter[F]) slots(hash uint64) (h0, h1, h2 uint32) {
	h0 = reduce(uint32(hash), f.blockLength)
	h1 = reduce(uint32(bits.RotateLeft64(hash, 21)), f.blockLength) + f.blockLength
	h2 = reduce(uint32(bits.RotateLeft64(hash, 42)), f.blockLength) + 2*f.blockLength
	return
}

// keyHash reduces an arbitrary byte key to the 64-bit value the filter
// operates on. Unseeded: the per-filter seed is applied by mixKey.
func keyHash(key []byte) uint64 {
	return hasher.New(0).Sum64(key)
}

// mixKey combines a key hash with the filter seed.
func mixKey(kh, seed uint64) uint64 {
	return hasher.Mix64(kh + seed)
}

// fingerprintOf derives the key's fingerprint from its mixed hash, truncated
// to the width of F.
func fingerprintOf[F Fingerprint](hash uint64) F {
	return F(hash ^ (hash >> 32))
}

// widthOf returns the bit width of F.
func widthOf[F Fingerprint]() int {
	return bits.Len64(uint64(^F(0)))
}

// reduce maps a 32-bit hash onto [0, n) without a modulo.
// http://lemire.me/blog/2016/06/27/a-fast-alternative-to-the-modulo-reduction/
func reduce(hash, n uint32) uint32 {
	return uint32((uint64(hash) * uint64(n)) >> 32)
}
