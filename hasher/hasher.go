// Package hasher provides the seeded hash family shared by all sketchgo
// structures.
//
// Every structure carries an instance seed; two structures are comparable or
// mergeable only if their seeds (and dimensions) match. The hash values
// produced here are part of the wire format: for a fixed (seed, input) pair
// they are stable across processes and releases.
//
// The base hash is XXH64 (github.com/cespare/xxhash/v2). Index derivation
// uses double hashing, h_i = h1 + i*h2 (mod m), with a guard against steps
// that share a factor with m.
package hasher

import (
	"github.com/cespare/xxhash/v2"
)

// pairSalt separates the second hash stream from the first. Arbitrary odd
// constant; changing it changes the wire format.
const pairSalt = 0x9E3779B97F4A7C15

// maxPerturb bounds the remix attempts in the coprime guard and in the
// distinct-index collision handling before falling back to linear probing.
const maxPerturb = 16

// Hasher is a deterministic hash family parametrized by an instance seed.
// The zero value is usable and corresponds to seed 0.
type Hasher struct {
	seed uint64
}

// New returns a Hasher for the given seed.
func New(seed uint64) Hasher {
	return Hasher{seed: seed}
}

// Seed returns the instance seed.
func (h Hasher) Seed() uint64 { return h.seed }

// Sum64 returns the 64-bit hash of data under the instance seed.
func (h Hasher) Sum64(data []byte) uint64 {
	d := xxhash.NewWithSeed(h.seed)
	_, _ = d.Write(data)
	return d.Sum64()
}

// Pair returns the two base values used for double hashing. The second value
// is always odd, so it is nonzero and coprime with any power-of-two range.
func (h Hasher) Pair(data []byte) (h1, h2 uint64) {
	h1 = h.Sum64(data)
	h2 = Mix64(h1^pairSalt) | 1
	return h1, h2
}

// Indexes appends k values in [0, m) derived from data to dst and returns
// the extended slice. The values may repeat; use DistinctIndexes when k
// pairwise-distinct indices are required. m must be nonzero.
func (h Hasher) Indexes(dst []uint64, data []byte, k int, m uint64) []uint64 {
	h1, h2 := h.Pair(data)
	step := coprimeStep(h2, m)
	for i := 0; i < k; i++ {
		dst = append(dst, (h1+uint64(i)*step)%m)
	}
	return dst
}

// DistinctIndexes appends k pairwise-distinct values in [0, m) derived from
// data to dst and returns the extended slice. On a collision the candidate
// is perturbed a bounded number of times, then deterministic linear probing
// guarantees termination. k must not exceed m.
func (h Hasher) DistinctIndexes(dst []uint64, data []byte, k int, m uint64) []uint64 {
	if uint64(k) > m {
		panic("hasher: distinct index count exceeds range")
	}
	h1, h2 := h.Pair(data)
	step := coprimeStep(h2, m)

	base := len(dst)
	for i := 0; i < k; i++ {
		j := (h1 + uint64(i)*step) % m
		perturb := h2
		for n := 0; contains(dst[base:], j) && n < maxPerturb; n++ {
			perturb = Mix64(perturb)
			j = (j + perturb) % m
		}
		// Linear probing; terminates because fewer than m indices are taken.
		for contains(dst[base:], j) {
			j = (j + 1) % m
		}
		dst = append(dst, j)
	}
	return dst
}

// Mix64 is the splitmix64 finalizer. It is used to derive fresh seeds and
// perturbations from prior hash values.
func Mix64(z uint64) uint64 {
	z += 0x9E3779B97F4A7C15
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// coprimeStep reduces h2 to a step in [1, m) that is relatively prime with
// m, remixing a bounded number of times and falling back to step 1 (linear
// probing) so the double-hash cycle always covers the full range.
func coprimeStep(h2, m uint64) uint64 {
	if m <= 1 {
		return 0
	}
	step := h2 % m
	for n := 0; (step == 0 || gcd(step, m) != 1) && n < maxPerturb; n++ {
		h2 = Mix64(h2)
		step = h2 % m
	}
	if step == 0 || gcd(step, m) != 1 {
		step = 1
	}
	return step
}

func gcd(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func contains(s []uint64, v uint64) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
