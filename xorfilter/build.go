package xorfilter

import (
	"errors"
	"math"
	"math/rand"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/sketchgo/filter"
	"github.com/hupe1980/sketchgo/hasher"
)

// MaxAttempts is the retry budget for the construct-until-acyclic loop. At
// load factor 1.23 the per-attempt failure probability is tiny, so hitting
// the budget on duplicate-free input is practically unobserved.
const MaxAttempts = 64

// ErrDuplicateKeys is reported (wrapped in a *filter.ErrConstruction) when
// the key set contains duplicates. Duplicate keys make peeling fail on every
// attempt, so they are rejected before the retry loop.
var ErrDuplicateKeys = errors.New("xorfilter: duplicate keys")

// slotState accumulates the keys mapped to one slot during peeling: the XOR
// of their mixed hashes and their number.
type slotState struct {
	mask   uint64
	degree uint32
}

// peeledKey records one peeled key and the slot it was resolved at.
type peeledKey struct {
	hash uint64 // mixed key hash
	slot uint32 // global slot index
}

// Build constructs a filter over keys with a random initial seed. Keys must
// be distinct. It fails with *filter.ErrConstruction when keys contain
// duplicates or the retry budget is exhausted.
func Build[F Fingerprint](keys [][]byte) (*Filter[F], error) {
	return BuildSeeded[F](keys, rand.Uint64())
}

// BuildSeeded is Build with a caller-chosen starting point for the seed
// stream, giving reproducible construction.
func BuildSeeded[F Fingerprint](keys [][]byte, seed uint64) (*Filter[F], error) {
	n := len(keys)

	hashes := make([]uint64, n)
	seen := roaring64.New()
	for i, key := range keys {
		hashes[i] = keyHash(key)
		seen.Add(hashes[i])
	}
	if seen.GetCardinality() < uint64(n) {
		return nil, &filter.ErrConstruction{Attempts: 0, Cause: ErrDuplicateKeys}
	}

	capacity := 32 + uint32(math.Ceil(1.23*float64(n)))
	capacity = capacity / 3 * 3 // three equal blocks
	f := &Filter[F]{
		blockLength:  capacity / 3,
		fingerprints: make([]F, capacity),
	}

	sets := make([]slotState, capacity)
	stack := make([]peeledKey, 0, n)
	queues := [3][]uint32{
		make([]uint32, 0, f.blockLength),
		make([]uint32, 0, f.blockLength),
		make([]uint32, 0, f.blockLength),
	}

	rng := seed
	for attempt := 1; ; attempt++ {
		if attempt > MaxAttempts {
			return nil, &filter.ErrConstruction{Attempts: MaxAttempts}
		}

		rng = hasher.Mix64(rng)
		f.seed = rng

		stack = f.peel(hashes, sets, stack[:0], &queues)
		if len(stack) == n {
			break
		}
		for i := range sets {
			sets[i] = slotState{}
		}
	}

	// Reverse peel order: each key's slots are fixed, so assigning the
	// resolved slot last makes the XOR of all three equal its fingerprint.
	for i := len(stack) - 1; i >= 0; i-- {
		pk := stack[i]
		h0, h1, h2 := f.slots(pk.hash)
		val := fingerprintOf[F](pk.hash)
		for _, h := range [3]uint32{h0, h1, h2} {
			if h != pk.slot {
				val ^= f.fingerprints[h]
			}
		}
		f.fingerprints[pk.slot] = val
	}

	return f, nil
}

// peel runs one peeling attempt under the current seed. It returns the peel
// stack; the attempt succeeded iff every key was pushed.
func (f *Filter[F]) peel(hashes []uint64, sets []slotState, stack []peeledKey, queues *[3][]uint32) []peeledKey {
	for b := range queues {
		queues[b] = queues[b][:0]
	}

	for _, kh := range hashes {
		hash := mixKey(kh, f.seed)
		h0, h1, h2 := f.slots(hash)
		for _, h := range [3]uint32{h0, h1, h2} {
			sets[h].mask ^= hash
			sets[h].degree++
		}
	}

	for i, s := range sets {
		if s.degree == 1 {
			b := uint32(i) / f.blockLength
			queues[b] = append(queues[b], uint32(i))
		}
	}

	for {
		popped := false
		for b := 0; b < 3; b++ {
			for len(queues[b]) > 0 {
				popped = true
				i := queues[b][len(queues[b])-1]
				queues[b] = queues[b][:len(queues[b])-1]
				if sets[i].degree != 1 {
					continue // already drained by a neighboring peel
				}

				hash := sets[i].mask
				h0, h1, h2 := f.slots(hash)
				stack = append(stack, peeledKey{hash: hash, slot: i})

				for _, h := range [3]uint32{h0, h1, h2} {
					if h == i {
						continue
					}
					sets[h].mask ^= hash
					sets[h].degree--
					if sets[h].degree == 1 {
						ob := h / f.blockLength
						queues[ob] = append(queues[ob], h)
					}
				}
			}
		}
		if !popped {
			return stack
		}
	}
}
