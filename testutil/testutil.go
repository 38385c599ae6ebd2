// Package testutil provides deterministic random data helpers for the
// package tests.
package testutil

import (
	"encoding/binary"
	"fmt"
	"math/rand"
	"sync"
)

// RNG encapsulates a seeded random number generator. It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// Bytes returns n pseudo-random bytes.
func (r *RNG) Bytes(n int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := make([]byte, n)
	r.rand.Read(b)
	return b
}

// Keys returns n distinct keys. Each key embeds its index, so distinctness
// holds by construction regardless of the seed.
func (r *RNG) Keys(n int) [][]byte {
	keys := make([][]byte, n)
	for i := range keys {
		var suffix [8]byte
		binary.BigEndian.PutUint64(suffix[:], uint64(i))
		keys[i] = append(r.Bytes(8), suffix[:]...)
	}
	return keys
}

// Entries returns n distinct variable-length string entries.
func (r *RNG) Entries(n int) [][]byte {
	entries := make([][]byte, n)
	for i := range entries {
		entries[i] = []byte(fmt.Sprintf("entry-%d-%x", i, r.Bytes(1+r.Intn(12))))
	}
	return entries
}
