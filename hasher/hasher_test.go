package hasher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/sketchgo/testutil"
)

func TestSum64_Deterministic(t *testing.T) {
	h := New(42)
	data := []byte("the quick brown fox")

	first := h.Sum64(data)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, h.Sum64(data))
	}

	// A second instance with the same seed agrees.
	assert.Equal(t, first, New(42).Sum64(data))

	// A different seed produces a different stream for this input.
	assert.NotEqual(t, first, New(43).Sum64(data))
}

func TestPair_SecondValueOdd(t *testing.T) {
	rng := testutil.NewRNG(1)
	h := New(rng.Uint64())
	for i := 0; i < 100; i++ {
		_, h2 := h.Pair(rng.Bytes(1 + rng.Intn(32)))
		assert.Equal(t, uint64(1), h2&1)
	}
}

func TestIndexes_InRange(t *testing.T) {
	rng := testutil.NewRNG(2)
	h := New(7)

	for _, m := range []uint64{1, 2, 3, 50, 64, 1000, 12345} {
		for trial := 0; trial < 50; trial++ {
			data := rng.Bytes(1 + rng.Intn(24))
			idx := h.Indexes(nil, data, 5, m)
			require.Len(t, idx, 5)
			for _, j := range idx {
				assert.Less(t, j, m)
			}
			// Reproducible.
			assert.Equal(t, idx, h.Indexes(nil, data, 5, m))
		}
	}
}

func TestDistinctIndexes_Distinct(t *testing.T) {
	rng := testutil.NewRNG(3)
	h := New(99)

	tests := []struct {
		name string
		k    int
		m    uint64
	}{
		{"typical", 3, 50},
		{"small even range", 4, 12},
		{"full range", 8, 8},
		{"tight", 7, 8},
		{"prime range", 5, 13},
		{"single cell", 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for trial := 0; trial < 200; trial++ {
				data := rng.Bytes(1 + rng.Intn(16))
				idx := h.DistinctIndexes(nil, data, tt.k, tt.m)
				require.Len(t, idx, tt.k)

				seen := make(map[uint64]bool, tt.k)
				for _, j := range idx {
					assert.Less(t, j, tt.m)
					assert.False(t, seen[j], "index %d repeated", j)
					seen[j] = true
				}
			}
		})
	}
}

func TestDistinctIndexes_AppendsToDst(t *testing.T) {
	h := New(5)
	dst := make([]uint64, 0, 3)
	out := h.DistinctIndexes(dst, []byte("x"), 3, 100)
	assert.Len(t, out, 3)

	// Reusing the slice must not see stale entries as collisions.
	out2 := h.DistinctIndexes(out[:0], []byte("x"), 3, 100)
	assert.Equal(t, out, out2)
}

func TestDistinctIndexes_PanicsWhenImpossible(t *testing.T) {
	h := New(0)
	assert.Panics(t, func() {
		h.DistinctIndexes(nil, []byte("x"), 4, 3)
	})
}

func TestCoprimeStep(t *testing.T) {
	for _, m := range []uint64{2, 6, 12, 30, 64, 100, 101} {
		for h2 := uint64(0); h2 < 200; h2++ {
			step := coprimeStep(h2, m)
			require.NotZero(t, step)
			assert.Equal(t, uint64(1), gcd(step, m), "h2=%d m=%d step=%d", h2, m, step)
		}
	}

	// Degenerate ranges.
	assert.Equal(t, uint64(0), coprimeStep(17, 1))
	assert.Equal(t, uint64(0), coprimeStep(17, 0))
}

func BenchmarkIndexes(b *testing.B) {
	h := New(42)
	data := []byte("benchmark-key-0123456789")
	dst := make([]uint64, 0, 4)

	b.ReportAllocs()
	for n := 0; n < b.N; n++ {
		dst = h.Indexes(dst[:0], data, 4, 1<<20)
	}
	_ = dst
}

func BenchmarkDistinctIndexes(b *testing.B) {
	h := New(42)
	data := []byte("benchmark-key-0123456789")
	dst := make([]uint64, 0, 4)

	b.ReportAllocs()
	for n := 0; n < b.N; n++ {
		dst = h.DistinctIndexes(dst[:0], data, 4, 50)
	}
	_ = dst
}
