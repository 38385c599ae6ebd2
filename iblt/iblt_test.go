package iblt

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/sketchgo/codec"
	"github.com/hupe1980/sketchgo/filter"
	"github.com/hupe1980/sketchgo/testutil"
)

func bytesSet(entries [][]byte) map[string]bool {
	out := make(map[string]bool, len(entries))
	for _, e := range entries {
		out[string(e)] = true
	}
	return out
}

func TestNew(t *testing.T) {
	tbl, err := New(50, 3, 42)
	require.NoError(t, err)
	assert.Equal(t, 50, tbl.Len())
	assert.Equal(t, 3, tbl.HashCount())
	assert.Equal(t, uint64(42), tbl.Seed())

	_, err = New(2, 3, 0)
	require.ErrorIs(t, err, ErrInvalidDimensions)
	_, err = New(10, 0, 0)
	require.ErrorIs(t, err, ErrInvalidDimensions)
}

func TestNewForCapacity(t *testing.T) {
	tbl, err := NewForCapacity(10, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.HashCount())
	assert.Equal(t, 45, tbl.Len()) // 1.5 * 3 * 10

	tbl, err = NewForCapacity(10, 1, WithHashCount(4))
	require.NoError(t, err)
	assert.Equal(t, 4, tbl.HashCount())
	assert.Equal(t, 60, tbl.Len())

	_, err = NewForCapacity(0, 1)
	require.ErrorIs(t, err, ErrInvalidDimensions)
}

func TestReconciliation_Scenario(t *testing.T) {
	const seed = 1234

	a, err := New(50, 3, seed)
	require.NoError(t, err)
	b, err := New(50, 3, seed)
	require.NoError(t, err)

	for _, s := range []string{"alice", "help", "meow", "json", "42"} {
		a.Add([]byte(s))
	}
	for _, s := range []string{"alice", "car", "meow", "help"} {
		b.Add([]byte(s))
	}

	diff, err := a.Subtract(b)
	require.NoError(t, err)

	res := diff.Decode()
	require.True(t, res.Success)
	assert.Empty(t, res.Reason)
	assert.Nil(t, res.Remainder)

	assert.Equal(t, map[string]bool{"json": true, "42": true}, bytesSet(res.Added))
	assert.Equal(t, map[string]bool{"car": true}, bytesSet(res.Removed))
}

func TestAddRemove_RestoresCells(t *testing.T) {
	rng := testutil.NewRNG(101)
	tbl, err := New(40, 3, rng.Uint64())
	require.NoError(t, err)

	// Arbitrary pre-existing state, including removals.
	for _, e := range rng.Entries(25) {
		tbl.Add(e)
	}
	tbl.Remove([]byte("never added"))

	before := tbl.Copy()

	for trial := 0; trial < 50; trial++ {
		e := rng.Bytes(1 + rng.Intn(20))
		tbl.Add(e)
		tbl.Remove(e)
		require.True(t, tbl.Equal(before), "add+remove must restore every cell exactly")
	}
}

func TestAddRemove_DrainsToZero(t *testing.T) {
	tbl, err := New(20, 3, 11)
	require.NoError(t, err)

	entries := testutil.NewRNG(19).Entries(10)
	for _, e := range entries {
		tbl.Add(e)
	}
	for _, e := range entries {
		tbl.Remove(e)
	}

	for i, c := range tbl.Cells() {
		assert.Zero(t, c.Count, "cell %d count", i)
		assert.Zero(t, c.HashSum, "cell %d hashSum", i)
		assert.Empty(t, c.KeySum, "cell %d keySum", i)
	}
}

func TestSubtract_DimensionMismatch(t *testing.T) {
	base, _ := New(50, 3, 7)

	tests := []struct {
		name  string
		other func() *Table
		field string
	}{
		{"size", func() *Table { t2, _ := New(49, 3, 7); return t2 }, "size"},
		{"hashCount", func() *Table { t2, _ := New(50, 4, 7); return t2 }, "hashCount"},
		{"seed", func() *Table { t2, _ := New(50, 3, 8); return t2 }, "seed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := base.Subtract(tt.other())
			var dm *filter.ErrDimensionMismatch
			require.ErrorAs(t, err, &dm)
			assert.Equal(t, tt.field, dm.Field)
		})
	}
}

func TestSubtract_DoesNotMutateOperands(t *testing.T) {
	a, _ := New(30, 3, 9)
	b, _ := New(30, 3, 9)
	a.Add([]byte("x"))
	b.Add([]byte("y"))

	aBefore := a.Copy()
	bBefore := b.Copy()

	_, err := a.Subtract(b)
	require.NoError(t, err)
	assert.True(t, a.Equal(aBefore))
	assert.True(t, b.Equal(bBefore))
}

func TestSubtract_Self(t *testing.T) {
	a, _ := New(30, 3, 9)
	b, _ := New(30, 3, 9)
	for _, e := range testutil.NewRNG(5).Entries(20) {
		a.Add(e)
		b.Add(e)
	}

	diff, err := a.Subtract(b)
	require.NoError(t, err)

	res := diff.Decode()
	require.True(t, res.Success)
	assert.Empty(t, res.Added)
	assert.Empty(t, res.Removed)
}

func TestDecode_DoesNotMutateReceiver(t *testing.T) {
	tbl, _ := New(50, 3, 3)
	for _, e := range testutil.NewRNG(13).Entries(5) {
		tbl.Add(e)
	}
	before := tbl.Copy()

	_ = tbl.Decode()
	assert.True(t, tbl.Equal(before))
}

func TestDecode_CapacityExceeded(t *testing.T) {
	rng := testutil.NewRNG(17)
	a, _ := New(12, 3, 21)
	b, _ := New(12, 3, 21)

	// Way beyond the ~2-3 entry design capacity of 12 cells.
	entries := rng.Entries(60)
	for _, e := range entries {
		a.Add(e)
	}

	diff, err := a.Subtract(b)
	require.NoError(t, err)

	res := diff.Decode()
	require.False(t, res.Success)
	assert.Equal(t, ReasonCapacityExceeded, res.Reason)
	require.NotNil(t, res.Remainder)

	// Zero silent loss: replaying the resolved entries into the remainder
	// must reproduce the original difference table exactly.
	reconstructed := res.Remainder.Copy()
	for _, e := range res.Added {
		reconstructed.Add(e)
	}
	for _, e := range res.Removed {
		reconstructed.Remove(e)
	}
	assert.True(t, reconstructed.Equal(diff))

	// Everything that was resolved is genuinely from the input set.
	in := bytesSet(entries)
	for _, e := range res.Added {
		assert.True(t, in[string(e)])
	}
	assert.Empty(t, res.Removed)
}

func TestListEntries(t *testing.T) {
	tbl, _ := New(50, 3, 23)
	want := [][]byte{[]byte("alpha"), []byte("beta"), []byte("gamma")}
	for _, e := range want {
		tbl.Add(e)
	}

	got, ok := tbl.ListEntries()
	require.True(t, ok)
	assert.Equal(t, bytesSet(want), bytesSet(got))

	// Overloaded table: partial listing is a limitation, not an error.
	over, _ := New(6, 3, 23)
	for _, e := range testutil.NewRNG(29).Entries(40) {
		over.Add(e)
	}
	_, ok = over.ListEntries()
	assert.False(t, ok)
}

func TestEntryEdgeCases(t *testing.T) {
	tests := []struct {
		name  string
		entry []byte
	}{
		{"empty entry", []byte{}},
		{"trailing zeros", []byte{0x61, 0x00, 0x00}},
		{"all zeros", []byte{0x00, 0x00}},
		{"single byte", []byte{0xFF}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, _ := New(30, 3, 31)
			tbl.Add(tt.entry)

			got, ok := tbl.ListEntries()
			require.True(t, ok)
			require.Len(t, got, 1)
			assert.Equal(t, tt.entry, got[0])
		})
	}
}

func TestHas(t *testing.T) {
	tbl, _ := New(50, 3, 37)

	// Empty table proves absence.
	assert.False(t, tbl.Has([]byte("anything")))

	entries := testutil.NewRNG(37).Entries(10)
	for _, e := range entries {
		tbl.Add(e)
	}
	for _, e := range entries {
		assert.True(t, tbl.Has(e), "present entries must be reported")
	}
	// Absent entries may false-positive; no assertion beyond the contract.
}

func TestExportImport_RoundTrip(t *testing.T) {
	tbl, _ := New(40, 3, 41)
	for _, e := range testutil.NewRNG(41).Entries(15) {
		tbl.Add(e)
	}
	tbl.Remove([]byte("phantom"))

	for _, c := range []codec.Codec{nil, codec.JSON{}, codec.GoJSON{}, codec.CBOR{}} {
		name := "default"
		if c != nil {
			name = c.Name()
		}
		t.Run(name, func(t *testing.T) {
			data, err := tbl.Export(c)
			require.NoError(t, err)

			got, err := Import(c, data)
			require.NoError(t, err)
			assert.True(t, tbl.Equal(got))
		})
	}
}

func TestImport_FormatErrors(t *testing.T) {
	var fe *filter.ErrFormat

	tests := []struct {
		name  string
		data  string
		field string
	}{
		{"wrong tag", `{"type":"BitVector"}`, "type"},
		{"bad k", `{"type":"IBLT","m":2,"k":3,"seed":1,"counts":[0,0],"keySums":["",""],"hashSums":[0,0]}`, "k"},
		{"missing counts", `{"type":"IBLT","m":2,"k":2,"seed":1,"keySums":["",""],"hashSums":[0,0]}`, "counts"},
		{"short counts", `{"type":"IBLT","m":2,"k":2,"seed":1,"counts":[0],"keySums":["",""],"hashSums":[0,0]}`, "counts"},
		{"missing keySums", `{"type":"IBLT","m":2,"k":2,"seed":1,"counts":[0,0],"hashSums":[0,0]}`, "keySums"},
		{"short hashSums", `{"type":"IBLT","m":2,"k":2,"seed":1,"counts":[0,0],"keySums":["",""],"hashSums":[0]}`, "hashSums"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Import(codec.JSON{}, []byte(tt.data))
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.field, fe.Field)
		})
	}
}

func TestEqual(t *testing.T) {
	a, _ := New(20, 3, 1)
	b, _ := New(20, 3, 1)
	assert.True(t, a.Equal(b))

	a.Add([]byte("x"))
	assert.False(t, a.Equal(b))
	b.Add([]byte("x"))
	assert.True(t, a.Equal(b))

	c, _ := New(20, 3, 2)
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(nil))
}

func BenchmarkAdd(b *testing.B) {
	tbl, _ := New(1000, 3, 1)
	entries := testutil.NewRNG(97).Entries(1000)

	b.ReportAllocs()
	i := 0
	for n := 0; n < b.N; n++ {
		tbl.Add(entries[i%len(entries)])
		i++
	}
}

func BenchmarkDecode(b *testing.B) {
	a, _ := New(150, 3, 1)
	other, _ := New(150, 3, 1)
	shared := testutil.NewRNG(89).Entries(500)
	for _, e := range shared {
		a.Add(e)
		other.Add(e)
	}
	for i := 0; i < 20; i++ {
		a.Add([]byte(fmt.Sprintf("extra-%d", i)))
	}
	diff, err := a.Subtract(other)
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	for n := 0; n < b.N; n++ {
		res := diff.Decode()
		if !res.Success {
			b.Fatal("decode failed")
		}
	}
}
