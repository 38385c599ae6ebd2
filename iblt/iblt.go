// Package iblt implements an invertible Bloom lookup table for set
// reconciliation.
//
// A table represents a multiset of byte entries in m cells of
// {count, keySum, hashSum}. Adding and removing are exactly invertible
// (counts are signed, sums are XOR), so subtracting two tables of matching
// dimensions and seed leaves only their symmetric difference, which Decode
// recovers by peeling pure cells. Incomplete decodes are an expected steady
// state reported as a structured result, never an error.
//
// A table is not safe for concurrent mutation. Subtract and Decode work on
// private copies and leave their operands untouched.
package iblt

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"

	"github.com/hupe1980/sketchgo/filter"
	"github.com/hupe1980/sketchgo/hasher"
)

// Compile time check to ensure Table satisfies the capability interfaces.
var (
	_ filter.Membership = (*Table)(nil)
	_ filter.Exporter   = (*Table)(nil)
)

// ErrInvalidDimensions is returned by the constructors when the hash count
// is not in [1, cell count].
var ErrInvalidDimensions = errors.New("iblt: hash count must be in [1, cell count]")

// maxEntryBytes caps the entry length read back out of a cell, so a
// corrupted or colliding cell cannot force a huge allocation during peeling.
const maxEntryBytes = 1 << 24

// Cell is one slot of the table. KeySum is the XOR of the length-prefixed
// bytes of every constituent entry, kept canonical (no trailing zero bytes);
// HashSum is the XOR of each constituent entry's content hash.
type Cell struct {
	Count   int64
	KeySum  []byte
	HashSum uint64
}

// zero reports whether the cell holds no surviving entries.
func (c *Cell) zero() bool {
	return c.Count == 0 && c.HashSum == 0 && len(c.KeySum) == 0
}

// equal compares two cells field by field.
func (c *Cell) equal(o *Cell) bool {
	return c.Count == o.Count && c.HashSum == o.HashSum && bytes.Equal(c.KeySum, o.KeySum)
}

// Table is an invertible Bloom lookup table: m cells, k distinct cell
// indices per entry, and an instance seed shared by the hashing of indices
// and content hashes.
type Table struct {
	m     int
	k     int
	h     hasher.Hasher
	cells []Cell
}

// New returns an empty table with m cells and k hash indices per entry.
func New(m, k int, seed uint64) (*Table, error) {
	if k < 1 || m < k {
		return nil, ErrInvalidDimensions
	}
	return &Table{
		m:     m,
		k:     k,
		h:     hasher.New(seed),
		cells: make([]Cell, m),
	}, nil
}

// Option configures the capacity factory.
type Option func(*options)

type options struct {
	hashCount int
}

// WithHashCount overrides the default of 3 hash indices per entry.
func WithHashCount(k int) Option {
	return func(o *options) { o.hashCount = k }
}

// NewForCapacity sizes a table for an expected symmetric difference of
// expectedDiff entries, using m = ceil(1.5 * k * expectedDiff).
func NewForCapacity(expectedDiff int, seed uint64, opts ...Option) (*Table, error) {
	o := options{hashCount: 3}
	for _, opt := range opts {
		opt(&o)
	}
	if expectedDiff < 1 || o.hashCount < 1 {
		return nil, ErrInvalidDimensions
	}
	m := int(math.Ceil(1.5 * float64(o.hashCount) * float64(expectedDiff)))
	if m < o.hashCount {
		m = o.hashCount
	}
	return New(m, o.hashCount, seed)
}

// Len returns the number of cells.
func (t *Table) Len() int { return t.m }

// HashCount returns the number of cell indices per entry.
func (t *Table) HashCount() int { return t.k }

// Seed returns the instance seed.
func (t *Table) Seed() uint64 { return t.h.Seed() }

// Add inserts entry into the multiset. It never fails.
func (t *Table) Add(entry []byte) { t.update(entry, 1) }

// Remove deletes one occurrence of entry. XOR is self-inverse and counts are
// signed, so Remove after Add restores every touched cell exactly; removing
// an entry that was never added is valid and produces negative-count cells.
func (t *Table) Remove(entry []byte) { t.update(entry, -1) }

func (t *Table) update(entry []byte, sign int64) {
	enc := encodeEntry(entry)
	hs := t.h.Sum64(entry)
	idx := t.indexes(entry)
	for _, i := range idx {
		c := &t.cells[i]
		c.Count += sign
		c.KeySum = xorBytes(c.KeySum, enc)
		c.HashSum ^= hs
	}
}

// indexes returns the entry's k distinct cell indices.
func (t *Table) indexes(entry []byte) []uint64 {
	return t.h.DistinctIndexes(make([]uint64, 0, t.k), entry, t.k, uint64(t.m))
}

// Subtract returns a new table holding the cellwise difference this − other:
// counts subtracted, sums XORed. Positive-count cells represent entries in
// this table but not the other; negative counts the reverse. Tables of
// differing size, hash count, or seed cannot be compared; that is a
// dimension-mismatch error.
func (t *Table) Subtract(other *Table) (*Table, error) {
	if t.m != other.m {
		return nil, &filter.ErrDimensionMismatch{Field: "size", Expected: uint64(t.m), Actual: uint64(other.m)}
	}
	if t.k != other.k {
		return nil, &filter.ErrDimensionMismatch{Field: "hashCount", Expected: uint64(t.k), Actual: uint64(other.k)}
	}
	if t.Seed() != other.Seed() {
		return nil, &filter.ErrDimensionMismatch{Field: "seed", Expected: t.Seed(), Actual: other.Seed()}
	}

	out := t.Copy()
	for i := range out.cells {
		c := &out.cells[i]
		o := &other.cells[i]
		c.Count -= o.Count
		c.KeySum = xorBytes(c.KeySum, o.KeySum)
		c.HashSum ^= o.HashSum
	}
	return out, nil
}

// Has reports whether the entry's cells are consistent with its presence.
// This is a best-effort heuristic with no bounded false-positive guarantee:
// it answers false only when a cell proves absence (an empty cell, or a pure
// cell holding a different entry), and true otherwise.
func (t *Table) Has(entry []byte) bool {
	for _, i := range t.indexes(entry) {
		c := &t.cells[i]
		if c.zero() {
			return false
		}
		if e, _, ok := pureEntry(c, t.h); ok && !bytes.Equal(e, entry) {
			return false
		}
	}
	return true
}

// Copy returns an independent deep copy.
func (t *Table) Copy() *Table {
	out := &Table{m: t.m, k: t.k, h: t.h, cells: make([]Cell, t.m)}
	for i := range t.cells {
		out.cells[i] = t.cells[i]
		if t.cells[i].KeySum != nil {
			out.cells[i].KeySum = append([]byte(nil), t.cells[i].KeySum...)
		}
	}
	return out
}

// Equal reports whether two tables have identical dimensions, seed, and cell
// contents.
func (t *Table) Equal(other *Table) bool {
	if other == nil || t.m != other.m || t.k != other.k || t.Seed() != other.Seed() {
		return false
	}
	for i := range t.cells {
		if !t.cells[i].equal(&other.cells[i]) {
			return false
		}
	}
	return true
}

// Cells exposes a copy of the cell array, mainly for inspection in tests.
func (t *Table) Cells() []Cell {
	return t.Copy().cells
}

// encodeEntry prefixes entry with its 4-byte big-endian length so a pure
// cell can recover the exact byte string, trailing zeros included.
func encodeEntry(entry []byte) []byte {
	out := make([]byte, 4+len(entry))
	binary.BigEndian.PutUint32(out[:4], uint32(len(entry)))
	copy(out[4:], entry)
	return out
}

// decodeCellEntry interprets a canonical KeySum as the encoding of exactly
// one entry, zero-extending the trimmed suffix.
func decodeCellEntry(b []byte) ([]byte, bool) {
	var prefix [4]byte
	copy(prefix[:], b)
	l := binary.BigEndian.Uint32(prefix[:])
	if l > maxEntryBytes {
		return nil, false
	}
	if 4+int(l) < len(b) {
		return nil, false // surplus bytes: more than one constituent
	}
	entry := make([]byte, l)
	if len(b) > 4 {
		copy(entry, b[4:])
	}
	return entry, true
}

// pureEntry reports whether a cell holds exactly one surviving entry,
// validated by the content hash, and returns it with its count sign.
func pureEntry(c *Cell, h hasher.Hasher) (entry []byte, sign int64, ok bool) {
	if c.Count != 1 && c.Count != -1 {
		return nil, 0, false
	}
	e, ok := decodeCellEntry(c.KeySum)
	if !ok || h.Sum64(e) != c.HashSum {
		return nil, 0, false
	}
	return e, c.Count, true
}

// xorBytes XORs src into dst, zero-extending dst as needed, and returns the
// canonical form with trailing zero bytes trimmed. Canonical sums make cell
// equality and serialization reproducible.
func xorBytes(dst, src []byte) []byte {
	if len(src) > len(dst) {
		grown := make([]byte, len(src))
		copy(grown, dst)
		dst = grown
	}
	for i := range src {
		dst[i] ^= src[i]
	}
	n := len(dst)
	for n > 0 && dst[n-1] == 0 {
		n--
	}
	return dst[:n]
}
