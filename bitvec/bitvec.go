// Package bitvec implements a packed bit vector with byte-aligned storage.
//
// The vector is the byte-packing primitive underneath the filter structures:
// bit i lives at byte i/8, bit i%8 (LSB0 numbering). Storage is rounded up
// to a whole number of bytes at creation, so Len() ≤ 8*len(buffer) always
// holds.
package bitvec

import (
	"bytes"
	"encoding/binary"
	"math/bits"

	"github.com/hupe1980/sketchgo/codec"
	"github.com/hupe1980/sketchgo/filter"
)

// Compile time check to ensure Vector satisfies the exporter capability.
var _ filter.Exporter = (*Vector)(nil)

// Vector is a fixed-size packed bit vector. The zero value is an empty
// vector of size 0; use New for anything useful.
//
// A Vector is not safe for concurrent mutation; readers may share a vector
// that no writer is touching.
type Vector struct {
	bits int
	buf  []byte
}

// New returns a zeroed vector holding bitCount bits. Storage is rounded up
// to a byte boundary. A negative bitCount is a range error.
func New(bitCount int) (*Vector, error) {
	if bitCount < 0 {
		return nil, &filter.ErrOutOfRange{Index: bitCount, Size: 0}
	}
	return &Vector{
		bits: bitCount,
		buf:  make([]byte, (bitCount+7)/8),
	}, nil
}

// Len returns the declared size in bits.
func (v *Vector) Len() int { return v.bits }

// Get reports whether bit i is set.
func (v *Vector) Get(i int) (bool, error) {
	if i < 0 || i >= v.bits {
		return false, &filter.ErrOutOfRange{Index: i, Size: v.bits}
	}
	return v.buf[i>>3]&(1<<(i&7)) != 0, nil
}

// Set sets bit i.
func (v *Vector) Set(i int) error {
	if i < 0 || i >= v.bits {
		return &filter.ErrOutOfRange{Index: i, Size: v.bits}
	}
	v.buf[i>>3] |= 1 << (i & 7)
	return nil
}

// Clear clears bit i.
func (v *Vector) Clear(i int) error {
	if i < 0 || i >= v.bits {
		return &filter.ErrOutOfRange{Index: i, Size: v.bits}
	}
	v.buf[i>>3] &^= 1 << (i & 7)
	return nil
}

// Count returns the number of set bits.
func (v *Vector) Count() int {
	count := 0
	for _, b := range v.buf {
		count += bits.OnesCount8(b)
	}
	return count
}

// Max returns the highest set bit index, or -1 when no bit is set.
func (v *Vector) Max() int {
	for i := len(v.buf) - 1; i >= 0; i-- {
		if v.buf[i] != 0 {
			return i*8 + 7 - bits.LeadingZeros8(v.buf[i])
		}
	}
	return -1
}

// Equal reports whether two vectors have the same declared size and the same
// bit content. Vectors of differing sizes are never equal.
func (v *Vector) Equal(other *Vector) bool {
	if other == nil || v.bits != other.bits {
		return false
	}
	return bytes.Equal(v.buf, other.buf)
}

// Clone returns an independent copy.
func (v *Vector) Clone() *Vector {
	out := &Vector{bits: v.bits, buf: make([]byte, len(v.buf))}
	copy(out.buf, v.buf)
	return out
}

// Encode returns the length-prefixed byte encoding: an 8-byte big-endian bit
// count followed by the packed buffer. This encoding is what the tagged
// envelope embeds.
func (v *Vector) Encode() []byte {
	out := make([]byte, 8+len(v.buf))
	binary.BigEndian.PutUint64(out[:8], uint64(v.bits))
	copy(out[8:], v.buf)
	return out
}

// Decode reconstructs a vector from its length-prefixed byte encoding. It
// fails with a format error on truncation, a length/size mismatch, or
// nonzero padding bits past the declared size.
func Decode(data []byte) (*Vector, error) {
	if len(data) < 8 {
		return nil, &filter.ErrFormat{Type: filter.TypeBitVector, Field: "data", Reason: "truncated length prefix"}
	}
	bitCount := binary.BigEndian.Uint64(data[:8])
	if bitCount > uint64(1)<<40 {
		return nil, &filter.ErrFormat{Type: filter.TypeBitVector, Field: "data", Reason: "implausible bit count"}
	}
	want := (int(bitCount) + 7) / 8
	if len(data)-8 != want {
		return nil, &filter.ErrFormat{Type: filter.TypeBitVector, Field: "data", Reason: "buffer length does not match bit count"}
	}
	if rem := bitCount & 7; rem != 0 && data[8+want-1]&^(1<<rem-1) != 0 {
		return nil, &filter.ErrFormat{Type: filter.TypeBitVector, Field: "data", Reason: "nonzero padding bits"}
	}
	v := &Vector{bits: int(bitCount), buf: make([]byte, want)}
	copy(v.buf, data[8:])
	return v, nil
}

// envelopeV1 is the tagged wire object for a bit vector.
type envelopeV1 struct {
	Type string `json:"type" cbor:"type"`
	Data []byte `json:"data" cbor:"data"`
}

/// Export produces the tagged envelope {"type":"BitVector","data":...} using
// the given codec (nil means codec.Default).
func (v *Vector) Export(c codec.Codec) ([]byte, error) {
	return codec.OrDefault(c).Marshal(envelopeV1{
		Type: filter.TypeBitVector,
		Data: v.Encode(),
	})
}

// Import reconstructs a vector from a tagged envelope, validating the type
// tag and the embedded encoding.
func Import(c codec.Codec, data []byte) (*Vector, error) {
	cc := codec.OrDefault(c)
	var env envelopeV1
	if err := cc.Unmarshal(data, &env); err != nil {
		return nil, &filter.ErrFormat{Type: filter.TypeBitVector, Field: "envelope", Reason: err.Error()}
	}
	if err := filter.CheckType(env.Type, filter.TypeBitVector); err != nil {
		return nil, err
	}
	if env.Data == nil {
		return nil, &filter.ErrFormat{Type: filter.TypeBitVector, Field: "data", Reason: "missing"}
	}
	return Decode(env.Data)
}
