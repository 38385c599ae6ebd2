// Package filter defines the capabilities shared by the probabilistic
// structures in this library and the common error taxonomy.
//
// Each structure (bit vector, XOR filter, IBLT) implements the capability
// set independently and composes the hashing primitives by value; there is
// no shared base type.
package filter

import (
	"github.com/hupe1980/sketchgo/codec"
)

// Envelope type tags. Every exported payload is a tagged object whose "type"
// field carries one of these values.
const (
	TypeBitVector = "BitVector"
	TypeXorFilter = "XorFilter"
	TypeIBLT      = "IBLT"
)

// Membership answers approximate set membership.
type Membership interface {
	Has(key []byte) bool
}

// Exporter produces a tagged envelope using the given codec
// (nil means codec.Default).
type Exporter interface {
	Export(c codec.Codec) ([]byte, error)
}

// header is the minimal shape shared by every envelope.
type header struct {
	Type string `json:"type" cbor:"type"`
}

// TypeOf peeks the type tag of an exported envelope without decoding the
// rest of the payload.
func TypeOf(c codec.Codec, data []byte) (string, error) {
	var h header
	if err := codec.OrDefault(c).Unmarshal(data, &h); err != nil {
		return "", &ErrFormat{Field: "type", Reason: err.Error()}
	}
	if h.Type == "" {
		return "", &ErrFormat{Field: "type", Reason: "missing"}
	}
	return h.Type, nil
}

// CheckType validates a decoded envelope type tag against the expected
// value. The per-structure Import functions run it after unmarshalling.
func CheckType(got, want string) error {
	if got != want {
		return &ErrFormat{Type: want, Field: "type", Reason: "got " + got}
	}
	return nil
}
