package codec

import "github.com/fxamacker/cbor/v2"

// CBOR is a compact binary codec backed by github.com/fxamacker/cbor/v2.
//
// It encodes the same tagged envelope objects as the JSON codecs, typically
// at a fraction of the size since fingerprint arrays and byte buffers are
// stored as raw byte strings rather than base64 text.
type CBOR struct{}

// Marshal encodes the value to CBOR.
func (CBOR) Marshal(v any) ([]byte, error) { return cbor.Marshal(v) }

// Unmarshal decodes the CBOR data into v.
func (CBOR) Unmarshal(data []byte, v any) error { return cbor.Unmarshal(data, v) }

// Name returns the unique name of the codec ("cbor").
func (CBOR) Name() string { return "cbor" }
