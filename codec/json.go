package codec

import (
	"encoding/json"
)

// JSON is the standard-library JSON codec.
//
// Notes:
//   - The most portable/lowest-dependency option.
//   - Byte slices (bit-vector buffers, IBLT key sums) encode as base64
//     strings, per encoding/json convention.
type JSON struct{}

// Marshal encodes the value to JSON.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes the JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns the unique name of the codec ("json").
func (JSON) Name() string { return "json" }

// Default is the default codec used by the library when nil is passed to an
// Export or Import call.
var Default Codec = GoJSON{}
