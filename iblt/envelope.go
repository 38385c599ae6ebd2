package iblt

import (
	"fmt"

	"github.com/hupe1980/sketchgo/codec"
	"github.com/hupe1980/sketchgo/filter"
)

// envelopeV1 is the tagged wire object for a table. Cells are stored as
// three parallel arrays of length M.
type envelopeV1 struct {
	Type     string   `json:"type" cbor:"type"`
	M        int      `json:"m" cbor:"m"`
	K        int      `json:"k" cbor:"k"`
	Seed     uint64   `json:"seed" cbor:"seed"`
	Counts   []int64  `json:"counts" cbor:"counts"`
	KeySums  [][]byte `json:"keySums" cbor:"keySums"`
	HashSums []uint64 `json:"hashSums" cbor:"hashSums"`
}

// Export produces the tagged envelope using the given codec (nil means
// codec.Default).
func (t *Table) Export(c codec.Codec) ([]byte, error) {
	env := envelopeV1{
		Type:     filter.TypeIBLT,
		M:        t.m,
		K:        t.k,
		Seed:     t.Seed(),
		Counts:   make([]int64, t.m),
		KeySums:  make([][]byte, t.m),
		HashSums: make([]uint64, t.m),
	}
	for i := range t.cells {
		env.Counts[i] = t.cells[i].Count
		env.KeySums[i] = t.cells[i].KeySum
		env.HashSums[i] = t.cells[i].HashSum
	}
	return codec.OrDefault(c).Marshal(env)
}

// Import reconstructs a table from a tagged envelope, validating the type
// tag and the presence and shape of every field.
func Import(c codec.Codec, data []byte) (*Table, error) {
	cc := codec.OrDefault(c)
	var env envelopeV1
	if err := cc.Unmarshal(data, &env); err != nil {
		return nil, &filter.ErrFormat{Type: filter.TypeIBLT, Field: "envelope", Reason: err.Error()}
	}
	if err := filter.CheckType(env.Type, filter.TypeIBLT); err != nil {
		return nil, err
	}
	if env.K < 1 || env.M < env.K {
		return nil, &filter.ErrFormat{Type: filter.TypeIBLT, Field: "k", Reason: fmt.Sprintf("hash count %d invalid for %d cells", env.K, env.M)}
	}
	if env.Counts == nil {
		return nil, &filter.ErrFormat{Type: filter.TypeIBLT, Field: "counts", Reason: "missing"}
	}
	if len(env.Counts) != env.M {
		return nil, &filter.ErrFormat{Type: filter.TypeIBLT, Field: "counts", Reason: fmt.Sprintf("expected %d values, got %d", env.M, len(env.Counts))}
	}
	if env.KeySums == nil {
		return nil, &filter.ErrFormat{Type: filter.TypeIBLT, Field: "keySums", Reason: "missing"}
	}
	if len(env.KeySums) != env.M {
		return nil, &filter.ErrFormat{Type: filter.TypeIBLT, Field: "keySums", Reason: fmt.Sprintf("expected %d values, got %d", env.M, len(env.KeySums))}
	}
	if env.HashSums == nil {
		return nil, &filter.ErrFormat{Type: filter.TypeIBLT, Field: "hashSums", Reason: "missing"}
	}
	if len(env.HashSums) != env.M {
		return nil, &filter.ErrFormat{Type: filter.TypeIBLT, Field: "hashSums", Reason: fmt.Sprintf("expected %d values, got %d", env.M, len(env.HashSums))}
	}

	t, err := New(env.M, env.K, env.Seed)
	if err != nil {
		return nil, &filter.ErrFormat{Type: filter.TypeIBLT, Field: "m", Reason: err.Error()}
	}
	for i := range t.cells {
		t.cells[i].Count = env.Counts[i]
		// Renormalize in case the payload carried a non-canonical sum.
		t.cells[i].KeySum = xorBytes(nil, env.KeySums[i])
		t.cells[i].HashSum = env.HashSums[i]
	}
	return t, nil
}
