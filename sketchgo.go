package sketchgo

import (
	"github.com/hupe1980/sketchgo/bitvec"
	"github.com/hupe1980/sketchgo/codec"
	"github.com/hupe1980/sketchgo/filter"
	"github.com/hupe1980/sketchgo/iblt"
	"github.com/hupe1980/sketchgo/xorfilter"
)

// Import reconstructs a structure from any tagged envelope produced by this
// library, dispatching on the envelope's type tag. The concrete result is
// one of *bitvec.Vector, *xorfilter.Xor8/16/32/64, or *iblt.Table. Unknown
// or malformed payloads fail with a *filter.ErrFormat.
func Import(c codec.Codec, data []byte) (any, error) {
	tag, err := filter.TypeOf(c, data)
	if err != nil {
		return nil, err
	}
	switch tag {
	case filter.TypeBitVector:
		return bitvec.Import(c, data)
	case filter.TypeXorFilter:
		width, err := xorfilter.ImportWidth(c, data)
		if err != nil {
			return nil, err
		}
		switch width {
		case 8:
			return xorfilter.Import[uint8](c, data)
		case 16:
			return xorfilter.Import[uint16](c, data)
		case 32:
			return xorfilter.Import[uint32](c, data)
		default:
			return xorfilter.Import[uint64](c, data)
		}
	case filter.TypeIBLT:
		return iblt.Import(c, data)
	default:
		return nil, &filter.ErrFormat{Field: "type", Reason: "unknown type " + tag}
	}
}
