package xorfilter

import (
	"fmt"

	"github.com/hupe1980/sketchgo/codec"
	"github.com/hupe1980/sketchgo/filter"
)

// envelopeV1 is the tagged wire object for a filter. Fingerprints are
// widened to uint64 so a single shape covers every width; Width records the
// fingerprint width in bits.
type envelopeV1 struct {
	Type         string   `json:"type" cbor:"type"`
	Seed         uint64   `json:"seed" cbor:"seed"`
	Width        int      `json:"width" cbor:"width"`
	Fingerprints []uint64 `json:"fingerprints" cbor:"fingerprints"`
}

// Export produces the tagged envelope using the given codec (nil means
// codec.Default).
func (f *Filter[F]) Export(c codec.Codec) ([]byte, error) {
	fps := make([]uint64, len(f.fingerprints))
	for i, fp := range f.fingerprints {
		fps[i] = uint64(fp)
	}
	return codec.OrDefault(c).Marshal(envelopeV1{
		Type:         filter.TypeXorFilter,
		Seed:         f.seed,
		Width:        widthOf[F](),
		Fingerprints: fps,
	})
}

// Import reconstructs a filter from a tagged envelope. The envelope's type
// tag, width, and fingerprint array shape are validated; querying an
// unvalidated filter would be undefined.
func Import[F Fingerprint](c codec.Codec, data []byte) (*Filter[F], error) {
	cc := codec.OrDefault(c)
	var env envelopeV1
	if err := cc.Unmarshal(data, &env); err != nil {
		return nil, &filter.ErrFormat{Type: filter.TypeXorFilter, Field: "envelope", Reason: err.Error()}
	}
	if err := filter.CheckType(env.Type, filter.TypeXorFilter); err != nil {
		return nil, err
	}
	want := widthOf[F]()
	if env.Width != want {
		return nil, &filter.ErrFormat{
			Type: filter.TypeXorFilter, Field: "width",
			Reason: fmt.Sprintf("expected %d, got %d", want, env.Width),
		}
	}
	if env.Fingerprints == nil {
		return nil, &filter.ErrFormat{Type: filter.TypeXorFilter, Field: "fingerprints", Reason: "missing"}
	}
	if len(env.Fingerprints) == 0 || len(env.Fingerprints)%3 != 0 {
		return nil, &filter.ErrFormat{Type: filter.TypeXorFilter, Field: "fingerprints", Reason: "length not a positive multiple of 3"}
	}

	f := &Filter[F]{
		seed:         env.Seed,
		blockLength:  uint32(len(env.Fingerprints) / 3),
		fingerprints: make([]F, len(env.Fingerprints)),
	}
	for i, fp := range env.Fingerprints {
		if want < 64 && fp>>want != 0 {
			return nil, &filter.ErrFormat{
				Type: filter.TypeXorFilter, Field: "fingerprints",
				Reason: fmt.Sprintf("value at %d exceeds %d bits", i, want),
			}
		}
		f.fingerprints[i] = F(fp)
	}
	return f, nil
}

// ImportWidth returns the fingerprint width recorded in an envelope, letting
// callers dispatch to the right Import instantiation.
func ImportWidth(c codec.Codec, data []byte) (int, error) {
	cc := codec.OrDefault(c)
	var env envelopeV1
	if err := cc.Unmarshal(data, &env); err != nil {
		return 0, &filter.ErrFormat{Type: filter.TypeXorFilter, Field: "envelope", Reason: err.Error()}
	}
	if err := filter.CheckType(env.Type, filter.TypeXorFilter); err != nil {
		return 0, err
	}
	switch env.Width {
	case 8, 16, 32, 64:
		return env.Width, nil
	default:
		return 0, &filter.ErrFormat{Type: filter.TypeXorFilter, Field: "width", Reason: fmt.Sprintf("unsupported width %d", env.Width)}
	}
}
