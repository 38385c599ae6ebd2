// Package sketchgo provides probabilistic data structures for approximate
// set membership and set reconciliation over data streams.
//
// # Structures
//
//   - hasher.Hasher: seeded, wire-stable hash family (double hashing,
//     distinct-index mode) shared by every structure.
//   - bitvec.Vector: packed, byte-aligned bit vector with a length-prefixed
//     byte encoding.
//   - xorfilter.Filter: static membership filter built by hypergraph
//     peeling; ~1.23 bits/key per fingerprint bit, no false negatives.
//   - iblt.Table: invertible Bloom lookup table; subtract two tables of
//     matching dimensions and decode the symmetric difference.
//
// # Membership
//
//	f, _ := xorfilter.Build[uint16](keys)
//	f.Has(keys[0]) // always true
//
// # Reconciliation
//
//	a, _ := iblt.New(50, 3, seed)
//	b, _ := iblt.New(50, 3, seed)
//	// ... a.Add / b.Add ...
//	diff, _ := a.Subtract(b)
//	res := diff.Decode() // res.Added = in a only, res.Removed = in b only
//
// # Serialization
//
// Every structure exports a tagged object {"type": ..., fields} through a
// codec (JSON, go-json, CBOR; see the codec package) and imports it back
// with full validation. Import of an unknown payload can be dispatched by
// its type tag via sketchgo.Import. Moving payloads between processes and
// persisting them is the caller's responsibility; the library performs no
// I/O.
//
// # Concurrency
//
// No structure synchronizes internally. A built xorfilter.Filter is
// immutable and safe for any number of concurrent readers. A mutable
// iblt.Table or bitvec.Vector needs a single-writer discipline; Subtract
// and Decode operate on private copies.
package sketchgo
