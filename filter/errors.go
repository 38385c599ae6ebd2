package filter

import "fmt"

// ErrConstruction indicates that a randomized build exhausted its retry
// budget. It is fatal to that construction call only; callers should lower
// the load factor, widen the table, or fix the underlying cause.
//
// The underlying cause (if any) can be accessed via errors.Unwrap.
type ErrConstruction struct {
	Attempts int
	Cause    error
}

func (e *ErrConstruction) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("construction failed after %d attempts: %v", e.Attempts, e.Cause)
	}
	return fmt.Sprintf("construction failed after %d attempts", e.Attempts)
}

func (e *ErrConstruction) Unwrap() error { return e.Cause }

// ErrDimensionMismatch indicates a merge/subtract across structures whose
// size, hash count, or seed differ. Fatal to that operation only.
type ErrDimensionMismatch struct {
	Field    string // "size", "hashCount" or "seed"
	Expected uint64
	Actual   uint64
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: %s expected %d, got %d", e.Field, e.Expected, e.Actual)
}

// ErrFormat indicates a malformed import payload. Field names the first
// missing or malformed field. Fatal to that import call.
type ErrFormat struct {
	Type   string // envelope type being imported, if known
	Field  string
	Reason string
}

func (e *ErrFormat) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("malformed %s payload: field %q: %s", e.Type, e.Field, e.Reason)
	}
	return fmt.Sprintf("malformed payload: field %q: %s", e.Field, e.Reason)
}

// ErrOutOfRange indicates a bit index outside [0, Size). Caller misuse.
type ErrOutOfRange struct {
	Index int
	Size  int
}

func (e *ErrOutOfRange) Error() string {
	return fmt.Sprintf("index %d out of range [0, %d)", e.Index, e.Size)
}
