package iblt

import (
	"github.com/bits-and-blooms/bitset"
)

// ReasonCapacityExceeded is the Reason reported when peeling stalls before
// every cell drains, i.e. the symmetric difference exceeded the table's
// design capacity.
const ReasonCapacityExceeded = "capacity exceeded"

// Result is the structured outcome of Decode. An incomplete decode is a
// normal steady state, not an error: everything that could be resolved is in
// Added/Removed, and Remainder accounts for every unresolved cell.
type Result struct {
	// Success is true when every cell drained to zero.
	Success bool
	// Reason is empty on success, ReasonCapacityExceeded otherwise.
	Reason string
	// Added holds recovered entries with positive count: present in the
	// receiver but not in the subtracted table.
	Added [][]byte
	// Removed holds recovered entries with negative count: the reverse.
	Removed [][]byte
	// Remainder is the undecodable leftover table. Nil on success.
	Remainder *Table
}

// Decode peels the table and recovers the entries it represents. It is
// typically called on the output of Subtract, where the recovered entries
// are exactly the symmetric difference of the two operand multisets while
// capacity is not exceeded. The receiver is not modified.
func (t *Table) Decode() Result {
	w := t.Copy()
	added, removed := w.peel()
	for i := range w.cells {
		if !w.cells[i].zero() {
			return Result{
				Reason:    ReasonCapacityExceeded,
				Added:     added,
				Removed:   removed,
				Remainder: w,
			}
		}
	}
	return Result{Success: true, Added: added, Removed: removed}
}

// ListEntries peels whatever is pure in a single table without a
// counterpart. The flag is true when the whole table drained; leftover
// unpeelable mass is a limitation of the structure, not an error.
func (t *Table) ListEntries() ([][]byte, bool) {
	w := t.Copy()
	added, removed := w.peel()
	entries := append(added, removed...)
	for i := range w.cells {
		if !w.cells[i].zero() {
			return entries, false
		}
	}
	return entries, true
}

// peel repeatedly resolves pure cells in place until none remain. It keeps a
// work queue of candidate cell indices; the bitset suppresses duplicate
// enqueues when several peels touch the same cell.
func (w *Table) peel() (added, removed [][]byte) {
	queued := bitset.New(uint(w.m))
	queue := make([]int, 0, w.m)
	for i := range w.cells {
		if c := w.cells[i].Count; c == 1 || c == -1 {
			queue = append(queue, i)
			queued.Set(uint(i))
		}
	}

	for len(queue) > 0 {
		i := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		queued.Clear(uint(i))

		entry, sign, ok := pureEntry(&w.cells[i], w.h)
		if !ok {
			continue
		}
		if sign > 0 {
			added = append(added, entry)
		} else {
			removed = append(removed, entry)
		}

		// Cancel the entry from all of its cells, then requeue any cell
		// whose count just reached ±1.
		w.update(entry, -sign)
		for _, j := range w.indexes(entry) {
			if c := w.cells[j].Count; (c == 1 || c == -1) && !queued.Test(uint(j)) {
				queue = append(queue, int(j))
				queued.Set(uint(j))
			}
		}
	}
	return added, removed
}
