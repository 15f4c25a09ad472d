// Package nested converts between the flat (value, repetition level,
// definition level) triples stored for a leaf column and the nested values
// described by the column's schema path.
package nested

import (
	"fmt"

	"github.com/brimdata/pqnest"
	"github.com/brimdata/pqnest/pqe"
)

// Triple is one position of a leaf column.  Value is Null unless the leaf is
// present, in which case Def equals the path's maximum definition level.
type Triple struct {
	Rep   int16
	Def   int16
	Value pqnest.Value
}

func (t Triple) String() string {
	if t.Value.IsNull() {
		return fmt.Sprintf("rep=%d def=%d", t.Rep, t.Def)
	}
	return fmt.Sprintf("rep=%d def=%d value=%s", t.Rep, t.Def, t.Value)
}

// TripleReader is a cursor over the triples of one column.  NextTriple
// returns nil at the end of the column.
type TripleReader interface {
	NextTriple() (*Triple, error)
}

// Batch holds the triples of one transfer with the storage engine in the
// engine's layout: one level pair per position and a value only for
// positions where the leaf is present.
type Batch struct {
	Values []pqnest.Value
	Reps   []int16
	Defs   []int16
}

// Len returns the number of level pairs in the batch.
func (b *Batch) Len() int {
	return len(b.Defs)
}

func (b *Batch) Reset() {
	b.Values = b.Values[:0]
	b.Reps = b.Reps[:0]
	b.Defs = b.Defs[:0]
}

func (b *Batch) Append(t Triple) {
	b.Reps = append(b.Reps, t.Rep)
	b.Defs = append(b.Defs, t.Def)
	if !t.Value.IsNull() {
		b.Values = append(b.Values, t.Value)
	}
}

func (b *Batch) truncate(levels, values int) {
	b.Reps = b.Reps[:levels]
	b.Defs = b.Defs[:levels]
	b.Values = b.Values[:values]
}

// Reader returns a TripleReader over the contents of b.  A value is
// attached to each position whose definition level is maxDef.
func (b *Batch) Reader(maxDef int16) TripleReader {
	return &batchReader{batch: b, maxDef: maxDef}
}

type batchReader struct {
	batch  *Batch
	maxDef int16
	off    int
	voff   int
}

func (r *batchReader) NextTriple() (*Triple, error) {
	b := r.batch
	if r.off >= len(b.Defs) {
		return nil, nil
	}
	t := &Triple{Rep: b.Reps[r.off], Def: b.Defs[r.off]}
	if t.Def == r.maxDef {
		if r.voff >= len(b.Values) {
			return nil, pqe.E(pqe.Format, "batch has %d values but level %d requires another", len(b.Values), r.off)
		}
		t.Value = b.Values[r.voff]
		r.voff++
	}
	r.off++
	return t, nil
}
