// Package column binds one leaf column chunk of the Parquet engine to the
// nested value model.  A Reader turns the chunk's batches of levels and
// values into records and a Writer flattens records into batches for the
// engine.
package column

import (
	"github.com/apache/arrow/go/v11/parquet/file"
	"github.com/brimdata/pqnest"
	"github.com/brimdata/pqnest/nested"
	"github.com/brimdata/pqnest/pqe"
	"github.com/brimdata/pqnest/schema"
)

// DefaultBatchSize is the number of level pairs moved to or from the engine
// in one call.
const DefaultBatchSize = 1024

// Reader reads the nested values of one leaf column chunk.  Each value it
// returns is the value of the path's top-level field for one record.
type Reader struct {
	path  *schema.Path
	read  readBatchFunc
	size  int64
	defs  []int16
	reps  []int16
	batch nested.Batch
	off   int
	voff  int
	done  bool
	recon *nested.Reconstructor
}

// NewReader returns a Reader for the chunk cr whose schema path is path.
// A batchSize of zero or less selects DefaultBatchSize.
func NewReader(cr file.ColumnChunkReader, path *schema.Path, batchSize int) (*Reader, error) {
	read, err := newReadFunc(cr, path)
	if err != nil {
		return nil, err
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	r := &Reader{
		path: path,
		read: read,
		size: int64(batchSize),
		defs: make([]int16, batchSize),
		reps: make([]int16, batchSize),
	}
	r.recon = nested.NewReconstructor(path, r)
	return r, nil
}

func (r *Reader) Path() *schema.Path {
	return r.path
}

// Read returns the value of the next record or nil at the end of the chunk.
func (r *Reader) Read() (*pqnest.Value, error) {
	return r.recon.Read()
}

// ReadAll returns the values of up to n records, or of all remaining
// records when n is negative.
func (r *Reader) ReadAll(n int) ([]pqnest.Value, error) {
	return r.recon.ReadAll(n)
}

// NextTriple implements nested.TripleReader over the chunk's raw levels.
func (r *Reader) NextTriple() (*nested.Triple, error) {
	if r.off >= r.batch.Len() {
		if err := r.fill(); err != nil || r.done {
			return nil, err
		}
	}
	b := &r.batch
	t := &nested.Triple{Rep: b.Reps[r.off], Def: b.Defs[r.off]}
	if t.Def == r.path.MaxDefinitionLevel() {
		if r.voff >= len(b.Values) {
			return nil, errMissingValue(r.path, r.off)
		}
		t.Value = b.Values[r.voff]
		r.voff++
	}
	r.off++
	return t, nil
}

func (r *Reader) fill() error {
	if r.done {
		return nil
	}
	// Levels that the path cannot carry are not decoded by the engine and
	// stay zero in the buffers.
	var defs, reps []int16
	if r.path.MaxDefinitionLevel() > 0 {
		defs = r.defs
	}
	if r.path.MaxRepetitionLevel() > 0 {
		reps = r.reps
	}
	total, vals, err := r.read(r.size, defs, reps, r.batch.Values[:0])
	if err != nil {
		return err
	}
	if total == 0 {
		r.done = true
	}
	r.batch.Values = vals
	r.batch.Defs = r.defs[:total]
	r.batch.Reps = r.reps[:total]
	r.off, r.voff = 0, 0
	return nil
}

func errMissingValue(path *schema.Path, off int) error {
	return pqe.E(pqe.Format, "%s: level %d is at the maximum definition level but the batch has no value for it", path, off)
}
