package column

import (
	"fmt"

	"github.com/apache/arrow/go/v11/parquet/file"
	"github.com/brimdata/pqnest"
	"github.com/brimdata/pqnest/nested"
	"github.com/brimdata/pqnest/pqe"
	"github.com/brimdata/pqnest/schema"
)

// Writer flattens the values of one leaf column into triples and hands them
// to the engine in batches.  A record's triples are never split across two
// batches.
type Writer struct {
	cw     file.ColumnChunkWriter
	path   *schema.Path
	write  writeBatchFunc
	flat   *nested.Flattener
	batch  nested.Batch
	size   int
	count  int
	closed bool
}

// NewWriter returns a Writer for the chunk cw whose schema path is path.
// A batchSize of zero or less selects DefaultBatchSize.
func NewWriter(cw file.ColumnChunkWriter, path *schema.Path, batchSize int) (*Writer, error) {
	write, err := newWriteFunc(cw, path)
	if err != nil {
		return nil, err
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Writer{
		cw:    cw,
		path:  path,
		write: write,
		flat:  nested.NewFlattener(path),
		size:  batchSize,
	}, nil
}

func (w *Writer) Path() *schema.Path {
	return w.path
}

// Count returns the number of records written.
func (w *Writer) Count() int {
	return w.count
}

// Write appends the value of one record.  A value that does not fit the
// path is a pqe.SchemaMismatch error and leaves the column unchanged.
func (w *Writer) Write(val pqnest.Value) error {
	if w.closed {
		return pqe.E(pqe.Invalid, "%s: write to closed column", w.path)
	}
	if err := w.flat.Flatten(val, &w.batch); err != nil {
		return err
	}
	w.count++
	if w.batch.Len() >= w.size {
		return w.Flush()
	}
	return nil
}

// WriteBatch writes vals in order.  If a value does not fit the path, the
// values before it are flushed to the engine and the error names the index
// of the offending value.
func (w *Writer) WriteBatch(vals []pqnest.Value) error {
	for k, val := range vals {
		if err := w.Write(val); err != nil {
			if ferr := w.Flush(); ferr != nil {
				return ferr
			}
			return fmt.Errorf("value %d: %w", k, err)
		}
	}
	return nil
}

// Flush hands the buffered triples to the engine.
func (w *Writer) Flush() error {
	if w.batch.Len() == 0 {
		return nil
	}
	var defs, reps []int16
	if w.path.MaxDefinitionLevel() > 0 {
		defs = w.batch.Defs
	}
	if w.path.MaxRepetitionLevel() > 0 {
		reps = w.batch.Reps
	}
	err := w.write(w.batch.Values, defs, reps)
	w.batch.Reset()
	return err
}

// Close flushes the column and closes the engine's chunk writer.  Closing
// an already closed Writer has no effect.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.Flush(); err != nil {
		return err
	}
	return w.cw.Close()
}
