package parquetio

import (
	"fmt"

	"github.com/apache/arrow/go/v11/parquet/file"
	"github.com/brimdata/pqnest"
	"github.com/brimdata/pqnest/column"
	"github.com/brimdata/pqnest/nested"
	"github.com/brimdata/pqnest/pkg/storage"
	"github.com/brimdata/pqnest/pqe"
	"github.com/brimdata/pqnest/schema"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Writer writes nested records to a Parquet file through the engine.  The
// file is complete only after Close, which also closes the adapter.
type Writer struct {
	out       *storage.Adapter
	sch       *schema.Schema
	paths     []*schema.Path
	fw        *file.Writer
	batchSize int
	logger    *zap.Logger
	rg        *RowGroupWriter
	rowGroups int
	closed    bool
}

// NewWriter starts a file with schema sch on out.  The engine writes the
// file header immediately, so a stream that cannot be written fails here.
func NewWriter(out *storage.Adapter, sch *schema.Schema, opts WriterOpts) (*Writer, error) {
	if out.Mode() != storage.WriteMode {
		return nil, pqe.E(pqe.Capability, "parquet writer requires an adapter opened for write")
	}
	paths, err := sch.Paths()
	if err != nil {
		return nil, err
	}
	root, err := sch.Arrow()
	if err != nil {
		return nil, err
	}
	props, err := opts.properties()
	if err != nil {
		return nil, pqe.E(pqe.Invalid, err)
	}
	var fw *file.Writer
	err = guard(out, func() error {
		fw = file.NewParquetWriter(engineStream{out}, root, file.WithWriterProps(props))
		return nil
	})
	if err != nil {
		return nil, err
	}
	w := &Writer{
		out:       out,
		sch:       sch,
		paths:     paths,
		fw:        fw,
		batchSize: opts.BatchSize,
		logger:    logger(opts.Logger),
	}
	w.logger.Debug("Parquet file started", zap.Int("columns", len(paths)))
	return w, nil
}

func (w *Writer) Schema() *schema.Schema {
	return w.sch
}

func (w *Writer) Paths() []*schema.Path {
	return w.paths
}

// AppendRowGroup closes the current row group, if any, and starts a new one.
func (w *Writer) AppendRowGroup() (*RowGroupWriter, error) {
	if w.closed {
		return nil, pqe.E(pqe.Invalid, "parquet writer is closed")
	}
	if err := w.closeRowGroup(); err != nil {
		return nil, err
	}
	var rgw file.SerialRowGroupWriter
	err := guard(w.out, func() error {
		rgw = w.fw.AppendRowGroup()
		return nil
	})
	if err != nil {
		return nil, err
	}
	w.rg = &RowGroupWriter{w: w, rgw: rgw, index: w.rowGroups}
	w.rowGroups++
	return w.rg, nil
}

func (w *Writer) closeRowGroup() error {
	if w.rg == nil {
		return nil
	}
	rg := w.rg
	w.rg = nil
	return rg.Close()
}

// WriteRecords writes recs as one row group.  Each record must be a struct
// whose fields are top-level fields of the schema; a missing field is
// absent.  Every record is checked against the schema before anything is
// written, so a mismatch leaves the file unchanged.
func (w *Writer) WriteRecords(recs []pqnest.Value) error {
	if err := w.check(recs); err != nil {
		return err
	}
	rg, err := w.AppendRowGroup()
	if err != nil {
		return err
	}
	for range w.paths {
		cw, err := rg.NextColumn()
		if err != nil {
			return err
		}
		name := cw.Path().Nodes[0].Name
		for _, rec := range recs {
			val, _ := rec.FieldByName(name)
			if err := cw.Write(val); err != nil {
				return err
			}
		}
	}
	return w.closeRowGroup()
}

func (w *Writer) check(recs []pqnest.Value) error {
	flatteners := make([]*nested.Flattener, len(w.paths))
	for k, path := range w.paths {
		flatteners[k] = nested.NewFlattener(path)
	}
	var scratch nested.Batch
	for k, rec := range recs {
		if rec.Kind() != pqnest.KindStruct {
			return pqe.E(pqe.SchemaMismatch, "record %d: expected struct, found %s", k, rec.Kind())
		}
		for _, name := range rec.FieldNames() {
			if !w.topLevel(name) {
				return pqe.E(pqe.SchemaMismatch, "record %d: field %q is not in the schema", k, name)
			}
		}
		for j, f := range flatteners {
			val, _ := rec.FieldByName(w.paths[j].Nodes[0].Name)
			if err := f.Flatten(val, &scratch); err != nil {
				return fmt.Errorf("record %d: %w", k, err)
			}
			scratch.Reset()
		}
	}
	return nil
}

func (w *Writer) topLevel(name string) bool {
	for _, n := range w.sch.Fields {
		if n.Name == name {
			return true
		}
	}
	return false
}

// Close finishes the file and closes the adapter.  Close may be called more
// than once; only the first call has an effect.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	err := w.closeRowGroup()
	w.closed = true
	if err2 := guard(w.out, w.fw.Close); err == nil {
		err = err2
	}
	err = multierr.Append(err, w.out.Close())
	if err != nil {
		w.logger.Debug("Parquet file close failed", zap.Error(err))
	} else {
		w.logger.Debug("Parquet file closed", zap.Int("row_groups", w.rowGroups))
	}
	return err
}

// RowGroupWriter writes the columns of one row group in schema order.
type RowGroupWriter struct {
	w      *Writer
	rgw    file.SerialRowGroupWriter
	index  int
	next   int
	col    *ColumnWriter
	closed bool
}

// NextColumn closes the current column, if any, and returns a writer for the
// next leaf column.
func (r *RowGroupWriter) NextColumn() (*ColumnWriter, error) {
	if r.closed {
		return nil, pqe.E(pqe.Invalid, "row group %d is closed", r.index)
	}
	if r.next >= len(r.w.paths) {
		return nil, pqe.E(pqe.Invalid, "row group %d: all %d columns have been written", r.index, len(r.w.paths))
	}
	if err := r.closeColumn(); err != nil {
		return nil, err
	}
	var cw file.ColumnChunkWriter
	err := guard(r.w.out, func() (err error) {
		cw, err = r.rgw.NextColumn()
		return err
	})
	if err != nil {
		return nil, err
	}
	cr, err := column.NewWriter(cw, r.w.paths[r.next], r.w.batchSize)
	if err != nil {
		return nil, err
	}
	r.next++
	r.col = &ColumnWriter{Writer: cr, out: r.w.out}
	return r.col, nil
}

func (r *RowGroupWriter) closeColumn() error {
	if r.col == nil {
		return nil
	}
	col := r.col
	r.col = nil
	return col.Close()
}

// Close closes the current column and the row group.  The engine requires
// that every column of the group hold the same number of records.
func (r *RowGroupWriter) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	err := r.closeColumn()
	if err != nil {
		return err
	}
	if err := guard(r.w.out, r.rgw.Close); err != nil {
		return err
	}
	if r.w.rg == r {
		r.w.rg = nil
	}
	r.w.logger.Debug("Row group written", zap.Int("row_group", r.index), zap.Int("columns", r.next))
	return nil
}

// ColumnWriter is a column.Writer whose engine calls are guarded.
type ColumnWriter struct {
	*column.Writer
	out *storage.Adapter
}

func (c *ColumnWriter) Write(val pqnest.Value) error {
	return guard(c.out, func() error {
		return c.Writer.Write(val)
	})
}

func (c *ColumnWriter) WriteBatch(vals []pqnest.Value) error {
	return guard(c.out, func() error {
		return c.Writer.WriteBatch(vals)
	})
}

func (c *ColumnWriter) Flush() error {
	return guard(c.out, c.Writer.Flush)
}

func (c *ColumnWriter) Close() error {
	return guard(c.out, c.Writer.Close)
}
