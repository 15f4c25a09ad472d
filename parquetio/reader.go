package parquetio

import (
	"fmt"

	"github.com/agnivade/levenshtein"
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

// Reader reads the nested records of a Parquet file through the engine.
type Reader struct {
	in        *storage.Adapter
	fr        *file.Reader
	sch       *schema.Schema
	paths     []*schema.Path
	batchSize int
	logger    *zap.Logger
	closed    bool
}

// NewReader opens the file on in.  The engine reads the footer here, so a
// stream that cannot be read fails with its own error.
func NewReader(in *storage.Adapter, opts ReaderOpts) (*Reader, error) {
	if in.Mode() != storage.ReadMode {
		return nil, pqe.E(pqe.Capability, "parquet reader requires an adapter opened for read")
	}
	var fr *file.Reader
	err := guard(in, func() (err error) {
		fr, err = file.NewParquetReader(engineStream{in})
		return err
	})
	if err != nil {
		return nil, err
	}
	arrowSchema := fr.MetaData().Schema
	sch, err := schema.FromArrow(arrowSchema)
	if err != nil {
		return nil, err
	}
	paths := make([]*schema.Path, arrowSchema.NumColumns())
	for k := range paths {
		if paths[k], err = schema.FromColumn(arrowSchema.Column(k)); err != nil {
			return nil, err
		}
	}
	r := &Reader{
		in:        in,
		fr:        fr,
		sch:       sch,
		paths:     paths,
		batchSize: opts.BatchSize,
		logger:    logger(opts.Logger),
	}
	r.logger.Debug("Parquet file opened",
		zap.Int("columns", len(paths)),
		zap.Int("row_groups", fr.NumRowGroups()),
		zap.Int64("rows", fr.NumRows()))
	return r, nil
}

func (r *Reader) Schema() *schema.Schema {
	return r.sch
}

// Paths returns the schema path of each leaf column in column order.
func (r *Reader) Paths() []*schema.Path {
	return r.paths
}

func (r *Reader) NumRowGroups() int {
	return r.fr.NumRowGroups()
}

func (r *Reader) NumRows() int64 {
	return r.fr.NumRows()
}

// LookupColumn returns the index of the leaf column with the dotted path
// name.  When there is no such column, the error suggests the closest one.
func (r *Reader) LookupColumn(name string) (int, error) {
	best, bestDist := -1, 0
	for k, path := range r.paths {
		s := path.String()
		if s == name {
			return k, nil
		}
		if d := levenshtein.ComputeDistance(name, s); best < 0 || d < bestDist {
			best, bestDist = k, d
		}
	}
	if best < 0 {
		return -1, pqe.E(pqe.NotFound, "column %q not found", name)
	}
	return -1, pqe.E(pqe.NotFound, "column %q not found (did you mean %q?)", name, r.paths[best].String())
}

// RowGroup returns a reader for row group i.
func (r *Reader) RowGroup(i int) (*RowGroupReader, error) {
	if r.closed {
		return nil, pqe.E(pqe.Invalid, "parquet reader is closed")
	}
	if i < 0 || i >= r.fr.NumRowGroups() {
		return nil, pqe.E(pqe.Invalid, "row group %d out of range [0,%d)", i, r.fr.NumRowGroups())
	}
	var rgr *file.RowGroupReader
	err := guard(r.in, func() error {
		rgr = r.fr.RowGroup(i)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &RowGroupReader{r: r, rgr: rgr, index: i}, nil
}

// Records returns a reader of whole records across all row groups.
func (r *Reader) Records() *RecordReader {
	return &RecordReader{r: r}
}

// Close closes the engine's file and the adapter.  Close may be called more
// than once; only the first call has an effect.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	err := multierr.Append(r.fr.Close(), r.in.Close())
	r.logger.Debug("Parquet file closed", zap.Error(err))
	return err
}

type RowGroupReader struct {
	r     *Reader
	rgr   *file.RowGroupReader
	index int
}

func (g *RowGroupReader) NumRows() int64 {
	return g.rgr.NumRows()
}

// Column returns a reader for leaf column i of the row group.
func (g *RowGroupReader) Column(i int) (*ColumnReader, error) {
	if i < 0 || i >= len(g.r.paths) {
		return nil, pqe.E(pqe.Invalid, "column %d out of range [0,%d)", i, len(g.r.paths))
	}
	var cr file.ColumnChunkReader
	err := guard(g.r.in, func() (err error) {
		cr, err = g.rgr.Column(i)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("row group %d: %w", g.index, err)
	}
	c, err := column.NewReader(cr, g.r.paths[i], g.r.batchSize)
	if err != nil {
		return nil, err
	}
	return &ColumnReader{Reader: c, in: g.r.in}, nil
}

// ColumnReader is a column.Reader whose engine calls are guarded.
type ColumnReader struct {
	*column.Reader
	in *storage.Adapter
}

func (c *ColumnReader) Read() (*pqnest.Value, error) {
	var val *pqnest.Value
	err := guard(c.in, func() (err error) {
		val, err = c.Reader.Read()
		return err
	})
	return val, err
}

func (c *ColumnReader) ReadAll(n int) ([]pqnest.Value, error) {
	var vals []pqnest.Value
	err := guard(c.in, func() (err error) {
		vals, err = c.Reader.ReadAll(n)
		return err
	})
	return vals, err
}

func (c *ColumnReader) NextTriple() (*nested.Triple, error) {
	var t *nested.Triple
	err := guard(c.in, func() (err error) {
		t, err = c.Reader.NextTriple()
		return err
	})
	return t, err
}
