package parquetio

import (
	"github.com/brimdata/pqnest"
	"github.com/brimdata/pqnest/nested"
	"github.com/brimdata/pqnest/pqe"
)

// RecordReader reads whole records by reading every leaf column of a row
// group in step and merging the per-column values into one struct.
type RecordReader struct {
	r     *Reader
	group int
	cols  []*ColumnReader
	err   error
}

// Read returns the next record or nil after the last row group.
func (rr *RecordReader) Read() (*pqnest.Value, error) {
	if rr.err != nil {
		return nil, rr.err
	}
	rec, err := rr.read()
	if err != nil {
		rr.err = err
	}
	return rec, err
}

func (rr *RecordReader) read() (*pqnest.Value, error) {
	for {
		if rr.cols == nil {
			if rr.group >= rr.r.NumRowGroups() {
				return nil, nil
			}
			if err := rr.open(rr.group); err != nil {
				return nil, err
			}
			rr.group++
		}
		rec := pqnest.Null
		var ended int
		for _, c := range rr.cols {
			val, err := c.Read()
			if err != nil {
				return nil, err
			}
			if val == nil {
				ended++
				continue
			}
			top := pqnest.NewStruct(pqnest.NewField(c.Path().Nodes[0].Name, *val))
			if rec.IsNull() {
				rec = top
				continue
			}
			if rec, err = nested.Merge(rec, top); err != nil {
				return nil, err
			}
		}
		switch ended {
		case 0:
			return &rec, nil
		case len(rr.cols):
			rr.cols = nil
		default:
			return nil, pqe.E(pqe.Format, "row group %d: %d of %d columns ended early", rr.group-1, ended, len(rr.cols))
		}
	}
}

func (rr *RecordReader) open(group int) error {
	rg, err := rr.r.RowGroup(group)
	if err != nil {
		return err
	}
	cols := make([]*ColumnReader, len(rr.r.paths))
	for k := range cols {
		if cols[k], err = rg.Column(k); err != nil {
			return err
		}
	}
	rr.cols = cols
	return nil
}

// ReadAll returns up to n records, or all remaining records when n is
// negative.
func (rr *RecordReader) ReadAll(n int) ([]pqnest.Value, error) {
	var recs []pqnest.Value
	for n < 0 || len(recs) < n {
		rec, err := rr.Read()
		if err != nil {
			return recs, err
		}
		if rec == nil {
			break
		}
		recs = append(recs, *rec)
	}
	return recs, nil
}
