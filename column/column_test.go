package column_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/apache/arrow/go/v11/parquet/file"
	"github.com/brimdata/pqnest"
	"github.com/brimdata/pqnest/column"
	"github.com/brimdata/pqnest/pqe"
	"github.com/brimdata/pqnest/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeChunk(t *testing.T, sch *schema.Schema, batchSize int, cols ...[]pqnest.Value) []byte {
	t.Helper()
	root, err := sch.Arrow()
	require.NoError(t, err)
	paths, err := sch.Paths()
	require.NoError(t, err)
	require.Len(t, cols, len(paths))
	var buf bytes.Buffer
	fw := file.NewParquetWriter(&buf, root)
	rgw := fw.AppendRowGroup()
	for k, vals := range cols {
		cw, err := rgw.NextColumn()
		require.NoError(t, err)
		w, err := column.NewWriter(cw, paths[k], batchSize)
		require.NoError(t, err)
		require.NoError(t, w.WriteBatch(vals))
		assert.Equal(t, len(vals), w.Count())
		require.NoError(t, w.Close())
	}
	require.NoError(t, rgw.Close())
	require.NoError(t, fw.Close())
	return buf.Bytes()
}

func readChunk(t *testing.T, data []byte, col, batchSize int) []pqnest.Value {
	t.Helper()
	rdr, err := file.NewParquetReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer rdr.Close()
	path, err := schema.FromColumn(rdr.MetaData().Schema.Column(col))
	require.NoError(t, err)
	cr, err := rdr.RowGroup(0).Column(col)
	require.NoError(t, err)
	r, err := column.NewReader(cr, path, batchSize)
	require.NoError(t, err)
	assert.Equal(t, path, r.Path())
	vals, err := r.ReadAll(-1)
	require.NoError(t, err)
	return vals
}

func assertValues(t *testing.T, expected, actual []pqnest.Value) {
	t.Helper()
	require.Len(t, actual, len(expected))
	for k := range expected {
		assert.True(t, pqnest.Equal(expected[k], actual[k]), "record %d: expected %s, got %s", k, expected[k], actual[k])
	}
}

func TestLeafTypes(t *testing.T) {
	sch := schema.New(
		schema.Leaf("b", schema.Optional, schema.Boolean),
		schema.Leaf("i", schema.Optional, schema.Int32),
		schema.Leaf("l", schema.Required, schema.Int64),
		schema.Leaf("f", schema.Optional, schema.Float),
		schema.Leaf("d", schema.Optional, schema.Double),
		schema.Leaf("s", schema.Optional, schema.String),
		schema.Leaf("raw", schema.Optional, schema.Bytes),
		&schema.Node{Name: "fx", Repetition: schema.Optional, Type: schema.FixedBytes, Length: 3},
		schema.Leaf("day", schema.Optional, schema.Date),
		schema.Leaf("ms", schema.Optional, schema.TimestampMillis),
		schema.Leaf("us", schema.Optional, schema.TimestampMicros),
		schema.Leaf("ns", schema.Optional, schema.TimestampNanos),
	)
	day := time.Date(2021, 3, 14, 0, 0, 0, 0, time.UTC)
	ts := time.Date(2021, 3, 14, 15, 9, 26, 535897932, time.UTC)
	cols := [][]pqnest.Value{
		{pqnest.NewBool(true), pqnest.Null, pqnest.NewBool(false)},
		{pqnest.NewInt32(-7), pqnest.NewInt32(1 << 30), pqnest.Null},
		{pqnest.NewInt64(1), pqnest.NewInt64(-1 << 40), pqnest.NewInt64(0)},
		{pqnest.Null, pqnest.NewFloat32(1.5), pqnest.NewFloat32(-0.25)},
		{pqnest.NewFloat64(3.25), pqnest.Null, pqnest.NewFloat64(1e100)},
		{pqnest.NewString("hello"), pqnest.NewString(""), pqnest.Null},
		{pqnest.NewBytes([]byte{0, 1, 2}), pqnest.Null, pqnest.NewBytes([]byte{})},
		{pqnest.NewBytes([]byte("abc")), pqnest.Null, pqnest.NewBytes([]byte("xyz"))},
		{pqnest.NewTimestamp(day), pqnest.Null, pqnest.NewTimestamp(day.AddDate(-60, 0, 0))},
		{pqnest.NewTimestamp(ts.Truncate(time.Millisecond)), pqnest.Null, pqnest.Null},
		{pqnest.NewTimestamp(ts.Truncate(time.Microsecond)), pqnest.Null, pqnest.Null},
		{pqnest.NewTimestamp(ts), pqnest.Null, pqnest.NewTimestampNanos(0)},
	}
	data := writeChunk(t, sch, 0, cols...)
	for k, expected := range cols {
		assertValues(t, expected, readChunk(t, data, k, 0))
	}
}

func TestRepeatedAcrossBatches(t *testing.T) {
	sch := schema.New(schema.NewList("l", schema.Optional, schema.Leaf("element", schema.Optional, schema.Int64)))
	var vals []pqnest.Value
	for k := 0; k < 200; k++ {
		switch k % 4 {
		case 0:
			vals = append(vals, pqnest.Null)
		case 1:
			vals = append(vals, pqnest.NewList(nil))
		default:
			var elems []pqnest.Value
			for j := 0; j < k%7; j++ {
				if j == 3 {
					elems = append(elems, pqnest.Null)
					continue
				}
				elems = append(elems, pqnest.NewInt64(int64(k*10+j)))
			}
			vals = append(vals, pqnest.NewList(elems))
		}
	}
	data := writeChunk(t, sch, 5, vals)
	assertValues(t, vals, readChunk(t, data, 0, 3))
	assertValues(t, vals, readChunk(t, data, 0, 0))
}

func TestReadIncrementally(t *testing.T) {
	sch := schema.New(schema.Leaf("n", schema.Required, schema.Int32))
	var vals []pqnest.Value
	for k := 0; k < 10; k++ {
		vals = append(vals, pqnest.NewInt32(int32(k)))
	}
	data := writeChunk(t, sch, 4, vals)
	rdr, err := file.NewParquetReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer rdr.Close()
	path, err := schema.FromColumn(rdr.MetaData().Schema.Column(0))
	require.NoError(t, err)
	cr, err := rdr.RowGroup(0).Column(0)
	require.NoError(t, err)
	r, err := column.NewReader(cr, path, 3)
	require.NoError(t, err)
	first, err := r.Read()
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, int32(0), first.Int32())
	some, err := r.ReadAll(4)
	require.NoError(t, err)
	assertValues(t, vals[1:5], some)
	rest, err := r.ReadAll(-1)
	require.NoError(t, err)
	assertValues(t, vals[5:], rest)
	end, err := r.Read()
	require.NoError(t, err)
	assert.Nil(t, end)
}

func TestWriteBatchMismatch(t *testing.T) {
	sch := schema.New(schema.Leaf("n", schema.Optional, schema.Int64))
	root, err := sch.Arrow()
	require.NoError(t, err)
	paths, err := sch.Paths()
	require.NoError(t, err)
	var buf bytes.Buffer
	fw := file.NewParquetWriter(&buf, root)
	cw, err := fw.AppendRowGroup().NextColumn()
	require.NoError(t, err)
	w, err := column.NewWriter(cw, paths[0], 0)
	require.NoError(t, err)
	err = w.WriteBatch([]pqnest.Value{pqnest.NewInt64(1), pqnest.Null, pqnest.NewString("x"), pqnest.NewInt64(4)})
	require.Error(t, err)
	assert.True(t, pqe.IsKind(err, pqe.SchemaMismatch), "%v", err)
	assert.Contains(t, err.Error(), "value 2")
	assert.Equal(t, 2, w.Count())
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	err = w.Write(pqnest.NewInt64(5))
	assert.True(t, pqe.IsKind(err, pqe.Invalid), "%v", err)
	require.NoError(t, fw.Close())

	assertValues(t, []pqnest.Value{pqnest.NewInt64(1), pqnest.Null}, readChunk(t, buf.Bytes(), 0, 0))
}
