package column

import (
	"encoding/binary"
	"math"
	"testing"
	"time"

	"github.com/apache/arrow/go/v11/parquet"
	"github.com/brimdata/pqnest"
	"github.com/brimdata/pqnest/pqe"
	"github.com/brimdata/pqnest/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInt96Nanos(t *testing.T) {
	var v parquet.Int96
	binary.LittleEndian.PutUint64(v[:8], uint64(90*time.Minute))
	binary.LittleEndian.PutUint32(v[8:], julianUnixEpoch+1)
	ns, ok := int96Nanos(v)
	require.True(t, ok)
	assert.Equal(t, int64(24*time.Hour+90*time.Minute), ns)

	binary.LittleEndian.PutUint64(v[:8], 0)
	binary.LittleEndian.PutUint32(v[8:], julianUnixEpoch-1)
	ns, ok = int96Nanos(v)
	require.True(t, ok)
	assert.Equal(t, -nanosPerDay, ns)

	binary.LittleEndian.PutUint32(v[8:], math.MaxUint32)
	_, ok = int96Nanos(v)
	assert.False(t, ok)
}

func TestFloorDiv(t *testing.T) {
	assert.Equal(t, int64(2), floorDiv(5, 2))
	assert.Equal(t, int64(-3), floorDiv(-5, 2))
	assert.Equal(t, int64(-2), floorDiv(-4, 2))
	assert.Equal(t, int64(-1), floorDiv(-1, nanosPerDay))
	assert.Equal(t, int64(0), floorDiv(0, nanosPerDay))
}

func TestScaleNanos(t *testing.T) {
	ns, ok := scaleNanos(-3, int64(time.Millisecond))
	require.True(t, ok)
	assert.Equal(t, int64(-3*time.Millisecond), ns)
	_, ok = scaleNanos(math.MaxInt64/1000+1, 1000)
	assert.False(t, ok)
	_, ok = scaleNanos(math.MinInt64/1000-1, 1000)
	assert.False(t, ok)
	_, ok = scaleNanos(math.MaxInt32, nanosPerDay)
	assert.False(t, ok)
}

// int64Batch serves its values as one batch of a required column.
type int64Batch []int64

func (b int64Batch) ReadBatch(n int64, vals []int64, _, _ []int16) (int64, int, error) {
	k := copy(vals[:n], b)
	return int64(k), k, nil
}

type int32Batch []int32

func (b int32Batch) ReadBatch(n int64, vals []int32, _, _ []int16) (int64, int, error) {
	k := copy(vals[:n], b)
	return int64(k), k, nil
}

func TestTimestampOutOfRange(t *testing.T) {
	path, err := schema.NewPath([]schema.PathNode{{Name: "ts", Repetition: schema.Required}}, schema.TimestampMicros)
	require.NoError(t, err)
	scale := timestampScale(schema.TimestampMicros)

	read := readFunc[int64](int64Batch{1, -2}, timestampConv(path, scale))
	n, vals, err := read(8, nil, nil, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	require.Len(t, vals, 2)
	assert.True(t, pqnest.Equal(pqnest.NewTimestampNanos(-2000), vals[1]))

	read = readFunc[int64](int64Batch{1, math.MaxInt64 / 10}, timestampConv(path, scale))
	_, _, err = read(8, nil, nil, nil)
	require.Error(t, err)
	assert.True(t, pqe.IsKind(err, pqe.Format), "%v", err)
	assert.Contains(t, err.Error(), "outside the range of nanosecond timestamps")

	read = readFunc[int32](int32Batch{math.MinInt32}, dateConv(path))
	_, _, err = read(8, nil, nil, nil)
	assert.True(t, pqe.IsKind(err, pqe.Format), "%v", err)
}
