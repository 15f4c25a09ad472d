package pqnest_test

import (
	"math"
	"testing"
	"time"

	"github.com/brimdata/pqnest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueAccessors(t *testing.T) {
	assert.True(t, pqnest.NewBool(true).Bool())
	assert.Equal(t, int32(-7), pqnest.NewInt32(-7).Int32())
	assert.Equal(t, int64(math.MinInt64), pqnest.NewInt64(math.MinInt64).Int64())
	assert.Equal(t, float32(1.5), pqnest.NewFloat32(1.5).Float32())
	assert.Equal(t, 2.25, pqnest.NewFloat64(2.25).Float64())
	assert.Equal(t, []byte{1, 2}, pqnest.NewBytes([]byte{1, 2}).Bytes())
	assert.Equal(t, "hi", pqnest.NewString("hi").Str())
	ts := time.Date(2021, 3, 4, 5, 6, 7, 8, time.UTC)
	assert.Equal(t, ts, pqnest.NewTimestamp(ts).Time())
	assert.True(t, pqnest.Null.IsNull())
	assert.Panics(t, func() { pqnest.NewInt32(1).Int64() })
}

func TestValueEmptyListIsNotNull(t *testing.T) {
	empty := pqnest.NewList(nil)
	require.Equal(t, pqnest.KindList, empty.Kind())
	require.Equal(t, 0, empty.Len())
	require.False(t, pqnest.Equal(empty, pqnest.Null))
	require.True(t, pqnest.Equal(empty, pqnest.NewList([]pqnest.Value{})))
}

func TestValueStruct(t *testing.T) {
	s := pqnest.NewStruct(
		pqnest.NewField("a", pqnest.NewInt64(1)),
		pqnest.NewField("b", pqnest.Null),
	)
	v, ok := s.FieldByName("a")
	require.True(t, ok)
	assert.Equal(t, int64(1), v.Int64())
	v, ok = s.FieldByName("b")
	require.True(t, ok)
	assert.True(t, v.IsNull())
	_, ok = s.FieldByName("c")
	assert.False(t, ok)
	assert.Equal(t, []string{"a", "b"}, s.FieldNames())

	// Field order matters for equality.
	swapped := pqnest.NewStruct(
		pqnest.NewField("b", pqnest.Null),
		pqnest.NewField("a", pqnest.NewInt64(1)),
	)
	assert.False(t, pqnest.Equal(s, swapped))
}

func TestValueString(t *testing.T) {
	v := pqnest.NewStruct(
		pqnest.NewField("id", pqnest.NewInt32(3)),
		pqnest.NewField("tags", pqnest.NewList([]pqnest.Value{pqnest.NewString("x"), pqnest.Null})),
		pqnest.NewField("raw", pqnest.NewBytes([]byte{0xa, 0xb})),
		pqnest.NewField("my field", pqnest.NewList(nil)),
		pqnest.NewField("at", pqnest.NewTimestamp(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC))),
	)
	assert.Equal(t, `{id:3,tags:["x",null],raw:0x0a0b,"my field":[],at:2021-01-01T00:00:00Z}`, v.String())
}
