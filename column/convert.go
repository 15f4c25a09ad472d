package column

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/apache/arrow/go/v11/parquet"
	"github.com/apache/arrow/go/v11/parquet/file"
	"github.com/brimdata/pqnest"
	"github.com/brimdata/pqnest/pqe"
	"github.com/brimdata/pqnest/schema"
)

const (
	nanosPerDay = int64(24 * time.Hour)
	// julianUnixEpoch is the Julian day number of 1970-01-01.
	julianUnixEpoch = 2440588
)

// readBatchFunc reads up to max level pairs into defs and reps (either of
// which is nil when the column has no such levels), appends the present
// values to out, and returns the number of level pairs read.
type readBatchFunc func(max int64, defs, reps []int16, out []pqnest.Value) (int64, []pqnest.Value, error)

// writeBatchFunc hands one batch of level pairs and present values to the
// engine.
type writeBatchFunc func(vals []pqnest.Value, defs, reps []int16) error

type typedReader[T any] interface {
	ReadBatch(batchSize int64, values []T, defLvls, repLvls []int16) (int64, int, error)
}

type typedWriter[T any] interface {
	WriteBatch(values []T, defLevels, repLevels []int16) (int64, error)
}

func readFunc[T any](r typedReader[T], conv func(T) (pqnest.Value, error)) readBatchFunc {
	var buf []T
	return func(max int64, defs, reps []int16, out []pqnest.Value) (int64, []pqnest.Value, error) {
		if int64(len(buf)) < max {
			buf = make([]T, max)
		}
		total, n, err := r.ReadBatch(max, buf[:max], defs, reps)
		if err != nil {
			return total, out, err
		}
		for _, v := range buf[:n] {
			val, err := conv(v)
			if err != nil {
				return total, out, err
			}
			out = append(out, val)
		}
		return total, out, nil
	}
}

// lift adapts a conversion that cannot fail.
func lift[T any](f func(T) pqnest.Value) func(T) (pqnest.Value, error) {
	return func(v T) (pqnest.Value, error) {
		return f(v), nil
	}
}

func writeFunc[T any](w typedWriter[T], conv func(pqnest.Value) T) writeBatchFunc {
	var buf []T
	return func(vals []pqnest.Value, defs, reps []int16) error {
		buf = buf[:0]
		for _, v := range vals {
			buf = append(buf, conv(v))
		}
		_, err := w.WriteBatch(buf, defs, reps)
		return err
	}
}

func newReadFunc(cr file.ColumnChunkReader, path *schema.Path) (readBatchFunc, error) {
	switch r := cr.(type) {
	case *file.BooleanColumnChunkReader:
		return readFunc[bool](r, lift(pqnest.NewBool)), nil
	case *file.Int32ColumnChunkReader:
		if path.Leaf == schema.Date {
			return readFunc[int32](r, dateConv(path)), nil
		}
		return readFunc[int32](r, lift(pqnest.NewInt32)), nil
	case *file.Int64ColumnChunkReader:
		if scale := timestampScale(path.Leaf); scale != 0 {
			return readFunc[int64](r, timestampConv(path, scale)), nil
		}
		return readFunc[int64](r, lift(pqnest.NewInt64)), nil
	case *file.Int96ColumnChunkReader:
		return readFunc[parquet.Int96](r, func(v parquet.Int96) (pqnest.Value, error) {
			ns, ok := int96Nanos(v)
			if !ok {
				return pqnest.Null, errTimestampRange(path, v[:])
			}
			return pqnest.NewTimestampNanos(ns), nil
		}), nil
	case *file.Float32ColumnChunkReader:
		return readFunc[float32](r, lift(pqnest.NewFloat32)), nil
	case *file.Float64ColumnChunkReader:
		return readFunc[float64](r, lift(pqnest.NewFloat64)), nil
	case *file.ByteArrayColumnChunkReader:
		// Values are copied out of the engine's page buffers.
		if path.Leaf == schema.String {
			return readFunc[parquet.ByteArray](r, lift(func(v parquet.ByteArray) pqnest.Value {
				return pqnest.NewString(string(v))
			})), nil
		}
		return readFunc[parquet.ByteArray](r, lift(func(v parquet.ByteArray) pqnest.Value {
			return pqnest.NewBytes(append([]byte{}, v...))
		})), nil
	case *file.FixedLenByteArrayColumnChunkReader:
		return readFunc[parquet.FixedLenByteArray](r, lift(func(v parquet.FixedLenByteArray) pqnest.Value {
			return pqnest.NewBytes(append([]byte{}, v...))
		})), nil
	}
	return nil, pqe.E(pqe.Invalid, "%s: unsupported column reader %T", path, cr)
}

func dateConv(path *schema.Path) func(int32) (pqnest.Value, error) {
	return func(days int32) (pqnest.Value, error) {
		ns, ok := scaleNanos(int64(days), nanosPerDay)
		if !ok {
			return pqnest.Null, errTimestampRange(path, days)
		}
		return pqnest.NewTimestampNanos(ns), nil
	}
}

func timestampConv(path *schema.Path, scale int64) func(int64) (pqnest.Value, error) {
	return func(v int64) (pqnest.Value, error) {
		ns, ok := scaleNanos(v, scale)
		if !ok {
			return pqnest.Null, errTimestampRange(path, v)
		}
		return pqnest.NewTimestampNanos(ns), nil
	}
}

func errTimestampRange(path *schema.Path, v interface{}) error {
	return pqe.E(pqe.Format, "%s: %v is outside the range of nanosecond timestamps", path, v)
}

func newWriteFunc(cw file.ColumnChunkWriter, path *schema.Path) (writeBatchFunc, error) {
	switch w := cw.(type) {
	case *file.BooleanColumnChunkWriter:
		return writeFunc[bool](w, pqnest.Value.Bool), nil
	case *file.Int32ColumnChunkWriter:
		if path.Leaf == schema.Date {
			return writeFunc[int32](w, func(v pqnest.Value) int32 {
				return int32(floorDiv(v.TimestampNanos(), nanosPerDay))
			}), nil
		}
		return writeFunc[int32](w, pqnest.Value.Int32), nil
	case *file.Int64ColumnChunkWriter:
		if scale := timestampScale(path.Leaf); scale != 0 {
			return writeFunc[int64](w, func(v pqnest.Value) int64 {
				return floorDiv(v.TimestampNanos(), scale)
			}), nil
		}
		return writeFunc[int64](w, pqnest.Value.Int64), nil
	case *file.Float32ColumnChunkWriter:
		return writeFunc[float32](w, pqnest.Value.Float32), nil
	case *file.Float64ColumnChunkWriter:
		return writeFunc[float64](w, pqnest.Value.Float64), nil
	case *file.ByteArrayColumnChunkWriter:
		return writeFunc[parquet.ByteArray](w, func(v pqnest.Value) parquet.ByteArray {
			return parquet.ByteArray(v.Bytes())
		}), nil
	case *file.FixedLenByteArrayColumnChunkWriter:
		return writeFunc[parquet.FixedLenByteArray](w, func(v pqnest.Value) parquet.FixedLenByteArray {
			return parquet.FixedLenByteArray(v.Bytes())
		}), nil
	}
	return nil, pqe.E(pqe.Invalid, "%s: writing %s columns is not supported", path, path.Leaf)
}

// timestampScale returns the nanoseconds per unit of an INT64 timestamp
// type or zero for other types.
func timestampScale(t schema.Type) int64 {
	switch t {
	case schema.TimestampMillis:
		return int64(time.Millisecond)
	case schema.TimestampMicros:
		return int64(time.Microsecond)
	case schema.TimestampNanos:
		return 1
	}
	return 0
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// scaleNanos returns v units of scale nanoseconds, or false when that does
// not fit in an int64.
func scaleNanos(v, scale int64) (int64, bool) {
	if v > math.MaxInt64/scale || v < math.MinInt64/scale {
		return 0, false
	}
	return v * scale, true
}

// int96Nanos decodes the legacy INT96 timestamp layout: eight little-endian
// bytes of nanoseconds within the day followed by four bytes of Julian day.
func int96Nanos(v parquet.Int96) (int64, bool) {
	nanos := binary.LittleEndian.Uint64(v[:8])
	day := int64(binary.LittleEndian.Uint32(v[8:]))
	ns, ok := scaleNanos(day-julianUnixEpoch, nanosPerDay)
	if !ok || nanos > math.MaxInt64 || ns > math.MaxInt64-int64(nanos) {
		return 0, false
	}
	return ns + int64(nanos), true
}
