// Package ndjson converts newline-delimited JSON objects into records
// shaped by a Parquet schema.
package ndjson

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/brimdata/pqnest"
	"github.com/brimdata/pqnest/pqe"
	"github.com/brimdata/pqnest/schema"
)

const (
	ReadSize    = 64 * 1024
	MaxLineSize = 50 * 1024 * 1024
)

type Reader struct {
	scanner *bufio.Scanner
	sch     *schema.Schema
	line    int
}

func NewReader(r io.Reader, sch *schema.Schema) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, ReadSize), MaxLineSize)
	return &Reader{scanner: scanner, sch: sch}
}

// Read returns the next record or nil at the end of the input.
func (r *Reader) Read() (*pqnest.Value, error) {
	for r.scanner.Scan() {
		r.line++
		line := bytes.TrimSpace(r.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		rec, err := Decode(r.sch, line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", r.line, err)
		}
		return &rec, nil
	}
	return nil, r.scanner.Err()
}

// ReadAll returns up to n records, or all remaining records when n is
// negative.
func (r *Reader) ReadAll(n int) ([]pqnest.Value, error) {
	var recs []pqnest.Value
	for n < 0 || len(recs) < n {
		rec, err := r.Read()
		if err != nil {
			return nil, err
		}
		if rec == nil {
			break
		}
		recs = append(recs, *rec)
	}
	return recs, nil
}

// Decode converts one JSON object into a record of sch.  JSON null and
// missing fields become Null; whether Null is allowed is left to the
// writer, which checks each record against the schema.
func Decode(sch *schema.Schema, b []byte) (pqnest.Value, error) {
	d := json.NewDecoder(bytes.NewReader(b))
	d.UseNumber()
	var obj interface{}
	if err := d.Decode(&obj); err != nil {
		return pqnest.Null, pqe.E(pqe.Invalid, err)
	}
	if _, err := d.Token(); err != io.EOF {
		return pqnest.Null, pqe.E(pqe.Invalid, "unexpected data after JSON value")
	}
	c := converter{}
	return c.group(sch.Fields, obj)
}

type converter struct {
	names []string
}

func (c *converter) mismatch(format string, args ...interface{}) error {
	where := strings.Join(c.names, ".")
	if where == "" {
		where = "record"
	}
	return pqe.E(pqe.SchemaMismatch, "%s: %s", where, fmt.Sprintf(format, args...))
}

func (c *converter) group(fields []*schema.Node, v interface{}) (pqnest.Value, error) {
	obj, ok := v.(map[string]interface{})
	if !ok {
		return pqnest.Null, c.mismatch("expected object, found %s", jsonKind(v))
	}
	for name := range obj {
		if indexNode(fields, name) < 0 {
			return pqnest.Null, c.mismatch("unknown field %q", name)
		}
	}
	out := make([]pqnest.Field, 0, len(fields))
	for _, n := range fields {
		c.names = append(c.names, n.Name)
		val, err := c.value(n, false, obj[n.Name])
		c.names = c.names[:len(c.names)-1]
		if err != nil {
			return pqnest.Null, err
		}
		out = append(out, pqnest.NewField(n.Name, val))
	}
	return pqnest.NewStruct(out...), nil
}

// value converts v as the value of node n.  listChild marks the repeated
// group directly beneath a LIST group, whose elements stand for n's single
// field.
func (c *converter) value(n *schema.Node, listChild bool, v interface{}) (pqnest.Value, error) {
	if v == nil {
		return pqnest.Null, nil
	}
	if n.Repetition != schema.Repeated {
		return c.element(n, listChild, v)
	}
	arr, ok := v.([]interface{})
	if !ok {
		return pqnest.Null, c.mismatch("expected array, found %s", jsonKind(v))
	}
	elems := make([]pqnest.Value, 0, len(arr))
	for _, e := range arr {
		val, err := c.element(n, listChild, e)
		if err != nil {
			return pqnest.Null, err
		}
		elems = append(elems, val)
	}
	return pqnest.NewList(elems), nil
}

func (c *converter) element(n *schema.Node, listChild bool, v interface{}) (pqnest.Value, error) {
	switch {
	case n.IsLeaf():
		return c.leaf(n, v)
	case n.List && len(n.Fields) == 1:
		return c.value(n.Fields[0], true, v)
	case listChild && n.Repetition == schema.Repeated && len(n.Fields) == 1:
		return c.value(n.Fields[0], false, v)
	}
	return c.group(n.Fields, v)
}

func (c *converter) leaf(n *schema.Node, v interface{}) (pqnest.Value, error) {
	if v == nil {
		return pqnest.Null, nil
	}
	switch n.Type {
	case schema.Boolean:
		if b, ok := v.(bool); ok {
			return pqnest.NewBool(b), nil
		}
	case schema.Int32, schema.Int64:
		if num, ok := v.(json.Number); ok {
			bits := 64
			if n.Type == schema.Int32 {
				bits = 32
			}
			i, err := strconv.ParseInt(num.String(), 10, bits)
			if err != nil {
				return pqnest.Null, c.mismatch("%s", err)
			}
			if bits == 32 {
				return pqnest.NewInt32(int32(i)), nil
			}
			return pqnest.NewInt64(i), nil
		}
	case schema.Float, schema.Double:
		if num, ok := v.(json.Number); ok {
			f, err := num.Float64()
			if err != nil {
				return pqnest.Null, c.mismatch("%s", err)
			}
			if n.Type == schema.Float {
				return pqnest.NewFloat32(float32(f)), nil
			}
			return pqnest.NewFloat64(f), nil
		}
	case schema.String:
		if s, ok := v.(string); ok {
			return pqnest.NewString(s), nil
		}
	case schema.Bytes, schema.FixedBytes:
		if s, ok := v.(string); ok {
			return pqnest.NewBytes([]byte(s)), nil
		}
	case schema.Date, schema.TimestampMillis, schema.TimestampMicros, schema.TimestampNanos, schema.Int96:
		return c.timestamp(n.Type, v)
	}
	return pqnest.Null, c.mismatch("cannot convert %s to %s", jsonKind(v), n.Type)
}

// timestamp accepts a date/time string in any format dateparse recognizes or
// an integer count of the leaf's unit since the Unix epoch.
func (c *converter) timestamp(typ schema.Type, v interface{}) (pqnest.Value, error) {
	switch v := v.(type) {
	case string:
		t, err := dateparse.ParseAny(v)
		if err != nil {
			return pqnest.Null, c.mismatch("%s", err)
		}
		return pqnest.NewTimestamp(t), nil
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return pqnest.Null, c.mismatch("%s", err)
		}
		scale := unit(typ)
		if i > math.MaxInt64/scale || i < math.MinInt64/scale {
			return pqnest.Null, c.mismatch("%d is outside the range of nanosecond timestamps", i)
		}
		return pqnest.NewTimestampNanos(i * scale), nil
	}
	return pqnest.Null, c.mismatch("cannot convert %s to %s", jsonKind(v), typ)
}

func unit(typ schema.Type) int64 {
	switch typ {
	case schema.Date:
		return int64(24 * time.Hour)
	case schema.TimestampMillis:
		return int64(time.Millisecond)
	case schema.TimestampMicros:
		return int64(time.Microsecond)
	}
	return 1
}

func indexNode(nodes []*schema.Node, name string) int {
	for k, n := range nodes {
		if n.Name == name {
			return k
		}
	}
	return -1
}

func jsonKind(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	case string:
		return "string"
	case []interface{}:
		return "array"
	case map[string]interface{}:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}
