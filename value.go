package pqnest

import (
	"bytes"
	"fmt"
	"math"
	"time"

	"golang.org/x/exp/slices"
)

// Kind is the tag of a Value's variant.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
	KindBytes
	KindString
	KindTimestamp
	KindList
	KindStruct
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindBytes:
		return "bytes"
	case KindString:
		return "string"
	case KindTimestamp:
		return "timestamp"
	case KindList:
		return "list"
	case KindStruct:
		return "struct"
	}
	return fmt.Sprintf("kind(%d)", k)
}

// IsScalar reports whether k is a leaf kind, i.e., neither null nor a container.
func (k Kind) IsScalar() bool {
	return k != KindNull && k != KindList && k != KindStruct
}

// Value is a nested logical value: a scalar, null, an ordered list of values,
// or a struct with ordered named fields.  Values are immutable once built and
// are compared with Equal.  The zero Value is Null.
type Value struct {
	kind Kind
	num  uint64
	buf  []byte
	c    *composite
}

type composite struct {
	elems []Value
	names []string
}

// Field is a named struct member.
type Field struct {
	Name  string
	Value Value
}

func NewField(name string, val Value) Field {
	return Field{name, val}
}

var Null = Value{}

func NewBool(b bool) Value {
	var n uint64
	if b {
		n = 1
	}
	return Value{kind: KindBool, num: n}
}

func NewInt32(v int32) Value {
	return Value{kind: KindInt32, num: uint64(int64(v))}
}

func NewInt64(v int64) Value {
	return Value{kind: KindInt64, num: uint64(v)}
}

func NewFloat32(f float32) Value {
	return Value{kind: KindFloat32, num: uint64(math.Float32bits(f))}
}

func NewFloat64(f float64) Value {
	return Value{kind: KindFloat64, num: math.Float64bits(f)}
}

// NewBytes returns a bytes Value that retains b.
func NewBytes(b []byte) Value {
	if b == nil {
		b = []byte{}
	}
	return Value{kind: KindBytes, buf: b}
}

func NewString(s string) Value {
	return Value{kind: KindString, buf: []byte(s)}
}

func NewTimestamp(t time.Time) Value {
	return NewTimestampNanos(t.UnixNano())
}

// NewTimestampNanos returns a timestamp Value for ns nanoseconds since the
// Unix epoch (UTC).
func NewTimestampNanos(ns int64) Value {
	return Value{kind: KindTimestamp, num: uint64(ns)}
}

// NewList returns a list Value holding elems.  A nil or empty elems is an
// empty list, which is distinct from Null.
func NewList(elems []Value) Value {
	if elems == nil {
		elems = []Value{}
	}
	return Value{kind: KindList, c: &composite{elems: elems}}
}

func NewStruct(fields ...Field) Value {
	c := &composite{
		elems: make([]Value, 0, len(fields)),
		names: make([]string, 0, len(fields)),
	}
	for _, f := range fields {
		c.names = append(c.names, f.Name)
		c.elems = append(c.elems, f.Value)
	}
	return Value{kind: KindStruct, c: c}
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) IsNull() bool {
	return v.kind == KindNull
}

func (v Value) mustBe(k Kind) {
	if v.kind != k {
		panic(fmt.Sprintf("pqnest: %s accessor called on %s value", k, v.kind))
	}
}

func (v Value) Bool() bool {
	v.mustBe(KindBool)
	return v.num != 0
}

func (v Value) Int32() int32 {
	v.mustBe(KindInt32)
	return int32(int64(v.num))
}

func (v Value) Int64() int64 {
	v.mustBe(KindInt64)
	return int64(v.num)
}

func (v Value) Float32() float32 {
	v.mustBe(KindFloat32)
	return math.Float32frombits(uint32(v.num))
}

func (v Value) Float64() float64 {
	v.mustBe(KindFloat64)
	return math.Float64frombits(v.num)
}

// Bytes returns the content of a bytes or string Value.  The result must not
// be modified.
func (v Value) Bytes() []byte {
	if v.kind != KindString {
		v.mustBe(KindBytes)
	}
	return v.buf
}

// Str returns the content of a string Value.
func (v Value) Str() string {
	v.mustBe(KindString)
	return string(v.buf)
}

func (v Value) TimestampNanos() int64 {
	v.mustBe(KindTimestamp)
	return int64(v.num)
}

func (v Value) Time() time.Time {
	return time.Unix(0, v.TimestampNanos()).UTC()
}

// Len returns the number of elements of a list or fields of a struct.
func (v Value) Len() int {
	if v.c == nil {
		return 0
	}
	return len(v.c.elems)
}

// Elems returns the elements of a list Value.  The result must not be modified.
func (v Value) Elems() []Value {
	v.mustBe(KindList)
	return v.c.elems
}

// Index returns the i'th element of a list or the i'th field value of a struct.
func (v Value) Index(i int) Value {
	if v.kind != KindStruct {
		v.mustBe(KindList)
	}
	return v.c.elems[i]
}

func (v Value) Fields() []Field {
	v.mustBe(KindStruct)
	fields := make([]Field, len(v.c.elems))
	for k := range v.c.elems {
		fields[k] = Field{v.c.names[k], v.c.elems[k]}
	}
	return fields
}

// FieldNames returns the field names of a struct Value in order.
func (v Value) FieldNames() []string {
	v.mustBe(KindStruct)
	return slices.Clone(v.c.names)
}

// FieldByName looks up a struct field.  ok is false if v is not a struct or
// has no such field.
func (v Value) FieldByName(name string) (Value, bool) {
	if v.kind != KindStruct {
		return Null, false
	}
	k := slices.Index(v.c.names, name)
	if k < 0 {
		return Null, false
	}
	return v.c.elems[k], true
}

// Equal reports whether a and b are the same kind with deeply equal contents.
// Struct fields are compared in order.  Floats compare by bit pattern.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBytes, KindString:
		return bytes.Equal(a.buf, b.buf)
	case KindList:
		return slices.EqualFunc(a.c.elems, b.c.elems, Equal)
	case KindStruct:
		return slices.Equal(a.c.names, b.c.names) && slices.EqualFunc(a.c.elems, b.c.elems, Equal)
	}
	return a.num == b.num
}
