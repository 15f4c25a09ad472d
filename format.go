package pqnest

import (
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// String implements fmt.Stringer.  The format is compact and intended for
// logs, debugging, and command-line output: null, true, 1, 1.5, "s", 0x0a0b,
// 2021-01-01T00:00:00Z, [1,2], {a:1,b:[null]}.
func (v Value) String() string {
	var b strings.Builder
	v.format(&b)
	return b.String()
}

func (v Value) format(b *strings.Builder) {
	switch v.kind {
	case KindNull:
		b.WriteString("null")
	case KindBool:
		b.WriteString(strconv.FormatBool(v.Bool()))
	case KindInt32:
		b.WriteString(strconv.FormatInt(int64(v.Int32()), 10))
	case KindInt64:
		b.WriteString(strconv.FormatInt(v.Int64(), 10))
	case KindFloat32:
		b.WriteString(strconv.FormatFloat(float64(v.Float32()), 'g', -1, 32))
	case KindFloat64:
		b.WriteString(strconv.FormatFloat(v.Float64(), 'g', -1, 64))
	case KindBytes:
		b.WriteString("0x")
		b.WriteString(hex.EncodeToString(v.buf))
	case KindString:
		b.WriteString(strconv.Quote(string(v.buf)))
	case KindTimestamp:
		b.WriteString(v.Time().Format(time.RFC3339Nano))
	case KindList:
		b.WriteByte('[')
		for k, elem := range v.c.elems {
			if k > 0 {
				b.WriteByte(',')
			}
			elem.format(b)
		}
		b.WriteByte(']')
	case KindStruct:
		b.WriteByte('{')
		for k, elem := range v.c.elems {
			if k > 0 {
				b.WriteByte(',')
			}
			b.WriteString(formatName(v.c.names[k]))
			b.WriteByte(':')
			elem.format(b)
		}
		b.WriteByte('}')
	default:
		b.WriteString(v.kind.String())
	}
}

func formatName(name string) string {
	if name == "" {
		return `""`
	}
	for _, r := range name {
		if !(r == '_' || r == '$' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return strconv.Quote(name)
		}
	}
	return name
}
