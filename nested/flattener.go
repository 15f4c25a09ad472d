package nested

import (
	"strings"

	"github.com/brimdata/pqnest"
	"github.com/brimdata/pqnest/pqe"
	"github.com/brimdata/pqnest/schema"
)

// Flattener produces the triples of one column from nested values shaped
// like the column's path.  It is the inverse of Reconstructor.
type Flattener struct {
	path *schema.Path
	leaf int
	kind pqnest.Kind
}

func NewFlattener(path *schema.Path) *Flattener {
	return &Flattener{
		path: path,
		leaf: path.Len() - 1,
		kind: LeafKind(path.Leaf),
	}
}

// LeafKind returns the kind of the values held by a leaf of type t.
func LeafKind(t schema.Type) pqnest.Kind {
	switch t {
	case schema.Boolean:
		return pqnest.KindBool
	case schema.Int32:
		return pqnest.KindInt32
	case schema.Int64:
		return pqnest.KindInt64
	case schema.Float:
		return pqnest.KindFloat32
	case schema.Double:
		return pqnest.KindFloat64
	case schema.Bytes, schema.FixedBytes:
		return pqnest.KindBytes
	case schema.String:
		return pqnest.KindString
	case schema.Int96, schema.Date, schema.TimestampMillis, schema.TimestampMicros, schema.TimestampNanos:
		return pqnest.KindTimestamp
	}
	return pqnest.KindNull
}

// Flatten appends the triples of val, the value of one record, to b.  If val
// does not fit the path, b is left as it was and a SchemaMismatch error is
// returned.
func (f *Flattener) Flatten(val pqnest.Value, b *Batch) error {
	levels, values := len(b.Defs), len(b.Values)
	if err := f.value(b, 0, val, 0, 0); err != nil {
		b.truncate(levels, values)
		return err
	}
	return nil
}

// value emits the value of node i.  rep is the repetition level of the first
// triple emitted and def is the definition level of node i's parent.
func (f *Flattener) value(b *Batch, i int, val pqnest.Value, rep, def int16) error {
	n := f.path.Nodes[i]
	switch n.Repetition {
	case schema.Optional:
		if val.IsNull() {
			b.Append(Triple{Rep: rep, Def: f.path.ParentDefinitionLevel(i)})
			return nil
		}
		return f.element(b, i, val, rep, def+1)
	case schema.Repeated:
		if val.Kind() != pqnest.KindList {
			return f.mismatch(i, "expected list, found %s", val.Kind())
		}
		elems := val.Elems()
		if len(elems) == 0 {
			b.Append(Triple{Rep: rep, Def: f.path.ParentDefinitionLevel(i)})
			return nil
		}
		for k, elem := range elems {
			if k > 0 {
				rep = f.path.RepetitionLevel(i)
			}
			if err := f.element(b, i, elem, rep, def+1); err != nil {
				return err
			}
		}
		return nil
	}
	if val.IsNull() {
		return f.mismatch(i, "required field is null")
	}
	return f.element(b, i, val, rep, def)
}

// element emits an element of node i, with def the definition level of node
// i being present.
func (f *Flattener) element(b *Batch, i int, val pqnest.Value, rep, def int16) error {
	if i == f.leaf {
		if val.Kind() != f.kind {
			return f.mismatch(i, "expected %s, found %s", f.kind, val.Kind())
		}
		if f.path.Leaf == schema.FixedBytes && len(val.Bytes()) != f.path.Length {
			return f.mismatch(i, "expected %d bytes, found %d", f.path.Length, len(val.Bytes()))
		}
		b.Append(Triple{Rep: rep, Def: def, Value: val})
		return nil
	}
	if f.path.Nodes[i].Transparent {
		return f.value(b, i+1, val, rep, def)
	}
	if val.Kind() != pqnest.KindStruct {
		return f.mismatch(i, "expected struct, found %s", val.Kind())
	}
	// A field missing from the struct is absent.
	child, _ := val.FieldByName(f.path.Nodes[i+1].Name)
	return f.value(b, i+1, child, rep, def)
}

func (f *Flattener) mismatch(i int, format string, args ...interface{}) error {
	names := make([]string, 0, i+1)
	for _, n := range f.path.Nodes[:i+1] {
		names = append(names, n.Name)
	}
	eargs := []interface{}{pqe.SchemaMismatch, "%s: at %s: " + format, f.path, strings.Join(names, ".")}
	return pqe.E(append(eargs, args...)...)
}
