package nested

import (
	"github.com/brimdata/pqnest"
	"github.com/brimdata/pqnest/pqe"
)

// Merge combines the values that two leaf columns of the same record produce
// for a shared ancestor.  Struct fields are unioned by name (merging fields
// present in both), lists are merged element by element, and Null merges
// only with Null since sibling columns share the presence of their common
// ancestors.
func Merge(a, b pqnest.Value) (pqnest.Value, error) {
	switch {
	case a.IsNull() && b.IsNull():
		return pqnest.Null, nil
	case a.Kind() == pqnest.KindStruct && b.Kind() == pqnest.KindStruct:
		fields := a.Fields()
		for _, f := range b.Fields() {
			k := indexField(fields, f.Name)
			if k < 0 {
				fields = append(fields, f)
				continue
			}
			merged, err := Merge(fields[k].Value, f.Value)
			if err != nil {
				return pqnest.Null, err
			}
			fields[k].Value = merged
		}
		return pqnest.NewStruct(fields...), nil
	case a.Kind() == pqnest.KindList && b.Kind() == pqnest.KindList:
		ae, be := a.Elems(), b.Elems()
		if len(ae) != len(be) {
			return pqnest.Null, pqe.E(pqe.Format, "sibling columns disagree on list length (%d and %d)", len(ae), len(be))
		}
		elems := make([]pqnest.Value, len(ae))
		for k := range ae {
			merged, err := Merge(ae[k], be[k])
			if err != nil {
				return pqnest.Null, err
			}
			elems[k] = merged
		}
		return pqnest.NewList(elems), nil
	}
	return pqnest.Null, pqe.E(pqe.Format, "sibling columns disagree on shape (%s and %s)", a.Kind(), b.Kind())
}

func indexField(fields []pqnest.Field, name string) int {
	for k, f := range fields {
		if f.Name == name {
			return k
		}
	}
	return -1
}
