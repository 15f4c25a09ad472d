package nested_test

import (
	"testing"

	"github.com/brimdata/pqnest"
	"github.com/brimdata/pqnest/nested"
	"github.com/brimdata/pqnest/pqe"
	"github.com/brimdata/pqnest/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paths(t *testing.T, fields ...*schema.Node) []*schema.Path {
	paths, err := schema.New(fields...).Paths()
	require.NoError(t, err)
	return paths
}

func list(vals ...pqnest.Value) pqnest.Value {
	return pqnest.NewList(vals)
}

func record(fields ...pqnest.Field) pqnest.Value {
	return pqnest.NewStruct(fields...)
}

func field(name string, val pqnest.Value) pqnest.Field {
	return pqnest.NewField(name, val)
}

func i64(v int64) pqnest.Value {
	return pqnest.NewInt64(v)
}

func assertValues(t *testing.T, expected, actual []pqnest.Value) {
	t.Helper()
	require.Len(t, actual, len(expected))
	for k := range expected {
		assert.True(t, pqnest.Equal(expected[k], actual[k]), "record %d: expected %s, got %s", k, expected[k], actual[k])
	}
}

func flatten(t *testing.T, path *schema.Path, vals []pqnest.Value) *nested.Batch {
	f := nested.NewFlattener(path)
	var b nested.Batch
	for _, val := range vals {
		require.NoError(t, f.Flatten(val, &b))
	}
	return &b
}

func reconstruct(t *testing.T, path *schema.Path, b *nested.Batch) []pqnest.Value {
	r := nested.NewReconstructor(path, b.Reader(path.MaxDefinitionLevel()))
	vals, err := r.ReadAll(-1)
	require.NoError(t, err)
	return vals
}

type sliceReader []nested.Triple

func (s *sliceReader) NextTriple() (*nested.Triple, error) {
	if len(*s) == 0 {
		return nil, nil
	}
	t := (*s)[0]
	*s = (*s)[1:]
	return &t, nil
}

func TestOptionalList(t *testing.T) {
	path := paths(t, schema.NewList("tags", schema.Optional, schema.Leaf("element", schema.Optional, schema.Int64)))[0]
	vals := []pqnest.Value{
		pqnest.Null,
		list(),
		list(i64(1), pqnest.Null, i64(2)),
		list(pqnest.Null),
	}
	b := flatten(t, path, vals)
	assert.Equal(t, []int16{0, 0, 0, 1, 1, 0}, b.Reps)
	assert.Equal(t, []int16{0, 1, 3, 2, 3, 2}, b.Defs)
	assertValues(t, []pqnest.Value{i64(1), i64(2)}, b.Values)
	assertValues(t, vals, reconstruct(t, path, b))
}

func TestNestedRepeatedStructs(t *testing.T) {
	path := paths(t, schema.NewGroup("doc", schema.Required,
		schema.NewGroup("items", schema.Repeated,
			schema.NewGroup("matrix", schema.Repeated,
				schema.Leaf("cell", schema.Repeated, schema.Int64)))))[0]
	vals := []pqnest.Value{
		record(field("items", list(
			record(field("matrix", list(
				record(field("cell", list(i64(1), i64(2)))),
				record(field("cell", list())),
			))),
			record(field("matrix", list())),
		))),
		record(field("items", list())),
	}
	b := flatten(t, path, vals)
	assert.Equal(t, []int16{0, 3, 2, 1, 0}, b.Reps)
	assert.Equal(t, []int16{3, 3, 2, 1, 0}, b.Defs)
	assertValues(t, vals, reconstruct(t, path, b))
}

func TestNullFieldVersusNullContainer(t *testing.T) {
	path := paths(t, schema.NewGroup("s", schema.Optional, schema.Leaf("x", schema.Optional, schema.Int32)))[0]
	vals := []pqnest.Value{
		pqnest.Null,
		record(field("x", pqnest.Null)),
		record(field("x", pqnest.NewInt32(5))),
	}
	b := flatten(t, path, vals)
	assert.Equal(t, []int16{0, 1, 2}, b.Defs)
	assertValues(t, vals, reconstruct(t, path, b))
}

func TestRequiredScalars(t *testing.T) {
	path := paths(t, schema.Leaf("n", schema.Required, schema.Int32))[0]
	var vals []pqnest.Value
	for k := 0; k < 100; k++ {
		vals = append(vals, pqnest.NewInt32(int32(k)))
	}
	b := flatten(t, path, vals)
	assert.Len(t, b.Values, 100)
	assertValues(t, vals, reconstruct(t, path, b))
}

func TestMissingFieldIsAbsent(t *testing.T) {
	path := paths(t, schema.NewGroup("s", schema.Required,
		schema.Leaf("a", schema.Optional, schema.String),
		schema.Leaf("b", schema.Optional, schema.String)))[1]
	b := flatten(t, path, []pqnest.Value{record(field("a", pqnest.NewString("x")))})
	assert.Equal(t, []int16{0}, b.Defs)
	assert.Empty(t, b.Values)
	assertValues(t, []pqnest.Value{record(field("b", pqnest.Null))}, reconstruct(t, path, b))
}

func TestFlattenMismatch(t *testing.T) {
	optList := paths(t, schema.NewList("l", schema.Optional, schema.Leaf("element", schema.Optional, schema.Int64)))[0]
	required := paths(t, schema.Leaf("id", schema.Required, schema.Int64))[0]
	group := paths(t, schema.NewGroup("g", schema.Optional, schema.Leaf("x", schema.Required, schema.Int64)))[0]
	fixed := paths(t, &schema.Node{Name: "f", Repetition: schema.Required, Type: schema.FixedBytes, Length: 4})[0]
	cases := []struct {
		name string
		path *schema.Path
		val  pqnest.Value
	}{
		{"wrong leaf kind in list", optList, list(i64(1), pqnest.NewString("x"))},
		{"scalar for list", optList, i64(1)},
		{"null required", required, pqnest.Null},
		{"wrong leaf kind", required, pqnest.NewInt32(1)},
		{"scalar for struct", group, i64(1)},
		{"missing required field", group, record()},
		{"fixed length", fixed, pqnest.NewBytes([]byte{1, 2})},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			f := nested.NewFlattener(c.path)
			var b nested.Batch
			if c.path.Leaf == schema.Int64 && c.path.MaxRepetitionLevel() > 0 {
				require.NoError(t, f.Flatten(list(i64(7)), &b))
			}
			reps, defs, vals := len(b.Reps), len(b.Defs), len(b.Values)
			err := f.Flatten(c.val, &b)
			assert.True(t, pqe.IsKind(err, pqe.SchemaMismatch), "%v", err)
			assert.Len(t, b.Reps, reps)
			assert.Len(t, b.Defs, defs)
			assert.Len(t, b.Values, vals)
		})
	}
}

func TestReconstructFormatErrors(t *testing.T) {
	path := paths(t, schema.NewList("l", schema.Optional, schema.Leaf("element", schema.Optional, schema.Int64)))[0]
	cases := []struct {
		name    string
		triples []nested.Triple
	}{
		{"rep too large", []nested.Triple{{Rep: 0, Def: 1}, {Rep: 2, Def: 1}}},
		{"def too large", []nested.Triple{{Rep: 0, Def: 4}}},
		{"negative def", []nested.Triple{{Rep: 0, Def: -1}}},
		{"continuation before record", []nested.Triple{{Rep: 1, Def: 2}}},
		{"value below max def", []nested.Triple{{Rep: 0, Def: 2, Value: i64(1)}}},
		{"value missing at max def", []nested.Triple{{Rep: 0, Def: 3}}},
		{"continues empty list", []nested.Triple{{Rep: 0, Def: 1}, {Rep: 1, Def: 3, Value: i64(1)}}},
		{"continuation without list", []nested.Triple{{Rep: 0, Def: 3, Value: i64(1)}, {Rep: 1, Def: 1}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			triples := sliceReader(c.triples)
			r := nested.NewReconstructor(path, &triples)
			_, err := r.ReadAll(-1)
			require.Error(t, err)
			assert.True(t, pqe.IsKind(err, pqe.Format), "%v", err)
			_, again := r.Read()
			assert.Equal(t, err, again)
		})
	}
}

func TestReconstructLazy(t *testing.T) {
	path := paths(t, schema.Leaf("n", schema.Optional, schema.Int64))[0]
	triples := sliceReader{{Def: 1, Value: i64(1)}, {Def: 0}, {Def: 1, Value: i64(3)}}
	r := nested.NewReconstructor(path, &triples)
	first, err := r.ReadAll(2)
	require.NoError(t, err)
	assertValues(t, []pqnest.Value{i64(1), pqnest.Null}, first)
	rest, err := r.ReadAll(-1)
	require.NoError(t, err)
	assertValues(t, []pqnest.Value{i64(3)}, rest)
	val, err := r.Read()
	require.NoError(t, err)
	assert.Nil(t, val)
}

func TestMergeColumns(t *testing.T) {
	ps := paths(t,
		schema.NewGroup("doc", schema.Required,
			schema.NewGroup("items", schema.Repeated,
				schema.Leaf("name", schema.Optional, schema.String),
				schema.NewGroup("matrix", schema.Repeated,
					schema.Leaf("cell", schema.Repeated, schema.Int64)))))
	doc := record(field("items", list(
		record(
			field("name", pqnest.NewString("a")),
			field("matrix", list(record(field("cell", list(i64(1)))))),
		),
		record(
			field("name", pqnest.Null),
			field("matrix", list()),
		),
	)))
	var merged pqnest.Value
	for k, path := range ps {
		vals := reconstruct(t, path, flatten(t, path, []pqnest.Value{doc}))
		require.Len(t, vals, 1)
		if k == 0 {
			merged = vals[0]
			continue
		}
		var err error
		merged, err = nested.Merge(merged, vals[0])
		require.NoError(t, err)
	}
	assert.True(t, pqnest.Equal(doc, merged), "expected %s, got %s", doc, merged)

	_, err := nested.Merge(list(i64(1)), list())
	assert.True(t, pqe.IsKind(err, pqe.Format))
	_, err = nested.Merge(pqnest.Null, record())
	assert.True(t, pqe.IsKind(err, pqe.Format))
}

func TestMarkerLevels(t *testing.T) {
	path := paths(t, schema.NewList("a", schema.Optional,
		schema.NewGroup("element", schema.Optional,
			schema.NewList("b", schema.Required, schema.Leaf("element", schema.Optional, schema.Int64)))))[0]
	vals := []pqnest.Value{
		pqnest.Null,
		list(),
		list(pqnest.Null),
		list(record(field("b", list()))),
		list(record(field("b", list(pqnest.Null, i64(1))))),
	}
	b := flatten(t, path, vals)
	assert.Equal(t, []int16{0, 1, 2, 3, 4, 5}, b.Defs)
	for k, def := range b.Defs {
		if def == path.MaxDefinitionLevel() {
			continue
		}
		// Each marker sits at the level where the absent node's parent is present.
		i, err := path.AbsentNode(def)
		require.NoError(t, err)
		assert.Equal(t, def, path.ParentDefinitionLevel(i), "level %d", k)
	}
	assertValues(t, vals, reconstruct(t, path, b))
}
