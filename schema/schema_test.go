package schema_test

import (
	"testing"

	pqschema "github.com/apache/arrow/go/v11/parquet/schema"
	"github.com/brimdata/pqnest/pqe"
	"github.com/brimdata/pqnest/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// nestedSchema has a top-level optional field and a struct holding a
// repeated group of structs, each with a string and a list of lists.
func nestedSchema() *schema.Schema {
	return schema.New(
		schema.Leaf("id", schema.Optional, schema.Int64),
		schema.NewGroup("doc", schema.Required,
			schema.NewGroup("items", schema.Repeated,
				schema.Leaf("name", schema.Optional, schema.String),
				schema.NewGroup("matrix", schema.Repeated,
					schema.Leaf("cell", schema.Repeated, schema.Int64),
				),
			),
		),
		schema.NewList("tags", schema.Optional, schema.Leaf("element", schema.Optional, schema.String)),
	)
}

func TestPaths(t *testing.T) {
	paths, err := nestedSchema().Paths()
	require.NoError(t, err)
	require.Len(t, paths, 4)

	cases := []struct {
		path   string
		maxRep int16
		maxDef int16
	}{
		{"id", 0, 1},
		{"doc.items.name", 1, 2},
		{"doc.items.matrix.cell", 3, 3},
		{"tags.list.element", 1, 3},
	}
	for k, c := range cases {
		t.Run(c.path, func(t *testing.T) {
			p := paths[k]
			assert.Equal(t, c.path, p.String())
			assert.Equal(t, c.maxRep, p.MaxRepetitionLevel())
			assert.Equal(t, c.maxDef, p.MaxDefinitionLevel())
		})
	}
	tags := paths[3]
	assert.True(t, tags.Nodes[0].Transparent)
	assert.True(t, tags.Nodes[1].Transparent)
	assert.False(t, tags.Nodes[2].Transparent)
	matrix := paths[2]
	for _, n := range matrix.Nodes {
		assert.False(t, n.Transparent, n.Name)
	}
}

func TestLevelCodec(t *testing.T) {
	paths, err := nestedSchema().Paths()
	require.NoError(t, err)
	cell := paths[2]

	for def, want := range []int{1, 2, 3, -1} {
		i, err := cell.AbsentNode(int16(def))
		require.NoError(t, err)
		assert.Equal(t, want, i, "def %d", def)
	}
	_, err = cell.AbsentNode(4)
	assert.True(t, pqe.IsKind(err, pqe.Invalid))
	_, err = cell.AbsentNode(-1)
	assert.True(t, pqe.IsKind(err, pqe.Invalid))

	for rep, want := range map[int16]int{1: 1, 2: 2, 3: 3} {
		i, err := cell.RepeatedNode(rep)
		require.NoError(t, err)
		assert.Equal(t, want, i)
	}
	_, err = cell.RepeatedNode(0)
	assert.Error(t, err)

	assert.Equal(t, int16(0), cell.DefinitionLevel(0))
	assert.Equal(t, int16(1), cell.DefinitionLevel(1))
	assert.Equal(t, int16(3), cell.RepetitionLevel(3))
	assert.Equal(t, int16(2), cell.ParentDefinitionLevel(3))
	assert.Equal(t, int16(0), cell.ParentDefinitionLevel(0))
}

func TestNewPathInvalid(t *testing.T) {
	_, err := schema.NewPath([]schema.PathNode{{Name: "a", Repetition: schema.Repetition(7)}}, schema.Int32)
	assert.True(t, pqe.IsKind(err, pqe.Invalid))
	_, err = schema.NewPath(nil, schema.Int32)
	assert.True(t, pqe.IsKind(err, pqe.Invalid))
}

func TestValidate(t *testing.T) {
	cases := map[string]*schema.Schema{
		"empty":       schema.New(),
		"empty group": schema.New(schema.NewGroup("g", schema.Required)),
		"duplicate": schema.New(
			schema.Leaf("a", schema.Required, schema.Int32),
			schema.Leaf("a", schema.Required, schema.Int64),
		),
		"fixed without length": schema.New(schema.Leaf("f", schema.Required, schema.FixedBytes)),
	}
	for name, s := range cases {
		t.Run(name, func(t *testing.T) {
			assert.True(t, pqe.IsKind(s.Validate(), pqe.Invalid))
		})
	}
}

func TestArrowRoundTrip(t *testing.T) {
	s := nestedSchema()
	root, err := s.Arrow()
	require.NoError(t, err)
	sc := pqschema.NewSchema(root)

	back, err := schema.FromArrow(sc)
	require.NoError(t, err)
	assert.Equal(t, s, back)

	paths, err := s.Paths()
	require.NoError(t, err)
	require.Equal(t, len(paths), sc.NumColumns())
	for k := range paths {
		p, err := schema.FromColumn(sc.Column(k))
		require.NoError(t, err)
		assert.Equal(t, paths[k], p)
	}
}

func TestParseDefinition(t *testing.T) {
	const def = `message m {
  required int64 id;
  optional binary name (STRING);
  optional int64 at (TIMESTAMP(MILLIS, true));
  optional group tags (LIST) {
    repeated group list {
      optional int32 element;
    }
  }
}`
	s, err := schema.ParseDefinition(def)
	require.NoError(t, err)
	expected := schema.New(
		schema.Leaf("id", schema.Required, schema.Int64),
		schema.Leaf("name", schema.Optional, schema.String),
		schema.Leaf("at", schema.Optional, schema.TimestampMillis),
		schema.NewList("tags", schema.Optional, schema.Leaf("element", schema.Optional, schema.Int32)),
	)
	assert.Equal(t, expected, s)

	again, err := schema.ParseDefinition(s.String())
	require.NoError(t, err)
	assert.Equal(t, s, again)
}

func TestParseDefinitionError(t *testing.T) {
	_, err := schema.ParseDefinition("message m { required int64 }")
	assert.True(t, pqe.IsKind(err, pqe.Invalid))
}

func TestLookup(t *testing.T) {
	s := nestedSchema()
	n, ok := s.Lookup("doc.items.matrix")
	require.True(t, ok)
	assert.Equal(t, schema.Repeated, n.Repetition)
	_, ok = s.Lookup("doc.nope")
	assert.False(t, ok)
}
