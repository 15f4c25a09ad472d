package schema

import (
	"github.com/apache/arrow/go/v11/parquet"
	pqschema "github.com/apache/arrow/go/v11/parquet/schema"
	"github.com/brimdata/pqnest/pqe"
)

// FromArrow converts the schema of a Parquet file into a Schema tree.
func FromArrow(sc *pqschema.Schema) (*Schema, error) {
	root := sc.Root()
	s := &Schema{}
	for k := 0; k < root.NumFields(); k++ {
		n, err := fromArrowNode(root.Field(k))
		if err != nil {
			return nil, err
		}
		s.Fields = append(s.Fields, n)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func fromArrowNode(n pqschema.Node) (*Node, error) {
	rep, err := fromArrowRepetition(n)
	if err != nil {
		return nil, err
	}
	if g, ok := n.(*pqschema.GroupNode); ok {
		node := &Node{
			Name:       g.Name(),
			Repetition: rep,
			List:       isListGroup(g),
		}
		for k := 0; k < g.NumFields(); k++ {
			f, err := fromArrowNode(g.Field(k))
			if err != nil {
				return nil, err
			}
			node.Fields = append(node.Fields, f)
		}
		return node, nil
	}
	p, ok := n.(*pqschema.PrimitiveNode)
	if !ok {
		return nil, pqe.E(pqe.Invalid, "%s: unsupported schema node %T", n.Name(), n)
	}
	typ, err := fromArrowType(p)
	if err != nil {
		return nil, err
	}
	node := &Node{
		Name:       p.Name(),
		Repetition: rep,
		Type:       typ,
	}
	if typ == FixedBytes {
		node.Length = p.TypeLength()
	}
	return node, nil
}

func fromArrowRepetition(n pqschema.Node) (Repetition, error) {
	switch n.RepetitionType() {
	case parquet.Repetitions.Required:
		return Required, nil
	case parquet.Repetitions.Optional:
		return Optional, nil
	case parquet.Repetitions.Repeated:
		return Repeated, nil
	}
	return 0, pqe.E(pqe.Invalid, "%s: unrecognized repetition %s", n.Name(), n.RepetitionType())
}

func isListGroup(g *pqschema.GroupNode) bool {
	if _, ok := g.LogicalType().(pqschema.ListLogicalType); ok {
		return true
	}
	return g.ConvertedType() == pqschema.ConvertedTypes.List
}

func fromArrowType(p *pqschema.PrimitiveNode) (Type, error) {
	lt := p.LogicalType()
	ct := p.ConvertedType()
	switch p.PhysicalType() {
	case parquet.Types.Boolean:
		return Boolean, nil
	case parquet.Types.Int32:
		if _, ok := lt.(pqschema.DateLogicalType); ok || ct == pqschema.ConvertedTypes.Date {
			return Date, nil
		}
		return Int32, nil
	case parquet.Types.Int64:
		if ts, ok := lt.(*pqschema.TimestampLogicalType); ok {
			switch ts.TimeUnit() {
			case pqschema.TimeUnitMillis:
				return TimestampMillis, nil
			case pqschema.TimeUnitMicros:
				return TimestampMicros, nil
			case pqschema.TimeUnitNanos:
				return TimestampNanos, nil
			}
		}
		switch ct {
		case pqschema.ConvertedTypes.TimestampMillis:
			return TimestampMillis, nil
		case pqschema.ConvertedTypes.TimestampMicros:
			return TimestampMicros, nil
		}
		return Int64, nil
	case parquet.Types.Int96:
		return Int96, nil
	case parquet.Types.Float:
		return Float, nil
	case parquet.Types.Double:
		return Double, nil
	case parquet.Types.ByteArray:
		if _, ok := lt.(pqschema.StringLogicalType); ok || ct == pqschema.ConvertedTypes.UTF8 {
			return String, nil
		}
		return Bytes, nil
	case parquet.Types.FixedLenByteArray:
		return FixedBytes, nil
	}
	return 0, pqe.E(pqe.Invalid, "%s: unsupported physical type %s", p.Name(), p.PhysicalType())
}

// Arrow converts s into the root group node used to create a Parquet file.
func (s *Schema) Arrow() (*pqschema.GroupNode, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	fields, err := arrowFields(s.Fields)
	if err != nil {
		return nil, err
	}
	return pqschema.NewGroupNode("schema", parquet.Repetitions.Required, fields, -1)
}

func arrowFields(nodes []*Node) (pqschema.FieldList, error) {
	fields := make(pqschema.FieldList, 0, len(nodes))
	for _, n := range nodes {
		f, err := arrowNode(n)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}

func arrowNode(n *Node) (pqschema.Node, error) {
	rep := n.Repetition.arrow()
	if !n.IsLeaf() {
		fields, err := arrowFields(n.Fields)
		if err != nil {
			return nil, err
		}
		if n.List {
			return pqschema.NewGroupNodeLogical(n.Name, rep, fields, pqschema.ListLogicalType{}, -1)
		}
		return pqschema.NewGroupNode(n.Name, rep, fields, -1)
	}
	switch n.Type {
	case Boolean:
		return pqschema.NewPrimitiveNode(n.Name, rep, parquet.Types.Boolean, -1, -1)
	case Int32:
		return pqschema.NewPrimitiveNode(n.Name, rep, parquet.Types.Int32, -1, -1)
	case Int64:
		return pqschema.NewPrimitiveNode(n.Name, rep, parquet.Types.Int64, -1, -1)
	case Int96:
		return pqschema.NewPrimitiveNode(n.Name, rep, parquet.Types.Int96, -1, -1)
	case Float:
		return pqschema.NewPrimitiveNode(n.Name, rep, parquet.Types.Float, -1, -1)
	case Double:
		return pqschema.NewPrimitiveNode(n.Name, rep, parquet.Types.Double, -1, -1)
	case Bytes:
		return pqschema.NewPrimitiveNode(n.Name, rep, parquet.Types.ByteArray, -1, -1)
	case FixedBytes:
		return pqschema.NewPrimitiveNode(n.Name, rep, parquet.Types.FixedLenByteArray, -1, int32(n.Length))
	case String:
		return pqschema.NewPrimitiveNodeLogical(n.Name, rep, pqschema.StringLogicalType{}, parquet.Types.ByteArray, -1, -1)
	case Date:
		return pqschema.NewPrimitiveNodeLogical(n.Name, rep, pqschema.DateLogicalType{}, parquet.Types.Int32, -1, -1)
	case TimestampMillis:
		return pqschema.NewPrimitiveNodeLogical(n.Name, rep, pqschema.NewTimestampLogicalType(true, pqschema.TimeUnitMillis), parquet.Types.Int64, -1, -1)
	case TimestampMicros:
		return pqschema.NewPrimitiveNodeLogical(n.Name, rep, pqschema.NewTimestampLogicalType(true, pqschema.TimeUnitMicros), parquet.Types.Int64, -1, -1)
	case TimestampNanos:
		return pqschema.NewPrimitiveNodeLogical(n.Name, rep, pqschema.NewTimestampLogicalType(true, pqschema.TimeUnitNanos), parquet.Types.Int64, -1, -1)
	}
	return nil, pqe.E(pqe.Invalid, "%s: unsupported type %s", n.Name, n.Type)
}

func (r Repetition) arrow() parquet.Repetition {
	switch r {
	case Optional:
		return parquet.Repetitions.Optional
	case Repeated:
		return parquet.Repetitions.Repeated
	}
	return parquet.Repetitions.Required
}

// FromColumn derives the Path of an engine column descriptor by walking its
// schema node up to the root.  It agrees with the Path computed by
// Schema.Paths for the same leaf.
func FromColumn(col *pqschema.Column) (*Path, error) {
	leaf, ok := col.SchemaNode().(*pqschema.PrimitiveNode)
	if !ok {
		return nil, pqe.E(pqe.Invalid, "column %s: leaf is not a primitive node", col.Path())
	}
	typ, err := fromArrowType(leaf)
	if err != nil {
		return nil, err
	}
	var chain []pqschema.Node
	for n := pqschema.Node(leaf); n != nil && n.Parent() != nil; n = n.Parent() {
		chain = append(chain, n)
	}
	nodes := make([]PathNode, len(chain))
	inList := false
	for k := range chain {
		n := chain[len(chain)-1-k]
		rep, err := fromArrowRepetition(n)
		if err != nil {
			return nil, err
		}
		pn := PathNode{Name: n.Name(), Repetition: rep}
		nextInList := false
		if g, ok := n.(*pqschema.GroupNode); ok {
			list := isListGroup(g)
			pn.Transparent = list || inList && rep == Repeated && g.NumFields() == 1
			nextInList = list && g.NumFields() == 1
		}
		inList = nextInList
		nodes[k] = pn
	}
	p, err := NewPath(nodes, typ)
	if err != nil {
		return nil, err
	}
	if typ == FixedBytes {
		p.Length = leaf.TypeLength()
	}
	if p.maxDef != col.MaxDefinitionLevel() || p.maxRep != col.MaxRepetitionLevel() {
		return nil, pqe.E(pqe.Format, "column %s: levels (rep %d, def %d) disagree with engine (rep %d, def %d)",
			p, p.maxRep, p.maxDef, col.MaxRepetitionLevel(), col.MaxDefinitionLevel())
	}
	return p, nil
}
