// Package schema describes the nested structure of a Parquet file as a tree
// of named nodes and derives, for each leaf column, the Path from the root to
// the leaf together with the repetition and definition levels that encode
// nesting in the flat column storage.
package schema

import (
	"fmt"
	"strings"

	"github.com/brimdata/pqnest/pqe"
)

type Repetition int

const (
	Required Repetition = iota
	Optional
	Repeated
)

func (r Repetition) String() string {
	switch r {
	case Required:
		return "required"
	case Optional:
		return "optional"
	case Repeated:
		return "repeated"
	}
	return fmt.Sprintf("repetition(%d)", int(r))
}

func (r Repetition) valid() bool {
	return r == Required || r == Optional || r == Repeated
}

// Type is the logical type of a leaf column.  Each Type maps onto one
// physical Parquet type, possibly with a logical annotation.
type Type int

const (
	Group Type = iota
	Boolean
	Int32
	Int64
	Int96
	Float
	Double
	Bytes
	FixedBytes
	String
	Date
	TimestampMillis
	TimestampMicros
	TimestampNanos
)

var typeNames = map[Type]string{
	Group:           "group",
	Boolean:         "boolean",
	Int32:           "int32",
	Int64:           "int64",
	Int96:           "int96",
	Float:           "float",
	Double:          "double",
	Bytes:           "binary",
	FixedBytes:      "fixed_len_byte_array",
	String:          "binary (STRING)",
	Date:            "int32 (DATE)",
	TimestampMillis: "int64 (TIMESTAMP(MILLIS, true))",
	TimestampMicros: "int64 (TIMESTAMP(MICROS, true))",
	TimestampNanos:  "int64 (TIMESTAMP(NANOS, true))",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("type(%d)", int(t))
}

// Node is a field of the schema tree.  A node with Fields is a group; any
// other node is a leaf of the given Type.
type Node struct {
	Name       string
	Repetition Repetition
	Type       Type
	// Length is the byte width of a FixedBytes leaf.
	Length int
	// List marks a group carrying the LIST logical annotation.
	List   bool
	Fields []*Node
}

func (n *Node) IsLeaf() bool {
	return n.Type != Group
}

func Leaf(name string, rep Repetition, typ Type) *Node {
	return &Node{Name: name, Repetition: rep, Type: typ}
}

func NewGroup(name string, rep Repetition, fields ...*Node) *Node {
	return &Node{Name: name, Repetition: rep, Fields: fields}
}

// NewList returns the standard three-level list encoding:
//
//	<rep> group <name> (LIST) {
//	  repeated group list {
//	    <elem>
//	  }
//	}
func NewList(name string, rep Repetition, elem *Node) *Node {
	return &Node{
		Name:       name,
		Repetition: rep,
		List:       true,
		Fields:     []*Node{NewGroup("list", Repeated, elem)},
	}
}

// Schema is the tree of top-level fields beneath the required root group.
type Schema struct {
	Fields []*Node
}

func New(fields ...*Node) *Schema {
	return &Schema{Fields: fields}
}

func (s *Schema) Validate() error {
	if len(s.Fields) == 0 {
		return pqe.E(pqe.Invalid, "schema has no fields")
	}
	return validateFields("schema", s.Fields)
}

func validateFields(parent string, fields []*Node) error {
	seen := make(map[string]struct{})
	for _, f := range fields {
		if f.Name == "" {
			return pqe.E(pqe.Invalid, "%s: empty field name", parent)
		}
		if _, ok := seen[f.Name]; ok {
			return pqe.E(pqe.Invalid, "%s: duplicate field %q", parent, f.Name)
		}
		seen[f.Name] = struct{}{}
		if !f.Repetition.valid() {
			return pqe.E(pqe.Invalid, "%s.%s: unrecognized repetition %d", parent, f.Name, int(f.Repetition))
		}
		if f.IsLeaf() {
			if _, ok := typeNames[f.Type]; !ok {
				return pqe.E(pqe.Invalid, "%s.%s: unrecognized type %d", parent, f.Name, int(f.Type))
			}
			if len(f.Fields) != 0 {
				return pqe.E(pqe.Invalid, "%s.%s: leaf with fields", parent, f.Name)
			}
			if f.Type == FixedBytes && f.Length <= 0 {
				return pqe.E(pqe.Invalid, "%s.%s: fixed_len_byte_array requires a positive length", parent, f.Name)
			}
			continue
		}
		if len(f.Fields) == 0 {
			return pqe.E(pqe.Invalid, "%s.%s: group with no fields", parent, f.Name)
		}
		if err := validateFields(parent+"."+f.Name, f.Fields); err != nil {
			return err
		}
	}
	return nil
}

// Paths returns the Path of every leaf column in depth-first order, which is
// the column order of the file.
func (s *Schema) Paths() ([]*Path, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	var paths []*Path
	var walk func([]PathNode, *Node, bool) error
	walk = func(prefix []PathNode, n *Node, inList bool) error {
		pn := PathNode{
			Name:       n.Name,
			Repetition: n.Repetition,
			Transparent: !n.IsLeaf() && (n.List ||
				inList && n.Repetition == Repeated && len(n.Fields) == 1),
		}
		nodes := append(prefix[:len(prefix):len(prefix)], pn)
		if n.IsLeaf() {
			p, err := NewPath(nodes, n.Type)
			if err != nil {
				return err
			}
			p.Length = n.Length
			paths = append(paths, p)
			return nil
		}
		for _, f := range n.Fields {
			if err := walk(nodes, f, n.List && len(n.Fields) == 1); err != nil {
				return err
			}
		}
		return nil
	}
	for _, f := range s.Fields {
		if err := walk(nil, f, false); err != nil {
			return nil, err
		}
	}
	return paths, nil
}

// Lookup returns the node at the given dotted path, if any.
func (s *Schema) Lookup(path string) (*Node, bool) {
	fields := s.Fields
	var n *Node
	for _, name := range strings.Split(path, ".") {
		n = nil
		for _, f := range fields {
			if f.Name == name {
				n = f
				break
			}
		}
		if n == nil {
			return nil, false
		}
		fields = n.Fields
	}
	return n, n != nil
}

// String formats the schema in the textual message definition syntax
// accepted by ParseDefinition.
func (s *Schema) String() string {
	var b strings.Builder
	b.WriteString("message schema {\n")
	for _, f := range s.Fields {
		formatNode(&b, f, 1)
	}
	b.WriteString("}\n")
	return b.String()
}

func formatNode(b *strings.Builder, n *Node, depth int) {
	indent := strings.Repeat("  ", depth)
	b.WriteString(indent)
	b.WriteString(n.Repetition.String())
	b.WriteByte(' ')
	if !n.IsLeaf() {
		b.WriteString("group ")
		b.WriteString(n.Name)
		if n.List {
			b.WriteString(" (LIST)")
		}
		b.WriteString(" {\n")
		for _, f := range n.Fields {
			formatNode(b, f, depth+1)
		}
		b.WriteString(indent)
		b.WriteString("}\n")
		return
	}
	switch n.Type {
	case FixedBytes:
		fmt.Fprintf(b, "fixed_len_byte_array(%d) %s", n.Length, n.Name)
	case String:
		fmt.Fprintf(b, "binary %s (STRING)", n.Name)
	case Date:
		fmt.Fprintf(b, "int32 %s (DATE)", n.Name)
	case TimestampMillis:
		fmt.Fprintf(b, "int64 %s (TIMESTAMP(MILLIS, true))", n.Name)
	case TimestampMicros:
		fmt.Fprintf(b, "int64 %s (TIMESTAMP(MICROS, true))", n.Name)
	case TimestampNanos:
		fmt.Fprintf(b, "int64 %s (TIMESTAMP(NANOS, true))", n.Name)
	default:
		fmt.Fprintf(b, "%s %s", n.Type, n.Name)
	}
	b.WriteString(";\n")
}
