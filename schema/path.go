package schema

import (
	"strings"

	"github.com/brimdata/pqnest/pqe"
)

// PathNode is one step of a Path.
type PathNode struct {
	Name       string
	Repetition Repetition
	// Transparent groups contribute no struct level to the value shape:
	// a LIST-annotated group and its single-child repeated group.
	Transparent bool
}

// Path is the root-to-leaf sequence of nodes (root excluded) describing the
// nesting of one leaf column.  A Path is immutable once built.
type Path struct {
	Nodes  []PathNode
	Leaf   Type
	Length int

	defs     []int16
	reps     []int16
	repeated []int
	maxDef   int16
	maxRep   int16
}

func NewPath(nodes []PathNode, leaf Type) (*Path, error) {
	if len(nodes) == 0 {
		return nil, pqe.E(pqe.Invalid, "empty schema path")
	}
	p := &Path{
		Nodes: nodes,
		Leaf:  leaf,
		defs:  make([]int16, len(nodes)),
		reps:  make([]int16, len(nodes)),
	}
	var def, rep int16
	for i, n := range nodes {
		switch n.Repetition {
		case Required:
		case Optional:
			def++
		case Repeated:
			def++
			rep++
			p.repeated = append(p.repeated, i)
		default:
			return nil, pqe.E(pqe.Invalid, "%s: unrecognized repetition %d for node %q", joinNames(nodes), int(n.Repetition), n.Name)
		}
		if n.Name == "" {
			return nil, pqe.E(pqe.Invalid, "empty node name at position %d", i)
		}
		p.defs[i] = def
		p.reps[i] = rep
	}
	p.maxDef = def
	p.maxRep = rep
	return p, nil
}

func joinNames(nodes []PathNode) string {
	names := make([]string, 0, len(nodes))
	for _, n := range nodes {
		names = append(names, n.Name)
	}
	return strings.Join(names, ".")
}

// String returns the dotted column path, e.g., "a.list.element".
func (p *Path) String() string {
	return joinNames(p.Nodes)
}

func (p *Path) Len() int {
	return len(p.Nodes)
}

func (p *Path) MaxDefinitionLevel() int16 {
	return p.maxDef
}

func (p *Path) MaxRepetitionLevel() int16 {
	return p.maxRep
}

// DefinitionLevel returns the definition level of a value for which node i
// (and therefore every ancestor) is present.
func (p *Path) DefinitionLevel(i int) int16 {
	return p.defs[i]
}

// RepetitionLevel returns the number of repeated nodes at or above node i.
func (p *Path) RepetitionLevel(i int) int16 {
	return p.reps[i]
}

// RepeatedNode returns the index of the repeated node of rank rep, where the
// shallowest repeated node has rank 1.
func (p *Path) RepeatedNode(rep int16) (int, error) {
	if rep < 1 || rep > p.maxRep {
		return 0, pqe.E(pqe.Invalid, "%s: repetition level %d out of range [1,%d]", p, rep, p.maxRep)
	}
	return p.repeated[rep-1], nil
}

// AbsentNode returns the index of the shallowest absent node for a value
// with definition level def, i.e., the node whose optional/repeated rank is
// def+1.  It returns -1 when def is the maximum definition level and nothing
// is absent.
func (p *Path) AbsentNode(def int16) (int, error) {
	if def < 0 || def > p.maxDef {
		return 0, pqe.E(pqe.Invalid, "%s: definition level %d out of range [0,%d]", p, def, p.maxDef)
	}
	if def == p.maxDef {
		return -1, nil
	}
	for i, n := range p.Nodes {
		if n.Repetition != Required && p.defs[i] == def+1 {
			return i, nil
		}
	}
	// Unreachable for a Path built by NewPath.
	return 0, pqe.E(pqe.Invalid, "%s: no node at definition level %d", p, def+1)
}

// ParentDefinitionLevel returns the definition level of the parent of node i,
// which is the level of a marker for node i being absent (or, for a repeated
// node, empty).
func (p *Path) ParentDefinitionLevel(i int) int16 {
	if i == 0 {
		return 0
	}
	return p.defs[i-1]
}
