package nested

import (
	"github.com/brimdata/pqnest"
	"github.com/brimdata/pqnest/pqe"
	"github.com/brimdata/pqnest/schema"
)

// frame is an open list under construction.  Frame 0 is the record and
// holds the single value of the path's first node; frame q > 0 belongs to
// the repeated node of rank q and holds the elements of that list.
type frame struct {
	node  int
	elems []pqnest.Value
}

// Reconstructor assembles the triples of one column into one nested value
// per top-level record.  The value of a record is the value of the first
// node of the path: Null or the element for an optional node, a (possibly
// empty) list for a repeated node, and the element for a required node.
type Reconstructor struct {
	path   *schema.Path
	reader TripleReader
	leaf   int
	maxDef int16
	maxRep int16

	frames  []frame
	open    int
	started bool
	done    bool
	err     error
}

func NewReconstructor(path *schema.Path, reader TripleReader) *Reconstructor {
	maxRep := path.MaxRepetitionLevel()
	frames := make([]frame, maxRep+1)
	frames[0].node = -1
	for q := int16(1); q <= maxRep; q++ {
		// Cannot fail for q in [1,maxRep].
		frames[q].node, _ = path.RepeatedNode(q)
	}
	return &Reconstructor{
		path:   path,
		reader: reader,
		leaf:   path.Len() - 1,
		maxDef: path.MaxDefinitionLevel(),
		maxRep: maxRep,
		frames: frames,
	}
}

// Read returns the value of the next record or nil at the end of the column.
// Once Read returns an error, every later call returns the same error.
func (r *Reconstructor) Read() (*pqnest.Value, error) {
	if r.err != nil {
		return nil, r.err
	}
	for !r.done {
		t, err := r.reader.NextTriple()
		if err != nil {
			r.err = err
			return nil, err
		}
		if t == nil {
			r.done = true
			break
		}
		if err := r.check(t); err != nil {
			r.err = err
			return nil, err
		}
		var rec *pqnest.Value
		if t.Rep == 0 && r.started {
			rec = r.finish()
		}
		r.push(t)
		if rec != nil {
			return rec, nil
		}
	}
	if r.started {
		return r.finish(), nil
	}
	return nil, nil
}

// ReadAll reads up to n records, or every remaining record when n < 0.
func (r *Reconstructor) ReadAll(n int) ([]pqnest.Value, error) {
	var vals []pqnest.Value
	for n < 0 || len(vals) < n {
		val, err := r.Read()
		if err != nil {
			return vals, err
		}
		if val == nil {
			break
		}
		vals = append(vals, *val)
	}
	return vals, nil
}

func (r *Reconstructor) check(t *Triple) error {
	if t.Rep < 0 || t.Rep > r.maxRep {
		return pqe.E(pqe.Format, "%s: repetition level %d out of range [0,%d]", r.path, t.Rep, r.maxRep)
	}
	if t.Def < 0 || t.Def > r.maxDef {
		return pqe.E(pqe.Format, "%s: definition level %d out of range [0,%d]", r.path, t.Def, r.maxDef)
	}
	present := !t.Value.IsNull()
	if present && t.Def != r.maxDef {
		return pqe.E(pqe.Format, "%s: value present at definition level %d below %d", r.path, t.Def, r.maxDef)
	}
	if !present && t.Def == r.maxDef {
		return pqe.E(pqe.Format, "%s: value missing at definition level %d", r.path, t.Def)
	}
	if t.Rep == 0 {
		return nil
	}
	if !r.started {
		return pqe.E(pqe.Format, "%s: repetition level %d before the first record", r.path, t.Rep)
	}
	if int(t.Rep) > r.open {
		return pqe.E(pqe.Format, "%s: repetition level %d continues a list that is not open (deepest open list %d)", r.path, t.Rep, r.open)
	}
	if node := r.frames[t.Rep].node; t.Def < r.path.DefinitionLevel(node) {
		return pqe.E(pqe.Format, "%s: definition level %d does not reach continued list %q", r.path, t.Def, r.path.Nodes[node].Name)
	}
	return nil
}

func (r *Reconstructor) push(t *Triple) {
	if t.Rep == 0 {
		r.started = true
		r.open = 0
		r.frames[0].elems = nil
		r.descend(0, 0, t)
		return
	}
	q := int(t.Rep)
	r.closeTo(q)
	if node := r.frames[q].node; node == r.leaf {
		r.complete(q, node, t.Value)
	} else {
		r.descend(q, node+1, t)
	}
}

// descend walks the path from node i with frame q innermost, opening a list
// frame at each present repeated node, and stops at the node the definition
// level marks absent or at the leaf.
func (r *Reconstructor) descend(q, i int, t *Triple) {
	// check has bounded t.Def, so AbsentNode cannot fail.
	absent, _ := r.path.AbsentNode(t.Def)
	for ; ; i++ {
		n := r.path.Nodes[i]
		if i == absent {
			if n.Repetition == schema.Repeated {
				r.complete(q, i, pqnest.NewList(nil))
			} else {
				r.complete(q, i, pqnest.Null)
			}
			return
		}
		if n.Repetition == schema.Repeated {
			q = int(r.path.RepetitionLevel(i))
			r.frames[q].elems = nil
			r.open = q
		}
		if i == r.leaf {
			r.complete(q, i, t.Value)
			return
		}
	}
}

// complete adds val, the value of node m, to frame q by wrapping it in the
// elements of the nodes between the frame's owner and m.  When m owns frame
// q, val is already an element of the frame.
func (r *Reconstructor) complete(q, m int, val pqnest.Value) {
	for i := m - 1; i >= 0 && i >= r.frames[q].node; i-- {
		val = r.element(i, val)
	}
	r.frames[q].elems = append(r.frames[q].elems, val)
}

func (r *Reconstructor) element(i int, val pqnest.Value) pqnest.Value {
	if r.path.Nodes[i].Transparent {
		return val
	}
	return pqnest.NewStruct(pqnest.NewField(r.path.Nodes[i+1].Name, val))
}

// closeTo closes every frame deeper than q, folding each finished list into
// its parent frame.
func (r *Reconstructor) closeTo(q int) {
	for ; r.open > q; r.open-- {
		f := &r.frames[r.open]
		list := pqnest.NewList(f.elems)
		f.elems = nil
		r.complete(r.open-1, f.node, list)
	}
}

func (r *Reconstructor) finish() *pqnest.Value {
	r.closeTo(0)
	r.started = false
	val := r.frames[0].elems[0]
	r.frames[0].elems = nil
	return &val
}
