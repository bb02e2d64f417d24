// Package eval provides an Evaluator over field trees.
//
// An Evaluator answers the queries the meshing core makes of an implicit
// function: interval bounds over a region, batched values and
// derivatives, single-point evaluation with tape refinement, and feature
// (gradient set) queries. Tapes are pruned copies of the field tree
// valid inside a sub-region; they form a stack so work descending the
// octree evaluates progressively smaller expressions.
package eval

import (
	"github.com/implicitcad/brep"
	"github.com/implicitcad/brep/field"
	"github.com/implicitcad/brep/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// BatchSize is the number of points callers should aim to batch per
// Values or Derivs call. Larger batches are accepted.
const BatchSize = 256

// Tape is a pruned field specialisation valid inside its region.
// The root tape is valid everywhere. Tape lifetimes are managed by the
// garbage collector; a parent tape structurally outlives its children
// because every child holds a parent reference.
type Tape struct {
	parent *Tape
	f      field.Field
	region brep.Region
	root   bool
}

// Base returns the nearest tape on the stack ending at t (t itself
// included) that is still valid over r, walking parents until the
// region fits.
func (t *Tape) Base(r brep.Region) brep.Tape {
	for !t.root && !t.contains(r) {
		t = t.parent
	}
	return t
}

func (t *Tape) contains(r brep.Region) bool {
	b := d3.Box(t.region.Box())
	return b.Contains(r.Min) && b.Contains(r.Max)
}

// Evaluator evaluates one field. A single Evaluator is not safe for
// concurrent use; construct one per worker with NewPool.
type Evaluator struct {
	root *Tape
}

var _ brep.Evaluator = (*Evaluator)(nil)

// New returns an evaluator for f.
func New(f field.Field) *Evaluator {
	return &Evaluator{root: &Tape{f: f, root: true}}
}

// NewPool returns n independent evaluators over the same field, one per
// worker.
func NewPool(f field.Field, n int) []brep.Evaluator {
	out := make([]brep.Evaluator, n)
	for i := range out {
		out[i] = New(f)
	}
	return out
}

// RootTape returns the evaluator's unrestricted tape.
func (e *Evaluator) RootTape() brep.Tape { return e.root }

// Interval bounds the field over r. When pruning inside r shrinks the
// expression a refined child tape is returned; otherwise the tape result
// is nil and the caller keeps using t.
func (e *Evaluator) Interval(r brep.Region, t brep.Tape) (brep.Interval, brep.Tape) {
	tp := t.(*Tape)
	lo, hi := tp.f.Interval(r.Box())
	state := brep.IntervalOf(lo, hi)
	if state != brep.IntervalAmbiguous {
		return state, nil
	}
	pruned, changed := field.Prune(tp.f, r.Box())
	if !changed {
		return state, nil
	}
	return state, &Tape{parent: tp, f: pruned, region: r}
}

// Values evaluates the field at each point of ps into out.
func (e *Evaluator) Values(ps []r3.Vec, out []float64, t brep.Tape) {
	f := t.(*Tape).f
	for i, p := range ps {
		out[i] = f.Eval(p)
	}
}

// Derivs evaluates the gradient at each point of ps into out.
func (e *Evaluator) Derivs(ps []r3.Vec, out []r3.Vec, t brep.Tape) {
	f := t.(*Tape).f
	for i, p := range ps {
		out[i] = f.Grad(p)
	}
}

// ValueAndPush evaluates at p and returns a tape restricted to the
// min/max branches selected at p. The returned tape is only valid in the
// cone around p where the same branches win.
func (e *Evaluator) ValueAndPush(p r3.Vec, t brep.Tape) (float64, brep.Tape) {
	tp := t.(*Tape)
	v := tp.f.Eval(p)
	pruned, changed := field.PruneAt(tp.f, p)
	if !changed {
		return v, tp
	}
	return v, &Tape{parent: tp, f: pruned, region: brep.Region{Min: p, Max: p}}
}

// Feature returns the set of gradients meeting at p.
func (e *Evaluator) Feature(p r3.Vec, t brep.Tape) []r3.Vec {
	return field.Features(t.(*Tape).f, p)
}
