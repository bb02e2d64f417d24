package field

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Union combines fields with the pointwise minimum. It panics when
// called with no arguments.
func Union(fs ...Field) Field {
	if len(fs) == 0 {
		panic("union of no fields")
	}
	out := fs[0]
	for _, f := range fs[1:] {
		out = unionOp{out, f}
	}
	return out
}

// Intersect combines fields with the pointwise maximum.
func Intersect(fs ...Field) Field {
	if len(fs) == 0 {
		panic("intersection of no fields")
	}
	out := fs[0]
	for _, f := range fs[1:] {
		out = intersectOp{out, f}
	}
	return out
}

// Difference returns the solid of a with b removed.
func Difference(a, b Field) Field {
	return intersectOp{a, negateOp{b}}
}

// Negate flips the sign of a field, swapping inside and outside.
func Negate(f Field) Field {
	if n, ok := f.(negateOp); ok {
		return n.f
	}
	return negateOp{f}
}

type unionOp struct {
	a, b Field
}

func (u unionOp) Eval(p r3.Vec) float64 {
	return math.Min(u.a.Eval(p), u.b.Eval(p))
}

func (u unionOp) Grad(p r3.Vec) r3.Vec {
	if u.a.Eval(p) <= u.b.Eval(p) {
		return u.a.Grad(p)
	}
	return u.b.Grad(p)
}

func (u unionOp) Interval(b r3.Box) (lo, hi float64) {
	alo, ahi := u.a.Interval(b)
	blo, bhi := u.b.Interval(b)
	return math.Min(alo, blo), math.Min(ahi, bhi)
}

type intersectOp struct {
	a, b Field
}

func (n intersectOp) Eval(p r3.Vec) float64 {
	return math.Max(n.a.Eval(p), n.b.Eval(p))
}

func (n intersectOp) Grad(p r3.Vec) r3.Vec {
	if n.a.Eval(p) >= n.b.Eval(p) {
		return n.a.Grad(p)
	}
	return n.b.Grad(p)
}

func (n intersectOp) Interval(b r3.Box) (lo, hi float64) {
	alo, ahi := n.a.Interval(b)
	blo, bhi := n.b.Interval(b)
	return math.Max(alo, blo), math.Max(ahi, bhi)
}

type negateOp struct {
	f Field
}

func (n negateOp) Eval(p r3.Vec) float64 { return -n.f.Eval(p) }

func (n negateOp) Grad(p r3.Vec) r3.Vec { return r3.Scale(-1, n.f.Grad(p)) }

func (n negateOp) Interval(b r3.Box) (lo, hi float64) {
	flo, fhi := n.f.Interval(b)
	return -fhi, -flo
}
