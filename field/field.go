// Package field implements implicit scalar fields over 3D space.
//
// A Field reports the signed value of a function f(x,y,z); the solid is
// the set where f < 0 and the surface is the zero level set. Besides
// point evaluation every Field bounds itself over a box, which is what
// lets the octree builder prune empty and filled space, and reports its
// gradient, which drives vertex placement.
package field

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Field is an implicit function f(x, y, z) → ℝ.
type Field interface {
	// Eval returns the value of the function at p. Negative values are
	// inside the solid.
	Eval(p r3.Vec) float64
	// Grad returns the gradient of the function at p.
	Grad(p r3.Vec) r3.Vec
	// Interval returns lo ≤ f(q) ≤ hi for every q in b. Bounds need not
	// be tight, only correct.
	Interval(b r3.Box) (lo, hi float64)
}

// Prune returns a field equivalent to f inside b, with min/max branches
// that cannot win anywhere in b removed. The second result reports
// whether anything was pruned; when false the first result is f itself.
func Prune(f Field, b r3.Box) (Field, bool) {
	switch n := f.(type) {
	case unionOp:
		alo, ahi := n.a.Interval(b)
		blo, bhi := n.b.Interval(b)
		switch {
		case ahi <= blo:
			out, _ := Prune(n.a, b)
			return out, true
		case bhi <= alo:
			out, _ := Prune(n.b, b)
			return out, true
		}
		a, changedA := Prune(n.a, b)
		bb, changedB := Prune(n.b, b)
		if !changedA && !changedB {
			return f, false
		}
		return unionOp{a, bb}, true
	case intersectOp:
		alo, ahi := n.a.Interval(b)
		blo, bhi := n.b.Interval(b)
		switch {
		case alo >= bhi:
			out, _ := Prune(n.a, b)
			return out, true
		case blo >= ahi:
			out, _ := Prune(n.b, b)
			return out, true
		}
		a, changedA := Prune(n.a, b)
		bb, changedB := Prune(n.b, b)
		if !changedA && !changedB {
			return f, false
		}
		return intersectOp{a, bb}, true
	case negateOp:
		inner, changed := Prune(n.f, b)
		if !changed {
			return f, false
		}
		return negateOp{inner}, true
	case translateOp:
		shifted := r3.Box{Min: r3.Sub(b.Min, n.off), Max: r3.Sub(b.Max, n.off)}
		inner, changed := Prune(n.f, shifted)
		if !changed {
			return f, false
		}
		return translateOp{inner, n.off}, true
	}
	return f, false
}

// PruneAt returns the field restricted to the branch cone selected at p:
// min/max nodes with a strict winner at p collapse to the winning
// branch. Ties are kept intact. The second result reports whether
// anything was pruned.
func PruneAt(f Field, p r3.Vec) (Field, bool) {
	switch n := f.(type) {
	case unionOp:
		va, vb := n.a.Eval(p), n.b.Eval(p)
		switch {
		case va < vb:
			out, _ := PruneAt(n.a, p)
			return out, true
		case vb < va:
			out, _ := PruneAt(n.b, p)
			return out, true
		}
		return f, false
	case intersectOp:
		va, vb := n.a.Eval(p), n.b.Eval(p)
		switch {
		case va > vb:
			out, _ := PruneAt(n.a, p)
			return out, true
		case vb > va:
			out, _ := PruneAt(n.b, p)
			return out, true
		}
		return f, false
	case negateOp:
		inner, changed := PruneAt(n.f, p)
		if !changed {
			return f, false
		}
		return negateOp{inner}, true
	case translateOp:
		inner, changed := PruneAt(n.f, r3.Sub(p, n.off))
		if !changed {
			return f, false
		}
		return translateOp{inner, n.off}, true
	}
	return f, false
}

// Features returns the set of gradients meeting at p. For smooth points
// the set is a singleton; on creases and corners of min/max combinations
// every participating branch contributes its gradient.
func Features(f Field, p r3.Vec) []r3.Vec {
	switch n := f.(type) {
	case unionOp:
		va, vb := n.a.Eval(p), n.b.Eval(p)
		switch {
		case va < vb:
			return Features(n.a, p)
		case vb < va:
			return Features(n.b, p)
		}
		return append(Features(n.a, p), Features(n.b, p)...)
	case intersectOp:
		va, vb := n.a.Eval(p), n.b.Eval(p)
		switch {
		case va > vb:
			return Features(n.a, p)
		case vb > va:
			return Features(n.b, p)
		}
		return append(Features(n.a, p), Features(n.b, p)...)
	case negateOp:
		gs := Features(n.f, p)
		for i := range gs {
			gs[i] = r3.Scale(-1, gs[i])
		}
		return gs
	case translateOp:
		return Features(n.f, r3.Sub(p, n.off))
	case box:
		return n.features(p)
	}
	return []r3.Vec{f.Grad(p)}
}

// interval of |t| - h for t in [lo, hi].
func absInterval(lo, hi, h float64) (float64, float64) {
	ahi := math.Max(math.Abs(lo), math.Abs(hi)) - h
	alo := math.Min(math.Abs(lo), math.Abs(hi)) - h
	if lo <= 0 && hi >= 0 {
		alo = -h
	}
	return alo, ahi
}
