package field

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"gonum.org/v1/gonum/spatial/r3"
)

// FromSDFX wraps an sdfx signed distance function as a Field. The
// wrapped function must be a true (Lipschitz ≤ 1) signed distance bound
// for the interval test to be sound; every sdfx form satisfies this.
// Gradients are approximated by central differences.
func FromSDFX(s sdf.SDF3) Field {
	return sdfxField{s: s}
}

type sdfxField struct {
	s sdf.SDF3
}

func (f sdfxField) Eval(p r3.Vec) float64 {
	return f.s.Evaluate(v3.Vec{X: p.X, Y: p.Y, Z: p.Z})
}

func (f sdfxField) Grad(p r3.Vec) r3.Vec {
	const h = 1e-6
	return r3.Vec{
		X: (f.Eval(r3.Add(p, r3.Vec{X: h})) - f.Eval(r3.Sub(p, r3.Vec{X: h}))) / (2 * h),
		Y: (f.Eval(r3.Add(p, r3.Vec{Y: h})) - f.Eval(r3.Sub(p, r3.Vec{Y: h}))) / (2 * h),
		Z: (f.Eval(r3.Add(p, r3.Vec{Z: h})) - f.Eval(r3.Sub(p, r3.Vec{Z: h}))) / (2 * h),
	}
}

// Interval bounds the distance field over b using the value at the box
// center and the half-diagonal: |f(q) - f(c)| ≤ ‖q - c‖ for a signed
// distance bound.
func (f sdfxField) Interval(b r3.Box) (lo, hi float64) {
	c := r3.Scale(0.5, r3.Add(b.Min, b.Max))
	hdiag := 0.5 * math.Sqrt(r3.Norm2(r3.Sub(b.Max, b.Min)))
	d := f.Eval(c)
	return d - hdiag, d + hdiag
}
