package field

import (
	"math"

	"github.com/implicitcad/brep/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Sphere returns a sphere of the given radius centered at the origin.
func Sphere(radius float64) Field {
	if radius <= 0 {
		panic("sphere radius must be positive")
	}
	return sphere{r2: radius * radius, r: radius}
}

type sphere struct {
	r2, r float64
}

func (s sphere) Eval(p r3.Vec) float64 {
	return r3.Norm2(p) - s.r2
}

func (s sphere) Grad(p r3.Vec) r3.Vec {
	return r3.Scale(2, p)
}

func (s sphere) Interval(b r3.Box) (lo, hi float64) {
	min2, max2 := d3.Box(b).MinMaxDist2(r3.Vec{})
	return min2 - s.r2, max2 - s.r2
}

// Box returns an axis-aligned box of the given size centered at the
// origin. The field is the componentwise Chebyshev form
// max(|x|-sx/2, |y|-sy/2, |z|-sz/2), exact on faces and edges.
func Box(size r3.Vec) Field {
	if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
		panic("box dimensions must be positive")
	}
	return box{half: r3.Scale(0.5, size)}
}

type box struct {
	half r3.Vec
}

func (bx box) Eval(p r3.Vec) float64 {
	q := r3.Sub(d3.AbsElem(p), bx.half)
	return d3.Max(q)
}

func (bx box) Grad(p r3.Vec) r3.Vec {
	q := r3.Sub(d3.AbsElem(p), bx.half)
	switch m := d3.Max(q); {
	case m == q.X:
		return r3.Vec{X: sign(p.X)}
	case m == q.Y:
		return r3.Vec{Y: sign(p.Y)}
	default:
		return r3.Vec{Z: sign(p.Z)}
	}
}

// features returns one gradient per face meeting at p: a point on a box
// edge or corner reports two or three axis gradients.
func (bx box) features(p r3.Vec) []r3.Vec {
	q := r3.Sub(d3.AbsElem(p), bx.half)
	m := d3.Max(q)
	var out []r3.Vec
	if q.X == m {
		out = append(out, r3.Vec{X: sign(p.X)})
	}
	if q.Y == m {
		out = append(out, r3.Vec{Y: sign(p.Y)})
	}
	if q.Z == m {
		out = append(out, r3.Vec{Z: sign(p.Z)})
	}
	return out
}

func (bx box) Interval(b r3.Box) (lo, hi float64) {
	xlo, xhi := absInterval(b.Min.X, b.Max.X, bx.half.X)
	ylo, yhi := absInterval(b.Min.Y, b.Max.Y, bx.half.Y)
	zlo, zhi := absInterval(b.Min.Z, b.Max.Z, bx.half.Z)
	return math.Max(xlo, math.Max(ylo, zlo)), math.Max(xhi, math.Max(yhi, zhi))
}

// Translate offsets a field by off.
func Translate(f Field, off r3.Vec) Field {
	if off == (r3.Vec{}) {
		return f
	}
	return translateOp{f, off}
}

type translateOp struct {
	f   Field
	off r3.Vec
}

func (t translateOp) Eval(p r3.Vec) float64 {
	return t.f.Eval(r3.Sub(p, t.off))
}

func (t translateOp) Grad(p r3.Vec) r3.Vec {
	return t.f.Grad(r3.Sub(p, t.off))
}

func (t translateOp) Interval(b r3.Box) (lo, hi float64) {
	return t.f.Interval(r3.Box{Min: r3.Sub(b.Min, t.off), Max: r3.Sub(b.Max, t.off)})
}

func sign(x float64) float64 {
	if x < 0 {
		return -1
	}
	return 1
}
