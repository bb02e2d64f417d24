package dc

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// EigenvalueCutoff is the absolute eigenvalue threshold below which the
// QEF solve treats a direction as unconstrained. Gradients are
// normalised before accumulation, so the threshold is absolute.
const EigenvalueCutoff = 0.1

// qef accumulates point-to-plane constraints for one surface vertex:
// each sign-crossing sample contributes the tangent plane n·x = n·p.
type qef struct {
	ata       [6]float64 // upper triangle of AᵀA: xx xy xz yy yz zz
	atb       r3.Vec
	btb       float64
	massPoint r3.Vec
	samples   float64
}

func (q *qef) reset() { *q = qef{} }

// push adds a crossing at pos with gradient deriv and residual function
// value. The gradient is normalised; zero or non-finite gradients
// contribute only to the mass point.
func (q *qef) push(pos, deriv r3.Vec, value float64) {
	q.massPoint = r3.Add(q.massPoint, pos)
	q.samples++

	norm := r3.Norm(deriv)
	if norm <= 1e-12 || math.IsNaN(norm) || math.IsInf(norm, 0) {
		return
	}
	d := r3.Scale(1/norm, deriv)
	value /= norm

	q.ata[0] += d.X * d.X
	q.ata[1] += d.X * d.Y
	q.ata[2] += d.X * d.Z
	q.ata[3] += d.Y * d.Y
	q.ata[4] += d.Y * d.Z
	q.ata[5] += d.Z * d.Z

	b := r3.Dot(d, pos) - value
	q.atb = r3.Add(q.atb, r3.Scale(b, d))
	q.btb += b * b
}

// add fuses another accumulator into q, used when collapsing children.
func (q *qef) add(o *qef) {
	for i := range q.ata {
		q.ata[i] += o.ata[i]
	}
	q.atb = r3.Add(q.atb, o.atb)
	q.btb += o.btb
	q.massPoint = r3.Add(q.massPoint, o.massPoint)
	q.samples += o.samples
}

// center returns the mass point, or fallback when no samples were pushed.
func (q *qef) center(fallback r3.Vec) r3.Vec {
	if q.samples == 0 {
		return fallback
	}
	return r3.Scale(1/q.samples, q.massPoint)
}

// solve minimises the accumulated error about the mass point, returning
// the vertex position, the residual xᵀAᵀAx − 2xᵀAᵀb + bᵀb and the
// pseudo-rank of AᵀA (1 flat, 2 edge, 3 corner). With no effective rank
// the vertex is the mass point, or fallback when no samples were pushed.
func (q *qef) solve(fallback r3.Vec) (pos r3.Vec, residual float64, rank int) {
	mp := q.center(fallback)

	sym := mat.NewSymDense(3, []float64{
		q.ata[0], q.ata[1], q.ata[2],
		q.ata[1], q.ata[3], q.ata[4],
		q.ata[2], q.ata[4], q.ata[5],
	})
	var es mat.EigenSym
	if !es.Factorize(sym, true) {
		return mp, q.residualAt(mp), 0
	}
	vals := es.Values(nil)
	var vecs mat.Dense
	es.VectorsTo(&vecs)

	// Pseudo-inverse of AᵀA, truncating small eigenvalues, applied to
	// the right-hand side shifted to the mass point.
	rhs := r3.Sub(q.atb, q.mulAtA(mp))
	var x r3.Vec
	for j := 0; j < 3; j++ {
		if math.Abs(vals[j]) < EigenvalueCutoff {
			continue
		}
		rank++
		v := r3.Vec{X: vecs.At(0, j), Y: vecs.At(1, j), Z: vecs.At(2, j)}
		x = r3.Add(x, r3.Scale(r3.Dot(v, rhs)/vals[j], v))
	}
	pos = r3.Add(mp, x)
	return pos, q.residualAt(pos), rank
}

// mulAtA computes AᵀA · v.
func (q *qef) mulAtA(v r3.Vec) r3.Vec {
	return r3.Vec{
		X: q.ata[0]*v.X + q.ata[1]*v.Y + q.ata[2]*v.Z,
		Y: q.ata[1]*v.X + q.ata[3]*v.Y + q.ata[4]*v.Z,
		Z: q.ata[2]*v.X + q.ata[4]*v.Y + q.ata[5]*v.Z,
	}
}

func (q *qef) residualAt(x r3.Vec) float64 {
	r := r3.Dot(x, q.mulAtA(x)) - 2*r3.Dot(x, q.atb) + q.btb
	if r < 0 {
		// Rounding may drive a tiny residual negative.
		return 0
	}
	return r
}
