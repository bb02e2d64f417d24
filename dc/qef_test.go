package dc

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestQEFPlane(t *testing.T) {
	// Samples on the plane x = 0.25 with +x normals.
	var q qef
	q.push(r3.Vec{X: 0.25, Y: 0.1, Z: 0.3}, r3.Vec{X: 1}, 0)
	q.push(r3.Vec{X: 0.25, Y: -0.2, Z: 0.1}, r3.Vec{X: 1}, 0)
	q.push(r3.Vec{X: 0.25, Y: 0.4, Z: -0.3}, r3.Vec{X: 1}, 0)

	pos, residual, rank := q.solve(r3.Vec{})
	if rank != 1 {
		t.Errorf("plane rank = %d, want 1", rank)
	}
	if math.Abs(pos.X-0.25) > 1e-9 {
		t.Errorf("vertex x = %v, want 0.25", pos.X)
	}
	if residual > 1e-12 {
		t.Errorf("consistent planes left residual %v", residual)
	}
}

func TestQEFCorner(t *testing.T) {
	// Three orthogonal planes meeting at (0.1, 0.2, 0.3).
	corner := r3.Vec{X: 0.1, Y: 0.2, Z: 0.3}
	var q qef
	q.push(r3.Vec{X: corner.X, Y: 0.5, Z: 0.9}, r3.Vec{X: 1}, 0)
	q.push(r3.Vec{X: 0.7, Y: corner.Y, Z: 0.4}, r3.Vec{Y: 1}, 0)
	q.push(r3.Vec{X: 0.2, Y: 0.8, Z: corner.Z}, r3.Vec{Z: 1}, 0)

	pos, residual, rank := q.solve(r3.Vec{})
	if rank != 3 {
		t.Errorf("corner rank = %d, want 3", rank)
	}
	if r3.Norm(r3.Sub(pos, corner)) > 1e-9 {
		t.Errorf("vertex = %v, want %v", pos, corner)
	}
	if residual > 1e-12 {
		t.Errorf("consistent planes left residual %v", residual)
	}
}

func TestQEFEdge(t *testing.T) {
	// Two orthogonal planes meeting along the line x = 0.2, y = -0.1.
	var q qef
	q.push(r3.Vec{X: 0.2, Y: 0.5, Z: 0.1}, r3.Vec{X: 1}, 0)
	q.push(r3.Vec{X: 0.9, Y: -0.1, Z: 0.7}, r3.Vec{Y: 1}, 0)

	pos, _, rank := q.solve(r3.Vec{})
	if rank != 2 {
		t.Errorf("edge rank = %d, want 2", rank)
	}
	if math.Abs(pos.X-0.2) > 1e-9 || math.Abs(pos.Y+0.1) > 1e-9 {
		t.Errorf("vertex = %v, want x=0.2 y=-0.1", pos)
	}
}

func TestQEFDropsBadGradients(t *testing.T) {
	var q qef
	q.push(r3.Vec{X: 1}, r3.Vec{}, 0)
	q.push(r3.Vec{X: 3}, r3.Vec{X: math.NaN()}, 0)

	// Both samples feed the mass point but constrain nothing.
	pos, _, rank := q.solve(r3.Vec{})
	if rank != 0 {
		t.Errorf("rank = %d, want 0", rank)
	}
	if math.Abs(pos.X-2) > 1e-12 {
		t.Errorf("vertex = %v, want mass point x=2", pos)
	}
}

func TestQEFEmptySnapsToFallback(t *testing.T) {
	var q qef
	fallback := r3.Vec{X: 0.5, Y: 0.5, Z: 0.5}
	pos, residual, rank := q.solve(fallback)
	if pos != fallback || residual != 0 || rank != 0 {
		t.Errorf("empty QEF: pos=%v residual=%v rank=%d", pos, residual, rank)
	}
}

func TestQEFFuse(t *testing.T) {
	plane := func(x float64) *qef {
		q := new(qef)
		q.push(r3.Vec{X: x, Y: 0.1, Z: 0.2}, r3.Vec{X: 1}, 0)
		return q
	}
	var fused qef
	fused.add(plane(0.25))
	fused.add(plane(0.25))
	pos, residual, rank := fused.solve(r3.Vec{})
	if rank != 1 || math.Abs(pos.X-0.25) > 1e-9 {
		t.Errorf("fused solve: pos=%v rank=%d", pos, rank)
	}
	if residual > 1e-12 {
		t.Errorf("fused residual %v", residual)
	}

	// Fusing two parallel but offset planes leaves a real residual.
	var bad qef
	bad.add(plane(0))
	bad.add(plane(1))
	if _, residual, _ := bad.solve(r3.Vec{}); residual < 0.1 {
		t.Errorf("conflicting planes residual %v, want ≥ 0.1", residual)
	}
}
