package eval_test

import (
	"testing"

	"github.com/implicitcad/brep"
	"github.com/implicitcad/brep/eval"
	"github.com/implicitcad/brep/field"
	"gonum.org/v1/gonum/spatial/r3"
)

func region(min, max float64) brep.Region {
	return brep.NewRegion(
		r3.Vec{X: min, Y: min, Z: min},
		r3.Vec{X: max, Y: max, Z: max},
	)
}

func TestIntervalStates(t *testing.T) {
	ev := eval.New(field.Sphere(0.5))
	tape := ev.RootTape()

	if state, _ := ev.Interval(region(2, 3), tape); state != brep.IntervalEmpty {
		t.Errorf("far region = %v, want empty", state)
	}
	if state, _ := ev.Interval(region(-0.1, 0.1), tape); state != brep.IntervalFilled {
		t.Errorf("inner region = %v, want filled", state)
	}
	if state, _ := ev.Interval(region(-1, 1), tape); state != brep.IntervalAmbiguous {
		t.Errorf("straddling region = %v, want ambiguous", state)
	}
}

func TestIntervalRefinesTape(t *testing.T) {
	far := field.Translate(field.Sphere(0.5), r3.Vec{X: 10})
	f := field.Union(field.Sphere(0.5), far)
	ev := eval.New(f)
	root := ev.RootTape()

	r := region(-1, 1)
	state, refined := ev.Interval(r, root)
	if state != brep.IntervalAmbiguous {
		t.Fatalf("state = %v, want ambiguous", state)
	}
	if refined == nil {
		t.Fatal("expected a refined tape: the distant branch cannot win near the origin")
	}

	// The refined tape must agree with the full function inside r.
	pts := []r3.Vec{{}, {X: 0.5}, {X: -0.3, Y: 0.4}, {Z: 0.9}}
	want := make([]float64, len(pts))
	got := make([]float64, len(pts))
	ev.Values(pts, want, root)
	ev.Values(pts, got, refined)
	for i := range pts {
		if want[i] != got[i] {
			t.Errorf("refined tape diverges at %v: %v != %v", pts[i], got[i], want[i])
		}
	}
}

func TestTapeBaseRewinds(t *testing.T) {
	far := field.Translate(field.Sphere(0.5), r3.Vec{X: 10})
	ev := eval.New(field.Union(field.Sphere(0.5), far))
	root := ev.RootTape()

	_, refined := ev.Interval(region(-1, 1), root)
	if refined == nil {
		t.Fatal("expected refined tape")
	}
	// A region outside the refinement must rewind to the root tape.
	base := refined.Base(region(5, 15))
	if base != root {
		t.Fatal("Base did not rewind to the root tape")
	}
	// A region inside the refinement keeps the refined tape.
	if refined.Base(region(-0.5, 0.5)) != refined {
		t.Fatal("Base rewound past a still-valid tape")
	}
}

func TestValueAndPush(t *testing.T) {
	near := field.Sphere(0.5)
	far := field.Translate(field.Sphere(0.5), r3.Vec{X: 10})
	ev := eval.New(field.Union(near, far))
	root := ev.RootTape()

	p := r3.Vec{X: 0.2}
	v, pushed := ev.ValueAndPush(p, root)
	if want := near.Eval(p); v != want {
		t.Fatalf("value = %v, want %v", v, want)
	}
	if pushed == root {
		t.Fatal("push did not specialise the tape")
	}
	var out [1]float64
	ev.Values([]r3.Vec{p}, out[:], pushed)
	if out[0] != v {
		t.Fatalf("pushed tape value = %v, want %v", out[0], v)
	}
}

func TestDerivs(t *testing.T) {
	ev := eval.New(field.Sphere(0.5))
	pts := []r3.Vec{{X: 0.5}, {Y: -0.5}}
	out := make([]r3.Vec, 2)
	ev.Derivs(pts, out, ev.RootTape())
	if out[0].X <= 0 || out[1].Y >= 0 {
		t.Fatalf("gradients %v do not point outward", out)
	}
}

func TestFeatureAtCrease(t *testing.T) {
	a := field.Box(r3.Vec{X: 1, Y: 1, Z: 1})
	b := field.Translate(field.Box(r3.Vec{X: 1, Y: 1, Z: 1}), r3.Vec{X: 1})
	ev := eval.New(field.Union(a, b))
	gs := ev.Feature(r3.Vec{X: 0.5, Y: 0.1, Z: 0.1}, ev.RootTape())
	if len(gs) < 2 {
		t.Fatalf("crease feature set has %d gradients, want ≥ 2", len(gs))
	}
}

func TestNewPool(t *testing.T) {
	evs := eval.NewPool(field.Sphere(1), 4)
	if len(evs) != 4 {
		t.Fatalf("pool size = %d", len(evs))
	}
	for _, ev := range evs {
		var out [1]float64
		ev.Values([]r3.Vec{{}}, out[:], ev.RootTape())
		if out[0] >= 0 {
			t.Fatal("pool evaluator disagrees with the field")
		}
	}
}
