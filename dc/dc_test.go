package dc

import (
	"sync/atomic"
	"testing"

	"github.com/implicitcad/brep"
	"github.com/implicitcad/brep/eval"
	"github.com/implicitcad/brep/field"
	"gonum.org/v1/gonum/spatial/r3"
)

type testSink struct {
	counter *atomic.Uint32
	verts   []r3.Vec
	indices []uint32
	tris    [][3]uint32
}

func newTestSinks(n int) []*testSink {
	counter := new(atomic.Uint32)
	counter.Store(1)
	out := make([]*testSink, n)
	for i := range out {
		out[i] = &testSink{counter: counter}
	}
	return out
}

func (s *testSink) PushVertex(v r3.Vec) uint32 {
	idx := s.counter.Add(1) - 1
	s.verts = append(s.verts, v)
	s.indices = append(s.indices, idx)
	return idx
}

func (s *testSink) PushTriangle(a, b, c uint32) {
	s.tris = append(s.tris, [3]uint32{a, b, c})
}

func sphereSettings(workers int) brep.Settings {
	s := brep.DefaultSettings(0.1)
	s.Workers = workers
	return s
}

func unitRegion() brep.Region {
	return brep.NewRegion(r3.Vec{X: -1, Y: -1, Z: -1}, r3.Vec{X: 1, Y: 1, Z: 1})
}

func buildSphere(t *testing.T, workers int) (*Root, brep.Settings) {
	t.Helper()
	s := sphereSettings(workers)
	if err := s.Validate(unitRegion()); err != nil {
		t.Fatal(err)
	}
	evs := eval.NewPool(field.Sphere(0.5), workers)
	root := Build(evs, unitRegion(), &s)
	if root.Empty() {
		t.Fatal("sphere build returned empty root")
	}
	return root, s
}

func TestBuildSphereTree(t *testing.T) {
	root, _ := buildSphere(t, 4)

	if !root.cell.isBranch() {
		t.Fatal("sphere root is not a branch")
	}
	ambiguous := 0
	root.cell.walk(func(c *Cell) {
		switch c.typ {
		case brep.IntervalUnknown:
			t.Fatal("cell left in unknown state")
		case brep.IntervalAmbiguous:
			if c.isBranch() {
				return
			}
			ambiguous++
			l := c.leaf
			if l == nil {
				t.Fatal("ambiguous leaf without payload")
			}
			if l.vertCount < 1 || l.vertCount > 4 {
				t.Fatalf("leaf vertex count %d", l.vertCount)
			}
			if l.level > 0 && l.vertCount != 1 {
				t.Fatal("collapsed leaf with multiple vertices")
			}
			for v := 0; v < l.vertCount; v++ {
				if !c.region.Contains(l.verts[v]) {
					t.Fatalf("vertex %v outside its cell %v..%v", l.verts[v], c.region.Min, c.region.Max)
				}
			}
		default:
			if c.leaf != nil {
				t.Fatal("uniform cell with leaf payload")
			}
		}
	})
	if ambiguous == 0 {
		t.Fatal("sphere tree has no surface leaves")
	}
}

func TestBuildEmptyRegion(t *testing.T) {
	s := sphereSettings(2)
	region := brep.NewRegion(r3.Vec{X: 2, Y: 2, Z: 2}, r3.Vec{X: 3, Y: 3, Z: 3})
	if err := s.Validate(region); err != nil {
		t.Fatal(err)
	}
	evs := eval.NewPool(field.Sphere(0.1), 2)
	root := Build(evs, region, &s)
	if root.Empty() {
		t.Fatal("build returned empty root without cancellation")
	}
	if root.cell.isBranch() || root.cell.typ != brep.IntervalEmpty {
		t.Fatalf("far region root type = %v, want an empty leaf", root.cell.typ)
	}
}

func TestBuildCancelled(t *testing.T) {
	s := sphereSettings(2)
	if err := s.Validate(unitRegion()); err != nil {
		t.Fatal(err)
	}
	s.Cancel.Store(true)
	evs := eval.NewPool(field.Sphere(0.5), 2)
	root := Build(evs, unitRegion(), &s)
	if !root.Empty() {
		t.Fatal("cancelled build returned a tree")
	}
}

type emptyVol struct{}

func (emptyVol) Check(brep.Region) brep.Interval { return brep.IntervalEmpty }
func (emptyVol) Child(int) brep.VolumePruner     { return emptyVol{} }

func TestVolumePrunerShortCircuits(t *testing.T) {
	s := sphereSettings(2)
	s.Volume = emptyVol{}
	if err := s.Validate(unitRegion()); err != nil {
		t.Fatal(err)
	}
	evs := eval.NewPool(field.Sphere(0.5), 2)
	root := Build(evs, unitRegion(), &s)
	if root.cell.typ != brep.IntervalEmpty {
		t.Fatalf("pruned root type = %v, want empty", root.cell.typ)
	}
}

func TestWalkSphere(t *testing.T) {
	const workers = 4
	root, s := buildSphere(t, workers)

	sinks := newTestSinks(workers)
	Walk(root, &s, func(i int) Mesher { return NewDCMesher(sinks[i]) })

	total := uint32(1)
	tris := 0
	for _, sink := range sinks {
		total += uint32(len(sink.verts))
		tris += len(sink.tris)
	}
	if tris == 0 {
		t.Fatal("walk emitted no triangles")
	}
	if got := sinks[0].counter.Load(); got != total {
		t.Fatalf("counter %d does not match %d pushed vertices", got, total-1)
	}
	for _, sink := range sinks {
		for _, tri := range sink.tris {
			if tri[0] == tri[1] || tri[1] == tri[2] || tri[0] == tri[2] {
				t.Fatal("degenerate triangle emitted")
			}
			for _, idx := range tri {
				if idx == 0 || idx >= total {
					t.Fatalf("triangle index %d outside 1..%d", idx, total-1)
				}
			}
		}
	}
}

func TestWalkEmptyTree(t *testing.T) {
	s := sphereSettings(2)
	region := brep.NewRegion(r3.Vec{X: 2, Y: 2, Z: 2}, r3.Vec{X: 3, Y: 3, Z: 3})
	if err := s.Validate(region); err != nil {
		t.Fatal(err)
	}
	evs := eval.NewPool(field.Sphere(0.1), 2)
	root := Build(evs, region, &s)

	sinks := newTestSinks(2)
	Walk(root, &s, func(i int) Mesher { return NewDCMesher(sinks[i]) })
	for _, sink := range sinks {
		if len(sink.tris) != 0 || len(sink.verts) != 0 {
			t.Fatal("empty tree emitted geometry")
		}
	}
}

func TestTicksBelow(t *testing.T) {
	if ticksBelow(0) != 0 {
		t.Error("level 0 has no cells below")
	}
	if ticksBelow(1) != 8 {
		t.Errorf("ticksBelow(1) = %d, want 8", ticksBelow(1))
	}
	if ticksBelow(2) != 72 {
		t.Errorf("ticksBelow(2) = %d, want 72", ticksBelow(2))
	}
}
