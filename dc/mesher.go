package dc

import (
	"runtime"

	"github.com/implicitcad/brep"
	"gonum.org/v1/gonum/spatial/r3"
)

// BRepSink receives the vertices and triangles a mesher emits. Vertex
// indices are global across all sinks of a walk; implementations draw
// them from a shared atomic counter.
type BRepSink interface {
	PushVertex(v r3.Vec) uint32
	PushTriangle(a, b, c uint32)
}

// DCMesher emits 1–2 triangles per sign-changing minimal dual edge,
// connecting the QEF vertices of the four cells around the edge.
type DCMesher struct {
	m BRepSink
}

// NewDCMesher returns a mesher writing to m.
func NewDCMesher(m BRepSink) *DCMesher {
	return &DCMesher{m: m}
}

// NeedsTopEdges is false for dual contouring: the outer boundary of the
// region produces no dual edges of its own.
func (d *DCMesher) NeedsTopEdges() bool { return false }

// Load inspects the edge shared by four cells along axis a and emits
// triangles when the function changes sign across it.
func (d *DCMesher) Load(a Axis, ts [4]*Cell) {
	// No face is produced unless every cell straddles the surface.
	for _, t := range ts {
		if t.typ != brep.IntervalAmbiguous {
			return
		}
	}
	for _, t := range ts {
		if t.leaf == nil {
			panic("dc: ambiguous cell without leaf payload")
		}
	}

	// The edge may span multiple octree levels; only the smallest cell
	// among the four sees the true shared edge, so its corners are the
	// authoritative sign test.
	index := 0
	for i := 1; i < 4; i++ {
		if ts[i].leaf.level < ts[index].leaf.level {
			index = i
		}
	}

	q, r := uint8(a.Q()), uint8(a.R())
	corners := [4]uint8{q | r, r, q, 0}

	lo := ts[index].cornerState(corners[index])
	hi := ts[index].cornerState(corners[index] | uint8(a))
	if lo == hi {
		return
	}
	// Polarity determines the winding of the quad.
	d.load(a, ts, lo == brep.IntervalFilled)
}

func (d *DCMesher) load(a Axis, ts [4]*Cell, dir bool) {
	q, r := uint8(a.Q()), uint8(a.R())
	aa := uint8(a)

	// Unpack the edge's corner pair within each cell into edge indices.
	ev := [4][2]uint8{
		{q | r, q | r | aa},
		{r, r | aa},
		{q, q | aa},
		{0, aa},
	}
	var es [4]int8
	for i := range ev {
		es[i] = edgeIndex[ev[i][0]][ev[i][1]]
		if es[i] < 0 {
			panic("dc: corner pair is not a cube edge")
		}
	}

	var vs [4]uint32
	var vp [4]r3.Vec
	for i, t := range ts {
		l := t.leaf

		// Collapsed cells carry a single vertex; minimum-size cells may
		// be non-manifold and use the patch the marching table assigns
		// to this edge.
		vi := 0
		if l.level == 0 {
			vi = int(edgePatch[l.mask][es[i]])
			if vi < 0 {
				panic("dc: sign-changing edge without marching-table patch")
			}
		} else if l.vertCount != 1 {
			panic("dc: collapsed leaf with multiple vertices")
		}

		vs[i] = d.vertexIndex(l, vi)
		vp[i] = l.verts[vi]
	}

	if !dir {
		vs[1], vs[2] = vs[2], vs[1]
		vp[1], vp[2] = vp[2], vp[1]
	}

	// Corner normals of the quad, right-handed in the winding
	//     2---------3
	//     |         |
	//     0---------1
	norm := func(a, b, c int) r3.Vec {
		return r3.Unit(r3.Cross(r3.Sub(vp[b], vp[a]), r3.Sub(vp[c], vp[a])))
	}
	n0 := norm(0, 1, 2)
	n1 := norm(1, 3, 0)
	n2 := norm(2, 0, 3)
	n3 := norm(3, 2, 1)

	// Split along the diagonal whose endpoint normals agree more; this
	// keeps the two triangles from folding over each other.
	if r3.Dot(n0, n3) > r3.Dot(n1, n2) {
		d.pushTriangle(vs[0], vs[1], vs[2])
		d.pushTriangle(vs[2], vs[1], vs[3])
	} else {
		d.pushTriangle(vs[0], vs[1], vs[3])
		d.pushTriangle(vs[0], vs[3], vs[2])
	}
}

// vertexIndex returns the global index of a leaf vertex, publishing the
// vertex to the sink the first time any worker needs it. The slot is
// claimed with a compare-and-swap so concurrent walkers agree on one
// index without leaving holes in the global range.
func (d *DCMesher) vertexIndex(l *leaf, vi int) uint32 {
	idx := l.index[vi].Load()
	if idx == 0 && l.index[vi].CompareAndSwap(0, indexPending) {
		idx = d.m.PushVertex(l.verts[vi])
		l.index[vi].Store(idx)
		return idx
	}
	for idx == 0 || idx == indexPending {
		runtime.Gosched()
		idx = l.index[vi].Load()
	}
	return idx
}

// pushTriangle drops degenerate triangles that collapse to a line.
func (d *DCMesher) pushTriangle(a, b, c uint32) {
	if a != b && b != c && a != c {
		d.m.PushTriangle(a, b, c)
	}
}
