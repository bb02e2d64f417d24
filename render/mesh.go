package render

import (
	"sync"
	"sync/atomic"

	"gonum.org/v1/gonum/spatial/r3"
)

// Mesh is an indexed triangle mesh. Verts[0] is a zero sentinel so that
// index 0 can mark unassigned slots; every index in Branes is ≥ 1.
type Mesh struct {
	Verts  []r3.Vec
	Branes [][3]uint32
}

// PerThreadBRep buffers the vertices and triangles one meshing worker
// produces. All buffers of a walk share one atomic counter so vertex
// indices are globally unique; Collect later scatters them into a
// single Mesh without synchronisation.
type PerThreadBRep struct {
	Verts   []r3.Vec
	Branes  [][3]uint32
	Indices []uint32

	counter *atomic.Uint32
}

// NewPerThreadBReps returns n buffers sharing a fresh counter seeded at
// 1, reserving global index 0 as the null marker.
func NewPerThreadBReps(n int) []*PerThreadBRep {
	counter := new(atomic.Uint32)
	counter.Store(1)
	out := make([]*PerThreadBRep, n)
	for i := range out {
		out[i] = &PerThreadBRep{counter: counter}
	}
	return out
}

// PushVertex appends a vertex and returns its global index.
func (b *PerThreadBRep) PushVertex(v r3.Vec) uint32 {
	idx := b.counter.Add(1) - 1
	b.Verts = append(b.Verts, v)
	b.Indices = append(b.Indices, idx)
	return idx
}

// PushTriangle appends an index triple.
func (b *PerThreadBRep) PushTriangle(x, y, z uint32) {
	b.Branes = append(b.Branes, [3]uint32{x, y, z})
}

// DebugLine draws a line as a zero-area triangle. It bypasses indexing
// and exists for debugging only.
func (b *PerThreadBRep) DebugLine(p, q r3.Vec) {
	pi := b.PushVertex(p)
	qi := b.PushVertex(q)
	b.Branes = append(b.Branes, [3]uint32{pi, qi, pi})
}

// Collect merges per-thread buffers into the mesh. The children must
// share one counter so their indices exactly fill the range from 1.
// workers limits merge parallelism; 0 uses one goroutine per child.
func (m *Mesh) Collect(children []*PerThreadBRep, workers int) {
	if workers <= 0 {
		workers = len(children)
	}

	numVerts := 1
	numBranes := 0
	offsets := make([]int, len(children))
	for i, c := range children {
		offsets[i] = numBranes
		numVerts += len(c.Verts)
		numBranes += len(c.Branes)
	}
	m.Verts = make([]r3.Vec, numVerts)
	m.Branes = make([][3]uint32, numBranes)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for j := w; j < len(children); j += workers {
				c := children[j]
				for k, idx := range c.Indices {
					m.Verts[idx] = c.Verts[k]
				}
				copy(m.Branes[offsets[j]:], c.Branes)
			}
		}(w)
	}
	wg.Wait()
}

// Triangles expands the index triples into a triangle soup.
func (m *Mesh) Triangles() [][3]r3.Vec {
	out := make([][3]r3.Vec, 0, len(m.Branes))
	for _, t := range m.Branes {
		out = append(out, [3]r3.Vec{m.Verts[t[0]], m.Verts[t[1]], m.Verts[t[2]]})
	}
	return out
}

// Empty reports whether the mesh holds no triangles.
func (m *Mesh) Empty() bool { return m == nil || len(m.Branes) == 0 }
