package dc

import (
	"sync"
	"sync/atomic"

	"github.com/implicitcad/brep"
)

// Mesher consumes minimal-level dual edges. Load is called once per
// 4-cell tuple around a tree edge along the given axis. NeedsTopEdges
// reports whether the walker must also present the tree's outer edges
// padded with empty sentinel cells; dual contouring does not need them.
type Mesher interface {
	Load(a Axis, ts [4]*Cell)
	NeedsTopEdges() bool
}

// Walk traverses the dual grid of a finished octree, handing every
// minimal dual edge to the mesher built for the visiting worker. Cells
// are visited exactly once: a cell's dual work runs on the worker that
// finishes its last child, tracked by fresh pending counters.
func Walk(root *Root, s *brep.Settings, factory func(worker int) Mesher) {
	if root.Empty() {
		return
	}
	root.cell.resetPending()

	if s.Progress != nil {
		s.Progress.NextPhase(root.Size() + 1)
	}

	tasks := make(chan *Cell, s.Workers)
	tasks <- root.cell

	var done atomic.Bool
	var wg sync.WaitGroup
	meshers := make([]Mesher, s.Workers)
	for i := 0; i < s.Workers; i++ {
		meshers[i] = factory(i)
		wg.Add(1)
		go func(m Mesher) {
			defer wg.Done()
			walkRun(m, tasks, s, &done)
		}(meshers[i])
	}
	wg.Wait()

	if s.Cancelled() {
		return
	}
	if meshers[0].NeedsTopEdges() {
		handleTopEdges(root.cell, meshers[0])
	}
}

func walkRun(m Mesher, tasks chan *Cell, s *brep.Settings, done *atomic.Bool) {
	defer done.Store(true)

	var local []*Cell
	for !done.Load() && !s.Cancelled() {
		var t *Cell
		if n := len(local); n > 0 {
			t = local[n-1]
			local = local[:n-1]
		} else {
			select {
			case t = <-tasks:
			default:
			}
		}
		if t == nil {
			offerWait(s)
			continue
		}

		if t.isBranch() {
			for i := range t.children {
				c := t.children[i].Load()
				select {
				case tasks <- c:
				default:
					local = append(local, c)
				}
			}
			continue
		}

		// A singleton tree has no parent and produces no dual edges.
		if t.parent == nil {
			break
		}

		if s.Progress != nil {
			s.Progress.Tick(1)
		}

		for t = t.parent; t != nil && t.pending.Add(-1) == 0; t = t.parent {
			work(t, m)
			if s.Progress != nil {
				s.Progress.Tick(1)
			}
		}
		if t == nil {
			break
		}
	}
}

// work runs the dual procedures for one branch cell: the face procedure
// on every child pair (4 per axis) and the edge procedure on both child
// quadruples per axis.
func work(t *Cell, m Mesher) {
	for _, a := range axes {
		callFace(a, t, m)
	}
	for _, a := range axes {
		callEdge(a, t, m)
	}
}

func callFace(a Axis, t *Cell, m Mesher) {
	q, r := uint8(a.Q()), uint8(a.R())
	for _, k := range [4]uint8{0, q, r, q | r} {
		face(a, [2]*Cell{t.child(k), t.child(k | uint8(a))}, m)
	}
}

func callEdge(a Axis, t *Cell, m Mesher) {
	q, r := uint8(a.Q()), uint8(a.R())
	for _, o := range [2]uint8{0, uint8(a)} {
		edge(a, [4]*Cell{
			t.child(o),
			t.child(q | o),
			t.child(r | o),
			t.child(q | r | o),
		}, m)
	}
}

// face recurses through the pair of cells sharing a face perpendicular
// to a. Faces generate no geometry themselves; they exist to reach the
// finer dual edges spanning the shared face.
func face(a Axis, ts [2]*Cell, m Mesher) {
	if !ts[0].isBranch() && !ts[1].isBranch() {
		return
	}
	q, r := uint8(a.Q()), uint8(a.R())
	aa := uint8(a)

	for _, k := range [4]uint8{0, q, r, q | r} {
		face(a, [2]*Cell{ts[0].child(k | aa), ts[1].child(k)}, m)
	}

	edge(a.Q(), [4]*Cell{ts[0].child(aa), ts[0].child(r | aa), ts[1].child(0), ts[1].child(r)}, m)
	edge(a.Q(), [4]*Cell{ts[0].child(q | aa), ts[0].child(q | r | aa), ts[1].child(q), ts[1].child(q | r)}, m)

	edge(a.R(), [4]*Cell{ts[0].child(aa), ts[1].child(0), ts[0].child(aa | q), ts[1].child(q)}, m)
	edge(a.R(), [4]*Cell{ts[0].child(r | aa), ts[1].child(r), ts[0].child(r | aa | q), ts[1].child(r | q)}, m)
}

// edge recurses through the four cells meeting at a tree edge along a,
// invoking the mesher once the minimal level is reached.
func edge(a Axis, ts [4]*Cell, m Mesher) {
	anyBranch := false
	for _, t := range ts {
		if t.isBranch() {
			anyBranch = true
			break
		}
	}
	if !anyBranch {
		m.Load(a, ts)
		return
	}
	q, r := uint8(a.Q()), uint8(a.R())
	aa := uint8(a)
	edge(a, [4]*Cell{ts[0].child(q | r), ts[1].child(r), ts[2].child(q), ts[3].child(0)}, m)
	edge(a, [4]*Cell{ts[0].child(q | r | aa), ts[1].child(r | aa), ts[2].child(q | aa), ts[3].child(aa)}, m)
}

// handleTopEdges pads the outside of the tree with empty sentinel cells
// and walks the outer faces and edges. Only meshers that report
// NeedsTopEdges use this; dual contouring produces no geometry at the
// region boundary beyond what the interior walk emits.
func handleTopEdges(t *Cell, m Mesher) {
	e := emptyCell

	for i := 0; i < 4; i++ {
		ts := [4]*Cell{e, e, e, e}
		ts[i] = t
		edge(AxisX, ts, m)
		edge(AxisY, ts, m)
		edge(AxisZ, ts, m)
	}
	for i := 0; i < 2; i++ {
		ts := [2]*Cell{e, e}
		ts[i] = t
		face(AxisX, ts, m)
		face(AxisY, ts, m)
		face(AxisZ, ts, m)
	}
}
