package dc

import (
	"sync"
	"sync/atomic"

	"github.com/implicitcad/brep"
	"gonum.org/v1/gonum/spatial/r3"
)

// Cell is an octree node: either an interior branch with 8 children or
// a leaf. Ambiguous leaves carry a leaf payload; empty and filled
// leaves carry only their type. Child pointers are atomic because
// sibling workers resolve their neighbor sets from a parent's children
// array while the owner is still populating it.
type Cell struct {
	parent      *Cell
	parentIndex int
	region      brep.Region
	typ         brep.Interval
	children    [8]atomic.Pointer[Cell]
	// pending counts unfinished children. It is seeded at 8 for the
	// build phase and re-seeded before the dual walk; the goroutine
	// that drives it to zero owns the cell's bottom-up step.
	pending atomic.Int32
	leaf    *leaf
	// leafReady publishes the leaf payload to sibling workers that
	// reuse corner values.
	leafReady atomic.Bool
}

// leaf is the payload of an ambiguous cell.
type leaf struct {
	// level is the collapsed-from level: 0 for minimum-size cells,
	// the cell's region level for collapsed interior nodes.
	level     int
	mask      uint8
	vertCount int
	verts     [4]r3.Vec
	rank      [4]int
	// index holds the global mesh index assigned to each vertex during
	// the walk; 0 means unassigned, indexPending marks an assignment in
	// flight on another worker.
	index   [4]atomic.Uint32
	qef     [4]qef
	err     float64
	corners [8]float64
}

const indexPending = ^uint32(0)

func (l *leaf) reset() {
	l.level = 0
	l.mask = 0
	l.vertCount = 0
	l.err = 0
	for i := range l.qef {
		l.qef[i].reset()
		l.verts[i] = r3.Vec{}
		l.rank[i] = 0
		l.index[i].Store(0)
	}
	for i := range l.corners {
		l.corners[i] = 0
	}
}

func (c *Cell) isBranch() bool { return c.children[0].Load() != nil }

// child returns the i-th child for branches and the cell itself for
// leaves, so dual recursion can descend past coarse cells.
func (c *Cell) child(i uint8) *Cell {
	if ch := c.children[i].Load(); ch != nil {
		return ch
	}
	return c
}

// Region returns the cell's region.
func (c *Cell) Region() brep.Region { return c.region }

// Type returns the cell's interval state.
func (c *Cell) Type() brep.Interval { return c.typ }

// cornerState returns the sign at the i-th corner: the leaf mask bit
// for ambiguous cells, the uniform type otherwise.
func (c *Cell) cornerState(i uint8) brep.Interval {
	if c.typ != brep.IntervalAmbiguous {
		return c.typ
	}
	if c.leaf == nil {
		panic("dc: ambiguous cell without leaf payload")
	}
	if c.leaf.mask&(1<<i) != 0 {
		return brep.IntervalFilled
	}
	return brep.IntervalEmpty
}

// resetPending re-seeds the pending counters of the whole subtree in
// preparation for the dual walk.
func (c *Cell) resetPending() {
	c.pending.Store(1 << 3)
	if c.isBranch() {
		for i := range c.children {
			c.children[i].Load().resetPending()
		}
	}
}

// walk visits every cell of the subtree.
func (c *Cell) walk(fn func(*Cell)) {
	fn(c)
	if c.isBranch() {
		for i := range c.children {
			c.children[i].Load().walk(fn)
		}
	}
}

// emptyCell is the sentinel used to pad top edges of the dual walk.
var emptyCell = &Cell{typ: brep.IntervalEmpty}

// Root owns a finished octree and the object pools of the workers that
// built it.
type Root struct {
	cell  *Cell
	mu    sync.Mutex
	pools []*pool
}

// Empty reports whether the root holds no tree (cancelled build).
func (r *Root) Empty() bool { return r == nil || r.cell == nil }

// Cell returns the top cell of the tree, nil for an empty root.
func (r *Root) Cell() *Cell { return r.cell }

// Size returns the number of cells in the tree.
func (r *Root) Size() uint64 {
	if r.Empty() {
		return 0
	}
	var n uint64
	r.cell.walk(func(*Cell) { n++ })
	return n
}

// claim splices a worker's object pool into the root on worker exit.
func (r *Root) claim(p *pool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pools = append(r.pools, p)
}
