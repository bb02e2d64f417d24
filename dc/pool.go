package dc

import "github.com/implicitcad/brep"

// pool is a per-worker freelist allocator for cells and leaves. Workers
// allocate without synchronisation; on exit the pool moves to the Root,
// which keeps reclaimed objects alive until it is dropped.
type pool struct {
	cells  []*Cell
	leaves []*leaf
}

func newPool() *pool {
	return &pool{}
}

func (p *pool) cell(parent *Cell, idx int, r brep.Region) *Cell {
	var c *Cell
	if n := len(p.cells); n > 0 {
		c = p.cells[n-1]
		p.cells = p.cells[:n-1]
	} else {
		c = new(Cell)
	}
	c.parent = parent
	c.parentIndex = idx
	c.region = r
	c.typ = brep.IntervalUnknown
	for i := range c.children {
		c.children[i].Store(nil)
	}
	c.leaf = nil
	c.pending.Store(1 << 3)
	c.leafReady.Store(false)
	return c
}

func (p *pool) leaf() *leaf {
	var l *leaf
	if n := len(p.leaves); n > 0 {
		l = p.leaves[n-1]
		p.leaves = p.leaves[:n-1]
	} else {
		l = new(leaf)
	}
	l.reset()
	return l
}

// putCell returns a childless cell to the freelist.
func (p *pool) putCell(c *Cell) {
	if c.leaf != nil {
		p.putLeaf(c.leaf)
		c.leaf = nil
	}
	c.parent = nil
	p.cells = append(p.cells, c)
}

func (p *pool) putLeaf(l *leaf) {
	p.leaves = append(p.leaves, l)
}
