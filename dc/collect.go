package dc

import (
	"github.com/implicitcad/brep"
)

// collectChildren runs the bottom-up step for a cell. It returns false
// unless the caller finished the cell's last outstanding child; the
// atomic pending counter guarantees at most one collector per cell.
// When it returns true the cell is complete: promoted to a uniform
// leaf, collapsed into a single-vertex leaf, or left as a branch.
func (c *Cell) collectChildren(ev brep.Evaluator, tape brep.Tape, pool *pool, maxErr float64) bool {
	if c.pending.Add(-1) != 0 {
		return false
	}

	var cs [8]*Cell
	for i := range c.children {
		cs[i] = c.children[i].Load()
	}
	for _, ch := range cs {
		if ch.isBranch() {
			c.typ = brep.IntervalAmbiguous
			return true
		}
	}

	empty, filled := 0, 0
	for _, ch := range cs {
		switch ch.typ {
		case brep.IntervalEmpty:
			empty++
		case brep.IntervalFilled:
			filled++
		case brep.IntervalUnknown:
			panic("dc: child finished in unknown state")
		}
	}
	if empty == len(cs) || filled == len(cs) {
		c.typ = brep.IntervalEmpty
		if filled == len(cs) {
			c.typ = brep.IntervalFilled
		}
		c.freeChildren(pool)
		return true
	}

	c.typ = brep.IntervalAmbiguous

	// Candidate collapse: build the corner mask the merged leaf would
	// have and run the topology gates.
	var corners [8]brep.Interval
	var mask uint8
	for i := uint8(0); i < 8; i++ {
		corners[i] = cs[i].cornerState(i)
		if corners[i] == brep.IntervalFilled {
			mask |= 1 << i
		}
	}
	if !cornersAreManifold(mask) || !leafsAreManifold(&cs, &corners) {
		return true
	}

	// Fuse every child constraint into one QEF and test the residual.
	var fused qef
	for _, ch := range cs {
		if ch.leaf == nil {
			continue
		}
		for v := 0; v < ch.leaf.vertCount; v++ {
			fused.add(&ch.leaf.qef[v])
		}
	}
	pos, residual, rank := fused.solve(c.region.Center())
	if residual > maxErr {
		return true
	}

	l := pool.leaf()
	l.level = c.region.Level
	l.mask = mask
	l.vertCount = 1
	l.verts[0] = clampToRegion(pos, c.region)
	l.rank[0] = rank
	l.err = residual
	l.qef[0] = fused

	c.freeChildren(pool)
	c.leaf = l
	return true
}

func (c *Cell) freeChildren(pool *pool) {
	for i := range c.children {
		pool.putCell(c.children[i].Load())
		c.children[i].Store(nil)
	}
}

// leafsAreManifold applies the Ju et al. 2002 sign-consistency tests to
// a set of eight leaf children: the sign in the middle of every coarse
// edge, face and the cube centre must agree with the sign of one of the
// corresponding coarse corners.
func leafsAreManifold(cs *[8]*Cell, corners *[8]brep.Interval) bool {
	const x, y, z = uint8(AxisX), uint8(AxisY), uint8(AxisZ)
	st := func(cell, corner uint8) brep.Interval { return cs[cell].cornerState(corner) }

	edgesSafe := (st(0, z) == corners[0] || st(0, z) == corners[z]) &&
		(st(0, x) == corners[0] || st(0, x) == corners[x]) &&
		(st(0, y) == corners[0] || st(0, y) == corners[y]) &&

		(st(x, x|y) == corners[x] || st(x, x|y) == corners[x|y]) &&
		(st(x, x|z) == corners[x] || st(x, x|z) == corners[x|z]) &&

		(st(y, y|x) == corners[y] || st(y, y|x) == corners[y|x]) &&
		(st(y, y|z) == corners[y] || st(y, y|z) == corners[y|z]) &&

		(st(x|y, x|y|z) == corners[x|y] || st(x|y, x|y|z) == corners[x|y|z]) &&

		(st(z, z|x) == corners[z] || st(z, z|x) == corners[z|x]) &&
		(st(z, z|y) == corners[z] || st(z, z|y) == corners[z|y]) &&

		(st(z|x, z|x|y) == corners[z|x] || st(z|x, z|x|y) == corners[z|x|y]) &&

		(st(z|y, z|y|x) == corners[z|y] || st(z|y, z|y|x) == corners[z|y|x])

	facesSafe := (st(0, x|z) == corners[0] || st(0, x|z) == corners[x] ||
		st(0, x|z) == corners[z] || st(0, x|z) == corners[x|z]) &&
		(st(0, y|z) == corners[0] || st(0, y|z) == corners[y] ||
			st(0, y|z) == corners[z] || st(0, y|z) == corners[y|z]) &&
		(st(0, y|x) == corners[0] || st(0, y|x) == corners[y] ||
			st(0, y|x) == corners[x] || st(0, y|x) == corners[y|x]) &&

		(st(x|y|z, x) == corners[x] || st(x|y|z, x) == corners[x|z] ||
			st(x|y|z, x) == corners[x|y] || st(x|y|z, x) == corners[x|y|z]) &&
		(st(x|y|z, y) == corners[y] || st(x|y|z, y) == corners[y|z] ||
			st(x|y|z, y) == corners[y|x] || st(x|y|z, y) == corners[x|y|z]) &&
		(st(x|y|z, z) == corners[z] || st(x|y|z, z) == corners[z|y] ||
			st(x|y|z, z) == corners[z|x] || st(x|y|z, z) == corners[x|y|z])

	centerSafe := st(0, x|y|z) == corners[0] || st(0, x|y|z) == corners[x] ||
		st(0, x|y|z) == corners[y] || st(0, x|y|z) == corners[x|y] ||
		st(0, x|y|z) == corners[z] || st(0, x|y|z) == corners[z|x] ||
		st(0, x|y|z) == corners[z|y] || st(0, x|y|z) == corners[z|x|y]

	return edgesSafe && facesSafe && centerSafe
}
