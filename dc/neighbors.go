package dc

// neighbors holds the six face-adjacent cells of a cell at the same or
// a coarser level. Neighbor sets are computed lazily from the parent's
// set and the child index while a task is claimed, so sibling pointers
// published by other workers are as fresh as possible.
type neighbors struct {
	// faces is indexed by 2*axis + dir with dir 0 = positive, 1 =
	// negative along the axis.
	faces [6]*Cell
}

func faceSlot(a Axis, negative bool) int {
	slot := 0
	switch a {
	case AxisY:
		slot = 2
	case AxisZ:
		slot = 4
	}
	if negative {
		slot++
	}
	return slot
}

// push derives the neighbor set of the childIndex-th child of parent
// from the parent's own neighbor set.
func (n neighbors) push(childIndex int, parent *Cell) neighbors {
	var out neighbors
	ci := uint8(childIndex)
	for _, a := range axes {
		if ci&uint8(a) == 0 {
			// Positive neighbor is the sibling across the axis;
			// negative neighbor comes from the parent's set.
			out.faces[faceSlot(a, false)] = parent.children[ci|uint8(a)].Load()
			out.faces[faceSlot(a, true)] = n.descend(faceSlot(a, true), ci|uint8(a))
		} else {
			out.faces[faceSlot(a, true)] = parent.children[ci&^uint8(a)].Load()
			out.faces[faceSlot(a, false)] = n.descend(faceSlot(a, false), ci&^uint8(a))
		}
	}
	return out
}

// descend refines the parent's neighbor in a direction to the child
// cell mirrored across the shared face, when that neighbor is a branch.
func (n neighbors) descend(slot int, mirrored uint8) *Cell {
	pn := n.faces[slot]
	if pn == nil {
		return nil
	}
	if ch := pn.children[mirrored].Load(); ch != nil {
		return ch
	}
	return pn
}

// cornerValue returns the already-evaluated function value at corner i
// of cell c, found in a finished sibling leaf of the same size. Only
// siblings are consulted: they cannot be reclaimed while c is still
// evaluating, because their shared parent collects strictly after c
// finishes.
func (n neighbors) cornerValue(c *Cell, i uint8) (float64, bool) {
	for _, a := range axes {
		var nb *Cell
		if i&uint8(a) != 0 {
			nb = n.faces[faceSlot(a, false)]
		} else {
			nb = n.faces[faceSlot(a, true)]
		}
		if nb == nil || nb.parent != c.parent || nb.region.Level != c.region.Level {
			continue
		}
		if !nb.leafReady.Load() {
			continue
		}
		if l := nb.leaf; l != nil {
			return l.corners[i^uint8(a)], true
		}
	}
	return 0, false
}
