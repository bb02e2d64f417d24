// Package dc builds adaptive octrees over implicit functions and
// extracts triangle meshes from them by dual contouring.
//
// The pipeline is two fork-join phases over the same worker count:
// Build subdivides a region top-down under interval pruning and collects
// bottom-up, collapsing branches where a quadratic-error fit and a
// manifoldness gate permit; Walk then traverses the dual grid of the
// finished octree and hands every minimal sign-changing edge to a
// mesher.
package dc

// Axis identifies a cube axis by its corner-index bit.
type Axis uint8

const (
	AxisX Axis = 1
	AxisY Axis = 2
	AxisZ Axis = 4
)

// Q returns the next axis in cyclic X→Y→Z order.
func (a Axis) Q() Axis {
	if a == AxisZ {
		return AxisX
	}
	return a << 1
}

// R returns the remaining axis, Q(Q(a)).
func (a Axis) R() Axis { return a.Q().Q() }

// axes in canonical order.
var axes = [3]Axis{AxisX, AxisY, AxisZ}

// cubeEdges lists the 12 cube edges as corner pairs, X edges first,
// then Y, then Z. The order fixes edge indices for the marching table.
var cubeEdges = [12][2]uint8{
	{0, 1}, {2, 3}, {4, 5}, {6, 7},
	{0, 2}, {1, 3}, {4, 6}, {5, 7},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// edgeIndex maps an unordered corner pair to its edge index, -1 for
// pairs that do not form an edge.
var edgeIndex [8][8]int8

func init() {
	for a := range edgeIndex {
		for b := range edgeIndex[a] {
			edgeIndex[a][b] = -1
		}
	}
	for e, c := range cubeEdges {
		edgeIndex[c[0]][c[1]] = int8(e)
		edgeIndex[c[1]][c[0]] = int8(e)
	}
}
