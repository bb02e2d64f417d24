package dc

import "testing"

// Regenerate the corner-manifoldness table with the edge-merge
// procedure and compare it against the static data: contract cube edges
// whose endpoints share a sign until no contraction applies; the mask
// is manifold iff at most one distinct edge remains.
func TestCornerTableMatchesGenerator(t *testing.T) {
	edgesOf := func(mask int) [][2]int {
		f := make([]bool, 8)
		for i := range f {
			f[i] = mask&(1<<i) != 0
		}
		edges := [][2]int{
			{0, 1}, {0, 2}, {2, 3}, {1, 3},
			{4, 5}, {4, 6}, {6, 7}, {5, 7},
			{0, 4}, {2, 6}, {1, 5}, {3, 7},
		}
		merge := func(a, b int) [][2]int {
			var out [][2]int
			for _, e := range edges {
				x, y := e[0], e[1]
				if x == a {
					x = b
				}
				if y == a {
					y = b
				}
				if x != y {
					out = append(out, [2]int{x, y})
				}
			}
			return out
		}
		for {
			contracted := false
			for _, e := range edges {
				if f[e[0]%8] == f[e[1]%8] {
					edges = merge(e[0], e[1])
					contracted = true
					break
				}
			}
			if !contracted {
				break
			}
		}
		return edges
	}

	for mask := 0; mask < 256; mask++ {
		distinct := map[[2]int]bool{}
		for _, e := range edgesOf(mask) {
			a, b := e[0], e[1]
			if a > b {
				a, b = b, a
			}
			distinct[[2]int{a, b}] = true
		}
		want := len(distinct) <= 1
		if cornerTable[mask] != want {
			t.Errorf("cornerTable[%d] = %v, generator says %v", mask, cornerTable[mask], want)
		}
	}
}

func TestCornerTableSpotChecks(t *testing.T) {
	if !cornersAreManifold(0) || !cornersAreManifold(255) {
		t.Error("uniform masks must be manifold")
	}
	if !cornersAreManifold(1) {
		t.Error("single corner must be manifold")
	}
	// Two diagonally opposite corners touch only at the cell and make
	// two separate patches.
	if cornersAreManifold(1 | 128) {
		t.Error("diagonal corner pair must not be manifold")
	}
}

func TestMarchingTable(t *testing.T) {
	for mask := 0; mask < 256; mask++ {
		n := int(patchCount[mask])
		if mask == 0 || mask == 255 {
			if n != 0 {
				t.Fatalf("mask %d: uniform cell needs %d vertices", mask, n)
			}
			continue
		}
		if n < 1 || n > 4 {
			t.Fatalf("mask %d: vertex count %d outside 1..4", mask, n)
		}
		for e, c := range cubeEdges {
			crossing := (mask>>c[0])&1 != (mask>>c[1])&1
			p := edgePatch[mask][e]
			if crossing && (p < 0 || int(p) >= n) {
				t.Fatalf("mask %d edge %d: crossing edge patch %d out of range", mask, e, p)
			}
			if !crossing && p != -1 {
				t.Fatalf("mask %d edge %d: non-crossing edge assigned patch %d", mask, e, p)
			}
		}
		// Every patch owns at least one edge.
		var seen [4]bool
		for _, p := range edgePatch[mask] {
			if p >= 0 {
				seen[p] = true
			}
		}
		for p := 0; p < n; p++ {
			if !seen[p] {
				t.Fatalf("mask %d: patch %d owns no edge", mask, p)
			}
		}
	}
}

// Manifold masks produce a single patch, so collapsed cells can carry
// one vertex.
func TestManifoldMasksHaveOnePatch(t *testing.T) {
	for mask := 1; mask < 255; mask++ {
		if cornersAreManifold(uint8(mask)) && patchCount[mask] != 1 {
			t.Errorf("manifold mask %d has %d patches", mask, patchCount[mask])
		}
	}
}

func TestEdgeIndex(t *testing.T) {
	for e, c := range cubeEdges {
		if edgeIndex[c[0]][c[1]] != int8(e) || edgeIndex[c[1]][c[0]] != int8(e) {
			t.Fatalf("edge %d not symmetric", e)
		}
	}
	if edgeIndex[0][3] != -1 || edgeIndex[0][7] != -1 {
		t.Error("diagonals must not be edges")
	}
}

func TestAxisCycle(t *testing.T) {
	if AxisX.Q() != AxisY || AxisY.Q() != AxisZ || AxisZ.Q() != AxisX {
		t.Error("Q does not cycle X→Y→Z")
	}
	if AxisX.R() != AxisZ || AxisY.R() != AxisX || AxisZ.R() != AxisY {
		t.Error("R is not Q∘Q")
	}
}
