package dc

// Marching table: for every 8-corner sign mask, the number of surface
// vertices (patches) the cell needs and the patch owning each
// sign-crossing edge. Patches are the connected components of filled
// corners under cube-edge adjacency; a crossing edge belongs to the
// component of its filled endpoint. Built once at init.
var (
	patchCount [256]uint8
	// edgePatch[mask][edge] is the patch index for a crossing edge,
	// -1 when the edge has no sign change under mask.
	edgePatch [256][12]int8
)

func init() {
	for mask := 0; mask < 256; mask++ {
		for e := range edgePatch[mask] {
			edgePatch[mask][e] = -1
		}
		filled := func(c uint8) bool { return mask&(1<<c) != 0 }

		// Union filled corners across shared cube edges.
		var comp [8]int8
		for i := range comp {
			comp[i] = int8(i)
		}
		find := func(i int8) int8 {
			for comp[i] != i {
				i = comp[i]
			}
			return i
		}
		for _, e := range cubeEdges {
			if filled(e[0]) && filled(e[1]) {
				a, b := find(int8(e[0])), find(int8(e[1]))
				if a != b {
					comp[b] = a
				}
			}
		}

		// Number components in ascending root order.
		var patchOf [8]int8
		for i := range patchOf {
			patchOf[i] = -1
		}
		n := int8(0)
		for i := uint8(0); i < 8; i++ {
			if !filled(i) {
				continue
			}
			root := find(int8(i))
			if patchOf[root] == -1 {
				patchOf[root] = n
				n++
			}
		}
		patchCount[mask] = uint8(n)
		if mask == 255 {
			patchCount[mask] = 0
			continue
		}

		for e, c := range cubeEdges {
			if filled(c[0]) != filled(c[1]) {
				in := c[0]
				if filled(c[1]) {
					in = c[1]
				}
				edgePatch[mask][e] = patchOf[find(int8(in))]
			}
		}
	}
}

// cornersAreManifold reports whether the dual-contour output for an
// 8-corner sign mask is a single-component 2-manifold patch. The table
// is the output of the edge-merge procedure: repeatedly contract cube
// edges whose endpoints share a sign; the mask is manifold iff at most
// one distinct edge survives.
func cornersAreManifold(mask uint8) bool {
	return cornerTable[mask]
}

var cornerTable = [256]bool{
	true, true, true, true, true, true, false, true, true, false, true, true, true, true, true, true,
	true, true, false, true, false, true, false, true, false, false, false, true, false, true, false, true,
	true, false, true, true, false, false, false, true, false, false, true, true, false, false, true, true,
	true, true, true, true, false, true, false, true, false, false, true, true, false, false, false, true,
	true, false, false, false, true, true, false, true, false, false, false, false, true, true, true, true,
	true, true, false, true, true, true, false, true, false, false, false, false, true, true, false, true,
	false, false, false, false, false, false, false, false, false, false, false, false, false, false, false, false,
	true, true, true, true, true, true, false, true, false, false, false, false, false, false, false, true,
	true, false, false, false, false, false, false, false, true, false, true, true, true, true, true, true,
	false, false, false, false, false, false, false, false, false, false, false, false, false, false, false, false,
	true, false, true, true, false, false, false, false, true, false, true, true, true, false, true, true,
	true, true, true, true, false, false, false, false, true, false, true, true, false, false, false, true,
	true, false, false, false, true, true, false, false, true, false, true, false, true, true, true, true,
	true, true, false, false, true, true, false, false, true, false, false, false, true, true, false, true,
	true, false, true, false, true, false, false, false, true, false, true, false, true, false, true, true,
	true, true, true, true, true, true, false, true, true, false, true, true, true, true, true, true,
}
