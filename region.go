package brep

import (
	"math"

	"github.com/implicitcad/brep/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Region is an axis-aligned box carrying a subdivision level counter.
// A cell at Level == 0 is at the minimum feature size and is not
// subdivided further.
type Region struct {
	Min, Max r3.Vec
	Level    int
	// Perp is the perpendicular coordinate used when a region embeds a
	// lower-dimensional slice (e.g. a plane at a fixed height). The 3D
	// meshing pipeline carries it but does not interpret it.
	Perp float64
}

// NewRegion returns a level-0 region spanning [min, max].
func NewRegion(min, max r3.Vec) Region {
	return Region{Min: min, Max: max}
}

// Valid reports whether the region is non-degenerate, i.e. lower ≤ upper
// componentwise with positive volume.
func (r Region) Valid() bool {
	return r.Min.X < r.Max.X && r.Min.Y < r.Max.Y && r.Min.Z < r.Max.Z &&
		!math.IsNaN(r.Min.X+r.Min.Y+r.Min.Z+r.Max.X+r.Max.Y+r.Max.Z)
}

// Size returns the edge lengths of the region.
func (r Region) Size() r3.Vec { return r3.Sub(r.Max, r.Min) }

// Center returns the midpoint of the region.
func (r Region) Center() r3.Vec {
	return r3.Add(r.Min, r3.Scale(0.5, r.Size()))
}

// Box returns the region's bounds as an r3.Box.
func (r Region) Box() r3.Box { return r3.Box{Min: r.Min, Max: r.Max} }

// Corner returns the i-th corner in canonical order: bit 0 selects the
// upper X bound, bit 1 the upper Y bound, bit 2 the upper Z bound.
func (r Region) Corner(i int) r3.Vec {
	v := r.Min
	if i&1 != 0 {
		v.X = r.Max.X
	}
	if i&2 != 0 {
		v.Y = r.Max.Y
	}
	if i&4 != 0 {
		v.Z = r.Max.Z
	}
	return v
}

// Contains reports whether p lies in the closure of the region.
func (r Region) Contains(p r3.Vec) bool {
	return d3.Box(r.Box()).Contains(p)
}

// Subdivide bisects the region along every axis, yielding 8 equally sized
// child regions in corner order, each one level below the parent.
func (r Region) Subdivide() [8]Region {
	c := r.Center()
	var out [8]Region
	for i := 0; i < 8; i++ {
		sub := Region{Min: r.Min, Max: c, Level: r.Level - 1, Perp: r.Perp}
		if i&1 != 0 {
			sub.Min.X, sub.Max.X = c.X, r.Max.X
		}
		if i&2 != 0 {
			sub.Min.Y, sub.Max.Y = c.Y, r.Max.Y
		}
		if i&4 != 0 {
			sub.Min.Z, sub.Max.Z = c.Z, r.Max.Z
		}
		out[i] = sub
	}
	return out
}

// WithResolution rounds the region's level up so that a cell at level 0
// has every edge at most minFeature long.
func (r Region) WithResolution(minFeature float64) Region {
	longest := d3.Max(r.Size())
	level := 0
	if longest > minFeature {
		level = int(math.Ceil(math.Log2(longest / minFeature)))
	}
	r.Level = level
	return r
}
