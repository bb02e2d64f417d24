package field

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// MengerSponge returns the level-n Menger sponge carved from the unit
// cube centered at the origin. Level 0 is the plain cube; each level
// punches a three-way cross of square holes through every remaining
// sub-cube.
func MengerSponge(level int) Field {
	if level < 0 {
		panic("sponge level must be non-negative")
	}
	out := Box(r3.Vec{X: 1, Y: 1, Z: 1})
	for i := 1; i <= level; i++ {
		cells := int(math.Pow(3, float64(i-1)))
		cell := 1.0 / float64(cells)
		hole := cell / 3
		// Punch full-length holes along each axis through the center of
		// every cell in the cells×cells grid of the two cross axes.
		var holes []Field
		for a := 0; a < cells; a++ {
			for b := 0; b < cells; b++ {
				u := -0.5 + (float64(a)+0.5)*cell
				v := -0.5 + (float64(b)+0.5)*cell
				// Slightly overlong so the hole pierces the faces.
				const overcut = 1.1
				holes = append(holes,
					Translate(Box(r3.Vec{X: overcut, Y: hole, Z: hole}), r3.Vec{Y: u, Z: v}),
					Translate(Box(r3.Vec{X: hole, Y: overcut, Z: hole}), r3.Vec{X: u, Z: v}),
					Translate(Box(r3.Vec{X: hole, Y: hole, Z: overcut}), r3.Vec{X: u, Y: v}),
				)
			}
		}
		out = Difference(out, Union(holes...))
	}
	return out
}
