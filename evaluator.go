package brep

import "gonum.org/v1/gonum/spatial/r3"

// Tape is an opaque, possibly pruned representation of the implicit
// function valid within a specific sub-region. Tapes form a stack:
// refining a tape yields a child, and Base rewinds to the nearest
// ancestor (possibly the tape itself) that is valid over r. A parent
// tape always outlives its descendants.
type Tape interface {
	Base(r Region) Tape
}

// Evaluator is the capability the meshing core requires from an
// implicit-function backend. A single Evaluator is not safe for
// concurrent use; callers hold one per worker. Distinct instances over
// the same function must tolerate concurrent use of each other.
type Evaluator interface {
	// RootTape returns the unrestricted tape for the whole function.
	RootTape() Tape

	// Interval bounds the function over a region. The returned tape, if
	// non-nil, is a refinement valid only inside r and should be used
	// for all work below r.
	Interval(r Region, t Tape) (Interval, Tape)

	// Values evaluates the function at each point, filling out.
	// len(out) must equal len(ps).
	Values(ps []r3.Vec, out []float64, t Tape)

	// Derivs evaluates the gradient at each point, filling out.
	Derivs(ps []r3.Vec, out []r3.Vec, t Tape)

	// ValueAndPush evaluates at a single point and returns a tape pruned
	// to the branch cone selected at that point.
	ValueAndPush(p r3.Vec, t Tape) (float64, Tape)

	// Feature returns the set of gradients meeting at p. The set has
	// more than one element only on creases and corners of the function.
	Feature(p r3.Vec, t Tape) []r3.Vec
}
