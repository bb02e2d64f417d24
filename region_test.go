package brep_test

import (
	"math"
	"testing"

	"github.com/implicitcad/brep"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestRegionSubdivide(t *testing.T) {
	r := brep.NewRegion(r3.Vec{X: -1, Y: -2, Z: -4}, r3.Vec{X: 1, Y: 2, Z: 4})
	r.Level = 3
	subs := r.Subdivide()
	c := r.Center()
	for i, sub := range subs {
		if sub.Level != 2 {
			t.Errorf("child %d level = %d, want 2", i, sub.Level)
		}
		want := sub.Size()
		half := r3.Scale(0.5, r.Size())
		if want != half {
			t.Errorf("child %d size = %v, want %v", i, want, half)
		}
		// Child i's corner i is the parent's corner i; the opposite
		// corner is the parent center.
		if sub.Corner(i) != r.Corner(i) {
			t.Errorf("child %d outer corner = %v, want %v", i, sub.Corner(i), r.Corner(i))
		}
		if sub.Corner(7-i) != c {
			t.Errorf("child %d inner corner = %v, want center %v", i, sub.Corner(7-i), c)
		}
	}
}

func TestRegionCornerOrder(t *testing.T) {
	r := brep.NewRegion(r3.Vec{}, r3.Vec{X: 1, Y: 1, Z: 1})
	for i := 0; i < 8; i++ {
		c := r.Corner(i)
		if (c.X == 1) != (i&1 != 0) || (c.Y == 1) != (i&2 != 0) || (c.Z == 1) != (i&4 != 0) {
			t.Errorf("corner %d = %v does not follow bit order", i, c)
		}
	}
}

func TestRegionWithResolution(t *testing.T) {
	r := brep.NewRegion(r3.Vec{X: -1, Y: -1, Z: -1}, r3.Vec{X: 1, Y: 1, Z: 1})
	for _, minFeature := range []float64{0.1, 0.05, 0.5, 2, 5} {
		rr := r.WithResolution(minFeature)
		edge := 2 / math.Pow(2, float64(rr.Level))
		if edge > minFeature && rr.Level > 0 {
			t.Errorf("minFeature %v: level %d leaves edge %v", minFeature, rr.Level, edge)
		}
		if rr.Level > 0 {
			// One level less must be too coarse.
			coarse := 2 / math.Pow(2, float64(rr.Level-1))
			if coarse <= minFeature {
				t.Errorf("minFeature %v: level %d deeper than needed", minFeature, rr.Level)
			}
		}
	}
}

func TestRegionValid(t *testing.T) {
	if !brep.NewRegion(r3.Vec{}, r3.Vec{X: 1, Y: 1, Z: 1}).Valid() {
		t.Error("unit region reported invalid")
	}
	if brep.NewRegion(r3.Vec{X: 1}, r3.Vec{}).Valid() {
		t.Error("inverted region reported valid")
	}
	if brep.NewRegion(r3.Vec{}, r3.Vec{}).Valid() {
		t.Error("zero-volume region reported valid")
	}
}

func TestIntervalOf(t *testing.T) {
	cases := []struct {
		lo, hi float64
		want   brep.Interval
	}{
		{1, 2, brep.IntervalEmpty},
		{-2, -1, brep.IntervalFilled},
		{-1, 1, brep.IntervalAmbiguous},
		{0, 1, brep.IntervalAmbiguous},
		{-1, 0, brep.IntervalAmbiguous},
	}
	for _, c := range cases {
		if got := brep.IntervalOf(c.lo, c.hi); got != c.want {
			t.Errorf("IntervalOf(%v, %v) = %v, want %v", c.lo, c.hi, got, c.want)
		}
	}
}

func TestSettingsValidate(t *testing.T) {
	region := brep.NewRegion(r3.Vec{X: -1, Y: -1, Z: -1}, r3.Vec{X: 1, Y: 1, Z: 1})
	good := brep.DefaultSettings(0.1)
	if err := good.Validate(region); err != nil {
		t.Fatalf("default settings rejected: %v", err)
	}

	bad := brep.DefaultSettings(0)
	if err := bad.Validate(region); err == nil {
		t.Error("zero min feature accepted")
	}
	bad = brep.DefaultSettings(0.1)
	bad.Workers = 0
	if err := bad.Validate(region); err == nil {
		t.Error("zero workers accepted")
	}
	bad = brep.DefaultSettings(0.1)
	bad.Algorithm = brep.IsoSimplex
	if err := bad.Validate(region); err == nil {
		t.Error("unimplemented algorithm accepted")
	}
	bad = brep.DefaultSettings(0.1)
	if err := bad.Validate(brep.NewRegion(r3.Vec{X: 1}, r3.Vec{})); err == nil {
		t.Error("invalid region accepted")
	}
}
