package cli

import (
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

const sampleJob = `
[shape]
name = "sphere-box-union"
radius = 0.5
size = [0.8, 0.8, 0.4]

[region]
min = [-1.0, -1.0, -1.0]
max = [1.0, 1.0, 1.0]

[settings]
workers = 2
min_feature = 0.1
max_error = 1e-6

[output]
stl = "out.stl"
`

func writeJob(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "job.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadJob(t *testing.T) {
	j, err := loadJob(writeJob(t, sampleJob))
	if err != nil {
		t.Fatal(err)
	}
	if j.Shape.Name != "sphere-box-union" {
		t.Errorf("shape name = %q", j.Shape.Name)
	}
	r := j.region()
	if r.Min != (r3.Vec{X: -1, Y: -1, Z: -1}) || r.Max != (r3.Vec{X: 1, Y: 1, Z: 1}) {
		t.Errorf("region = %v..%v", r.Min, r.Max)
	}
	s := j.settings()
	if s.Workers != 2 || s.MinFeature != 0.1 || s.MaxError != 1e-6 {
		t.Errorf("settings = %+v", s)
	}
	if err := s.Validate(r); err != nil {
		t.Errorf("job settings invalid: %v", err)
	}
}

func TestLoadJobRequiresSTL(t *testing.T) {
	if _, err := loadJob(writeJob(t, "[shape]\nname = \"sphere\"\nradius = 1.0\n")); err == nil {
		t.Fatal("job without output.stl accepted")
	}
}

func TestBuildShape(t *testing.T) {
	cases := []shapeConfig{
		{Name: "sphere", Radius: 0.5},
		{Name: "box", Size: [3]float64{1, 1, 0.5}},
		{Name: "sphere-box-union", Radius: 0.5, Size: [3]float64{1, 1, 0.5}},
		{Name: "menger", Level: 1},
	}
	for _, c := range cases {
		f, err := buildShape(c)
		if err != nil {
			t.Errorf("%s: %v", c.Name, err)
			continue
		}
		if f == nil {
			t.Errorf("%s: nil field", c.Name)
		}
	}
	if _, err := buildShape(shapeConfig{Name: "dodecahedron"}); err == nil {
		t.Error("unknown shape accepted")
	}
	if _, err := buildShape(shapeConfig{Name: "sphere"}); err == nil {
		t.Error("sphere without radius accepted")
	}
}
