package cli

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/deadsy/sdfx/obj"
	"github.com/implicitcad/brep"
	"github.com/implicitcad/brep/field"
	"gonum.org/v1/gonum/spatial/r3"
)

// job is the TOML description of one render.
type job struct {
	Shape    shapeConfig    `toml:"shape"`
	Region   regionConfig   `toml:"region"`
	Settings settingsConfig `toml:"settings"`
	Output   outputConfig   `toml:"output"`
}

type shapeConfig struct {
	Name   string     `toml:"name"`
	Radius float64    `toml:"radius"`
	Size   [3]float64 `toml:"size"`
	Level  int        `toml:"level"`
	// Thread names an sdfx bolt thread, e.g. "npt_1/2" or "M16x2".
	Thread string  `toml:"thread"`
	Length float64 `toml:"length"`
}

type regionConfig struct {
	Min [3]float64 `toml:"min"`
	Max [3]float64 `toml:"max"`
}

type settingsConfig struct {
	Workers    int     `toml:"workers"`
	MinFeature float64 `toml:"min_feature"`
	MaxError   float64 `toml:"max_error"`
}

type outputConfig struct {
	STL string `toml:"stl"`
	PNG string `toml:"png"`
}

func loadJob(path string) (*job, error) {
	var j job
	if _, err := toml.DecodeFile(path, &j); err != nil {
		return nil, fmt.Errorf("parse job file: %w", err)
	}
	if j.Output.STL == "" {
		return nil, fmt.Errorf("job file %s sets no output.stl", path)
	}
	return &j, nil
}

func (j *job) region() brep.Region {
	return brep.NewRegion(
		r3.Vec{X: j.Region.Min[0], Y: j.Region.Min[1], Z: j.Region.Min[2]},
		r3.Vec{X: j.Region.Max[0], Y: j.Region.Max[1], Z: j.Region.Max[2]},
	)
}

func (j *job) settings() brep.Settings {
	s := brep.DefaultSettings(j.Settings.MinFeature)
	if j.Settings.Workers > 0 {
		s.Workers = j.Settings.Workers
	}
	if j.Settings.MaxError > 0 {
		s.MaxError = j.Settings.MaxError
	}
	return s
}

// buildShape constructs the named field from the shape block.
func buildShape(c shapeConfig) (field.Field, error) {
	size := r3.Vec{X: c.Size[0], Y: c.Size[1], Z: c.Size[2]}
	switch c.Name {
	case "sphere":
		if c.Radius <= 0 {
			return nil, fmt.Errorf("sphere needs a positive radius")
		}
		return field.Sphere(c.Radius), nil
	case "box":
		if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
			return nil, fmt.Errorf("box needs positive size")
		}
		return field.Box(size), nil
	case "sphere-box-union":
		if c.Radius <= 0 || size.X <= 0 {
			return nil, fmt.Errorf("sphere-box-union needs radius and size")
		}
		return field.Union(field.Sphere(c.Radius), field.Box(size)), nil
	case "menger":
		return field.MengerSponge(c.Level), nil
	case "bolt":
		thread := c.Thread
		if thread == "" {
			thread = "M16x2"
		}
		length := c.Length
		if length <= 0 {
			length = 30
		}
		bolt, err := obj.Bolt(&obj.BoltParms{
			Thread:      thread,
			Style:       "hex",
			TotalLength: length,
			ShankLength: length / 3,
		})
		if err != nil {
			return nil, fmt.Errorf("sdfx bolt: %w", err)
		}
		return field.FromSDFX(bolt), nil
	}
	return nil, fmt.Errorf("unknown shape %q", c.Name)
}
