// Package render turns implicit fields into triangle meshes and writes
// them out as STL or PNG.
package render

import (
	"github.com/implicitcad/brep"
	"github.com/implicitcad/brep/dc"
	"github.com/implicitcad/brep/eval"
	"github.com/implicitcad/brep/field"
)

// Render meshes the zero isosurface of f over region. It returns a nil
// mesh with an error for invalid settings and brep.ErrCancelled when
// the caller set the cancel flag mid-render. The progress handler, if
// any, is finished exactly once in every case.
func Render(f field.Field, region brep.Region, s brep.Settings) (*Mesh, error) {
	if err := s.Validate(region); err != nil {
		finishProgress(&s)
		return nil, err
	}
	return RenderWith(eval.NewPool(f, s.Workers), region, s)
}

// RenderWith meshes using caller-supplied evaluators, one per worker.
// Custom evaluator backends plug in here.
func RenderWith(evs []brep.Evaluator, region brep.Region, s brep.Settings) (*Mesh, error) {
	if err := s.Validate(region); err != nil {
		finishProgress(&s)
		return nil, err
	}
	if len(evs) < s.Workers {
		s.Workers = len(evs)
	}

	if s.Progress != nil {
		// Phases: tree build, dual walk, collection.
		s.Progress.Start([]int{1, 1, 1})
		defer s.Progress.Finish()
	}

	root := dc.Build(evs, region, &s)
	if s.Cancelled() || root.Empty() {
		return nil, brep.ErrCancelled
	}

	breps := NewPerThreadBReps(s.Workers)
	dc.Walk(root, &s, func(worker int) dc.Mesher {
		return dc.NewDCMesher(breps[worker])
	})
	if s.Cancelled() {
		return nil, brep.ErrCancelled
	}

	if s.Progress != nil {
		s.Progress.NextPhase(1)
	}
	m := new(Mesh)
	m.Collect(breps, s.Workers)
	if s.Progress != nil {
		s.Progress.Tick(1)
	}
	return m, nil
}

func finishProgress(s *brep.Settings) {
	if s.Progress != nil {
		s.Progress.Start([]int{1})
		s.Progress.Finish()
	}
}
