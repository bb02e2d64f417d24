package brep

import (
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"
)

// Algorithm selects the meshing strategy.
type Algorithm uint8

const (
	// DualContouring places one vertex per ambiguous leaf and connects
	// vertices across sign-changing dual edges.
	DualContouring Algorithm = iota
	// IsoSimplex and Hybrid are recognised but not implemented by this
	// module; rendering with them fails at validation time.
	IsoSimplex
	Hybrid
)

func (a Algorithm) String() string {
	switch a {
	case DualContouring:
		return "dual-contouring"
	case IsoSimplex:
		return "iso-simplex"
	case Hybrid:
		return "hybrid"
	}
	return fmt.Sprintf("algorithm(%d)", uint8(a))
}

// ProgressHandler receives coarse progress updates from a render.
// Start is called once with per-phase weights, NextPhase once per phase
// with the phase's estimated tick total, and Finish exactly once per
// render, including cancelled and failed renders.
type ProgressHandler interface {
	Start(weights []int)
	NextPhase(total uint64)
	Tick(n uint64)
	Finish()
}

// FreeThreadHandler is consulted by workers with no task to run.
// OfferWait may block briefly; it must eventually return.
type FreeThreadHandler interface {
	OfferWait()
}

// VolumePruner answers whether a region is trivially empty or filled,
// short-circuiting interval evaluation. Child returns the cursor for the
// i-th subdivided octant, or nil when no refinement is available.
type VolumePruner interface {
	Check(r Region) Interval
	Child(i int) VolumePruner
}

// sleepHandler is the default FreeThreadHandler: a bounded sleep that
// keeps idle workers from hot-spinning on the task stack.
type sleepHandler struct{}

func (sleepHandler) OfferWait() { time.Sleep(50 * time.Microsecond) }

// Settings configures a render.
type Settings struct {
	// Workers is the number of goroutines used for tree construction and
	// meshing. It must be positive; DefaultSettings selects
	// runtime.NumCPU.
	Workers int
	// MinFeature is the smallest cell edge length; cells at this size are
	// evaluated directly rather than subdivided.
	MinFeature float64
	// MaxError is the QEF residual above which branches never collapse.
	MaxError float64
	// Algorithm selects the mesher. Only DualContouring is implemented.
	Algorithm Algorithm
	// Cancel may be set by the caller at any time; workers observe it
	// between tasks and exit after finishing the current one.
	Cancel *atomic.Bool
	// Progress, FreeThread and Volume are optional hooks.
	Progress   ProgressHandler
	FreeThread FreeThreadHandler
	Volume     VolumePruner
}

// DefaultSettings returns settings matching the library defaults: all
// hardware threads, a collapse error budget of 1e-8 and a cancel flag.
func DefaultSettings(minFeature float64) Settings {
	return Settings{
		Workers:    runtime.NumCPU(),
		MinFeature: minFeature,
		MaxError:   1e-8,
		Cancel:     new(atomic.Bool),
	}
}

var (
	ErrCancelled      = errors.New("brep: render cancelled")
	errBadMinFeature  = errors.New("brep: min feature must be positive")
	errBadWorkerCount = errors.New("brep: worker count must be positive")
	errBadRegion      = errors.New("brep: region must satisfy lower < upper")
	errBadAlgorithm   = errors.New("brep: algorithm not implemented")
	errNegativeMaxErr = errors.New("brep: max error must be non-negative")
)

// Validate checks the settings against a target region and fills in the
// optional hooks with inert defaults.
func (s *Settings) Validate(r Region) error {
	if s.MinFeature <= 0 {
		return errBadMinFeature
	}
	if s.Workers <= 0 {
		return errBadWorkerCount
	}
	if s.MaxError < 0 {
		return errNegativeMaxErr
	}
	if !r.Valid() {
		return errBadRegion
	}
	if s.Algorithm != DualContouring {
		return fmt.Errorf("%w: %v", errBadAlgorithm, s.Algorithm)
	}
	if s.Cancel == nil {
		s.Cancel = new(atomic.Bool)
	}
	if s.FreeThread == nil {
		s.FreeThread = sleepHandler{}
	}
	return nil
}

// Cancelled reports whether the caller has requested cancellation.
func (s *Settings) Cancelled() bool {
	return s.Cancel != nil && s.Cancel.Load()
}
