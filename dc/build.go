package dc

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/implicitcad/brep"
	"github.com/implicitcad/brep/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// task is one unit of tree construction: a cell to evaluate, the tape
// to evaluate it with, the parent's neighbor set and the optional
// volume-pruner cursor for the cell's region.
type task struct {
	cell            *Cell
	tape            brep.Tape
	parentNeighbors neighbors
	vol             brep.VolumePruner
}

// offerWait parks an idle worker on the pluggable handler, yielding the
// scheduler when none is configured.
func offerWait(s *brep.Settings) {
	if s.FreeThread != nil {
		s.FreeThread.OfferWait()
		return
	}
	runtime.Gosched()
}

// ticksBelow is the would-be number of cells in the full subtree below a
// cell at the given level (all descendants, not the cell itself), used
// for batched progress reporting.
func ticksBelow(level int) uint64 {
	var ticks uint64
	for i := 0; i < level; i++ {
		ticks = (ticks + 1) * (1 << 3)
	}
	return ticks
}

// Build constructs an adaptive octree over region, one evaluator per
// worker. The returned root is empty when the build was cancelled.
func Build(evs []brep.Evaluator, region brep.Region, s *brep.Settings) *Root {
	region = region.WithResolution(s.MinFeature)

	root := &Root{}
	top := newPool().cell(nil, 0, region)
	root.cell = top

	tasks := make(chan task, len(evs))
	tasks <- task{cell: top, tape: evs[0].RootTape(), vol: s.Volume}

	if s.Progress != nil {
		s.Progress.NextPhase(ticksBelow(region.Level) + 1)
	}

	var done atomic.Bool
	var wg sync.WaitGroup
	for i := range evs {
		wg.Add(1)
		go func(ev brep.Evaluator) {
			defer wg.Done()
			buildRun(ev, tasks, root, s, &done)
		}(evs[i])
	}
	wg.Wait()

	if s.Cancelled() {
		return &Root{}
	}
	return root
}

func buildRun(ev brep.Evaluator, tasks chan task, root *Root, s *brep.Settings, done *atomic.Bool) {
	// Tasks evaluated by this worker when the shared stack is full.
	var local []task
	pool := newPool()

	defer func() {
		done.Store(true)
		root.claim(pool)
	}()

	for !done.Load() && !s.Cancelled() {
		var tk task
		if n := len(local); n > 0 {
			tk = local[n-1]
			local = local[:n-1]
		} else {
			select {
			case tk = <-tasks:
			default:
			}
		}
		if tk.cell == nil {
			offerWait(s)
			continue
		}

		t := tk.cell
		tape := tk.tape

		// Resolve neighbors at the last moment so sibling pointers
		// published by other workers are available.
		var nb neighbors
		if t.parent != nil {
			nb = tk.parentNeighbors.push(t.parentIndex, t.parent)
		}

		canSubdivide := t.region.Level > 0
		if canSubdivide {
			if tk.vol != nil {
				if i := tk.vol.Check(t.region); i == brep.IntervalEmpty || i == brep.IntervalFilled {
					t.typ = i
				}
			}
			if t.typ == brep.IntervalUnknown {
				var refined brep.Tape
				t.typ, refined = ev.Interval(t.region, tape)
				if refined != nil {
					tape = refined
				}
			}

			if t.typ == brep.IntervalAmbiguous {
				rs := t.region.Subdivide()
				for i := range t.children {
					next := task{
						cell:            pool.cell(t, i, rs[i]),
						tape:            tape,
						parentNeighbors: nb,
					}
					if tk.vol != nil {
						next.vol = tk.vol.Child(i)
					}
					t.children[i].Store(next.cell)
					select {
					case tasks <- next:
					default:
						local = append(local, next)
					}
				}
				// All useful work for this cell happens bottom-up in
				// collectChildren once the children are done.
				continue
			}
		} else {
			t.evalLeaf(ev, tape, pool, nb)
		}

		if s.Progress != nil {
			if canSubdivide {
				s.Progress.Tick(ticksBelow(t.region.Level) + 1)
			} else {
				s.Progress.Tick(1)
			}
		}

		// Ask ancestors to collect their children, rebasing the tape as
		// we walk back up towards the root.
		up := func() {
			t = t.parent
			if t != nil {
				tape = tape.Base(t.region)
			}
		}
		up()
		for t != nil && t.collectChildren(ev, tape, pool, s.MaxError) {
			if s.Progress != nil {
				s.Progress.Tick(1)
			}
			up()
		}

		// Walking past the root means the whole tree is complete.
		if t == nil {
			break
		}
	}
}

// evalLeaf computes corner signs, per-edge crossings and QEF vertices
// for a minimum-size cell.
func (c *Cell) evalLeaf(ev brep.Evaluator, tape brep.Tape, pool *pool, nb neighbors) {
	var pos [8]r3.Vec
	for i := range pos {
		pos[i] = c.region.Corner(i)
	}

	// Fetch corner values, reusing finished neighbors where possible.
	var vals [8]float64
	var missing [8]r3.Vec
	var missingIdx [8]int
	nMissing := 0
	for i := uint8(0); i < 8; i++ {
		if v, ok := nb.cornerValue(c, i); ok {
			vals[i] = v
			continue
		}
		missing[nMissing] = pos[i]
		missingIdx[nMissing] = int(i)
		nMissing++
	}
	if nMissing > 0 {
		var out [8]float64
		ev.Values(missing[:nMissing], out[:nMissing], tape)
		for k := 0; k < nMissing; k++ {
			vals[missingIdx[k]] = out[k]
		}
	}

	// Corner signs; exact zeros are resolved by the feature set.
	var mask uint8
	for i := uint8(0); i < 8; i++ {
		switch {
		case vals[i] < 0:
			mask |= 1 << i
		case vals[i] == 0:
			if c.cornerFilledOnSurface(ev, tape, pos[i]) {
				mask |= 1 << i
			}
		}
	}

	if mask == 0 {
		c.typ = brep.IntervalEmpty
		return
	}
	if mask == 0xff {
		c.typ = brep.IntervalFilled
		return
	}

	l := pool.leaf()
	l.mask = mask
	l.vertCount = int(patchCount[mask])
	l.corners = vals

	// Locate the crossing on every sign-changing edge by batched
	// bisection, keeping the inside endpoint on the negative side.
	var edges [12]int
	var inPts, outPts [12]r3.Vec
	nCross := 0
	for e, corners := range cubeEdges {
		a, b := corners[0], corners[1]
		if (mask>>a)&1 == (mask>>b)&1 {
			continue
		}
		in, out := a, b
		if (mask>>b)&1 != 0 {
			in, out = b, a
		}
		edges[nCross] = e
		inPts[nCross] = pos[in]
		outPts[nCross] = pos[out]
		nCross++
	}

	var mids [12]r3.Vec
	var midVals [12]float64
	const bisectSteps = 16
	for step := 0; step < bisectSteps; step++ {
		for k := 0; k < nCross; k++ {
			mids[k] = r3.Scale(0.5, r3.Add(inPts[k], outPts[k]))
		}
		ev.Values(mids[:nCross], midVals[:nCross], tape)
		for k := 0; k < nCross; k++ {
			if midVals[k] < 0 {
				inPts[k] = mids[k]
			} else {
				outPts[k] = mids[k]
			}
		}
	}

	var derivs [12]r3.Vec
	for k := 0; k < nCross; k++ {
		mids[k] = r3.Scale(0.5, r3.Add(inPts[k], outPts[k]))
	}
	ev.Values(mids[:nCross], midVals[:nCross], tape)
	ev.Derivs(mids[:nCross], derivs[:nCross], tape)
	for k := 0; k < nCross; k++ {
		patch := edgePatch[mask][edges[k]]
		if patch < 0 {
			panic("dc: crossing edge without marching-table patch")
		}
		l.qef[patch].push(mids[k], derivs[k], midVals[k])
	}

	center := c.region.Center()
	for v := 0; v < l.vertCount; v++ {
		p, err, rank := l.qef[v].solve(center)
		l.verts[v] = clampToRegion(p, c.region)
		l.rank[v] = rank
		l.err += err
	}

	c.leaf = l
	c.typ = brep.IntervalAmbiguous
	c.leafReady.Store(true)
}

// cornerFilledOnSurface decides the sign of a corner lying exactly on
// the isosurface. A smooth point (a single gradient) counts as empty in
// every cell, so all cells sharing the corner agree on its sign. On a
// crease or corner of the function the corner counts as filled when
// some gradient of the feature set decreases towards the cell interior.
func (c *Cell) cornerFilledOnSurface(ev brep.Evaluator, tape brep.Tape, p r3.Vec) bool {
	_, pushed := ev.ValueAndPush(p, tape)
	fs := ev.Feature(p, pushed)
	if len(fs) < 2 {
		return false
	}
	inward := r3.Sub(c.region.Center(), p)
	for _, g := range fs {
		if r3.Dot(g, inward) < 0 {
			return true
		}
	}
	return false
}

func clampToRegion(p r3.Vec, r brep.Region) r3.Vec {
	return d3.Clamp(p, r.Min, r.Max)
}
