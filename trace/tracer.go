package trace

import (
	"errors"
	"fmt"
	"iter"
	"math"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/odeplot/dirfield"
	"github.com/odeplot/dirfield/mathexpr"
)

// ErrNoSingularityEquation reports a manual-strategy tracer created for a
// slope function that has no singularity equation registered.
var ErrNoSingularityEquation = errors.New("trace: manual detection requires a singularity equation")

// vDirection is the vertical marching direction used while following a
// vertical asymptote.
type vDirection int

const (
	up   vDirection = 1
	down vDirection = -1
)

// Tracer walks one solution curve of y' = f(x, y) from a start point in a
// single horizontal direction. It is single-use: Trace may be called once;
// retracing requires a new Tracer.
type Tracer struct {
	strategy Strategy
	slopeFn  mathexpr.Func
	singEq   mathexpr.Func // non-nil only for StrategyManual
	dir      Direction
	vp       dirfield.Viewport
	yMargin  float64
	minSlope float64

	diagonal      float64
	maxSegmentLen float64

	// Physical step scales derived from the precision granularities.
	maxDX         float64 // maximum x-extent of one step
	singDX        float64 // probe step near an automatically detected singularity
	alertDistance float64 // distance at which a manual singularity counts as close
	minStep       float64 // smallest step allowed near a singularity
	maxStep       float64 // largest Euclidean step allowed on-screen

	// Mutable stepping state.
	slope    float64        // slope at the current point
	vector   dirfield.Point // the step about to be taken, oriented by dir
	singDiff dirfield.Point // estimated offset from the current point to the singularity (manual)
	traced   bool
}

// NewTracer builds a tracer for the given slope-function source, sweep
// direction, and viewport snapshot, using a snapshot of settings. The
// settings value must not be mutated while the tracer runs; use
// Settings.Copy for the snapshot.
func NewTracer(settings *Settings, slopeFn string, dir Direction, vp dirfield.Viewport) (*Tracer, error) {
	f, err := mathexpr.Compile(slopeFn)
	if err != nil {
		return nil, fmt.Errorf("trace: compiling slope function: %w", err)
	}

	t := &Tracer{
		strategy: settings.PreferredDetectionFor(slopeFn),
		slopeFn:  f,
		dir:      dir,
		vp:       vp,
		yMargin:  settings.YMargin,
		minSlope: settings.SingularityMinSlope,
	}

	if t.strategy == StrategyManual {
		eqSrc, ok := settings.SingularityEquationFor(slopeFn)
		if !ok {
			return nil, ErrNoSingularityEquation
		}
		eq, err := mathexpr.Compile(eqSrc)
		if err != nil {
			return nil, fmt.Errorf("trace: compiling singularity equation: %w", err)
		}
		t.singEq = eq
	}

	t.diagonal = vp.Diagonal()
	t.maxSegmentLen = t.diagonal / NumSegmentsInDiagonal

	t.maxDX = vp.Width() / math.Pow(10, settings.TraceDXGranularity())
	t.singDX = math.Min(1e-6, t.maxDX/1000)
	t.alertDistance = t.diagonal / math.Pow(10, settings.SingularityAlertDistGranularity())
	t.minStep = t.diagonal / math.Pow(10, settings.TraceMinStepGranularity())
	t.maxStep = t.diagonal / math.Pow(10, settings.TraceMaxStepGranularity())

	return t, nil
}

// roundIfCloseToZero snaps values within 1e-9 of zero to exactly zero, so
// the classification table's sign logic is deterministic at boundaries.
func roundIfCloseToZero(v float64) float64 {
	if scalar.EqualWithinAbs(v, 0, 1e-9) {
		return 0
	}
	return v
}

// snapNearInteger snaps a coordinate to the nearest integer when it lies
// within tol of it. Floating-point noise right next to exact symmetric
// points otherwise produces spurious enormous slope readings.
func snapNearInteger(v, tol float64) float64 {
	r := math.Round(v)
	if math.Abs(v-r) < tol {
		return r
	}
	return v
}

func sgn(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// isMonotonousOn reports whether the slope function keeps the sign it has
// at start over the segment from start to start+diff, sampled at n
// equidistant sub-points. An evaluation failure anywhere along the probe
// counts as not monotonous.
func (t *Tracer) isMonotonousOn(start, diff dirfield.Point, n int) bool {
	s0, err := t.slopeFn(start.X, start.Y)
	if err != nil {
		return false
	}
	want := sgn(s0)
	step := diff.Div(float64(n))
	p := start
	for i := 0; i < n; i++ {
		p = p.Add(step)
		s, err := t.slopeFn(p.X, p.Y)
		if err != nil {
			return false
		}
		if sgn(s) != want {
			return false
		}
	}
	return true
}

// shouldStopIfYOutOfBounds decides whether an off-screen y terminates the
// trace. Only automatic detection cuts off, and only once the excursion
// exceeds YMargin screen-heights; manual detection relies on the
// singularity logic to end off-screen runs instead.
func (t *Tracer) shouldStopIfYOutOfBounds(y float64) bool {
	if t.strategy != StrategyAutomatic {
		return false
	}
	return t.vp.YEdgeDistance(y) > t.vp.Height()*t.yMargin
}

// possibleSingularityAt reports whether a singularity is suspected near
// (x, y). For manual detection it also refreshes t.singDiff, the best
// current estimate of the offset to the singularity.
func (t *Tracer) possibleSingularityAt(x, y float64) bool {
	switch t.strategy {
	case StrategyNone:
		return false

	case StrategyAutomatic:
		s, err := t.slopeFn(x, y)
		if err != nil {
			// Undefined right here: treat as very close to a singularity.
			return true
		}
		return math.Abs(s) > t.minSlope
	}

	// Manual detection.
	sing, err := FirstIntersection(t.singEq, t.slope, x, y)
	if err != nil {
		// Root finding failed: no singularity nearby. Still leave a valid
		// large singDiff pointing ahead; the step sizing reads it.
		t.singDiff = t.vector.Resize(10 * t.alertDistance)
		if math.Abs(t.singDiff.X) < t.maxDX {
			t.singDiff = t.singDiff.ResizeByX(t.maxDX)
		}
		return false
	}
	t.singDiff = sing.Sub(dirfield.Pt(x, y))

	if t.singDiff.Length() < t.alertDistance {
		return true
	}

	// Near-vertical escape off-screen: the intersection sits almost
	// straight above or below, which the distance test alone misses.
	if !t.vp.ContainsY(y) && math.Abs(t.slope) > 1e9 && math.Abs(t.singDiff.X) < t.maxDX {
		return true
	}
	return false
}

// handleSingularity probes past a suspected singularity at (x, y) and
// classifies it.
func (t *Tracer) handleSingularity(x, y float64) Action {
	// Manual detection while off-screen decides on slope magnitude alone;
	// probing out there is wasted work.
	if t.strategy == StrategyManual && !t.vp.ContainsY(y) {
		s, err := t.slopeFn(x, y)
		if err != nil {
			return ActionStop
		}
		if math.Abs(s) > 1 {
			return ActionInfinite
		}
		return ActionStop
	}

	x = snapNearInteger(x, t.singDX)
	y = snapNearInteger(y, t.singDX)

	der, err := t.slopeFn(x, y)
	if err != nil {
		return ActionStop
	}
	der = roundIfCloseToZero(der)

	// Choose a probe offset that hopefully lands on the other side of the
	// singularity.
	var diff dirfield.Point
	if t.strategy == StrategyAutomatic {
		diff = dirfield.Pt(t.singDX, t.singDX*der).Mul(float64(t.dir))
	} else {
		if t.singDiff.Length() > t.minStep {
			diff = t.singDiff
		} else {
			diff = dirfield.Pt(1, der).Resize(t.minStep)
		}
		if sgn(diff.X) != sgn(t.vector.X) {
			diff = diff.Mul(-1)
		}
		if math.Abs(diff.X) > t.singDX {
			diff = diff.ResizeByX(t.singDX)
		}
		if diff.Length() > t.maxStep {
			diff = diff.Resize(t.maxStep)
		}
		diff = diff.Mul(2) // land past the singularity, not on it
	}

	nx, ny := x+diff.X, y+diff.Y

	const sdx = 1e-15
	nDer, err := t.slopeFn(nx, ny)
	if err != nil {
		return ActionStop
	}
	nDer = roundIfCloseToZero(nDer)
	ahead, err := t.slopeFn(nx+sdx, ny+sdx*nDer)
	if err != nil {
		return ActionStop
	}
	nDer2 := roundIfCloseToZero((ahead - nDer) / sdx)

	primary, fallback := Classify(der, nDer, nDer2, t.dir)
	if primary != ActionContinue {
		return primary
	}
	if t.canContinue(dirfield.Pt(x, y), der, diff) {
		return ActionContinue
	}
	return fallback
}

// canContinue is the monotonicity/magnitude sanity check guarding
// ActionContinue decisions.
func (t *Tracer) canContinue(p dirfield.Point, der float64, diff dirfield.Point) bool {
	if t.strategy == StrategyManual {
		return t.singDiff.Length() > t.minStep
	}

	// A very steep slope is almost certainly a real singularity.
	if math.Abs(der) > 1e6 {
		return false
	}

	// Non-monotonic sign behavior near a suspected singularity is itself
	// evidence of a real one.
	probe := diff.ResizeByX(t.singDX)
	return t.isMonotonousOn(p, probe.Mul(2), 10)
}

// shouldYieldPoint decides whether the accumulated curve segment from
// segStart to p is worth emitting. On-screen excursions yield small
// segments, off-screen ones coarser segments, and every transition across
// the screen edge yields immediately.
func (t *Tracer) shouldYieldPoint(p dirfield.Point, segLen float64, segStart dirfield.Point) bool {
	startIn := t.vp.StrictlyContainsY(segStart.Y)
	endIn := t.vp.StrictlyContainsY(p.Y)

	switch {
	case startIn && endIn:
		return segLen > t.maxSegmentLen
	case startIn != endIn:
		return true
	}

	// Both endpoints off-screen: let segments grow with the distance from
	// the edge so far excursions do not accumulate useless points.
	needed := math.Max(t.vp.YEdgeDistance(p.Y)/2, t.maxSegmentLen)
	return segLen > needed
}

// setStepNoSingularity sizes t.vector for a normal step.
func (t *Tracer) setStepNoSingularity(p dirfield.Point) {
	t.vector = t.vector.ResizeByX(t.maxDX)

	// Clamp the Euclidean length only on-screen; off-screen excursions may
	// take big steps to save time.
	if t.vp.ContainsY(p.Y) && t.vector.Length() > t.maxStep {
		t.vector = t.vector.Resize(t.maxStep)
	}

	if t.strategy == StrategyManual {
		// Never overshoot more than a third of the way to the singularity.
		if l := t.singDiff.Length() / 3; t.vector.Length() >= l {
			t.vector = t.vector.Resize(l)
		}
	}
}

// setStepAfterContinue sizes t.vector after a Continue classification.
// continueCount is how many consecutive steps have continued through the
// suspected singularity; every tenth one, automatic mode checks whether
// the function looks monotonic ahead and relaxes back to full-size steps.
func (t *Tracer) setStepAfterContinue(p dirfield.Point, continueCount int) {
	if t.strategy == StrategyManual {
		step := math.Min(t.singDiff.Length()/3, t.maxStep)
		t.vector = t.vector.Resize(step)
		if math.Abs(t.vector.X) > t.maxDX {
			t.vector = t.vector.ResizeByX(t.maxDX)
		}
		return
	}

	t.vector = t.vector.ResizeByX(t.maxDX)
	if continueCount%10 == 0 && t.isMonotonousOn(p, t.vector.Mul(2), 20) {
		return
	}
	t.vector = t.vector.ResizeByX(t.singDX)
}

// Trace produces the solution curve from (x0, y0) as a lazy sequence of
// points. The sequence is finite, always starts with the start point, ends
// with a final point, and is computed on demand: stopping consumption at
// any yield boundary abandons the rest of the sweep.
//
// A Tracer is single-use; a second call returns an empty sequence.
func (t *Tracer) Trace(x0, y0 float64) iter.Seq[dirfield.Point] {
	return func(yield func(dirfield.Point) bool) {
		if t.traced {
			dirfield.Logger().Warn("tracer reused; returning empty sequence")
			return
		}
		t.traced = true
		t.trace(x0, y0, yield)
	}
}

func (t *Tracer) trace(x0, y0 float64, yield func(dirfield.Point) bool) {
	point := dirfield.Pt(x0, y0)
	lastPoint := point

	if !yield(point) {
		return
	}

	// Consecutive Continue decisions; automatic detection uses it to relax
	// step size once passing through looks safe.
	continueCount := 0

	segLen := 0.0
	segStart := point

	log := dirfield.Logger()

	for {
		s, err := t.slopeFn(point.X, point.Y)
		if err != nil {
			// Domain boundary reached; the curve ends here.
			log.Debug("slope undefined, ending trace", "x", point.X, "y", point.Y, "err", err)
			break
		}
		t.slope = s
		t.vector = dirfield.Pt(1, t.slope).Mul(float64(t.dir))

		if math.IsInf(t.vector.Length(), 0) {
			return
		}

		if !t.possibleSingularityAt(point.X, point.Y) {
			continueCount = 0
			t.setStepNoSingularity(point)
		} else {
			switch action := t.handleSingularity(point.X, point.Y); action {
			case ActionStop:
				log.Debug("singularity: stopping", "x", point.X, "y", point.Y)
				goto done

			case ActionInfinite:
				// Anchor the asymptote on whichever of the last two points
				// still has the original slope sign.
				lastSlope, err := t.slopeFn(lastPoint.X, lastPoint.Y)
				if err != nil {
					goto done
				}
				if sgn(lastSlope) != sgn(t.slope) {
					t.slope = lastSlope
					point = lastPoint
				}
				if sgn(t.slope) == 0 {
					yield(point)
					return
				}
				vdir := vDirection(sgn(t.slope) * int(t.dir))
				log.Debug("singularity: vertical asymptote", "x", point.X, "dir", int(vdir))
				t.verticalLine(point.X, point.Y, vdir, yield)
				return

			case ActionContinue:
				if t.strategy == StrategyAutomatic {
					continueCount++
				}
				t.setStepAfterContinue(point, continueCount)
			}
		}

		lastPoint = point
		point = point.Add(t.vector)

		if !t.vp.ContainsX(point.X) {
			break
		}
		if !t.vp.ContainsY(point.Y) && t.shouldStopIfYOutOfBounds(point.Y) {
			break
		}

		segLen += t.vector.Length()
		if t.shouldYieldPoint(point, segLen, segStart) {
			if !yield(point) {
				return
			}
			segStart = point
			segLen = 0
		}
	}

done:
	yield(point)
}

// verticalLine marches along a vertical asymptote at x0, adapting the
// y-step to the off-screen distance, until the slope flips sign (the curve
// crossed back to finite behavior) or the y-range is exited. Manual mode
// re-probes the singularity equation each sub-step and cuts off when the
// estimate drifts implausibly, guarding against the root finder latching
// onto an unrelated branch of the equation.
func (t *Tracer) verticalLine(x0, y0 float64, dir vDirection, yield func(dirfield.Point) bool) {
	originalDist := t.singDiff.Length()

	point := dirfield.Pt(x0, y0)
	segLen := 0.0
	segStart := point

	yStep := func(y float64) float64 {
		step := t.maxStep
		if !t.vp.ContainsY(y) {
			// Off-screen: jump a share of the distance to the edge instead
			// of crawling through the margin.
			step = math.Max(t.vp.YEdgeDistance(y)/100, t.maxStep)
		}
		return step * float64(dir)
	}

	for {
		if (dir == up && point.Y > t.vp.YMax) || (dir == down && point.Y < t.vp.YMin) {
			break
		}

		diffToNext := dirfield.Pt(0, yStep(point.Y))

		if t.strategy == StrategyManual {
			s, err := t.slopeFn(point.X, point.Y)
			if err != nil {
				break
			}
			sing, err := FirstIntersection(t.singEq, s, point.X, point.Y)
			if err != nil {
				break
			}
			diff := sing.Sub(point)

			if t.vp.ContainsY(point.Y) {
				// On-screen and drifting away from the singularity: the
				// asymptote ended.
				if diff.Length() > t.diagonal/100 {
					break
				}
			} else if diff.Length() > 10*originalDist {
				break
			}

			// Pull the probe point back toward the singularity curve.
			diffToNext = diffToNext.Add(diff.Div(2))
		}

		der, err := t.slopeFn(point.X, point.Y)
		if err != nil {
			break
		}
		nDer, err := t.slopeFn(point.X+diffToNext.X, point.Y+diffToNext.Y)
		if err != nil {
			break
		}
		if sgn(der) != sgn(nDer) {
			break
		}

		point = point.Add(diffToNext)

		// The x-correction above should stay microscopic; a large drift
		// means the root finder wandered off.
		if math.Abs(point.X-x0) > t.vp.Width()/50 {
			break
		}

		segLen += diffToNext.Length()
		if t.shouldYieldPoint(point, segLen, segStart) {
			if !yield(dirfield.Pt(x0, point.Y)) {
				return
			}
			segStart = point
			segLen = 0
		}
	}

	yield(dirfield.Pt(x0, point.Y))
}
