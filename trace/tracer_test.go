package trace

import (
	"math"
	"testing"

	"github.com/odeplot/dirfield"
)

// collect drains a trace sequence with a safety cap so a runaway stepping
// loop fails the test instead of hanging it.
func collect(t *testing.T, seq func(func(dirfield.Point) bool)) []dirfield.Point {
	t.Helper()
	const maxPoints = 200000
	var pts []dirfield.Point
	for p := range seq {
		pts = append(pts, p)
		if len(pts) > maxPoints {
			t.Fatalf("trace did not terminate within %d points", maxPoints)
		}
	}
	return pts
}

func newTestTracer(t *testing.T, slopeFn string, dir Direction, vp dirfield.Viewport) *Tracer {
	t.Helper()
	tr, err := NewTracer(NewSettings(), slopeFn, dir, vp)
	if err != nil {
		t.Fatalf("NewTracer(%q): %v", slopeFn, err)
	}
	return tr
}

func TestTraceGaussian(t *testing.T) {
	// y' = -x*y from (0, 1) follows the bell curve exp(-x^2/2), which stays
	// on-screen and exits through the x range on both sides.
	vp := dirfield.NewViewport(-5, 5, -5, 5)

	for _, dir := range []Direction{Right, Left} {
		t.Run(dir.String(), func(t *testing.T) {
			tr := newTestTracer(t, "-x*y", dir, vp)
			pts := collect(t, tr.Trace(0, 1))

			if len(pts) < 2 {
				t.Fatalf("got %d points, want at least start and end", len(pts))
			}
			if pts[0] != dirfield.Pt(0, 1) {
				t.Errorf("first point = %v, want (0, 1)", pts[0])
			}

			last := pts[len(pts)-1]
			if dir == Right && last.X <= vp.XMax-1 {
				t.Errorf("rightward trace ended at x = %v, want near %v", last.X, vp.XMax)
			}
			if dir == Left && last.X >= vp.XMin+1 {
				t.Errorf("leftward trace ended at x = %v, want near %v", last.X, vp.XMin)
			}

			for i := 1; i < len(pts); i++ {
				dx := pts[i].X - pts[i-1].X
				if dir == Right && dx < 0 {
					t.Fatalf("rightward trace stepped backwards at point %d", i)
				}
				if dir == Left && dx > 0 {
					t.Fatalf("leftward trace stepped backwards at point %d", i)
				}
			}

			// The solution never leaves (0, 1]; traced points should stay
			// close to it.
			for _, p := range pts {
				want := math.Exp(-p.X * p.X / 2)
				if math.Abs(p.Y-want) > 0.05 {
					t.Fatalf("point (%v, %v) deviates from exp(-x^2/2) = %v", p.X, p.Y, want)
				}
			}
		})
	}
}

func TestTraceAcrossSingularity(t *testing.T) {
	// y' = x/y blows up on the x axis. Tracing right from (-2, 2) follows
	// y = -x down toward the origin; the tracer must terminate rather than
	// stall at the singularity.
	vp := dirfield.NewViewport(-5, 5, -5, 5)
	tr := newTestTracer(t, "x/y", Right, vp)
	pts := collect(t, tr.Trace(-2, 2))

	if len(pts) < 2 {
		t.Fatalf("got %d points, want at least 2", len(pts))
	}
	if pts[0] != dirfield.Pt(-2, 2) {
		t.Errorf("first point = %v, want (-2, 2)", pts[0])
	}
}

func TestTraceTowardOrigin(t *testing.T) {
	// From (2, 2) the solution of y' = x/y is the line y = x, which runs
	// straight through the undefined point at the origin. Both sweeps must
	// terminate, whether by stepping over the origin or by ending there.
	vp := dirfield.NewViewport(-5, 5, -5, 5)

	for _, dir := range []Direction{Right, Left} {
		t.Run(dir.String(), func(t *testing.T) {
			tr := newTestTracer(t, "x/y", dir, vp)
			pts := collect(t, tr.Trace(2, 2))
			if len(pts) < 2 {
				t.Fatalf("got %d points, want at least 2", len(pts))
			}
			for _, p := range pts {
				if math.Abs(p.Y-p.X) > 0.05 {
					t.Fatalf("point %v deviates from the solution y = x", p)
				}
			}
		})
	}
}

func TestTraceVerticalAsymptote(t *testing.T) {
	// y' = y^2 from (0, 1) solves to 1/(1-x), which diverges at x = 1. The
	// trace must end instead of marching forever, and must not wander far
	// past the asymptote.
	vp := dirfield.NewViewport(-5, 5, -5, 5)
	tr := newTestTracer(t, "y^2", Right, vp)
	pts := collect(t, tr.Trace(0, 1))

	last := pts[len(pts)-1]
	if last.X > 1.5 {
		t.Errorf("trace ran to x = %v, well past the asymptote at 1", last.X)
	}
}

func TestTraceUndefinedStart(t *testing.T) {
	// The slope is undefined at the start point itself; the trace must
	// still yield the start and a final point without panicking.
	vp := dirfield.NewViewport(-5, 5, -5, 5)
	tr := newTestTracer(t, "x/y", Right, vp)
	pts := collect(t, tr.Trace(1, 0))

	if len(pts) == 0 {
		t.Fatal("got no points")
	}
	if pts[0] != dirfield.Pt(1, 0) {
		t.Errorf("first point = %v, want (1, 0)", pts[0])
	}
}

func TestTracerSingleUse(t *testing.T) {
	vp := dirfield.NewViewport(-5, 5, -5, 5)
	tr := newTestTracer(t, "-x*y", Right, vp)

	first := collect(t, tr.Trace(0, 1))
	if len(first) < 2 {
		t.Fatalf("first trace yielded %d points", len(first))
	}

	second := collect(t, tr.Trace(0, 1))
	if len(second) != 0 {
		t.Errorf("second trace yielded %d points, want 0", len(second))
	}
}

func TestTraceManualStrategy(t *testing.T) {
	vp := dirfield.NewViewport(-5, 5, -5, 5)
	settings := NewSettings()
	settings.SetPreferredDetectionFor("x/y", StrategyManual)

	tr, err := NewTracer(settings, "x/y", Right, vp)
	if err != nil {
		t.Fatalf("NewTracer: %v", err)
	}
	pts := collect(t, tr.Trace(-2, 2))
	if len(pts) < 2 {
		t.Fatalf("got %d points, want at least 2", len(pts))
	}
}

func TestNewTracerErrors(t *testing.T) {
	vp := dirfield.NewViewport(-5, 5, -5, 5)

	if _, err := NewTracer(NewSettings(), "x +", Right, vp); err == nil {
		t.Error("NewTracer with invalid slope function: want error")
	}

	settings := NewSettings()
	settings.SetPreferredDetectionFor("sin(x)", StrategyManual)
	if _, err := NewTracer(settings, "sin(x)", Right, vp); err != ErrNoSingularityEquation {
		t.Errorf("NewTracer manual without equation: got %v, want ErrNoSingularityEquation", err)
	}
}

func TestIsMonotonousOn(t *testing.T) {
	vp := dirfield.NewViewport(-5, 5, -5, 5)
	tr := newTestTracer(t, "x", Right, vp)

	tests := []struct {
		name  string
		start dirfield.Point
		diff  dirfield.Point
		want  bool
	}{
		{"same sign throughout", dirfield.Pt(1, 0), dirfield.Pt(1, 0), true},
		{"sign change inside", dirfield.Pt(-1, 0), dirfield.Pt(3, 0), false},
		{"negative side", dirfield.Pt(-4, 0), dirfield.Pt(1, 0), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tr.isMonotonousOn(tt.start, tt.diff, 10); got != tt.want {
				t.Errorf("isMonotonousOn(%v, %v) = %v, want %v", tt.start, tt.diff, got, tt.want)
			}
		})
	}

	// An evaluation failure anywhere along the probe counts as not
	// monotonous, even when every defined sample keeps the start's sign.
	st := newTestTracer(t, "sqrt(1-x)+1", Right, vp)
	if st.isMonotonousOn(dirfield.Pt(0, 0), dirfield.Pt(2, 0), 10) {
		t.Error("isMonotonousOn across a domain boundary = true, want false")
	}
}

func TestRoundIfCloseToZero(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{1e-10, 0},
		{-1e-10, 0},
		{1e-8, 1e-8},
		{2.5, 2.5},
		{0, 0},
	}
	for _, tt := range tests {
		if got := roundIfCloseToZero(tt.in); got != tt.want {
			t.Errorf("roundIfCloseToZero(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSnapNearInteger(t *testing.T) {
	tests := []struct {
		in   float64
		tol  float64
		want float64
	}{
		{2.0000001, 1e-6, 2},
		{1.9999999, 1e-6, 2},
		{2.1, 1e-6, 2.1},
		{-3.0000001, 1e-6, -3},
	}
	for _, tt := range tests {
		if got := snapNearInteger(tt.in, tt.tol); got != tt.want {
			t.Errorf("snapNearInteger(%v, %v) = %v, want %v", tt.in, tt.tol, got, tt.want)
		}
	}
}
