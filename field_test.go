package dirfield

import (
	"image/color"
	"math"
	"testing"
)

func newTestBuilder(t *testing.T, src string, vp Viewport) *FieldBuilder {
	t.Helper()
	b, err := NewFieldBuilder(src, vp)
	if err != nil {
		t.Fatalf("NewFieldBuilder(%q): %v", src, err)
	}
	return b
}

func TestArrowsUniformField(t *testing.T) {
	vp := NewViewport(-5, 5, -5, 5)
	b := newTestBuilder(t, "1", vp)
	arrows := b.Arrows()

	// The aligned grid covers the viewport plus one step of overhang per
	// side, so there are at least NumArrows^2 samples.
	if min := b.NumArrows * b.NumArrows; len(arrows) < min {
		t.Fatalf("got %d arrows, want at least %d", len(arrows), min)
	}

	wantLen := vp.Diagonal() * float64(b.ArrowLength) / 200
	for _, a := range arrows {
		if math.Abs(a.Vector.Length()-wantLen) > 1e-9 {
			t.Fatalf("arrow length = %v, want %v", a.Vector.Length(), wantLen)
		}
		// Slope 1 everywhere: the vector must point along (1, 1).
		if math.Abs(a.Vector.X-a.Vector.Y) > 1e-9 {
			t.Fatalf("arrow vector %v not aligned with slope 1", a.Vector)
		}
	}
}

func TestArrowCenteredOnGridPoint(t *testing.T) {
	vp := NewViewport(-5, 5, -5, 5)
	b := newTestBuilder(t, "x", vp)

	a, ok := b.arrowAt(2, 3, 1)
	if !ok {
		t.Fatal("arrowAt(2, 3) gave no arrow")
	}
	if c := a.Center(); !c.Approx(Pt(2, 3), 1e-12) {
		t.Errorf("Center() = %v, want (2, 3)", c)
	}
}

func TestArrowAtUndefinedPoint(t *testing.T) {
	vp := NewViewport(-5, 5, -5, 5)
	b := newTestBuilder(t, "x/y", vp)

	// On the x axis the slope blows up approaching from above, so the
	// field is effectively vertical there.
	a, ok := b.arrowAt(2, 0, 1)
	if !ok {
		t.Fatal("arrowAt(2, 0) gave no arrow, want vertical")
	}
	if a.Vector.X != 0 {
		t.Errorf("arrow vector = %v, want vertical", a.Vector)
	}

	// At the origin the limit is 0/0; no arrow can be drawn.
	if _, ok := b.arrowAt(0, 0, 1); ok {
		t.Error("arrowAt(0, 0) gave an arrow, want none")
	}
}

func TestArrowCache(t *testing.T) {
	vp := NewViewport(-5, 5, -5, 5)
	b := newTestBuilder(t, "x+y", vp)

	a1, ok := b.arrowAt(1, 1, 2)
	if !ok {
		t.Fatal("no arrow")
	}
	// The cache ignores a changed arrow length until reset.
	a2, _ := b.arrowAt(1, 1, 5)
	if a1 != a2 {
		t.Errorf("cached arrow differs: %v vs %v", a1, a2)
	}
	b.ResetCache()
	a3, _ := b.arrowAt(1, 1, 5)
	if a1 == a3 {
		t.Error("arrow unchanged after cache reset with new length")
	}
}

func TestColorsFlatFieldUniform(t *testing.T) {
	vp := NewViewport(-5, 5, -5, 5)
	b := newTestBuilder(t, "2", vp)

	arrows := b.Arrows()
	colors := b.Colors(arrows)
	if len(colors) != len(arrows) {
		t.Fatalf("got %d colors for %d arrows", len(colors), len(arrows))
	}
	// Straight solutions everywhere: zero curvature, a single cold color.
	for i := 1; i < len(colors); i++ {
		if colors[i] != colors[0] {
			t.Fatalf("color %d differs on a curvature-free field", i)
		}
	}
}

func TestColorsVaryWithCurvature(t *testing.T) {
	vp := NewViewport(-5, 5, -5, 5)
	b := newTestBuilder(t, "x*y", vp)

	arrows := b.Arrows()
	colors := b.Colors(arrows)

	distinct := map[color.Color]bool{}
	for _, c := range colors {
		distinct[c] = true
	}
	if len(distinct) < 2 {
		t.Errorf("got %d distinct colors on a curved field, want several", len(distinct))
	}
}

func TestLerpColorEndpoints(t *testing.T) {
	if got := lerpColor(0); got != (color.RGBA{R: 40, G: 40, B: 160, A: 0xff}) {
		t.Errorf("lerpColor(0) = %v", got)
	}
	if got := lerpColor(1); got != (color.RGBA{R: 255, A: 0xff}) {
		t.Errorf("lerpColor(1) = %v", got)
	}
	// Out-of-range inputs clamp.
	if lerpColor(-3) != lerpColor(0) || lerpColor(7) != lerpColor(1) {
		t.Error("lerpColor does not clamp out-of-range inputs")
	}
}
