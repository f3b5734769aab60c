package dirfield

import (
	"image/color"
	"math"

	"github.com/odeplot/dirfield/mathexpr"
)

// Direction-field defaults. Arrow length and width are display units on
// the same 1..20 scale the original visualizer exposes.
const (
	MinArrowLength     = 1
	MaxArrowLength     = 20
	DefaultArrowLength = 7

	MinNumArrows     = 1
	MaxNumArrows     = 150
	DefaultNumArrows = 26

	MinColorPrecision     = 1
	MaxColorPrecision     = 10
	DefaultColorPrecision = 6
)

// Arrow is one direction-field sample: an arrow of the field centered on a
// grid point, described by its start point and direction vector.
type Arrow struct {
	Start  Point
	Vector Point
}

// Center returns the grid point the arrow is centered on.
func (a Arrow) Center() Point {
	return a.Start.Add(a.Vector.Div(2))
}

// FieldBuilder samples a slope function into a grid of direction-field
// arrows, with optional curvature-based coloring. It is the simple
// grid-sampling counterpart to the solution tracer: no adaptivity, one
// evaluation per grid point, undefined points skipped.
type FieldBuilder struct {
	// NumArrows is the number of arrows per axis.
	NumArrows int

	// ArrowLength is the displayed arrow length, MinArrowLength..MaxArrowLength.
	ArrowLength int

	// ColorPrecision controls the finite-difference step for curvature
	// coloring; higher is finer.
	ColorPrecision int

	fn    mathexpr.Func
	vp    Viewport
	cache map[Point]Arrow
}

// NewFieldBuilder compiles src and returns a builder sampling it over the
// given viewport.
func NewFieldBuilder(src string, vp Viewport) (*FieldBuilder, error) {
	fn, err := mathexpr.Compile(src)
	if err != nil {
		return nil, err
	}
	return &FieldBuilder{
		NumArrows:      DefaultNumArrows,
		ArrowLength:    DefaultArrowLength,
		ColorPrecision: DefaultColorPrecision,
		fn:             fn,
		vp:             vp,
	}, nil
}

// arrowAt samples the field at (x, y). A point where the slope function is
// undefined yields no arrow, except when the field is effectively vertical
// there (the slope blows up approaching the point), which yields a
// vertical arrow.
func (b *FieldBuilder) arrowAt(x, y, arrowLen float64) (Arrow, bool) {
	if b.cache != nil {
		if a, ok := b.cache[Pt(x, y)]; ok {
			return a, true
		}
	}

	var vector Point
	der, err := b.fn(x, y)
	if err == nil {
		vector = Pt(1, der)
	} else {
		near, nerr := b.fn(x, y+1e-12)
		if nerr != nil || math.Abs(near) < 1e9 {
			return Arrow{}, false
		}
		vector = Pt(0, 1)
	}

	vector = vector.Resize(arrowLen)
	center := Pt(x, y)
	a := Arrow{Start: center.Sub(vector.Div(2)), Vector: vector}
	if b.cache == nil {
		b.cache = map[Point]Arrow{}
	}
	b.cache[Pt(x, y)] = a
	return a, true
}

// ResetCache drops memoized arrows; call after the slope function or
// arrow length changes.
func (b *FieldBuilder) ResetCache() {
	b.cache = nil
}

// Arrows samples the whole grid. The grid is aligned to multiples of the
// step so arrows keep their positions as the viewport pans.
func (b *FieldBuilder) Arrows() []Arrow {
	arrowLen := b.vp.Diagonal() * float64(b.ArrowLength) / 200

	xStep := b.vp.Width() / float64(b.NumArrows)
	yStep := b.vp.Height() / float64(b.NumArrows)
	alignDown := func(v, step float64) float64 { return step * math.Floor(v/step) }

	var arrows []Arrow
	for x := alignDown(b.vp.XMin, xStep); x <= b.vp.XMax+xStep; x += xStep {
		for y := alignDown(b.vp.YMin, yStep); y <= b.vp.YMax+yStep; y += yStep {
			if a, ok := b.arrowAt(x, y, arrowLen); ok {
				arrows = append(arrows, a)
			}
		}
	}
	return arrows
}

// curvatureAt estimates the solution-curve curvature at (x, y):
// y'' / (1 + y'^2)^(3/2), with y'' by central difference along the field
// direction. Coordinates within dx of an integer snap to it first. Points
// where the estimate fails are retried a small distance away, then give 0.
func (b *FieldBuilder) curvatureAt(x, y, dx float64) float64 {
	x = snapInt(x, dx)
	y = snapInt(y, dx)

	curvature := func(x, y float64) (float64, error) {
		dy, err := b.fn(x, y)
		if err != nil {
			return 0, err
		}
		ahead, err := b.fn(x+dx, y+dx*dy)
		if err != nil {
			return 0, err
		}
		behind, err := b.fn(x-dx, y-dx*dy)
		if err != nil {
			return 0, err
		}
		d2y := (ahead - behind) / (2 * dx)
		return d2y / math.Pow(1+dy*dy, 1.5), nil
	}

	fixDX := math.Max(0.002, b.vp.Width()/1000)
	fixDY := math.Max(0.002, b.vp.Height()/1000)
	if c, err := curvature(x, y); err == nil {
		return c
	}
	if c, err := curvature(x, y+fixDY); err == nil {
		return c
	}
	if c, err := curvature(x+fixDX, y); err == nil {
		return c
	}
	return 0
}

func snapInt(v, tol float64) float64 {
	r := math.Round(v)
	if math.Abs(v-r) < tol {
		return r
	}
	return v
}

// normalizeCurvatures maps absolute curvatures to 0..1, ignoring
// off-screen samples when picking the maximum. A single on-screen maximum
// that dwarfs the runner-up is very likely a division-by-zero fluke and is
// ignored too (the allowance grows with the arrow count).
func (b *FieldBuilder) normalizeCurvatures(curvatures []float64, offscreen []bool) []float64 {
	maxVal, secondMax := 0.0, math.Inf(-1)
	numMax, onScreen := 0, 0
	for i, c := range curvatures {
		if offscreen[i] {
			continue
		}
		onScreen++
		if c > maxVal {
			secondMax = maxVal
			maxVal = c
			numMax = 1
		} else if c == maxVal {
			numMax++
		} else if c > secondMax {
			secondMax = c
		}
	}
	if onScreen == 0 || maxVal == 0 {
		return make([]float64, len(curvatures))
	}
	if math.IsInf(secondMax, -1) {
		secondMax = maxVal
	}
	limit := max(1, b.NumArrows*b.NumArrows/1000)
	if numMax >= 1 && numMax <= limit && maxVal > 2*secondMax && secondMax > 0 {
		maxVal = secondMax
	}

	out := make([]float64, len(curvatures))
	for i, c := range curvatures {
		out[i] = math.Min(c/maxVal, 1)
	}
	return out
}

// Colors returns one color per arrow, shading by normalized curvature
// magnitude at the arrow center from cold (flat) to warm (tightly curved).
func (b *FieldBuilder) Colors(arrows []Arrow) []color.Color {
	dx := b.vp.Diagonal() / math.Pow(10, 1+float64(b.ColorPrecision)/2)

	curvatures := make([]float64, len(arrows))
	offscreen := make([]bool, len(arrows))
	for i, a := range arrows {
		c := a.Center()
		curvatures[i] = math.Abs(b.curvatureAt(c.X, c.Y, dx))
		offscreen[i] = !b.vp.ContainsX(c.X) || !b.vp.ContainsY(c.Y)
	}

	normalized := b.normalizeCurvatures(curvatures, offscreen)
	colors := make([]color.Color, len(arrows))
	for i, t := range normalized {
		colors[i] = lerpColor(t)
	}
	return colors
}

// lerpColor blends dark blue (t=0) through purple to red (t=1).
func lerpColor(t float64) color.Color {
	t = math.Min(math.Max(t, 0), 1)
	return color.RGBA{
		R: uint8(40 + 215*t),
		G: uint8(40 * (1 - t)),
		B: uint8(160 * (1 - t)),
		A: 0xff,
	}
}
