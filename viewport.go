package dirfield

import "math"

// Viewport is a snapshot of the visible plot region. A trace reads the
// viewport once when it starts and uses that snapshot throughout, even if
// the live view pans or zooms mid-trace.
type Viewport struct {
	XMin, XMax float64
	YMin, YMax float64
}

// NewViewport creates a viewport, normalizing swapped bounds.
func NewViewport(xmin, xmax, ymin, ymax float64) Viewport {
	if xmin > xmax {
		xmin, xmax = xmax, xmin
	}
	if ymin > ymax {
		ymin, ymax = ymax, ymin
	}
	return Viewport{XMin: xmin, XMax: xmax, YMin: ymin, YMax: ymax}
}

// Width returns the x-axis span.
func (v Viewport) Width() float64 { return v.XMax - v.XMin }

// Height returns the y-axis span.
func (v Viewport) Height() float64 { return v.YMax - v.YMin }

// Diagonal returns the length of the viewport diagonal. Step-size scales
// for tracing are derived from it so that precision behaves uniformly
// across zoom levels.
func (v Viewport) Diagonal() float64 {
	return math.Hypot(v.Width(), v.Height())
}

// ContainsX reports whether x lies within the x-range, inclusive.
func (v Viewport) ContainsX(x float64) bool {
	return v.XMin <= x && x <= v.XMax
}

// ContainsY reports whether y lies within the y-range, inclusive.
func (v Viewport) ContainsY(y float64) bool {
	return v.YMin <= y && y <= v.YMax
}

// StrictlyContainsY reports whether y lies strictly inside the y-range.
// Visibility decisions use the strict form so that points exactly on the
// edge count as off-screen.
func (v Viewport) StrictlyContainsY(y float64) bool {
	return v.YMin < y && y < v.YMax
}

// YEdgeDistance returns the distance from y to the nearer horizontal edge
// of the viewport.
func (v Viewport) YEdgeDistance(y float64) float64 {
	if y < v.YMin {
		return math.Abs(y - v.YMin)
	}
	return math.Abs(y - v.YMax)
}
