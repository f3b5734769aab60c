package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"

	"golang.org/x/image/vector"

	"github.com/odeplot/dirfield"
)

// RasterSink strokes curve batches directly into an RGBA image as they
// arrive. Unlike ChartSink it renders immediately, so the image always
// shows everything drawn so far; already-drawn content is unaffected by
// later clears upstream.
type RasterSink struct {
	width, height int
	vp            dirfield.Viewport

	mu       sync.Mutex
	img      *image.RGBA
	repaints int
}

// NewRasterSink creates a sink with a white width x height canvas mapped
// to the given viewport.
func NewRasterSink(width, height int, vp dirfield.Viewport) *RasterSink {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return &RasterSink{width: width, height: height, vp: vp, img: img}
}

// DrawCurves implements [dirfield.RenderSink]: each batch is stroked as a
// polyline, then the canvas counts one repaint.
func (s *RasterSink) DrawCurves(batches []dirfield.CurveBatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range batches {
		if len(b.Points) < 2 {
			continue
		}
		s.strokePolyline(b)
	}
	s.repaints++
}

// Image returns a copy of the canvas.
func (s *RasterSink) Image() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := image.NewRGBA(s.img.Bounds())
	copy(out.Pix, s.img.Pix)
	return out
}

// Repaints returns how many times the drawing consumer has flushed into
// the sink.
func (s *RasterSink) Repaints() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repaints
}

// toPixel maps plot coordinates to pixel coordinates (y flipped).
func (s *RasterSink) toPixel(p dirfield.Point) (float32, float32) {
	x := (p.X - s.vp.XMin) / s.vp.Width() * float64(s.width)
	y := (s.vp.YMax - p.Y) / s.vp.Height() * float64(s.height)
	return float32(x), float32(y)
}

// strokePolyline rasterizes the batch by filling one quad per segment.
// Bevel-less joins are fine at trace resolution: consecutive segments
// overlap at their shared endpoint.
func (s *RasterSink) strokePolyline(b dirfield.CurveBatch) {
	half := b.Style.Width / 2
	if half <= 0 {
		half = 0.5
	}

	r := vector.NewRasterizer(s.width, s.height)
	for i := 1; i < len(b.Points); i++ {
		p0, p1 := b.Points[i-1], b.Points[i]
		d := p1.Sub(p0)
		if d.Length() == 0 {
			continue
		}
		// Perpendicular offset in pixel space so the stroke width is
		// uniform regardless of the viewport aspect.
		x0, y0 := s.toPixel(p0)
		x1, y1 := s.toPixel(p1)
		dx, dy := x1-x0, y1-y0
		segLen := math.Hypot(float64(dx), float64(dy))
		if segLen == 0 {
			continue
		}
		l := float32(half / segLen)
		nx, ny := -dy*l, dx*l

		r.MoveTo(x0+nx, y0+ny)
		r.LineTo(x1+nx, y1+ny)
		r.LineTo(x1-nx, y1-ny)
		r.LineTo(x0-nx, y0-ny)
		r.ClosePath()
	}

	src := image.NewUniform(b.Style.Color)
	r.Draw(s.img, s.img.Bounds(), src, image.Point{})
}
