package render

import (
	"fmt"
	"image/color"
	"io"
	"sync"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/odeplot/dirfield"
)

// ChartSink accumulates everything the pipeline produces and renders a
// finished plot on demand. DrawCurves appends and counts a repaint;
// nothing is rasterized until Render.
type ChartSink struct {
	width, height int
	vp            dirfield.Viewport

	mu       sync.Mutex
	curves   []dirfield.CurveBatch
	arrows   []dirfield.Arrow
	colors   []color.Color
	repaints int
}

// NewChartSink creates a sink rendering into a width x height plot of the
// given viewport.
func NewChartSink(width, height int, vp dirfield.Viewport) *ChartSink {
	return &ChartSink{width: width, height: height, vp: vp}
}

// DrawCurves implements [dirfield.RenderSink].
func (s *ChartSink) DrawCurves(batches []dirfield.CurveBatch) {
	s.mu.Lock()
	s.curves = append(s.curves, batches...)
	s.repaints++
	s.mu.Unlock()
}

// SetField installs the direction-field arrows drawn under the curves.
// colors may be nil for a uniform gray field; otherwise it must be one
// color per arrow.
func (s *ChartSink) SetField(arrows []dirfield.Arrow, colors []color.Color) {
	s.mu.Lock()
	s.arrows = arrows
	s.colors = colors
	s.mu.Unlock()
}

// Repaints returns how many times the drawing consumer has flushed into
// the sink.
func (s *ChartSink) Repaints() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repaints
}

// CurveCount returns the number of accumulated curve batches.
func (s *ChartSink) CurveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.curves)
}

// Render writes the accumulated plot as PNG.
func (s *ChartSink) Render(w io.Writer) error {
	s.mu.Lock()
	series := make([]chart.Series, 0, len(s.arrows)+len(s.curves))

	gray := drawing.Color{R: 0x80, G: 0x80, B: 0x80, A: 0xff}
	for i, a := range s.arrows {
		col := gray
		if s.colors != nil {
			col = toDrawingColor(s.colors[i])
		}
		end := a.Start.Add(a.Vector)
		series = append(series, chart.ContinuousSeries{
			XValues: []float64{a.Start.X, end.X},
			YValues: []float64{a.Start.Y, end.Y},
			Style:   chart.Style{StrokeColor: col, StrokeWidth: 1},
		})
	}

	for _, c := range s.curves {
		if len(c.Points) < 2 {
			continue
		}
		xs := make([]float64, len(c.Points))
		ys := make([]float64, len(c.Points))
		for i, p := range c.Points {
			xs[i] = p.X
			ys[i] = p.Y
		}
		series = append(series, chart.ContinuousSeries{
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: toDrawingColor(c.Style.Color),
				StrokeWidth: c.Style.Width,
			},
		})
	}
	s.mu.Unlock()

	if len(series) == 0 {
		return fmt.Errorf("render: nothing to draw")
	}

	graph := chart.Chart{
		Width:  s.width,
		Height: s.height,
		XAxis: chart.XAxis{
			Range: &chart.ContinuousRange{Min: s.vp.XMin, Max: s.vp.XMax},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: s.vp.YMin, Max: s.vp.YMax},
		},
		Series: series,
	}
	return graph.Render(chart.PNG, w)
}

func toDrawingColor(c color.Color) drawing.Color {
	if c == nil {
		return drawing.Color{A: 0xff}
	}
	r, g, b, a := c.RGBA()
	return drawing.Color{
		R: uint8(r >> 8),
		G: uint8(g >> 8),
		B: uint8(b >> 8),
		A: uint8(a >> 8),
	}
}
