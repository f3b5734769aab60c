package dirfield

import "image/color"

// LineStyle describes how a traced curve is drawn.
type LineStyle struct {
	// Color is the stroke color.
	Color color.Color

	// Width is the physical stroke width, in plot display units.
	Width float64
}

// CurveBatch is one renderable unit: a polyline of trace points together
// with the style it should be drawn in. Points are connected in order.
type CurveBatch struct {
	Style  LineStyle
	Points []Point
}

// RenderSink receives curve batches produced by the tracing pipeline.
//
// DrawCurves is called from the draw-consumer goroutine, at most once per
// drain tick, with every batch collected during that tick. Implementations
// should draw all batches and repaint once. DrawCurves must be safe to call
// concurrently with any other methods the implementation exposes, but the
// pipeline itself never calls it from more than one goroutine at a time.
type RenderSink interface {
	DrawCurves(batches []CurveBatch)
}
