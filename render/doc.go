// Package render provides software render sinks for the tracing pipeline.
//
// [ChartSink] accumulates traced curves and direction-field arrows and
// renders a finished plot to PNG via go-chart; [RasterSink] strokes curve
// batches straight into an RGBA image, for callers embedding the field
// into their own surface.
//
// Both sinks implement [dirfield.RenderSink] and are safe for concurrent
// use: the drawing consumer feeds them from its own goroutine while the
// owner reads the output.
package render
