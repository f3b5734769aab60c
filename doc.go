// Package dirfield visualizes direction fields of first-order ordinary
// differential equations y'(x) = f(x, y) and traces approximate solution
// curves through them.
//
// # Overview
//
// The user supplies the right-hand side f(x, y) as a textual expression.
// The library samples the slope field into a grid of arrows, and, on
// request, traces the solution curve passing through a given point in both
// directions. Tracing is adaptive: step sizes shrink near suspected
// singularities of the slope function, and a classifier decides whether a
// singularity terminates the curve or continues it as a vertical asymptote.
//
// # Quick Start
//
//	import (
//	    "github.com/odeplot/dirfield"
//	    "github.com/odeplot/dirfield/render"
//	    "github.com/odeplot/dirfield/trace"
//	)
//
//	vp := dirfield.NewViewport(-5, 5, -5, 5)
//	sink := render.NewChartSink(800, 600, vp)
//
//	co := trace.NewCoordinator(sink, trace.NewSettings(), func() dirfield.Viewport { return vp })
//	co.SetSlopeFunction("-x*y")
//	co.TraceFromPoint(0, 1)
//	co.Wait()
//	co.Shutdown()
//
//	f, _ := os.Create("field.png")
//	sink.Render(f)
//
// # Architecture
//
// The library is organized into:
//   - Root package: shared geometry (Point, Viewport), the render seam
//     (RenderSink, CurveBatch), and the direction-field arrow builder.
//   - mathexpr: compiles user-entered expressions into callable functions.
//   - trace: the adaptive solution tracer, singularity handling, and the
//     job/coordinator/draw-queue pipeline that runs tracers off the caller's
//     goroutine.
//   - render: software render sinks (go-chart PNG plots, raw RGBA raster).
//
// # Coordinate System
//
// All coordinates are mathematical plot coordinates: X increases right,
// Y increases up. Mapping to device pixels is a render-sink concern.
package dirfield
