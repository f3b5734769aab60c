// Command dirfield plots the direction field of y' = f(x, y) and traces
// solution curves through given start points, writing the result as PNG.
//
// Example:
//
//	dirfield -f "x/y" -x -5:5 -y -5:5 -p "2,2;-2,2" -o plot.png
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/odeplot/dirfield"
	"github.com/odeplot/dirfield/render"
	"github.com/odeplot/dirfield/trace"
)

func main() {
	var (
		function  = flag.String("f", "x/y", "slope function f(x, y)")
		xRange    = flag.String("x", "-5:5", "x range as min:max")
		yRange    = flag.String("y", "-5:5", "y range as min:max")
		points    = flag.String("p", "", "start points as x1,y1;x2,y2;...")
		precision = flag.Int("precision", trace.DefaultTracePrecision, "trace precision (1..10)")
		arrows    = flag.Int("arrows", dirfield.DefaultNumArrows, "number of field arrows per axis")
		colors    = flag.Bool("colors", false, "color arrows by solution curvature")
		width     = flag.Int("width", 800, "image width")
		height    = flag.Int("height", 600, "image height")
		output    = flag.String("o", "dirfield.png", "output file")
	)
	flag.Parse()

	xmin, xmax, err := parseRange(*xRange)
	if err != nil {
		log.Fatalf("bad -x: %v", err)
	}
	ymin, ymax, err := parseRange(*yRange)
	if err != nil {
		log.Fatalf("bad -y: %v", err)
	}
	starts, err := parsePoints(*points)
	if err != nil {
		log.Fatalf("bad -p: %v", err)
	}

	vp := dirfield.NewViewport(xmin, xmax, ymin, ymax)
	sink := render.NewChartSink(*width, *height, vp)

	builder, err := dirfield.NewFieldBuilder(*function, vp)
	if err != nil {
		log.Fatalf("bad -f: %v", err)
	}
	builder.NumArrows = *arrows
	fieldArrows := builder.Arrows()
	if *colors {
		sink.SetField(fieldArrows, builder.Colors(fieldArrows))
	} else {
		sink.SetField(fieldArrows, nil)
	}

	settings := trace.NewSettings()
	settings.Precision = *precision

	c := trace.NewCoordinator(sink, settings, func() dirfield.Viewport { return vp })
	if err := c.SetSlopeFunction(*function); err != nil {
		log.Fatalf("bad -f: %v", err)
	}
	for _, p := range starts {
		if err := c.TraceFromPoint(p.X, p.Y); err != nil {
			log.Fatalf("tracing from (%g, %g): %v", p.X, p.Y, err)
		}
	}
	c.Wait()
	c.Shutdown()

	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("creating output: %v", err)
	}
	defer f.Close()
	if err := sink.Render(f); err != nil {
		log.Fatalf("rendering: %v", err)
	}

	log.Printf("Plot saved to %s (%dx%d, %d curves)\n", *output, *width, *height, sink.CurveCount())
}

func parseRange(s string) (min, max float64, err error) {
	lo, hi, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("expected min:max, got %q", s)
	}
	if min, err = strconv.ParseFloat(strings.TrimSpace(lo), 64); err != nil {
		return 0, 0, err
	}
	if max, err = strconv.ParseFloat(strings.TrimSpace(hi), 64); err != nil {
		return 0, 0, err
	}
	return min, max, nil
}

func parsePoints(s string) ([]dirfield.Point, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var pts []dirfield.Point
	for _, part := range strings.Split(s, ";") {
		xs, ys, ok := strings.Cut(part, ",")
		if !ok {
			return nil, fmt.Errorf("expected x,y pairs, got %q", part)
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
		if err != nil {
			return nil, err
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
		if err != nil {
			return nil, err
		}
		pts = append(pts, dirfield.Pt(x, y))
	}
	return pts, nil
}
