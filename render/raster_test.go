package render

import (
	"image/color"
	"testing"

	"github.com/odeplot/dirfield"
)

func TestRasterSinkStartsWhite(t *testing.T) {
	s := NewRasterSink(20, 20, dirfield.NewViewport(-1, 1, -1, 1))
	img := s.Image()
	if got := img.RGBAAt(10, 10); got != (color.RGBA{0xff, 0xff, 0xff, 0xff}) {
		t.Errorf("fresh canvas pixel = %v, want white", got)
	}
}

func TestRasterSinkStrokesCurve(t *testing.T) {
	vp := dirfield.NewViewport(-1, 1, -1, 1)
	s := NewRasterSink(100, 100, vp)

	s.DrawCurves([]dirfield.CurveBatch{{
		Style:  dirfield.LineStyle{Color: color.RGBA{R: 0xff, A: 0xff}, Width: 4},
		Points: []dirfield.Point{dirfield.Pt(-1, 0), dirfield.Pt(1, 0)},
	}})

	img := s.Image()

	// The horizontal line through y = 0 maps to pixel row 50.
	center := img.RGBAAt(50, 50)
	if center.R < 0xc0 || center.G > 0x40 || center.B > 0x40 {
		t.Errorf("pixel on the stroke = %v, want red", center)
	}

	// Far from the stroke the canvas stays white.
	corner := img.RGBAAt(5, 5)
	if corner != (color.RGBA{0xff, 0xff, 0xff, 0xff}) {
		t.Errorf("pixel off the stroke = %v, want white", corner)
	}

	if got := s.Repaints(); got != 1 {
		t.Errorf("Repaints() = %d, want 1", got)
	}
}

func TestRasterSinkImageIsCopy(t *testing.T) {
	s := NewRasterSink(10, 10, dirfield.NewViewport(-1, 1, -1, 1))
	img := s.Image()
	img.Set(0, 0, color.RGBA{A: 0xff})

	if got := s.Image().RGBAAt(0, 0); got != (color.RGBA{0xff, 0xff, 0xff, 0xff}) {
		t.Errorf("mutating a returned image changed the canvas: %v", got)
	}
}

func TestRasterSinkSkipsShortBatches(t *testing.T) {
	s := NewRasterSink(10, 10, dirfield.NewViewport(-1, 1, -1, 1))
	s.DrawCurves([]dirfield.CurveBatch{{
		Style:  dirfield.LineStyle{Color: color.Black, Width: 2},
		Points: []dirfield.Point{dirfield.Pt(0, 0)},
	}})

	img := s.Image()
	for x := 0; x < 10; x++ {
		for y := 0; y < 10; y++ {
			if img.RGBAAt(x, y) != (color.RGBA{0xff, 0xff, 0xff, 0xff}) {
				t.Fatalf("pixel (%d, %d) changed by a single-point batch", x, y)
			}
		}
	}
}
