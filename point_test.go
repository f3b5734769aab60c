package dirfield

import (
	"math"
	"testing"
)

func TestPointArithmetic(t *testing.T) {
	tests := []struct {
		name string
		got  Point
		want Point
	}{
		{"add", Pt(1, 2).Add(Pt(3, -1)), Pt(4, 1)},
		{"sub", Pt(1, 2).Sub(Pt(3, -1)), Pt(-2, 3)},
		{"mul", Pt(1, -2).Mul(3), Pt(3, -6)},
		{"div", Pt(3, -6).Div(3), Pt(1, -2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestPointLengthDistance(t *testing.T) {
	if got := Pt(3, 4).Length(); got != 5 {
		t.Errorf("Length() = %v, want 5", got)
	}
	if got := Pt(1, 1).Distance(Pt(4, 5)); got != 5 {
		t.Errorf("Distance() = %v, want 5", got)
	}
}

func TestResize(t *testing.T) {
	tests := []struct {
		name   string
		p      Point
		length float64
		want   Point
	}{
		{"stretch", Pt(3, 4), 10, Pt(6, 8)},
		{"shrink", Pt(0, -4), 1, Pt(0, -1)},
		{"preserve direction", Pt(-1, 1), math.Sqrt2 * 2, Pt(-2, 2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.p.Resize(tt.length)
			if !got.Approx(tt.want, 1e-12) {
				t.Errorf("%v.Resize(%v) = %v, want %v", tt.p, tt.length, got, tt.want)
			}
			if math.Abs(got.Length()-tt.length) > 1e-12 {
				t.Errorf("resized length = %v, want %v", got.Length(), tt.length)
			}
		})
	}
}

func TestResizeByX(t *testing.T) {
	tests := []struct {
		name string
		p    Point
		newX float64
		want Point
	}{
		{"positive x", Pt(2, 6), 1, Pt(1, 3)},
		{"negative x keeps sign", Pt(-2, 6), 1, Pt(-1, 3)},
		{"grow", Pt(0.5, -1), 2, Pt(2, -4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.p.ResizeByX(tt.newX)
			if !got.Approx(tt.want, 1e-12) {
				t.Errorf("%v.ResizeByX(%v) = %v, want %v", tt.p, tt.newX, got, tt.want)
			}
		})
	}
}

func TestApprox(t *testing.T) {
	if !Pt(1, 1).Approx(Pt(1+1e-10, 1-1e-10), 1e-9) {
		t.Error("nearby points not approx equal")
	}
	if Pt(1, 1).Approx(Pt(1.1, 1), 1e-9) {
		t.Error("distant points approx equal")
	}
}
