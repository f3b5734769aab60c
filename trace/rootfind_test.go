package trace

import (
	"math"
	"testing"

	"github.com/odeplot/dirfield/mathexpr"
)

func TestNewton(t *testing.T) {
	tests := []struct {
		name string
		f    func(float64) (float64, error)
		x0   float64
		want float64
	}{
		{
			"parabola from the right",
			func(x float64) (float64, error) { return x*x - 4, nil },
			3,
			2,
		},
		{
			"parabola from the left",
			func(x float64) (float64, error) { return x*x - 4, nil },
			-3,
			-2,
		},
		{
			"cubic",
			func(x float64) (float64, error) { return x*x*x - 27, nil },
			5,
			3,
		},
		{
			"line",
			func(x float64) (float64, error) { return 2*x - 1, nil },
			10,
			0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newton(tt.f, tt.x0)
			if err != nil {
				t.Fatalf("newton() error: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-4 {
				t.Errorf("newton() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewtonNoRoot(t *testing.T) {
	// A constant function has no root and a zero derivative everywhere; the
	// iteration must give up rather than loop or panic.
	_, err := newton(func(x float64) (float64, error) { return 5, nil }, 1)
	if err == nil {
		t.Fatal("newton() on rootless constant function: want error, got nil")
	}
}

func TestFirstIntersection(t *testing.T) {
	eqY, err := mathexpr.Compile("y")
	if err != nil {
		t.Fatal(err)
	}

	// The tangent line from (0, -1) with slope 1 crosses y = 0 at (1, 0).
	p, err := FirstIntersection(eqY, 1, 0, -1)
	if err != nil {
		t.Fatalf("FirstIntersection() error: %v", err)
	}
	if math.Abs(p.X-1) > 1e-4 || math.Abs(p.Y) > 1e-4 {
		t.Errorf("FirstIntersection() = %v, want near (1, 0)", p)
	}
}

func TestFirstIntersectionNoCrossing(t *testing.T) {
	eqY, err := mathexpr.Compile("y")
	if err != nil {
		t.Fatal(err)
	}

	// A horizontal tangent at y = 5 never meets y = 0; the failure must
	// surface as an error the tracer can treat as "no singularity nearby".
	if _, err := FirstIntersection(eqY, 0, 2, 5); err == nil {
		t.Fatal("FirstIntersection() on parallel line: want error, got nil")
	}
}
