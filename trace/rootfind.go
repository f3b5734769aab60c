package trace

import (
	"errors"

	"github.com/odeplot/dirfield"
	"github.com/odeplot/dirfield/mathexpr"
)

// ErrNoConvergence reports that Newton's method ran out of iterations
// without meeting the precision target. Callers treat it, like any other
// root-finding failure, as "no singularity found nearby".
var ErrNoConvergence = errors.New("trace: newton iteration did not converge")

const (
	newtonPrecision = 1e-5
	newtonMaxIter   = 30
	newtonDerivDX   = 1e-12
)

// newton runs Newton's method on f starting from x0. The derivative is
// estimated by central difference with step newtonDerivDX. Iteration stops
// when the relative error drops below newtonPrecision; after newtonMaxIter
// iterations the current estimate is returned alongside ErrNoConvergence.
func newton(f func(float64) (float64, error), x0 float64) (float64, error) {
	derivative := func(x float64) (float64, error) {
		hi, err := f(x + newtonDerivDX)
		if err != nil {
			return 0, err
		}
		lo, err := f(x - newtonDerivDX)
		if err != nil {
			return 0, err
		}
		return (hi - lo) / (2 * newtonDerivDX), nil
	}

	xlast := x0
	for i := 0; i < newtonMaxIter; i++ {
		fx, err := f(xlast)
		if err != nil {
			return xlast, err
		}
		d, err := derivative(xlast)
		if err != nil {
			return xlast, err
		}
		if d == 0 {
			// A flat spot would divide by zero; kick the iterate 20%
			// sideways and try again from there.
			if xlast == 0 {
				xlast = newtonPrecision
			} else {
				xlast *= 1.2
			}
			continue
		}
		xnew := xlast - fx/d
		if xnew == 0 {
			// Shift both iterates so the relative error below has a
			// nonzero denominator.
			xnew += newtonPrecision
			xlast += newtonPrecision
		}
		relErr := abs((xnew - xlast) / xnew)
		xlast = xnew
		if relErr < newtonPrecision {
			return xlast, nil
		}
	}
	return xlast, ErrNoConvergence
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// FirstIntersection approximates the solution curve near (x0, y0) by its
// tangent line y = y0 + slope*(x-x0) and finds the point where the curve
// equation(x, y) = 0 crosses that line, searching outward from x0.
//
// Convergence is not guaranteed; callers must treat any error as "no
// singularity found nearby" and carry on without singularity handling.
func FirstIntersection(equation mathexpr.Func, slope, x0, y0 float64) (dirfield.Point, error) {
	line := func(x float64) float64 {
		return y0 + slope*(x-x0)
	}
	x, err := newton(func(x float64) (float64, error) {
		return equation(x, line(x))
	}, x0)
	if err != nil {
		return dirfield.Point{}, err
	}
	return dirfield.Pt(x, line(x)), nil
}
