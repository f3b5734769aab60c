package mathexpr

import (
	"fmt"
	"math"
)

// Func is a compiled bivariate function f(x, y).
// Evaluation at a point where the expression is undefined returns an
// error wrapping [ErrDomain].
type Func func(x, y float64) (float64, error)

// Compile parses src and returns a callable function of x and y.
// The returned error wraps [ErrSyntax] or [ErrUnknownName]; a successfully
// compiled function never panics when called.
func Compile(src string) (Func, error) {
	tokens, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	root, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokenEOF {
		return nil, fmt.Errorf("%w: unexpected %s at offset %d", ErrSyntax, t.describe(), t.pos)
	}
	return root.eval, nil
}

// constants resolvable at parse time.
var constants = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}

// finite wraps a total function, rejecting non-finite results so that
// overflow behaves like any other domain failure.
func finite(f func(float64) float64) func(float64) (float64, error) {
	return func(v float64) (float64, error) {
		r := f(v)
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return 0, ErrDomain
		}
		return r, nil
	}
}

func errSqrt(v float64) (float64, error) {
	if v < 0 {
		return 0, fmt.Errorf("%w: sqrt of negative number", ErrDomain)
	}
	return math.Sqrt(v), nil
}

func errLog(base func(float64) float64) func(float64) (float64, error) {
	return func(v float64) (float64, error) {
		if v <= 0 {
			return 0, fmt.Errorf("%w: log of non-positive number", ErrDomain)
		}
		return base(v), nil
	}
}

func sign(v float64) (float64, error) {
	switch {
	case v > 0:
		return 1, nil
	case v < 0:
		return -1, nil
	}
	return 0, nil
}

// functions is the fixed set of callable names. The trigonometric
// reciprocal and inverse-reciprocal functions are defined exactly as the
// usual identities; their domain failures surface through the division
// and inverse-function checks.
var functions = map[string]func(float64) (float64, error){
	"sin":   finite(math.Sin),
	"cos":   finite(math.Cos),
	"tan":   finite(math.Tan),
	"asin":  finite(math.Asin),
	"acos":  finite(math.Acos),
	"atan":  finite(math.Atan),
	"sinh":  finite(math.Sinh),
	"cosh":  finite(math.Cosh),
	"tanh":  finite(math.Tanh),
	"asinh": finite(math.Asinh),
	"acosh": finite(math.Acosh),
	"atanh": finite(math.Atanh),
	"exp":   finite(math.Exp),
	"log":   errLog(math.Log),
	"ln":    errLog(math.Log),
	"log2":  errLog(math.Log2),
	"log10": errLog(math.Log10),
	"sqrt":  errSqrt,
	"abs":   finite(math.Abs),
	"floor": finite(math.Floor),
	"ceil":  finite(math.Ceil),
	"sign":  sign,
	"cot":   finite(func(v float64) float64 { return math.Cos(v) / math.Sin(v) }),
	"sec":   finite(func(v float64) float64 { return 1 / math.Cos(v) }),
	"csc":   finite(func(v float64) float64 { return 1 / math.Sin(v) }),
	"acot":  finite(func(v float64) float64 { return math.Pi/2 - math.Atan(v) }),
	"asec":  finite(func(v float64) float64 { return math.Acos(1 / v) }),
	"acsc":  finite(func(v float64) float64 { return math.Asin(1 / v) }),
}
