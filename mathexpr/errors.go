package mathexpr

import "errors"

// Errors reported by compilation and evaluation.
var (
	// ErrSyntax indicates the expression source could not be parsed.
	ErrSyntax = errors.New("mathexpr: syntax error")

	// ErrUnknownName indicates the expression references a variable or
	// function that is not part of the expression language.
	ErrUnknownName = errors.New("mathexpr: unknown name")

	// ErrDomain indicates the expression is mathematically undefined at
	// the evaluated point (division by zero, sqrt of a negative number,
	// log of a non-positive number, or a non-finite result).
	ErrDomain = errors.New("mathexpr: domain error")
)
