// Package mathexpr compiles user-entered math expressions into callable
// bivariate functions of x and y.
//
// The expression language covers the usual arithmetic operators
// (+, -, *, /, ^ and the Python-style ** power operator), parentheses,
// the variables x and y, the constants pi and e, and a fixed set of
// real-valued functions (sin, cos, tan, their inverses and hyperbolic
// variants, exp, log, ln, log2, log10, sqrt, abs, floor, ceil, sign,
// cot, sec, csc, acot, asec, acsc).
//
// Compilation is a small hand-written tokenizer and recursive-descent
// parser; there is deliberately no facility for evaluating arbitrary code.
// Evaluation never panics: points where the expression is mathematically
// undefined (division by zero, sqrt of a negative, log of a non-positive
// value, overflow to a non-finite result) report [ErrDomain].
package mathexpr
