// Package trace walks along approximate solution curves of y' = f(x, y),
// deciding step sizes adaptively and classifying singularities of the
// slope function as it encounters them.
//
// The numerical core is [Tracer], which produces a lazy sequence of curve
// points from a start point in one horizontal direction. On top of it,
// [Coordinator] runs tracers on worker goroutines, periodically harvests
// the partial curves they produce, and forwards them to a
// [dirfield.RenderSink] through a buffered drawing queue, so that tracing
// never blocks the caller and rendering cadence stays bounded.
//
// Singularity detection follows one of three strategies per slope
// function (see [Strategy]): automatic steep-slope detection, manual
// detection against a user-supplied singularity equation g(x, y) = 0, or
// none at all.
package trace
