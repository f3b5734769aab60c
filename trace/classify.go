package trace

// Direction is the horizontal sweep direction of a tracer.
type Direction int

const (
	Right Direction = 1
	Left  Direction = -1
)

func (d Direction) String() string {
	if d == Left {
		return "left"
	}
	return "right"
}

// Action tells the stepping loop how to proceed at a suspected singularity.
type Action int

const (
	// ActionStop terminates the curve at the current point.
	ActionStop Action = iota

	// ActionInfinite switches to marching along a vertical asymptote.
	ActionInfinite

	// ActionContinue steps cautiously through to the other side.
	ActionContinue
)

func (a Action) String() string {
	switch a {
	case ActionStop:
		return "stop"
	case ActionInfinite:
		return "infinite"
	case ActionContinue:
		return "continue"
	}
	return "unknown"
}

// classKey is the sign configuration around a suspected singularity:
// derivative at the current point, trace direction, and the estimated
// second and first derivatives at the probe point past the singularity.
type classKey struct {
	derPos   bool
	dir      Direction
	nDer2Pos bool
	nDerPos  bool
}

// decisionTable encodes, for each of the four local convexity/concavity
// configurations combined with the two derivative signs and the sweep
// direction, whether the curve passes through continuously, diverges, or
// cuts off. The second Action is the fallback used when the continuation
// sanity check fails.
var decisionTable = map[classKey][2]Action{
	// der > 0, sweeping right (curve convex up ahead of the jump)
	{true, Right, true, false}:  {ActionInfinite, ActionInfinite},
	{true, Right, true, true}:   {ActionContinue, ActionStop},
	{true, Right, false, true}:  {ActionContinue, ActionInfinite},
	{true, Right, false, false}: {ActionStop, ActionStop},

	// der < 0, sweeping right (concave down ahead)
	{false, Right, true, false}:  {ActionContinue, ActionInfinite},
	{false, Right, true, true}:   {ActionStop, ActionStop},
	{false, Right, false, true}:  {ActionInfinite, ActionInfinite},
	{false, Right, false, false}: {ActionContinue, ActionStop},

	// der > 0, sweeping left (concave up behind)
	{true, Left, true, false}:  {ActionStop, ActionStop},
	{true, Left, true, true}:   {ActionContinue, ActionInfinite},
	{true, Left, false, true}:  {ActionContinue, ActionStop},
	{true, Left, false, false}: {ActionInfinite, ActionInfinite},

	// der < 0, sweeping left (convex down behind)
	{false, Left, true, false}:  {ActionContinue, ActionStop},
	{false, Left, true, true}:   {ActionInfinite, ActionInfinite},
	{false, Left, false, true}:  {ActionStop, ActionStop},
	{false, Left, false, false}: {ActionContinue, ActionInfinite},
}

// Classify looks up the singularity decision for the given sign
// configuration. It is a pure function of the signs of its arguments: der
// is the derivative at the current point, nDer and nDer2 the first and
// estimated second derivative at the probe point, dir the sweep direction.
//
// The returned fallback is the Action to take instead when the primary is
// ActionContinue but the continuation sanity check fails. Sign values of
// exactly zero fall outside the sixteen tabulated configurations and
// resolve to the default (continue, else infinite).
func Classify(der, nDer, nDer2 float64, dir Direction) (primary, fallback Action) {
	if der == 0 || nDer == 0 || nDer2 == 0 {
		return ActionContinue, ActionInfinite
	}
	d, ok := decisionTable[classKey{
		derPos:   der > 0,
		dir:      dir,
		nDer2Pos: nDer2 > 0,
		nDerPos:  nDer > 0,
	}]
	if !ok {
		return ActionContinue, ActionInfinite
	}
	return d[0], d[1]
}
