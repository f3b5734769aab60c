package trace

import (
	"errors"
	"fmt"
	"image/color"
	"math/rand/v2"

	"github.com/odeplot/dirfield"
	"github.com/odeplot/dirfield/mathexpr"
)

// Strategy selects how singularities of a slope function are detected.
type Strategy int

const (
	// StrategyAutomatic flags a possible singularity whenever the slope
	// magnitude exceeds the configured threshold. The default.
	StrategyAutomatic Strategy = iota

	// StrategyManual locates singularities by intersecting a tangent-line
	// approximation of the solution with a user-supplied singularity
	// equation g(x, y) = 0.
	StrategyManual

	// StrategyNone disables singularity detection entirely.
	StrategyNone
)

func (s Strategy) String() string {
	switch s {
	case StrategyAutomatic:
		return "automatic"
	case StrategyManual:
		return "manual"
	case StrategyNone:
		return "none"
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// Tuning constants for tracing. Granularities are exponents: a granularity
// g together with a physical scale s yields a step scale of s / 10^g, so
// larger granularity means finer stepping.
const (
	MinTracePrecision     = 1
	MaxTracePrecision     = 10
	DefaultTracePrecision = 5

	MinTraceDXGranularity = 2.0
	MaxTraceDXGranularity = 6.0

	MinTraceMinStepGranularity = 4.0
	MaxTraceMinStepGranularity = 9.0

	MinTraceMaxStepGranularity = 2.0
	MaxTraceMaxStepGranularity = 6.0

	MinSingularityAlertDistGranularity = 1.5
	MaxSingularityAlertDistGranularity = 4.0

	MinSingularityMinSlope     = 10.0
	MaxSingularityMinSlope     = 200.0
	DefaultSingularityMinSlope = 60.0

	MinLineWidth     = 1
	MaxLineWidth     = 10
	DefaultLineWidth = 4

	DefaultYMargin = 20.0
	MaxYMargin     = 1000.0

	// NumSegmentsInDiagonal fixes the target polyline resolution: the
	// maximum on-screen segment length is the viewport diagonal divided
	// by this count.
	NumSegmentsInDiagonal = 500
)

// DefaultLineColor is the stroke color new settings start with.
var DefaultLineColor = color.RGBA{R: 0xff, A: 0xff}

// equationSampleCount is how many random in-range points a new
// singularity equation is evaluated at before being accepted.
const equationSampleCount = 20

// Settings configures solution tracing.
//
// Settings is copy-on-edit: a running trace holds the snapshot it was
// started with, and editors must modify a Copy and swap it in whole
// (see [Coordinator.UpdateSettings]) rather than mutating a live value.
type Settings struct {
	// LineColor is the stroke color for traced curves.
	LineColor color.Color

	// DisplayedLineWidth is the user-facing width, MinLineWidth..MaxLineWidth.
	DisplayedLineWidth int

	// YMargin is how far off-screen a curve may wander, in screen-heights,
	// before automatic detection cuts it off.
	YMargin float64

	// Precision is the single user-facing quality knob,
	// MinTracePrecision..MaxTracePrecision. It tightens all four
	// granularities simultaneously via linear interpolation.
	Precision int

	// SingularityMinSlope is the slope magnitude that triggers automatic
	// singularity detection.
	SingularityMinSlope float64

	// singularityEquations maps a slope-function string to the equation
	// string marking its singularities. Keyed on the exact source text:
	// equivalent but differently written functions do not share equations.
	singularityEquations map[string]string

	// preferredDetection remembers the detection strategy per
	// slope-function string. Missing entries mean StrategyAutomatic.
	preferredDetection map[string]Strategy
}

// NewSettings returns settings with the library defaults, including the
// stock singularity equation y = 0 for the slope function "x/y".
func NewSettings() *Settings {
	return &Settings{
		LineColor:            DefaultLineColor,
		DisplayedLineWidth:   DefaultLineWidth,
		YMargin:              DefaultYMargin,
		Precision:            DefaultTracePrecision,
		SingularityMinSlope:  DefaultSingularityMinSlope,
		singularityEquations: map[string]string{"x/y": "y"},
		preferredDetection:   map[string]Strategy{},
	}
}

// Copy returns a deep copy. Editors operate on the copy and swap it in
// atomically on confirm, so a running trace never observes a half-edited
// configuration.
func (s *Settings) Copy() *Settings {
	c := &Settings{
		LineColor:            s.LineColor,
		DisplayedLineWidth:   s.DisplayedLineWidth,
		YMargin:              s.YMargin,
		Precision:            s.Precision,
		SingularityMinSlope:  s.SingularityMinSlope,
		singularityEquations: make(map[string]string, len(s.singularityEquations)),
		preferredDetection:   make(map[string]Strategy, len(s.preferredDetection)),
	}
	for k, v := range s.singularityEquations {
		c.singularityEquations[k] = v
	}
	for k, v := range s.preferredDetection {
		c.preferredDetection[k] = v
	}
	return c
}

// SingularityEquationFor returns the singularity equation registered for
// the given slope-function string, if any.
func (s *Settings) SingularityEquationFor(slopeFn string) (string, bool) {
	eq, ok := s.singularityEquations[slopeFn]
	return eq, ok
}

// SetNewSingularityEquation validates equation and, if it compiles,
// registers it for the given slope-function string and reports true.
//
// Validation evaluates the equation at equationSampleCount random points
// inside the viewport; domain errors there are tolerated (the equation
// need not be defined everywhere), so only a compile failure rejects.
func (s *Settings) SetNewSingularityEquation(slopeFn, equation string, vp dirfield.Viewport) bool {
	f, err := mathexpr.Compile(equation)
	if err != nil {
		dirfield.Logger().Warn("rejecting singularity equation",
			"equation", equation, "err", err)
		return false
	}
	for i := 0; i < equationSampleCount; i++ {
		x := vp.XMin + rand.Float64()*vp.Width()
		y := vp.YMin + rand.Float64()*vp.Height()
		if _, err := f(x, y); err != nil && !errors.Is(err, mathexpr.ErrDomain) {
			return false
		}
	}
	s.singularityEquations[slopeFn] = equation
	return true
}

// PreferredDetectionFor returns the detection strategy remembered for the
// given slope-function string, defaulting to StrategyAutomatic.
func (s *Settings) PreferredDetectionFor(slopeFn string) Strategy {
	if st, ok := s.preferredDetection[slopeFn]; ok {
		return st
	}
	return StrategyAutomatic
}

// SetPreferredDetectionFor remembers the detection strategy to use for the
// given slope-function string.
func (s *Settings) SetPreferredDetectionFor(slopeFn string, st Strategy) {
	s.preferredDetection[slopeFn] = st
}

// lerpByPrecision linearly interpolates between lo (at MinTracePrecision)
// and hi (at MaxTracePrecision).
func (s *Settings) lerpByPrecision(lo, hi float64) float64 {
	t := float64(s.Precision-MinTracePrecision) / float64(MaxTracePrecision-MinTracePrecision)
	return lo + (hi-lo)*t
}

// TraceDXGranularity derives the horizontal step granularity from Precision.
func (s *Settings) TraceDXGranularity() float64 {
	return s.lerpByPrecision(MinTraceDXGranularity, MaxTraceDXGranularity)
}

// TraceMinStepGranularity derives the minimum step granularity from Precision.
func (s *Settings) TraceMinStepGranularity() float64 {
	return s.lerpByPrecision(MinTraceMinStepGranularity, MaxTraceMinStepGranularity)
}

// TraceMaxStepGranularity derives the maximum step granularity from Precision.
func (s *Settings) TraceMaxStepGranularity() float64 {
	return s.lerpByPrecision(MinTraceMaxStepGranularity, MaxTraceMaxStepGranularity)
}

// SingularityAlertDistGranularity derives the alert-distance granularity
// from Precision.
func (s *Settings) SingularityAlertDistGranularity() float64 {
	return s.lerpByPrecision(MinSingularityAlertDistGranularity, MaxSingularityAlertDistGranularity)
}

// LineWidth maps the displayed width (MinLineWidth..MaxLineWidth) to the
// physical stroke width 1..7.
func (s *Settings) LineWidth() float64 {
	return 1 + 6*float64(s.DisplayedLineWidth-MinLineWidth)/float64(MaxLineWidth-MinLineWidth)
}

// Style returns the render style for curves traced under these settings.
func (s *Settings) Style() dirfield.LineStyle {
	return dirfield.LineStyle{Color: s.LineColor, Width: s.LineWidth()}
}
