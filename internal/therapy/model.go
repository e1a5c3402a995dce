package therapy

import (
	"math"

	"github.com/oncodyn/tumorsim/internal/kinetics"
)

// SolverOptions configures the numerical integration of one model. The
// zero value of a numeric field means "inherit the model's setting";
// boolean fields are taken as given.
type SolverOptions struct {
	Dt             float64 // evaluation grid resolution
	AbsErr         float64 // absolute solver tolerance
	RelErr         float64 // relative solver tolerance
	Method         string  // solver method name
	MaxStep        float64 // maximum internal solver step
	SuppressOutput bool    // silence solver console output
	Stabilise      bool    // clamp negative excursions to zero
}

func DefaultSolverOptions() SolverOptions {
	return SolverOptions{
		Dt:      1e-3,
		AbsErr:  1e-8,
		RelErr:  1e-6,
		Method:  "dopri5",
		MaxStep: math.Inf(1),
	}
}

// Model binds a set of model equations to a parameter set, an initial
// state, and the trajectory record produced by simulating it. A Model is
// single-threaded: one instance drives one simulation at a time.
type Model struct {
	sys     kinetics.System
	params  kinetics.Params
	initial kinetics.State
	rec     *Record

	// Solver holds the instance-level integration settings; Simulate
	// accepts per-call overrides without mutating them.
	Solver SolverOptions

	// Success reports whether the most recent Simulate call completed
	// without a fatal integration problem. Diagnostic retains the last
	// solver message regardless of output suppression.
	Success    bool
	Diagnostic string
}

// NewModel wraps a system of model equations. The parameter set and
// initial state are fixed here for the lifetime of the instance.
func NewModel(sys kinetics.System) *Model {
	params := sys.Params()
	return &Model{
		sys:     sys,
		params:  params,
		initial: params.Initial(sys.StateVars()),
		rec:     NewRecord(sys.StateVars()),
		Solver:  DefaultSolverOptions(),
	}
}

func (m *Model) Record() *Record          { return m.rec }
func (m *Model) Params() kinetics.Params  { return m.params }
func (m *Model) Name() string             { return m.sys.Name() }
func (m *Model) StateVars() []string      { return m.sys.StateVars() }
func (m *Model) Initial() kinetics.State  { return m.initial.Clone() }

// MaxDose is the largest dose any policy may apply.
func (m *Model) MaxDose() float64 {
	return m.params.Get("DMax", 100)
}

func (m *Model) scaleFactor() float64 {
	return m.params.Get("scaleFactor", 1)
}

// TumourSize maps population counts to the observed size: the scale
// factor times the sum of all population compartments.
func (m *Model) TumourSize(pops []float64) float64 {
	total := 0.0
	for _, v := range pops {
		total += v
	}
	return m.scaleFactor() * total
}

// InitialSize is the tumour size of the configured initial state.
func (m *Model) InitialSize() float64 {
	return m.TumourSize(m.initial.Populations())
}

// options resolves per-call overrides against the instance settings.
func (m *Model) options(override *SolverOptions) SolverOptions {
	if override == nil {
		return m.Solver
	}
	o := *override
	if o.Dt == 0 {
		o.Dt = m.Solver.Dt
	}
	if o.AbsErr == 0 {
		o.AbsErr = m.Solver.AbsErr
	}
	if o.RelErr == 0 {
		o.RelErr = m.Solver.RelErr
	}
	if o.Method == "" {
		o.Method = m.Solver.Method
	}
	if o.MaxStep == 0 {
		o.MaxStep = m.Solver.MaxStep
	}
	return o
}
