package kinetics

import "math"

// State is an ODE state vector. By convention the final slot carries the
// current drug concentration (as a fraction of the model's Cmax); its
// derivative is always zero within a treatment interval.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Populations returns the state without the trailing drug slot.
func (s State) Populations() State {
	if len(s) == 0 {
		return s
	}
	return s[:len(s)-1]
}

// Drug returns the trailing drug-concentration slot.
func (s State) Drug() float64 {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1]
}

func (s State) Sum() float64 {
	total := 0.0
	for _, v := range s {
		total += v
	}
	return total
}

// System is a set of model equations: dY/dt = Rates(t, Y). Implementations
// are pure; all coefficients come from the Params fixed at construction.
// The returned vector has the same length as y, with the final
// (drug concentration) slot always zero.
type System interface {
	Rates(t float64, y State) State
	Name() string
	StateVars() []string
	Params() Params
}

// Params maps coefficient names to values. A model's parameter set is built
// once at construction and never mutated afterwards; per-variable initial
// values are stored under "<var>0".
type Params map[string]float64

// Get returns the named parameter, or fallback if absent.
func (p Params) Get(name string, fallback float64) float64 {
	if v, ok := p[name]; ok {
		return v
	}
	return fallback
}

// Merge returns a copy of p with the overrides applied. Unknown override
// names are ignored so that policy/solver settings can share one map.
func (p Params) Merge(overrides map[string]float64) Params {
	merged := make(Params, len(p))
	for k, v := range p {
		merged[k] = v
	}
	for k, v := range overrides {
		if _, ok := merged[k]; ok {
			merged[k] = v
		}
	}
	return merged
}

// Initial assembles the initial state vector from "<var>0" entries, with a
// zero appended for the drug slot.
func (p Params) Initial(vars []string) State {
	y0 := make(State, 0, len(vars)+1)
	for _, v := range vars {
		y0 = append(y0, p[v+"0"])
	}
	return append(y0, 0)
}
