package solver

import (
	"fmt"
	"math"
)

// Func evaluates the right-hand side of an ODE system: dY/dt = f(t, Y).
// The returned slice must have the same length as y.
type Func func(t float64, y []float64) []float64

// Config selects the method and its error control.
type Config struct {
	Method  string  // "dopri5" (default), "rk4", "euler"
	AbsTol  float64 // absolute error tolerance
	RelTol  float64 // relative error tolerance
	MaxStep float64 // maximum internal step size; 0 means unlimited
}

func (c Config) withDefaults() Config {
	if c.Method == "" {
		c.Method = "dopri5"
	}
	if c.AbsTol <= 0 {
		c.AbsTol = 1e-8
	}
	if c.RelTol <= 0 {
		c.RelTol = 1e-6
	}
	if c.MaxStep <= 0 {
		c.MaxStep = math.Inf(1)
	}
	return c
}

// Solution is the result of one Solve call. Y is indexed [variable][step],
// aligned with the evaluation grid T. On failure Success is false, Message
// describes the problem, and Y holds only the steps completed before it.
type Solution struct {
	T       []float64
	Y       [][]float64
	Success bool
	Message string
}

// Solve integrates f from y0 across the evaluation grid tEval, recording
// the state at every grid point. tEval must be strictly increasing with at
// least two points.
func Solve(f Func, y0 []float64, tEval []float64, cfg Config) Solution {
	cfg = cfg.withDefaults()

	sol := Solution{T: tEval}
	if len(tEval) < 2 {
		sol.Message = "evaluation grid needs at least two points"
		return sol
	}
	for i := 1; i < len(tEval); i++ {
		if tEval[i] <= tEval[i-1] {
			sol.Message = fmt.Sprintf("evaluation grid not increasing at index %d", i)
			return sol
		}
	}

	var step stepper
	switch cfg.Method {
	case "dopri5":
		step = newDopri(cfg)
	case "rk4":
		step = fixedStepper{advance: rk4Step, maxStep: cfg.MaxStep}
	case "euler":
		step = fixedStepper{advance: eulerStep, maxStep: cfg.MaxStep}
	default:
		sol.Message = fmt.Sprintf("unknown method %q", cfg.Method)
		return sol
	}

	n := len(y0)
	sol.Y = make([][]float64, n)
	for i := range sol.Y {
		sol.Y[i] = make([]float64, 0, len(tEval))
	}
	record := func(y []float64) {
		for i, v := range y {
			sol.Y[i] = append(sol.Y[i], v)
		}
	}

	y := make([]float64, n)
	copy(y, y0)
	record(y)

	for i := 1; i < len(tEval); i++ {
		if err := step.integrate(f, y, tEval[i-1], tEval[i]); err != nil {
			sol.T = tEval[:i]
			sol.Message = err.Error()
			return sol
		}
		if !valid(y) {
			sol.T = tEval[:i]
			sol.Message = "solution diverged (NaN or Inf encountered)"
			return sol
		}
		record(y)
	}

	sol.Success = true
	return sol
}

// stepper advances y in place from t0 to t1.
type stepper interface {
	integrate(f Func, y []float64, t0, t1 float64) error
}

func valid(y []float64) bool {
	for _, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
