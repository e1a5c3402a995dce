package therapy

import (
	"fmt"
	"math"

	"github.com/oncodyn/tumorsim/internal/kinetics"
	"github.com/oncodyn/tumorsim/internal/solver"
)

// Interval is one treatment interval: the dose is held constant over
// [Start, End).
type Interval struct {
	Start float64
	End   float64
	Dose  float64
}

// Schedule is an ordered sequence of treatment intervals, expected (but
// not required) to be contiguous.
type Schedule []Interval

// evalGrid builds the evaluation grid for one interval at resolution dt.
// The grid always carries the exact interval end as its last point so the
// boundary state is representable even under floating-point rounding; for
// non-final intervals the end point is used to carry state but not
// recorded (the next interval re-records it).
func evalGrid(iv Interval, dt float64) []float64 {
	span := iv.End - iv.Start
	n := int(math.Ceil(span/dt - 1e-9))
	if n < 1 {
		n = 1
	}
	grid := make([]float64, 0, n+1)
	for i := 0; i < n; i++ {
		t := iv.Start + float64(i)*dt
		if t >= iv.End {
			break
		}
		grid = append(grid, t)
	}
	return append(grid, iv.End)
}

// integrateInterval advances y across one interval under constant dose,
// returning the solution over the evaluation grid. y's trailing slot is
// overwritten with the interval's dose before solving. On a diagnostic-
// worthy outcome the returned message is non-empty; err is non-nil only
// for fatal outcomes (divergence, or an unstabilised negative excursion).
func (m *Model) integrateInterval(y kinetics.State, iv Interval, opts SolverOptions) (sol solver.Solution, grid []float64, msg string, err error) {
	grid = evalGrid(iv, opts.Dt)
	y[len(y)-1] = iv.Dose

	cfg := solver.Config{
		Method:  opts.Method,
		AbsTol:  opts.AbsErr,
		RelTol:  opts.RelErr,
		MaxStep: opts.MaxStep,
	}
	rates := func(t float64, state []float64) []float64 {
		return m.sys.Rates(t, kinetics.State(state))
	}

	if opts.SuppressOutput {
		restore := silenceStdout()
		defer restore()
	}
	sol = solver.Solve(rates, y, grid, cfg)

	if !sol.Success {
		msg = sol.Message
		err = &kinetics.IntegrationError{Start: iv.Start, End: iv.End, Message: sol.Message, Wrapped: kinetics.ErrDiverged}
		return sol, grid, msg, err
	}

	if hasNegative(sol.Y) {
		msg = "Negative values encountered in the solution. Make the time step smaller or consider using a stiff solver."
		if opts.Stabilise {
			clampNegatives(sol.Y)
			msg += "... Applying numerical stabilisation."
		} else {
			err = &kinetics.IntegrationError{Start: iv.Start, End: iv.End, Message: msg, Wrapped: kinetics.ErrNegative}
		}
	}
	return sol, grid, msg, err
}

func hasNegative(y [][]float64) bool {
	for _, col := range y {
		for _, v := range col {
			if v < 0 {
				return true
			}
		}
	}
	return false
}

func clampNegatives(y [][]float64) {
	for _, col := range y {
		for i, v := range col {
			if v < 0 {
				col[i] = 0
			}
		}
	}
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%g, %g) @ %g", iv.Start, iv.End, iv.Dose)
}
