package therapy

import (
	"fmt"

	"github.com/oncodyn/tumorsim/internal/kinetics"
)

// Simulate advances the model across a treatment schedule, appending the
// resulting trajectory to the record. The starting state is the model's
// initial state when the record is empty or the schedule restarts at time
// zero (which also resets the record); otherwise simulation resumes from
// the last recorded state and drug concentration.
//
// Processing stops at the first interval that fails fatally; rows from
// earlier intervals in the same call are kept. Returns the success flag,
// which is also retained on the model: false means this call encountered
// a problem, not that every interval failed. opts may be nil to use the
// model's settings.
func (m *Model) Simulate(sched Schedule, opts *SolverOptions) bool {
	m.Success = false
	m.Diagnostic = ""

	if len(sched) == 0 {
		m.Diagnostic = kinetics.ErrEmptySchedule.Error()
		return false
	}
	o := m.options(opts)

	var y kinetics.State
	if m.rec.Empty() || sched[0].Start == 0 {
		m.rec.Reset()
		y = m.initial.Clone()
	} else {
		last := m.rec.Last()
		y = make(kinetics.State, 0, len(last.Pops)+1)
		y = append(y, last.Pops...)
		y = append(y, last.Drug)
	}

	nVars := len(m.rec.Vars)
	var pending []Row
	var grid []float64
	encounteredProblem := false

	for i, iv := range sched {
		sol, g, msg, err := m.integrateInterval(y, iv, o)
		grid = g

		if msg != "" {
			m.Diagnostic = msg
			if !o.SuppressOutput {
				fmt.Println("xxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx")
				fmt.Println(msg)
				fmt.Println("xxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx")
			}
		}
		if err != nil {
			encounteredProblem = true
			break
		}

		// The grid's last point is the exact interval end. It is used to
		// carry state into the next interval; only the final interval of
		// the schedule records it, so chained intervals produce no
		// duplicate rows within one call.
		steps := len(grid)
		record := steps
		if i < len(sched)-1 {
			record = steps - 1
		}
		for k := 0; k < record; k++ {
			pops := make([]float64, nVars)
			for v := 0; v < nVars; v++ {
				pops[v] = sol.Y[v][k]
			}
			pending = append(pending, Row{
				Time: grid[k],
				Pops: pops,
				Drug: sol.Y[nVars][k],
				Size: m.TumourSize(pops),
			})
		}

		for v := 0; v <= nVars; v++ {
			y[v] = sol.Y[v][steps-1]
		}
	}

	// A first interval that fails before producing output would leave the
	// record undefined; substitute all-zero rows over its grid instead.
	// With prior trajectory present the record simply stops growing.
	if len(pending) == 0 && m.rec.Empty() {
		for _, t := range grid {
			pending = append(pending, Row{Time: t, Pops: make([]float64, nVars)})
		}
	}

	m.rec.Append(pending...)
	m.Success = !encounteredProblem
	return m.Success
}
