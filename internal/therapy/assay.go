package therapy

// PassageAssay simulates a long-term serial-passage assay: each schedule
// entry is one cycle, and between cycles the populations are reseeded at
// a fixed density while preserving the resistant fraction. Reseeding
// rewrites the most recent trajectory row in place before simulation
// continues — the one sanctioned exception to the record's append-only
// discipline, scoped to exactly that row.
type PassageAssay struct {
	// SeedingDensity is the reseeding density per passage. A single
	// value is reused for every cycle; otherwise it is indexed by cycle.
	SeedingDensity []float64

	// PassagingLoss, when positive, is an extra survival-loss fraction
	// applied to the sensitive pool whenever the previous cycle carried
	// a nonzero dose.
	PassagingLoss float64

	Solver *SolverOptions
}

func (a *PassageAssay) Run(m *Model, schedule Schedule) bool {
	sIdx := m.rec.varIndex("S")
	rIdx := m.rec.varIndex("R")
	if sIdx < 0 || rIdx < 0 {
		m.Success = false
		m.Diagnostic = "passage assay requires S and R state variables"
		return false
	}

	previousCycleOnDrug := false
	for i, cycle := range schedule {
		if i > 0 {
			a.reseed(m, i, sIdx, rIdx, previousCycleOnDrug)
		}
		if !m.Simulate(Schedule{cycle}, a.Solver) {
			break
		}
		previousCycleOnDrug = cycle.Dose > 0
	}

	m.rec.DropDuplicates()
	return m.Success
}

func (a *PassageAssay) reseed(m *Model, cycle, sIdx, rIdx int, onDrug bool) {
	density := 5e5
	if len(a.SeedingDensity) == 1 {
		density = a.SeedingDensity[0]
	} else if len(a.SeedingDensity) > 1 {
		density = a.SeedingDensity[cycle]
	}

	last := &m.rec.Rows[m.rec.Len()-1]
	resistantFraction := last.Pops[rIdx] / last.Size

	sensitive := density * (1 - resistantFraction)
	if a.PassagingLoss > 0 && onDrug {
		sensitive *= 1 - a.PassagingLoss
	}
	resistant := density * resistantFraction

	last.Pops[sIdx] = sensitive
	last.Pops[rIdx] = resistant
	last.Size = sensitive + resistant
}
