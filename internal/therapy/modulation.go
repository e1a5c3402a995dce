package therapy

import "math"

// DoseModulation is the dose-modulation strategy (Enriquez-Navas et al
// 2015): the dose shrinks after sufficient tumour shrinkage, grows after
// excessive growth, and is withdrawn entirely below a minimum size. The
// reference size rolls forward to the latest observation every step.
type DoseModulation struct {
	Threshold      float64 // relative size band around the reference
	AdjustFactor   float64 // dose adjustment fraction
	InitialDose    float64 // negative means start at the model's max dose
	WithdrawBelow  float64 // withdraw treatment below this size
	IntervalLength float64 // decision interval length
	Multiplicative bool    // alternate mode: scale by 1/factor and factor
	TStart         float64 // start of the treatment window
	Horizon        float64 // end of the treatment window
	MaxCycles      int     // stop after this many decisions; 0 = unlimited
	Solver         *SolverOptions
}

// NewDoseModulation returns the strategy with its published defaults.
func NewDoseModulation() *DoseModulation {
	return &DoseModulation{
		Threshold:      0.2,
		AdjustFactor:   0.5,
		InitialDose:    -1,
		IntervalLength: 1,
		Horizon:        1000,
	}
}

func (p *DoseModulation) Name() string { return "at1" }

func (p *DoseModulation) Run(m *Model) bool {
	length := p.IntervalLength
	cur := cursor{p.TStart, p.TStart + length}
	refSize := m.InitialSize()

	dose := p.InitialDose
	if dose < 0 {
		dose = m.MaxDose()
	}
	lastNonZeroDose := dose

	cycle := 0
	for cur.End <= p.Horizon+length && (p.MaxCycles == 0 || cycle < p.MaxCycles) {
		if !m.Simulate(Schedule{{cur.Start, cur.End, dose}}, p.Solver) {
			break
		}

		size := m.rec.Last().Size
		dose, lastNonZeroDose = p.nextDose(size, refSize, dose, lastNonZeroDose, m.MaxDose())

		refSize = size
		cur = cur.shift(length)
		cycle++
	}

	m.rec.DropDuplicates()
	return m.Success
}

// nextDose applies the modulation rule to one observation. A withdrawn
// dose is restored from the remembered value before the size checks run.
func (p *DoseModulation) nextDose(size, refSize, dose, lastNonZeroDose, maxDose float64) (float64, float64) {
	if dose == 0 {
		dose = lastNonZeroDose
	}
	switch {
	case size < p.WithdrawBelow:
		lastNonZeroDose = dose
		dose = 0
	case size < (1-p.Threshold)*refSize:
		if p.Multiplicative {
			dose = math.Max(dose/p.AdjustFactor, 0)
		} else {
			dose = math.Max((1-p.AdjustFactor)*dose, 0)
		}
	case size > (1+p.Threshold)*refSize:
		if p.Multiplicative {
			dose = math.Min(p.AdjustFactor*dose, maxDose)
		} else {
			dose = math.Min((1+p.AdjustFactor)*dose, maxDose)
		}
	}
	return dose, lastNonZeroDose
}
