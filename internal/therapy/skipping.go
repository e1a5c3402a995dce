package therapy

// DoseSkipping is the dose-skipping strategy: treat at a fixed high dose
// only when the tumour has grown beyond a threshold relative to a
// lookback reference, otherwise treat at the minimum dose. The reference
// is the oldest entry of a rolling window of recent size observations.
type DoseSkipping struct {
	Threshold      float64 // relative growth that triggers the high dose
	HighDose       float64 // dose applied on growth; negative = max dose
	InitialDose    float64 // negative means start at the model's max dose
	MinDose        float64 // dose applied otherwise
	IntervalLength float64 // decision interval length
	Lookback       int     // window length in decision steps
	TStart         float64
	Horizon        float64
	MaxCycles      int // stop after this many decisions; 0 = unlimited
	Solver         *SolverOptions
}

// NewDoseSkipping returns the strategy with its published defaults.
func NewDoseSkipping() *DoseSkipping {
	return &DoseSkipping{
		Threshold:      0.2,
		HighDose:       -1,
		InitialDose:    -1,
		IntervalLength: 1,
		Lookback:       2,
		Horizon:        1000,
	}
}

func (p *DoseSkipping) Name() string { return "at2" }

func (p *DoseSkipping) Run(m *Model) bool {
	length := p.IntervalLength
	cur := cursor{p.TStart, p.TStart + length}

	refSize := m.InitialSize()
	window := make([]float64, p.Lookback)
	for i := range window {
		window[i] = refSize
	}

	dose := p.InitialDose
	if dose < 0 {
		dose = m.MaxDose()
	}
	highDose := p.HighDose
	if highDose < 0 {
		highDose = m.MaxDose()
	}

	cycle := 0
	for cur.End <= p.Horizon+length && (p.MaxCycles == 0 || cycle < p.MaxCycles) {
		if !m.Simulate(Schedule{{cur.Start, cur.End, dose}}, p.Solver) {
			break
		}

		size := m.rec.Last().Size
		dose = p.nextDose(size, refSize, highDose)

		// Shift the window: the oldest retained size becomes the next
		// reference, the newest observation is pushed in.
		refSize = window[0]
		copy(window, window[1:])
		window[len(window)-1] = size

		cur = cur.shift(length)
		cycle++
	}

	m.rec.DropDuplicates()
	return m.Success
}

func (p *DoseSkipping) nextDose(size, refSize, highDose float64) float64 {
	if size > (1+p.Threshold)*refSize {
		return highDose
	}
	return p.MinDose
}
