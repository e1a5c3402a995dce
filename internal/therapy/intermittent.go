package therapy

// Intermittent is the on/off strategy (Zhang et al): full dose while the
// tumour sits above a fixed reference, minimum dose once it has shrunk
// below (1-Threshold) of it, holding the previous choice in between. The
// thresholds are deliberately asymmetric: the lower bound is scaled by
// Threshold, the upper bound is the reference itself. On- and off-phase
// decision intervals may differ in length.
type Intermittent struct {
	RefSize   float64 // fixed reference size; 0 = the model's initial size
	Threshold float64 // lower-bound scaling
	HighDose  float64 // on-phase dose; negative = max dose
	MinDose   float64 // off-phase dose
	OnLength  float64 // decision interval while dosing
	OffLength float64 // decision interval while withdrawn; 0 = OnLength
	TStart    float64
	Horizon   float64
	MaxCycles int // stop after this many decisions; 0 = unlimited
	Solver    *SolverOptions
}

// NewIntermittent returns the strategy with its published defaults.
func NewIntermittent() *Intermittent {
	return &Intermittent{
		Threshold: 0.5,
		HighDose:  -1,
		OnLength:  1,
		Horizon:   1000,
	}
}

func (p *Intermittent) Name() string { return "at50" }

func (p *Intermittent) Run(m *Model) bool {
	onLength := p.OnLength
	offLength := p.OffLength
	if offLength == 0 {
		offLength = onLength
	}
	length := onLength

	cur := cursor{p.TStart, p.TStart + length}
	refSize := p.RefSize
	if refSize == 0 {
		refSize = m.InitialSize()
	}
	highDose := p.HighDose
	if highDose < 0 {
		highDose = m.MaxDose()
	}
	dose := m.MaxDose()

	cycle := 0
	for cur.End <= p.Horizon+length && (p.MaxCycles == 0 || cycle < p.MaxCycles) {
		if !m.Simulate(Schedule{{cur.Start, cur.End, dose}}, p.Solver) {
			break
		}

		size := m.rec.Last().Size
		dose, length = p.next(size, refSize, dose, length, highDose, onLength, offLength)

		cur = cur.shift(length)
		cycle++
	}

	m.rec.DropDuplicates()
	return m.Success
}

// next applies the hysteresis rule: readings inside the band keep both
// the dose and the interval length from the previous step.
func (p *Intermittent) next(size, refSize, dose, length, highDose, onLength, offLength float64) (float64, float64) {
	switch {
	case size < (1-p.Threshold)*refSize:
		return p.MinDose, offLength
	case size > refSize:
		return highDose, onLength
	default:
		return dose, length
	}
}
