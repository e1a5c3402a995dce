package therapy

// Policy is a closed-loop dosing strategy: a discrete-time feedback loop
// that repeatedly drives single-interval Simulate calls on a model and
// picks each next dose from the observed tumour size.
type Policy interface {
	Name() string
	Run(m *Model) bool
}

// cursor is the decision window [Start, End) a policy advances each step.
type cursor struct {
	Start, End float64
}

func (c cursor) shift(length float64) cursor {
	return cursor{c.Start + length, c.End + length}
}
