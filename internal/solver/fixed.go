package solver

import "math"

// fixedStepper advances with a constant internal step, splitting the span
// into enough substeps to respect maxStep.
type fixedStepper struct {
	advance func(f Func, y []float64, t, h float64) []float64
	maxStep float64
}

func (s fixedStepper) integrate(f Func, y []float64, t0, t1 float64) error {
	span := t1 - t0
	steps := 1
	if !math.IsInf(s.maxStep, 1) && span > s.maxStep {
		steps = int(math.Ceil(span / s.maxStep))
	}
	h := span / float64(steps)

	t := t0
	for i := 0; i < steps; i++ {
		copy(y, s.advance(f, y, t, h))
		t += h
	}
	return nil
}

func eulerStep(f Func, y []float64, t, h float64) []float64 {
	dy := f(t, y)
	out := make([]float64, len(y))
	for i := range y {
		out[i] = y[i] + h*dy[i]
	}
	return out
}

func rk4Step(f Func, y []float64, t, h float64) []float64 {
	n := len(y)
	k1 := f(t, y)

	tmp := make([]float64, n)
	for i := 0; i < n; i++ {
		tmp[i] = y[i] + h*0.5*k1[i]
	}
	k2 := f(t+h*0.5, tmp)

	for i := 0; i < n; i++ {
		tmp[i] = y[i] + h*0.5*k2[i]
	}
	k3 := f(t+h*0.5, tmp)

	for i := 0; i < n; i++ {
		tmp[i] = y[i] + h*k3[i]
	}
	k4 := f(t+h, tmp)

	out := make([]float64, n)
	h6 := h / 6.0
	for i := 0; i < n; i++ {
		out[i] = y[i] + h6*(k1[i]+2*k2[i]+2*k3[i]+k4[i])
	}
	return out
}
