package solver

import (
	"errors"
	"math"
)

// Dormand-Prince 5(4) coefficients
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

const (
	safety   = 0.9
	minScale = 0.2
	maxScale = 10.0

	// Bail out rather than grind forever when the problem is too stiff
	// for the requested tolerances.
	maxAttempts = 100000
)

type dopri struct {
	absTol  float64
	relTol  float64
	maxStep float64
}

func newDopri(cfg Config) *dopri {
	return &dopri{absTol: cfg.AbsTol, relTol: cfg.RelTol, maxStep: cfg.MaxStep}
}

func (d *dopri) integrate(f Func, y []float64, t0, t1 float64) error {
	t := t0
	h := math.Min(t1-t0, d.maxStep)
	minStep := math.Max((t1-t0)*1e-14, 1e-300)

	attempts := 0
	for t < t1 {
		if h > t1-t {
			h = t1 - t
		}
		yNew, errRatio := d.attempt(f, y, t, h)

		attempts++
		if attempts > maxAttempts {
			return errors.New("step limit exceeded, integration does not converge")
		}

		if errRatio > 1 || !valid(yNew) {
			scale := math.Max(minScale, safety*math.Pow(errRatio, -0.25))
			if !valid(yNew) {
				scale = minScale
			}
			h *= scale
			if h < minStep {
				return errors.New("step size underflow, integration does not converge")
			}
			continue
		}

		copy(y, yNew)
		t += h

		if errRatio > 0 {
			h *= math.Min(maxScale, safety*math.Pow(errRatio, -0.2))
		} else {
			h *= maxScale
		}
		h = math.Min(h, d.maxStep)
	}
	return nil
}

// attempt takes a trial step of size h and returns the candidate state
// along with the error estimate scaled against the tolerances.
func (d *dopri) attempt(f Func, y []float64, t, h float64) ([]float64, float64) {
	n := len(y)

	k1 := f(t, y)

	y2 := make([]float64, n)
	for i := 0; i < n; i++ {
		y2[i] = y[i] + h*b21*k1[i]
	}
	k2 := f(t+a2*h, y2)

	y3 := make([]float64, n)
	for i := 0; i < n; i++ {
		y3[i] = y[i] + h*(b31*k1[i]+b32*k2[i])
	}
	k3 := f(t+a3*h, y3)

	y4 := make([]float64, n)
	for i := 0; i < n; i++ {
		y4[i] = y[i] + h*(b41*k1[i]+b42*k2[i]+b43*k3[i])
	}
	k4 := f(t+a4*h, y4)

	y5 := make([]float64, n)
	for i := 0; i < n; i++ {
		y5[i] = y[i] + h*(b51*k1[i]+b52*k2[i]+b53*k3[i]+b54*k4[i])
	}
	k5 := f(t+a5*h, y5)

	y6 := make([]float64, n)
	for i := 0; i < n; i++ {
		y6[i] = y[i] + h*(b61*k1[i]+b62*k2[i]+b63*k3[i]+b64*k4[i]+b65*k5[i])
	}
	k6 := f(t+h, y6)

	yNew := make([]float64, n)
	for i := 0; i < n; i++ {
		yNew[i] = y[i] + h*(c1*k1[i]+c3*k3[i]+c4*k4[i]+c5*k5[i]+c6*k6[i])
	}

	k7 := f(t+h, yNew)

	errRatio := 0.0
	for i := 0; i < n; i++ {
		errEst := h * (dc1*k1[i] + dc3*k3[i] + dc4*k4[i] + dc5*k5[i] + dc6*k6[i] + dc7*k7[i])
		scale := d.absTol + d.relTol*math.Max(math.Abs(y[i]), math.Abs(yNew[i]))
		errRatio = math.Max(errRatio, math.Abs(errEst)/scale)
	}

	return yNew, errRatio
}
