package therapy

import (
	"testing"

	"github.com/oncodyn/tumorsim/internal/kinetics"
)

// staticSys holds its pools constant, so feedback policies see a flat
// tumour size regardless of dose.
func staticSys() *testSys {
	return &testSys{
		name:   "static",
		vars:   []string{"S", "R"},
		params: kinetics.Params{"DMax": 10, "S0": 60, "R0": 40},
		rates: func(t float64, y kinetics.State) kinetics.State {
			return kinetics.State{0, 0, 0}
		},
	}
}

// pressureSys shrinks under drug and grows without it.
func pressureSys() *testSys {
	return &testSys{
		name:   "pressure",
		vars:   []string{"S", "R"},
		params: kinetics.Params{"DMax": 10, "S0": 90, "R0": 10},
		rates: func(t float64, y kinetics.State) kinetics.State {
			rate := 0.1 - 0.05*y[2]
			return kinetics.State{rate * y[0], rate * y[1], 0}
		},
	}
}

func TestModulationWithdrawalAndRestore(t *testing.T) {
	p := NewDoseModulation()
	p.WithdrawBelow = 10

	// Tumour drops below the withdrawal size: dose goes to zero and the
	// prior dose is remembered.
	dose, remembered := p.nextDose(5, 100, 80, 80, 100)
	if dose != 0 {
		t.Fatalf("expected withdrawal, got dose %g", dose)
	}
	if remembered != 80 {
		t.Fatalf("expected remembered dose 80, got %g", remembered)
	}

	// While it stays below, the dose stays withdrawn and the remembered
	// dose is untouched.
	for i := 0; i < 5; i++ {
		dose, remembered = p.nextDose(5, 5, dose, remembered, 100)
		if dose != 0 || remembered != 80 {
			t.Fatalf("step %d: dose %g remembered %g", i, dose, remembered)
		}
	}

	// Rising back above the floor, inside the hold band, restores the
	// remembered dose unchanged.
	dose, _ = p.nextDose(12, 12, dose, remembered, 100)
	if dose != 80 {
		t.Errorf("expected restored dose 80, got %g", dose)
	}
}

func TestModulationAdjustments(t *testing.T) {
	p := NewDoseModulation() // threshold 0.2, factor 0.5

	tests := []struct {
		name string
		size float64
		ref  float64
		dose float64
		want float64
	}{
		{"shrinkage reduces dose", 70, 100, 40, 20},
		{"growth raises dose", 130, 100, 40, 60},
		{"inside band holds dose", 100, 100, 40, 40},
		{"growth capped at max dose", 130, 100, 90, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dose, _ := p.nextDose(tt.size, tt.ref, tt.dose, tt.dose, 100)
			if dose != tt.want {
				t.Errorf("dose = %g, want %g", dose, tt.want)
			}
		})
	}
}

func TestModulationMultiplicativeMode(t *testing.T) {
	p := NewDoseModulation()
	p.Multiplicative = true // scale by 1/factor on shrinkage, factor on growth

	dose, _ := p.nextDose(70, 100, 40, 40, 100)
	if dose != 80 {
		t.Errorf("shrinkage in multiplicative mode: dose %g, want 80", dose)
	}
	dose, _ = p.nextDose(130, 100, 40, 40, 100)
	if dose != 20 {
		t.Errorf("growth in multiplicative mode: dose %g, want 20", dose)
	}
}

func TestSkippingDecision(t *testing.T) {
	p := NewDoseSkipping()
	p.MinDose = 1

	if dose := p.nextDose(130, 100, 75); dose != 75 {
		t.Errorf("growth should trigger the high dose, got %g", dose)
	}
	if dose := p.nextDose(119, 100, 75); dose != 1 {
		t.Errorf("inside threshold should give the minimum dose, got %g", dose)
	}
}

func TestIntermittentAsymmetricBand(t *testing.T) {
	p := NewIntermittent()
	p.Threshold = 0.5
	p.MinDose = 0
	const ref = 100.0

	// Exactly at the reference: neither branch fires, hold both.
	dose, length := p.next(ref, ref, 7, 3, 50, 1, 4)
	if dose != 7 || length != 3 {
		t.Errorf("reading at ref should hold, got dose %g length %g", dose, length)
	}

	// Just below (1-theta)*ref: off-dosing with the off length.
	dose, length = p.next(49, ref, 7, 3, 50, 1, 4)
	if dose != 0 || length != 4 {
		t.Errorf("expected off-dosing, got dose %g length %g", dose, length)
	}

	// Just above the reference (not (1+theta)*ref): on-dosing.
	dose, length = p.next(101, ref, 7, 3, 50, 1, 4)
	if dose != 50 || length != 1 {
		t.Errorf("expected on-dosing, got dose %g length %g", dose, length)
	}

	// The band is asymmetric: well inside [(1-theta)*ref, ref] holds.
	dose, _ = p.next(60, ref, 7, 3, 50, 1, 4)
	if dose != 7 {
		t.Errorf("reading at 0.6*ref should hold, got dose %g", dose)
	}
}

func TestModulationClosedLoop(t *testing.T) {
	m := NewModel(pressureSys())
	p := NewDoseModulation()
	p.Horizon = 5
	p.MaxCycles = 5
	p.Solver = testOpts()

	if !p.Run(m) {
		t.Fatalf("run failed: %s", m.Diagnostic)
	}

	rec := m.Record()
	if rec.Empty() {
		t.Fatal("expected a trajectory")
	}
	if last := rec.Last(); last.Time < 5 {
		t.Errorf("expected the loop to cover the horizon, stopped at %g", last.Time)
	}

	maxDose := m.MaxDose()
	for _, row := range rec.Rows {
		if row.Drug < 0 || row.Drug > maxDose {
			t.Fatalf("dose %g outside [0, %g]", row.Drug, maxDose)
		}
	}
}

func TestSkippingClosedLoopFlatTumour(t *testing.T) {
	m := NewModel(staticSys())
	p := NewDoseSkipping()
	p.MinDose = 0
	p.Horizon = 4
	p.MaxCycles = 4
	p.Solver = testOpts()

	if !p.Run(m) {
		t.Fatalf("run failed: %s", m.Diagnostic)
	}

	// A flat tumour never exceeds the growth threshold, so every
	// decision after the initial dose skips treatment.
	for _, row := range m.Record().Rows {
		if row.Time > 1 && row.Drug != 0 {
			t.Fatalf("dose %g at t=%g, expected skipped treatment", row.Drug, row.Time)
		}
	}
}

func TestIntermittentClosedLoopRespectsMaxCycles(t *testing.T) {
	m := NewModel(staticSys())
	p := NewIntermittent()
	p.Horizon = 100
	p.MaxCycles = 3
	p.Solver = testOpts()

	if !p.Run(m) {
		t.Fatalf("run failed: %s", m.Diagnostic)
	}

	if last := m.Record().Last(); last.Time > 3.0 {
		t.Errorf("3 cycles of unit length should stop by t=3, got %g", last.Time)
	}
}

func TestPolicyStopsOnIntegrationFailure(t *testing.T) {
	// Blowup at t = 1/P0 = 1.5, during the second decision interval.
	m := NewModel(blowupSys(2.0 / 3.0))
	p := NewDoseModulation()
	p.Horizon = 10
	p.Solver = testOpts()

	if p.Run(m) {
		t.Fatal("expected the loop to report failure")
	}
	if m.Success {
		t.Error("success flag should be false after divergence")
	}
	if last := m.Record().Last(); last.Time >= 1.5 {
		t.Errorf("loop continued past the divergence: t=%g", last.Time)
	}
}
