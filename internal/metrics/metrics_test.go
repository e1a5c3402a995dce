package metrics

import (
	"math"
	"testing"

	"github.com/oncodyn/tumorsim/internal/therapy"
)

func sampleRecord() *therapy.Record {
	rec := therapy.NewRecord([]string{"S", "R"})
	rec.Append(
		therapy.Row{Time: 0, Pops: []float64{80, 20}, Drug: 2, Size: 100},
		therapy.Row{Time: 1, Pops: []float64{80, 30}, Drug: 2, Size: 110},
		therapy.Row{Time: 2, Pops: []float64{90, 40}, Drug: 0, Size: 130},
		therapy.Row{Time: 3, Pops: []float64{90, 50}, Drug: 0, Size: 140},
	)
	return rec
}

func TestTimeToProgression(t *testing.T) {
	rec := sampleRecord()

	// 1.2 x 100 = 120, first exceeded at t=2.
	if ttp := TimeToProgression(rec, 1.2); ttp != 2 {
		t.Errorf("expected progression at t=2, got %g", ttp)
	}

	// Never reaches 2x.
	if ttp := TimeToProgression(rec, 2.0); ttp != -1 {
		t.Errorf("expected no progression, got %g", ttp)
	}
}

func TestCumulativeDose(t *testing.T) {
	rec := sampleRecord()

	// 2 over [0,2), 0 afterwards.
	if dose := CumulativeDose(rec); math.Abs(dose-4) > 1e-12 {
		t.Errorf("expected cumulative dose 4, got %g", dose)
	}
}

func TestMeanBurden(t *testing.T) {
	rec := sampleRecord()

	// Trapezoid: (105 + 120 + 135) / 3 = 120.
	if mean := MeanBurden(rec); math.Abs(mean-120) > 1e-12 {
		t.Errorf("expected mean burden 120, got %g", mean)
	}
}

func TestFinalBurden(t *testing.T) {
	if got := FinalBurden(sampleRecord()); got != 140 {
		t.Errorf("expected 140, got %g", got)
	}
	if got := FinalBurden(therapy.NewRecord(nil)); got != 0 {
		t.Errorf("expected 0 for empty record, got %g", got)
	}
}

func TestComputeRegistry(t *testing.T) {
	rec := sampleRecord()
	for _, name := range List() {
		if _, err := Compute(name, rec); err != nil {
			t.Errorf("Compute(%q) failed: %v", name, err)
		}
	}
	if _, err := Compute("banana", rec); err == nil {
		t.Error("expected error for unknown metric")
	}
}
