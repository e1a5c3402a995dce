package therapy

import (
	"math"
	"testing"
)

func makeRecord(times ...float64) *Record {
	rec := NewRecord([]string{"S", "R"})
	for _, t := range times {
		rec.Append(Row{Time: t, Pops: []float64{2 * t, t}, Drug: 1, Size: 3 * t})
	}
	return rec
}

func TestDropDuplicates(t *testing.T) {
	rec := makeRecord(0, 1, 1, 2)

	rec.DropDuplicates()
	if rec.Len() != 3 {
		t.Fatalf("expected 3 rows after dedup, got %d", rec.Len())
	}

	// Idempotent.
	rec.DropDuplicates()
	if rec.Len() != 3 {
		t.Errorf("dedup not idempotent: %d rows", rec.Len())
	}
}

func TestDropDuplicatesKeepsDistinctRowsAtSameTime(t *testing.T) {
	rec := makeRecord(0, 1)
	rec.Append(Row{Time: 1, Pops: []float64{2, 1}, Drug: 5, Size: 3})

	rec.DropDuplicates()
	if rec.Len() != 3 {
		t.Errorf("rows differing in drug must both survive, got %d rows", rec.Len())
	}
}

func TestColumn(t *testing.T) {
	rec := makeRecord(0, 1, 2)

	col, err := rec.Column("S")
	if err != nil {
		t.Fatalf("column S: %v", err)
	}
	if col[2] != 4 {
		t.Errorf("expected S[2] = 4, got %g", col[2])
	}

	col, err = rec.Column("TumourSize")
	if err != nil {
		t.Fatalf("column TumourSize: %v", err)
	}
	if col[1] != 3 {
		t.Errorf("expected size 3, got %g", col[1])
	}

	if _, err := rec.Column("Q"); err == nil {
		t.Error("expected error for unknown column")
	}
}

func TestReset(t *testing.T) {
	rec := makeRecord(0, 1, 2)
	rec.Reset()
	if !rec.Empty() {
		t.Errorf("expected empty record after reset, got %d rows", rec.Len())
	}
}

func TestResample(t *testing.T) {
	rec := makeRecord(0, 1, 2)
	rec.Resample([]float64{0, 0.5, 1.5, 2})

	if rec.Len() != 4 {
		t.Fatalf("expected 4 rows, got %d", rec.Len())
	}

	// Endpoints of an aligned grid keep their recorded values.
	if rec.Rows[0].Size != 0 || rec.Rows[3].Size != 6 {
		t.Errorf("endpoint values changed: %g, %g", rec.Rows[0].Size, rec.Rows[3].Size)
	}

	// Interior points are linear interpolations.
	if math.Abs(rec.Rows[1].Size-1.5) > 1e-12 {
		t.Errorf("expected interpolated size 1.5, got %g", rec.Rows[1].Size)
	}
	if math.Abs(rec.Rows[2].Pops[0]-3) > 1e-12 {
		t.Errorf("expected interpolated S 3, got %g", rec.Rows[2].Pops[0])
	}
}
