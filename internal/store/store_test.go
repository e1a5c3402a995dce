package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/oncodyn/tumorsim/internal/therapy"
)

func sampleRecord() *therapy.Record {
	rec := therapy.NewRecord([]string{"S", "R"})
	rec.Append(
		therapy.Row{Time: 0, Pops: []float64{1485, 15}, Drug: 100, Size: 1500},
		therapy.Row{Time: 1, Pops: []float64{1200, 20}, Drug: 100, Size: 1220},
		therapy.Row{Time: 2, Pops: []float64{1000, 28}, Drug: 0, Size: 1028},
	)
	return rec
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	metrics := map[string]float64{"time_to_progression": 42.5}
	runID, err := st.Save("linear3", "at1", nil, true, metrics, sampleRecord())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Model != "linear3" {
		t.Errorf("expected model 'linear3', got '%s'", meta.Model)
	}
	if meta.Policy != "at1" {
		t.Errorf("expected policy 'at1', got '%s'", meta.Policy)
	}
	if !meta.Success {
		t.Error("expected success flag to round-trip")
	}
	if meta.Metrics["time_to_progression"] != 42.5 {
		t.Errorf("expected metric 42.5, got %f", meta.Metrics["time_to_progression"])
	}
}

func TestStoreLoadRecord(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save("linear3", "at1", nil, true, nil, sampleRecord())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	rec, err := st.LoadRecord(runID)
	if err != nil {
		t.Fatalf("load record failed: %v", err)
	}
	if rec.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", rec.Len())
	}
	if len(rec.Vars) != 2 || rec.Vars[0] != "S" || rec.Vars[1] != "R" {
		t.Errorf("unexpected vars: %v", rec.Vars)
	}
	last := rec.Last()
	if last.Time != 2 {
		t.Errorf("expected final time 2, got %f", last.Time)
	}
	if last.Pops[1] != 28 {
		t.Errorf("expected resistant population 28, got %f", last.Pops[1])
	}
	if last.Size != 1028 {
		t.Errorf("expected size 1028, got %f", last.Size)
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected empty store, got %d runs", len(runs))
	}

	if _, err := st.Save("linear1", "at2", nil, true, nil, sampleRecord()); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	if runs[0].Model != "linear1" {
		t.Errorf("expected model 'linear1', got '%s'", runs[0].Model)
	}
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "never-created"))
	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestExportJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	if err := ExportJSON(path, "uniform", "at50", map[string]float64{"final_burden": 900}, sampleRecord()); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	var out ExportData
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if out.Model != "uniform" {
		t.Errorf("expected model 'uniform', got '%s'", out.Model)
	}
	if out.Steps != 3 {
		t.Errorf("expected 3 steps, got %d", out.Steps)
	}
	if out.Drug[2] != 0 {
		t.Errorf("expected final drug 0, got %f", out.Drug[2])
	}
	if out.Metrics["final_burden"] != 900 {
		t.Errorf("expected final_burden 900, got %f", out.Metrics["final_burden"])
	}
}
