package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/oncodyn/tumorsim/internal/therapy"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Model     string             `json:"model"`
	Policy    string             `json:"policy"`
	Timestamp time.Time          `json:"timestamp"`
	Dt        float64            `json:"dt"`
	Method    string             `json:"method"`
	Success   bool               `json:"success"`
	Metrics   map[string]float64 `json:"metrics"`
}

func (s *Store) Save(model, policy string, opts *therapy.SolverOptions, success bool, metrics map[string]float64, rec *therapy.Record) (string, error) {
	runID := fmt.Sprintf("%s_%d", model, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if opts == nil {
		d := therapy.DefaultSolverOptions()
		opts = &d
	}

	meta := RunMetadata{
		ID:        runID,
		Model:     model,
		Policy:    policy,
		Timestamp: time.Now(),
		Dt:        opts.Dt,
		Method:    opts.Method,
		Success:   success,
		Metrics:   metrics,
	}

	metaPath := filepath.Join(runDir, "metadata.json")
	metaFile, err := os.Create(metaPath)
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvPath := filepath.Join(runDir, "trajectory.csv")
	csvFile, err := os.Create(csvPath)
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	header := []string{"time"}
	header = append(header, rec.Vars...)
	header = append(header, "drug_concentration", "tumour_size")

	if err := w.Write(header); err != nil {
		return "", err
	}

	for _, row := range rec.Rows {
		line := []string{strconv.FormatFloat(row.Time, 'f', 6, 64)}
		for _, val := range row.Pops {
			line = append(line, strconv.FormatFloat(val, 'f', 6, 64))
		}
		line = append(line,
			strconv.FormatFloat(row.Drug, 'f', 6, 64),
			strconv.FormatFloat(row.Size, 'f', 6, 64))
		if err := w.Write(line); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		metaPath := filepath.Join(s.baseDir, entry.Name(), "metadata.json")
		data, err := os.ReadFile(metaPath)
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}

		runs = append(runs, meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, runID, "metadata.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func (s *Store) LoadRecord(runID string) (*therapy.Record, error) {
	csvPath := filepath.Join(s.baseDir, runID, "trajectory.csv")
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("empty trajectory file: %s", csvPath)
	}

	header := records[0]
	if len(header) < 3 {
		return nil, fmt.Errorf("malformed trajectory header: %v", header)
	}
	vars := header[1 : len(header)-2]

	rec := therapy.NewRecord(vars)
	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) != len(header) {
			continue
		}

		vals := make([]float64, 0, len(record))
		ok := true
		for _, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				ok = false
				break
			}
			vals = append(vals, v)
		}
		if !ok {
			continue
		}

		rec.Append(therapy.Row{
			Time: vals[0],
			Pops: vals[1 : len(vals)-2],
			Drug: vals[len(vals)-2],
			Size: vals[len(vals)-1],
		})
	}

	return rec, nil
}
