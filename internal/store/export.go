package store

import (
	"encoding/json"
	"io"
	"os"

	"github.com/oncodyn/tumorsim/internal/therapy"
)

type ExportData struct {
	Model   string             `json:"model"`
	Policy  string             `json:"policy"`
	Vars    []string           `json:"vars"`
	Steps   int                `json:"steps"`
	Times   []float64          `json:"times"`
	Pops    [][]float64        `json:"populations"`
	Drug    []float64          `json:"drug_concentration"`
	Size    []float64          `json:"tumour_size"`
	Metrics map[string]float64 `json:"metrics"`
}

func buildExport(model, policy string, metrics map[string]float64, rec *therapy.Record) ExportData {
	data := ExportData{
		Model:   model,
		Policy:  policy,
		Vars:    rec.Vars,
		Steps:   rec.Len(),
		Times:   rec.Times(),
		Pops:    make([][]float64, rec.Len()),
		Drug:    make([]float64, rec.Len()),
		Size:    make([]float64, rec.Len()),
		Metrics: metrics,
	}

	for i, row := range rec.Rows {
		data.Pops[i] = row.Pops
		data.Drug[i] = row.Drug
		data.Size[i] = row.Size
	}
	return data
}

func ExportJSON(path, model, policy string, metrics map[string]float64, rec *therapy.Record) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return writeExport(file, model, policy, metrics, rec)
}

func ExportJSONStdout(model, policy string, metrics map[string]float64, rec *therapy.Record) error {
	return writeExport(os.Stdout, model, policy, metrics, rec)
}

func writeExport(w io.Writer, model, policy string, metrics map[string]float64, rec *therapy.Record) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(buildExport(model, policy, metrics, rec))
}
