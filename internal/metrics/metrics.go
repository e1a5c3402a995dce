// Package metrics computes summary statistics over simulated trajectory
// records: tumour burden, delivered drug, and time to progression.
package metrics

import (
	"fmt"
	"sort"

	"github.com/oncodyn/tumorsim/internal/therapy"
)

// DefaultProgressionFactor is the relative size increase over the
// starting burden that counts as progression.
const DefaultProgressionFactor = 1.2

// TimeToProgression returns the first time the tumour size exceeds
// factor times the initial recorded size, or -1 if it never does.
func TimeToProgression(rec *therapy.Record, factor float64) float64 {
	if rec.Empty() {
		return -1
	}
	limit := factor * rec.Rows[0].Size
	for _, row := range rec.Rows {
		if row.Size > limit {
			return row.Time
		}
	}
	return -1
}

// CumulativeDose integrates the drug concentration over time, treating
// it as piecewise constant between recorded rows.
func CumulativeDose(rec *therapy.Record) float64 {
	total := 0.0
	for i := 1; i < rec.Len(); i++ {
		total += rec.Rows[i-1].Drug * (rec.Rows[i].Time - rec.Rows[i-1].Time)
	}
	return total
}

// MeanBurden is the time-averaged tumour size.
func MeanBurden(rec *therapy.Record) float64 {
	if rec.Len() < 2 {
		if rec.Len() == 1 {
			return rec.Rows[0].Size
		}
		return 0
	}
	area := 0.0
	for i := 1; i < rec.Len(); i++ {
		dt := rec.Rows[i].Time - rec.Rows[i-1].Time
		area += 0.5 * (rec.Rows[i].Size + rec.Rows[i-1].Size) * dt
	}
	span := rec.Rows[rec.Len()-1].Time - rec.Rows[0].Time
	if span == 0 {
		return rec.Rows[0].Size
	}
	return area / span
}

// FinalBurden is the tumour size at the last recorded time point.
func FinalBurden(rec *therapy.Record) float64 {
	if rec.Empty() {
		return 0
	}
	return rec.Last().Size
}

var registry = map[string]func(*therapy.Record) float64{
	"final_burden":    FinalBurden,
	"mean_burden":     MeanBurden,
	"cumulative_dose": CumulativeDose,
	"time_to_progression": func(rec *therapy.Record) float64 {
		return TimeToProgression(rec, DefaultProgressionFactor)
	},
}

// Compute evaluates a named metric over the record.
func Compute(name string, rec *therapy.Record) (float64, error) {
	fn, ok := registry[name]
	if !ok {
		return 0, fmt.Errorf("unknown metric: %s", name)
	}
	return fn(rec), nil
}

// List returns the registered metric names, sorted.
func List() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All evaluates every registered metric.
func All(rec *therapy.Record) map[string]float64 {
	out := make(map[string]float64, len(registry))
	for name, fn := range registry {
		out[name] = fn(rec)
	}
	return out
}
