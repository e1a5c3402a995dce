package therapy

import (
	"fmt"
	"sort"
)

// Column names understood by Record.Column beyond the state variables.
const (
	DrugConcentration = "DrugConcentration"
	TumourSize        = "TumourSize"
)

// Row is one time point of a simulated trajectory.
type Row struct {
	Time float64
	Pops []float64
	Drug float64
	Size float64
}

func (r Row) equal(other Row) bool {
	if r.Time != other.Time || r.Drug != other.Drug || r.Size != other.Size {
		return false
	}
	if len(r.Pops) != len(other.Pops) {
		return false
	}
	for i := range r.Pops {
		if r.Pops[i] != other.Pops[i] {
			return false
		}
	}
	return true
}

// Record is the trajectory accumulated across all intervals simulated so
// far by one model instance. It grows monotonically in time; the only
// sanctioned in-place mutation is the passage-boundary reseed of the most
// recent row (see PassageAssay).
type Record struct {
	Vars []string
	Rows []Row
}

func NewRecord(vars []string) *Record {
	return &Record{Vars: vars}
}

func (r *Record) Len() int    { return len(r.Rows) }
func (r *Record) Empty() bool { return len(r.Rows) == 0 }

func (r *Record) Reset() {
	r.Rows = r.Rows[:0]
}

func (r *Record) Append(rows ...Row) {
	r.Rows = append(r.Rows, rows...)
}

func (r *Record) Last() Row {
	return r.Rows[len(r.Rows)-1]
}

// DropDuplicates removes consecutive rows that are exact duplicates, as
// happens at interval boundaries where the end of one Simulate call and
// the start of the next share a time point.
func (r *Record) DropDuplicates() {
	if len(r.Rows) < 2 {
		return
	}
	out := r.Rows[:1]
	for _, row := range r.Rows[1:] {
		if !row.equal(out[len(out)-1]) {
			out = append(out, row)
		}
	}
	r.Rows = out
}

// Times returns the time column.
func (r *Record) Times() []float64 {
	ts := make([]float64, len(r.Rows))
	for i, row := range r.Rows {
		ts[i] = row.Time
	}
	return ts
}

// Column returns a named column: a state variable, "DrugConcentration",
// or "TumourSize".
func (r *Record) Column(name string) ([]float64, error) {
	get := func(f func(Row) float64) []float64 {
		vals := make([]float64, len(r.Rows))
		for i, row := range r.Rows {
			vals[i] = f(row)
		}
		return vals
	}

	switch name {
	case DrugConcentration:
		return get(func(row Row) float64 { return row.Drug }), nil
	case TumourSize:
		return get(func(row Row) float64 { return row.Size }), nil
	}
	for i, v := range r.Vars {
		if v == name {
			idx := i
			return get(func(row Row) float64 { return row.Pops[idx] }), nil
		}
	}
	return nil, fmt.Errorf("record has no column %q", name)
}

// varIndex returns the position of a state variable, or -1.
func (r *Record) varIndex(name string) int {
	for i, v := range r.Vars {
		if v == name {
			return i
		}
	}
	return -1
}

// Resample replaces the record with a linear interpolation of every column
// onto tEval. Points outside the recorded time span are clamped to the
// nearest row.
func (r *Record) Resample(tEval []float64) {
	if len(r.Rows) == 0 || len(tEval) == 0 {
		return
	}
	out := make([]Row, len(tEval))
	for i, t := range tEval {
		out[i] = r.interpolate(t)
	}
	r.Rows = out
}

func (r *Record) interpolate(t float64) Row {
	rows := r.Rows
	if t <= rows[0].Time {
		return cloneRow(rows[0], t)
	}
	if t >= rows[len(rows)-1].Time {
		return cloneRow(rows[len(rows)-1], t)
	}

	j := sort.Search(len(rows), func(i int) bool { return rows[i].Time >= t })
	lo, hi := rows[j-1], rows[j]
	if hi.Time == lo.Time {
		return cloneRow(hi, t)
	}
	frac := (t - lo.Time) / (hi.Time - lo.Time)

	lerp := func(a, b float64) float64 { return a + frac*(b-a) }
	pops := make([]float64, len(lo.Pops))
	for i := range pops {
		pops[i] = lerp(lo.Pops[i], hi.Pops[i])
	}
	return Row{
		Time: t,
		Pops: pops,
		Drug: lerp(lo.Drug, hi.Drug),
		Size: lerp(lo.Size, hi.Size),
	}
}

func cloneRow(row Row, t float64) Row {
	pops := make([]float64, len(row.Pops))
	copy(pops, row.Pops)
	return Row{Time: t, Pops: pops, Drug: row.Drug, Size: row.Size}
}
