package viz

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/oncodyn/tumorsim/internal/therapy"
)

const (
	plotWidth  = 80
	plotHeight = 10
)

// PlotSize charts total tumour size over the whole record.
func PlotSize(rec *therapy.Record) string {
	if rec.Empty() {
		return ""
	}
	data, _ := rec.Column(therapy.TumourSize)
	caption := fmt.Sprintf("tumour size (t = %.1f .. %.1f)", rec.Rows[0].Time, rec.Last().Time)
	return asciigraph.Plot(data,
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Caption(caption),
	)
}

// PlotPopulations charts each population series stacked vertically.
func PlotPopulations(rec *therapy.Record) string {
	if rec.Empty() {
		return ""
	}

	var s strings.Builder
	for i, name := range rec.Vars {
		data, err := rec.Column(name)
		if err != nil {
			continue
		}
		if i > 0 {
			s.WriteString("\n\n")
		}
		s.WriteString(asciigraph.Plot(data,
			asciigraph.Height(plotHeight),
			asciigraph.Width(plotWidth),
			asciigraph.Caption(name),
		))
	}
	return s.String()
}

// PlotDose charts the applied drug concentration.
func PlotDose(rec *therapy.Record) string {
	if rec.Empty() {
		return ""
	}
	data, _ := rec.Column(therapy.DrugConcentration)
	return asciigraph.Plot(data,
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Caption("drug concentration"),
	)
}
