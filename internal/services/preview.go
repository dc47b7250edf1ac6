package services

import (
	"math"

	"pvcli/internal/analysis"
	"pvcli/pkg/contracts/domain"
)

// maxPreviewWarnings bounds the warnings echoed in a preview; the summary
// still carries the total
const maxPreviewWarnings = 50

// Preview is the JSON view of a report: the first rows of the Data table
// and the whole frequency table
type Preview struct {
	Summary   domain.RunSummary  `json:"summary"`
	Columns   []string           `json:"columns"`
	Rows      [][]any            `json:"rows"`
	Frequency MatrixView         `json:"frequency_table"`
	Warnings  []analysis.Warning `json:"warnings,omitempty"`
}

// MatrixView is a frequency table in row-major order
type MatrixView struct {
	Corner  string   `json:"corner"`
	Rows    []string `json:"rows"`
	Columns []string `json:"columns"`
	Counts  [][]int  `json:"counts"`
}

// Preview returns the first n rows, or the configured default when n <= 0
func (s *AnalysisService) Preview(report *Report, n int) *Preview {
	if n <= 0 {
		n = s.previewRows
	}
	res := report.Result
	n = min(n, len(res.Rows))

	rows := make([][]any, 0, n)
	for _, r := range res.Rows[:n] {
		rows = append(rows, []any{
			r.Time,
			r.Volume,
			jsonNumber(r.VolumeAvg),
			jsonNumber(r.VolumeDeviation),
			jsonLabel(r.VolumeRange),
			r.Price,
			jsonNumber(r.ForwardReturn),
			jsonLabel(r.PriceRange),
		})
	}

	warnings := res.Diagnostics.Warnings
	if len(warnings) > maxPreviewWarnings {
		warnings = warnings[:maxPreviewWarnings]
	}

	return &Preview{
		Summary: report.Summary,
		Columns: res.Columns.Ordered(),
		Rows:    rows,
		Frequency: MatrixView{
			Corner:  res.Columns.VolumeRange,
			Rows:    res.Matrix.RowLabels(),
			Columns: res.Matrix.ColumnLabels(),
			Counts:  res.Matrix.Counts,
		},
		Warnings: warnings,
	}
}

// jsonNumber maps absent values to null and unbounded ones to text,
// since JSON has no infinities
func jsonNumber(v analysis.Optional[float64]) any {
	f, ok := v.Get()
	switch {
	case !ok:
		return nil
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	return f
}

func jsonLabel(v analysis.Optional[analysis.BinLabel]) any {
	if l, ok := v.Get(); ok {
		return l.String()
	}
	return nil
}
