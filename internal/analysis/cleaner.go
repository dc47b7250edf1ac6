package analysis

import (
	"sort"

	"pvcli/pkg/contracts/domain"
)

// Series is a chronologically ordered run of observations; the slice index
// is the observation's position.
type Series []domain.Observation

// CleanReport summarises what the cleaner kept and dropped
type CleanReport struct {
	Input       int `json:"input"`
	Retained    int `json:"retained"`
	ZeroVolume  int `json:"zero_volume"`
	InvalidTime int `json:"invalid_time"`
}

// Dropped returns the total number of rows removed
func (r CleanReport) Dropped() int {
	return r.ZeroVolume + r.InvalidTime
}

// Clean removes zero-volume rows, parses dates day first, drops rows whose
// date cannot be read and sorts the rest by time. Rows with equal times keep
// their input order.
func Clean(raw []domain.RawObservation) (Series, CleanReport) {
	return clean(raw, newDiagnostics(nil))
}

func clean(raw []domain.RawObservation, diag *Diagnostics) (Series, CleanReport) {
	report := CleanReport{Input: len(raw)}
	series := make(Series, 0, len(raw))

	for _, r := range raw {
		if r.Volume == 0 {
			report.ZeroVolume++
			diag.add(Warning{
				Kind:    WarnZeroVolume,
				Line:    r.Line,
				Value:   r.Time,
				Message: "row dropped: volume is zero",
			})
			continue
		}

		t, err := ParseDate(r.Time)
		if err != nil {
			report.InvalidTime++
			diag.add(Warning{
				Kind:    WarnInvalidTime,
				Line:    r.Line,
				Value:   r.Time,
				Message: "row dropped: " + err.Error(),
			})
			continue
		}

		series = append(series, domain.Observation{Time: t, Price: r.Price, Volume: r.Volume})
	}

	sort.SliceStable(series, func(a, b int) bool {
		return series[a].Time.Before(series[b].Time)
	})

	report.Retained = len(series)
	return series, report
}
