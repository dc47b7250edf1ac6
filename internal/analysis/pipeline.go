package analysis

import (
	"fmt"

	"pvcli/pkg/contracts/domain"
)

// Row is one enriched observation of the "Data" table
type Row struct {
	domain.Observation
	VolumeAvg       Optional[float64]
	VolumeDeviation Optional[float64]
	VolumeRange     Optional[BinLabel]
	ForwardReturn   Optional[float64]
	PriceRange      Optional[BinLabel]
}

// Result is the output of a run
type Result struct {
	Params      domain.AnalysisParams
	Columns     domain.DataColumns
	Rows        []Row
	Matrix      *FrequencyMatrix
	Clean       CleanReport
	Diagnostics Diagnostics
}

// PairedRows returns the number of rows that have both labels
func (r *Result) PairedRows() int {
	return r.Matrix.Total()
}

type runOptions struct {
	observer Observer
}

// Option configures Run
type Option func(*runOptions)

// WithObserver reports warnings to obs as they occur
func WithObserver(obs Observer) Option {
	return func(o *runOptions) {
		o.observer = obs
	}
}

// Run executes the full pipeline. Parameter errors abort before any row is
// touched; data-quality problems are reported in Result.Diagnostics.
func Run(raw []domain.RawObservation, params domain.AnalysisParams, opts ...Option) (*Result, error) {
	var o runOptions
	for _, opt := range opts {
		opt(&o)
	}

	if err := ValidateParams(params); err != nil {
		return nil, err
	}
	volumeBinner, err := NewRangeBinner(params.VolumeBinWidth)
	if err != nil {
		return nil, err
	}
	priceBinner, err := NewRangeBinner(params.PriceBinWidth)
	if err != nil {
		return nil, err
	}

	diag := newDiagnostics(o.observer)
	series, report := clean(raw, diag)

	avgs, err := RollingVolumeAverage(series, params.Window)
	if err != nil {
		return nil, err
	}
	deviations, err := VolumeDeviation(series, avgs)
	if err != nil {
		return nil, err
	}
	returns, err := ForwardReturn(series, params.Horizon)
	if err != nil {
		return nil, err
	}

	volumeLabels := volumeBinner.BinAll(deviations)
	priceLabels := priceBinner.BinAll(returns)

	matrix, err := Aggregate(volumeLabels, priceLabels)
	if err != nil {
		return nil, fmt.Errorf("build frequency table: %w", err)
	}

	rows := make([]Row, len(series))
	for p, obs := range series {
		rows[p] = Row{
			Observation:     obs,
			VolumeAvg:       avgs[p],
			VolumeDeviation: deviations[p],
			VolumeRange:     volumeLabels[p],
			ForwardReturn:   returns[p],
			PriceRange:      priceLabels[p],
		}
	}

	return &Result{
		Params:      params,
		Columns:     domain.NewDataColumns(params),
		Rows:        rows,
		Matrix:      matrix,
		Clean:       report,
		Diagnostics: Diagnostics{Warnings: diag.Warnings},
	}, nil
}
