package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Outcomes recorded on analysis_runs_total
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// AnalysisMetrics holds the instruments recorded for each analysis run
type AnalysisMetrics struct {
	runs           metric.Int64Counter
	duration       metric.Float64Histogram
	rowsRetained   metric.Int64Counter
	rowsDropped    metric.Int64Counter
	labelFallbacks metric.Int64Counter
}

// NewAnalysisMetrics creates the analysis instruments on the given meter
func NewAnalysisMetrics(meter metric.Meter) (*AnalysisMetrics, error) {
	runs, err := meter.Int64Counter(
		"analysis_runs_total",
		metric.WithDescription("Total number of analysis runs"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"analysis_duration_seconds",
		metric.WithDescription("Analysis run duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	rowsRetained, err := meter.Int64Counter(
		"analysis_rows_retained_total",
		metric.WithDescription("Rows kept after cleaning"),
	)
	if err != nil {
		return nil, err
	}

	rowsDropped, err := meter.Int64Counter(
		"analysis_rows_dropped_total",
		metric.WithDescription("Rows dropped during loading and cleaning, by reason"),
	)
	if err != nil {
		return nil, err
	}

	labelFallbacks, err := meter.Int64Counter(
		"analysis_label_fallbacks_total",
		metric.WithDescription("Bin labels that could not be parsed and were ordered last"),
	)
	if err != nil {
		return nil, err
	}

	return &AnalysisMetrics{
		runs:           runs,
		duration:       duration,
		rowsRetained:   rowsRetained,
		rowsDropped:    rowsDropped,
		labelFallbacks: labelFallbacks,
	}, nil
}

// RecordRun records the outcome and duration of one run
func (m *AnalysisMetrics) RecordRun(ctx context.Context, source string, elapsed time.Duration, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	attrs := metric.WithAttributes(
		attribute.String("outcome", outcome),
		attribute.String("source", source),
	)
	m.runs.Add(ctx, 1, attrs)
	m.duration.Record(ctx, elapsed.Seconds(), attrs)
}

// RecordRows records retained rows and dropped rows keyed by reason
func (m *AnalysisMetrics) RecordRows(ctx context.Context, retained int, dropped map[string]int) {
	m.rowsRetained.Add(ctx, int64(retained))
	for reason, n := range dropped {
		if n == 0 {
			continue
		}
		m.rowsDropped.Add(ctx, int64(n), metric.WithAttributes(attribute.String("reason", reason)))
	}
}

// RecordLabelFallbacks records malformed bin labels met while recounting
func (m *AnalysisMetrics) RecordLabelFallbacks(ctx context.Context, n int) {
	if n > 0 {
		m.labelFallbacks.Add(ctx, int64(n))
	}
}
