package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"pvcli/internal/analysis"
	"pvcli/internal/config"
	"pvcli/internal/dataprocessing"
	apperrors "pvcli/internal/errors"
	"pvcli/internal/exporter"
	"pvcli/internal/infrastructure"
	"pvcli/internal/validation"
	"pvcli/pkg/contracts/domain"
)

// Sources recorded on reports and metrics
const (
	SourceCLI = "cli"
	SourceWeb = "web"
)

// AnalyzeRequest is one input table plus its run parameters
type AnalyzeRequest struct {
	Name   string
	Reader io.Reader
	Params domain.AnalysisParams
	Source string
}

// Report is the outcome of one run
type Report struct {
	Summary  domain.RunSummary
	Result   *analysis.Result
	Encoding string
}

// RecountReport is a frequency table rebuilt from exported labels
type RecountReport struct {
	VolumeColumn string
	PriceColumn  string
	Rows         int
	Matrix       *analysis.FrequencyMatrix
	Warnings     []analysis.Warning
}

// AnalysisService runs analyses and renders their results
type AnalysisService struct {
	defaults    domain.AnalysisParams
	previewRows int
	params      *validation.ParamsValidator
	files       *validation.FileValidator
	workbook    *exporter.WorkbookWriter
	csv         *exporter.CSVWriter
	paths       *config.Paths
	tracer      trace.Tracer
	metrics     *infrastructure.AnalysisMetrics
	logger      *slog.Logger
}

// NewAnalysisService wires the service. A nil telemetry uses no-op providers.
func NewAnalysisService(cfg *config.Config, paths *config.Paths, telemetry *infrastructure.OTelProviders, logger *slog.Logger) (*AnalysisService, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if telemetry == nil {
		telemetry = infrastructure.NoopProviders()
	}

	metrics, err := infrastructure.NewAnalysisMetrics(telemetry.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create analysis metrics: %w", err)
	}

	previewRows := cfg.Analysis.PreviewRows
	if previewRows <= 0 {
		previewRows = config.DefaultPreviewRows
	}

	logger = logger.With(slog.String("component", "analysis_service"))
	logger.Debug("AnalysisService initialized",
		slog.String("reports_dir", paths.ReportsDir),
		slog.Any("allowed_extensions", cfg.Upload.AllowedExtensions))

	return &AnalysisService{
		defaults:    cfg.Analysis.Params(),
		previewRows: previewRows,
		params:      validation.NewParamsValidator(),
		files:       validation.NewFileValidator(logger, cfg.Upload.AllowedExtensions),
		workbook:    exporter.NewWorkbookWriter(logger),
		csv:         exporter.NewCSVWriter(paths),
		paths:       paths,
		tracer:      telemetry.Tracer,
		metrics:     metrics,
		logger:      logger,
	}, nil
}

// DefaultParams returns the configured run parameters; zero means unset
func (s *AnalysisService) DefaultParams() domain.AnalysisParams {
	return s.defaults
}

// ParseParams reads the four parameters through get, falling back to the
// configured defaults for blank values
func (s *AnalysisService) ParseParams(get func(key string) string) (domain.AnalysisParams, error) {
	return s.params.ParseParams(get, s.defaults)
}

// ValidateInput checks that path names a readable file of a supported type
func (s *AnalysisService) ValidateInput(path string) error {
	return s.files.ValidateInputFile(path)
}

// Analyze validates, loads and analyses one input table. Parameter and name
// errors are reported before the input is read.
func (s *AnalysisService) Analyze(ctx context.Context, req AnalyzeRequest) (report *Report, err error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	start := time.Now()
	runID := uuid.New().String()
	source := req.Source
	if source == "" {
		source = SourceCLI
	}

	ctx, span := s.tracer.Start(ctx, "analysis.run", trace.WithAttributes(
		attribute.String("run_id", runID),
		attribute.String("source", source),
		attribute.String("input", req.Name),
	))
	defer func() {
		s.metrics.RecordRun(ctx, source, time.Since(start), err)
		endSpan(span, err)
	}()

	logger := s.logger.With(slog.String("run_id", runID), slog.String("input", req.Name))

	if err := s.params.Validate(req.Params); err != nil {
		return nil, err
	}
	if err := s.files.ValidateFileName(req.Name); err != nil {
		return nil, err
	}

	loaded, err := s.load(ctx, req.Name, req.Reader)
	if err != nil {
		logger.WarnContext(ctx, "input rejected", slog.String("error", err.Error()))
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	obs := slogObserver{ctx: ctx, logger: logger}
	for _, w := range loaded.Warnings {
		obs.Warn(w)
	}

	_, pipeSpan := s.tracer.Start(ctx, "analysis.pipeline")
	result, err := analysis.Run(loaded.Rows, req.Params, analysis.WithObserver(obs))
	endSpan(pipeSpan, err)
	if err != nil {
		return nil, err
	}

	diag := analysis.Diagnostics{Warnings: loaded.Warnings}
	diag.Merge(result.Diagnostics.Warnings)
	result.Diagnostics = diag

	summary := summarize(runID, source, loaded, result)
	summary.DurationSeconds = time.Since(start).Seconds()
	s.metrics.RecordRows(ctx, summary.RetainedRows, summary.DroppedRows)
	span.SetAttributes(
		attribute.Int("rows.retained", summary.RetainedRows),
		attribute.Int("rows.paired", summary.PairedRows),
	)

	if dropped := result.Clean.Dropped() + summary.DroppedRows[string(analysis.WarnInvalidNumber)]; dropped > 0 {
		logger.WarnContext(ctx, "rows dropped",
			slog.Int("zero_volume", summary.DroppedRows[string(analysis.WarnZeroVolume)]),
			slog.Int("invalid_time", summary.DroppedRows[string(analysis.WarnInvalidTime)]),
			slog.Int("invalid_number", summary.DroppedRows[string(analysis.WarnInvalidNumber)]))
	}
	if summary.RetainedRows == 0 {
		logger.WarnContext(ctx, "no rows left after cleaning")
	}

	logger.InfoContext(ctx, "analysis completed",
		slog.Int("input_rows", summary.InputRows),
		slog.Int("retained_rows", summary.RetainedRows),
		slog.Int("paired_rows", summary.PairedRows),
		slog.Int("volume_bins", summary.VolumeBins),
		slog.Int("price_bins", summary.PriceBins),
		slog.Float64("duration_seconds", summary.DurationSeconds))

	return &Report{Summary: summary, Result: result, Encoding: loaded.Encoding}, nil
}

func (s *AnalysisService) load(ctx context.Context, name string, r io.Reader) (*dataprocessing.LoadResult, error) {
	_, span := s.tracer.Start(ctx, "analysis.load")
	loaded, err := dataprocessing.Load(name, r)
	if err != nil {
		var missing *analysis.ValidationError
		if !errors.As(err, &missing) {
			err = apperrors.NewParsingError(fmt.Sprintf("cannot read %s", name), err)
		}
		endSpan(span, err)
		return nil, err
	}
	span.SetAttributes(
		attribute.String("encoding", loaded.Encoding),
		attribute.Int("rows", loaded.DataLines),
	)
	endSpan(span, nil)
	return loaded, nil
}

func summarize(runID, source string, loaded *dataprocessing.LoadResult, result *analysis.Result) domain.RunSummary {
	invalidNumbers := 0
	for _, w := range loaded.Warnings {
		if w.Kind == analysis.WarnInvalidNumber {
			invalidNumbers++
		}
	}

	summary := domain.RunSummary{
		RunID:        runID,
		Source:       source,
		Params:       result.Params,
		InputRows:    loaded.DataLines,
		RetainedRows: result.Clean.Retained,
		DroppedRows: map[string]int{
			string(analysis.WarnInvalidNumber): invalidNumbers,
			string(analysis.WarnZeroVolume):    result.Clean.ZeroVolume,
			string(analysis.WarnInvalidTime):   result.Clean.InvalidTime,
		},
		PairedRows: result.PairedRows(),
		VolumeBins: len(result.Matrix.Rows),
		PriceBins:  len(result.Matrix.Columns),
		Warnings:   len(result.Diagnostics.Warnings),
	}
	if n := len(result.Rows); n > 0 {
		first, last := result.Rows[0].Time, result.Rows[n-1].Time
		summary.FirstDate, summary.LastDate = &first, &last
	}
	return summary
}

// WriteWorkbook renders the report as an .xlsx workbook to w
func (s *AnalysisService) WriteWorkbook(ctx context.Context, report *Report, w io.Writer) error {
	_, span := s.tracer.Start(ctx, "analysis.export.workbook")
	err := s.workbook.Write(w, report.Result)
	if err != nil {
		err = apperrors.NewStorageError("write workbook", err)
	}
	endSpan(span, err)
	return err
}

// SaveWorkbook writes the workbook to path. Relative paths land in the
// reports directory. It returns the path written.
func (s *AnalysisService) SaveWorkbook(ctx context.Context, report *Report, path string) (string, error) {
	_, span := s.tracer.Start(ctx, "analysis.export.workbook")
	full := s.paths.Resolve(path)
	if err := s.files.ValidateOutputDirectory(filepath.Dir(full)); err != nil {
		endSpan(span, err)
		return full, err
	}
	err := s.workbook.WriteFile(full, report.Result)
	if err != nil {
		err = apperrors.NewStorageError("write workbook", err).WithContext("path", full)
	}
	endSpan(span, err)
	return full, err
}

// WriteCSV writes <base>_data.csv and <base>_frequency.csv
func (s *AnalysisService) WriteCSV(ctx context.Context, report *Report, base string) (exporter.CSVFiles, error) {
	_, span := s.tracer.Start(ctx, "analysis.export.csv")
	if err := s.files.ValidateOutputDirectory(filepath.Dir(s.paths.Resolve(base))); err != nil {
		endSpan(span, err)
		return exporter.CSVFiles{}, err
	}
	files, err := s.csv.ExportResult(report.Result, base)
	if err != nil {
		err = apperrors.NewStorageError("write csv", err)
	} else {
		s.logger.InfoContext(ctx, "csv files written",
			slog.String("data", files.Data),
			slog.String("frequency", files.Frequency))
	}
	endSpan(span, err)
	return files, err
}

// Recount rebuilds the frequency table from the range label columns of an
// exported Data table. Labels that cannot be parsed sort last and are
// reported as warnings.
func (s *AnalysisService) Recount(ctx context.Context, name string, r io.Reader) (*RecountReport, error) {
	ctx, span := s.tracer.Start(ctx, "analysis.recount", trace.WithAttributes(attribute.String("input", name)))

	table, err := dataprocessing.LoadLabels(name, r)
	if err != nil {
		var missing *analysis.ValidationError
		if !errors.As(err, &missing) {
			err = apperrors.NewParsingError(fmt.Sprintf("cannot read %s", name), err)
		}
		endSpan(span, err)
		return nil, err
	}
	if len(table.Volume) == 0 {
		err := apperrors.NewDataQualityError(fmt.Sprintf("%s has no labelled rows", name)).
			WithContext("volume_column", table.VolumeColumn)
		endSpan(span, err)
		return nil, err
	}

	obs := slogObserver{ctx: ctx, logger: s.logger.With(slog.String("input", name))}
	matrix, warnings, err := analysis.AggregateText(table.Volume, table.Price, obs)
	if err != nil {
		endSpan(span, err)
		return nil, err
	}
	s.metrics.RecordLabelFallbacks(ctx, len(warnings))
	if len(warnings) > 0 {
		s.logger.WarnContext(ctx, "malformed bin labels sorted last",
			slog.String("input", name),
			slog.Int("labels", len(warnings)))
	}
	endSpan(span, nil)

	return &RecountReport{
		VolumeColumn: table.VolumeColumn,
		PriceColumn:  table.PriceColumn,
		Rows:         len(table.Volume),
		Matrix:       matrix,
		Warnings:     warnings,
	}, nil
}

// SaveRecount writes a recounted table to <base>_frequency.csv
func (s *AnalysisService) SaveRecount(ctx context.Context, rec *RecountReport, base string) (string, error) {
	path, err := s.csv.ExportMatrix(base+config.FrequencyCSVSuffix, rec.VolumeColumn, rec.Matrix)
	if err != nil {
		return "", apperrors.NewStorageError("write frequency table", err)
	}
	s.logger.InfoContext(ctx, "frequency table written", slog.String("path", path))
	return path, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
