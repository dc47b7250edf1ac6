package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"pvcli/internal/analysis"
	"pvcli/pkg/contracts/domain"
)

// frequencyFirstRow is the first Frequency_Table row holding counts
const frequencyFirstRow = 3

// WorkbookWriter renders a result as an .xlsx workbook
type WorkbookWriter struct {
	logger *slog.Logger
}

// NewWorkbookWriter creates a workbook writer
func NewWorkbookWriter(logger *slog.Logger) *WorkbookWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookWriter{logger: logger.With(slog.String("component", "workbook_writer"))}
}

// Write renders res to w. The "Data" sheet comes first.
func (ww *WorkbookWriter) Write(w io.Writer, res *analysis.Result) error {
	f, err := ww.build(res)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// WriteFile renders res to path, creating parent directories
func (ww *WorkbookWriter) WriteFile(path string, res *analysis.Result) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create workbook file: %w", err)
	}
	if err := ww.Write(file, res); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close workbook file: %w", err)
	}

	ww.logger.Info("workbook written",
		slog.String("path", path),
		slog.Int("rows", len(res.Rows)),
		slog.Int("volume_bins", len(res.Matrix.Rows)),
		slog.Int("price_bins", len(res.Matrix.Columns)))
	return nil
}

func (ww *WorkbookWriter) build(res *analysis.Result) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(f.GetSheetName(0), domain.SheetData); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rename default sheet: %w", err)
	}
	if _, err := f.NewSheet(domain.SheetFrequencyTable); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to add sheet %s: %w", domain.SheetFrequencyTable, err)
	}

	if err := writeDataSheet(f, res); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeFrequencySheet(f, res); err != nil {
		f.Close()
		return nil, err
	}
	f.SetActiveSheet(0)
	return f, nil
}

func writeDataSheet(f *excelize.File, res *analysis.Result) error {
	layout := "yyyy-mm-dd"
	if timeLayout(res.Rows) == dateTimeLayout {
		layout = "yyyy-mm-dd hh:mm:ss"
	}
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &layout})
	if err != nil {
		return fmt.Errorf("failed to create date style: %w", err)
	}

	sw, err := f.NewStreamWriter(domain.SheetData)
	if err != nil {
		return fmt.Errorf("failed to open %s sheet: %w", domain.SheetData, err)
	}
	if err := sw.SetColWidth(1, 1, 20); err != nil {
		return err
	}

	header := res.Columns.Ordered()
	if err := sw.SetRow("A1", toCells(header)); err != nil {
		return fmt.Errorf("failed to write %s header: %w", domain.SheetData, err)
	}

	for i, r := range res.Rows {
		row := []any{
			excelize.Cell{StyleID: dateStyle, Value: excelSerial(r.Time)},
			r.Volume,
			cellValue(r.VolumeAvg),
			cellValue(r.VolumeDeviation),
			labelValue(r.VolumeRange),
			r.Price,
			cellValue(r.ForwardReturn),
			labelValue(r.PriceRange),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", domain.SheetData, i+1, err)
		}
	}
	return sw.Flush()
}

// writeFrequencySheet lays out the table the way a labelled crosstab is
// written: row 1 names the price range column and lists the price labels,
// row 2 names the volume range column, and the volume labels run down
// column A from row 3.
func writeFrequencySheet(f *excelize.File, res *analysis.Result) error {
	sw, err := f.NewStreamWriter(domain.SheetFrequencyTable)
	if err != nil {
		return fmt.Errorf("failed to open %s sheet: %w", domain.SheetFrequencyTable, err)
	}

	m := res.Matrix
	header := make([]any, 0, len(m.Columns)+1)
	header = append(header, Sanitize(res.Columns.PriceRange))
	for _, c := range m.Columns {
		header = append(header, Sanitize(c.Label))
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", domain.SheetFrequencyTable, err)
	}
	if err := sw.SetRow("A2", []any{Sanitize(res.Columns.VolumeRange)}); err != nil {
		return fmt.Errorf("failed to write %s index name: %w", domain.SheetFrequencyTable, err)
	}

	for r, axis := range m.Rows {
		row := make([]any, 0, len(m.Columns)+1)
		row = append(row, Sanitize(axis.Label))
		for c := range m.Columns {
			row = append(row, m.Counts[r][c])
		}
		cell, _ := excelize.CoordinatesToCellName(1, r+frequencyFirstRow)
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", domain.SheetFrequencyTable, r+1, err)
		}
	}
	return sw.Flush()
}

func toCells(values []string) []any {
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
