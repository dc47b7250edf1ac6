package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"pvcli/internal/analysis"
	"pvcli/internal/config"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	paths *config.Paths
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(paths *config.Paths) *CSVWriter {
	return &CSVWriter{paths: paths}
}

// CSVFiles names the files written by ExportResult
type CSVFiles struct {
	Data      string
	Frequency string
}

// ExportResult writes the Data table to <base>_data.csv and the frequency
// table to <base>_frequency.csv. Relative bases land in the reports directory.
func (w *CSVWriter) ExportResult(res *analysis.Result, base string) (CSVFiles, error) {
	files := CSVFiles{
		Data:      w.resolvePath(base + config.DataCSVSuffix),
		Frequency: w.resolvePath(base + config.FrequencyCSVSuffix),
	}

	if err := w.writeData(files.Data, res); err != nil {
		return CSVFiles{}, err
	}
	if err := w.writeFrequency(files.Frequency, res); err != nil {
		return CSVFiles{}, err
	}
	return files, nil
}

func (w *CSVWriter) writeData(path string, res *analysis.Result) error {
	sw, err := w.CreateStreamWriter(path, res.Columns.Ordered())
	if err != nil {
		return err
	}

	layout := timeLayout(res.Rows)
	for i, r := range res.Rows {
		record := []string{
			r.Time.Format(layout),
			formatFloat(r.Volume),
			formatOptional(r.VolumeAvg),
			formatOptional(r.VolumeDeviation),
			formatLabel(r.VolumeRange),
			formatFloat(r.Price),
			formatOptional(r.ForwardReturn),
			formatLabel(r.PriceRange),
		}
		if err := sw.WriteRecord(record); err != nil {
			sw.Close()
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	return sw.Close()
}

func (w *CSVWriter) writeFrequency(path string, res *analysis.Result) error {
	_, err := w.ExportMatrix(path, res.Columns.VolumeRange, res.Matrix)
	return err
}

// ExportMatrix writes a frequency table: corner names the row axis, price
// labels form the header and each row starts with its volume label. It
// returns the resolved path.
func (w *CSVWriter) ExportMatrix(filePath, corner string, m *analysis.FrequencyMatrix) (string, error) {
	header := make([]string, 0, len(m.Columns)+1)
	header = append(header, Sanitize(corner))
	for _, c := range m.Columns {
		header = append(header, Sanitize(c.Label))
	}

	sw, err := w.CreateStreamWriter(filePath, header)
	if err != nil {
		return "", err
	}
	for r, axis := range m.Rows {
		record := make([]string, 0, len(m.Columns)+1)
		record = append(record, Sanitize(axis.Label))
		for c := range m.Columns {
			record = append(record, strconv.Itoa(m.Counts[r][c]))
		}
		if err := sw.WriteRecord(record); err != nil {
			sw.Close()
			return "", fmt.Errorf("failed to write record %d: %w", r, err)
		}
	}
	return sw.path, sw.Close()
}

// StreamWriter provides streaming CSV writing for large datasets
type StreamWriter struct {
	file   *os.File
	writer *csv.Writer
	path   string
	count  int
}

// CreateStreamWriter creates the file, writes a UTF-8 BOM for Excel and
// the header row
func (w *CSVWriter) CreateStreamWriter(filePath string, headers []string) (*StreamWriter, error) {
	fullPath := w.resolvePath(filePath)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := file.Write(utf8BOM); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to write BOM: %w", err)
	}

	writer := csv.NewWriter(file)
	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write headers: %w", err)
		}
	}

	return &StreamWriter{file: file, writer: writer, path: fullPath}, nil
}

// WriteRecord writes a single record to the stream
func (s *StreamWriter) WriteRecord(record []string) error {
	s.count++
	return s.writer.Write(record)
}

// Close flushes and closes the stream writer
func (s *StreamWriter) Close() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.file.Close()
		return err
	}

	slog.Debug("CSV file written",
		slog.String("path", s.path),
		slog.Int("record_count", s.count))
	return s.file.Close()
}

// resolvePath keeps absolute paths and places relative ones under reports
func (w *CSVWriter) resolvePath(filePath string) string {
	if w.paths == nil {
		return filePath
	}
	return w.paths.Resolve(filePath)
}
