package dataprocessing

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"pvcli/internal/analysis"
	"pvcli/pkg/contracts/domain"
)

// Source text encodings reported in LoadResult.Encoding
const (
	EncodingUTF8        = "utf-8"
	EncodingUTF16       = "utf-16"
	EncodingWindows1252 = "windows-1252"
	EncodingXLSX        = "xlsx"
)

// ErrUnsupportedFormat is returned by Load for extensions it cannot read
var ErrUnsupportedFormat = errors.New("unsupported input format")

// LoadResult holds the raw rows of an input table
type LoadResult struct {
	Header   []string
	Rows     []domain.RawObservation
	Warnings []analysis.Warning
	Encoding string
	// DataLines counts non-header lines read, including those dropped here
	DataLines int
}

// Load reads an input table, choosing the reader by file extension
func Load(name string, r io.Reader) (*LoadResult, error) {
	var (
		res *LoadResult
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".csv", ".txt":
		res, err = LoadCSV(r)
	case ".xlsx", ".xlsm":
		res, err = LoadExcel(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}

	slog.Debug("input loaded",
		slog.String("source", name),
		slog.String("encoding", res.Encoding),
		slog.Int("data_lines", res.DataLines),
		slog.Int("rows", len(res.Rows)),
		slog.Int("warnings", len(res.Warnings)))
	return res, nil
}

// LoadCSV reads a comma-separated table. A UTF-8 or UTF-16 byte order mark
// is honoured; input that is not valid UTF-8 is decoded as Windows-1252.
// Missing required columns fail before any row is read.
func LoadCSV(r io.Reader) (*LoadResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	text, encoding, err := decodeText(data)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(bytes.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, analysis.CheckColumns(nil)
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	dec, err := newRowDecoder(header)
	if err != nil {
		return nil, err
	}
	dec.result.Encoding = encoding

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		dec.decode(record)
	}
	return dec.result, nil
}

func decodeText(data []byte) ([]byte, string, error) {
	switch {
	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
		return data[3:], EncodingUTF8, nil
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}), bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
		if err != nil {
			return nil, "", fmt.Errorf("decode utf-16 input: %w", err)
		}
		return out, EncodingUTF16, nil
	case utf8.Valid(data):
		return data, EncodingUTF8, nil
	}

	out, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return nil, "", fmt.Errorf("decode windows-1252 input: %w", err)
	}
	return out, EncodingWindows1252, nil
}

// LoadExcel reads the first worksheet of an .xlsx workbook. Date cells stored
// as serial numbers are converted to ISO dates.
func LoadExcel(r io.Reader) (*LoadResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, analysis.CheckColumns(nil)
	}

	dec, err := newRowDecoder(rows[0])
	if err != nil {
		return nil, err
	}
	dec.result.Encoding = EncodingXLSX
	dec.timeCell = excelTime

	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		dec.decode(row)
	}
	return dec.result, nil
}

// maxExcelSerial is 9999-12-31, the last date Excel can represent
const maxExcelSerial = 2958465

// excelTime turns a serial date into text the cleaner understands
func excelTime(raw string) string {
	serial, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || serial <= 0 || serial > maxExcelSerial {
		return raw
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return raw
	}
	t = t.Round(time.Second)
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format(time.DateOnly)
	}
	return t.Format(time.DateTime)
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

type rowDecoder struct {
	timeIdx, priceIdx, volumeIdx int
	timeCell                     func(string) string
	result                       *LoadResult
}

func newRowDecoder(header []string) (*rowDecoder, error) {
	cleaned := make([]string, len(header))
	for i, h := range header {
		cleaned[i] = strings.TrimSpace(h)
	}
	if err := analysis.CheckColumns(cleaned); err != nil {
		return nil, err
	}

	index := func(name string) int {
		for i, h := range cleaned {
			if h == name {
				return i
			}
		}
		return -1
	}

	return &rowDecoder{
		timeIdx:   index(domain.ColumnTime),
		priceIdx:  index(domain.ColumnPrice),
		volumeIdx: index(domain.ColumnVolume),
		timeCell:  func(s string) string { return s },
		result:    &LoadResult{Header: cleaned},
	}, nil
}

func (d *rowDecoder) decode(record []string) {
	d.result.DataLines++
	line := d.result.DataLines

	cell := func(i int) string {
		if i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}

	timeText := d.timeCell(cell(d.timeIdx))
	price, priceErr := ParseNumber(cell(d.priceIdx))
	volume, volumeErr := ParseNumber(cell(d.volumeIdx))

	if priceErr != nil || volumeErr != nil {
		column, value := domain.ColumnPrice, cell(d.priceIdx)
		if priceErr == nil {
			column, value = domain.ColumnVolume, cell(d.volumeIdx)
		}
		d.result.Warnings = append(d.result.Warnings, analysis.Warning{
			Kind:    analysis.WarnInvalidNumber,
			Line:    line,
			Value:   value,
			Message: fmt.Sprintf("row dropped: %s is not a number", column),
		})
		return
	}

	d.result.Rows = append(d.result.Rows, domain.RawObservation{
		Line:   line,
		Time:   timeText,
		Price:  price,
		Volume: volume,
	})
}

// ParseNumber reads a numeric cell, tolerating thousands separators.
// Empty, NaN and infinite values are rejected.
func ParseNumber(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", s)
	}
	return v, nil
}
