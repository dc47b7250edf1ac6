package dataprocessing

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"

	"pvcli/internal/analysis"
	"pvcli/pkg/contracts/domain"
)

const (
	volumeRangePrefix = "Volume_vs_"
	priceRangePrefix  = "Price_"
	rangeMarker       = "_Range_"
)

// LabelTable holds the two bin label columns of an exported Data table.
// Blank cells are kept as empty strings.
type LabelTable struct {
	VolumeColumn string
	PriceColumn  string
	Volume       []string
	Price        []string
}

// LoadLabels reads the range label columns back from a Data table written
// as CSV or as a workbook. Workbooks are read from their "Data" sheet when
// present.
func LoadLabels(name string, r io.Reader) (*LabelTable, error) {
	var (
		rows [][]string
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".csv", ".txt":
		rows, err = readCSVRows(r)
	case ".xlsx", ".xlsm":
		rows, err = readSheetRows(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &analysis.ValidationError{Missing: []string{rangeColumnHint(volumeRangePrefix), rangeColumnHint(priceRangePrefix)}}
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}
	volIdx := slices.IndexFunc(header, isRangeColumn(volumeRangePrefix))
	priceIdx := slices.IndexFunc(header, isRangeColumn(priceRangePrefix))

	var missing []string
	if volIdx < 0 {
		missing = append(missing, rangeColumnHint(volumeRangePrefix))
	}
	if priceIdx < 0 {
		missing = append(missing, rangeColumnHint(priceRangePrefix))
	}
	if len(missing) > 0 {
		return nil, &analysis.ValidationError{Missing: missing}
	}

	table := &LabelTable{VolumeColumn: header[volIdx], PriceColumn: header[priceIdx]}
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		table.Volume = append(table.Volume, cellAt(row, volIdx))
		table.Price = append(table.Price, cellAt(row, priceIdx))
	}
	return table, nil
}

func isRangeColumn(prefix string) func(string) bool {
	return func(h string) bool {
		return strings.HasPrefix(h, prefix) && strings.Contains(h, rangeMarker)
	}
}

func rangeColumnHint(prefix string) string {
	return prefix + "*" + rangeMarker + "*"
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

func readCSVRows(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	text, _, err := decodeText(data)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(bytes.NewReader(text))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return rows, nil
}

func readSheetRows(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	sheet := sheets[0]
	if slices.Contains(sheets, domain.SheetData) {
		sheet = domain.SheetData
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}
