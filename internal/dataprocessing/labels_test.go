package dataprocessing

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"pvcli/internal/analysis"
	"pvcli/internal/shared/testutil"
	"pvcli/pkg/contracts/domain"
)

const (
	volRange   = "Volume_vs_2_day_avg_%_Range_10"
	priceRange = "Price_1_day_forward_return_%_Range_5"
)

func TestLoadLabels_CSV(t *testing.T) {
	data := testutil.CSV(
		[]string{"time", "Volume", "Volume_2_day_avg", "Volume_vs_2_day_avg_%", volRange, "Price", "Price_1_day_forward_return_%", priceRange},
		[]string{"2024-01-01", "1000", "", "", "", "100", "5", "5 to 10"},
		[]string{"2024-01-03", "900", "1050", "-14.28", "-20 to -10", "98", "12.24", "10 to 15"},
		[]string{"2024-01-04", "1300", "1000", "30", "30 to 40", "110", "", ""},
	)

	table, err := LoadLabels("run_data.csv", bytes.NewReader(append([]byte{0xEF, 0xBB, 0xBF}, data...)))
	require.NoError(t, err)

	assert.Equal(t, volRange, table.VolumeColumn)
	assert.Equal(t, priceRange, table.PriceColumn)
	assert.Equal(t, []string{"", "-20 to -10", "30 to 40"}, table.Volume)
	assert.Equal(t, []string{"5 to 10", "10 to 15", ""}, table.Price)
}

func TestLoadLabels_MissingColumns(t *testing.T) {
	data := testutil.CSV([]string{"time", "Volume", volRange})

	_, err := LoadLabels("run_data.csv", bytes.NewReader(data))

	var vErr *analysis.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, []string{"Price_*_Range_*"}, vErr.Missing)
}

func TestLoadLabels_Workbook(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "Notes"))
	_, err := f.NewSheet(domain.SheetData)
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow(domain.SheetData, "A1", &[]any{"time", volRange, priceRange}))
	require.NoError(t, f.SetSheetRow(domain.SheetData, "A2", &[]any{"2024-01-03", "-20 to -10", "10 to 15"}))
	require.NoError(t, f.SetSheetRow(domain.SheetData, "A3", &[]any{"2024-01-04", "bogus"}))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	table, err := LoadLabels("result.xlsx", &buf)
	require.NoError(t, err)
	assert.Equal(t, []string{"-20 to -10", "bogus"}, table.Volume)
	assert.Equal(t, []string{"10 to 15", ""}, table.Price)
}

func TestLoadLabels_UnsupportedExtension(t *testing.T) {
	_, err := LoadLabels("run.json", bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
