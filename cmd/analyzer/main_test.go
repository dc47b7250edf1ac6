package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"pvcli/internal/analysis"
	"pvcli/internal/config"
	apperrors "pvcli/internal/errors"
	"pvcli/internal/shared/testutil"
	"pvcli/pkg/contracts/domain"
)

type cliEnv struct {
	dir     string
	config  string
	input   string
	reports string
}

func newCLIEnv(t *testing.T) cliEnv {
	t.Helper()
	dir := t.TempDir()
	cfg := fmt.Sprintf("paths:\n  base_dir: %q\nlogging:\n  level: error\ntelemetry:\n  enabled: false\n", dir)
	return cliEnv{
		dir:     dir,
		config:  testutil.WriteFile(t, "config.yaml", []byte(cfg)),
		input:   testutil.WriteFile(t, "prices.csv", testutil.PriceVolumeCSV(testutil.ScenarioRows...)),
		reports: filepath.Join(dir, config.DefaultReportsDir),
	}
}

func (e cliEnv) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	args = append([]string{"-config", e.config}, args...)
	err := run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return stdout.String(), err
}

func TestRun_Workbook(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "", "-in", env.input, "-x", "2", "-y", "1", "-i", "10", "-j", "5")
	require.NoError(t, err)

	path := filepath.Join(env.reports, config.WorkbookFileName)
	assert.Contains(t, out, "Process complete. Excel file saved to: "+path)
	assert.Contains(t, out, "Rows: 4 read, 4 retained, 0 dropped")
	assert.NotContains(t, out, "Enter number")

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{domain.SheetData, domain.SheetFrequencyTable}, f.GetSheetList())
}

func TestRun_PromptsForMissingParameters(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "2\n 1 \n", "-in", env.input, "-i", "10", "-j", "5", "-out", "prompted.xlsx")
	require.NoError(t, err)

	assert.Contains(t, out, "Enter number of previous days for volume average (x): ")
	assert.Contains(t, out, "Enter number of forward days for price return (y): ")
	assert.NotContains(t, out, "(i): ")
	assert.FileExists(t, filepath.Join(env.reports, "prompted.xlsx"))
}

func TestRun_BadPromptAnswers(t *testing.T) {
	env := newCLIEnv(t)

	tests := []struct {
		name  string
		stdin string
		param string
	}{
		{name: "not an integer", stdin: "two\n", param: "x"},
		{name: "zero", stdin: "0\n", param: "x"},
		{name: "input ends", stdin: "3\n", param: "y"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.run(t, tt.stdin, "-in", env.input, "-i", "10", "-j", "5")
			var cfgErr *analysis.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.param, cfgErr.Param)
			assert.ErrorIs(t, err, analysis.ErrConfiguration)
		})
	}
}

func TestRun_CSVAndRecount(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "", "-in", env.input, "-format", "csv", "-out", "tanla", "-x", "2", "-y", "1", "-i", "10", "-j", "5")
	require.NoError(t, err)

	dataPath := filepath.Join(env.reports, "tanla"+config.DataCSVSuffix)
	assert.Contains(t, out, "CSV files saved to: "+dataPath)
	assert.FileExists(t, dataPath)
	assert.FileExists(t, filepath.Join(env.reports, "tanla"+config.FrequencyCSVSuffix))

	out, err = env.run(t, "", "-recount", dataPath)
	require.NoError(t, err)

	recounted := filepath.Join(env.reports, "tanla_recount"+config.FrequencyCSVSuffix)
	assert.Contains(t, out, "Frequency table rebuilt from")
	assert.Contains(t, out, recounted)

	original, err := os.ReadFile(filepath.Join(env.reports, "tanla"+config.FrequencyCSVSuffix))
	require.NoError(t, err)
	rebuilt, err := os.ReadFile(recounted)
	require.NoError(t, err)
	assert.Equal(t, string(original), string(rebuilt))
}

func TestRun_MissingColumns(t *testing.T) {
	env := newCLIEnv(t)
	input := testutil.WriteFile(t, "bad.csv", []byte("time,Price\n01/01/2024,100\n"))

	_, err := env.run(t, "", "-in", input, "-x", "2", "-y", "1", "-i", "10", "-j", "5")
	var missing *analysis.ValidationError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"Volume"}, missing.Missing)
}

func TestRun_InputFileChecks(t *testing.T) {
	env := newCLIEnv(t)

	tests := []struct {
		name    string
		args    []string
		errType apperrors.ErrorType
	}{
		{name: "missing input", args: []string{"-in", filepath.Join(env.dir, "absent.csv")}, errType: apperrors.ErrTypeNotFound},
		{name: "unsupported type", args: []string{"-in", testutil.WriteFile(t, "prices.txt", []byte("x"))}, errType: apperrors.ErrTypeValidation},
		{name: "missing recount table", args: []string{"-recount", filepath.Join(env.dir, "absent_data.csv")}, errType: apperrors.ErrTypeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.run(t, "", append(tt.args, "-x", "2", "-y", "1", "-i", "10", "-j", "5")...)
			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.errType, appErr.Type)
		})
	}
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{name: "input", args: []string{"-in", "a.csv"}},
		{name: "recount only", args: []string{"-recount", "a_data.csv"}},
		{name: "version", args: []string{"-version"}},
		{name: "no input", args: nil, wantErr: errUsage},
		{name: "bad format", args: []string{"-in", "a.csv", "-format", "pdf"}, wantErr: errUsage},
		{name: "stray argument", args: []string{"-in", "a.csv", "extra"}, wantErr: errUsage},
		{name: "non-integer parameter", args: []string{"-in", "a.csv", "-x", "two"}, wantErr: analysis.ErrConfiguration},
		{name: "fractional parameter", args: []string{"-in", "a.csv", "-x", "1.5"}, wantErr: analysis.ErrConfiguration},
		{name: "explicit zero parameter", args: []string{"-in", "a.csv", "-j", "0"}, wantErr: analysis.ErrConfiguration},
		{name: "explicit empty parameter", args: []string{"-in", "a.csv", "-y", ""}, wantErr: analysis.ErrConfiguration},
		{name: "help", args: []string{"-h"}, wantErr: flag.ErrHelp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseFlags(tt.args, &bytes.Buffer{})
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestParseFlags_Parameters(t *testing.T) {
	opts, err := parseFlags([]string{"-in", "a.csv", "-x", "20", "-j", " 2 "}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, domain.AnalysisParams{Window: 20, PriceBinWidth: 2}, opts.params)

	_, err = parseFlags([]string{"-in", "a.csv", "-x", "1.5"}, &bytes.Buffer{})
	var cfgErr *analysis.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "x", cfgErr.Param)
	assert.Equal(t, "1.5", cfgErr.Value)
	assert.False(t, errors.Is(err, errUsage))
}

func TestRun_ExplicitZeroDoesNotPrompt(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "2\n", "-in", env.input, "-x", "0", "-y", "1", "-i", "10", "-j", "5")
	assert.ErrorIs(t, err, analysis.ErrConfiguration)
	assert.NotContains(t, out, "Enter number")
}

func TestMergeParams(t *testing.T) {
	got := mergeParams(
		domain.AnalysisParams{Window: 20, PriceBinWidth: 2},
		domain.AnalysisParams{Window: 10, Horizon: 5, VolumeBinWidth: 25},
	)
	assert.Equal(t, domain.AnalysisParams{Window: 20, Horizon: 5, VolumeBinWidth: 25, PriceBinWidth: 2}, got)
}

func TestRowSummary(t *testing.T) {
	s := domain.RunSummary{
		InputRows:    7,
		RetainedRows: 4,
		DroppedRows:  map[string]int{"zero_volume": 2, "invalid_number": 1, "invalid_time": 0},
	}
	assert.Equal(t, "Rows: 7 read, 4 retained, 3 dropped (invalid_number=1, zero_volume=2)", rowSummary(s))

	s = domain.RunSummary{InputRows: 4, RetainedRows: 4}
	assert.Equal(t, "Rows: 4 read, 4 retained, 0 dropped", rowSummary(s))
}
