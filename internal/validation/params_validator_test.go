package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pvcli/internal/analysis"
	"pvcli/pkg/contracts/domain"
)

func TestParamsValidator_Validate(t *testing.T) {
	v := NewParamsValidator()

	tests := []struct {
		name      string
		params    domain.AnalysisParams
		wantParam string
		wantValue string
	}{
		{name: "valid", params: domain.AnalysisParams{Window: 2, Horizon: 1, VolumeBinWidth: 10, PriceBinWidth: 5}},
		{name: "missing window", params: domain.AnalysisParams{Horizon: 1, VolumeBinWidth: 10, PriceBinWidth: 5}, wantParam: "x", wantValue: "0"},
		{name: "negative horizon", params: domain.AnalysisParams{Window: 2, Horizon: -3, VolumeBinWidth: 10, PriceBinWidth: 5}, wantParam: "y", wantValue: "-3"},
		{name: "first of several", params: domain.AnalysisParams{Window: 2, Horizon: 1, VolumeBinWidth: 0, PriceBinWidth: 0}, wantParam: "i", wantValue: "0"},
		{name: "price width", params: domain.AnalysisParams{Window: 2, Horizon: 1, VolumeBinWidth: 1, PriceBinWidth: -1}, wantParam: "j", wantValue: "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.params)
			if tt.wantParam == "" {
				assert.NoError(t, err)
				return
			}
			var cfgErr *analysis.ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.wantParam, cfgErr.Param)
			assert.Equal(t, tt.wantValue, cfgErr.Value)
			assert.ErrorIs(t, err, analysis.ErrConfiguration)
		})
	}
}

func TestParamsValidator_ParseParams(t *testing.T) {
	v := NewParamsValidator()
	defaults := domain.AnalysisParams{Window: 20, Horizon: 5}

	tests := []struct {
		name      string
		form      map[string]string
		want      domain.AnalysisParams
		wantParam string
	}{
		{
			name: "all given",
			form: map[string]string{"x": "2", "y": "1", "i": "10", "j": "5"},
			want: domain.AnalysisParams{Window: 2, Horizon: 1, VolumeBinWidth: 10, PriceBinWidth: 5},
		},
		{
			name: "defaults fill blanks",
			form: map[string]string{"i": " 10 ", "j": "5"},
			want: domain.AnalysisParams{Window: 20, Horizon: 5, VolumeBinWidth: 10, PriceBinWidth: 5},
		},
		{name: "missing without default", form: map[string]string{"x": "2"}, wantParam: "i"},
		{name: "not an integer", form: map[string]string{"x": "2.5", "i": "1", "j": "1"}, wantParam: "x"},
		{name: "zero", form: map[string]string{"y": "0", "i": "1", "j": "1"}, wantParam: "y"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.ParseParams(func(k string) string { return tt.form[k] }, defaults)
			if tt.wantParam == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
				return
			}
			var cfgErr *analysis.ConfigurationError
			require.True(t, errors.As(err, &cfgErr), "got %v", err)
			assert.Equal(t, tt.wantParam, cfgErr.Param)
		})
	}
}
