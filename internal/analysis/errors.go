package analysis

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"pvcli/pkg/contracts/domain"
)

// Sentinels for errors.Is checks against the typed errors below
var (
	ErrValidation    = errors.New("input validation failed")
	ErrConfiguration = errors.New("invalid configuration")
)

// ValidationError reports required input columns that are missing
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

// Is matches ErrValidation
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ConfigurationError reports a run parameter that is not a positive integer
type ConfigurationError struct {
	Param  string
	Value  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%q: %s", e.Param, e.Value, e.Reason)
}

// Is matches ErrConfiguration
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

func nonPositive(param string, value int) *ConfigurationError {
	return &ConfigurationError{
		Param:  param,
		Value:  strconv.Itoa(value),
		Reason: "must be an integer >= 1",
	}
}

// CheckColumns verifies that header carries every required column.
// Matching is exact and case-sensitive; all missing names are reported at once.
func CheckColumns(header []string) error {
	present := make(map[string]struct{}, len(header))
	for _, h := range header {
		present[h] = struct{}{}
	}

	var missing []string
	for _, col := range domain.RequiredColumns {
		if _, ok := present[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

// ValidateParams returns a ConfigurationError for the first non-positive parameter
// in x, y, i, j order.
func ValidateParams(p domain.AnalysisParams) error {
	switch {
	case p.Window <= 0:
		return nonPositive("x", p.Window)
	case p.Horizon <= 0:
		return nonPositive("y", p.Horizon)
	case p.VolumeBinWidth <= 0:
		return nonPositive("i", p.VolumeBinWidth)
	case p.PriceBinWidth <= 0:
		return nonPositive("j", p.PriceBinWidth)
	}
	return nil
}

// ParseParam parses a textual parameter value, as typed by a user or sent in a form
func ParseParam(param, raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ConfigurationError{Param: param, Value: raw, Reason: "not an integer"}
	}
	if n <= 0 {
		return 0, nonPositive(param, n)
	}
	return n, nil
}
