package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"pvcli/internal/analysis"
	"pvcli/pkg/contracts/domain"
)

// ParamKeys are the request keys of the run parameters in checking order
var ParamKeys = []string{"x", "y", "i", "j"}

// ParamsValidator validates run parameters with struct tags
type ParamsValidator struct {
	validate *validator.Validate
}

// NewParamsValidator creates a validator reporting fields by their JSON names
func NewParamsValidator() *ParamsValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &ParamsValidator{validate: v}
}

// Validate returns a ConfigurationError for the first invalid parameter
func (pv *ParamsValidator) Validate(p domain.AnalysisParams) error {
	err := pv.validate.Struct(p)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok || len(fieldErrs) == 0 {
		return fmt.Errorf("validate parameters: %w", err)
	}

	fe := fieldErrs[0]
	return &analysis.ConfigurationError{
		Param:  fe.Field(),
		Value:  fmt.Sprint(fe.Value()),
		Reason: reason(fe),
	}
}

// ParseParams reads x, y, i and j through get. Blank values fall back to
// defaults; a zero default leaves the parameter missing, which fails
// validation.
func (pv *ParamsValidator) ParseParams(get func(key string) string, defaults domain.AnalysisParams) (domain.AnalysisParams, error) {
	p := defaults
	targets := map[string]*int{
		"x": &p.Window,
		"y": &p.Horizon,
		"i": &p.VolumeBinWidth,
		"j": &p.PriceBinWidth,
	}

	for _, key := range ParamKeys {
		raw := strings.TrimSpace(get(key))
		if raw == "" {
			continue
		}
		n, err := analysis.ParseParam(key, raw)
		if err != nil {
			return domain.AnalysisParams{}, err
		}
		*targets[key] = n
	}

	if err := pv.Validate(p); err != nil {
		return domain.AnalysisParams{}, err
	}
	return p, nil
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be an integer >= %s", fe.Param())
	}
	return fmt.Sprintf("failed %s validation", fe.Tag())
}
