package rangeconfig

import (
	"fmt"
	"regexp"

	"github.com/wonny/backtester/internal/contracts"
)

var presetName = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// ValidationError names the offending field
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks metric names, preset names and bound values.
// min > max is allowed; such a band rejects everything.
func Validate(cfg *Config) error {
	if err := validateBands("defaults", cfg.Defaults); err != nil {
		return err
	}

	for name, bands := range cfg.Presets {
		if !presetName.MatchString(name) {
			return ValidationError{"presets." + name, "name must match " + presetName.String()}
		}
		if len(bands) == 0 {
			return ValidationError{"presets." + name, "must set at least one metric"}
		}
		if err := validateBands("presets."+name, bands); err != nil {
			return err
		}
	}

	return nil
}

func validateBands(prefix string, bands map[string]Band) error {
	for metric, band := range bands {
		field := prefix + "." + metric
		if _, ok := contracts.ParseMetric(metric); !ok {
			return ValidationError{field, "unknown metric"}
		}
		if !isNumber(band.Min) {
			return ValidationError{field + ".min", "must be a number"}
		}
		if !isNumber(band.Max) {
			return ValidationError{field + ".max", "must be a number"}
		}
	}
	return nil
}
