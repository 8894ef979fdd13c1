// Package rangeconfig loads classification band defaults and named presets from YAML.
package rangeconfig

import (
	"math"
	"sort"

	"github.com/wonny/backtester/internal/contracts"
	"github.com/wonny/backtester/internal/marker"
)

// Config is the range file
//
//	defaults:
//	  beta: {min: 0, max: 1.5}
//	presets:
//	  conservative:
//	    sharpe_ratio: {min: 1}
//	    max_losing_streak: {max: 5}
type Config struct {
	Defaults map[string]Band            `yaml:"defaults"`
	Presets  map[string]map[string]Band `yaml:"presets"`
}

// Band is one metric's bounds. An omitted side is unbounded.
type Band struct {
	Min *float64 `yaml:"min,omitempty"`
	Max *float64 `yaml:"max,omitempty"`
}

func (b Band) toRange() marker.Range {
	r := marker.Unbounded()
	if b.Min != nil {
		r.Min = *b.Min
	}
	if b.Max != nil {
		r.Max = *b.Max
	}
	return r
}

// DefaultRanges returns the built-in bands overridden by the file's defaults
func (c *Config) DefaultRanges() marker.Ranges {
	ranges := marker.DefaultRanges()
	if c == nil {
		return ranges
	}
	for name, band := range c.Defaults {
		ranges[contracts.Metric(name)] = band.toRange()
	}
	return ranges
}

// Preset returns only the bands a preset names
func (c *Config) Preset(name string) (marker.Ranges, bool) {
	if c == nil {
		return nil, false
	}
	bands, ok := c.Presets[name]
	if !ok {
		return nil, false
	}

	ranges := make(marker.Ranges, len(bands))
	for metric, band := range bands {
		ranges[contracts.Metric(metric)] = band.toRange()
	}
	return ranges, true
}

// PresetNames lists presets in sorted order
func (c *Config) PresetNames() []string {
	if c == nil {
		return []string{}
	}
	names := make([]string, 0, len(c.Presets))
	for name := range c.Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func isNumber(v *float64) bool {
	return v == nil || !math.IsNaN(*v)
}
