// Package marker classifies backtest results against acceptable-range bands.
package marker

import (
	"encoding/json"
	"math"
	"sync"

	"github.com/wonny/backtester/internal/contracts"
)

// Bound selects one side of a Range
type Bound string

const (
	BoundMin Bound = "min"
	BoundMax Bound = "max"
)

// ParseBound validates a bound name
func ParseBound(s string) (Bound, bool) {
	switch Bound(s) {
	case BoundMin, BoundMax:
		return Bound(s), true
	}
	return "", false
}

// Range is an inclusive [Min, Max] band. ±Inf means unbounded.
type Range struct {
	Min float64
	Max float64
}

// Unbounded returns (-Inf, +Inf)
func Unbounded() Range {
	return Range{Min: math.Inf(-1), Max: math.Inf(1)}
}

// Contains reports min <= v <= max
func (r Range) Contains(v float64) bool {
	return r.Min <= v && v <= r.Max
}

type rangeJSON struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

// MarshalJSON encodes infinite bounds as null
func (r Range) MarshalJSON() ([]byte, error) {
	return json.Marshal(rangeJSON{Min: finite(r.Min), Max: finite(r.Max)})
}

// UnmarshalJSON decodes null bounds as unbounded
func (r *Range) UnmarshalJSON(data []byte) error {
	var raw rangeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Unbounded()
	if raw.Min != nil {
		r.Min = *raw.Min
	}
	if raw.Max != nil {
		r.Max = *raw.Max
	}
	return nil
}

func finite(v float64) *float64 {
	if math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Ranges maps every metric to its band
type Ranges map[contracts.Metric]Range

// DefaultRanges returns the documented starting bands
func DefaultRanges() Ranges {
	inf := math.Inf(1)
	ranges := make(Ranges, len(contracts.AllMetrics))
	for _, m := range contracts.AllMetrics {
		ranges[m] = Unbounded()
	}
	ranges[contracts.MetricWinRate] = Range{Min: 0, Max: 1}
	ranges[contracts.MetricMaxLosingStreak] = Range{Min: 0, Max: inf}
	ranges[contracts.MetricStdDev] = Range{Min: 0, Max: inf}
	ranges[contracts.MetricBeta] = Range{Min: 0, Max: 2}
	return ranges
}

// Get returns the band for m; a missing entry is unbounded
func (r Ranges) Get(m contracts.Metric) Range {
	if band, ok := r[m]; ok {
		return band
	}
	return Unbounded()
}

// Clone returns an independent copy
func (r Ranges) Clone() Ranges {
	out := make(Ranges, len(r))
	for m, band := range r {
		out[m] = band
	}
	return out
}

// RangeSet is one live-editable set of bands, safe for concurrent use
type RangeSet struct {
	mu       sync.RWMutex
	ranges   Ranges
	defaults Ranges
}

// NewRangeSet starts from DefaultRanges
func NewRangeSet() *RangeSet {
	return NewRangeSetFrom(DefaultRanges())
}

// NewRangeSetFrom starts from defaults; Reset returns to them
func NewRangeSetFrom(defaults Ranges) *RangeSet {
	base := DefaultRanges()
	for m, band := range defaults {
		base[m] = band
	}
	return &RangeSet{ranges: base.Clone(), defaults: base}
}

// SetRange changes one side of one band. A nil value makes that side unbounded.
// min > max is accepted; nothing passes such a band.
func (s *RangeSet) SetRange(metric, bound string, value *float64) (Ranges, error) {
	m, ok := contracts.ParseMetric(metric)
	if !ok {
		return nil, contracts.ValidationError("unknown metric %q", metric)
	}
	b, ok := ParseBound(bound)
	if !ok {
		return nil, contracts.ValidationError("unknown bound %q, expected min or max", bound)
	}
	if value != nil && math.IsNaN(*value) {
		return nil, contracts.ValidationError("%s %s must be a number", metric, bound)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	band := s.ranges.Get(m)
	switch b {
	case BoundMin:
		band.Min = math.Inf(-1)
		if value != nil {
			band.Min = *value
		}
	case BoundMax:
		band.Max = math.Inf(1)
		if value != nil {
			band.Max = *value
		}
	}
	s.ranges[m] = band

	return s.ranges.Clone(), nil
}

// Reset restores the set's defaults
func (s *RangeSet) Reset() Ranges {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ranges = s.defaults.Clone()
	return s.ranges.Clone()
}

// Apply replaces the bands named in ranges; other metrics are kept
func (s *RangeSet) Apply(ranges Ranges) Ranges {
	s.mu.Lock()
	defer s.mu.Unlock()

	for m, band := range ranges {
		s.ranges[m] = band
	}
	return s.ranges.Clone()
}

// Snapshot returns a copy of the current bands
func (s *RangeSet) Snapshot() Ranges {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.ranges.Clone()
}

// Classify evaluates src against the current bands
func (s *RangeSet) Classify(src contracts.MetricSource) Classification {
	return Classify(s.Snapshot(), src)
}
