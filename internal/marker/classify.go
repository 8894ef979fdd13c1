package marker

import "github.com/wonny/backtester/internal/contracts"

// Classification is the pass/fail outcome for one result
type Classification struct {
	PerMetric map[contracts.Metric]bool `json:"per_metric_pass"`
	Overall   bool                      `json:"overall_pass"`
}

// Classify checks every metric of src against ranges.
// A null metric is compared as 0. Bounds are inclusive.
func Classify(ranges Ranges, src contracts.MetricSource) Classification {
	c := Classification{
		PerMetric: make(map[contracts.Metric]bool, len(contracts.AllMetrics)),
		Overall:   true,
	}

	for _, m := range contracts.AllMetrics {
		value, ok := src.MetricValue(m)
		if !ok {
			value = 0
		}
		pass := ranges.Get(m).Contains(value)
		c.PerMetric[m] = pass
		c.Overall = c.Overall && pass
	}

	return c
}
