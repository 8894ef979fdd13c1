package contracts

// Metric names a performance statistic produced by the computation
type Metric string

const (
	MetricWinRate         Metric = "win_rate"
	MetricRiskRewardRatio Metric = "risk_reward_ratio"
	MetricMaxLosingStreak Metric = "max_losing_streak"
	MetricSharpeRatio     Metric = "sharpe_ratio"
	MetricStdDev          Metric = "std_dev"
	MetricSkewness        Metric = "skewness"
	MetricBeta            Metric = "beta"
)

// AllMetrics lists the fixed metric set in display order
var AllMetrics = []Metric{
	MetricWinRate,
	MetricRiskRewardRatio,
	MetricMaxLosingStreak,
	MetricSharpeRatio,
	MetricStdDev,
	MetricSkewness,
	MetricBeta,
}

// ParseMetric validates a metric name
func ParseMetric(s string) (Metric, bool) {
	for _, m := range AllMetrics {
		if string(m) == s {
			return m, true
		}
	}
	return "", false
}

// MetricSource exposes metric values for classification.
// ok is false when the value is null.
type MetricSource interface {
	MetricValue(m Metric) (value float64, ok bool)
}

// Metrics is the decoded output of one metrics computation.
// nil pointers are metrics the computation reported as null.
type Metrics struct {
	WinRate         *float64 `json:"win_rate"`
	RiskRewardRatio *float64 `json:"risk_reward_ratio"`
	MaxLosingStreak *int     `json:"max_losing_streak"`
	SharpeRatio     *float64 `json:"sharpe_ratio"`
	StdDev          *float64 `json:"std_dev"`
	Skewness        *float64 `json:"skewness"`
	Beta            *float64 `json:"beta"`
}

// MetricValue implements MetricSource
func (m *Metrics) MetricValue(metric Metric) (float64, bool) {
	switch metric {
	case MetricWinRate:
		return deref(m.WinRate)
	case MetricRiskRewardRatio:
		return deref(m.RiskRewardRatio)
	case MetricMaxLosingStreak:
		if m.MaxLosingStreak == nil {
			return 0, false
		}
		return float64(*m.MaxLosingStreak), true
	case MetricSharpeRatio:
		return deref(m.SharpeRatio)
	case MetricStdDev:
		return deref(m.StdDev)
	case MetricSkewness:
		return deref(m.Skewness)
	case MetricBeta:
		return deref(m.Beta)
	}
	return 0, false
}

// SymbolMetrics maps ticker -> metrics for a multi-symbol signal file
type SymbolMetrics map[string]Metrics
