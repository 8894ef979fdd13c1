package contracts

import "time"

// SignalFile is an uploaded CSV of trading signals
// Immutable once saved; the store assigns ID.
type SignalFile struct {
	ID        int64     `json:"id"`
	Filename  string    `json:"filename"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// BacktestResult is one computation run over a signal file
// Filename is copied from the signal file at creation time.
type BacktestResult struct {
	ID              int64     `json:"id"`
	SignalFileID    int64     `json:"signal_file_id"`
	Filename        string    `json:"filename"`
	WinRate         *float64  `json:"win_rate"`
	RiskRewardRatio *float64  `json:"risk_reward_ratio"`
	MaxLosingStreak *int      `json:"max_losing_streak"`
	SharpeRatio     *float64  `json:"sharpe_ratio"`
	StdDev          *float64  `json:"std_dev"`
	Skewness        *float64  `json:"skewness"`
	Beta            float64   `json:"beta"`
	CreatedAt       time.Time `json:"created_at"`
}

// MetricValue implements MetricSource
func (r *BacktestResult) MetricValue(m Metric) (float64, bool) {
	switch m {
	case MetricWinRate:
		return deref(r.WinRate)
	case MetricRiskRewardRatio:
		return deref(r.RiskRewardRatio)
	case MetricMaxLosingStreak:
		if r.MaxLosingStreak == nil {
			return 0, false
		}
		return float64(*r.MaxLosingStreak), true
	case MetricSharpeRatio:
		return deref(r.SharpeRatio)
	case MetricStdDev:
		return deref(r.StdDev)
	case MetricSkewness:
		return deref(r.Skewness)
	case MetricBeta:
		return r.Beta, true
	}
	return 0, false
}

// NewBacktestResult builds an unsaved result for file from computed metrics.
// A missing beta is stored as 0; the other metrics keep their nulls.
func NewBacktestResult(file *SignalFile, m *Metrics) *BacktestResult {
	beta := 0.0
	if m.Beta != nil {
		beta = *m.Beta
	}
	return &BacktestResult{
		SignalFileID:    file.ID,
		Filename:        file.Filename,
		WinRate:         m.WinRate,
		RiskRewardRatio: m.RiskRewardRatio,
		MaxLosingStreak: m.MaxLosingStreak,
		SharpeRatio:     m.SharpeRatio,
		StdDev:          m.StdDev,
		Skewness:        m.Skewness,
		Beta:            beta,
	}
}

func deref(v *float64) (float64, bool) {
	if v == nil {
		return 0, false
	}
	return *v, true
}
