package compute

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/wonny/backtester/internal/contracts"
)

// requiredMetrics must be present in every metrics object; values may be null.
// beta is optional and handled by the caller.
var requiredMetrics = []contracts.Metric{
	contracts.MetricWinRate,
	contracts.MetricRiskRewardRatio,
	contracts.MetricMaxLosingStreak,
	contracts.MetricSharpeRatio,
	contracts.MetricStdDev,
	contracts.MetricSkewness,
}

// decodeMetrics validates fields against the metrics schema and fails closed
func decodeMetrics(fields map[string]json.RawMessage) (*contracts.Metrics, error) {
	for _, m := range requiredMetrics {
		if _, ok := fields[string(m)]; !ok {
			return nil, fmt.Errorf("missing required field %q", m)
		}
	}

	var (
		m   contracts.Metrics
		err error
	)
	if m.WinRate, err = decodeBounded(fields, contracts.MetricWinRate, 0, 1); err != nil {
		return nil, err
	}
	if m.RiskRewardRatio, err = decodeBounded(fields, contracts.MetricRiskRewardRatio, 0, math.Inf(1)); err != nil {
		return nil, err
	}
	if m.MaxLosingStreak, err = decodeCount(fields, contracts.MetricMaxLosingStreak); err != nil {
		return nil, err
	}
	if m.SharpeRatio, err = decodeFloat(fields, contracts.MetricSharpeRatio); err != nil {
		return nil, err
	}
	if m.StdDev, err = decodeBounded(fields, contracts.MetricStdDev, 0, math.Inf(1)); err != nil {
		return nil, err
	}
	if m.Skewness, err = decodeFloat(fields, contracts.MetricSkewness); err != nil {
		return nil, err
	}
	if m.Beta, err = decodeFloat(fields, contracts.MetricBeta); err != nil {
		return nil, err
	}

	return &m, nil
}

func decodeFloat(fields map[string]json.RawMessage, m contracts.Metric) (*float64, error) {
	raw, ok := fields[string(m)]
	if !ok || isNull(raw) {
		return nil, nil
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("field %q: expected number, got %s", m, raw)
	}
	return &v, nil
}

func decodeBounded(fields map[string]json.RawMessage, m contracts.Metric, min, max float64) (*float64, error) {
	v, err := decodeFloat(fields, m)
	if err != nil || v == nil {
		return v, err
	}
	if *v < min || *v > max {
		return nil, fmt.Errorf("field %q: %v outside [%v, %v]", m, *v, min, max)
	}
	return v, nil
}

func decodeCount(fields map[string]json.RawMessage, m contracts.Metric) (*int, error) {
	v, err := decodeBounded(fields, m, 0, math.MaxInt32)
	if err != nil || v == nil {
		return nil, err
	}
	if *v != math.Trunc(*v) {
		return nil, fmt.Errorf("field %q: expected integer, got %v", m, *v)
	}
	n := int(*v)
	return &n, nil
}

// decodeSymbolMetrics decodes {"TICKER": {metrics...}, ...}
func decodeSymbolMetrics(fields map[string]json.RawMessage) (contracts.SymbolMetrics, error) {
	out := make(contracts.SymbolMetrics, len(fields))
	for ticker, raw := range fields {
		var inner map[string]json.RawMessage
		if err := json.Unmarshal(raw, &inner); err != nil || inner == nil {
			return nil, fmt.Errorf("ticker %q: expected metrics object", ticker)
		}
		m, err := decodeMetrics(inner)
		if err != nil {
			return nil, fmt.Errorf("ticker %q: %w", ticker, err)
		}
		out[ticker] = *m
	}
	return out, nil
}

// decodeSignalSet decodes {"signals": [...]}
func decodeSignalSet(fields map[string]json.RawMessage) (*contracts.SignalSet, error) {
	raw, ok := fields["signals"]
	if !ok {
		return nil, fmt.Errorf("missing required field \"signals\"")
	}
	var set contracts.SignalSet
	if err := json.Unmarshal(raw, &set.Signals); err != nil {
		return nil, fmt.Errorf("field \"signals\": %w", err)
	}
	if set.Signals == nil {
		set.Signals = []contracts.GeneratedSignal{}
	}
	return &set, nil
}
