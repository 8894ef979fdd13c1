// Package compute adapts the external analysis scripts into typed results.
package compute

import (
	"context"
	"encoding/json"

	"github.com/wonny/backtester/internal/contracts"
	"github.com/wonny/backtester/pkg/config"
)

// Scripts holds resolved script paths
type Scripts struct {
	Backtest        string
	CompanyMetrics  string
	Analyze         string
	GenerateSignals string
}

// ScriptsFromConfig resolves every script against ScriptsDir
func ScriptsFromConfig(cfg config.ComputeConfig) Scripts {
	return Scripts{
		Backtest:        cfg.ScriptPath(cfg.BacktestScript),
		CompanyMetrics:  cfg.ScriptPath(cfg.CompanyMetricsScript),
		Analyze:         cfg.ScriptPath(cfg.AnalyzeScript),
		GenerateSignals: cfg.ScriptPath(cfg.GenerateSignalsScript),
	}
}

// Adapter implements contracts.MetricsComputer and the screener computations
type Adapter struct {
	runner  *Runner
	scripts Scripts
}

var _ contracts.MetricsComputer = (*Adapter)(nil)

// NewAdapter creates an Adapter
func NewAdapter(runner *Runner, scripts Scripts) *Adapter {
	return &Adapter{runner: runner, scripts: scripts}
}

// Backtest computes aggregate metrics for the signal file at path
func (a *Adapter) Backtest(ctx context.Context, path string) (*contracts.Metrics, error) {
	doc, err := a.runner.Run(ctx, a.scripts.Backtest, path)
	if err != nil {
		return nil, err
	}
	m, err := decodeMetrics(doc.Fields)
	if err != nil {
		return nil, contracts.MalformedOutputError("backtest output does not match the metrics schema", string(doc.Raw), err)
	}
	return m, nil
}

// CompanyMetrics computes per-ticker metrics for the signal file at path
func (a *Adapter) CompanyMetrics(ctx context.Context, path string) (contracts.SymbolMetrics, error) {
	doc, err := a.runner.Run(ctx, a.scripts.CompanyMetrics, path)
	if err != nil {
		return nil, err
	}
	m, err := decodeSymbolMetrics(doc.Fields)
	if err != nil {
		return nil, contracts.MalformedOutputError("company metrics output does not match the metrics schema", string(doc.Raw), err)
	}
	return m, nil
}

// AnalyzeStock runs the single-stock analysis; its object is returned as-is
func (a *Adapter) AnalyzeStock(ctx context.Context, symbol, period string) (json.RawMessage, error) {
	doc, err := a.runner.Run(ctx, a.scripts.Analyze, symbol, period)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(doc.Raw), nil
}

// GenerateSignals combines an entry and an exit screener file
func (a *Adapter) GenerateSignals(ctx context.Context, entryPath, exitPath string) (*contracts.SignalSet, error) {
	doc, err := a.runner.Run(ctx, a.scripts.GenerateSignals, entryPath, exitPath)
	if err != nil {
		return nil, err
	}
	set, err := decodeSignalSet(doc.Fields)
	if err != nil {
		return nil, contracts.MalformedOutputError("signal generation output does not match the expected schema", string(doc.Raw), err)
	}
	return set, nil
}
