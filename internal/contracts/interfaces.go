package contracts

import "context"

// SignalFileStore persists raw signal files
// ⭐ SSOT: signal file 저장 인터페이스
type SignalFileStore interface {
	// Save assigns an ID and persists the file. Fails with a storage error.
	Save(ctx context.Context, filename, content string) (*SignalFile, error)

	// Get returns the file or a not_found error.
	Get(ctx context.Context, id int64) (*SignalFile, error)
}

// BacktestResultStore persists computed results
// ⭐ SSOT: backtest result 저장 인터페이스
type BacktestResultStore interface {
	// Save assigns an ID and CreatedAt and returns the stored record.
	Save(ctx context.Context, result *BacktestResult) (*BacktestResult, error)

	// ListAll returns every result in no particular order.
	ListAll(ctx context.Context) ([]*BacktestResult, error)

	// GetBySignalFileID returns zero or more results for a signal file.
	GetBySignalFileID(ctx context.Context, signalFileID int64) ([]*BacktestResult, error)
}

// MetricsComputer runs the external metrics computations
type MetricsComputer interface {
	Backtest(ctx context.Context, path string) (*Metrics, error)
	CompanyMetrics(ctx context.Context, path string) (SymbolMetrics, error)
}
