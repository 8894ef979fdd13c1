package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/wonny/backtester/internal/contracts"
	"github.com/wonny/backtester/pkg/database"
)

const resultColumns = `
	id, signal_file_id, filename, win_rate, risk_reward_ratio, max_losing_streak,
	sharpe_ratio, std_dev, skewness, beta, created_at
`

// BacktestResultStore implements contracts.BacktestResultStore for PostgreSQL
type BacktestResultStore struct {
	db *database.DB
}

var _ contracts.BacktestResultStore = (*BacktestResultStore)(nil)

// NewBacktestResultStore creates a new backtest result store
func NewBacktestResultStore(db *database.DB) *BacktestResultStore {
	return &BacktestResultStore{db: db}
}

// Save inserts one result row
func (s *BacktestResultStore) Save(ctx context.Context, r *contracts.BacktestResult) (*contracts.BacktestResult, error) {
	if r == nil {
		return nil, contracts.ValidationError("backtest result is required")
	}

	query := `
		INSERT INTO backtest_results (
			signal_file_id, filename, win_rate, risk_reward_ratio, max_losing_streak,
			sharpe_ratio, std_dev, skewness, beta
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + resultColumns

	row := s.db.Pool.QueryRow(ctx, query,
		r.SignalFileID, r.Filename, r.WinRate, r.RiskRewardRatio, r.MaxLosingStreak,
		r.SharpeRatio, r.StdDev, r.Skewness, r.Beta,
	)
	saved, err := scanResult(row)
	if err != nil {
		return nil, contracts.StorageError("failed to save backtest result", err)
	}
	return saved, nil
}

// ListAll returns every result; no order is promised
func (s *BacktestResultStore) ListAll(ctx context.Context) ([]*contracts.BacktestResult, error) {
	return s.query(ctx, `SELECT `+resultColumns+` FROM backtest_results`)
}

// GetBySignalFileID returns results for one signal file
func (s *BacktestResultStore) GetBySignalFileID(ctx context.Context, signalFileID int64) ([]*contracts.BacktestResult, error) {
	return s.query(ctx, `SELECT `+resultColumns+` FROM backtest_results WHERE signal_file_id = $1`, signalFileID)
}

func (s *BacktestResultStore) query(ctx context.Context, query string, args ...interface{}) ([]*contracts.BacktestResult, error) {
	rows, err := s.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, contracts.StorageError("failed to query backtest results", err)
	}
	defer rows.Close()

	results := []*contracts.BacktestResult{}
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, contracts.StorageError("failed to scan backtest result", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, contracts.StorageError("failed to read backtest results", err)
	}
	return results, nil
}

func scanResult(row pgx.Row) (*contracts.BacktestResult, error) {
	r := &contracts.BacktestResult{}
	err := row.Scan(
		&r.ID, &r.SignalFileID, &r.Filename, &r.WinRate, &r.RiskRewardRatio, &r.MaxLosingStreak,
		&r.SharpeRatio, &r.StdDev, &r.Skewness, &r.Beta, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return r, nil
}
