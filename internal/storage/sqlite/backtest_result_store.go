package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/wonny/backtester/internal/contracts"
)

const resultColumns = `id, signal_file_id, filename, win_rate, risk_reward_ratio, max_losing_streak,
	sharpe_ratio, std_dev, skewness, beta, created_at`

// BacktestResultStore implements contracts.BacktestResultStore on SQLite
type BacktestResultStore struct {
	db  *DB
	now func() time.Time
}

var _ contracts.BacktestResultStore = (*BacktestResultStore)(nil)

// NewBacktestResultStore creates a new backtest result store
func NewBacktestResultStore(db *DB) *BacktestResultStore {
	return &BacktestResultStore{db: db, now: time.Now}
}

// Save inserts one result row
func (s *BacktestResultStore) Save(ctx context.Context, r *contracts.BacktestResult) (*contracts.BacktestResult, error) {
	if r == nil {
		return nil, contracts.ValidationError("backtest result is required")
	}

	createdAt := s.now().UTC().Truncate(time.Millisecond)

	var streak sql.NullInt64
	if r.MaxLosingStreak != nil {
		streak = sql.NullInt64{Int64: int64(*r.MaxLosingStreak), Valid: true}
	}

	res, err := s.db.SQL.ExecContext(ctx, `
		INSERT INTO backtest_results (
			signal_file_id, filename, win_rate, risk_reward_ratio, max_losing_streak,
			sharpe_ratio, std_dev, skewness, beta, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.SignalFileID, r.Filename,
		nullFloat(r.WinRate), nullFloat(r.RiskRewardRatio), streak,
		nullFloat(r.SharpeRatio), nullFloat(r.StdDev), nullFloat(r.Skewness),
		r.Beta, createdAt.UnixMilli(),
	)
	if err != nil {
		return nil, contracts.StorageError("failed to save backtest result", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, contracts.StorageError("failed to read backtest result id", err)
	}

	saved := *r
	saved.ID = id
	saved.CreatedAt = createdAt
	return &saved, nil
}

// ListAll returns every result; no order is promised
func (s *BacktestResultStore) ListAll(ctx context.Context) ([]*contracts.BacktestResult, error) {
	return s.query(ctx, `SELECT `+resultColumns+` FROM backtest_results`)
}

// GetBySignalFileID returns results for one signal file
func (s *BacktestResultStore) GetBySignalFileID(ctx context.Context, signalFileID int64) ([]*contracts.BacktestResult, error) {
	return s.query(ctx, `SELECT `+resultColumns+` FROM backtest_results WHERE signal_file_id = ?`, signalFileID)
}

func (s *BacktestResultStore) query(ctx context.Context, query string, args ...interface{}) ([]*contracts.BacktestResult, error) {
	rows, err := s.db.SQL.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, contracts.StorageError("failed to query backtest results", err)
	}
	defer rows.Close()

	results := []*contracts.BacktestResult{}
	for rows.Next() {
		var (
			r                               contracts.BacktestResult
			winRate, rrr, sharpe, std, skew sql.NullFloat64
			streak                          sql.NullInt64
			createdAt                       int64
		)
		if err := rows.Scan(
			&r.ID, &r.SignalFileID, &r.Filename, &winRate, &rrr, &streak,
			&sharpe, &std, &skew, &r.Beta, &createdAt,
		); err != nil {
			return nil, contracts.StorageError("failed to scan backtest result", err)
		}

		r.WinRate = floatPtr(winRate)
		r.RiskRewardRatio = floatPtr(rrr)
		r.SharpeRatio = floatPtr(sharpe)
		r.StdDev = floatPtr(std)
		r.Skewness = floatPtr(skew)
		if streak.Valid {
			v := int(streak.Int64)
			r.MaxLosingStreak = &v
		}
		r.CreatedAt = time.UnixMilli(createdAt).UTC()
		results = append(results, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, contracts.StorageError("failed to read backtest results", err)
	}
	return results, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
