package memory

import (
	"context"
	"sync"
	"time"

	"github.com/wonny/backtester/internal/contracts"
)

// BacktestResultStore is an in-memory implementation of contracts.BacktestResultStore.
type BacktestResultStore struct {
	mu     sync.RWMutex
	nextID int64
	data   map[int64]*contracts.BacktestResult
}

var _ contracts.BacktestResultStore = (*BacktestResultStore)(nil)

// NewBacktestResultStore creates a new in-memory result store.
func NewBacktestResultStore() *BacktestResultStore {
	return &BacktestResultStore{
		data: make(map[int64]*contracts.BacktestResult),
	}
}

// Save assigns ID and CreatedAt; the caller's value is not modified.
func (s *BacktestResultStore) Save(_ context.Context, result *contracts.BacktestResult) (*contracts.BacktestResult, error) {
	if result == nil {
		return nil, contracts.ValidationError("backtest result is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	stored := *result
	stored.ID = s.nextID
	stored.CreatedAt = time.Now().UTC()
	s.data[stored.ID] = &stored

	out := stored
	return &out, nil
}

// ListAll returns copies of every result in map order.
func (s *BacktestResultStore) ListAll(_ context.Context) ([]*contracts.BacktestResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]*contracts.BacktestResult, 0, len(s.data))
	for _, r := range s.data {
		rCopy := *r
		results = append(results, &rCopy)
	}
	return results, nil
}

// GetBySignalFileID returns copies of every result for the file.
func (s *BacktestResultStore) GetBySignalFileID(_ context.Context, signalFileID int64) ([]*contracts.BacktestResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := []*contracts.BacktestResult{}
	for _, r := range s.data {
		if r.SignalFileID == signalFileID {
			rCopy := *r
			results = append(results, &rCopy)
		}
	}
	return results, nil
}
