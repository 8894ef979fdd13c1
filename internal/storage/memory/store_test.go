package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/backtester/internal/contracts"
)

func TestSignalFileStore_SaveAndGet(t *testing.T) {
	store := NewSignalFileStore()
	ctx := context.Background()

	saved, err := store.Save(ctx, "signals.csv", "Date,INFY.NS\n")
	require.NoError(t, err)
	assert.Equal(t, int64(1), saved.ID)
	assert.NotZero(t, saved.CreatedAt)

	got, err := store.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved, got)

	got.Content = "mutated"
	again, err := store.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Date,INFY.NS\n", again.Content)
}

func TestSignalFileStore_GetNotFound(t *testing.T) {
	_, err := NewSignalFileStore().Get(context.Background(), 99)
	assert.True(t, errors.Is(err, contracts.ErrNotFound))
}

func TestSignalFileStore_ConcurrentSavesGetDistinctIDs(t *testing.T) {
	store := NewSignalFileStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	ids := make(chan int64, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f, err := store.Save(ctx, "f.csv", "x")
			if err == nil {
				ids <- f.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, 50)
}

func TestBacktestResultStore_SaveListAndFilter(t *testing.T) {
	store := NewBacktestResultStore()
	ctx := context.Background()

	winRate := 0.5
	first, err := store.Save(ctx, &contracts.BacktestResult{SignalFileID: 1, Filename: "a.csv", WinRate: &winRate})
	require.NoError(t, err)
	_, err = store.Save(ctx, &contracts.BacktestResult{SignalFileID: 2, Filename: "b.csv"})
	require.NoError(t, err)
	second, err := store.Save(ctx, &contracts.BacktestResult{SignalFileID: 1, Filename: "a.csv", Beta: 1})
	require.NoError(t, err)

	assert.Greater(t, second.ID, first.ID)

	all, err := store.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	forFile, err := store.GetBySignalFileID(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, forFile, 2)

	none, err := store.GetBySignalFileID(ctx, 42)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestBacktestResultStore_SaveDoesNotMutateInput(t *testing.T) {
	store := NewBacktestResultStore()
	in := &contracts.BacktestResult{SignalFileID: 1}

	out, err := store.Save(context.Background(), in)
	require.NoError(t, err)

	assert.Zero(t, in.ID)
	assert.NotZero(t, out.ID)
}
