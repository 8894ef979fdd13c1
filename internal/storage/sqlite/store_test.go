package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/backtester/internal/contracts"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	ctx := context.Background()
	db, err := Open(ctx, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(ctx))

	t.Cleanup(func() { _ = db.Close() })
	return db
}

func ptr[T any](v T) *T {
	return &v
}

func TestSignalFileStore_SaveAndGet(t *testing.T) {
	db := openTestDB(t)
	store := NewSignalFileStore(db)
	ctx := context.Background()

	first, err := store.Save(ctx, "a.csv", "Date,X\n")
	require.NoError(t, err)
	second, err := store.Save(ctx, "b.csv", "Date,Y\n")
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)

	got, err := store.Get(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "b.csv", got.Filename)
	assert.Equal(t, "Date,Y\n", got.Content)
	assert.True(t, second.CreatedAt.Equal(got.CreatedAt))
}

func TestSignalFileStore_GetNotFound(t *testing.T) {
	store := NewSignalFileStore(openTestDB(t))

	_, err := store.Get(context.Background(), 99)
	require.Error(t, err)
	assert.True(t, errors.Is(err, contracts.ErrNotFound))
	assert.Equal(t, "signal file 99 not found", contracts.MessageOf(err))
}

func TestBacktestResultStore_NullsSurviveRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	file, err := NewSignalFileStore(db).Save(ctx, "a.csv", "x")
	require.NoError(t, err)

	results := NewBacktestResultStore(db)
	saved, err := results.Save(ctx, &contracts.BacktestResult{
		SignalFileID:    file.ID,
		Filename:        file.Filename,
		WinRate:         ptr(0.55),
		RiskRewardRatio: nil,
		MaxLosingStreak: ptr(0),
		SharpeRatio:     ptr(1.2),
		StdDev:          nil,
		Skewness:        ptr(-0.1),
		Beta:            1.0,
	})
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)

	list, err := results.GetBySignalFileID(ctx, file.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	got := list[0]
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, 0.55, *got.WinRate)
	assert.Nil(t, got.RiskRewardRatio)
	require.NotNil(t, got.MaxLosingStreak)
	assert.Equal(t, 0, *got.MaxLosingStreak)
	assert.Nil(t, got.StdDev)
	assert.Equal(t, 1.0, got.Beta)
}

func TestBacktestResultStore_ListAllEmpty(t *testing.T) {
	results := NewBacktestResultStore(openTestDB(t))

	list, err := results.ListAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestBacktestResultStore_UnknownSignalFile(t *testing.T) {
	results := NewBacktestResultStore(openTestDB(t))

	_, err := results.Save(context.Background(), &contracts.BacktestResult{SignalFileID: 42, Filename: "x"})
	assert.True(t, errors.Is(err, contracts.ErrStorage))
}

func TestSignalFileStore_ConcurrentSavesGetDistinctIDs(t *testing.T) {
	store := NewSignalFileStore(openTestDB(t))
	ctx := context.Background()

	const n = 20
	ids := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f, err := store.Save(ctx, "c.csv", "x")
			if assert.NoError(t, err) {
				ids <- f.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[int64]bool{}
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}
