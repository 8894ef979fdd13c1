package marker

import (
	"encoding/json"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/backtester/internal/contracts"
)

func ptr[T any](v T) *T {
	return &v
}

func sampleResult() *contracts.BacktestResult {
	return &contracts.BacktestResult{
		WinRate:         ptr(0.55),
		RiskRewardRatio: ptr(2.1),
		MaxLosingStreak: ptr(4),
		SharpeRatio:     ptr(1.2),
		StdDev:          ptr(0.3),
		Skewness:        ptr(-0.1),
		Beta:            1.0,
	}
}

func TestClassify_DefaultRangesPass(t *testing.T) {
	c := Classify(DefaultRanges(), sampleResult())

	assert.True(t, c.Overall)
	assert.Len(t, c.PerMetric, len(contracts.AllMetrics))
	for m, pass := range c.PerMetric {
		assert.True(t, pass, "metric %s", m)
	}
}

func TestClassify_BetaOutOfRangeFailsOverall(t *testing.T) {
	r := sampleResult()
	r.Beta = 2.5

	c := Classify(DefaultRanges(), r)

	assert.False(t, c.PerMetric[contracts.MetricBeta])
	assert.False(t, c.Overall)
	assert.True(t, c.PerMetric[contracts.MetricWinRate])
}

func TestClassify_BoundsAreInclusive(t *testing.T) {
	r := sampleResult()
	r.WinRate = ptr(1.0)
	r.Beta = 0

	c := Classify(DefaultRanges(), r)

	assert.True(t, c.PerMetric[contracts.MetricWinRate])
	assert.True(t, c.PerMetric[contracts.MetricBeta])
	assert.True(t, c.Overall)
}

func TestClassify_NullComparedAsZero(t *testing.T) {
	ranges := DefaultRanges()
	ranges[contracts.MetricWinRate] = Range{Min: 0.1, Max: 1}

	r := sampleResult()
	r.WinRate = nil

	c := Classify(ranges, r)
	assert.False(t, c.PerMetric[contracts.MetricWinRate])

	// the same band accepts a null sharpe ratio because 0 lies inside it
	r.SharpeRatio = nil
	assert.True(t, Classify(ranges, r).PerMetric[contracts.MetricSharpeRatio])
}

func TestClassify_Idempotent(t *testing.T) {
	ranges := DefaultRanges()
	r := sampleResult()

	assert.Equal(t, Classify(ranges, r), Classify(ranges, r))
}

func TestClassify_PerMetricMatchesBand(t *testing.T) {
	values := []float64{-3, -0.5, 0, 0.5, 1, 2, 2.0001, 10}
	ranges := DefaultRanges()

	for _, v := range values {
		m := &contracts.Metrics{
			WinRate:         ptr(v),
			RiskRewardRatio: ptr(v),
			SharpeRatio:     ptr(v),
			StdDev:          ptr(v),
			Skewness:        ptr(v),
			Beta:            ptr(v),
		}
		c := Classify(ranges, m)

		overall := true
		for _, metric := range contracts.AllMetrics {
			value, ok := m.MetricValue(metric)
			if !ok {
				value = 0
			}
			band := ranges[metric]
			want := band.Min <= value && value <= band.Max
			assert.Equal(t, want, c.PerMetric[metric], "metric %s value %v", metric, v)
			overall = overall && want
		}
		assert.Equal(t, overall, c.Overall)
	}
}

func TestDefaultRanges(t *testing.T) {
	ranges := DefaultRanges()

	assert.Equal(t, Range{Min: 0, Max: 1}, ranges[contracts.MetricWinRate])
	assert.Equal(t, Range{Min: 0, Max: 2}, ranges[contracts.MetricBeta])
	assert.Equal(t, 0.0, ranges[contracts.MetricMaxLosingStreak].Min)
	assert.Equal(t, 0.0, ranges[contracts.MetricStdDev].Min)
	assert.True(t, math.IsInf(ranges[contracts.MetricSharpeRatio].Min, -1))
	assert.True(t, math.IsInf(ranges[contracts.MetricSkewness].Max, 1))
}

func TestRangeSet_SetRangeTakesEffectImmediately(t *testing.T) {
	set := NewRangeSet()
	r := sampleResult()
	require.True(t, set.Classify(r).Overall)

	_, err := set.SetRange("sharpe_ratio", "min", ptr(1.5))
	require.NoError(t, err)

	c := set.Classify(r)
	assert.False(t, c.PerMetric[contracts.MetricSharpeRatio])
	assert.False(t, c.Overall)

	ranges, err := set.SetRange("sharpe_ratio", "min", nil)
	require.NoError(t, err)
	assert.True(t, math.IsInf(ranges[contracts.MetricSharpeRatio].Min, -1))
	assert.True(t, set.Classify(r).Overall)
}

func TestRangeSet_MinAboveMaxAcceptedButNothingPasses(t *testing.T) {
	set := NewRangeSet()

	_, err := set.SetRange("skewness", "min", ptr(5.0))
	require.NoError(t, err)
	_, err = set.SetRange("skewness", "max", ptr(-5.0))
	require.NoError(t, err)

	assert.False(t, set.Classify(sampleResult()).PerMetric[contracts.MetricSkewness])
}

func TestRangeSet_RejectsUnknownNames(t *testing.T) {
	set := NewRangeSet()

	_, err := set.SetRange("alpha", "min", ptr(1.0))
	assert.True(t, errors.Is(err, contracts.ErrValidation))

	_, err = set.SetRange("beta", "mid", ptr(1.0))
	assert.True(t, errors.Is(err, contracts.ErrValidation))

	_, err = set.SetRange("beta", "min", ptr(math.NaN()))
	assert.True(t, errors.Is(err, contracts.ErrValidation))
}

func TestRangeSet_Reset(t *testing.T) {
	set := NewRangeSet()
	_, err := set.SetRange("beta", "max", ptr(3.0))
	require.NoError(t, err)

	ranges := set.Reset()

	assert.Equal(t, DefaultRanges(), ranges)
	assert.Equal(t, DefaultRanges(), set.Snapshot())
}

func TestRangeSet_SnapshotIsCopy(t *testing.T) {
	set := NewRangeSet()
	snap := set.Snapshot()
	snap[contracts.MetricBeta] = Range{Min: 100, Max: 200}

	assert.Equal(t, Range{Min: 0, Max: 2}, set.Snapshot()[contracts.MetricBeta])
}

func TestRangeSet_ConcurrentAccess(t *testing.T) {
	set := NewRangeSet()
	r := sampleResult()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, _ = set.SetRange("beta", "max", ptr(float64(i)))
		}(i)
		go func() {
			defer wg.Done()
			_ = set.Classify(r)
		}()
	}
	wg.Wait()
}

func TestRange_JSON(t *testing.T) {
	data, err := json.Marshal(Range{Min: 0, Max: math.Inf(1)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"min":0,"max":null}`, string(data))

	var r Range
	require.NoError(t, json.Unmarshal([]byte(`{"min":null,"max":2}`), &r))
	assert.True(t, math.IsInf(r.Min, -1))
	assert.Equal(t, 2.0, r.Max)

	all, err := json.Marshal(DefaultRanges())
	require.NoError(t, err)
	assert.Contains(t, string(all), `"beta":{"min":0,"max":2}`)
}

func TestSessions_IsolatedAndDefaulted(t *testing.T) {
	sessions := NewSessions(time.Hour)

	a := sessions.Get("a")
	_, err := a.SetRange("beta", "max", ptr(0.5))
	require.NoError(t, err)

	assert.Same(t, a, sessions.Get("a"))
	assert.Equal(t, DefaultRanges(), sessions.Get("b").Snapshot())
	assert.Same(t, sessions.Get(""), sessions.Get(DefaultSession))
	assert.Equal(t, 3, sessions.Count())
}

func TestSessions_Expire(t *testing.T) {
	sessions := NewSessions(20 * time.Millisecond)

	a := sessions.Get("a")
	_, err := a.SetRange("beta", "max", ptr(0.5))
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)

	fresh := sessions.Get("a")
	assert.NotSame(t, a, fresh)
	assert.Equal(t, DefaultRanges(), fresh.Snapshot())
}

func TestRangeSet_CustomDefaultsAndApply(t *testing.T) {
	set := NewRangeSetFrom(Ranges{contracts.MetricSharpeRatio: {Min: 1, Max: math.Inf(1)}})

	snap := set.Snapshot()
	assert.Equal(t, 1.0, snap[contracts.MetricSharpeRatio].Min)
	assert.Equal(t, Range{Min: 0, Max: 2}, snap[contracts.MetricBeta])

	applied := set.Apply(Ranges{contracts.MetricBeta: {Min: -1, Max: 1}})
	assert.Equal(t, Range{Min: -1, Max: 1}, applied[contracts.MetricBeta])
	assert.Equal(t, 1.0, applied[contracts.MetricSharpeRatio].Min)

	reset := set.Reset()
	assert.Equal(t, Range{Min: 0, Max: 2}, reset[contracts.MetricBeta])
	assert.Equal(t, 1.0, reset[contracts.MetricSharpeRatio].Min)
}

func TestSessions_WithDefaults(t *testing.T) {
	defaults := DefaultRanges()
	defaults[contracts.MetricBeta] = Range{Min: 0, Max: 1}
	sessions := NewSessionsWithDefaults(time.Hour, defaults)

	assert.Equal(t, Range{Min: 0, Max: 1}, sessions.Get("x").Snapshot()[contracts.MetricBeta])
	assert.Equal(t, defaults, sessions.Defaults())
}
