package jobs

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/wonny/backtester/internal/materialize"
	"github.com/wonny/backtester/pkg/logger"
)

// TempSweepJob removes materialized files a crashed or killed request left behind
type TempSweepJob struct {
	materializers []*materialize.Materializer
	maxAge        time.Duration
	schedule      string
	logger        *logger.Logger

	lastRemoved atomic.Int64
}

// NewTempSweepJob creates a new temp sweep job
func NewTempSweepJob(schedule string, maxAge time.Duration, log *logger.Logger, materializers ...*materialize.Materializer) *TempSweepJob {
	return &TempSweepJob{
		materializers: materializers,
		maxAge:        maxAge,
		schedule:      schedule,
		logger:        log,
	}
}

// Name returns the job name
func (j *TempSweepJob) Name() string {
	return "temp_sweep"
}

// Schedule returns the cron schedule
func (j *TempSweepJob) Schedule() string {
	return j.schedule
}

// Run sweeps every materializer's directory
func (j *TempSweepJob) Run(ctx context.Context) error {
	total := 0
	for _, m := range j.materializers {
		removed, err := m.Sweep(j.maxAge)
		if err != nil {
			return err
		}
		total += removed
	}

	j.lastRemoved.Store(int64(total))
	if total > 0 {
		j.logger.WithField("removed", total).Info("Temp sweep completed")
	}
	return nil
}

// LastRemoved is the file count of the most recent successful run
func (j *TempSweepJob) LastRemoved() int {
	return int(j.lastRemoved.Load())
}
