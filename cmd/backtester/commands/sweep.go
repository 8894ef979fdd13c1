package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/backtester/internal/materialize"
	"github.com/wonny/backtester/internal/scheduler"
	"github.com/wonny/backtester/internal/scheduler/jobs"
	"github.com/wonny/backtester/pkg/logger"
)

// sweepCmd represents the sweep command
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Remove stale materialized temp files",
	Long: `Removes materialized files older than TEMP_SWEEP_MAX_AGE from
COMPUTE_TEMP_DIR. The api command runs the same sweep on
TEMP_SWEEP_SCHEDULE.

Example:
  go run ./cmd/backtester sweep`,
	RunE: runSweep,
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New(cfg)

	job := jobs.NewTempSweepJob(cfg.TempSweepSchedule, cfg.TempSweepMaxAge, log,
		materialize.New(cfg.Compute.TempDir, "signals"),
		materialize.New(cfg.Compute.TempDir, "screener"),
	)

	sched := scheduler.New(log)
	if err := sched.AddJob(job); err != nil {
		return fmt.Errorf("register sweep: %w", err)
	}

	result, err := sched.RunNow(job.Name())
	if err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("❌ sweep failed after %d attempt(s): %s", result.Attempts, result.Error)
	}

	fmt.Printf("✅ Removed %d stale file(s) from %s in %v\n", job.LastRemoved(), cfg.Compute.TempDir, result.Duration)
	return nil
}
