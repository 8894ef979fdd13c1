package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wonny/backtester/internal/backtest"
	"github.com/wonny/backtester/internal/contracts"
	"github.com/wonny/backtester/internal/marker"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <signals.csv>",
	Short: "Store and backtest a signal file",
	Long: `Saves the CSV as a signal file, runs the backtest computation
and stores the result, exactly like POST /api/signal-files.

Example:
  go run ./cmd/backtester run signals.csv
  go run ./cmd/backtester run signals.csv --name nifty50.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runBacktest,
}

var runName string

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runName, "name", "", "filename to store (default: base name of the path)")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read signal file: %w", err)
	}

	name := runName
	if name == "" {
		name = filepath.Base(args[0])
	}

	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	PrintHeader("Backtest")

	result, err := a.backtest.RunBacktest(ctx, backtest.SubmitRequest{Filename: name, Content: string(content)})
	if err != nil {
		return fmt.Errorf("❌ backtest failed (%s): %s", contracts.KindOf(err), contracts.MessageOf(err))
	}

	presets, err := loadRanges(a.cfg.MarkerRangesFile, a.log)
	if err != nil {
		return err
	}
	PrintResult(result, marker.Classify(presets.DefaultRanges(), result))
	return nil
}
