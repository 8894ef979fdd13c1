package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var resultsPreset string

// resultsCmd represents the results command
var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "List stored results with their classification",
	Long: `Lists every stored backtest result, newest first, classified
against the default range bands (MARKER_RANGES_FILE overrides them).

Example:
  go run ./cmd/backtester results
  go run ./cmd/backtester results --preset conservative`,
	RunE: runResults,
}

func init() {
	rootCmd.AddCommand(resultsCmd)
	resultsCmd.Flags().StringVar(&resultsPreset, "preset", "", "overlay a preset from the range file")
}

func runResults(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	presets, err := loadRanges(a.cfg.MarkerRangesFile, a.log)
	if err != nil {
		return err
	}
	ranges := presets.DefaultRanges()
	if resultsPreset != "" {
		preset, ok := presets.Preset(resultsPreset)
		if !ok {
			return fmt.Errorf("preset %q not found", resultsPreset)
		}
		for metric, r := range preset {
			ranges[metric] = r
		}
	}

	rows, err := a.backtest.Dashboard(ctx, ranges)
	if err != nil {
		return err
	}

	PrintHeader("Backtest results")
	PrintDashboard(rows)
	return nil
}
