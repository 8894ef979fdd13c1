package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wonny/backtester/internal/contracts"
)

// companyMetricsCmd represents the company-metrics command
var companyMetricsCmd = &cobra.Command{
	Use:   "company-metrics <signal-file-id>",
	Short: "Recompute per-symbol metrics for a stored signal file",
	Long: `Re-runs the per-symbol computation over a stored signal file.
Nothing is persisted.

Example:
  go run ./cmd/backtester company-metrics 12`,
	Args: cobra.ExactArgs(1),
	RunE: runCompanyMetrics,
}

func init() {
	rootCmd.AddCommand(companyMetricsCmd)
}

func runCompanyMetrics(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid signal file id %q", args[0])
	}

	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	PrintHeader(fmt.Sprintf("Company metrics for signal file #%d", id))

	metrics, err := a.backtest.CompanyMetrics(ctx, id)
	if err != nil {
		return fmt.Errorf("❌ %s: %s", contracts.KindOf(err), contracts.MessageOf(err))
	}

	PrintSymbolMetrics(metrics)
	return nil
}
