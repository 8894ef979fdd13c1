package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "backtester",
	Short: "Signal file backtesting service",
	Long: `Backtester

Stores uploaded trading-signal files, runs the external metrics
computation over them and classifies the results against
acceptable-range bands.

Usage:
  go run ./cmd/backtester [command]

Examples:
  go run ./cmd/backtester api
  go run ./cmd/backtester run signals.csv
  go run ./cmd/backtester results
  go run ./cmd/backtester migrate`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment override (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
