package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/backtester/internal/api/handlers"
	"github.com/wonny/backtester/internal/backtest"
	"github.com/wonny/backtester/internal/contracts"
	"github.com/wonny/backtester/internal/marker"
	"github.com/wonny/backtester/pkg/config"
	"github.com/wonny/backtester/pkg/httputil"
	"github.com/wonny/backtester/pkg/logger"
)

// submitCmd represents the submit command
var submitCmd = &cobra.Command{
	Use:   "submit <signals.csv>",
	Short: "Submit a signal file to a running API server",
	Long: `Posts the CSV to a running server's /api/signal-files and prints the
result classified under the server-side ranges of the given session.
Busy (429/503) responses are retried; computation failures are not.

Example:
  go run ./cmd/backtester submit signals.csv --server http://localhost:5001
  go run ./cmd/backtester submit signals.csv --session alice`,
	Args: cobra.ExactArgs(1),
	RunE: runSubmit,
}

var (
	submitServer  string
	submitName    string
	submitSession string
	submitTimeout time.Duration
)

func init() {
	rootCmd.AddCommand(submitCmd)

	submitCmd.Flags().StringVar(&submitServer, "server", "http://localhost:5001", "API server base URL")
	submitCmd.Flags().StringVar(&submitName, "name", "", "filename to store (default: base name of the path)")
	submitCmd.Flags().StringVar(&submitSession, "session", marker.DefaultSession, "range session used for classification")
	submitCmd.Flags().DurationVar(&submitTimeout, "timeout", 3*time.Minute, "per-request timeout")
}

func runSubmit(cmd *cobra.Command, args []string) error {
	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read signal file: %w", err)
	}

	name := submitName
	if name == "" {
		name = filepath.Base(args[0])
	}

	level := "warn"
	if verbose {
		level = "debug"
	}
	log := logger.New(&config.Config{Env: "development", LogLevel: level, LogFormat: "console"})

	client := httputil.New(submitServer, submitTimeout, log).
		WithHeader(handlers.SessionHeader, submitSession)

	ctx := context.Background()
	PrintHeader("Backtest (" + submitServer + ")")

	var result contracts.BacktestResult
	req := backtest.SubmitRequest{Filename: name, Content: string(content)}
	if err := client.PostJSON(ctx, "/api/signal-files", req, &result); err != nil {
		var statusErr *httputil.StatusError
		if errors.As(err, &statusErr) {
			return fmt.Errorf("❌ backtest failed (%d): %s", statusErr.StatusCode, statusErr.Message)
		}
		return fmt.Errorf("❌ submit failed: %w", err)
	}

	var classification marker.Classification
	if err := client.PostJSON(ctx, "/api/marker/classify", &result, &classification); err != nil {
		return fmt.Errorf("classify result: %w", err)
	}

	PrintResult(&result, classification)
	return nil
}
