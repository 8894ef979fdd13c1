package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/backtester/internal/storage"
	"github.com/wonny/backtester/pkg/logger"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the schema for the configured store",
	Long: `Applies the embedded migrations for STORE_DRIVER.
Migrations are idempotent.

Example:
  go run ./cmd/backtester migrate
  STORE_DRIVER=sqlite go run ./cmd/backtester migrate`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Database.AutoMigrate = false

	log := logger.New(cfg)
	ctx := context.Background()

	stores, err := storage.Open(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer stores.Close()

	if err := stores.Migrate(ctx); err != nil {
		return fmt.Errorf("❌ migration failed: %w", err)
	}

	fmt.Printf("✅ %s schema is up to date\n", stores.Driver)
	return nil
}
